// Package ecode builds short, uniform validation messages.
//
//	ecode.FieldIsInvalid("order sideways") // "order sideways invalid"
//	ecode.FieldIsRequired("index")         // "index required"
package ecode
