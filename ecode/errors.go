package ecode

import "fmt"

const (
	emptyMsg    = "empty"
	requiredMsg = "required"
	invalidMsg  = "invalid"
	notExistMsg = "does not exist"
)

func message(msg string, k []string) string {
	if len(k) > 0 {
		return fmt.Sprintf("%s %s", k[0], msg)
	}
	return msg
}

// FieldIsEmpty returns field empty message
func FieldIsEmpty(k ...string) string { return message(emptyMsg, k) }

// FieldIsRequired returns field required message
func FieldIsRequired(k ...string) string { return message(requiredMsg, k) }

// FieldIsInvalid returns field invalid message
func FieldIsInvalid(k ...string) string { return message(invalidMsg, k) }

// NotExist returns not exist message
func NotExist(k ...string) string { return message(notExistMsg, k) }
