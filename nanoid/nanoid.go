// Package nanoid generates short random identifiers.
package nanoid

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	defaultSize = 16

	// Lowercase and digits only, safe for index and document ids
	lowerAlphanumeric = "0123456789abcdefghijklmnopqrstuvwxyz"
)

func getSize(l ...int) int {
	if len(l) > 0 && l[0] > 0 {
		return l[0]
	}
	return defaultSize
}

// Must generates a URL-safe nanoid of optional length
func Must(l ...int) string {
	return gonanoid.Must(getSize(l...))
}

// Lower generates a lowercase alphanumeric nanoid of optional length
func Lower(l ...int) string {
	return gonanoid.MustGenerate(lowerAlphanumeric, getSize(l...))
}
