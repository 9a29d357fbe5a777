package nanoid

import (
	"strings"
	"testing"
)

func TestLower(t *testing.T) {
	id := Lower()
	if len(id) != defaultSize {
		t.Fatalf("Expected %d characters, got %q", defaultSize, id)
	}
	if strings.Trim(id, lowerAlphanumeric) != "" {
		t.Errorf("Unexpected characters in %q", id)
	}
	if Lower() == id {
		t.Error("Expected distinct ids")
	}
}

func TestMust(t *testing.T) {
	if got := len(Must(8)); got != 8 {
		t.Errorf("Expected 8 characters, got %d", got)
	}
	if got := len(Must(0)); got != defaultSize {
		t.Errorf("Expected default size for 0, got %d", got)
	}
}
