package validator

import (
	"strings"
	"testing"
)

type window struct {
	Size   int    `json:"size" validate:"gte=0,lte=100"`
	Engine string `json:"engine" validate:"omitempty,oneof=a b"`
	Addr   string `validate:"omitempty,hostname_port"`
}

func TestValidateStruct(t *testing.T) {
	if msgs := ValidateStruct(&window{Size: 10, Engine: "a", Addr: "localhost:9090"}); len(msgs) != 0 {
		t.Fatalf("Expected no errors, got %v", msgs)
	}

	msgs := ValidateStruct(&window{Size: -1, Engine: "c", Addr: "nope"})
	if got := msgs["size"]; got != "The field 'size' must be greater than or equal to 0." {
		t.Errorf("Unexpected size message %q", got)
	}
	if got := msgs["engine"]; got != "The field 'engine' must be one of [a b]." {
		t.Errorf("Unexpected engine message %q", got)
	}
	if got := msgs["Addr"]; got != "The field 'Addr' must be a host:port address." {
		t.Errorf("Unexpected addr message %q", got)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(&window{}); err != nil {
		t.Fatalf("Expected zero value to be valid, got %v", err)
	}
	err := Validate(&window{Size: 101})
	if err == nil || !strings.Contains(err.Error(), "less than or equal to 100") {
		t.Errorf("Unexpected error %v", err)
	}
}
