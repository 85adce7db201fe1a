package sanitize

import (
	"errors"
	"strings"
	"testing"

	"github.com/banktalk/banktalk/pkg/domain"
)

func TestInput_SizeLimit(t *testing.T) {
	limit := DefaultMaxInputSize

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := strings.Repeat("a", tt.inputSize)
			_, err := Input(input, 0)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInputTooLarge) {
					t.Errorf("Input() expected ErrInputTooLarge for size %d, got %v", tt.inputSize, err)
				}
			} else if err != nil {
				t.Errorf("Input() unexpected error: %v", err)
			}
		})
	}
}

func TestInput_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "EMI for 5 lakh", "EMI for 5 lakh"},
		{"Safe Controls", "Line1\nLine2\tTabbed", "Line1\nLine2\tTabbed"},
		{"ANSI Code", "\x1b[31m9%\x1b[0m", "[31m9%[0m"},
		{"Null Byte", "50\x000000", "500000"},
		{"Bell", "Ding\x07", "Ding"},
		{"Rupee Sign", "₹5,00,000", "₹5,00,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Input(tt.input, 0)
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestInput_InvalidUTF8(t *testing.T) {
	if _, err := Input("\xff\xfe", 0); !errors.Is(err, domain.ErrInvalidUTF8) {
		t.Errorf("Expected ErrInvalidUTF8, got %v", err)
	}
}

func TestInput_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "10")

	if _, err := Input("12345678901", 0); err == nil {
		t.Error("Expected error for input > 10 when env var is set")
	}
	if _, err := Input("12345", 0); err != nil {
		t.Error("Unexpected error for valid input")
	}

	// An explicit limit wins over the environment.
	if _, err := Input("12345678901", 20); err != nil {
		t.Errorf("Unexpected error with explicit limit: %v", err)
	}
}
