package otp

import (
	"strings"
	"testing"
)

func TestNumericCodeGenerate(t *testing.T) {
	gen := NewNumericCode()

	t.Run("ProducesRequestedLength", func(t *testing.T) {
		for length := MinCodeLength; length <= MaxCodeLength; length++ {
			code, err := gen.Generate(length)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(code) != length {
				t.Fatalf("expected length %d, got %q", length, code)
			}
		}
	})

	t.Run("ClampsShortLength", func(t *testing.T) {
		code, err := gen.Generate(0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != MinCodeLength {
			t.Fatalf("expected clamp to %d, got %q", MinCodeLength, code)
		}
	})

	t.Run("ClampsLongLength", func(t *testing.T) {
		code, err := gen.Generate(50)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != MaxCodeLength {
			t.Fatalf("expected clamp to %d, got %q", MaxCodeLength, code)
		}
	})

	t.Run("NeverStartsWithZero", func(t *testing.T) {
		for range 200 {
			code, err := gen.Generate(6)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.HasPrefix(code, "0") {
				t.Fatalf("code starts with zero: %q", code)
			}
			if strings.Trim(code, "0123456789") != "" {
				t.Fatalf("code is not numeric: %q", code)
			}
		}
	})
}
