package models

import (
	"strings"
	"testing"
)

func TestNewItemName(t *testing.T) {
	t.Run("valid single character", func(t *testing.T) {
		n, err := NewItemName("a")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n.String() != "a" {
			t.Fatalf("expected %q, got %q", "a", n.String())
		}
	})

	t.Run("valid 100 characters", func(t *testing.T) {
		s := strings.Repeat("x", 100)
		n, err := NewItemName(s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n.String() != s {
			t.Fatalf("expected string of length 100, got %d", len(n.String()))
		}
	})

	t.Run("empty string returns error", func(t *testing.T) {
		if _, err := NewItemName(""); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("101 characters returns error", func(t *testing.T) {
		if _, err := NewItemName(strings.Repeat("x", 101)); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestNewSerialNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "PRJ-0001", false},
		{"max length", strings.Repeat("9", 50), false},
		{"empty", "", true},
		{"too long", strings.Repeat("9", 51), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSerialNumber(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSerialNumber(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && s.String() != tt.input {
				t.Fatalf("expected %q, got %q", tt.input, s)
			}
		})
	}
}
