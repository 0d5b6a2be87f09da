package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewItem(t *testing.T) {
	serial := SerialNumber("CAM-001")
	name := ItemName("Projector")

	t.Run("returns item with non-zero ID", func(t *testing.T) {
		item, err := NewItem(serial, name, "AV", ConditionAvailable, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.ID == (uuid.UUID{}) {
			t.Fatal("expected non-zero UUID for ID")
		}
		if item.Stock != 3 {
			t.Fatalf("expected stock 3, got %d", item.Stock)
		}
	})

	t.Run("empty condition defaults to Available", func(t *testing.T) {
		item, err := NewItem(serial, name, "AV", "", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.Condition != ConditionAvailable {
			t.Fatalf("expected Available, got %q", item.Condition)
		}
	})

	t.Run("negative stock returns error", func(t *testing.T) {
		if _, err := NewItem(serial, name, "AV", ConditionAvailable, -1); err == nil {
			t.Fatal("expected error for negative stock")
		}
	})

	t.Run("unknown condition returns error", func(t *testing.T) {
		if _, err := NewItem(serial, name, "AV", Condition("Broken"), 1); err == nil {
			t.Fatal("expected error for unknown condition")
		}
	})

	t.Run("sets timestamps to approximately now UTC", func(t *testing.T) {
		before := time.Now().UTC()
		item, err := NewItem(serial, name, "AV", ConditionAvailable, 1)
		after := time.Now().UTC()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.CreatedAt.Before(before) || item.CreatedAt.After(after) {
			t.Fatalf("CreatedAt %v not between %v and %v", item.CreatedAt, before, after)
		}
		if !item.UpdatedAt.Equal(item.CreatedAt) {
			t.Fatalf("expected UpdatedAt == CreatedAt, got %v and %v", item.UpdatedAt, item.CreatedAt)
		}
	})
}

func TestParseCondition(t *testing.T) {
	for _, s := range []string{"Available", "Borrowed", "Under Maintenance", "Lost"} {
		if _, err := ParseCondition(s); err != nil {
			t.Errorf("ParseCondition(%q): unexpected error %v", s, err)
		}
	}
	if _, err := ParseCondition("under maintenance"); err == nil {
		t.Error("expected case-sensitive match to fail")
	}
}
