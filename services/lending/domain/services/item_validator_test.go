package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/ghuser/lendingdesk/services/lending/domain/models"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   models.ItemName
		wantErr bool
	}{
		{"valid name", "Cordless Drill", false},
		{"valid name with special chars", "Drill-18V_#2", false},
		{"leading whitespace", " Drill", true},
		{"trailing whitespace", "Drill ", true},
		{"only whitespace", "   ", true},
		{"tab character (control)", "Drill\tBit", true},
		{"null byte (control)", "Drill\x00", true},
		{"consecutive spaces", "Cordless  Drill", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateName(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateItem(t *testing.T) {
	valid := func() *models.Item {
		return &models.Item{
			ID:           uuid.New(),
			SerialNumber: "SN-100",
			Name:         "Projector",
			ItemType:     "AV",
			Condition:    models.ConditionAvailable,
			Stock:        2,
		}
	}

	t.Run("nil item returns error", func(t *testing.T) {
		if err := ValidateItem(nil); err == nil {
			t.Fatal("expected error for nil item")
		}
	})

	t.Run("valid item returns nil", func(t *testing.T) {
		if err := ValidateItem(valid()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("serial with space returns error", func(t *testing.T) {
		item := valid()
		item.SerialNumber = "SN 100"
		if err := ValidateItem(item); err == nil {
			t.Fatal("expected error for serial with whitespace")
		}
	})

	t.Run("empty item type returns error", func(t *testing.T) {
		item := valid()
		item.ItemType = " "
		if err := ValidateItem(item); err == nil {
			t.Fatal("expected error for blank item type")
		}
	})

	t.Run("negative stock returns error", func(t *testing.T) {
		item := valid()
		item.Stock = -1
		if err := ValidateItem(item); err == nil {
			t.Fatal("expected error for negative stock")
		}
	})

	t.Run("zero ID returns error", func(t *testing.T) {
		item := valid()
		item.ID = uuid.Nil
		if err := ValidateItem(item); err == nil {
			t.Fatal("expected error for zero ID")
		}
	})
}
