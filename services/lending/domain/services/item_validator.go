package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/ghuser/lendingdesk/services/lending/domain/models"
)

// ValidateName enforces business rules for ItemName beyond the structural
// constraints enforced by the ItemName constructor (length 1–100).
//
// Business rules:
//   - No leading or trailing whitespace
//   - No control characters (Unicode category Cc)
//   - No consecutive spaces
//   - Must not be only whitespace characters
func ValidateName(name models.ItemName) error {
	s := name.String()

	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("item name must not be only whitespace")
	}

	if s != strings.TrimSpace(s) {
		return fmt.Errorf("item name must not have leading or trailing whitespace")
	}

	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("item name must not contain control characters")
		}
	}

	if strings.Contains(s, "  ") {
		return fmt.Errorf("item name must not contain consecutive spaces")
	}

	return nil
}

// ValidateSerial rejects serial numbers containing whitespace or control characters.
func ValidateSerial(serial models.SerialNumber) error {
	for _, r := range serial.String() {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("serial number must not contain whitespace or control characters")
		}
	}
	return nil
}

// ValidateItem performs cross-field validation on a fully-constructed Item
// before it is persisted.
func ValidateItem(item *models.Item) error {
	if item == nil {
		return fmt.Errorf("item cannot be nil")
	}

	if err := ValidateName(item.Name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	if err := ValidateSerial(item.SerialNumber); err != nil {
		return fmt.Errorf("invalid serial: %w", err)
	}

	if strings.TrimSpace(item.ItemType) == "" || len(item.ItemType) > 50 {
		return fmt.Errorf("item type must be 1 to 50 characters")
	}

	if item.Stock < 0 {
		return fmt.Errorf("stock must not be negative")
	}

	if item.ID == uuid.Nil {
		return fmt.Errorf("id must be set")
	}

	return nil
}
