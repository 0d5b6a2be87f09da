package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Item is a lendable piece of equipment. Stock is the authoritative count of
// units that can still be lent; it is never negative.
type Item struct {
	ID           uuid.UUID
	SerialNumber SerialNumber
	Name         ItemName
	ItemType     string
	Condition    Condition
	Stock        int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewItem constructs a valid Item with generated ID and current timestamps.
func NewItem(serial SerialNumber, name ItemName, itemType string, condition Condition, stock int) (*Item, error) {
	if stock < 0 {
		return nil, fmt.Errorf("stock must not be negative (got %d)", stock)
	}
	if condition == "" {
		condition = ConditionAvailable
	}
	if !condition.Valid() {
		return nil, fmt.Errorf("unknown item condition %q", condition)
	}
	now := time.Now().UTC()
	return &Item{
		ID:           uuid.New(),
		SerialNumber: serial,
		Name:         name,
		ItemType:     itemType,
		Condition:    condition,
		Stock:        stock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Clone returns a copy of the item.
func (i *Item) Clone() *Item {
	c := *i
	return &c
}
