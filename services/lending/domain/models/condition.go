package models

import "fmt"

// Condition is the informational state of an item. Availability is decided
// by Item.Stock, never by Condition.
type Condition string

const (
	ConditionAvailable        Condition = "Available"
	ConditionBorrowed         Condition = "Borrowed"
	ConditionUnderMaintenance Condition = "Under Maintenance"
	ConditionLost             Condition = "Lost"
)

// ParseCondition validates s against the known conditions.
func ParseCondition(s string) (Condition, error) {
	c := Condition(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown item condition %q", s)
	}
	return c, nil
}

// Valid reports whether c is one of the known conditions.
func (c Condition) Valid() bool {
	switch c {
	case ConditionAvailable, ConditionBorrowed, ConditionUnderMaintenance, ConditionLost:
		return true
	}
	return false
}

// String returns the underlying string value.
func (c Condition) String() string {
	return string(c)
}
