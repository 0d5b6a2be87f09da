package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PenaltyStatus is the payment state of a penalty.
type PenaltyStatus string

const (
	PenaltyUnpaid PenaltyStatus = "Unpaid"
	PenaltyPaid   PenaltyStatus = "Paid"
)

// Penalty is the monetary charge owned by exactly one overdue borrow.
type Penalty struct {
	ID        uuid.UUID
	BorrowID  uuid.UUID
	Amount    decimal.Decimal
	Status    PenaltyStatus
	CreatedAt time.Time
	PaidAt    *time.Time
}

// NewPenalty constructs an Unpaid penalty for the given borrow.
func NewPenalty(borrowID uuid.UUID, amount decimal.Decimal, now time.Time) *Penalty {
	return &Penalty{
		ID:        uuid.New(),
		BorrowID:  borrowID,
		Amount:    amount,
		Status:    PenaltyUnpaid,
		CreatedAt: now.UTC(),
	}
}

// Clone returns a deep copy of the penalty.
func (p *Penalty) Clone() *Penalty {
	c := *p
	c.PaidAt = cloneTime(p.PaidAt)
	return &c
}
