package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a borrow transaction.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusRejected Status = "Rejected"
	StatusBorrowed Status = "Borrowed"
	StatusReturned Status = "Returned"
	StatusOverdue  Status = "Overdue"
)

// ParseStatus validates s against the known statuses.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusRejected, StatusBorrowed, StatusReturned, StatusOverdue:
		return st, nil
	}
	return "", fmt.Errorf("unknown borrow status %q", s)
}

// String returns the underlying string value.
func (s Status) String() string {
	return string(s)
}

// Borrow is one lending event from request through resolution.
//
// DueDate is set once the borrow has been approved; ReturnDate only once it
// reached Returned. Units stay reserved while Borrowed or Overdue.
type Borrow struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ItemID     uuid.UUID
	Quantity   int
	Status     Status
	BorrowDate *time.Time
	DueDate    *time.Time
	ReturnDate *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewBorrow constructs a Pending borrow request.
func NewBorrow(userID, itemID uuid.UUID, quantity int) (*Borrow, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1 (got %d)", quantity)
	}
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user_id must be set")
	}
	if itemID == uuid.Nil {
		return nil, fmt.Errorf("item_id must be set")
	}
	now := time.Now().UTC()
	return &Borrow{
		ID:        uuid.New(),
		UserID:    userID,
		ItemID:    itemID,
		Quantity:  quantity,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsActive reports whether the borrowed units are still outstanding.
func (b *Borrow) IsActive() bool {
	return b.Status == StatusBorrowed || b.Status == StatusOverdue
}

// IsOverdue reports whether a Borrowed transaction is past its due date on today.
func (b *Borrow) IsOverdue(today time.Time) bool {
	return b.Status == StatusBorrowed && b.DueDate != nil && DateOf(today).After(DateOf(*b.DueDate))
}

// Clone returns a deep copy of the borrow.
func (b *Borrow) Clone() *Borrow {
	c := *b
	c.BorrowDate = cloneTime(b.BorrowDate)
	c.DueDate = cloneTime(b.DueDate)
	c.ReturnDate = cloneTime(b.ReturnDate)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
