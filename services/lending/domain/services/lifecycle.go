package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ghuser/lendingdesk/services/lending/domain"
	"github.com/ghuser/lendingdesk/services/lending/domain/models"
)

// Policy holds the lending rules that vary per deployment.
type Policy struct {
	LoanPeriodDays int
	DailyRate      decimal.Decimal
}

// DefaultPolicy is a 3 day loan period and 50 currency units per overdue day.
func DefaultPolicy() Policy {
	return Policy{LoanPeriodDays: 3, DailyRate: decimal.NewFromInt(50)}
}

// Transition names a lifecycle step reachable from an administrative status update.
type Transition int

const (
	TransitionApprove Transition = iota + 1
	TransitionReject
	TransitionReturn
	TransitionMarkOverdue
)

// PlanTransition maps a requested from -> to status change onto the lifecycle
// step that performs it. Overdue -> Returned is a physical return (penalty
// settled); the penalty-waiving path is CancelOverdue.
func PlanTransition(from, to models.Status) (Transition, error) {
	switch {
	case from == models.StatusPending && to == models.StatusBorrowed:
		return TransitionApprove, nil
	case from == models.StatusPending && to == models.StatusRejected:
		return TransitionReject, nil
	case (from == models.StatusBorrowed || from == models.StatusOverdue) && to == models.StatusReturned:
		return TransitionReturn, nil
	case from == models.StatusBorrowed && to == models.StatusOverdue:
		return TransitionMarkOverdue, nil
	}
	return 0, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
}

// Approve moves a Pending borrow to Borrowed, reserving its units against the
// item's current stock and stamping the borrow and due dates.
func Approve(b *models.Borrow, item *models.Item, today time.Time, p Policy) error {
	if b.Status != models.StatusPending {
		return fmt.Errorf("%w: cannot approve a %s borrow", domain.ErrInvalidTransition, b.Status)
	}
	if err := Reserve(item, b.Quantity); err != nil {
		return err
	}
	borrowDate := models.DateOf(today)
	dueDate := models.AddDays(borrowDate, p.LoanPeriodDays)
	b.BorrowDate = &borrowDate
	b.DueDate = &dueDate
	b.Status = models.StatusBorrowed
	return nil
}

// Reject closes a Pending borrow without touching stock.
func Reject(b *models.Borrow) error {
	if b.Status != models.StatusPending {
		return fmt.Errorf("%w: cannot reject a %s borrow", domain.ErrInvalidTransition, b.Status)
	}
	b.Status = models.StatusRejected
	return nil
}

// Return closes a Borrowed or Overdue borrow and releases its units.
// Settling a penalty, if any, is the caller's job within the same transaction.
func Return(b *models.Borrow, item *models.Item, today time.Time) error {
	if !b.IsActive() {
		return fmt.Errorf("%w: cannot return a %s borrow", domain.ErrNotActive, b.Status)
	}
	return closeAsReturned(b, item, today)
}

// CancelOverdue reverts an Overdue borrow to Returned and releases its units.
// Deleting the penalty is the caller's job within the same transaction.
func CancelOverdue(b *models.Borrow, item *models.Item, today time.Time) error {
	if b.Status != models.StatusOverdue {
		return fmt.Errorf("%w: cannot cancel overdue on a %s borrow", domain.ErrNotActive, b.Status)
	}
	return closeAsReturned(b, item, today)
}

// MarkOverdue moves a Borrowed transaction past its due date to Overdue.
// Units stay reserved: an overdue item is still outstanding.
func MarkOverdue(b *models.Borrow, today time.Time) error {
	if !b.IsOverdue(today) {
		return fmt.Errorf("%w: %s borrow is not past its due date", domain.ErrInvalidTransition, b.Status)
	}
	b.Status = models.StatusOverdue
	return nil
}

// ForceOverdue moves a Borrowed transaction to Overdue by administrative
// decision, regardless of its due date.
func ForceOverdue(b *models.Borrow) error {
	if b.Status != models.StatusBorrowed {
		return fmt.Errorf("%w: cannot mark a %s borrow overdue", domain.ErrInvalidTransition, b.Status)
	}
	b.Status = models.StatusOverdue
	return nil
}

func closeAsReturned(b *models.Borrow, item *models.Item, today time.Time) error {
	if item.ID != b.ItemID {
		return fmt.Errorf("borrow %s belongs to item %s, not %s", b.ID, b.ItemID, item.ID)
	}
	if err := Release(item, b.Quantity); err != nil {
		return err
	}
	returnDate := models.DateOf(today)
	b.ReturnDate = &returnDate
	b.Status = models.StatusReturned
	return nil
}
