package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/lendingdesk/services/lending/domain/events"
	"github.com/ghuser/lendingdesk/services/lending/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return
	Offset int // Number of records to skip
}

// ItemFilter narrows ListItems.
type ItemFilter struct {
	QueryOpts
	InStockOnly bool // only items with stock > 0
}

// BorrowFilter narrows ListBorrows. Nil fields match everything.
type BorrowFilter struct {
	QueryOpts
	UserID *uuid.UUID
	Status *models.Status
}

// PenaltyFilter narrows ListPenalties. UserID matches the owner of the penalty's borrow.
type PenaltyFilter struct {
	QueryOpts
	UserID *uuid.UUID
	Status *models.PenaltyStatus
}

// Tx is the unit of work a lifecycle mutation runs in. Rows returned by the
// *ForUpdate methods stay locked until the transaction ends. Callers lock the
// borrow before the item.
type Tx interface {
	ItemForUpdate(ctx context.Context, id uuid.UUID) (*models.Item, error)
	InsertItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	// CountOpenBorrowsForItem counts Pending, Borrowed and Overdue borrows of the item.
	CountOpenBorrowsForItem(ctx context.Context, itemID uuid.UUID) (int, error)

	BorrowForUpdate(ctx context.Context, id uuid.UUID) (*models.Borrow, error)
	InsertBorrow(ctx context.Context, b *models.Borrow) error
	UpdateBorrow(ctx context.Context, b *models.Borrow) error

	PenaltyForUpdate(ctx context.Context, id uuid.UUID) (*models.Penalty, error)
	// PenaltyForBorrow returns the penalty owned by the borrow, if any.
	PenaltyForBorrow(ctx context.Context, borrowID uuid.UUID) (*models.Penalty, bool, error)
	// InsertPenalty stores pen unless the borrow already owns one; it reports
	// whether a row was written.
	InsertPenalty(ctx context.Context, pen *models.Penalty) (bool, error)
	UpdatePenalty(ctx context.Context, pen *models.Penalty) error
	// DeletePenaltyForBorrow reports whether a penalty was removed.
	DeletePenaltyForBorrow(ctx context.Context, borrowID uuid.UUID) (bool, error)

	// Emit records evt so it is published only if the transaction commits.
	Emit(ctx context.Context, evt events.Event) error
}

// Store is the persistence interface of the lending context.
// The domain layer owns this interface; infrastructure implements it.
type Store interface {
	// WithinTx runs fn in one transaction, committing when it returns nil.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	// ListItems returns a page of items and the total count ignoring pagination.
	ListItems(ctx context.Context, f ItemFilter) ([]*models.Item, int, error)

	GetBorrow(ctx context.Context, id uuid.UUID) (*models.Borrow, error)
	ListBorrows(ctx context.Context, f BorrowFilter) ([]*models.Borrow, int, error)
	// OverdueCandidates lists Borrowed transactions whose due date is before
	// today, optionally only those of one user.
	OverdueCandidates(ctx context.Context, today time.Time, userID *uuid.UUID) ([]uuid.UUID, error)

	GetPenalty(ctx context.Context, id uuid.UUID) (*models.Penalty, error)
	ListPenalties(ctx context.Context, f PenaltyFilter) ([]*models.Penalty, int, error)

	Report(ctx context.Context) (*models.Report, error)
}
