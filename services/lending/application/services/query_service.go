package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/lendingdesk/pkg/logger"
	"github.com/ghuser/lendingdesk/services/lending/domain/models"
	"github.com/ghuser/lendingdesk/services/lending/domain/repositories"
)

// QueryService serves borrow and penalty lists and the aggregate report.
// When sweep-on-read is enabled, lists are preceded by an overdue sweep
// scoped to the same user so they never show a stale Borrowed status.
type QueryService struct {
	store       repositories.Store
	sweeper     *Sweeper
	sweepOnRead bool
	log         logger.Logger
}

// GetBorrow returns one borrow.
func (q *QueryService) GetBorrow(ctx context.Context, id uuid.UUID) (*models.Borrow, error) {
	return q.store.GetBorrow(ctx, id)
}

// ListBorrows returns a page of borrows matching f plus the total count.
func (q *QueryService) ListBorrows(ctx context.Context, f repositories.BorrowFilter) ([]*models.Borrow, int, error) {
	q.sweepFor(ctx, f.UserID)
	borrows, total, err := q.store.ListBorrows(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list borrows: %w", err)
	}
	return borrows, total, nil
}

// ListPenalties returns a page of penalties matching f plus the total count.
func (q *QueryService) ListPenalties(ctx context.Context, f repositories.PenaltyFilter) ([]*models.Penalty, int, error) {
	q.sweepFor(ctx, f.UserID)
	pens, total, err := q.store.ListPenalties(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list penalties: %w", err)
	}
	return pens, total, nil
}

// Report returns aggregate counts and amounts.
func (q *QueryService) Report(ctx context.Context) (*models.Report, error) {
	r, err := q.store.Report(ctx)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	return r, nil
}

// sweepFor runs the on-read sweep. A failed sweep is logged and the read
// still proceeds.
func (q *QueryService) sweepFor(ctx context.Context, userID *uuid.UUID) {
	if !q.sweepOnRead {
		return
	}
	if _, err := q.sweeper.Sweep(ctx, userID); err != nil {
		q.log.WarnContext(ctx, "on-read overdue sweep failed", "error", err)
	}
}
