package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/lendingdesk/services/lending/domain/models"
	"github.com/ghuser/lendingdesk/services/lending/domain/repositories"
)

func TestListBorrows_SweepsOnRead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := uuid.New()
	f.borrowed(t, user, f.item(t, 2), 1)
	f.clock.AdvanceDays(4)

	borrows, total, err := f.svc.Queries.ListBorrows(ctx, repositories.BorrowFilter{UserID: &user})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || borrows[0].Status != models.StatusOverdue {
		t.Fatalf("expected one Overdue borrow, got %d %+v", total, borrows)
	}

	pens, _, err := f.svc.Queries.ListPenalties(ctx, repositories.PenaltyFilter{UserID: &user})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pens) != 1 {
		t.Fatalf("expected one penalty, got %d", len(pens))
	}
}

func TestListBorrows_WithoutSweepOnRead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.Queries.sweepOnRead = false
	user := uuid.New()
	f.borrowed(t, user, f.item(t, 2), 1)
	f.clock.AdvanceDays(4)

	borrows, _, err := f.svc.Queries.ListBorrows(ctx, repositories.BorrowFilter{UserID: &user})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if borrows[0].Status != models.StatusBorrowed {
		t.Fatalf("expected Borrowed without a sweep, got %s", borrows[0].Status)
	}
}

func TestReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.item(t, 5)
	f.request(t, uuid.New(), item, 1)
	returned := f.borrowed(t, uuid.New(), item, 1)
	if _, err := f.svc.Lending.Return(ctx, returned.ID); err != nil {
		t.Fatalf("return: %v", err)
	}
	f.borrowed(t, uuid.New(), item, 2)
	f.clock.AdvanceDays(5)
	if _, err := f.svc.Sweeper.Sweep(ctx, nil); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	r, err := f.svc.Queries.Report(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.TotalItems != 1 || r.TotalBorrows != 3 || r.PendingRequests != 1 ||
		r.ActiveBorrows != 1 || r.ReturnedBorrows != 1 {
		t.Fatalf("unexpected borrow counts %+v", r)
	}
	if r.TotalPenalties != 1 || r.UnpaidPenalties != 1 || !r.OutstandingDebts.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected penalty totals %+v", r)
	}
}
