package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/lendingdesk/services/lending/domain/events"
	"github.com/ghuser/lendingdesk/services/lending/domain/models"
	"github.com/ghuser/lendingdesk/services/lending/domain/repositories"
)

func TestSweep_FiveDaysOverdue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.item(t, 3)
	b := f.borrowed(t, uuid.New(), item, 2)
	// due date is start+3; five days later is start+8
	f.clock.AdvanceDays(8)

	n, err := f.svc.Sweeper.Sweep(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 borrow marked, got %d", n)
	}

	got := f.borrow(t, b.ID)
	if got.Status != models.StatusOverdue {
		t.Fatalf("expected Overdue, got %s", got.Status)
	}
	if got.ReturnDate != nil {
		t.Fatalf("overdue borrow must not have a return date, got %v", got.ReturnDate)
	}
	if s := f.stock(t, item.ID); s != 1 {
		t.Fatalf("overdue units stay reserved: expected stock 1, got %d", s)
	}

	pens, _, _ := f.store.ListPenalties(ctx, repositories.PenaltyFilter{})
	if len(pens) != 1 {
		t.Fatalf("expected one penalty, got %d", len(pens))
	}
	if !pens[0].Amount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected amount 250, got %s", pens[0].Amount)
	}
	if pens[0].Status != models.PenaltyUnpaid || pens[0].BorrowID != b.ID {
		t.Fatalf("unexpected penalty %+v", pens[0])
	}
}

func TestSweep_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.borrowed(t, uuid.New(), f.item(t, 3), 1)
	f.clock.AdvanceDays(4)

	if n, _ := f.svc.Sweeper.Sweep(ctx, nil); n != 1 {
		t.Fatalf("first sweep marked %d, want 1", n)
	}
	f.clock.AdvanceDays(2)
	if n, _ := f.svc.Sweeper.Sweep(ctx, nil); n != 0 {
		t.Fatalf("second sweep marked %d, want 0", n)
	}

	pens, _, _ := f.store.ListPenalties(ctx, repositories.PenaltyFilter{})
	if len(pens) != 1 || !pens[0].Amount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected the original 50 penalty only, got %+v", pens)
	}
	if n := countPenaltyActions(f.store.Published(), events.PenaltyCreated); n != 1 {
		t.Fatalf("expected one created event, got %d", n)
	}
}

func TestSweep_Concurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.item(t, 10)
	for range 5 {
		f.borrowed(t, uuid.New(), item, 1)
	}
	f.clock.AdvanceDays(5)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Sweeper.Sweep(ctx, nil); err != nil {
				t.Errorf("sweep: %v", err)
			}
		}()
	}
	wg.Wait()

	_, total, _ := f.store.ListPenalties(ctx, repositories.PenaltyFilter{})
	if total != 5 {
		t.Fatalf("expected 5 penalties, got %d", total)
	}
	overdue := models.StatusOverdue
	if _, n, _ := f.store.ListBorrows(ctx, repositories.BorrowFilter{Status: &overdue}); n != 5 {
		t.Fatalf("expected 5 overdue borrows, got %d", n)
	}
	if s := f.stock(t, item.ID); s != 5 {
		t.Fatalf("expected stock 5, got %d", s)
	}
}

func TestSweep_ScopedToUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.item(t, 4)
	alice, bob := uuid.New(), uuid.New()
	a := f.borrowed(t, alice, item, 1)
	b := f.borrowed(t, bob, item, 1)
	f.clock.AdvanceDays(5)

	n, err := f.svc.Sweeper.Sweep(ctx, &alice)
	if err != nil || n != 1 {
		t.Fatalf("Sweep(alice) = %d, %v", n, err)
	}
	if got := f.borrow(t, a.ID).Status; got != models.StatusOverdue {
		t.Fatalf("expected alice's borrow Overdue, got %s", got)
	}
	if got := f.borrow(t, b.ID).Status; got != models.StatusBorrowed {
		t.Fatalf("expected bob's borrow untouched, got %s", got)
	}
}

func TestSweep_NotYetDue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.borrowed(t, uuid.New(), f.item(t, 1), 1)
	// due today is not overdue
	f.clock.AdvanceDays(3)

	if n, err := f.svc.Sweeper.Sweep(ctx, nil); err != nil || n != 0 {
		t.Fatalf("Sweep() = %d, %v; want 0, nil", n, err)
	}
}

func TestSweep_ReturnedBeforeSweepIsSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.borrowed(t, uuid.New(), f.item(t, 1), 1)
	f.clock.AdvanceDays(5)

	// the candidate is listed, then returned before its turn comes
	step := f.svc.Lending.markOverdue
	if _, err := f.svc.Lending.Return(ctx, b.ID); err != nil {
		t.Fatalf("return: %v", err)
	}
	_, err := f.svc.Lending.mutate(ctx, b.ID, step)
	if err == nil {
		t.Fatal("expected the returned borrow to be skipped")
	}
	if got := f.borrow(t, b.ID).Status; got != models.StatusReturned {
		t.Fatalf("expected Returned, got %s", got)
	}
	if _, total, _ := f.store.ListPenalties(ctx, repositories.PenaltyFilter{}); total != 0 {
		t.Fatalf("expected no penalty, got %d", total)
	}
}
