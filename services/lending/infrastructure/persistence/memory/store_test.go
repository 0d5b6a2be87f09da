package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/lendingdesk/services/lending/domain"
	"github.com/ghuser/lendingdesk/services/lending/domain/events"
	"github.com/ghuser/lendingdesk/services/lending/domain/models"
	"github.com/ghuser/lendingdesk/services/lending/domain/repositories"
)

func seedItem(t *testing.T, s *Store, serial string, stock int) *models.Item {
	t.Helper()
	item, err := models.NewItem(models.SerialNumber(serial), "Camera", "AV", "", stock)
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	err = s.WithinTx(context.Background(), func(ctx context.Context, tx repositories.Tx) error {
		return tx.InsertItem(ctx, item)
	})
	if err != nil {
		t.Fatalf("InsertItem: %v", err)
	}
	return item
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	s := NewStore()
	item := seedItem(t, s, "SN-1", 3)
	boom := errors.New("boom")

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx repositories.Tx) error {
		locked, err := tx.ItemForUpdate(ctx, item.ID)
		if err != nil {
			return err
		}
		locked.Stock = 0
		if err := tx.UpdateItem(ctx, locked); err != nil {
			return err
		}
		if err := tx.Emit(ctx, events.ItemStock(locked, time.Now())); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, err := s.GetItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Stock != 3 {
		t.Fatalf("expected rollback to stock 3, got %d", got.Stock)
	}
	if n := len(s.Published()); n != 0 {
		t.Fatalf("expected no published events after rollback, got %d", n)
	}
}

func TestWithinTx_FailEmitsRollsBack(t *testing.T) {
	s := NewStore()
	s.FailEmits(errors.New("outbox down"))

	item, _ := models.NewItem("SN-2", "Tripod", "AV", "", 1)
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx repositories.Tx) error {
		if err := tx.InsertItem(ctx, item); err != nil {
			return err
		}
		return tx.Emit(ctx, events.ItemStock(item, time.Now()))
	})
	if err == nil {
		t.Fatal("expected emit failure")
	}
	if _, err := s.GetItem(context.Background(), item.ID); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected item to be rolled back, got %v", err)
	}
}

func TestInsertItem_DuplicateSerial(t *testing.T) {
	s := NewStore()
	seedItem(t, s, "SN-DUP", 1)

	dup, _ := models.NewItem("SN-DUP", "Other", "AV", "", 1)
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx repositories.Tx) error {
		return tx.InsertItem(ctx, dup)
	})
	if !errors.Is(err, domain.ErrDuplicateSerial) {
		t.Fatalf("expected ErrDuplicateSerial, got %v", err)
	}
}

func TestInsertPenalty_OncePerBorrow(t *testing.T) {
	s := NewStore()
	item := seedItem(t, s, "SN-3", 1)
	b, _ := models.NewBorrow(uuid.New(), item.ID, 1)

	var inserted []bool
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx repositories.Tx) error {
		if err := tx.InsertBorrow(ctx, b); err != nil {
			return err
		}
		for i := 0; i < 2; i++ {
			ok, err := tx.InsertPenalty(ctx, models.NewPenalty(b.ID, decimal.NewFromInt(50), time.Now()))
			if err != nil {
				return err
			}
			inserted = append(inserted, ok)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inserted[0] || inserted[1] {
		t.Fatalf("expected [true false], got %v", inserted)
	}
	_, total, _ := s.ListPenalties(context.Background(), repositories.PenaltyFilter{})
	if total != 1 {
		t.Fatalf("expected 1 penalty, got %d", total)
	}
}

func TestListPenalties_FiltersByBorrowOwner(t *testing.T) {
	s := NewStore()
	item := seedItem(t, s, "SN-4", 5)
	alice, bob := uuid.New(), uuid.New()
	ba, _ := models.NewBorrow(alice, item.ID, 1)
	bb, _ := models.NewBorrow(bob, item.ID, 1)

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx repositories.Tx) error {
		for _, b := range []*models.Borrow{ba, bb} {
			if err := tx.InsertBorrow(ctx, b); err != nil {
				return err
			}
			if _, err := tx.InsertPenalty(ctx, models.NewPenalty(b.ID, decimal.NewFromInt(50), time.Now())); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	pens, total, err := s.ListPenalties(context.Background(), repositories.PenaltyFilter{UserID: &alice})
	if err != nil {
		t.Fatalf("ListPenalties: %v", err)
	}
	if total != 1 || pens[0].BorrowID != ba.ID {
		t.Fatalf("expected alice's penalty only, got %d rows", total)
	}
}

func TestOverdueCandidates(t *testing.T) {
	s := NewStore()
	item := seedItem(t, s, "SN-5", 5)
	today := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	user := uuid.New()

	mk := func(userID uuid.UUID, status models.Status, due time.Time) *models.Borrow {
		b, _ := models.NewBorrow(userID, item.ID, 1)
		b.Status = status
		b.DueDate = &due
		return b
	}
	late := mk(user, models.StatusBorrowed, models.AddDays(today, -1))
	onTime := mk(user, models.StatusBorrowed, today)
	alreadyOverdue := mk(user, models.StatusOverdue, models.AddDays(today, -4))
	otherUser := mk(uuid.New(), models.StatusBorrowed, models.AddDays(today, -2))

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx repositories.Tx) error {
		for _, b := range []*models.Borrow{late, onTime, alreadyOverdue, otherUser} {
			if err := tx.InsertBorrow(ctx, b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	all, _ := s.OverdueCandidates(context.Background(), today, nil)
	if len(all) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(all))
	}
	mine, _ := s.OverdueCandidates(context.Background(), today, &user)
	if len(mine) != 1 || mine[0] != late.ID {
		t.Fatalf("expected only the late borrow, got %v", mine)
	}
}

func TestListItems_InStockOnlyAndPaging(t *testing.T) {
	s := NewStore()
	seedItem(t, s, "A", 0)
	seedItem(t, s, "B", 2)
	seedItem(t, s, "C", 1)

	items, total, _ := s.ListItems(context.Background(), repositories.ItemFilter{InStockOnly: true})
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 in-stock items, got %d/%d", len(items), total)
	}

	items, total, _ = s.ListItems(context.Background(), repositories.ItemFilter{QueryOpts: repositories.QueryOpts{Limit: 1, Offset: 1}})
	if total != 3 || len(items) != 1 || items[0].SerialNumber != "B" {
		t.Fatalf("unexpected page: total=%d items=%v", total, items)
	}
}

func TestReport(t *testing.T) {
	s := NewStore()
	item := seedItem(t, s, "SN-6", 5)
	paidAt := time.Now()

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx repositories.Tx) error {
		statuses := []models.Status{models.StatusPending, models.StatusBorrowed, models.StatusOverdue, models.StatusReturned}
		for _, st := range statuses {
			b, _ := models.NewBorrow(uuid.New(), item.ID, 1)
			b.Status = st
			if err := tx.InsertBorrow(ctx, b); err != nil {
				return err
			}
			if st == models.StatusOverdue || st == models.StatusReturned {
				pen := models.NewPenalty(b.ID, decimal.NewFromInt(100), paidAt)
				if st == models.StatusReturned {
					pen.Status = models.PenaltyPaid
					pen.PaidAt = &paidAt
				}
				if _, err := tx.InsertPenalty(ctx, pen); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	r, _ := s.Report(context.Background())
	if r.TotalItems != 1 || r.TotalBorrows != 4 || r.ActiveBorrows != 2 || r.ReturnedBorrows != 1 || r.PendingRequests != 1 {
		t.Fatalf("unexpected borrow counts: %+v", r)
	}
	if r.TotalPenalties != 2 || r.PaidPenalties != 1 || r.UnpaidPenalties != 1 {
		t.Fatalf("unexpected penalty counts: %+v", r)
	}
	if !r.TotalCollected.Equal(decimal.NewFromInt(100)) || !r.OutstandingDebts.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected sums: collected=%s outstanding=%s", r.TotalCollected, r.OutstandingDebts)
	}
}
