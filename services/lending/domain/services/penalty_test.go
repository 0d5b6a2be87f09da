package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/lendingdesk/services/lending/domain/models"
)

func TestDaysOverdue(t *testing.T) {
	due := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		today  time.Time
		manual bool
		want   int
	}{
		{"five days late", due.AddDate(0, 0, 5), false, 5},
		{"on due date", due, false, 0},
		{"manual on due date charges one day", due, true, 1},
		{"manual before due date charges one day", due.AddDate(0, 0, -2), true, 1},
		{"manual late keeps real days", due.AddDate(0, 0, 3), true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysOverdue(due, tt.today, tt.manual); got != tt.want {
				t.Fatalf("DaysOverdue() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAssessPenalty(t *testing.T) {
	now := time.Date(2026, 6, 6, 10, 0, 0, 0, time.UTC)
	due := models.AddDays(now, -5)
	b := &models.Borrow{ID: uuid.New(), Status: models.StatusOverdue, DueDate: &due}

	pen, err := AssessPenalty(b, now, now, DefaultPolicy(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pen.Amount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected amount 250, got %s", pen.Amount)
	}
	if pen.Status != models.PenaltyUnpaid || pen.PaidAt != nil {
		t.Fatalf("expected Unpaid without paid_at, got %+v", pen)
	}
	if pen.BorrowID != b.ID {
		t.Fatalf("expected borrow %v, got %v", b.ID, pen.BorrowID)
	}

	b.DueDate = nil
	if _, err := AssessPenalty(b, now, now, DefaultPolicy(), false); err == nil {
		t.Fatal("expected error without due date")
	}
}

func TestPenaltyAmount_FractionalRate(t *testing.T) {
	got := PenaltyAmount(3, decimal.RequireFromString("12.50"))
	if !got.Equal(decimal.RequireFromString("37.5")) {
		t.Fatalf("expected 37.50, got %s", got)
	}
}

func TestSettlePenalty(t *testing.T) {
	first := time.Date(2026, 6, 7, 8, 0, 0, 0, time.UTC)
	pen := models.NewPenalty(uuid.New(), decimal.NewFromInt(100), first)

	if !SettlePenalty(pen, first) {
		t.Fatal("expected first settle to change the penalty")
	}
	if pen.Status != models.PenaltyPaid || pen.PaidAt == nil || !pen.PaidAt.Equal(first) {
		t.Fatalf("unexpected penalty after settle: %+v", pen)
	}

	if SettlePenalty(pen, first.Add(time.Hour)) {
		t.Fatal("expected second settle to be a no-op")
	}
	if !pen.PaidAt.Equal(first) || !pen.Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("second settle must not change paid_at or amount: %+v", pen)
	}
}
