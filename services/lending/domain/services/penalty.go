package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ghuser/lendingdesk/services/lending/domain/models"
)

// DaysOverdue counts whole calendar days from due to today. A manual overdue
// flag is charged at least one day.
func DaysOverdue(due, today time.Time, manual bool) int {
	days := models.DaysBetween(due, today)
	if days < 0 {
		days = 0
	}
	if manual && days < 1 {
		days = 1
	}
	return days
}

// PenaltyAmount is days x rate.
func PenaltyAmount(days int, rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(int64(days)))
}

// AssessPenalty builds the Unpaid penalty owed by an overdue borrow.
// Persisting it at most once per borrow is the repository's job.
func AssessPenalty(b *models.Borrow, today, now time.Time, p Policy, manual bool) (*models.Penalty, error) {
	if b.DueDate == nil {
		return nil, fmt.Errorf("borrow %s has no due date", b.ID)
	}
	days := DaysOverdue(*b.DueDate, today, manual)
	return models.NewPenalty(b.ID, PenaltyAmount(days, p.DailyRate), now), nil
}

// SettlePenalty marks an Unpaid penalty as Paid. It reports false and leaves
// the penalty untouched when it was already paid.
func SettlePenalty(pen *models.Penalty, now time.Time) bool {
	if pen.Status == models.PenaltyPaid {
		return false
	}
	paidAt := now.UTC()
	pen.Status = models.PenaltyPaid
	pen.PaidAt = &paidAt
	return true
}
