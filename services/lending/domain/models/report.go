package models

import "github.com/shopspring/decimal"

// Report holds aggregate counts across items, borrows and penalties.
type Report struct {
	TotalItems       int
	TotalBorrows     int
	ActiveBorrows    int // Borrowed + Overdue
	ReturnedBorrows  int
	PendingRequests  int
	TotalPenalties   int
	PaidPenalties    int
	UnpaidPenalties  int
	TotalCollected   decimal.Decimal
	OutstandingDebts decimal.Decimal
}
