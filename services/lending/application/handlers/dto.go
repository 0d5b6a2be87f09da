package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/lendingdesk/services/lending/domain/models"
)

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"not enough stock: 3 requested, 2 in stock"`
} // @name ErrorResponse

// ItemResponse is the public view of an item.
type ItemResponse struct {
	ID           uuid.UUID `json:"id"            example:"123e4567-e89b-12d3-a456-426614174000"`
	SerialNumber string    `json:"serial_number" example:"DRL-0042"`
	Name         string    `json:"name"          example:"Cordless Drill"`
	ItemType     string    `json:"item_type"     example:"Tool"`
	Condition    string    `json:"condition"     example:"Available"`
	Stock        int       `json:"stock"         example:"3"`
	UpdatedAt    time.Time `json:"updated_at"    example:"2026-03-10T14:00:00Z"`
} // @name ItemResponse

// BorrowResponse is the public view of a borrow transaction. Dates are
// calendar dates (YYYY-MM-DD).
type BorrowResponse struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	ItemID     uuid.UUID `json:"item_id"`
	Quantity   int       `json:"quantity"              example:"1"`
	Status     string    `json:"status"                example:"Borrowed"`
	BorrowDate *string   `json:"borrow_date,omitempty" example:"2026-03-10"`
	DueDate    *string   `json:"due_date,omitempty"    example:"2026-03-13"`
	ReturnDate *string   `json:"return_date,omitempty" example:"2026-03-12"`
	CreatedAt  time.Time `json:"created_at"`
} // @name BorrowResponse

// PenaltyResponse is the public view of a penalty. Amount is a decimal string.
type PenaltyResponse struct {
	ID        uuid.UUID  `json:"id"`
	BorrowID  uuid.UUID  `json:"borrow_id"`
	Amount    string     `json:"amount"            example:"250.00"`
	Status    string     `json:"status"            example:"Unpaid"`
	CreatedAt time.Time  `json:"created_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
} // @name PenaltyResponse

// ReportResponse holds the aggregate counters of the admin report.
type ReportResponse struct {
	TotalItems       int    `json:"total_items"`
	TotalBorrows     int    `json:"total_borrows"`
	ActiveBorrows    int    `json:"active_borrows"`
	ReturnedBorrows  int    `json:"returned_borrows"`
	PendingRequests  int    `json:"pending_requests"`
	TotalPenalties   int    `json:"total_penalties"`
	PaidPenalties    int    `json:"paid_penalties"`
	UnpaidPenalties  int    `json:"unpaid_penalties"`
	TotalCollected   string `json:"total_collected"   example:"450.00"`
	OutstandingDebts string `json:"outstanding_debts" example:"100.00"`
} // @name ReportResponse

// SweepResponse reports how many borrows a sweep moved to Overdue.
type SweepResponse struct {
	Marked int `json:"marked" example:"2"`
} // @name SweepResponse

func toItemResponse(i *models.Item) ItemResponse {
	return ItemResponse{
		ID:           i.ID,
		SerialNumber: i.SerialNumber.String(),
		Name:         i.Name.String(),
		ItemType:     i.ItemType,
		Condition:    i.Condition.String(),
		Stock:        i.Stock,
		UpdatedAt:    i.UpdatedAt,
	}
}

func toBorrowResponse(b *models.Borrow) BorrowResponse {
	return BorrowResponse{
		ID:         b.ID,
		UserID:     b.UserID,
		ItemID:     b.ItemID,
		Quantity:   b.Quantity,
		Status:     b.Status.String(),
		BorrowDate: formatDate(b.BorrowDate),
		DueDate:    formatDate(b.DueDate),
		ReturnDate: formatDate(b.ReturnDate),
		CreatedAt:  b.CreatedAt,
	}
}

func toPenaltyResponse(p *models.Penalty) PenaltyResponse {
	return PenaltyResponse{
		ID:        p.ID,
		BorrowID:  p.BorrowID,
		Amount:    p.Amount.StringFixed(2),
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		PaidAt:    p.PaidAt,
	}
}

func toReportResponse(r *models.Report) ReportResponse {
	return ReportResponse{
		TotalItems:       r.TotalItems,
		TotalBorrows:     r.TotalBorrows,
		ActiveBorrows:    r.ActiveBorrows,
		ReturnedBorrows:  r.ReturnedBorrows,
		PendingRequests:  r.PendingRequests,
		TotalPenalties:   r.TotalPenalties,
		PaidPenalties:    r.PaidPenalties,
		UnpaidPenalties:  r.UnpaidPenalties,
		TotalCollected:   r.TotalCollected.StringFixed(2),
		OutstandingDebts: r.OutstandingDebts.StringFixed(2),
	}
}

func mapAll[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}
