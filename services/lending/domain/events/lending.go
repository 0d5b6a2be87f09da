// Package events defines the integration events published by the lending
// context. They are written to the outbox in the same transaction as the
// state change they describe.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/lendingdesk/services/lending/domain/models"
)

// Watermill topics published by the lending context.
const (
	TopicBorrowStatusChanged = "lending.borrow.status_changed"
	TopicItemStockChanged    = "lending.item.stock_changed"
	TopicPenaltyChanged      = "lending.penalty.changed"
)

// Topics lists every topic the lending context publishes.
func Topics() []string {
	return []string{TopicBorrowStatusChanged, TopicItemStockChanged, TopicPenaltyChanged}
}

// Schema version stamped on every payload; increment on breaking changes.
const Version = 1

// Event is a payload that knows which topic it belongs to.
type Event interface {
	Topic() string
	ID() uuid.UUID
}

// BorrowStatusChanged is published whenever a borrow moves between statuses,
// including creation (From is empty).
type BorrowStatusChanged struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	BorrowID   uuid.UUID `json:"borrow_id"`
	UserID     uuid.UUID `json:"user_id"`
	ItemID     uuid.UUID `json:"item_id"`
	Quantity   int       `json:"quantity"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e BorrowStatusChanged) Topic() string { return TopicBorrowStatusChanged }
func (e BorrowStatusChanged) ID() uuid.UUID  { return e.EventID }

// ItemStockChanged carries the item's stock and condition after a change.
// Consumers use it to refresh the stock read model.
type ItemStockChanged struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	ItemID     uuid.UUID `json:"item_id"`
	Stock      int       `json:"stock"`
	Condition  string    `json:"condition"`
	Deleted    bool      `json:"deleted,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e ItemStockChanged) Topic() string { return TopicItemStockChanged }
func (e ItemStockChanged) ID() uuid.UUID  { return e.EventID }

// Penalty actions carried by PenaltyChanged.
const (
	PenaltyCreated   = "created"
	PenaltySettled   = "settled"
	PenaltyCancelled = "cancelled"
)

// PenaltyChanged is published when a penalty is created, paid or deleted.
type PenaltyChanged struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	PenaltyID  uuid.UUID `json:"penalty_id"`
	BorrowID   uuid.UUID `json:"borrow_id"`
	Action     string    `json:"action"`
	Amount     string    `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e PenaltyChanged) Topic() string { return TopicPenaltyChanged }
func (e PenaltyChanged) ID() uuid.UUID  { return e.EventID }

// BorrowStatus builds a BorrowStatusChanged for b after it moved away from from.
func BorrowStatus(b *models.Borrow, from models.Status, now time.Time) BorrowStatusChanged {
	return BorrowStatusChanged{
		EventID:    uuid.New(),
		Version:    Version,
		BorrowID:   b.ID,
		UserID:     b.UserID,
		ItemID:     b.ItemID,
		Quantity:   b.Quantity,
		From:       from.String(),
		To:         b.Status.String(),
		OccurredAt: now.UTC(),
	}
}

// ItemStock builds an ItemStockChanged snapshot of item.
func ItemStock(item *models.Item, now time.Time) ItemStockChanged {
	return ItemStockChanged{
		EventID:    uuid.New(),
		Version:    Version,
		ItemID:     item.ID,
		Stock:      item.Stock,
		Condition:  item.Condition.String(),
		OccurredAt: now.UTC(),
	}
}

// PenaltyAction builds a PenaltyChanged for pen.
func PenaltyAction(pen *models.Penalty, action string, now time.Time) PenaltyChanged {
	return PenaltyChanged{
		EventID:    uuid.New(),
		Version:    Version,
		PenaltyID:  pen.ID,
		BorrowID:   pen.BorrowID,
		Action:     action,
		Amount:     pen.Amount.StringFixed(2),
		OccurredAt: now.UTC(),
	}
}
