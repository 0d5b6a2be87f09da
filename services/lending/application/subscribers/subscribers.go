// Package subscribers consumes lending domain events in the worker process.
package subscribers

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/lendingdesk/pkg/events"
	"github.com/ghuser/lendingdesk/pkg/logger"
	lendingevents "github.com/ghuser/lendingdesk/services/lending/domain/events"
)

// Handler processes one message. Handlers must be idempotent: the EventBus
// redelivers on failure.
type Handler func(ctx context.Context, msg *message.Message) error

// StockCache is the part of the item cache refreshed from stock events.
type StockCache interface {
	SetStock(ctx context.Context, itemID uuid.UUID, stock int, condition string, at time.Time) error
	Delete(ctx context.Context, itemID uuid.UUID) error
}

// Handlers maps each lending topic to its handler.
func Handlers(stock StockCache, log logger.Logger) map[string]Handler {
	return map[string]Handler{
		lendingevents.TopicItemStockChanged:    HandleStockChanged(stock, log),
		lendingevents.TopicBorrowStatusChanged: HandleBorrowStatusChanged(log),
		lendingevents.TopicPenaltyChanged:      HandlePenaltyChanged(log),
	}
}

// Register subscribes every lending handler on bus. Subscriber errors are
// logged in the background.
func Register(ctx context.Context, bus *events.EventBus, stock StockCache, log logger.Logger) ([]string, error) {
	var topics []string
	for topic, h := range Handlers(stock, log) {
		errCh, err := bus.Subscribe(ctx, topic, h)
		if err != nil {
			return nil, fmt.Errorf("subscribe %s: %w", topic, err)
		}
		go func(topic string) {
			for err := range errCh {
				log.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}(topic)
		topics = append(topics, topic)
	}
	return topics, nil
}

// HandleStockChanged refreshes the cached stock of an item. Only entries
// already in the cache are touched; a deleted item is evicted. Cache errors
// are logged and not retried, since the API re-reads Postgres on a miss.
func HandleStockChanged(stock StockCache, log logger.Logger) Handler {
	return func(ctx context.Context, msg *message.Message) error {
		evt, err := events.Decode[lendingevents.ItemStockChanged](msg)
		if err != nil {
			return err
		}
		if evt.Deleted {
			err = stock.Delete(ctx, evt.ItemID)
		} else {
			err = stock.SetStock(ctx, evt.ItemID, evt.Stock, evt.Condition, evt.OccurredAt)
		}
		if err != nil {
			log.WarnContext(ctx, "item cache refresh failed", "item_id", evt.ItemID, "error", err)
		}
		return nil
	}
}

// HandleBorrowStatusChanged records lifecycle transitions in the worker log.
func HandleBorrowStatusChanged(log logger.Logger) Handler {
	return func(ctx context.Context, msg *message.Message) error {
		evt, err := events.Decode[lendingevents.BorrowStatusChanged](msg)
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "borrow status changed",
			"borrow_id", evt.BorrowID, "user_id", evt.UserID, "item_id", evt.ItemID,
			"from", evt.From, "to", evt.To)
		return nil
	}
}

// HandlePenaltyChanged records penalty actions in the worker log.
func HandlePenaltyChanged(log logger.Logger) Handler {
	return func(ctx context.Context, msg *message.Message) error {
		evt, err := events.Decode[lendingevents.PenaltyChanged](msg)
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "penalty changed",
			"penalty_id", evt.PenaltyID, "borrow_id", evt.BorrowID, "action", evt.Action, "amount", evt.Amount)
		return nil
	}
}
