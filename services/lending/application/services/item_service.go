package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ghuser/lendingdesk/pkg/cache"
	"github.com/ghuser/lendingdesk/pkg/logger"
	"github.com/ghuser/lendingdesk/services/lending/domain"
	"github.com/ghuser/lendingdesk/services/lending/domain/events"
	"github.com/ghuser/lendingdesk/services/lending/domain/models"
	"github.com/ghuser/lendingdesk/services/lending/domain/repositories"
	domainsvcs "github.com/ghuser/lendingdesk/services/lending/domain/services"
)

// ItemInput carries the editable fields of an item.
type ItemInput struct {
	SerialNumber string
	Name         string
	ItemType     string
	Condition    string // empty means Available
	Stock        int
}

// ItemService manages the item catalogue.
// Reads are served from Redis cache when available.
type ItemService struct {
	store repositories.Store
	cache ItemCache
	now   Clock
	log   logger.Logger
}

// Create validates and persists an Item. A serial number already in use
// yields ErrDuplicateSerial.
func (s *ItemService) Create(ctx context.Context, in ItemInput) (*models.Item, error) {
	item, err := buildItem(in)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if err := tx.InsertItem(ctx, item); err != nil {
			return err
		}
		return tx.Emit(ctx, events.ItemStock(item, now))
	})
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	s.log.InfoContext(ctx, "item created", "item_id", item.ID, "serial_number", item.SerialNumber)
	return item, nil
}

// Update replaces the item's editable fields. Setting Stock here is a
// catalogue correction (restock or write-off), not a lending movement.
func (s *ItemService) Update(ctx context.Context, id uuid.UUID, in ItemInput) (*models.Item, error) {
	patch, err := buildItem(in)
	if err != nil {
		return nil, err
	}
	var out *models.Item
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		item, err := tx.ItemForUpdate(ctx, id)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		item.SerialNumber = patch.SerialNumber
		item.Name = patch.Name
		item.ItemType = patch.ItemType
		item.Condition = patch.Condition
		item.Stock = patch.Stock
		item.UpdatedAt = now
		if err := tx.UpdateItem(ctx, item); err != nil {
			return err
		}
		out = item
		return tx.Emit(ctx, events.ItemStock(item, now))
	})
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	s.evict(ctx, id)
	return out, nil
}

// Delete removes an item. Items with Pending, Borrowed or Overdue borrows
// cannot be deleted (ErrItemInUse).
func (s *ItemService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		item, err := tx.ItemForUpdate(ctx, id)
		if err != nil {
			return err
		}
		open, err := tx.CountOpenBorrowsForItem(ctx, id)
		if err != nil {
			return err
		}
		if open > 0 {
			return fmt.Errorf("%w: %d open borrows", domain.ErrItemInUse, open)
		}
		if err := tx.DeleteItem(ctx, id); err != nil {
			return err
		}
		evt := events.ItemStock(item, s.now().UTC())
		evt.Deleted = true
		return tx.Emit(ctx, evt)
	})
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	s.evict(ctx, id)
	s.log.InfoContext(ctx, "item deleted", "item_id", id)
	return nil
}

// GetByID retrieves an Item using a read-through cache pattern:
//  1. Check Redis cache first.
//  2. On cache miss (or cache error), query Postgres.
//  3. Warm the cache with the Postgres result.
func (s *ItemService) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err == nil {
			return fromCache(cached), nil
		}
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "item cache read failed", "item_id", id, "error", err)
		}
	}

	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, toCache(item)); err != nil {
			s.log.WarnContext(ctx, "item cache write failed", "item_id", id, "error", err)
		}
	}
	return item, nil
}

// List returns a page of items plus the total count.
func (s *ItemService) List(ctx context.Context, f repositories.ItemFilter) ([]*models.Item, int, error) {
	items, total, err := s.store.ListItems(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	return items, total, nil
}

func (s *ItemService) evict(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(context.WithoutCancel(ctx), id); err != nil {
		s.log.WarnContext(ctx, "item cache invalidation failed", "item_id", id, "error", err)
	}
}

func buildItem(in ItemInput) (*models.Item, error) {
	serial, err := models.NewSerialNumber(in.SerialNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidItem, err)
	}
	name, err := models.NewItemName(in.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidItem, err)
	}
	item, err := models.NewItem(serial, name, in.ItemType, models.Condition(in.Condition), in.Stock)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidItem, err)
	}
	if err := domainsvcs.ValidateItem(item); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidItem, err)
	}
	return item, nil
}

func toCache(item *models.Item) *cache.CachedItem {
	return &cache.CachedItem{
		ID:           item.ID,
		SerialNumber: item.SerialNumber.String(),
		Name:         item.Name.String(),
		ItemType:     item.ItemType,
		Condition:    item.Condition.String(),
		Stock:        item.Stock,
		UpdatedAt:    item.UpdatedAt,
	}
}

func fromCache(c *cache.CachedItem) *models.Item {
	return &models.Item{
		ID:           c.ID,
		SerialNumber: models.SerialNumber(c.SerialNumber),
		Name:         models.ItemName(c.Name),
		ItemType:     c.ItemType,
		Condition:    models.Condition(c.Condition),
		Stock:        c.Stock,
		UpdatedAt:    c.UpdatedAt,
	}
}
