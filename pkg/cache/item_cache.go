package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// ItemCacheTTL is the time-to-live for cached items.
	ItemCacheTTL = 24 * time.Hour
)

// CachedItem is the denormalized read model stored in Redis. It backs the
// item detail endpoint; stock shown here may trail the database by the time
// it takes the stock_changed event to be consumed.
type CachedItem struct {
	ID           uuid.UUID `json:"id"`
	SerialNumber string    `json:"serial_number"`
	Name         string    `json:"name"`
	ItemType     string    `json:"item_type"`
	Condition    string    `json:"condition"`
	Stock        int       `json:"stock"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ItemCache provides structured read/write operations for item cache entries.
// Key format: "lending:item:{itemID}"
type ItemCache struct {
	client *RedisClient
}

// NewItemCache creates a new ItemCache backed by the given RedisClient.
func NewItemCache(r *RedisClient) *ItemCache {
	return &ItemCache{client: r}
}

// Get retrieves a cached item by ID.
// Returns redis.Nil error when the key does not exist or has expired.
func (c *ItemCache) Get(ctx context.Context, itemID uuid.UUID) (*CachedItem, error) {
	vals, err := c.client.Client().HGetAll(ctx, ItemKey(itemID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil // key not found
	}
	return decodeItem(vals)
}

// Set writes a cached item as a Redis hash with a 24-hour TTL.
// Uses a pipeline to set all fields and the TTL atomically.
func (c *ItemCache) Set(ctx context.Context, item *CachedItem) error {
	key := ItemKey(item.ID)
	pipe := c.client.Client().TxPipeline()
	pipe.HSet(ctx, key, encodeItem(item)...)
	pipe.Expire(ctx, key, ItemCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// SetStock updates stock and condition of an entry that is already cached.
// Missing entries are left missing; the next read repopulates them in full.
func (c *ItemCache) SetStock(ctx context.Context, itemID uuid.UUID, stock int, condition string, at time.Time) error {
	key := ItemKey(itemID)
	n, err := c.client.Client().Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("cache exists: %w", err)
	}
	if n == 0 {
		return nil
	}
	err = c.client.Client().HSet(ctx, key,
		"stock", strconv.Itoa(stock),
		"condition", condition,
		"updated_at", at.UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fmt.Errorf("cache set stock: %w", err)
	}
	return nil
}

// Delete removes a cached item.
func (c *ItemCache) Delete(ctx context.Context, itemID uuid.UUID) error {
	if err := c.client.Client().Del(ctx, ItemKey(itemID)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// ItemKey builds the Redis key: "lending:item:{itemID}"
func ItemKey(itemID uuid.UUID) string {
	return Key("item", itemID.String())
}

func encodeItem(item *CachedItem) []any {
	return []any{
		"id", item.ID.String(),
		"serial_number", item.SerialNumber,
		"name", item.Name,
		"item_type", item.ItemType,
		"condition", item.Condition,
		"stock", strconv.Itoa(item.Stock),
		"updated_at", item.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func decodeItem(vals map[string]string) (*CachedItem, error) {
	id, err := uuid.Parse(vals["id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	stock, err := strconv.Atoi(vals["stock"])
	if err != nil {
		return nil, fmt.Errorf("cache parse stock: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, vals["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse updated_at: %w", err)
	}
	return &CachedItem{
		ID:           id,
		SerialNumber: vals["serial_number"],
		Name:         vals["name"],
		ItemType:     vals["item_type"],
		Condition:    vals["condition"],
		Stock:        stock,
		UpdatedAt:    updatedAt,
	}, nil
}
