package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ghuser/lendingdesk/pkg/cache"
	"github.com/ghuser/lendingdesk/pkg/config"
	"github.com/ghuser/lendingdesk/pkg/logger"
	"github.com/ghuser/lendingdesk/services/lending/domain/models"
	domainsvcs "github.com/ghuser/lendingdesk/services/lending/domain/services"
	"github.com/ghuser/lendingdesk/services/lending/infrastructure/persistence/memory"
)

var testStart = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) AdvanceDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.AddDate(0, 0, n)
}

type fakeCache struct {
	mu    sync.Mutex
	items map[uuid.UUID]*cache.CachedItem
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[uuid.UUID]*cache.CachedItem)}
}

func (f *fakeCache) Get(_ context.Context, id uuid.UUID) (*cache.CachedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return nil, redis.Nil
	}
	c := *it
	return &c, nil
}

func (f *fakeCache) Set(_ context.Context, it *cache.CachedItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *it
	f.items[it.ID] = &c
	return nil
}

func (f *fakeCache) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

func (f *fakeCache) has(id uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.items[id]
	return ok
}

type fixture struct {
	store *memory.Store
	clock *fakeClock
	cache *fakeCache
	svc   *Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: memory.NewStore(),
		clock: &fakeClock{t: testStart},
		cache: newFakeCache(),
	}
	f.svc = NewWithDeps(Deps{
		Store:       f.store,
		Cache:       f.cache,
		Policy:      domainsvcs.DefaultPolicy(),
		Clock:       f.clock.Now,
		Logger:      logger.New(&config.Config{LogLevel: "error"}),
		SweepOnRead: true,
	})
	return f
}

var serialSeq int

func (f *fixture) item(t *testing.T, stock int) *models.Item {
	t.Helper()
	serialSeq++
	item, err := f.svc.Items.Create(context.Background(), ItemInput{
		SerialNumber: fmt.Sprintf("SN-%04d", serialSeq),
		Name:         "Cordless Drill",
		ItemType:     "Tool",
		Stock:        stock,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	return item
}

func (f *fixture) request(t *testing.T, userID uuid.UUID, item *models.Item, qty int) *models.Borrow {
	t.Helper()
	b, err := f.svc.Lending.RequestBorrow(context.Background(), userID, item.ID, qty)
	if err != nil {
		t.Fatalf("request borrow: %v", err)
	}
	return b
}

func (f *fixture) borrowed(t *testing.T, userID uuid.UUID, item *models.Item, qty int) *models.Borrow {
	t.Helper()
	b := f.request(t, userID, item, qty)
	b, err := f.svc.Lending.Approve(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	return b
}

func (f *fixture) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	item, err := f.store.GetItem(context.Background(), id)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	return item.Stock
}

func (f *fixture) borrow(t *testing.T, id uuid.UUID) *models.Borrow {
	t.Helper()
	b, err := f.store.GetBorrow(context.Background(), id)
	if err != nil {
		t.Fatalf("get borrow: %v", err)
	}
	return b
}
