package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ghuser/lendingdesk/services/lending/domain"
	"github.com/ghuser/lendingdesk/services/lending/domain/events"
	"github.com/ghuser/lendingdesk/services/lending/domain/models"
	"github.com/ghuser/lendingdesk/services/lending/domain/repositories"
)

func TestItemService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	valid := ItemInput{SerialNumber: "CAM-001", Name: "Camera", ItemType: "Electronics", Stock: 2}

	t.Run("valid", func(t *testing.T) {
		item, err := f.svc.Items.Create(ctx, valid)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.Condition != models.ConditionAvailable || item.Stock != 2 {
			t.Fatalf("unexpected item %+v", item)
		}
		if !item.CreatedAt.Equal(testStart) {
			t.Fatalf("expected created_at from clock, got %v", item.CreatedAt)
		}
	})

	t.Run("duplicate serial", func(t *testing.T) {
		in := valid
		in.Name = "Another camera"
		_, err := f.svc.Items.Create(ctx, in)
		if !errors.Is(err, domain.ErrDuplicateSerial) {
			t.Fatalf("expected ErrDuplicateSerial, got %v", err)
		}
	})

	invalid := []struct {
		name string
		mod  func(in *ItemInput)
	}{
		{"empty serial", func(in *ItemInput) { in.SerialNumber = "" }},
		{"serial with spaces", func(in *ItemInput) { in.SerialNumber = "CAM 002" }},
		{"empty name", func(in *ItemInput) { in.Name = "" }},
		{"name too long", func(in *ItemInput) { in.Name = strings.Repeat("x", 101) }},
		{"empty type", func(in *ItemInput) { in.ItemType = " " }},
		{"negative stock", func(in *ItemInput) { in.Stock = -1 }},
		{"unknown condition", func(in *ItemInput) { in.Condition = "Broken" }},
	}
	for i, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			in.SerialNumber = fmt.Sprintf("CAM-%03d", i+100)
			tt.mod(&in)
			_, err := f.svc.Items.Create(ctx, in)
			if !errors.Is(err, domain.ErrInvalidItem) {
				t.Fatalf("expected ErrInvalidItem, got %v", err)
			}
		})
	}
}

func TestItemService_Update(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.item(t, 1)
	other := f.item(t, 1)

	got, err := f.svc.Items.Update(ctx, item.ID, ItemInput{
		SerialNumber: item.SerialNumber.String(),
		Name:         "Hammer Drill",
		ItemType:     "Tool",
		Condition:    "Under Maintenance",
		Stock:        4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Hammer Drill" || got.Stock != 4 || got.Condition != models.ConditionUnderMaintenance {
		t.Fatalf("unexpected item %+v", got)
	}

	_, err = f.svc.Items.Update(ctx, item.ID, ItemInput{
		SerialNumber: other.SerialNumber.String(), Name: "Drill", ItemType: "Tool", Stock: 1,
	})
	if !errors.Is(err, domain.ErrDuplicateSerial) {
		t.Fatalf("expected ErrDuplicateSerial, got %v", err)
	}

	_, err = f.svc.Items.Update(ctx, uuid.New(), ItemInput{SerialNumber: "X-1", Name: "Drill", ItemType: "Tool"})
	if !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestItemService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("open borrow blocks deletion", func(t *testing.T) {
		f := newFixture(t)
		item := f.item(t, 2)
		f.request(t, uuid.New(), item, 1)
		if err := f.svc.Items.Delete(ctx, item.ID); !errors.Is(err, domain.ErrItemInUse) {
			t.Fatalf("expected ErrItemInUse, got %v", err)
		}
	})

	t.Run("closed borrows allow deletion", func(t *testing.T) {
		f := newFixture(t)
		item := f.item(t, 2)
		b := f.borrowed(t, uuid.New(), item, 1)
		if _, err := f.svc.Lending.Return(ctx, b.ID); err != nil {
			t.Fatalf("return: %v", err)
		}
		if err := f.svc.Items.Delete(ctx, item.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := f.store.GetItem(ctx, item.ID); !errors.Is(err, domain.ErrItemNotFound) {
			t.Fatalf("expected ErrItemNotFound after delete, got %v", err)
		}
		var deleted bool
		for _, evt := range f.store.Published() {
			if e, ok := evt.(events.ItemStockChanged); ok && e.ItemID == item.ID && e.Deleted {
				deleted = true
			}
		}
		if !deleted {
			t.Fatal("expected a deleted stock event")
		}
	})

	t.Run("missing item", func(t *testing.T) {
		f := newFixture(t)
		if err := f.svc.Items.Delete(ctx, uuid.New()); !errors.Is(err, domain.ErrItemNotFound) {
			t.Fatalf("expected ErrItemNotFound, got %v", err)
		}
	})
}

func TestItemService_GetByIDReadThrough(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.item(t, 3)

	if f.cache.has(item.ID) {
		t.Fatal("cache should be cold before the first read")
	}
	got, err := f.svc.Items.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Stock != 3 || !f.cache.has(item.ID) {
		t.Fatalf("expected stock 3 and a warmed cache, got %d", got.Stock)
	}

	// an approval evicts the entry so the next read sees the new stock
	f.borrowed(t, uuid.New(), item, 2)
	if f.cache.has(item.ID) {
		t.Fatal("expected cache entry evicted after approval")
	}
	got, err = f.svc.Items.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Stock != 1 {
		t.Fatalf("expected stock 1, got %d", got.Stock)
	}

	if _, err := f.svc.Items.GetByID(ctx, uuid.New()); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestItemService_ListInStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.item(t, 0)
	f.item(t, 2)

	items, total, err := f.svc.Items.List(ctx, repositories.ItemFilter{InStockOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Stock != 2 {
		t.Fatalf("expected one in-stock item, got %d %+v", total, items)
	}
}
