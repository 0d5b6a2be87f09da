// Package memory is an in-process implementation of repositories.Store.
//
// Transactions are serialized by a single mutex and rolled back by restoring a
// snapshot, which gives the same isolation the Postgres store gets from row
// locks. Used by application tests and local experiments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/lendingdesk/services/lending/domain"
	"github.com/ghuser/lendingdesk/services/lending/domain/events"
	"github.com/ghuser/lendingdesk/services/lending/domain/models"
	"github.com/ghuser/lendingdesk/services/lending/domain/repositories"
)

// Store keeps items, borrows and penalties in maps.
type Store struct {
	mu        sync.Mutex
	items     map[uuid.UUID]*models.Item
	borrows   map[uuid.UUID]*models.Borrow
	penalties map[uuid.UUID]*models.Penalty

	published []events.Event
	emitErr   error
}

var _ repositories.Store = (*Store)(nil)

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		items:     make(map[uuid.UUID]*models.Item),
		borrows:   make(map[uuid.UUID]*models.Borrow),
		penalties: make(map[uuid.UUID]*models.Penalty),
	}
}

// FailEmits makes every subsequent Emit return err, forcing a rollback.
// Pass nil to restore normal behaviour.
func (s *Store) FailEmits(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitErr = err
}

// Published returns the events of all committed transactions, oldest first.
func (s *Store) Published() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]events.Event, len(s.published))
	copy(out, s.published)
	return out
}

// WithinTx implements repositories.Store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repositories.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	tx := &memTx{s: s}
	if err := fn(ctx, tx); err != nil {
		s.restore(snap)
		return err
	}
	s.published = append(s.published, tx.pending...)
	return nil
}

type snapshot struct {
	items     map[uuid.UUID]*models.Item
	borrows   map[uuid.UUID]*models.Borrow
	penalties map[uuid.UUID]*models.Penalty
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		items:     make(map[uuid.UUID]*models.Item, len(s.items)),
		borrows:   make(map[uuid.UUID]*models.Borrow, len(s.borrows)),
		penalties: make(map[uuid.UUID]*models.Penalty, len(s.penalties)),
	}
	for id, v := range s.items {
		snap.items[id] = v.Clone()
	}
	for id, v := range s.borrows {
		snap.borrows[id] = v.Clone()
	}
	for id, v := range s.penalties {
		snap.penalties[id] = v.Clone()
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.items = snap.items
	s.borrows = snap.borrows
	s.penalties = snap.penalties
}

// GetItem implements repositories.Store.
func (s *Store) GetItem(_ context.Context, id uuid.UUID) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return item.Clone(), nil
}

// ListItems implements repositories.Store. Items are ordered by name.
func (s *Store) ListItems(_ context.Context, f repositories.ItemFilter) ([]*models.Item, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Item
	for _, item := range s.items {
		if f.InStockOnly && item.Stock == 0 {
			continue
		}
		out = append(out, item.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].SerialNumber < out[j].SerialNumber
	})
	total := len(out)
	return page(out, f.QueryOpts), total, nil
}

// GetBorrow implements repositories.Store.
func (s *Store) GetBorrow(_ context.Context, id uuid.UUID) (*models.Borrow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.borrows[id]
	if !ok {
		return nil, domain.ErrBorrowNotFound
	}
	return b.Clone(), nil
}

// ListBorrows implements repositories.Store. Newest requests come first.
func (s *Store) ListBorrows(_ context.Context, f repositories.BorrowFilter) ([]*models.Borrow, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Borrow
	for _, b := range s.borrows {
		if f.UserID != nil && b.UserID != *f.UserID {
			continue
		}
		if f.Status != nil && b.Status != *f.Status {
			continue
		}
		out = append(out, b.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	total := len(out)
	return page(out, f.QueryOpts), total, nil
}

// OverdueCandidates implements repositories.Store.
func (s *Store) OverdueCandidates(_ context.Context, today time.Time, userID *uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for _, b := range s.borrows {
		if userID != nil && b.UserID != *userID {
			continue
		}
		if b.IsOverdue(today) {
			ids = append(ids, b.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

// GetPenalty implements repositories.Store.
func (s *Store) GetPenalty(_ context.Context, id uuid.UUID) (*models.Penalty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pen, ok := s.penalties[id]
	if !ok {
		return nil, domain.ErrPenaltyNotFound
	}
	return pen.Clone(), nil
}

// ListPenalties implements repositories.Store. Newest penalties come first.
func (s *Store) ListPenalties(_ context.Context, f repositories.PenaltyFilter) ([]*models.Penalty, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Penalty
	for _, pen := range s.penalties {
		if f.UserID != nil {
			b, ok := s.borrows[pen.BorrowID]
			if !ok || b.UserID != *f.UserID {
				continue
			}
		}
		if f.Status != nil && pen.Status != *f.Status {
			continue
		}
		out = append(out, pen.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	total := len(out)
	return page(out, f.QueryOpts), total, nil
}

// Report implements repositories.Store.
func (s *Store) Report(_ context.Context) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &models.Report{
		TotalItems:       len(s.items),
		TotalBorrows:     len(s.borrows),
		TotalPenalties:   len(s.penalties),
		TotalCollected:   decimal.Zero,
		OutstandingDebts: decimal.Zero,
	}
	for _, b := range s.borrows {
		switch b.Status {
		case models.StatusBorrowed, models.StatusOverdue:
			r.ActiveBorrows++
		case models.StatusReturned:
			r.ReturnedBorrows++
		case models.StatusPending:
			r.PendingRequests++
		}
	}
	for _, pen := range s.penalties {
		if pen.Status == models.PenaltyPaid {
			r.PaidPenalties++
			r.TotalCollected = r.TotalCollected.Add(pen.Amount)
		} else {
			r.UnpaidPenalties++
			r.OutstandingDebts = r.OutstandingDebts.Add(pen.Amount)
		}
	}
	return r, nil
}

func page[T any](rows []T, opts repositories.QueryOpts) []T {
	if opts.Offset >= len(rows) {
		return nil
	}
	rows = rows[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(rows) {
		rows = rows[:opts.Limit]
	}
	return rows
}

// memTx runs with Store.mu held by WithinTx.
type memTx struct {
	s       *Store
	pending []events.Event
}

func (t *memTx) ItemForUpdate(_ context.Context, id uuid.UUID) (*models.Item, error) {
	item, ok := t.s.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return item.Clone(), nil
}

func (t *memTx) InsertItem(_ context.Context, item *models.Item) error {
	if t.serialTaken(item.SerialNumber, item.ID) {
		return domain.ErrDuplicateSerial
	}
	if _, ok := t.s.items[item.ID]; ok {
		return fmt.Errorf("item %s already stored", item.ID)
	}
	t.s.items[item.ID] = item.Clone()
	return nil
}

func (t *memTx) UpdateItem(_ context.Context, item *models.Item) error {
	if _, ok := t.s.items[item.ID]; !ok {
		return domain.ErrItemNotFound
	}
	if t.serialTaken(item.SerialNumber, item.ID) {
		return domain.ErrDuplicateSerial
	}
	if item.Stock < 0 {
		return fmt.Errorf("item %s: stock must not be negative", item.ID)
	}
	t.s.items[item.ID] = item.Clone()
	return nil
}

func (t *memTx) serialTaken(serial models.SerialNumber, except uuid.UUID) bool {
	for id, other := range t.s.items {
		if id != except && other.SerialNumber == serial {
			return true
		}
	}
	return false
}

func (t *memTx) DeleteItem(_ context.Context, id uuid.UUID) error {
	if _, ok := t.s.items[id]; !ok {
		return domain.ErrItemNotFound
	}
	delete(t.s.items, id)
	for bid, b := range t.s.borrows {
		if b.ItemID != id {
			continue
		}
		delete(t.s.borrows, bid)
		for pid, pen := range t.s.penalties {
			if pen.BorrowID == bid {
				delete(t.s.penalties, pid)
			}
		}
	}
	return nil
}

func (t *memTx) CountOpenBorrowsForItem(_ context.Context, itemID uuid.UUID) (int, error) {
	n := 0
	for _, b := range t.s.borrows {
		if b.ItemID == itemID && (b.Status == models.StatusPending || b.IsActive()) {
			n++
		}
	}
	return n, nil
}

func (t *memTx) BorrowForUpdate(_ context.Context, id uuid.UUID) (*models.Borrow, error) {
	b, ok := t.s.borrows[id]
	if !ok {
		return nil, domain.ErrBorrowNotFound
	}
	return b.Clone(), nil
}

func (t *memTx) InsertBorrow(_ context.Context, b *models.Borrow) error {
	if _, ok := t.s.items[b.ItemID]; !ok {
		return domain.ErrItemNotFound
	}
	t.s.borrows[b.ID] = b.Clone()
	return nil
}

func (t *memTx) UpdateBorrow(_ context.Context, b *models.Borrow) error {
	if _, ok := t.s.borrows[b.ID]; !ok {
		return domain.ErrBorrowNotFound
	}
	t.s.borrows[b.ID] = b.Clone()
	return nil
}

func (t *memTx) PenaltyForUpdate(_ context.Context, id uuid.UUID) (*models.Penalty, error) {
	pen, ok := t.s.penalties[id]
	if !ok {
		return nil, domain.ErrPenaltyNotFound
	}
	return pen.Clone(), nil
}

func (t *memTx) PenaltyForBorrow(_ context.Context, borrowID uuid.UUID) (*models.Penalty, bool, error) {
	for _, pen := range t.s.penalties {
		if pen.BorrowID == borrowID {
			return pen.Clone(), true, nil
		}
	}
	return nil, false, nil
}

func (t *memTx) InsertPenalty(ctx context.Context, pen *models.Penalty) (bool, error) {
	if _, ok := t.s.borrows[pen.BorrowID]; !ok {
		return false, domain.ErrBorrowNotFound
	}
	if _, exists, _ := t.PenaltyForBorrow(ctx, pen.BorrowID); exists {
		return false, nil
	}
	t.s.penalties[pen.ID] = pen.Clone()
	return true, nil
}

func (t *memTx) UpdatePenalty(_ context.Context, pen *models.Penalty) error {
	if _, ok := t.s.penalties[pen.ID]; !ok {
		return domain.ErrPenaltyNotFound
	}
	t.s.penalties[pen.ID] = pen.Clone()
	return nil
}

func (t *memTx) DeletePenaltyForBorrow(_ context.Context, borrowID uuid.UUID) (bool, error) {
	for id, pen := range t.s.penalties {
		if pen.BorrowID == borrowID {
			delete(t.s.penalties, id)
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) Emit(_ context.Context, evt events.Event) error {
	if t.s.emitErr != nil {
		return t.s.emitErr
	}
	t.pending = append(t.pending, evt)
	return nil
}
