// Package postgres implements the lending repositories on PostgreSQL using
// sqlc-generated queries. Lifecycle mutations lock rows with SELECT ... FOR
// UPDATE inside database.WithTx; events go to the Watermill outbox in the
// same transaction.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/lendingdesk/pkg/database"
	"github.com/ghuser/lendingdesk/pkg/events"
	"github.com/ghuser/lendingdesk/services/lending/domain"
	domainevents "github.com/ghuser/lendingdesk/services/lending/domain/events"
	"github.com/ghuser/lendingdesk/services/lending/domain/models"
	"github.com/ghuser/lendingdesk/services/lending/domain/repositories"
	"github.com/ghuser/lendingdesk/services/lending/infrastructure/persistence/postgres/db"
)

const (
	uniqueViolation = "23505"
	checkViolation  = "23514"

	serialConstraint = "items_serial_number_key"

	// defaultPageSize applies when a list query carries no limit.
	defaultPageSize = 100
)

// Store implements repositories.Store against PostgreSQL.
type Store struct {
	db  *database.Database
	bus *events.EventBus
}

var _ repositories.Store = (*Store)(nil)

// NewStore returns a Store backed by the given pool. bus may be nil, in which
// case emitted events are dropped.
func NewStore(database *database.Database, bus *events.EventBus) *Store {
	return &Store{db: database, bus: bus}
}

// WithinTx implements repositories.Store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repositories.Tx) error) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return fn(ctx, &pgTx{tx: tx, q: db.New(tx), bus: s.bus})
	})
}

// GetItem implements repositories.Store.
func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	row, err := db.New(s.db.DB()).GetItemByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrItemNotFound, "query item")
	}
	return rowToItem(row), nil
}

// ListItems implements repositories.Store.
func (s *Store) ListItems(ctx context.Context, f repositories.ItemFilter) ([]*models.Item, int, error) {
	q := db.New(s.db.DB())
	limit, offset := pageArgs(f.QueryOpts)
	rows, err := q.ListItems(ctx, db.ListItemsParams{InStockOnly: f.InStockOnly, RowLimit: limit, RowOffset: offset})
	if err != nil {
		return nil, 0, fmt.Errorf("query items: %w", err)
	}
	total, err := q.CountItems(ctx, f.InStockOnly)
	if err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}
	items := make([]*models.Item, len(rows))
	for i, row := range rows {
		items[i] = rowToItem(row)
	}
	return items, int(total), nil
}

// GetBorrow implements repositories.Store.
func (s *Store) GetBorrow(ctx context.Context, id uuid.UUID) (*models.Borrow, error) {
	row, err := db.New(s.db.DB()).GetBorrowByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrBorrowNotFound, "query borrow")
	}
	return rowToBorrow(row), nil
}

// ListBorrows implements repositories.Store.
func (s *Store) ListBorrows(ctx context.Context, f repositories.BorrowFilter) ([]*models.Borrow, int, error) {
	q := db.New(s.db.DB())
	limit, offset := pageArgs(f.QueryOpts)
	userID, status := nullUUID(f.UserID), nullStatus(f.Status)

	rows, err := q.ListBorrows(ctx, db.ListBorrowsParams{UserID: userID, Status: status, RowLimit: limit, RowOffset: offset})
	if err != nil {
		return nil, 0, fmt.Errorf("query borrows: %w", err)
	}
	total, err := q.CountBorrows(ctx, db.CountBorrowsParams{UserID: userID, Status: status})
	if err != nil {
		return nil, 0, fmt.Errorf("count borrows: %w", err)
	}
	out := make([]*models.Borrow, len(rows))
	for i, row := range rows {
		out[i] = rowToBorrow(row)
	}
	return out, int(total), nil
}

// OverdueCandidates implements repositories.Store.
func (s *Store) OverdueCandidates(ctx context.Context, today time.Time, userID *uuid.UUID) ([]uuid.UUID, error) {
	ids, err := db.New(s.db.DB()).ListOverdueCandidates(ctx, db.ListOverdueCandidatesParams{
		Today:  models.DateOf(today),
		UserID: nullUUID(userID),
	})
	if err != nil {
		return nil, fmt.Errorf("query overdue candidates: %w", err)
	}
	return ids, nil
}

// GetPenalty implements repositories.Store.
func (s *Store) GetPenalty(ctx context.Context, id uuid.UUID) (*models.Penalty, error) {
	row, err := db.New(s.db.DB()).GetPenaltyByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrPenaltyNotFound, "query penalty")
	}
	return rowToPenalty(row), nil
}

// ListPenalties implements repositories.Store.
func (s *Store) ListPenalties(ctx context.Context, f repositories.PenaltyFilter) ([]*models.Penalty, int, error) {
	q := db.New(s.db.DB())
	limit, offset := pageArgs(f.QueryOpts)
	userID := nullUUID(f.UserID)
	var status sql.NullString
	if f.Status != nil {
		status = sql.NullString{String: string(*f.Status), Valid: true}
	}

	rows, err := q.ListPenalties(ctx, db.ListPenaltiesParams{UserID: userID, Status: status, RowLimit: limit, RowOffset: offset})
	if err != nil {
		return nil, 0, fmt.Errorf("query penalties: %w", err)
	}
	total, err := q.CountPenalties(ctx, db.CountPenaltiesParams{UserID: userID, Status: status})
	if err != nil {
		return nil, 0, fmt.Errorf("count penalties: %w", err)
	}
	out := make([]*models.Penalty, len(rows))
	for i, row := range rows {
		out[i] = rowToPenalty(row)
	}
	return out, int(total), nil
}

// Report implements repositories.Store.
func (s *Store) Report(ctx context.Context) (*models.Report, error) {
	row, err := db.New(s.db.DB()).GetReport(ctx)
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}
	return &models.Report{
		TotalItems:       int(row.TotalItems),
		TotalBorrows:     int(row.TotalBorrows),
		ActiveBorrows:    int(row.ActiveBorrows),
		ReturnedBorrows:  int(row.ReturnedBorrows),
		PendingRequests:  int(row.PendingRequests),
		TotalPenalties:   int(row.TotalPenalties),
		PaidPenalties:    int(row.PaidPenalties),
		UnpaidPenalties:  int(row.UnpaidPenalties),
		TotalCollected:   row.TotalCollected,
		OutstandingDebts: row.OutstandingDebts,
	}, nil
}

// pgTx implements repositories.Tx on one *sql.Tx.
type pgTx struct {
	tx  *sql.Tx
	q   *db.Queries
	bus *events.EventBus
}

func (t *pgTx) ItemForUpdate(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	row, err := t.q.GetItemForUpdate(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrItemNotFound, "lock item")
	}
	return rowToItem(row), nil
}

func (t *pgTx) InsertItem(ctx context.Context, item *models.Item) error {
	err := t.q.InsertItem(ctx, db.InsertItemParams{
		ID:           item.ID,
		SerialNumber: item.SerialNumber.String(),
		Name:         item.Name.String(),
		ItemType:     item.ItemType,
		Condition:    item.Condition.String(),
		Stock:        int32(item.Stock),
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	})
	if err != nil {
		return mapItemWriteErr(err, "insert item")
	}
	return nil
}

func (t *pgTx) UpdateItem(ctx context.Context, item *models.Item) error {
	err := t.q.UpdateItem(ctx, db.UpdateItemParams{
		ID:           item.ID,
		SerialNumber: item.SerialNumber.String(),
		Name:         item.Name.String(),
		ItemType:     item.ItemType,
		Condition:    item.Condition.String(),
		Stock:        int32(item.Stock),
		UpdatedAt:    item.UpdatedAt,
	})
	if err != nil {
		return mapItemWriteErr(err, "update item")
	}
	return nil
}

func (t *pgTx) DeleteItem(ctx context.Context, id uuid.UUID) error {
	n, err := t.q.DeleteItem(ctx, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if n == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (t *pgTx) CountOpenBorrowsForItem(ctx context.Context, itemID uuid.UUID) (int, error) {
	n, err := t.q.CountOpenBorrowsForItem(ctx, itemID)
	if err != nil {
		return 0, fmt.Errorf("count open borrows: %w", err)
	}
	return int(n), nil
}

func (t *pgTx) BorrowForUpdate(ctx context.Context, id uuid.UUID) (*models.Borrow, error) {
	row, err := t.q.GetBorrowForUpdate(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrBorrowNotFound, "lock borrow")
	}
	return rowToBorrow(row), nil
}

func (t *pgTx) InsertBorrow(ctx context.Context, b *models.Borrow) error {
	err := t.q.InsertBorrow(ctx, db.InsertBorrowParams{
		ID:         b.ID,
		UserID:     b.UserID,
		ItemID:     b.ItemID,
		Quantity:   int32(b.Quantity),
		Status:     b.Status.String(),
		BorrowDate: nullTime(b.BorrowDate),
		DueDate:    nullTime(b.DueDate),
		ReturnDate: nullTime(b.ReturnDate),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert borrow: %w", err)
	}
	return nil
}

func (t *pgTx) UpdateBorrow(ctx context.Context, b *models.Borrow) error {
	err := t.q.UpdateBorrow(ctx, db.UpdateBorrowParams{
		ID:         b.ID,
		Status:     b.Status.String(),
		BorrowDate: nullTime(b.BorrowDate),
		DueDate:    nullTime(b.DueDate),
		ReturnDate: nullTime(b.ReturnDate),
		UpdatedAt:  b.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("update borrow: %w", err)
	}
	return nil
}

func (t *pgTx) PenaltyForUpdate(ctx context.Context, id uuid.UUID) (*models.Penalty, error) {
	row, err := t.q.GetPenaltyForUpdate(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrPenaltyNotFound, "lock penalty")
	}
	return rowToPenalty(row), nil
}

func (t *pgTx) PenaltyForBorrow(ctx context.Context, borrowID uuid.UUID) (*models.Penalty, bool, error) {
	row, err := t.q.GetPenaltyForBorrowForUpdate(ctx, borrowID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lock penalty for borrow: %w", err)
	}
	return rowToPenalty(row), true, nil
}

func (t *pgTx) InsertPenalty(ctx context.Context, pen *models.Penalty) (bool, error) {
	n, err := t.q.InsertPenalty(ctx, db.InsertPenaltyParams{
		ID:        pen.ID,
		BorrowID:  pen.BorrowID,
		Amount:    pen.Amount,
		Status:    string(pen.Status),
		CreatedAt: pen.CreatedAt,
		PaidAt:    nullTime(pen.PaidAt),
	})
	if err != nil {
		return false, fmt.Errorf("insert penalty: %w", err)
	}
	return n > 0, nil
}

func (t *pgTx) UpdatePenalty(ctx context.Context, pen *models.Penalty) error {
	err := t.q.UpdatePenalty(ctx, db.UpdatePenaltyParams{
		ID:     pen.ID,
		Amount: pen.Amount,
		Status: string(pen.Status),
		PaidAt: nullTime(pen.PaidAt),
	})
	if err != nil {
		return fmt.Errorf("update penalty: %w", err)
	}
	return nil
}

func (t *pgTx) DeletePenaltyForBorrow(ctx context.Context, borrowID uuid.UUID) (bool, error) {
	n, err := t.q.DeletePenaltyForBorrow(ctx, borrowID)
	if err != nil {
		return false, fmt.Errorf("delete penalty: %w", err)
	}
	return n > 0, nil
}

func (t *pgTx) Emit(ctx context.Context, evt domainevents.Event) error {
	if t.bus == nil {
		return nil
	}
	msg, err := events.NewEventMessage(ctx, evt.ID().String(), domainevents.Version, evt)
	if err != nil {
		return err
	}
	if err := t.bus.PublishTx(t.tx, evt.Topic(), msg); err != nil {
		return fmt.Errorf("publish %s: %w", evt.Topic(), err)
	}
	return nil
}

func mapItemWriteErr(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == uniqueViolation && pgErr.ConstraintName == serialConstraint:
			return domain.ErrDuplicateSerial
		case pgErr.Code == checkViolation:
			return fmt.Errorf("%w: %s", domain.ErrInvalidItem, pgErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func notFound(err, sentinel error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", op, err)
}

func pageArgs(opts repositories.QueryOpts) (limit, offset int32) {
	limit = int32(opts.Limit)
	if limit <= 0 {
		limit = defaultPageSize
	}
	return limit, int32(max(opts.Offset, 0))
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullStatus(st *models.Status) sql.NullString {
	if st == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: st.String(), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

// datePtr normalizes a DATE column to UTC midnight; the driver may hand it
// back in the session time zone.
func datePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	y, m, d := nt.Time.Date()
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func rowToItem(row db.LendingItem) *models.Item {
	return &models.Item{
		ID:           row.ID,
		SerialNumber: models.SerialNumber(row.SerialNumber),
		Name:         models.ItemName(row.Name),
		ItemType:     row.ItemType,
		Condition:    models.Condition(row.Condition),
		Stock:        int(row.Stock),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func rowToBorrow(row db.LendingBorrow) *models.Borrow {
	return &models.Borrow{
		ID:         row.ID,
		UserID:     row.UserID,
		ItemID:     row.ItemID,
		Quantity:   int(row.Quantity),
		Status:     models.Status(row.Status),
		BorrowDate: datePtr(row.BorrowDate),
		DueDate:    datePtr(row.DueDate),
		ReturnDate: datePtr(row.ReturnDate),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

func rowToPenalty(row db.LendingPenalty) *models.Penalty {
	return &models.Penalty{
		ID:        row.ID,
		BorrowID:  row.BorrowID,
		Amount:    row.Amount,
		Status:    models.PenaltyStatus(row.Status),
		CreatedAt: row.CreatedAt,
		PaidAt:    timePtr(row.PaidAt),
	}
}
