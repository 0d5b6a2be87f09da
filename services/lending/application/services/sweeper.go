package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"

	"github.com/ghuser/lendingdesk/pkg/logger"
	"github.com/ghuser/lendingdesk/services/lending/domain/models"
	"github.com/ghuser/lendingdesk/services/lending/domain/repositories"
)

var errNotOverdue = errors.New("borrow is no longer overdue")

// Sweeper moves Borrowed transactions past their due date to Overdue and
// gives each one its penalty.
//
// Each candidate is handled in its own transaction and re-checked under
// lock, so a sweep running concurrently with another sweep or with a return
// never double-charges. Concurrent calls for the same scope in this process
// share one run.
type Sweeper struct {
	lending *LendingService
	store   repositories.Store
	now     Clock
	log     logger.Logger
	group   singleflight.Group
}

// Sweep marks overdue borrows, all of them or only those of userID, and
// returns how many it moved to Overdue. Failures on individual borrows do not
// stop the sweep; they are returned together.
func (s *Sweeper) Sweep(ctx context.Context, userID *uuid.UUID) (int, error) {
	key := "all"
	if userID != nil {
		key = userID.String()
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.sweep(ctx, userID)
	})
	n, _ := v.(int)
	return n, err
}

func (s *Sweeper) sweep(ctx context.Context, userID *uuid.UUID) (int, error) {
	today := models.DateOf(s.now())
	ids, err := s.store.OverdueCandidates(ctx, today, userID)
	if err != nil {
		return 0, fmt.Errorf("list overdue candidates: %w", err)
	}

	var (
		marked int
		errs   error
	)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = multierr.Append(errs, err)
			break
		}
		_, err := s.lending.mutate(ctx, id, s.lending.markOverdue)
		switch {
		case err == nil:
			marked++
		case errors.Is(err, errNotOverdue):
		default:
			errs = multierr.Append(errs, fmt.Errorf("borrow %s: %w", id, err))
		}
	}

	if marked > 0 {
		s.lending.metrics.swept.Add(ctx, int64(marked))
	}
	if marked > 0 || errs != nil {
		s.log.InfoContext(ctx, "overdue sweep finished",
			"candidates", len(ids), "marked", marked, "failed", len(multierr.Errors(errs)))
	}
	return marked, errs
}

// Name identifies the sweep when it runs as a scheduled job.
func (s *Sweeper) Name() string { return "overdue-sweep" }

// Run sweeps every user's borrows.
func (s *Sweeper) Run(ctx context.Context) error {
	_, err := s.Sweep(ctx, nil)
	return err
}
