package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/lendingdesk/pkg/app"
	"github.com/ghuser/lendingdesk/pkg/cache"
	"github.com/ghuser/lendingdesk/pkg/logger"
	"github.com/ghuser/lendingdesk/services/lending/domain/repositories"
	domainsvcs "github.com/ghuser/lendingdesk/services/lending/domain/services"
	"github.com/ghuser/lendingdesk/services/lending/infrastructure/persistence/postgres"
)

// Clock returns the current instant. Tests pin it to a fixed date.
type Clock func() time.Time

// ItemCache is the subset of the Redis item cache the services use.
type ItemCache interface {
	Get(ctx context.Context, itemID uuid.UUID) (*cache.CachedItem, error)
	Set(ctx context.Context, item *cache.CachedItem) error
	Delete(ctx context.Context, itemID uuid.UUID) error
}

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Items   *ItemService
	Lending *LendingService
	Sweeper *Sweeper
	Queries *QueryService
}

// Deps are the collaborators shared by every lending service.
type Deps struct {
	Store  repositories.Store
	Cache  ItemCache // optional
	Policy domainsvcs.Policy
	Clock  Clock  // defaults to time.Now
	Logger logger.Logger
	// SweepOnRead runs a scoped overdue sweep before borrow and penalty lists.
	SweepOnRead bool
}

// New wires all lending application services with infrastructure from the Application container.
func New(a *app.Application) (*Services, error) {
	rate, err := a.Config.DailyRate()
	if err != nil {
		return nil, fmt.Errorf("lending policy: %w", err)
	}
	deps := Deps{
		Store:       postgres.NewStore(a.Db, a.EventBus),
		Policy:      domainsvcs.Policy{LoanPeriodDays: a.Config.LoanPeriodDays, DailyRate: rate},
		Logger:      a.Logger,
		SweepOnRead: a.Config.SweepOnRead,
	}
	if a.Redis != nil {
		deps.Cache = cache.NewItemCache(a.Redis)
	}
	return NewWithDeps(deps), nil
}

// NewWithDeps wires the services around explicit collaborators.
func NewWithDeps(d Deps) *Services {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	m := newMetrics()
	lending := &LendingService{store: d.Store, cache: d.Cache, policy: d.Policy, now: d.Clock, log: d.Logger, metrics: m}
	sweeper := &Sweeper{lending: lending, store: d.Store, now: d.Clock, log: d.Logger}
	return &Services{
		Items:   &ItemService{store: d.Store, cache: d.Cache, now: d.Clock, log: d.Logger},
		Lending: lending,
		Sweeper: sweeper,
		Queries: &QueryService{store: d.Store, sweeper: sweeper, sweepOnRead: d.SweepOnRead, log: d.Logger},
	}
}
