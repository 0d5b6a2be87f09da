package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/lendingdesk/pkg/logger"
	"github.com/ghuser/lendingdesk/services/lending/domain"
	"github.com/ghuser/lendingdesk/services/lending/domain/events"
	"github.com/ghuser/lendingdesk/services/lending/domain/models"
	"github.com/ghuser/lendingdesk/services/lending/domain/repositories"
	domainsvcs "github.com/ghuser/lendingdesk/services/lending/domain/services"
)

// LendingService drives borrow transactions through their lifecycle.
//
// Every mutation runs in one store transaction: the borrow row is locked
// first, then its item, then its penalty. Stock, status, dates and the
// penalty either all change or none do, and the matching events are
// written to the outbox in the same transaction.
type LendingService struct {
	store   repositories.Store
	cache   ItemCache
	policy  domainsvcs.Policy
	now     Clock
	log     logger.Logger
	metrics *lendingMetrics
}

// borrowStep mutates a locked borrow inside a transaction.
type borrowStep func(ctx context.Context, tx repositories.Tx, b *models.Borrow, now time.Time) error

// RequestBorrow records a Pending borrow of quantity units. The request is
// refused with ErrInsufficientStock when the item does not currently hold
// that many units; stock is only reserved on approval.
func (s *LendingService) RequestBorrow(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.Borrow, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidQuantity)
	}
	var out *models.Borrow
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		item, err := tx.ItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item.Stock < quantity {
			return fmt.Errorf("%w: %d requested, %d in stock", domain.ErrInsufficientStock, quantity, item.Stock)
		}
		b, err := models.NewBorrow(userID, itemID, quantity)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInvalidQuantity, err)
		}
		now := s.now().UTC()
		b.CreatedAt, b.UpdatedAt = now, now
		if err := tx.InsertBorrow(ctx, b); err != nil {
			return fmt.Errorf("insert borrow: %w", err)
		}
		if err := tx.Emit(ctx, events.BorrowStatus(b, "", now)); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.transition(ctx, string(models.StatusPending))
	s.log.InfoContext(ctx, "borrow requested", "borrow_id", out.ID, "item_id", itemID, "quantity", quantity)
	return out, nil
}

// Approve moves a Pending borrow to Borrowed, reserving stock against the
// item as it is at approval time.
func (s *LendingService) Approve(ctx context.Context, borrowID uuid.UUID) (*models.Borrow, error) {
	return s.mutate(ctx, borrowID, s.approve)
}

// Reject closes a Pending borrow.
func (s *LendingService) Reject(ctx context.Context, borrowID uuid.UUID) (*models.Borrow, error) {
	return s.mutate(ctx, borrowID, s.reject)
}

// Return closes a Borrowed or Overdue borrow, releases its stock and settles
// its penalty, if any.
func (s *LendingService) Return(ctx context.Context, borrowID uuid.UUID) (*models.Borrow, error) {
	return s.mutate(ctx, borrowID, s.returnBorrow)
}

// CancelOverdue reverts an Overdue borrow to Returned, releases its stock and
// deletes its penalty.
func (s *LendingService) CancelOverdue(ctx context.Context, borrowID uuid.UUID) (*models.Borrow, error) {
	return s.mutate(ctx, borrowID, s.cancelOverdue)
}

// MarkOverdue flags a Borrowed transaction as Overdue by administrative
// decision. The penalty charges at least one day.
func (s *LendingService) MarkOverdue(ctx context.Context, borrowID uuid.UUID) (*models.Borrow, error) {
	return s.mutate(ctx, borrowID, s.forceOverdue)
}

// TransitionStatus applies an administrative status change. The lifecycle
// step is chosen from the borrow's status as read under lock.
func (s *LendingService) TransitionStatus(ctx context.Context, borrowID uuid.UUID, to models.Status) (*models.Borrow, error) {
	return s.mutate(ctx, borrowID, func(ctx context.Context, tx repositories.Tx, b *models.Borrow, now time.Time) error {
		step, err := domainsvcs.PlanTransition(b.Status, to)
		if err != nil {
			return err
		}
		switch step {
		case domainsvcs.TransitionApprove:
			return s.approve(ctx, tx, b, now)
		case domainsvcs.TransitionReject:
			return s.reject(ctx, tx, b, now)
		case domainsvcs.TransitionReturn:
			return s.returnBorrow(ctx, tx, b, now)
		case domainsvcs.TransitionMarkOverdue:
			return s.forceOverdue(ctx, tx, b, now)
		}
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, b.Status, to)
	})
}

// PayPenalty marks a penalty as Paid. Paying an already paid penalty
// succeeds without changing it.
func (s *LendingService) PayPenalty(ctx context.Context, penaltyID uuid.UUID) (*models.Penalty, error) {
	var (
		out     *models.Penalty
		settled bool
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		pen, err := tx.PenaltyForUpdate(ctx, penaltyID)
		if err != nil {
			return err
		}
		out = pen
		now := s.now().UTC()
		if settled = domainsvcs.SettlePenalty(pen, now); !settled {
			return nil
		}
		if err := tx.UpdatePenalty(ctx, pen); err != nil {
			return fmt.Errorf("update penalty: %w", err)
		}
		return tx.Emit(ctx, events.PenaltyAction(pen, events.PenaltySettled, now))
	})
	if err != nil {
		return nil, err
	}
	if settled {
		s.metrics.penalty(ctx, events.PenaltySettled)
		s.log.InfoContext(ctx, "penalty paid", "penalty_id", penaltyID, "amount", out.Amount.StringFixed(2))
	}
	return out, nil
}

// SetItemCondition overrides an item's condition. Stock is not touched.
func (s *LendingService) SetItemCondition(ctx context.Context, itemID uuid.UUID, c models.Condition) (*models.Item, error) {
	var out *models.Item
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		item, err := tx.ItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if err := domainsvcs.OverrideCondition(item, c); err != nil {
			return err
		}
		out = item
		return s.saveItem(ctx, tx, item, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "item condition set", "item_id", itemID, "condition", c)
	s.invalidateItem(ctx, itemID)
	return out, nil
}

// mutate locks the borrow, applies step and persists the result together
// with a status-change event.
func (s *LendingService) mutate(ctx context.Context, borrowID uuid.UUID, step borrowStep) (*models.Borrow, error) {
	var (
		out    *models.Borrow
		from   models.Status
		itemID uuid.UUID
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		b, err := tx.BorrowForUpdate(ctx, borrowID)
		if err != nil {
			return err
		}
		from, itemID = b.Status, b.ItemID
		now := s.now().UTC()
		if err := step(ctx, tx, b, now); err != nil {
			return err
		}
		b.UpdatedAt = now
		if err := tx.UpdateBorrow(ctx, b); err != nil {
			return fmt.Errorf("update borrow: %w", err)
		}
		if err := tx.Emit(ctx, events.BorrowStatus(b, from, now)); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.transition(ctx, string(out.Status))
	s.log.InfoContext(ctx, "borrow status changed", "borrow_id", out.ID, "from", from, "to", out.Status)
	s.invalidateItem(ctx, itemID)
	return out, nil
}

func (s *LendingService) approve(ctx context.Context, tx repositories.Tx, b *models.Borrow, now time.Time) error {
	if b.Status != models.StatusPending {
		return fmt.Errorf("%w: cannot approve a %s borrow", domain.ErrInvalidTransition, b.Status)
	}
	item, err := tx.ItemForUpdate(ctx, b.ItemID)
	if err != nil {
		return err
	}
	if err := domainsvcs.Approve(b, item, now, s.policy); err != nil {
		return err
	}
	return s.saveItem(ctx, tx, item, now)
}

func (s *LendingService) reject(_ context.Context, _ repositories.Tx, b *models.Borrow, _ time.Time) error {
	return domainsvcs.Reject(b)
}

func (s *LendingService) returnBorrow(ctx context.Context, tx repositories.Tx, b *models.Borrow, now time.Time) error {
	if !b.IsActive() {
		return fmt.Errorf("%w: cannot return a %s borrow", domain.ErrNotActive, b.Status)
	}
	item, err := tx.ItemForUpdate(ctx, b.ItemID)
	if err != nil {
		return err
	}
	if err := domainsvcs.Return(b, item, now); err != nil {
		return err
	}
	if err := s.saveItem(ctx, tx, item, now); err != nil {
		return err
	}
	return s.settlePenalty(ctx, tx, b.ID, now)
}

func (s *LendingService) cancelOverdue(ctx context.Context, tx repositories.Tx, b *models.Borrow, now time.Time) error {
	if b.Status != models.StatusOverdue {
		return fmt.Errorf("%w: cannot cancel overdue on a %s borrow", domain.ErrNotActive, b.Status)
	}
	item, err := tx.ItemForUpdate(ctx, b.ItemID)
	if err != nil {
		return err
	}
	if err := domainsvcs.CancelOverdue(b, item, now); err != nil {
		return err
	}
	if err := s.saveItem(ctx, tx, item, now); err != nil {
		return err
	}
	return s.cancelPenalty(ctx, tx, b.ID, now)
}

func (s *LendingService) forceOverdue(ctx context.Context, tx repositories.Tx, b *models.Borrow, now time.Time) error {
	if err := domainsvcs.ForceOverdue(b); err != nil {
		return err
	}
	return s.ensurePenalty(ctx, tx, b, now, true)
}

// markOverdue is the sweeper's step. A borrow that stopped being overdue
// since it was listed is reported as skipped.
func (s *LendingService) markOverdue(ctx context.Context, tx repositories.Tx, b *models.Borrow, now time.Time) error {
	if !b.IsOverdue(now) {
		return errNotOverdue
	}
	if err := domainsvcs.MarkOverdue(b, now); err != nil {
		return err
	}
	return s.ensurePenalty(ctx, tx, b, now, false)
}

// ensurePenalty creates the borrow's Unpaid penalty unless it already has one.
func (s *LendingService) ensurePenalty(ctx context.Context, tx repositories.Tx, b *models.Borrow, now time.Time, manual bool) error {
	pen, err := domainsvcs.AssessPenalty(b, now, now, s.policy, manual)
	if err != nil {
		return err
	}
	inserted, err := tx.InsertPenalty(ctx, pen)
	if err != nil {
		return fmt.Errorf("insert penalty: %w", err)
	}
	if !inserted {
		return nil
	}
	s.metrics.penalty(ctx, events.PenaltyCreated)
	return tx.Emit(ctx, events.PenaltyAction(pen, events.PenaltyCreated, now))
}

func (s *LendingService) settlePenalty(ctx context.Context, tx repositories.Tx, borrowID uuid.UUID, now time.Time) error {
	pen, ok, err := tx.PenaltyForBorrow(ctx, borrowID)
	if err != nil {
		return err
	}
	if !ok || !domainsvcs.SettlePenalty(pen, now) {
		return nil
	}
	if err := tx.UpdatePenalty(ctx, pen); err != nil {
		return fmt.Errorf("update penalty: %w", err)
	}
	s.metrics.penalty(ctx, events.PenaltySettled)
	return tx.Emit(ctx, events.PenaltyAction(pen, events.PenaltySettled, now))
}

func (s *LendingService) cancelPenalty(ctx context.Context, tx repositories.Tx, borrowID uuid.UUID, now time.Time) error {
	pen, ok, err := tx.PenaltyForBorrow(ctx, borrowID)
	if err != nil || !ok {
		return err
	}
	if _, err := tx.DeletePenaltyForBorrow(ctx, borrowID); err != nil {
		return fmt.Errorf("delete penalty: %w", err)
	}
	s.metrics.penalty(ctx, events.PenaltyCancelled)
	return tx.Emit(ctx, events.PenaltyAction(pen, events.PenaltyCancelled, now))
}

func (s *LendingService) saveItem(ctx context.Context, tx repositories.Tx, item *models.Item, now time.Time) error {
	item.UpdatedAt = now
	if err := tx.UpdateItem(ctx, item); err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return tx.Emit(ctx, events.ItemStock(item, now))
}

// invalidateItem drops the cached item after a committed stock change. The
// worker's stock_changed consumer covers writes from other processes.
func (s *LendingService) invalidateItem(ctx context.Context, itemID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(context.WithoutCancel(ctx), itemID); err != nil {
		s.log.WarnContext(ctx, "item cache invalidation failed", "item_id", itemID, "error", err)
	}
}
