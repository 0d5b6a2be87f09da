// Package services contains stateless domain services for the lending bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond the domain layer. Callers are
// responsible for running them against rows locked inside one transaction.
package services

import (
	"fmt"

	"github.com/ghuser/lendingdesk/services/lending/domain"
	"github.com/ghuser/lendingdesk/services/lending/domain/models"
)

// Reserve takes qty units out of the item's stock. It fails with
// ErrInsufficientStock, leaving the item untouched, when fewer units remain.
func Reserve(item *models.Item, qty int) error {
	if qty < 1 {
		return domain.ErrInvalidQuantity
	}
	if item.Stock < qty {
		return fmt.Errorf("%w: %d requested, %d in stock", domain.ErrInsufficientStock, qty, item.Stock)
	}
	item.Stock -= qty
	refreshCondition(item)
	return nil
}

// Release puts qty units back into the item's stock.
func Release(item *models.Item, qty int) error {
	if qty < 1 {
		return domain.ErrInvalidQuantity
	}
	item.Stock += qty
	refreshCondition(item)
	return nil
}

// OverrideCondition sets the item's condition by administrative decision.
// Stock is not touched.
func OverrideCondition(item *models.Item, c models.Condition) error {
	if !c.Valid() {
		return fmt.Errorf("%w: unknown condition %q", domain.ErrInvalidItem, c)
	}
	item.Condition = c
	return nil
}

// refreshCondition recomputes the Available/Borrowed hint after stock moved.
// Lost and Under Maintenance are administrative states and are kept.
func refreshCondition(item *models.Item) {
	switch item.Condition {
	case models.ConditionAvailable, models.ConditionBorrowed:
		if item.Stock == 0 {
			item.Condition = models.ConditionBorrowed
		} else {
			item.Condition = models.ConditionAvailable
		}
	}
}
