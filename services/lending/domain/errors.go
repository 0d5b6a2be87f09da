package domain

import "errors"

// Sentinel errors for the lending domain. Use errors.Is() to check these.
// None of them leave stock, borrow or penalty partially updated.
var (
	// ErrItemNotFound indicates the requested item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrBorrowNotFound indicates the requested borrow transaction does not exist.
	ErrBorrowNotFound = errors.New("borrow transaction not found")

	// ErrPenaltyNotFound indicates the requested penalty does not exist.
	ErrPenaltyNotFound = errors.New("penalty not found")

	// ErrDuplicateSerial indicates an item with the same serial number already exists.
	ErrDuplicateSerial = errors.New("item with this serial number already exists")

	// ErrInvalidItem indicates item fields violate domain constraints.
	ErrInvalidItem = errors.New("invalid item")

	// ErrItemInUse indicates the item still has pending or outstanding borrows.
	ErrItemInUse = errors.New("item has pending or outstanding borrows")

	// ErrInvalidQuantity indicates a non-positive borrow or stock quantity.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrInsufficientStock indicates the item does not hold enough units for the request.
	ErrInsufficientStock = errors.New("not enough stock")

	// ErrInvalidTransition indicates the requested status is not reachable from the current one.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotActive indicates a return or cancel on a borrow that is not in an eligible state.
	ErrNotActive = errors.New("borrow transaction is not active")
)
