package domain

import "errors"

// Sentinel errors for the item domain. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates no item matches both the id and the owner.
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidItemName indicates the item name violates domain constraints.
	ErrInvalidItemName = errors.New("invalid item name")

	// ErrInvalidQuantity indicates a negative or out-of-range quantity.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidPrice indicates a negative, non-finite or out-of-range unit price.
	ErrInvalidPrice = errors.New("invalid unit price")

	// ErrValueOverflow indicates an inventory value too large to represent.
	ErrValueOverflow = errors.New("inventory value out of range")

	// ErrOwnerRequired indicates an item without an owner id.
	ErrOwnerRequired = errors.New("owner id is required")
)
