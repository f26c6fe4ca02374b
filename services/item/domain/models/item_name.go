package models

import (
	"fmt"

	itemdomain "github.com/ghuser/crochestock/services/item/domain"
)

// ItemName is a material name such as "Merino yarn 4ply": 1 to 255 bytes,
// the width of the name column.
type ItemName string

const (
	minItemNameLength = 1
	maxItemNameLength = 255
)

// NewItemName checks the length bounds. Errors wrap ErrInvalidItemName.
func NewItemName(s string) (ItemName, error) {
	if len(s) < minItemNameLength {
		return "", fmt.Errorf("%w: must be at least %d character", itemdomain.ErrInvalidItemName, minItemNameLength)
	}
	if len(s) > maxItemNameLength {
		return "", fmt.Errorf("%w: must not exceed %d bytes", itemdomain.ErrInvalidItemName, maxItemNameLength)
	}
	return ItemName(s), nil
}

func (n ItemName) String() string {
	return string(n)
}

// Ptr returns a pointer to n, for building an ItemPatch.
func (n ItemName) Ptr() *ItemName {
	return &n
}
