package models

import (
	"fmt"
	"math"
	"time"

	itemdomain "github.com/ghuser/crochestock/services/item/domain"
)

// Item is a crochet material owned by one user.
type Item struct {
	ID        int64  // assigned by the repository on Create
	OwnerID   string // always filter by this in queries
	Name      ItemName
	Quantity  int
	UnitPrice Cents
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MaxQuantity is the largest stock count of one item, the width of the
// quantity column.
const MaxQuantity = math.MaxInt32

// CheckQuantity enforces 0 <= q <= MaxQuantity. Errors wrap ErrInvalidQuantity.
func CheckQuantity(q int) error {
	if q < 0 {
		return fmt.Errorf("%w: must be >= 0", itemdomain.ErrInvalidQuantity)
	}
	if q > MaxQuantity {
		return fmt.Errorf("%w: must not exceed %d", itemdomain.ErrInvalidQuantity, MaxQuantity)
	}
	return nil
}

// NewItem constructs an unsaved Item stamped with now for both timestamps.
func NewItem(ownerID string, name ItemName, quantity int, unitPrice Cents, now time.Time) (*Item, error) {
	if ownerID == "" {
		return nil, itemdomain.ErrOwnerRequired
	}
	if err := CheckQuantity(quantity); err != nil {
		return nil, err
	}
	if err := CheckUnitPrice(unitPrice); err != nil {
		return nil, err
	}
	now = now.UTC()
	return &Item{
		OwnerID:   ownerID,
		Name:      name,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CheckRanges enforces the quantity and price bounds every store applies.
func (i *Item) CheckRanges() error {
	if err := CheckQuantity(i.Quantity); err != nil {
		return err
	}
	return CheckUnitPrice(i.UnitPrice)
}

// ItemPatch lists the fields of a partial update. Nil fields are left alone.
type ItemPatch struct {
	Name      *ItemName
	Quantity  *int
	UnitPrice *Cents
}

// CheckRanges enforces the quantity and price bounds on the set fields.
func (p ItemPatch) CheckRanges() error {
	if p.Quantity != nil {
		if err := CheckQuantity(*p.Quantity); err != nil {
			return err
		}
	}
	if p.UnitPrice != nil {
		return CheckUnitPrice(*p.UnitPrice)
	}
	return nil
}

// Empty reports whether the patch changes no field.
func (p ItemPatch) Empty() bool {
	return p.Name == nil && p.Quantity == nil && p.UnitPrice == nil
}

// Apply copies the non-nil fields of p onto i and stamps UpdatedAt, even for
// an empty patch.
func (i *Item) Apply(p ItemPatch, at time.Time) {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.Quantity != nil {
		i.Quantity = *p.Quantity
	}
	if p.UnitPrice != nil {
		i.UnitPrice = *p.UnitPrice
	}
	i.UpdatedAt = at.UTC()
}

// Value is UnitPrice times Quantity. It fails with ErrValueOverflow when the
// product does not fit in Cents.
func (i *Item) Value() (Cents, error) {
	return i.UnitPrice.Times(i.Quantity)
}

// Summary holds the inventory totals shown above the item list.
type Summary struct {
	ItemCount     int
	TotalQuantity int64
	TotalValue    Cents
}

// Summarize totals items. A total value that does not fit in Cents fails
// with ErrValueOverflow instead of wrapping.
func Summarize(items []*Item) (Summary, error) {
	var s Summary
	for _, it := range items {
		v, err := it.Value()
		if err != nil {
			return Summary{}, fmt.Errorf("item %d: %w", it.ID, err)
		}
		if s.TotalValue, err = s.TotalValue.Plus(v); err != nil {
			return Summary{}, err
		}
		s.ItemCount++
		s.TotalQuantity += int64(it.Quantity)
	}
	return s, nil
}
