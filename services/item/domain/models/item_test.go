package models

import (
	"errors"
	"testing"
	"time"

	itemdomain "github.com/ghuser/crochestock/services/item/domain"
)

func TestNewItem(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	name := ItemName("Cotton yarn")

	t.Run("stamps both timestamps in UTC", func(t *testing.T) {
		item, err := NewItem("user_1", name, 3, 450, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.ID != 0 {
			t.Fatalf("expected unsaved item to have zero ID, got %d", item.ID)
		}
		if !item.CreatedAt.Equal(now) || !item.UpdatedAt.Equal(now) {
			t.Fatalf("timestamps not stamped with now: %v %v", item.CreatedAt, item.UpdatedAt)
		}
		if item.CreatedAt.Location() != time.UTC {
			t.Fatalf("expected UTC, got %v", item.CreatedAt.Location())
		}
	})

	t.Run("zero quantity and price are valid", func(t *testing.T) {
		if _, err := NewItem("user_1", name, 0, 0, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name    string
		owner   string
		qty     int
		price   Cents
		wantErr error
	}{
		{"missing owner", "", 1, 1, itemdomain.ErrOwnerRequired},
		{"negative quantity", "u", -1, 1, itemdomain.ErrInvalidQuantity},
		{"negative price", "u", 1, -1, itemdomain.ErrInvalidPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewItem(tt.owner, name, tt.qty, tt.price, now)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestItem_Apply(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)

	base := func() *Item {
		return &Item{ID: 1, OwnerID: "u", Name: "Hook", Quantity: 2, UnitPrice: 500, CreatedAt: created, UpdatedAt: created}
	}

	t.Run("only supplied fields change", func(t *testing.T) {
		item := base()
		qty := 9
		item.Apply(ItemPatch{Quantity: &qty}, later)

		if item.Quantity != 9 {
			t.Fatalf("Quantity: got %d", item.Quantity)
		}
		if item.Name != "Hook" || item.UnitPrice != 500 {
			t.Fatalf("untouched fields changed: %+v", item)
		}
		if !item.UpdatedAt.Equal(later) || !item.CreatedAt.Equal(created) {
			t.Fatalf("timestamps: created=%v updated=%v", item.CreatedAt, item.UpdatedAt)
		}
	})

	t.Run("all fields", func(t *testing.T) {
		item := base()
		name := ItemName("Hook 5mm")
		qty := 0
		price := Cents(0)
		item.Apply(ItemPatch{Name: &name, Quantity: &qty, UnitPrice: &price}, later)

		if item.Name != name || item.Quantity != 0 || item.UnitPrice != 0 {
			t.Fatalf("unexpected item: %+v", item)
		}
	})

	t.Run("empty patch still stamps UpdatedAt", func(t *testing.T) {
		item := base()
		p := ItemPatch{}
		if !p.Empty() {
			t.Fatal("expected empty patch")
		}
		item.Apply(p, later)
		if !item.UpdatedAt.Equal(later) {
			t.Fatalf("UpdatedAt: got %v", item.UpdatedAt)
		}
	})
}

func TestSummarize(t *testing.T) {
	items := []*Item{
		{Quantity: 2, UnitPrice: 1250},
		{Quantity: 0, UnitPrice: 999},
		{Quantity: 5, UnitPrice: 10},
	}
	got, err := Summarize(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Summary{ItemCount: 3, TotalQuantity: 7, TotalValue: 2550}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	empty, err := Summarize(nil)
	if err != nil || empty != (Summary{}) {
		t.Fatalf("expected zero summary, got %+v, %v", empty, err)
	}
}

func TestSummarize_Overflow(t *testing.T) {
	tests := []struct {
		name  string
		items []*Item
	}{
		{
			// 9e18 cents x 2 wraps to a negative total when multiplied unchecked.
			name:  "single item value",
			items: []*Item{{ID: 1, Quantity: 2, UnitPrice: 9e18}},
		},
		{
			name: "bounded items whose total does not fit",
			items: []*Item{
				{ID: 1, Quantity: MaxQuantity, UnitPrice: MaxUnitPrice / 1000},
				{ID: 2, Quantity: MaxQuantity, UnitPrice: MaxUnitPrice / 1000},
				{ID: 3, Quantity: MaxQuantity, UnitPrice: MaxUnitPrice / 1000},
				{ID: 4, Quantity: MaxQuantity, UnitPrice: MaxUnitPrice / 1000},
				{ID: 5, Quantity: MaxQuantity, UnitPrice: MaxUnitPrice / 1000},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Summarize(tt.items)
			if !errors.Is(err, itemdomain.ErrValueOverflow) {
				t.Fatalf("expected ErrValueOverflow, got %+v, %v", got, err)
			}
			if got != (Summary{}) {
				t.Fatalf("expected zero summary on error, got %+v", got)
			}
		})
	}
}

func TestSummarize_LargestSingleTotal(t *testing.T) {
	// MaxQuantity x 4_294_967_298 cents lands one below MaxInt64.
	it := &Item{Quantity: MaxQuantity, UnitPrice: 4_294_967_298}
	got, err := Summarize([]*Item{it})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TotalValue != Cents(int64(MaxQuantity)*4_294_967_298) {
		t.Fatalf("TotalValue = %d", got.TotalValue)
	}
}

func TestNewItem_Bounds(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name    string
		qty     int
		price   Cents
		wantErr error
	}{
		{"max quantity", MaxQuantity, 100, nil},
		{"max price", 1, MaxUnitPrice, nil},
		{"quantity above column width", MaxQuantity + 1, 100, itemdomain.ErrInvalidQuantity},
		{"negative quantity", -1, 100, itemdomain.ErrInvalidQuantity},
		{"price above max", 1, MaxUnitPrice + 1, itemdomain.ErrInvalidPrice},
		{"negative price", 1, -1, itemdomain.ErrInvalidPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewItem("alice", "Cotton 8/4", tt.qty, tt.price, now)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestItemPatch_CheckRanges(t *testing.T) {
	over := MaxQuantity + 1
	price := MaxUnitPrice + 1
	ok := 3
	if err := (ItemPatch{Quantity: &ok}).CheckRanges(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (ItemPatch{Quantity: &over}).CheckRanges(); !errors.Is(err, itemdomain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if err := (ItemPatch{UnitPrice: &price}).CheckRanges(); !errors.Is(err, itemdomain.ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
}
