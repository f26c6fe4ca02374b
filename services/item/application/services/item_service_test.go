package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/crochestock/pkg/logger"
	pkgvalidator "github.com/ghuser/crochestock/pkg/validator"
	itemdomain "github.com/ghuser/crochestock/services/item/domain"
	"github.com/ghuser/crochestock/services/item/domain/models"
	"github.com/ghuser/crochestock/services/item/infrastructure/persistence/filestore"
)

func ptr[T any](v T) *T { return &v }

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T) (*ItemService, *fakeClock) {
	t.Helper()
	repo, err := filestore.NewItemRepository("")
	require.NoError(t, err)
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewItemService(repo, nil, nil, logger.Discard())
	svc.now = clock.now
	return svc, clock
}

func mustCreate(t *testing.T, svc *ItemService, owner, name string, qty int, price float64) *models.Item {
	t.Helper()
	it, err := svc.Create(context.Background(), owner, CreateItemInput{Name: name, Quantity: ptr(qty), Price: ptr(price)})
	require.NoError(t, err)
	return it
}

func TestItemService_CreateStoresRoundedCents(t *testing.T) {
	svc, clock := newTestService(t)

	tests := []struct {
		price float64
		want  models.Cents
	}{
		{19.99, 1999},
		{0, 0},
		{4.5, 450},
		{0.005, 1},
		{1.004, 100},
	}
	for _, tt := range tests {
		it := mustCreate(t, svc, "alice", "Merino", 3, tt.price)
		assert.Equal(t, tt.want, it.UnitPrice, "price %v", tt.price)
		assert.Equal(t, clock.t, it.CreatedAt)
		assert.Equal(t, clock.t, it.UpdatedAt)
	}
}

func TestItemService_CreateTrimsName(t *testing.T) {
	svc, _ := newTestService(t)
	it := mustCreate(t, svc, "alice", "  Cotton  ", 1, 1)
	assert.Equal(t, models.ItemName("Cotton"), it.Name)
}

func TestItemService_CreateRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		in      CreateItemInput
		wantErr error
	}{
		{"missing quantity", CreateItemInput{Name: "Yarn", Price: ptr(1.0)}, pkgvalidator.ErrInvalidInput},
		{"missing price", CreateItemInput{Name: "Yarn", Quantity: ptr(1)}, pkgvalidator.ErrInvalidInput},
		{"empty name", CreateItemInput{Name: "", Quantity: ptr(1), Price: ptr(1.0)}, pkgvalidator.ErrInvalidInput},
		{"negative quantity", CreateItemInput{Name: "Yarn", Quantity: ptr(-1), Price: ptr(1.0)}, pkgvalidator.ErrInvalidInput},
		{"negative price", CreateItemInput{Name: "Yarn", Quantity: ptr(1), Price: ptr(-0.01)}, pkgvalidator.ErrInvalidInput},
		{"blank name", CreateItemInput{Name: "   ", Quantity: ptr(1), Price: ptr(1.0)}, itemdomain.ErrInvalidItemName},
		{"control character", CreateItemInput{Name: "Ya\x00rn", Quantity: ptr(1), Price: ptr(1.0)}, itemdomain.ErrInvalidItemName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "alice", tt.in)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	items, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemService_CreateRequiresOwner(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), "", CreateItemInput{Name: "Yarn", Quantity: ptr(1), Price: ptr(1.0)})
	require.ErrorIs(t, err, itemdomain.ErrOwnerRequired)
}

func TestItemService_UpdateIsPartial(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	orig := mustCreate(t, svc, "alice", "Merino", 3, 4.5)

	clock.advance(time.Minute)
	got, err := svc.Update(ctx, "alice", UpdateItemInput{ID: orig.ID, ItemFields: ItemFields{Quantity: ptr(7)}})
	require.NoError(t, err)

	assert.Equal(t, 7, got.Quantity)
	assert.Equal(t, orig.Name, got.Name)
	assert.Equal(t, orig.UnitPrice, got.UnitPrice)
	assert.Equal(t, orig.CreatedAt, got.CreatedAt)
	assert.Equal(t, clock.t, got.UpdatedAt)

	clock.advance(time.Minute)
	got, err = svc.Update(ctx, "alice", UpdateItemInput{ID: orig.ID, ItemFields: ItemFields{Name: ptr("Alpaca"), Price: ptr(2.25)}})
	require.NoError(t, err)
	assert.Equal(t, models.ItemName("Alpaca"), got.Name)
	assert.Equal(t, models.Cents(225), got.UnitPrice)
	assert.Equal(t, 7, got.Quantity)
}

func TestItemService_UpdateMissOrForeignLeavesStoreUntouched(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	orig := mustCreate(t, svc, "alice", "Merino", 3, 4.5)

	_, err := svc.Update(ctx, "bob", UpdateItemInput{ID: orig.ID, ItemFields: ItemFields{Quantity: ptr(0)}})
	require.ErrorIs(t, err, itemdomain.ErrItemNotFound)

	_, err = svc.Update(ctx, "alice", UpdateItemInput{ID: orig.ID + 100, ItemFields: ItemFields{Quantity: ptr(0)}})
	require.ErrorIs(t, err, itemdomain.ErrItemNotFound)

	got, err := svc.Get(ctx, "alice", orig.ID)
	require.NoError(t, err)
	assert.Equal(t, orig, got)
}

func TestItemService_UpdateRejectsInvalidFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	orig := mustCreate(t, svc, "alice", "Merino", 3, 4.5)

	_, err := svc.Update(ctx, "alice", UpdateItemInput{ID: orig.ID, ItemFields: ItemFields{Quantity: ptr(-2)}})
	require.ErrorIs(t, err, pkgvalidator.ErrInvalidInput)

	_, err = svc.Update(ctx, "alice", UpdateItemInput{ID: orig.ID, ItemFields: ItemFields{Name: ptr(" ")}})
	require.ErrorIs(t, err, itemdomain.ErrInvalidItemName)

	_, err = svc.Update(ctx, "alice", UpdateItemInput{ItemFields: ItemFields{Quantity: ptr(1)}})
	require.ErrorIs(t, err, pkgvalidator.ErrInvalidInput)

	got, err := svc.Get(ctx, "alice", orig.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
}

func TestItemService_DeleteTwice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	it := mustCreate(t, svc, "alice", "Merino", 3, 4.5)

	removed, err := svc.Delete(ctx, "bob", it.ID)
	require.NoError(t, err)
	assert.False(t, removed, "foreign delete must not remove")

	removed, err = svc.Delete(ctx, "alice", it.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.Delete(ctx, "alice", it.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = svc.Get(ctx, "alice", it.ID)
	require.ErrorIs(t, err, itemdomain.ErrItemNotFound)
}

func TestItemService_DeleteRejectsNonPositiveID(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Delete(context.Background(), "alice", 0)
	require.ErrorIs(t, err, pkgvalidator.ErrInvalidInput)
}

func TestItemService_ListIsOwnerScoped(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a1 := mustCreate(t, svc, "alice", "Merino", 1, 1)
	mustCreate(t, svc, "bob", "Cotton", 1, 1)
	a2 := mustCreate(t, svc, "alice", "Alpaca", 1, 1)

	items, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, a1.ID, items[0].ID)
	assert.Equal(t, a2.ID, items[1].ID)
	for _, it := range items {
		assert.Equal(t, "alice", it.OwnerID)
	}
}

func TestItemService_Summary(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, "alice", "Merino", 3, 4.5)
	mustCreate(t, svc, "alice", "Hook", 2, 0.99)
	mustCreate(t, svc, "bob", "Cotton", 100, 100)

	sum, err := svc.Summary(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.Summary{ItemCount: 2, TotalQuantity: 5, TotalValue: 3*450 + 2*99}, sum)
}

func TestItemService_RejectsOutOfRangeValues(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		qty   int
		price float64
		field string
	}{
		{"price beyond ten billion", 2, 9e16, "price"},
		{"quantity beyond column width", 3_000_000_000, 1, "quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "alice", CreateItemInput{Name: "Yarn", Quantity: ptr(tt.qty), Price: ptr(tt.price)})
			var ie *pkgvalidator.InputError
			require.ErrorAs(t, err, &ie)
			assert.Contains(t, ie.Fields, tt.field)
		})
	}

	items, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemService_SummaryOverflowIsAnError(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for range 5 {
		mustCreate(t, svc, "alice", "Cashmere lot", models.MaxQuantity, 1e7)
	}

	_, err := svc.Summary(ctx, "alice")
	require.ErrorIs(t, err, itemdomain.ErrValueOverflow)

	sum, err := svc.Summary(ctx, "bob")
	require.NoError(t, err)
	assert.Zero(t, sum.ItemCount)
}
