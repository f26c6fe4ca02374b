// Package repotest holds the behavioural contract every ItemRepository
// implementation must satisfy. Implementations call Run from their own tests.
package repotest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	itemdomain "github.com/ghuser/crochestock/services/item/domain"
	"github.com/ghuser/crochestock/services/item/domain/models"
	"github.com/ghuser/crochestock/services/item/domain/repositories"
)

// Factory returns an empty repository. Each call must be isolated from the others.
type Factory func(t *testing.T) repositories.ItemRepository

var baseTime = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func newItem(t *testing.T, owner, name string, qty int, price models.Cents) *models.Item {
	t.Helper()
	it, err := models.NewItem(owner, models.ItemName(name), qty, price, baseTime)
	require.NoError(t, err)
	return it
}

func create(t *testing.T, repo repositories.ItemRepository, owner, name string, qty int, price models.Cents) *models.Item {
	t.Helper()
	it := newItem(t, owner, name, qty, price)
	require.NoError(t, repo.Create(context.Background(), it))
	require.NotZero(t, it.ID)
	return it
}

// Run executes the contract against repositories built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("create then list round-trips every field", func(t *testing.T) {
		repo := newRepo(t)
		created := create(t, repo, "alice", "Merino yarn", 3, 1250)

		items, err := repo.ListByOwner(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, items, 1)

		got := items[0]
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "alice", got.OwnerID)
		assert.Equal(t, models.ItemName("Merino yarn"), got.Name)
		assert.Equal(t, 3, got.Quantity)
		assert.Equal(t, models.Cents(1250), got.UnitPrice)
		assert.True(t, got.CreatedAt.Equal(baseTime), "CreatedAt %v", got.CreatedAt)
		assert.True(t, got.UpdatedAt.Equal(baseTime), "UpdatedAt %v", got.UpdatedAt)
	})

	t.Run("ids are unique and increasing", func(t *testing.T) {
		repo := newRepo(t)
		a := create(t, repo, "alice", "A", 1, 1)
		b := create(t, repo, "bob", "B", 1, 1)
		c := create(t, repo, "alice", "C", 1, 1)

		assert.Less(t, a.ID, b.ID)
		assert.Less(t, b.ID, c.ID)
	})

	t.Run("deleted ids are not reused", func(t *testing.T) {
		repo := newRepo(t)
		a := create(t, repo, "alice", "A", 1, 1)
		removed, err := repo.Delete(ctx, "alice", a.ID)
		require.NoError(t, err)
		require.True(t, removed)

		b := create(t, repo, "alice", "B", 1, 1)
		assert.Greater(t, b.ID, a.ID)
	})

	t.Run("list is scoped to the owner and ordered by id", func(t *testing.T) {
		repo := newRepo(t)
		a1 := create(t, repo, "alice", "A1", 1, 1)
		create(t, repo, "bob", "B1", 1, 1)
		a2 := create(t, repo, "alice", "A2", 1, 1)

		items, err := repo.ListByOwner(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, a1.ID, items[0].ID)
		assert.Equal(t, a2.ID, items[1].ID)
		for _, it := range items {
			assert.Equal(t, "alice", it.OwnerID)
		}

		none, err := repo.ListByOwner(ctx, "carol")
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("get is scoped to the owner", func(t *testing.T) {
		repo := newRepo(t)
		a := create(t, repo, "alice", "A", 1, 1)

		got, err := repo.GetByID(ctx, "alice", a.ID)
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)

		_, err = repo.GetByID(ctx, "bob", a.ID)
		assert.ErrorIs(t, err, itemdomain.ErrItemNotFound)

		_, err = repo.GetByID(ctx, "alice", a.ID+1000)
		assert.ErrorIs(t, err, itemdomain.ErrItemNotFound)
	})

	t.Run("partial update changes only supplied fields", func(t *testing.T) {
		repo := newRepo(t)
		a := create(t, repo, "alice", "Hook", 2, 500)
		later := baseTime.Add(time.Hour)
		qty := 7

		updated, err := repo.Update(ctx, "alice", a.ID, models.ItemPatch{Quantity: &qty}, later)
		require.NoError(t, err)
		assert.Equal(t, 7, updated.Quantity)
		assert.Equal(t, models.ItemName("Hook"), updated.Name)
		assert.Equal(t, models.Cents(500), updated.UnitPrice)
		assert.True(t, updated.UpdatedAt.Equal(later))
		assert.True(t, updated.CreatedAt.Equal(baseTime))

		stored, err := repo.GetByID(ctx, "alice", a.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, stored.Quantity)
		assert.Equal(t, models.Cents(500), stored.UnitPrice)
	})

	t.Run("update of a missing or foreign item leaves the store untouched", func(t *testing.T) {
		repo := newRepo(t)
		a := create(t, repo, "alice", "Hook", 2, 500)
		name := models.ItemName("Stolen")

		_, err := repo.Update(ctx, "bob", a.ID, models.ItemPatch{Name: &name}, baseTime.Add(time.Hour))
		assert.ErrorIs(t, err, itemdomain.ErrItemNotFound)

		_, err = repo.Update(ctx, "alice", a.ID+1000, models.ItemPatch{Name: &name}, baseTime.Add(time.Hour))
		assert.ErrorIs(t, err, itemdomain.ErrItemNotFound)

		stored, err := repo.GetByID(ctx, "alice", a.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ItemName("Hook"), stored.Name)
		assert.True(t, stored.UpdatedAt.Equal(baseTime))
	})

	t.Run("quantity and price bounds are the same on every store", func(t *testing.T) {
		repo := newRepo(t)
		kept := create(t, repo, "bob", "Yarn", models.MaxQuantity, models.MaxUnitPrice)
		assert.Equal(t, models.MaxQuantity, kept.Quantity)

		tooMany := newItem(t, "bob", "Yarn", 1, 1)
		tooMany.Quantity = models.MaxQuantity + 1
		require.ErrorIs(t, repo.Create(ctx, tooMany), itemdomain.ErrInvalidQuantity)

		tooDear := newItem(t, "bob", "Yarn", 1, 1)
		tooDear.UnitPrice = models.MaxUnitPrice + 1
		require.ErrorIs(t, repo.Create(ctx, tooDear), itemdomain.ErrInvalidPrice)

		over := models.MaxQuantity + 1
		_, err := repo.Update(ctx, "bob", kept.ID, models.ItemPatch{Quantity: &over}, baseTime.Add(time.Hour))
		require.ErrorIs(t, err, itemdomain.ErrInvalidQuantity)

		items, err := repo.ListByOwner(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, models.MaxQuantity, items[0].Quantity)
	})

	t.Run("delete twice returns true then false", func(t *testing.T) {
		repo := newRepo(t)
		a := create(t, repo, "alice", "A", 1, 1)

		removed, err := repo.Delete(ctx, "alice", a.ID)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = repo.Delete(ctx, "alice", a.ID)
		require.NoError(t, err)
		assert.False(t, removed)

		_, err = repo.GetByID(ctx, "alice", a.ID)
		assert.ErrorIs(t, err, itemdomain.ErrItemNotFound)
	})

	t.Run("delete of a foreign item returns false and keeps it", func(t *testing.T) {
		repo := newRepo(t)
		a := create(t, repo, "alice", "A", 1, 1)

		removed, err := repo.Delete(ctx, "bob", a.ID)
		require.NoError(t, err)
		assert.False(t, removed)

		_, err = repo.GetByID(ctx, "alice", a.ID)
		assert.NoError(t, err)
	})

	t.Run("returned items do not alias stored state", func(t *testing.T) {
		repo := newRepo(t)
		a := create(t, repo, "alice", "A", 1, 1)

		got, err := repo.GetByID(ctx, "alice", a.ID)
		require.NoError(t, err)
		got.Quantity = 99

		again, err := repo.GetByID(ctx, "alice", a.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, again.Quantity)
	})

	t.Run("concurrent creates and updates lose nothing", func(t *testing.T) {
		repo := newRepo(t)
		seed := create(t, repo, "alice", "Counter", 0, 0)

		const workers = 16
		var wg sync.WaitGroup
		ids := make(chan int64, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				it := newItem(t, "alice", "Concurrent", i, 1)
				if err := repo.Create(ctx, it); err == nil {
					ids <- it.ID
				}
				q := i
				_, _ = repo.Update(ctx, "alice", seed.ID, models.ItemPatch{Quantity: &q}, baseTime.Add(time.Minute))
			}(i)
		}
		wg.Wait()
		close(ids)

		seen := map[int64]bool{}
		for id := range ids {
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}
		assert.Len(t, seen, workers)

		items, err := repo.ListByOwner(ctx, "alice")
		require.NoError(t, err)
		assert.Len(t, items, workers+1)
	})
}
