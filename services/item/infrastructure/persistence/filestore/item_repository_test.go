package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/crochestock/services/item/domain/models"
	"github.com/ghuser/crochestock/services/item/domain/repositories"
	"github.com/ghuser/crochestock/services/item/domain/repositories/repotest"
)

func TestItemRepository_Contract_InMemory(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repositories.ItemRepository {
		repo, err := NewItemRepository("")
		require.NoError(t, err)
		return repo
	})
}

func TestItemRepository_Contract_File(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repositories.ItemRepository {
		repo, err := NewItemRepository(filepath.Join(t.TempDir(), "croche-items.json"))
		require.NoError(t, err)
		return repo
	})
}

func newFileItem(t *testing.T, owner, name string) *models.Item {
	t.Helper()
	it, err := models.NewItem(owner, models.ItemName(name), 1, 100, time.Now())
	require.NoError(t, err)
	return it
}

func TestItemRepository_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "croche-items.json")

	repo, err := NewItemRepository(path)
	require.NoError(t, err)

	a := newFileItem(t, "alice", "A")
	b := newFileItem(t, "alice", "B")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))
	removed, err := repo.Delete(ctx, "alice", b.ID)
	require.NoError(t, err)
	require.True(t, removed)

	reopened, err := NewItemRepository(path)
	require.NoError(t, err)

	items, err := reopened.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, a.ID, items[0].ID)

	c := newFileItem(t, "alice", "C")
	require.NoError(t, reopened.Create(ctx, c))
	assert.Greater(t, c.ID, b.ID, "the deleted id must not be handed out again after a restart")
}

func TestItemRepository_PersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repo, err := NewItemRepository(filepath.Join(dir, "croche-items.json"))
	require.NoError(t, err)
	a := newFileItem(t, "alice", "A")
	require.NoError(t, repo.Create(ctx, a))

	// A regular file where the parent directory should be makes every write fail.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	repo.path = filepath.Join(blocker, "croche-items.json")

	b := newFileItem(t, "alice", "B")
	assert.Error(t, repo.Create(ctx, b))
	assert.Zero(t, b.ID)

	qty := 50
	_, err = repo.Update(ctx, "alice", a.ID, models.ItemPatch{Quantity: &qty}, time.Now())
	assert.Error(t, err)

	removed, err := repo.Delete(ctx, "alice", a.ID)
	assert.Error(t, err)
	assert.False(t, removed)

	items, err := repo.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)

	repo.path = filepath.Join(dir, "croche-items.json")
	c := newFileItem(t, "alice", "C")
	require.NoError(t, repo.Create(ctx, c))
	assert.Equal(t, a.ID+1, c.ID, "a failed create must not consume an id")
}

func TestNewItemRepository_RejectsDuplicateIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "croche-items.json")
	doc := `{"last_id":2,"items":[{"id":1,"owner_id":"a","name":"x"},{"id":1,"owner_id":"a","name":"y"}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := NewItemRepository(path)
	assert.Error(t, err)
}

func TestNewItemRepository_LastIDNeverBelowMaxID(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "croche-items.json")
	doc := `{"last_id":0,"items":[{"id":41,"owner_id":"a","name":"x"}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	repo, err := NewItemRepository(path)
	require.NoError(t, err)

	it := newFileItem(t, "a", "y")
	require.NoError(t, repo.Create(ctx, it))
	assert.Equal(t, int64(42), it.ID)
}
