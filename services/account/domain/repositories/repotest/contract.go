// Package repotest holds the behavioural contract every UserRepository
// implementation must satisfy.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountdomain "github.com/ghuser/crochestock/services/account/domain"
	"github.com/ghuser/crochestock/services/account/domain/models"
	"github.com/ghuser/crochestock/services/account/domain/repositories"
)

// Factory returns an empty repository. Each call must be isolated from the others.
type Factory func(t *testing.T) repositories.UserRepository

var baseTime = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func localUser(id, username string) *models.User {
	return &models.User{
		ID:           id,
		Username:     username,
		DisplayName:  "User " + id,
		PasswordHash: "$2a$10$hash-" + id,
		LoginMethod:  models.LoginMethodLocal,
		Role:         models.RoleUser,
		CreatedAt:    baseTime,
		LastSignedIn: baseTime,
	}
}

// Run executes the contract against repositories built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("create then get by id and username", func(t *testing.T) {
		repo := newRepo(t)
		want := localUser("user_1", "ana")
		require.NoError(t, repo.Create(ctx, want))

		got, err := repo.GetByID(ctx, "user_1")
		require.NoError(t, err)
		assertUser(t, want, got)

		got, err = repo.GetByUsername(ctx, "ana")
		require.NoError(t, err)
		assertUser(t, want, got)
	})

	t.Run("unknown id or username is not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetByID(ctx, "nobody")
		require.ErrorIs(t, err, accountdomain.ErrUserNotFound)
		_, err = repo.GetByUsername(ctx, "nobody")
		require.ErrorIs(t, err, accountdomain.ErrUserNotFound)
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, localUser("user_1", "ana")))
		err := repo.Create(ctx, localUser("user_2", "ana"))
		require.ErrorIs(t, err, accountdomain.ErrUsernameTaken)

		_, err = repo.GetByID(ctx, "user_2")
		require.ErrorIs(t, err, accountdomain.ErrUserNotFound)
	})

	t.Run("upsert creates with default role", func(t *testing.T) {
		repo := newRepo(t)
		got, err := repo.Upsert(ctx, models.UserUpsert{
			ID:           "local",
			DisplayName:  ptr("Local"),
			LastSignedIn: baseTime,
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, got.Role)
		assert.Equal(t, "Local", got.DisplayName)
		assert.Empty(t, got.Username)
		assert.True(t, got.CreatedAt.Equal(baseTime))

		stored, err := repo.GetByID(ctx, "local")
		require.NoError(t, err)
		assertUser(t, got, stored)
	})

	t.Run("upsert merges only supplied fields", func(t *testing.T) {
		repo := newRepo(t)
		orig := localUser("user_1", "ana")
		orig.Role = models.RoleAdmin
		require.NoError(t, repo.Create(ctx, orig))

		later := baseTime.Add(time.Hour)
		got, err := repo.Upsert(ctx, models.UserUpsert{
			ID:           "user_1",
			LoginMethod:  ptr(models.LoginMethodLocal),
			LastSignedIn: later,
		})
		require.NoError(t, err)
		assert.Equal(t, "ana", got.Username)
		assert.Equal(t, orig.DisplayName, got.DisplayName)
		assert.Equal(t, orig.PasswordHash, got.PasswordHash)
		assert.Equal(t, models.RoleAdmin, got.Role, "role must survive an upsert that does not set it")
		assert.True(t, got.CreatedAt.Equal(baseTime))
		assert.True(t, got.LastSignedIn.Equal(later))
	})

	t.Run("upsert cannot steal a username", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, localUser("user_1", "ana")))
		_, err := repo.Upsert(ctx, models.UserUpsert{ID: "user_2", Username: ptr("ana"), LastSignedIn: baseTime})
		require.ErrorIs(t, err, accountdomain.ErrUsernameTaken)
	})

	t.Run("returned users do not alias stored state", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, localUser("user_1", "ana")))
		got, err := repo.GetByID(ctx, "user_1")
		require.NoError(t, err)
		got.DisplayName = "mutated"

		again, err := repo.GetByID(ctx, "user_1")
		require.NoError(t, err)
		assert.Equal(t, "User user_1", again.DisplayName)
	})

	t.Run("concurrent signups with distinct usernames all land", func(t *testing.T) {
		repo := newRepo(t)
		const n = 20
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id := fmt.Sprintf("user_%d", i)
				errs <- repo.Create(ctx, localUser(id, "name"+id))
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}
		for i := range n {
			_, err := repo.GetByID(ctx, fmt.Sprintf("user_%d", i))
			require.NoError(t, err)
		}
	})
}

func assertUser(t *testing.T, want, got *models.User) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Username, got.Username)
	assert.Equal(t, want.DisplayName, got.DisplayName)
	assert.Equal(t, want.PasswordHash, got.PasswordHash)
	assert.Equal(t, want.LoginMethod, got.LoginMethod)
	assert.Equal(t, want.Role, got.Role)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "CreatedAt %v != %v", want.CreatedAt, got.CreatedAt)
	assert.True(t, want.LastSignedIn.Equal(got.LastSignedIn), "LastSignedIn %v != %v", want.LastSignedIn, got.LastSignedIn)
}
