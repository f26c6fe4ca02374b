//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	accountmigrations "github.com/ghuser/crochestock/migrations/account"
	"github.com/ghuser/crochestock/pkg/config"
	"github.com/ghuser/crochestock/pkg/database"
	"github.com/ghuser/crochestock/pkg/database/dbtest"
	"github.com/ghuser/crochestock/pkg/logger"
	"github.com/ghuser/crochestock/pkg/migrator"
	"github.com/ghuser/crochestock/services/account/domain/repositories"
	"github.com/ghuser/crochestock/services/account/domain/repositories/repotest"
)

func TestUserRepository_Contract(t *testing.T) {
	connStr := dbtest.StartPostgres(t, migrator.Set{
		Name: "account", FS: accountmigrations.FS, VersionTable: accountmigrations.VersionTable,
	})
	log := logger.New(&config.Config{LogLevel: "error"})
	pool, err := database.NewPool(context.Background(), connStr, log)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repotest.Run(t, func(t *testing.T) repositories.UserRepository {
		_, err := pool.DB().ExecContext(context.Background(), "TRUNCATE users")
		require.NoError(t, err)
		return NewUserRepository(pool)
	})
}
