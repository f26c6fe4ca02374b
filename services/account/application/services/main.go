package services

import (
	"errors"
	"fmt"

	"github.com/ghuser/crochestock/pkg/app"
	"github.com/ghuser/crochestock/pkg/config"
	"github.com/ghuser/crochestock/services/account/domain/repositories"
	"github.com/ghuser/crochestock/services/account/infrastructure/persistence/filestore"
	"github.com/ghuser/crochestock/services/account/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
type Services struct {
	Account *AccountService
}

// New wires the account services, choosing the repository by
// a.Config.StoreBackend.
func New(a *app.Application) (*Services, error) {
	repo, err := newRepository(a)
	if err != nil {
		return nil, err
	}
	return &Services{
		Account: NewAccountService(repo, a.Config.OwnerUserID, a.Logger.With("context", "account")),
	}, nil
}

func newRepository(a *app.Application) (repositories.UserRepository, error) {
	switch a.Config.StoreBackend {
	case config.StorePostgres:
		if a.Db == nil {
			return nil, errors.New("user store: postgres backend selected without a database")
		}
		return postgres.NewUserRepository(a.Db), nil
	case config.StoreFile, "":
		repo, err := filestore.NewUserRepository(a.Config.UsersFile())
		if err != nil {
			return nil, fmt.Errorf("user store: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("user store: unknown backend %q", a.Config.StoreBackend)
	}
}
