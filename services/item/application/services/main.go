package services

import (
	"errors"
	"fmt"

	"github.com/ghuser/crochestock/pkg/app"
	"github.com/ghuser/crochestock/pkg/cache"
	"github.com/ghuser/crochestock/pkg/config"
	"github.com/ghuser/crochestock/services/item/domain/repositories"
	"github.com/ghuser/crochestock/services/item/infrastructure/persistence/filestore"
	"github.com/ghuser/crochestock/services/item/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Item *ItemService
}

// New wires all item application services with infrastructure from the
// Application container, choosing the repository by a.Config.StoreBackend.
func New(a *app.Application) (*Services, error) {
	repo, err := newRepository(a)
	if err != nil {
		return nil, err
	}
	itemCache := cache.NewItemCache(a.Redis)
	return &Services{
		Item: NewItemService(repo, itemCache, a.Metrics, a.Logger.With("context", "item")),
	}, nil
}

func newRepository(a *app.Application) (repositories.ItemRepository, error) {
	switch a.Config.StoreBackend {
	case config.StorePostgres:
		if a.Db == nil {
			return nil, errors.New("item store: postgres backend selected without a database")
		}
		return postgres.NewItemRepository(a.Db, a.EventBus), nil
	case config.StoreFile, "":
		repo, err := filestore.NewItemRepository(a.Config.ItemsFile())
		if err != nil {
			return nil, fmt.Errorf("item store: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("item store: unknown backend %q", a.Config.StoreBackend)
	}
}
