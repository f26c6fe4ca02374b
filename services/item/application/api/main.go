package api

import (
	"fmt"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/crochestock/pkg/app"
	"github.com/ghuser/crochestock/pkg/auth"
	"github.com/ghuser/crochestock/services/item/application/handlers"
	appsvcs "github.com/ghuser/crochestock/services/item/application/services"
)

// ItemRoutes registers item endpoints on the provided chi router and the
// croche.* procedures on a.RPC when it is set.
func ItemRoutes(r chi.Router, a *app.Application) error {
	svcs, err := appsvcs.New(a)
	if err != nil {
		return fmt.Errorf("item services: %w", err)
	}
	prod := a.IsProduction()

	put := handlers.NewPutItemHandler(svcs, prod)
	del := handlers.NewDeleteItemHandler(svcs, prod)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(a.Logger))
		r.Route("/croche", func(r chi.Router) {
			r.Get("/", handlers.NewListItemsHandler(svcs, prod).Execute)
			r.Post("/", handlers.NewPostItemHandler(svcs, prod).Execute)
			r.Put("/", put.Execute)
			r.Delete("/", del.Execute)
			r.Get("/summary", handlers.NewItemSummaryHandler(svcs, prod).Execute)
			r.Get("/{id}", handlers.NewGetItemHandler(svcs, prod).Execute)
			r.Put("/{id}", put.ExecuteByPath)
			r.Delete("/{id}", del.ExecuteByPath)
		})
	})

	if a.RPC != nil {
		registerProcedures(a.RPC, svcs)
	}
	return nil
}
