package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/crochestock/pkg/app"
	"github.com/ghuser/crochestock/pkg/auth"
	"github.com/ghuser/crochestock/pkg/rpc"
	"github.com/ghuser/crochestock/services/account/application/handlers"
	appsvcs "github.com/ghuser/crochestock/services/account/application/services"
)

// AccountRoutes registers the /auth endpoints and the auth.* procedures.
func AccountRoutes(r chi.Router, a *app.Application) error {
	if a.SessionStore == nil {
		return errors.New("account routes: session store is required")
	}
	svcs, err := appsvcs.New(a)
	if err != nil {
		return fmt.Errorf("account services: %w", err)
	}
	h := handlers.NewAuthHandler(svcs, a.SessionStore, a.Logger, a.IsProduction())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
	})

	if a.RPC != nil {
		a.RPC.Query("auth.me", func(ctx context.Context, _ *rpc.Request) (any, error) {
			me, err := h.CurrentUser(ctx)
			if err != nil || me == nil {
				return nil, err
			}
			return me, nil
		})
		a.RPC.Mutation("auth.logout", func(_ context.Context, req *rpc.Request) (any, error) {
			if err := auth.LogOut(req.Writer, req.HTTP, a.SessionStore); err != nil {
				return nil, err
			}
			return handlers.SuccessResponse{Success: true}, nil
		})
	}
	return nil
}
