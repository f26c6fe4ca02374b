package api

import (
	"context"

	"github.com/ghuser/crochestock/pkg/auth"
	"github.com/ghuser/crochestock/pkg/rpc"
	"github.com/ghuser/crochestock/services/item/application/handlers"
	appsvcs "github.com/ghuser/crochestock/services/item/application/services"
)

// registerProcedures exposes the item operations as croche.* procedures.
// They return the same shapes as the REST handlers, except croche.delete
// which answers with the bare removed flag.
func registerProcedures(router *rpc.Router, svcs *appsvcs.Services) {
	router.Query("croche.list", func(ctx context.Context, _ *rpc.Request) (any, error) {
		ownerID, err := auth.UserIDFromCtx(ctx)
		if err != nil {
			return nil, err
		}
		items, err := svcs.Item.List(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		return handlers.NewItemResponses(items), nil
	})

	router.Query("croche.get", func(ctx context.Context, req *rpc.Request) (any, error) {
		ownerID, err := auth.UserIDFromCtx(ctx)
		if err != nil {
			return nil, err
		}
		in, err := rpc.Bind[appsvcs.GetItemInput](req)
		if err != nil {
			return nil, err
		}
		item, err := svcs.Item.Get(ctx, ownerID, in.ID)
		if err != nil {
			return nil, err
		}
		return handlers.NewItemResponse(item), nil
	})

	router.Query("croche.summary", func(ctx context.Context, _ *rpc.Request) (any, error) {
		ownerID, err := auth.UserIDFromCtx(ctx)
		if err != nil {
			return nil, err
		}
		sum, err := svcs.Item.Summary(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		return handlers.NewSummaryResponse(sum), nil
	})

	router.Mutation("croche.create", func(ctx context.Context, req *rpc.Request) (any, error) {
		ownerID, err := auth.UserIDFromCtx(ctx)
		if err != nil {
			return nil, err
		}
		in, err := rpc.Bind[appsvcs.CreateItemInput](req)
		if err != nil {
			return nil, err
		}
		item, err := svcs.Item.Create(ctx, ownerID, *in)
		if err != nil {
			return nil, err
		}
		return handlers.NewItemResponse(item), nil
	})

	router.Mutation("croche.update", func(ctx context.Context, req *rpc.Request) (any, error) {
		ownerID, err := auth.UserIDFromCtx(ctx)
		if err != nil {
			return nil, err
		}
		in, err := rpc.Bind[appsvcs.UpdateItemInput](req)
		if err != nil {
			return nil, err
		}
		item, err := svcs.Item.Update(ctx, ownerID, *in)
		if err != nil {
			return nil, err
		}
		return handlers.NewItemResponse(item), nil
	})

	router.Mutation("croche.delete", func(ctx context.Context, req *rpc.Request) (any, error) {
		ownerID, err := auth.UserIDFromCtx(ctx)
		if err != nil {
			return nil, err
		}
		in, err := rpc.Bind[appsvcs.DeleteItemInput](req)
		if err != nil {
			return nil, err
		}
		return svcs.Item.Delete(ctx, ownerID, in.ID)
	})
}
