package handlers

import (
	"net/http"

	"github.com/ghuser/crochestock/pkg/auth"
	"github.com/ghuser/crochestock/pkg/httpx"
	appsvcs "github.com/ghuser/crochestock/services/item/application/services"
)

// GetItemHandler handles GET /croche/{id}.
type GetItemHandler struct{ base }

// NewGetItemHandler returns a GetItemHandler backed by the given services.
func NewGetItemHandler(svc *appsvcs.Services, production bool) *GetItemHandler {
	return &GetItemHandler{base{svc: svc, production: production}}
}

// Execute fetches one of the caller's items.
//
//	@Summary		Get item
//	@Tags			croche
//	@Produce		json
//	@Param			id	path		int	true	"Item id"
//	@Success		200	{object}	ItemResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/croche/{id} [get]
func (h *GetItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	item, err := h.svc.Item.Get(r.Context(), ownerID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewItemResponse(item))
}
