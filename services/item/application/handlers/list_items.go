package handlers

import (
	"net/http"

	"github.com/ghuser/crochestock/pkg/auth"
	"github.com/ghuser/crochestock/pkg/httpx"
	appsvcs "github.com/ghuser/crochestock/services/item/application/services"
)

// ListItemsHandler handles GET /croche.
type ListItemsHandler struct{ base }

// NewListItemsHandler returns a ListItemsHandler backed by the given services.
func NewListItemsHandler(svc *appsvcs.Services, production bool) *ListItemsHandler {
	return &ListItemsHandler{base{svc: svc, production: production}}
}

// Execute lists the caller's items in creation order.
//
//	@Summary		List items
//	@Description	Lists every item owned by the caller
//	@Tags			croche
//	@Produce		json
//	@Success		200	{array}		ItemResponse
//	@Failure		401	{object}	ErrorResponse
//	@Router			/croche [get]
func (h *ListItemsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	items, err := h.svc.Item.List(r.Context(), ownerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewItemResponses(items))
}
