package handlers

import (
	"net/http"

	"github.com/ghuser/crochestock/pkg/auth"
	"github.com/ghuser/crochestock/pkg/httpx"
	appsvcs "github.com/ghuser/crochestock/services/item/application/services"
)

// ItemSummaryHandler handles GET /croche/summary.
type ItemSummaryHandler struct{ base }

// NewItemSummaryHandler returns an ItemSummaryHandler backed by the given services.
func NewItemSummaryHandler(svc *appsvcs.Services, production bool) *ItemSummaryHandler {
	return &ItemSummaryHandler{base{svc: svc, production: production}}
}

// Execute returns the caller's inventory totals.
//
//	@Summary		Inventory totals
//	@Description	Item count, total quantity and total value of the caller's items
//	@Tags			croche
//	@Produce		json
//	@Success		200	{object}	SummaryResponse
//	@Failure		401	{object}	ErrorResponse
//	@Router			/croche/summary [get]
func (h *ItemSummaryHandler) Execute(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	sum, err := h.svc.Item.Summary(r.Context(), ownerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewSummaryResponse(sum))
}
