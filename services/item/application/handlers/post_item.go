package handlers

import (
	"net/http"

	"github.com/ghuser/crochestock/pkg/auth"
	"github.com/ghuser/crochestock/pkg/httpx"
	pkgvalidator "github.com/ghuser/crochestock/pkg/validator"
	appsvcs "github.com/ghuser/crochestock/services/item/application/services"
)

// PostItemHandler handles POST /croche requests.
type PostItemHandler struct{ base }

// NewPostItemHandler returns a PostItemHandler backed by the given services.
func NewPostItemHandler(svc *appsvcs.Services, production bool) *PostItemHandler {
	return &PostItemHandler{base{svc: svc, production: production}}
}

// Execute creates a new item.
//
//	@Summary		Create item
//	@Description	Creates an item owned by the caller. price is in major units and stored as round(price*100) cents.
//	@Tags			croche
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appsvcs.CreateItemInput	true	"Item creation request"
//	@Success		201		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/croche [post]
func (h *PostItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	req, ok := pkgvalidator.ValidateRequest[appsvcs.CreateItemInput](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Item.Create(r.Context(), ownerID, *req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewItemResponse(item))
}
