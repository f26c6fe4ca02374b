package handlers

import (
	"net/http"

	"github.com/ghuser/crochestock/pkg/auth"
	"github.com/ghuser/crochestock/pkg/httpx"
	pkgvalidator "github.com/ghuser/crochestock/pkg/validator"
	appsvcs "github.com/ghuser/crochestock/services/item/application/services"
)

// PutItemHandler handles PUT /croche and PUT /croche/{id}.
type PutItemHandler struct{ base }

// NewPutItemHandler returns a PutItemHandler backed by the given services.
func NewPutItemHandler(svc *appsvcs.Services, production bool) *PutItemHandler {
	return &PutItemHandler{base{svc: svc, production: production}}
}

// Execute applies a partial update; the id travels in the body.
//
//	@Summary		Update item
//	@Description	Changes only the supplied fields and refreshes updated_at
//	@Tags			croche
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appsvcs.UpdateItemInput	true	"Partial update"
//	@Success		200		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/croche [put]
func (h *PutItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	req, ok := pkgvalidator.ValidateRequest[appsvcs.UpdateItemInput](w, r)
	if !ok {
		return
	}
	h.update(w, r, ownerID, *req)
}

// ExecuteByPath is Execute with the id taken from the path.
//
//	@Summary		Update item by id
//	@Tags			croche
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Item id"
//	@Param			request	body		appsvcs.ItemFields	true	"Partial update"
//	@Success		200		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/croche/{id} [put]
func (h *PutItemHandler) ExecuteByPath(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	fields, ok := pkgvalidator.ValidateRequest[appsvcs.ItemFields](w, r)
	if !ok {
		return
	}
	h.update(w, r, ownerID, appsvcs.UpdateItemInput{ID: id, ItemFields: *fields})
}

func (h *PutItemHandler) update(w http.ResponseWriter, r *http.Request, ownerID string, in appsvcs.UpdateItemInput) {
	item, err := h.svc.Item.Update(r.Context(), ownerID, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewItemResponse(item))
}
