package handlers

import (
	"net/http"

	"github.com/ghuser/crochestock/pkg/auth"
	"github.com/ghuser/crochestock/pkg/httpx"
	pkgvalidator "github.com/ghuser/crochestock/pkg/validator"
	appsvcs "github.com/ghuser/crochestock/services/item/application/services"
)

// DeleteItemHandler handles DELETE /croche and DELETE /croche/{id}.
type DeleteItemHandler struct{ base }

// NewDeleteItemHandler returns a DeleteItemHandler backed by the given services.
func NewDeleteItemHandler(svc *appsvcs.Services, production bool) *DeleteItemHandler {
	return &DeleteItemHandler{base{svc: svc, production: production}}
}

// Execute deletes the item named in the body.
//
//	@Summary		Delete item
//	@Description	deleted is false when no item of the caller had that id
//	@Tags			croche
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appsvcs.DeleteItemInput	true	"Item to delete"
//	@Success		200		{object}	DeleteItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/croche [delete]
func (h *DeleteItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	req, ok := pkgvalidator.ValidateRequest[appsvcs.DeleteItemInput](w, r)
	if !ok {
		return
	}
	h.delete(w, r, ownerID, req.ID)
}

// ExecuteByPath is Execute with the id taken from the path.
//
//	@Summary		Delete item by id
//	@Tags			croche
//	@Produce		json
//	@Param			id	path		int	true	"Item id"
//	@Success		200	{object}	DeleteItemResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Router			/croche/{id} [delete]
func (h *DeleteItemHandler) ExecuteByPath(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.delete(w, r, ownerID, id)
}

func (h *DeleteItemHandler) delete(w http.ResponseWriter, r *http.Request, ownerID string, id int64) {
	removed, err := h.svc.Item.Delete(r.Context(), ownerID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, DeleteItemResponse{OK: true, Deleted: removed})
}
