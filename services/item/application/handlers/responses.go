package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/crochestock/pkg/errhttp"
	"github.com/ghuser/crochestock/pkg/httpx"
	appsvcs "github.com/ghuser/crochestock/services/item/application/services"
	"github.com/ghuser/crochestock/services/item/domain/models"
)

// ItemResponse is the wire shape of an item. The owner is implied by the session.
type ItemResponse struct {
	ID             int64     `json:"id"               example:"1"`
	Name           string    `json:"name"             example:"Merino yarn"`
	Quantity       int       `json:"quantity"         example:"12"`
	UnitPriceCents int64     `json:"unit_price_cents" example:"450"`
	UnitPrice      float64   `json:"unit_price"       example:"4.5"`
	CreatedAt      time.Time `json:"created_at"       example:"2024-01-15T10:30:00Z"`
	UpdatedAt      time.Time `json:"updated_at"       example:"2024-01-15T10:30:00Z"`
} // @name ItemResponse

// SummaryResponse holds the inventory totals.
type SummaryResponse struct {
	ItemCount       int     `json:"item_count"        example:"2"`
	TotalQuantity   int64   `json:"total_quantity"    example:"15"`
	TotalValueCents int64   `json:"total_value_cents" example:"5400"`
	TotalValue      float64 `json:"total_value"       example:"54"`
} // @name SummaryResponse

// DeleteItemResponse reports whether a record was removed.
type DeleteItemResponse struct {
	OK      bool `json:"ok"      example:"true"`
	Deleted bool `json:"deleted" example:"true"`
} // @name DeleteItemResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error  string            `json:"error"            example:"Validation failed"`
	Fields map[string]string `json:"fields,omitempty"`
} // @name ErrorResponse

// NewItemResponse converts a domain item to its wire shape.
func NewItemResponse(it *models.Item) ItemResponse {
	return ItemResponse{
		ID:             it.ID,
		Name:           it.Name.String(),
		Quantity:       it.Quantity,
		UnitPriceCents: int64(it.UnitPrice),
		UnitPrice:      it.UnitPrice.Major(),
		CreatedAt:      it.CreatedAt,
		UpdatedAt:      it.UpdatedAt,
	}
}

// NewItemResponses converts a list, never returning nil.
func NewItemResponses(items []*models.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, NewItemResponse(it))
	}
	return out
}

// NewSummaryResponse converts inventory totals to their wire shape.
func NewSummaryResponse(s models.Summary) SummaryResponse {
	return SummaryResponse{
		ItemCount:       s.ItemCount,
		TotalQuantity:   s.TotalQuantity,
		TotalValueCents: int64(s.TotalValue),
		TotalValue:      s.TotalValue.Major(),
	}
}

// base carries what every item handler needs.
type base struct {
	svc        *appsvcs.Services
	production bool
}

func (b base) fail(w http.ResponseWriter, r *http.Request, err error) {
	errhttp.WriteError(w, r, err, b.production)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid item id")
		return 0, false
	}
	return id, true
}
