package services

// ItemFields are the editable fields of an update. Nil fields keep their
// stored value. Price is in major units.
type ItemFields struct {
	Name     *string  `json:"name,omitempty"     validate:"omitempty,min=1,max=255" example:"Merino yarn"`
	Quantity *int     `json:"quantity,omitempty" validate:"omitempty,gte=0,lte=2147483647" example:"12"`
	Price    *float64 `json:"price,omitempty"    validate:"omitempty,gte=0,lte=10000000000" example:"4.5"`
} // @name ItemFields

// CreateItemInput is the payload of a create. Price is in major units and is
// stored as round(price*100) cents.
type CreateItemInput struct {
	Name     string   `json:"name"     validate:"required,min=1,max=255" example:"Merino yarn"`
	Quantity *int     `json:"quantity" validate:"required,gte=0,lte=2147483647" example:"12"`
	Price    *float64 `json:"price"    validate:"required,gte=0,lte=10000000000" example:"4.5"`
} // @name CreateItemInput

// UpdateItemInput is a partial update of the item ID.
type UpdateItemInput struct {
	ID int64 `json:"id" validate:"required,gt=0" example:"1"`
	ItemFields
} // @name UpdateItemInput

// DeleteItemInput identifies the item to delete.
type DeleteItemInput struct {
	ID int64 `json:"id" validate:"required,gt=0" example:"1"`
} // @name DeleteItemInput

// GetItemInput identifies the item to fetch.
type GetItemInput struct {
	ID int64 `json:"id" validate:"required,gt=0" example:"1"`
} // @name GetItemInput
