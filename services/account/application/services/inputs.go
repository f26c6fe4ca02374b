package services

// SignupInput registers a local account.
type SignupInput struct {
	Username string `json:"username" validate:"required" example:"ana"`
	Password string `json:"password" validate:"required" example:"s3cret!"`
	Name     string `json:"name"     validate:"required" example:"Ana"`
} // @name SignupInput

// LoginInput authenticates a local account.
type LoginInput struct {
	Username string `json:"username" validate:"required" example:"ana"`
	Password string `json:"password" validate:"required" example:"s3cret!"`
} // @name LoginInput
