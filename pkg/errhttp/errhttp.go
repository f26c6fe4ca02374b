// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to StatusFor for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/crochestock/pkg/auth"
	"github.com/ghuser/crochestock/pkg/httpx"
	"github.com/ghuser/crochestock/pkg/telemetry"
	pkgvalidator "github.com/ghuser/crochestock/pkg/validator"
	accountdomain "github.com/ghuser/crochestock/services/account/domain"
	itemdomain "github.com/ghuser/crochestock/services/item/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Input errors carry their per-field messages. 5xx errors are reported to
// Sentry and, in production, answered with the generic status text.
func WriteError(w http.ResponseWriter, r *http.Request, err error, isProduction bool) {
	var inputErr *pkgvalidator.InputError
	if errors.As(err, &inputErr) {
		httpx.JSONFieldErrors(w, http.StatusBadRequest, inputErr.Message, inputErr.Fields)
		return
	}

	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		telemetry.CaptureError(r.Context(), err)
	}
	httpx.JSONError(w, status, httpx.SafeError(err, status, isProduction))
}

// StatusFor returns the HTTP status for err. Uses errors.Is() so wrapped
// sentinel errors are matched correctly. Defaults to 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, pkgvalidator.ErrInvalidInput),
		errors.Is(err, itemdomain.ErrInvalidItemName),
		errors.Is(err, itemdomain.ErrInvalidQuantity),
		errors.Is(err, itemdomain.ErrInvalidPrice),
		errors.Is(err, itemdomain.ErrValueOverflow),
		errors.Is(err, accountdomain.ErrInvalidUsername),
		errors.Is(err, accountdomain.ErrInvalidPassword),
		errors.Is(err, accountdomain.ErrInvalidDisplayName),
		errors.Is(err, accountdomain.ErrInvalidRole):
		return http.StatusBadRequest // 400
	case errors.Is(err, auth.ErrUserIDNotFound),
		errors.Is(err, itemdomain.ErrOwnerRequired),
		errors.Is(err, accountdomain.ErrInvalidCredentials):
		return http.StatusUnauthorized // 401
	case errors.Is(err, itemdomain.ErrItemNotFound),
		errors.Is(err, accountdomain.ErrUserNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, accountdomain.ErrUsernameTaken):
		return http.StatusConflict // 409
	default:
		return http.StatusInternalServerError // 500
	}
}
