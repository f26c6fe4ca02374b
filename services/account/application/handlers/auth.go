package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/crochestock/pkg/auth"
	"github.com/ghuser/crochestock/pkg/errhttp"
	"github.com/ghuser/crochestock/pkg/httpx"
	"github.com/ghuser/crochestock/pkg/logger"
	pkgvalidator "github.com/ghuser/crochestock/pkg/validator"
	appsvcs "github.com/ghuser/crochestock/services/account/application/services"
	accountdomain "github.com/ghuser/crochestock/services/account/domain"
)

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	svc        *appsvcs.Services
	store      sessions.Store
	log        logger.Logger
	production bool
}

// NewAuthHandler returns an AuthHandler that keeps sessions in store.
func NewAuthHandler(svc *appsvcs.Services, store sessions.Store, log logger.Logger, production bool) *AuthHandler {
	return &AuthHandler{svc: svc, store: store, log: log, production: production}
}

// Signup creates a local account and logs it in.
//
//	@Summary		Sign up
//	@Description	Creates a local account (username >= 3 characters, password >= 6) and sets the session cookie
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appsvcs.SignupInput	true	"New account"
//	@Success		200		{object}	AuthResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[appsvcs.SignupInput](w, r)
	if !ok {
		return
	}

	user, err := h.svc.Account.Signup(r.Context(), *req)
	if err != nil {
		errhttp.WriteError(w, r, err, h.production)
		return
	}
	if err := auth.LogIn(w, r, h.store, user.ID); err != nil {
		h.log.ErrorContext(r.Context(), "session save failed", "user_id", user.ID, "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "Signup failed")
		return
	}
	httpx.JSON(w, http.StatusOK, newAuthResponse(user))
}

// Login checks local credentials and sets the session cookie.
//
//	@Summary		Log in
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appsvcs.LoginInput	true	"Credentials"
//	@Success		200		{object}	AuthResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[appsvcs.LoginInput](w, r)
	if !ok {
		return
	}

	user, err := h.svc.Account.Login(r.Context(), *req)
	if errors.Is(err, accountdomain.ErrInvalidCredentials) {
		httpx.JSONError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		errhttp.WriteError(w, r, err, h.production)
		return
	}
	if err := auth.LogIn(w, r, h.store, user.ID); err != nil {
		h.log.ErrorContext(r.Context(), "session save failed", "user_id", user.ID, "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	httpx.JSON(w, http.StatusOK, newAuthResponse(user))
}

// Logout clears the session cookie.
//
//	@Summary		Log out
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	SuccessResponse
//	@Router			/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := auth.LogOut(w, r, h.store); err != nil {
		errhttp.WriteError(w, r, err, h.production)
		return
	}
	httpx.JSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// Me returns the signed-in user, or null for anonymous callers.
//
//	@Summary		Current user
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	MeResponse
//	@Router			/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	me, err := h.CurrentUser(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, err, h.production)
		return
	}
	httpx.JSON(w, http.StatusOK, me)
}

// CurrentUser resolves the session user. Anonymous callers, including the
// fallback identity, and sessions naming a vanished user yield nil.
func (h *AuthHandler) CurrentUser(ctx context.Context) (*MeResponse, error) {
	userID, err := auth.SessionUserIDFromCtx(ctx)
	if err != nil {
		return nil, nil
	}
	user, err := h.svc.Account.Me(ctx, userID)
	if errors.Is(err, accountdomain.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	me := NewMeResponse(user)
	return &me, nil
}
