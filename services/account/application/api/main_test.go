package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/crochestock/pkg/app"
	"github.com/ghuser/crochestock/pkg/auth"
	"github.com/ghuser/crochestock/pkg/config"
	"github.com/ghuser/crochestock/pkg/errhttp"
	"github.com/ghuser/crochestock/pkg/logger"
	"github.com/ghuser/crochestock/pkg/rpc"
	"github.com/ghuser/crochestock/services/account/application/api"
	"github.com/ghuser/crochestock/services/account/application/handlers"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	log := logger.Discard()
	store := auth.NewCookieStore([]byte("test-auth-key-32-bytes-long!!!!!"), []byte("test-enc-key-32-bytes-long!!!!!!"), false)
	a := &app.Application{
		Config:       &config.Config{StoreBackend: config.StoreFile, DataDir: t.TempDir(), Environment: config.EnvTesting},
		Logger:       log,
		SessionStore: store,
		RPC:          rpc.NewRouter(log, rpc.Options{StatusFor: errhttp.StatusFor}),
	}

	r := chi.NewRouter()
	r.Use(auth.Authenticate(store, "local", log))
	require.NoError(t, api.AccountRoutes(r, a))
	r.Handle("/trpc/{procedures}", a.RPC)
	return r
}

type client struct {
	t       *testing.T
	h       http.Handler
	cookies []*http.Cookie
}

func (c *client) do(method, target, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		c.cookies = set
	}
	return rec
}

func TestAuthFlow(t *testing.T) {
	c := &client{t: t, h: newServer(t)}

	rec := c.do(http.MethodGet, "/auth/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()), "fallback identity is not a signed-in user")

	rec = c.do(http.MethodPost, "/auth/signup", `{"username":"ana","password":"secret","name":"Ana"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var signup handlers.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signup))
	assert.True(t, signup.Success)
	assert.Equal(t, "Ana", signup.User.Name)
	require.NotEmpty(t, c.cookies, "signup must set the session cookie")
	assert.Equal(t, auth.SessionMaxAge, c.cookies[0].MaxAge)

	rec = c.do(http.MethodGet, "/auth/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var me handlers.MeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, signup.User.ID, me.ID)
	assert.Equal(t, "ana", me.Username)
	assert.Equal(t, "local", me.LoginMethod)

	rec = c.do(http.MethodPost, "/auth/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = c.do(http.MethodGet, "/auth/me", "")
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	rec = c.do(http.MethodPost, "/auth/login", `{"username":"ana","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login handlers.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, signup.User, login.User)

	rec = c.do(http.MethodGet, "/trpc/auth.me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rpcMe struct {
		Result struct {
			Data handlers.MeResponse `json:"data"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rpcMe))
	assert.Equal(t, signup.User.ID, rpcMe.Result.Data.ID)

	rec = c.do(http.MethodPost, "/trpc/auth.logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"result":{"data":{"success":true}}}`, rec.Body.String())

	rec = c.do(http.MethodGet, "/trpc/auth.me", "")
	assert.JSONEq(t, `{"result":{"data":null}}`, rec.Body.String())
}

func TestAuthErrors(t *testing.T) {
	c := &client{t: t, h: newServer(t)}
	rec := c.do(http.MethodPost, "/auth/signup", `{"username":"ana","password":"secret","name":"Ana"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	tests := []struct {
		name       string
		target     string
		body       string
		wantStatus int
	}{
		{"login missing password", "/auth/login", `{"username":"ana"}`, http.StatusBadRequest},
		{"login wrong password", "/auth/login", `{"username":"ana","password":"nope!!"}`, http.StatusUnauthorized},
		{"login unknown user", "/auth/login", `{"username":"bob","password":"secret"}`, http.StatusUnauthorized},
		{"signup missing name", "/auth/signup", `{"username":"bob","password":"secret"}`, http.StatusBadRequest},
		{"signup short username", "/auth/signup", `{"username":"bo","password":"secret","name":"Bo"}`, http.StatusBadRequest},
		{"signup short password", "/auth/signup", `{"username":"bob","password":"12345","name":"Bob"}`, http.StatusBadRequest},
		{"signup duplicate", "/auth/signup", `{"username":"ana","password":"secret","name":"Ana"}`, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := (&client{t: t, h: c.h}).do(http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}

	rec = c.do(http.MethodPost, "/auth/login", `{"username":"ana","password":"wrong!"}`)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, rec.Body.String())
}
