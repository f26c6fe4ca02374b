// Package auth resolves the acting user of a request and manages the session
// cookie that carries it.
//
// Keys come from SESSION_AUTH_KEY (HMAC, 32 or 64 bytes) and
// SESSION_ENCRYPTION_KEY (AES, 16, 24 or 32 bytes). Generate them with
//
//	openssl rand -base64 32
package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	sessionName      = "croche_session"
	sessionUserIDKey = "user_id"

	// SessionMaxAge keeps a login alive for one year.
	SessionMaxAge = 365 * 24 * 60 * 60
)

// cookieOptions are shared by both stores. Lax still sends the cookie on
// top-level navigation back to the app.
func cookieOptions(secure bool) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   SessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// keyCodecs builds securecookie codecs whose embedded timestamp is honored
// for SessionMaxAge rather than securecookie's 30 day default.
func keyCodecs(authKey, encryptionKey []byte) []securecookie.Codec {
	cs := securecookie.CodecsFromPairs(authKey, encryptionKey)
	for _, c := range cs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxAge(SessionMaxAge)
		}
	}
	return cs
}

// NewCookieStore keeps the whole session encrypted in the cookie. Used when
// Redis is disabled.
func NewCookieStore(authKey, encryptionKey []byte, secure bool) *sessions.CookieStore {
	return &sessions.CookieStore{
		Codecs:  keyCodecs(authKey, encryptionKey),
		Options: cookieOptions(secure),
	}
}

// renewer is implemented by stores that can issue a fresh session id, so a
// login never reuses an id that existed before authentication.
type renewer interface {
	renew(ctx context.Context, s *sessions.Session) error
}

// LogIn binds userID to the caller's session and writes the session cookie.
func LogIn(w http.ResponseWriter, r *http.Request, store sessions.Store, userID string) error {
	session, err := store.Get(r, sessionName)
	if session == nil {
		return fmt.Errorf("load session: %w", err)
	}
	if rn, ok := store.(renewer); ok && !session.IsNew {
		if err := rn.renew(r.Context(), session); err != nil {
			return fmt.Errorf("renew session: %w", err)
		}
	}
	session.Values[sessionUserIDKey] = userID
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LogOut forgets the user and expires the cookie.
func LogOut(w http.ResponseWriter, r *http.Request, store sessions.Store) error {
	session, err := store.Get(r, sessionName)
	if session == nil {
		return fmt.Errorf("load session: %w", err)
	}
	delete(session.Values, sessionUserIDKey)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// sessionUser returns the user id stored in session, if any.
func sessionUser(s *sessions.Session) (string, bool) {
	if s == nil {
		return "", false
	}
	id, ok := s.Values[sessionUserIDKey].(string)
	return id, ok && id != ""
}
