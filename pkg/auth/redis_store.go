package auth

import (
	"context"
	"encoding/base32"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

// DefaultSessionPrefix namespaces session hashes in a shared Redis.
const DefaultSessionPrefix = "croche:session:"

var errNoSession = errors.New("session not found")

// RedisStore keeps session values server-side in a Redis hash
// "<prefix><id>" whose TTL tracks the cookie MaxAge. The cookie carries only
// the signed, encrypted id. Values must be strings.
type RedisStore struct {
	client  redis.UniversalClient
	codecs  []securecookie.Codec
	options *sessions.Options
	prefix  string
}

// NewSessionStore returns a Redis-backed store. secure marks the cookie
// HTTPS-only and should be set outside development.
func NewSessionStore(client redis.UniversalClient, authKey, encryptionKey []byte, secure bool) *RedisStore {
	return &RedisStore{
		client:  client,
		codecs:  keyCodecs(authKey, encryptionKey),
		options: cookieOptions(secure),
		prefix:  DefaultSessionPrefix,
	}
}

// Get returns the request's cached session, loading it on first use.
func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the request cookie. A missing, tampered or
// expired cookie, or a hash that no longer exists, yields a fresh session
// without error.
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		return session, nil
	}

	values, err := s.load(r.Context(), id)
	switch {
	case errors.Is(err, errNoSession):
		return session, nil
	case err != nil:
		return session, err
	}
	session.ID = id
	for k, v := range values {
		session.Values[k] = v
	}
	session.IsNew = false
	return session, nil
}

// Save writes the session hash and cookie. A negative MaxAge deletes both.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	ctx := r.Context()
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.client.Del(ctx, s.key(session.ID)).Err(); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = newSessionID()
	}
	if err := s.store(ctx, session); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func (s *RedisStore) renew(ctx context.Context, session *sessions.Session) error {
	if session.ID != "" {
		if err := s.client.Del(ctx, s.key(session.ID)).Err(); err != nil {
			return err
		}
	}
	session.ID = ""
	return nil
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) store(ctx context.Context, session *sessions.Session) error {
	fields := make(map[string]any, len(session.Values))
	for k, v := range session.Values {
		ks, kok := k.(string)
		vs, vok := v.(string)
		if !kok || !vok {
			return fmt.Errorf("session value %v: only string keys and values are supported", k)
		}
		fields[ks] = vs
	}

	key := s.key(session.ID)
	ttl := time.Duration(session.Options.MaxAge) * time.Second
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		if len(fields) > 0 {
			p.HSet(ctx, key, fields)
		} else {
			p.HSet(ctx, key, "_", "")
		}
		p.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, id string) (map[string]string, error) {
	values, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(values) == 0 {
		return nil, errNoSession
	}
	delete(values, "_")
	return values, nil
}

func newSessionID() string {
	return strings.TrimRight(base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)), "=")
}
