// Package auth holds buyer sessions and the middleware that turns a session
// cookie into a buyer ID on the request context.
//
// Session keys should be 32 or 64 bytes for HMAC authentication,
// and 16, 24, or 32 bytes for AES encryption. Production deployments
// must use cryptographically random keys generated with:
//
//	openssl rand -base64 32
package auth

import (
	"bytes"
	"context"
	"encoding/base32"
	"encoding/gob"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "ordermgmt:session:"

func sessionKey(id string) string { return sessionKeyPrefix + id }

// RedisStore is a sessions.Store that keeps buyer sessions in Redis. The
// cookie carries only the encrypted session ID.
//
// Redis keys: "ordermgmt:session:<id>", expiring with the session MaxAge.
// Values are gob-encoded; the buyer ID is stored as a string.
type RedisStore struct {
	client  *redis.Client
	codecs  []securecookie.Codec
	options *sessions.Options
}

// NewSessionStore creates a Redis-backed session store whose sessions last
// maxAge (SESSION_MAX_AGE). secureCookie should be true in production so
// the cookie is only sent over HTTPS.
//
//	store := auth.NewSessionStore(
//	    app.Redis.Client(),
//	    []byte(cfg.SessionAuthKey),
//	    []byte(cfg.SessionEncryptionKey),
//	    cfg.Environment == config.EnvProduction,
//	    cfg.SessionMaxAge,
//	)
func NewSessionStore(client *redis.Client, authKey, encryptionKey []byte, secureCookie bool, maxAge time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		codecs: securecookie.CodecsFromPairs(authKey, encryptionKey),
		options: &sessions.Options{
			Path:     "/",
			MaxAge:   int(maxAge / time.Second),
			HttpOnly: true,
			Secure:   secureCookie,
			SameSite: http.SameSiteLaxMode,
		},
	}
}

// Get returns a session for the given name, loading from Redis if a valid
// session cookie exists.
func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New creates a session. If a valid cookie exists, it decodes the session ID
// and loads data from Redis. A missing/expired/invalid cookie yields a fresh session.
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil // no cookie → new session, no error
	}

	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		return session, nil // invalid/tampered/expired cookie → new session
	}

	session.ID = id
	if err := s.load(r.Context(), session); err != nil {
		return session, nil // Redis key missing or expired → new session
	}
	session.IsNew = false
	return session, nil
}

// Save persists the session to Redis and writes the encrypted session cookie.
// If MaxAge < 0, the session and its Redis key are deleted.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			_ = s.client.Del(r.Context(), sessionKey(session.ID)).Err()
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = strings.TrimRight(
			base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
			"=",
		)
	}

	if err := s.save(r.Context(), session); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func (s *RedisStore) save(ctx context.Context, session *sessions.Session) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(session.Values); err != nil {
		return fmt.Errorf("encode session values: %w", err)
	}
	ttl := time.Duration(session.Options.MaxAge) * time.Second
	if err := s.client.Set(ctx, sessionKey(session.ID), buf.Bytes(), ttl).Err(); err != nil {
		return fmt.Errorf("set session in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, session *sessions.Session) error {
	data, err := s.client.Get(ctx, sessionKey(session.ID)).Bytes()
	if err != nil {
		return fmt.Errorf("get session from redis: %w", err)
	}
	return gob.NewDecoder(bytes.NewBuffer(data)).Decode(&session.Values)
}
