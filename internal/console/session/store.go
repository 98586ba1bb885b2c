// Package session holds the console's browser session lifecycle: the token
// cookie, the auth state machine and the one-shot session validator.
package session

import (
	"net/http"
	"time"
)

// TokenStore carries the access token between requests. The cookie store is
// the real one; MemStore backs tests.
type TokenStore interface {
	Save(token string) error
	Load() (string, bool)
	Clear() error
}

// CookieOptions shape the session cookie.
type CookieOptions struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

func (o CookieOptions) withDefaults() CookieOptions {
	if o.Name == "" {
		o.Name = "access_token"
	}
	if o.TTL <= 0 {
		o.TTL = 7 * 24 * time.Hour
	}
	return o
}

// CookieStore reads the token from the request and writes it on the
// response. It is scoped to a single request/response pair.
type CookieStore struct {
	w    http.ResponseWriter
	r    *http.Request
	opts CookieOptions
}

var _ TokenStore = (*CookieStore)(nil)

func NewCookieStore(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieStore {
	return &CookieStore{w: w, r: r, opts: opts.withDefaults()}
}

func (s *CookieStore) Save(token string) error {
	http.SetCookie(s.w, &http.Cookie{
		Name:     s.opts.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(s.opts.TTL).UTC(),
		MaxAge:   int(s.opts.TTL.Seconds()),
	})
	return nil
}

func (s *CookieStore) Load() (string, bool) {
	ck, err := s.r.Cookie(s.opts.Name)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

func (s *CookieStore) Clear() error {
	http.SetCookie(s.w, &http.Cookie{
		Name:     s.opts.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
	})
	return nil
}

// MemStore is an in-memory TokenStore for tests. SaveErr and ClearErr
// inject failures.
type MemStore struct {
	token    string
	has      bool
	SaveErr  error
	ClearErr error
}

var _ TokenStore = (*MemStore)(nil)

func NewMemStore() *MemStore { return &MemStore{} }

func (s *MemStore) Save(token string) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.token = token
	s.has = true
	return nil
}

func (s *MemStore) Load() (string, bool) {
	if !s.has {
		return "", false
	}
	return s.token, true
}

func (s *MemStore) Clear() error {
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.token = ""
	s.has = false
	return nil
}
