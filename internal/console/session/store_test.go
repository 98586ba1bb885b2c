package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCookieStoreRoundtrip(t *testing.T) {
	opts := CookieOptions{Name: "access_token", Secure: true, TTL: 24 * time.Hour}

	// Save on one response...
	rec := httptest.NewRecorder()
	store := NewCookieStore(rec, httptest.NewRequest(http.MethodGet, "/", nil), opts)
	if err := store.Save("tok-123"); err != nil {
		t.Fatalf("save: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("set %d cookies, want 1", len(cookies))
	}
	ck := cookies[0]
	if ck.Name != "access_token" || ck.Value != "tok-123" {
		t.Errorf("cookie %s=%s", ck.Name, ck.Value)
	}
	if !ck.HttpOnly || !ck.Secure || ck.SameSite != http.SameSiteStrictMode {
		t.Errorf("cookie attributes: HttpOnly=%v Secure=%v SameSite=%v", ck.HttpOnly, ck.Secure, ck.SameSite)
	}
	if ck.MaxAge != int((24 * time.Hour).Seconds()) {
		t.Errorf("cookie MaxAge = %d", ck.MaxAge)
	}

	// ...load on the next request.
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(ck)
	store = NewCookieStore(httptest.NewRecorder(), next, opts)
	token, ok := store.Load()
	if !ok || token != "tok-123" {
		t.Fatalf("load = %q, %v", token, ok)
	}
}

func TestCookieStoreLoadMissing(t *testing.T) {
	store := NewCookieStore(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), CookieOptions{})
	if token, ok := store.Load(); ok {
		t.Fatalf("loaded %q from a bare request", token)
	}
}

func TestCookieStoreClear(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "tok-123"})

	store := NewCookieStore(rec, req, CookieOptions{})
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("set %d cookies, want deletion cookie", len(cookies))
	}
	ck := cookies[0]
	if ck.Value != "" || ck.MaxAge != -1 {
		t.Errorf("deletion cookie value=%q MaxAge=%d", ck.Value, ck.MaxAge)
	}
}

func TestCookieOptionsDefaults(t *testing.T) {
	got := CookieOptions{}.withDefaults()
	if got.Name != "access_token" {
		t.Errorf("default name %q", got.Name)
	}
	if got.TTL != 7*24*time.Hour {
		t.Errorf("default TTL %v", got.TTL)
	}
}

func TestMemStoreInjectedFailures(t *testing.T) {
	store := NewMemStore()
	store.SaveErr = errTest
	if err := store.Save("tok"); err == nil {
		t.Fatal("save should fail")
	}
	if _, ok := store.Load(); ok {
		t.Fatal("failed save must not retain the token")
	}

	store.SaveErr = nil
	if err := store.Save("tok"); err != nil {
		t.Fatalf("save: %v", err)
	}
	store.ClearErr = errTest
	if err := store.Clear(); err == nil {
		t.Fatal("clear should fail")
	}
}
