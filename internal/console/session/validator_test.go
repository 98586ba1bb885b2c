package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"partydesk.org/internal/console/apiclient"
)

// fakeAPI serves /users/me with a fixed status and counts hits.
func fakeAPI(t *testing.T, status int, body string) (*apiclient.Client, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/me" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return apiclient.New(srv.URL), &hits
}

func TestValidateAcceptsGoodToken(t *testing.T) {
	client, hits := fakeAPI(t, http.StatusOK, `{"id":1,"name":"Alice","email":"a@x.org","role":"admin"}`)

	store := NewMemStore()
	_ = store.Save("tok")
	ctrl := NewController(store)

	user, err := Validate(context.Background(), ctrl, client)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if user.Email != "a@x.org" {
		t.Errorf("user = %+v", user)
	}
	if ctrl.State() != StateAuthenticated {
		t.Errorf("state = %v", ctrl.State())
	}
	if hits.Load() != 1 {
		t.Errorf("whoami called %d times, want exactly 1", hits.Load())
	}
}

func TestValidateRejectedTokenSignsOut(t *testing.T) {
	client, _ := fakeAPI(t, http.StatusUnauthorized, `{"error":"invalid token"}`)

	store := NewMemStore()
	_ = store.Save("stale-tok")
	ctrl := NewController(store)

	_, err := Validate(context.Background(), ctrl, client)
	if !errors.Is(err, apiclient.ErrAuth) {
		t.Fatalf("validate error = %v, want ErrAuth", err)
	}
	if ctrl.State() != StateUnauthenticated {
		t.Errorf("state = %v", ctrl.State())
	}
	if _, ok := store.Load(); ok {
		t.Error("stale token survived a rejected validation")
	}
}

func TestValidateNetworkFailureSignsOut(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on
	client := apiclient.New(srv.URL)

	store := NewMemStore()
	_ = store.Save("tok")
	ctrl := NewController(store)

	_, err := Validate(context.Background(), ctrl, client)
	if !errors.Is(err, apiclient.ErrNetwork) {
		t.Fatalf("validate error = %v, want ErrNetwork", err)
	}
	if ctrl.State() != StateUnauthenticated {
		t.Errorf("state after network-failure validation = %v, want unauthenticated", ctrl.State())
	}
	if _, ok := store.Load(); ok {
		t.Error("token survived a failed validation")
	}
}

func TestValidateServerErrorSignsOut(t *testing.T) {
	client, _ := fakeAPI(t, http.StatusInternalServerError, `{"error":"boom"}`)

	store := NewMemStore()
	_ = store.Save("tok")
	ctrl := NewController(store)

	_, err := Validate(context.Background(), ctrl, client)
	if !errors.Is(err, apiclient.ErrServer) {
		t.Fatalf("validate error = %v, want ErrServer", err)
	}
	if ctrl.State() != StateUnauthenticated {
		t.Errorf("state after server-error validation = %v, want unauthenticated", ctrl.State())
	}
	if _, ok := store.Load(); ok {
		t.Error("token survived a failed validation")
	}
}

func TestValidateWithoutToken(t *testing.T) {
	client, hits := fakeAPI(t, http.StatusOK, `{}`)

	ctrl := NewController(NewMemStore())
	_, err := Validate(context.Background(), ctrl, client)
	if !errors.Is(err, apiclient.ErrAuth) {
		t.Fatalf("validate error = %v, want ErrAuth", err)
	}
	if ctrl.State() != StateUnauthenticated {
		t.Errorf("state = %v", ctrl.State())
	}
	if hits.Load() != 0 {
		t.Errorf("missing token still hit the API %d times", hits.Load())
	}
}
