package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"partydesk.org/internal/auth"
	"partydesk.org/internal/party"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
	token   string
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	svc, err := auth.NewService(auth.NewMemUserStore(), "test-secret")
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	api := New(svc, party.NewInMemory(party.Default()), party.Default(), ReadyProbe{}, "test")
	api.rateBurst = 1000
	api.ratePerSec = 1000

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		t:       t,
	}
}

func (c *apiClient) do(method, path string, body any) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

// signIn registers a fresh operator and stores its token on the client.
func (c *apiClient) signIn() {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/auth/register", map[string]string{
		"name": "Test Operator", "email": "op@example.com", "password": "pw-123456",
	})
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("register status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "op@example.com", "password": "pw-123456",
	})
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("login status %d", resp.StatusCode)
	}
	payload := decode[map[string]any](c.t, resp)
	token, _ := payload["access_token"].(string)
	if token == "" {
		c.t.Fatal("login returned no access_token")
	}
	c.token = token
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestAuthFlow(t *testing.T) {
	c := newTestAPI(t)
	c.signIn()

	resp := c.do(http.MethodGet, "/users/me", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("whoami status %d", resp.StatusCode)
	}
	me := decode[map[string]any](t, resp)
	if me["email"] != "op@example.com" {
		t.Errorf("whoami email = %v", me["email"])
	}
	if me["role"] != "admin" {
		t.Errorf("whoami role = %v", me["role"])
	}
	if _, leaked := me["password_hash"]; leaked {
		t.Error("whoami leaks the password hash")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	c := newTestAPI(t)
	c.signIn()

	resp := c.do(http.MethodPost, "/auth/register", map[string]string{
		"name": "Again", "email": "op@example.com", "password": "pw-123456",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
	payload := decode[map[string]any](t, resp)
	if payload["error"] != "Email already exists" {
		t.Errorf("error = %v", payload["error"])
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	c := newTestAPI(t)
	c.signIn()

	resp := c.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "op@example.com", "password": "wrong",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", resp.StatusCode)
	}
	payload := decode[map[string]any](t, resp)
	if payload["error"] != "Invalid credentials" {
		t.Errorf("error = %v", payload["error"])
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	c := newTestAPI(t)

	for _, path := range []string{"/users/me", "/v1/country", "/v1/person/1"} {
		resp := c.do(http.MethodGet, path, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s status %d, want 401", path, resp.StatusCode)
		}
	}

	c.token = "not-a-jwt"
	resp := c.do(http.MethodGet, "/users/me", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("garbage token status %d, want 401", resp.StatusCode)
	}
}

func TestEntityCRUD(t *testing.T) {
	c := newTestAPI(t)
	c.signIn()

	resp := c.do(http.MethodPost, "/v1/country", map[string]any{
		"isocode": "TH", "name_en": "Thailand",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc == "" {
		t.Error("create response has no Location header")
	}
	created := decode[party.Record](t, resp)
	id := created.ID()
	if id == 0 {
		t.Fatal("created record has no id")
	}

	resp = c.do(http.MethodGet, "/v1/country", nil)
	items := decode[[]party.Record](t, resp)
	if len(items) != 1 {
		t.Fatalf("list returned %d items", len(items))
	}

	resp = c.do(http.MethodPut, "/v1/country/"+itoa(id), map[string]any{
		"name_th": "ประเทศไทย",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status %d", resp.StatusCode)
	}
	updated := decode[party.Record](t, resp)
	if updated.String("isocode") != "TH" {
		t.Errorf("partial update dropped isocode: %v", updated)
	}
	if updated.String("name_th") != "ประเทศไทย" {
		t.Errorf("update not applied: %v", updated)
	}

	resp = c.do(http.MethodDelete, "/v1/country/"+itoa(id), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", resp.StatusCode)
	}

	resp = c.do(http.MethodGet, "/v1/country/"+itoa(id), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status %d", resp.StatusCode)
	}

	// Deleting again is a 404, not an error surface.
	resp = c.do(http.MethodDelete, "/v1/country/"+itoa(id), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status %d", resp.StatusCode)
	}
}

func TestEntityValidation(t *testing.T) {
	c := newTestAPI(t)
	c.signIn()

	t.Run("missing required field", func(t *testing.T) {
		resp := c.do(http.MethodPost, "/v1/country", map[string]any{"name_en": "Nowhere"})
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", resp.StatusCode)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		resp := c.do(http.MethodPost, "/v1/country", map[string]any{
			"isocode": "XX", "name_en": "X", "surprise": true,
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", resp.StatusCode)
		}
	})

	t.Run("unknown entity", func(t *testing.T) {
		resp := c.do(http.MethodGet, "/v1/doesnotexist", nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status %d, want 404", resp.StatusCode)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp := c.do(http.MethodDelete, "/v1/country", nil)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Fatalf("status %d, want 405", resp.StatusCode)
		}
		if resp.Header.Get("Allow") == "" {
			t.Error("405 without Allow header")
		}
	})
}

func TestDuplicateCitizenshipRejected(t *testing.T) {
	c := newTestAPI(t)
	c.signIn()

	person := decode[party.Record](t, c.do(http.MethodPost, "/v1/person", map[string]any{
		"personal_id_number": "1102003334445",
	}))
	country := decode[party.Record](t, c.do(http.MethodPost, "/v1/country", map[string]any{
		"isocode": "TH", "name_en": "Thailand",
	}))

	body := map[string]any{
		"fromdate": "2020-01-01", "person_id": person.ID(), "country_id": country.ID(),
	}
	resp := c.do(http.MethodPost, "/v1/citizenship", body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first citizenship status %d", resp.StatusCode)
	}
	resp = c.do(http.MethodPost, "/v1/citizenship", body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate citizenship status %d, want 400", resp.StatusCode)
	}
}

func TestDeleteReferencedPersonRejected(t *testing.T) {
	c := newTestAPI(t)
	c.signIn()

	person := decode[party.Record](t, c.do(http.MethodPost, "/v1/person", map[string]any{
		"personal_id_number": "1102003334445",
	}))
	country := decode[party.Record](t, c.do(http.MethodPost, "/v1/country", map[string]any{
		"isocode": "TH", "name_en": "Thailand",
	}))
	citizenship := decode[party.Record](t, c.do(http.MethodPost, "/v1/citizenship", map[string]any{
		"fromdate": "2020-01-01", "person_id": person.ID(), "country_id": country.ID(),
	}))

	resp := c.do(http.MethodDelete, "/v1/person/"+itoa(person.ID()), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("delete referenced person status %d, want 409", resp.StatusCode)
	}

	resp = c.do(http.MethodDelete, "/v1/citizenship/"+itoa(citizenship.ID()), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete citizenship status %d", resp.StatusCode)
	}
	resp = c.do(http.MethodDelete, "/v1/person/"+itoa(person.ID()), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete person after dependent removed status %d", resp.StatusCode)
	}
}

func TestHealthAndInfoArePublic(t *testing.T) {
	c := newTestAPI(t)

	for _, path := range []string{"/healthz", "/readyz", "/v1/info"} {
		resp := c.do(http.MethodGet, path, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status %d", path, resp.StatusCode)
		}
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
