package web

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/lianasoft/agency-crm/internal/auth"
	"github.com/lianasoft/agency-crm/internal/db"
	"github.com/lianasoft/agency-crm/internal/property"
)

// testServer creates a server over a fresh database and returns it with
// a valid bearer token for the seeded admin account.
func testServer(t *testing.T) (*Server, *sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if cerr := d.Close(); cerr != nil {
			t.Errorf("close db: %v", cerr)
		}
	})

	cfg := auth.Config{
		Secret:  "test-secret",
		BaseURL: "http://localhost:8080",
		DevMode: true,
	}
	srv, err := NewServer(d, cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	token, err := srv.tokens.Issue("admin")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	return srv, d, token
}

func apiRequest(t *testing.T, srv *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	r := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func insertTestProperty(t *testing.T, d *sql.DB, id string) *property.Property {
	t.Helper()
	repo := property.NewRepository(d)
	p, err := repo.Create(&property.Property{
		ID:       id,
		Address:  "12 Vitosha Blvd",
		Type:     property.Apartment,
		Status:   property.Available,
		Price:    185000,
		Area:     72.5,
		District: "Lozenets",
	})
	if err != nil {
		t.Fatalf("insert test property: %v", err)
	}
	return p
}

func TestHealth(t *testing.T) {
	srv, _, _ := testServer(t)

	for _, path := range []string{"/health", "/api/health"} {
		w := apiRequest(t, srv, "GET", path, "", nil)
		if w.Code != 200 {
			t.Errorf("%s: status = %d, want 200", path, w.Code)
		}
	}
}

func TestAPIRequiresToken(t *testing.T) {
	srv, _, _ := testServer(t)

	w := apiRequest(t, srv, "GET", "/api/properties", "", nil)
	if w.Code != 401 {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	var resp map[string]string
	decodeResponse(t, w, &resp)
	if resp["error"] == "" {
		t.Error("expected JSON error body")
	}
}

func TestPagesRedirectWithoutCredential(t *testing.T) {
	srv, _, _ := testServer(t)

	w := apiRequest(t, srv, "GET", "/", "", nil)
	if w.Code != 303 {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("location = %q, want /login", loc)
	}
}

func TestLoginPagePublic(t *testing.T) {
	srv, _, _ := testServer(t)

	w := apiRequest(t, srv, "GET", "/login", "", nil)
	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
