package web

import (
	"testing"

	"github.com/lianasoft/agency-crm/internal/audit"
)

func TestAdminActionsList(t *testing.T) {
	srv, _, token := testServer(t)

	// Two mutations by the token's admin.
	apiRequest(t, srv, "POST", "/api/clients", token, map[string]interface{}{
		"name": "A", "phone": "1", "type": "buyer",
	})
	apiRequest(t, srv, "POST", "/api/clients", token, map[string]interface{}{
		"name": "B", "phone": "2", "type": "seller",
	})

	w := apiRequest(t, srv, "GET", "/api/admin-actions", token, nil)
	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var entries []*audit.Entry
	decodeResponse(t, w, &entries)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.AdminUsername != "admin" {
			t.Errorf("actor = %q, want admin", e.AdminUsername)
		}
		if e.Action != "create_client" {
			t.Errorf("action = %q, want create_client", e.Action)
		}
	}
}

func TestAdminActionsFilterByAdmin(t *testing.T) {
	srv, _, token := testServer(t)

	if _, err := srv.actions.Record("Elena", "login", "", ""); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := srv.actions.Record("admin", "login", "", ""); err != nil {
		t.Fatalf("record: %v", err)
	}

	w := apiRequest(t, srv, "GET", "/api/admin-actions?admin=Elena", token, nil)
	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var entries []*audit.Entry
	decodeResponse(t, w, &entries)
	if len(entries) != 1 || entries[0].AdminUsername != "Elena" {
		t.Fatalf("entries = %v, want only Elena's", entries)
	}
}

func TestAdminActionAdmins(t *testing.T) {
	srv, _, token := testServer(t)

	for _, actor := range []string{"Elena", "admin", "Elena"} {
		if _, err := srv.actions.Record(actor, "login", "", ""); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	w := apiRequest(t, srv, "GET", "/api/admin-actions/admins", token, nil)
	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var admins []string
	decodeResponse(t, w, &admins)
	if len(admins) != 2 {
		t.Fatalf("admins = %v, want 2 distinct", admins)
	}
}

func TestClearDatabase(t *testing.T) {
	srv, d, token := testServer(t)
	insertTestProperty(t, d, "OBJ-1")
	apiRequest(t, srv, "POST", "/api/clients", token, map[string]interface{}{
		"name": "A", "phone": "1", "type": "buyer",
	})

	w := apiRequest(t, srv, "POST", "/api/admin/clear-database", token, nil)
	if w.Code != 200 {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	// Business data is gone.
	props := apiRequest(t, srv, "GET", "/api/properties", token, nil)
	if body := props.Body.String(); body != "[]\n" {
		t.Errorf("properties after clear = %q, want empty list", body)
	}

	// Admin accounts survive: the same token's account can still log in.
	login := apiRequest(t, srv, "POST", "/api/auth/login", "", map[string]string{
		"username": "admin", "password": "admin123",
	})
	if login.Code != 200 {
		t.Errorf("login after clear status = %d, want 200", login.Code)
	}

	// The clear itself is the first entry of the fresh log.
	entries, err := srv.actions.List()
	if err != nil {
		t.Fatalf("list actions: %v", err)
	}
	found := false
	for _, e := range entries {
		if e.Action == "clear_database" {
			found = true
		}
	}
	if !found {
		t.Error("expected clear_database audit entry to survive the wipe")
	}
}

func TestClearDatabaseRequiresAuth(t *testing.T) {
	srv, _, _ := testServer(t)

	w := apiRequest(t, srv, "POST", "/api/admin/clear-database", "", nil)
	if w.Code != 401 {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
