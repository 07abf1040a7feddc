package audit

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lianasoft/agency-crm/internal/db"
)

func TestRecord(t *testing.T) {
	log := testLog(t)

	e, err := log.Record("admin", "login", "successful login", "192.0.2.10")
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if !strings.HasPrefix(e.ID, "ACT-") {
		t.Errorf("id = %q, want ACT- prefix", e.ID)
	}
	if e.AdminUsername != "admin" || e.Action != "login" {
		t.Errorf("got %s/%s, want admin/login", e.AdminUsername, e.Action)
	}
	if e.Timestamp.IsZero() {
		t.Error("expected server-assigned timestamp")
	}
}

func TestRecordRequiresActorAndAction(t *testing.T) {
	log := testLog(t)

	if _, err := log.Record("", "login", "", ""); err == nil {
		t.Error("expected error for empty actor")
	}
	if _, err := log.Record("admin", "", "", ""); err == nil {
		t.Error("expected error for empty action")
	}
}

func TestRecordIDsUnique(t *testing.T) {
	log := testLog(t)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		e, err := log.Record("admin", "ping", "", "")
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if seen[e.ID] {
			t.Fatalf("duplicate id %s", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestListNewestFirst(t *testing.T) {
	d := testDB(t)
	log := NewLog(d)

	// Insert directly so timestamps are far enough apart to order on.
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, action := range []string{"first", "second", "third"} {
		_, err := d.Exec(
			"INSERT INTO admin_actions (id, admin_username, action, timestamp) VALUES (?, ?, ?, ?)",
			action, "admin", action, base.Add(time.Duration(i)*time.Minute),
		)
		if err != nil {
			t.Fatalf("insert %s: %v", action, err)
		}
	}

	entries, err := log.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, want := range []string{"third", "second", "first"} {
		if entries[i].Action != want {
			t.Errorf("entry %d action = %q, want %q", i, entries[i].Action, want)
		}
	}
}

func TestListByActor(t *testing.T) {
	log := testLog(t)

	for _, rec := range []struct{ actor, action string }{
		{"admin", "login"},
		{"Elena", "create_object"},
		{"admin", "delete_client"},
	} {
		if _, err := log.Record(rec.actor, rec.action, "", ""); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	entries, err := log.ListByActor("admin")
	if err != nil {
		t.Fatalf("list by actor: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.AdminUsername != "admin" {
			t.Errorf("entry %s recorded for %q", e.ID, e.AdminUsername)
		}
	}
}

func TestActors(t *testing.T) {
	log := testLog(t)

	for _, actor := range []string{"Elena", "admin", "Elena", "Anna"} {
		if _, err := log.Record(actor, "login", "", ""); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	actors, err := log.Actors()
	if err != nil {
		t.Fatalf("actors: %v", err)
	}
	want := []string{"Anna", "Elena", "admin"}
	if len(actors) != len(want) {
		t.Fatalf("got %v, want %v", actors, want)
	}
	for i := range want {
		if actors[i] != want[i] {
			t.Errorf("actors = %v, want %v", actors, want)
			break
		}
	}
}

func TestClear(t *testing.T) {
	log := testLog(t)

	for i := 0; i < 3; i++ {
		if _, err := log.Record("admin", "ping", "", ""); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	n, err := log.Clear()
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 3 {
		t.Errorf("cleared %d entries, want 3", n)
	}

	entries, err := log.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries after clear, want 0", len(entries))
	}
}

func testLog(t *testing.T) *Log {
	t.Helper()
	return NewLog(testDB(t))
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return d
}
