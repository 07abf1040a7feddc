package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "creates new database",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "crm.db")
			},
		},
		{
			name: "creates nested directories",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "a", "b", "crm.db")
			},
		},
		{
			name: "opens existing database",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "crm.db")
				d, err := Open(path)
				if err != nil {
					t.Fatalf("setup: %v", err)
				}
				if err := d.Close(); err != nil {
					t.Fatalf("setup close: %v", err)
				}
				return path
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t)
			d, err := Open(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer func() {
				if err := d.Close(); err != nil {
					t.Errorf("close: %v", err)
				}
			}()

			if _, err := os.Stat(path); os.IsNotExist(err) {
				t.Error("database file was not created")
			}
		})
	}
}

func TestWALMode(t *testing.T) {
	d := openTestDB(t)

	var mode string
	if err := d.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want %q", mode, "wal")
	}
}

func TestForeignKeys(t *testing.T) {
	d := openTestDB(t)

	var fk int
	if err := d.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestMigrations(t *testing.T) {
	tests := []struct {
		name  string
		table string
		cols  []string
	}{
		{
			name:  "admins table exists",
			table: "admins",
			cols:  []string{"username", "password_hash", "name", "email", "created_at"},
		},
		{
			name:  "properties table exists",
			table: "properties",
			cols:  []string{"id", "address", "type", "status", "price", "area", "rooms", "floor", "total_floors", "owner", "owner_phone", "owner_email", "district", "description", "inventory", "notes", "has_furniture", "photos", "tags", "created_at"},
		},
		{
			name:  "clients table exists",
			table: "clients",
			cols:  []string{"id", "name", "phone", "call_status", "type", "status", "budget", "notes", "created_at"},
		},
		{
			name:  "showings table exists",
			table: "showings",
			cols:  []string{"id", "property_id", "date", "time", "notes", "created_at"},
		},
		{
			name:  "admin_actions table exists",
			table: "admin_actions",
			cols:  []string{"id", "admin_username", "action", "details", "ip_address", "timestamp"},
		},
		{
			name:  "passkey_credentials table exists",
			table: "passkey_credentials",
			cols:  []string{"id", "username", "name", "credential_json", "created_at"},
		},
	}

	d := openTestDB(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := tableColumns(t, d, tt.table)
			if len(cols) != len(tt.cols) {
				t.Fatalf("got %d columns, want %d: %v", len(cols), len(tt.cols), cols)
			}
			for i, want := range tt.cols {
				if cols[i] != want {
					t.Errorf("column %d = %q, want %q", i, cols[i], want)
				}
			}
		})
	}
}

func TestStatusConstraint(t *testing.T) {
	d := openTestDB(t)

	insert := `INSERT INTO properties (id, address, type, status, price, area) VALUES (?, ?, ?, ?, ?, ?)`

	tests := []struct {
		name    string
		status  string
		wantErr bool
	}{
		{"available is valid", "available", false},
		{"reserved is valid", "reserved", false},
		{"sold is valid", "sold", false},
		{"rented is invalid", "rented", true},
		{"empty is invalid", "", true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := fmt.Sprintf("1000%d", i)
			_, err := d.Exec(insert, id, "123 Test St", "apartment", tt.status, 100000, 50.0)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCascadeDelete(t *testing.T) {
	d := openTestDB(t)

	if _, err := d.Exec(
		`INSERT INTO properties (id, address, type, status, price, area) VALUES (?, ?, ?, ?, ?, ?)`,
		"10001", "123 Test St", "apartment", "available", 100000, 50.0,
	); err != nil {
		t.Fatalf("insert property: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := d.Exec(
			`INSERT INTO showings (id, property_id, date, time) VALUES (?, ?, ?, ?)`,
			fmt.Sprintf("SH-00%d", i), "10001", "2026-09-10", "14:00",
		); err != nil {
			t.Fatalf("insert showing %d: %v", i, err)
		}
	}

	var count int
	if err := d.QueryRow(`SELECT COUNT(*) FROM showings WHERE property_id = ?`, "10001").Scan(&count); err != nil {
		t.Fatalf("count showings: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 showings, got %d", count)
	}

	if _, err := d.Exec(`DELETE FROM properties WHERE id = ?`, "10001"); err != nil {
		t.Fatalf("delete property: %v", err)
	}

	if err := d.QueryRow(`SELECT COUNT(*) FROM showings WHERE property_id = ?`, "10001").Scan(&count); err != nil {
		t.Fatalf("count showings after delete: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 showings after cascade delete, got %d", count)
	}
}

func TestSeedAdmins(t *testing.T) {
	d := openTestDB(t)

	var count int
	if err := d.QueryRow("SELECT COUNT(*) FROM admins").Scan(&count); err != nil {
		t.Fatalf("count admins: %v", err)
	}
	if count != len(seedUsers) {
		t.Fatalf("expected %d seeded admins, got %d", len(seedUsers), count)
	}

	var hash string
	if err := d.QueryRow("SELECT password_hash FROM admins WHERE username = ?", "admin").Scan(&hash); err != nil {
		t.Fatalf("query admin: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("admin123")); err != nil {
		t.Errorf("seeded admin password does not verify: %v", err)
	}
	if hash == "admin123" {
		t.Error("password stored in plaintext")
	}
}

func TestSeedAdminsOnlyWhenEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crm.db")

	d, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}

	// Remove a seeded account, then reopen. Seeding must not run again.
	if _, err := d.Exec("DELETE FROM admins WHERE username = ?", "Anna"); err != nil {
		t.Fatalf("delete admin: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	d2, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer func() {
		if err := d2.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	}()

	var count int
	if err := d2.QueryRow("SELECT COUNT(*) FROM admins WHERE username = ?", "Anna").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Error("seeding ran again on a non-empty admins table")
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crm.db")

	d1, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := d1.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}

	d2, err := Open(path)
	if err != nil {
		t.Fatalf("second open (idempotency): %v", err)
	}
	if err := d2.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestDefaultPath(t *testing.T) {
	p, err := DefaultPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Base(p) != "crm.db" {
		t.Errorf("expected filename crm.db, got %s", filepath.Base(p))
	}

	dir := filepath.Base(filepath.Dir(p))
	if dir != ".agency-crm" {
		t.Errorf("expected directory .agency-crm, got %s", dir)
	}
}

// openTestDB creates a temporary database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crm.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close test db: %v", err)
		}
	})
	return d
}

// tableColumns returns column names for a table using PRAGMA table_info.
func tableColumns(t *testing.T, d *sql.DB, table string) []string {
	t.Helper()
	rows, err := d.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		t.Fatalf("pragma table_info(%s): %v", table, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			t.Errorf("close rows: %v", err)
		}
	}()

	var cols []string
	for rows.Next() {
		var cid int
		var name, typ string
		var notnull int
		var dflt *string
		var pk int
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			t.Fatalf("scan: %v", err)
		}
		cols = append(cols, name)
	}
	return cols
}
