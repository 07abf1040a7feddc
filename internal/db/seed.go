package db

import (
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// seedUsers are the accounts created on first startup so a fresh
// database is immediately usable. Passwords should be changed through
// the profile endpoint once the office is set up.
var seedUsers = []struct {
	username string
	password string
	name     string
	email    string
}{
	{"admin", "admin123", "Administrator", "admin@liana.com"},
	{"Elena", "12345", "Elena", "elena@liana.com"},
	{"Anna", "09876", "Anna", "anna@liana.com"},
}

// seedAdmins inserts the seed accounts if the admins table is empty.
// An existing non-empty table is left untouched.
func seedAdmins(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM admins").Scan(&count); err != nil {
		return fmt.Errorf("counting admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, u := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing seed password for %s: %w", u.username, err)
		}
		if _, err := db.Exec(
			"INSERT INTO admins (username, password_hash, name, email) VALUES (?, ?, ?, ?)",
			u.username, string(hash), u.name, u.email,
		); err != nil {
			return fmt.Errorf("inserting seed admin %s: %w", u.username, err)
		}
	}

	return nil
}
