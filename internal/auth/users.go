package auth

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lianasoft/agency-crm/internal/store"
)

// User represents an admin account. The password hash never leaves
// this package.
type User struct {
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserPatch enumerates the updatable fields of an admin account.
// Nil fields are left untouched.
type UserPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// UserStore manages admin accounts in SQLite.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a user store.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Authenticate verifies a username/password pair and returns the account.
// The error does not distinguish a missing user from a wrong password.
func (s *UserStore) Authenticate(username, password string) (*User, error) {
	var u User
	var hash string
	err := s.db.QueryRow(
		"SELECT username, password_hash, name, email, created_at FROM admins WHERE username = ?",
		username,
	).Scan(&u.Username, &hash, &u.Name, &u.Email, &u.CreatedAt)
	if err == sql.ErrNoRows {
		// Burn a comparison anyway so the miss is not observably faster.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B0xtdXuyxTX90mTTTnrN55mXtGS6"), []byte(password))
		return nil, fmt.Errorf("invalid username or password")
	}
	if err != nil {
		return nil, fmt.Errorf("querying admin: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, fmt.Errorf("invalid username or password")
	}

	return &u, nil
}

// Add creates a new admin account with a bcrypt-hashed password.
func (s *UserStore) Add(username, password, name, email string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", store.ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", store.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	if _, err := s.db.Exec(
		"INSERT INTO admins (username, password_hash, name, email) VALUES (?, ?, ?, ?)",
		username, string(hash), name, email,
	); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("admin %s %w", username, store.ErrConflict)
		}
		return nil, fmt.Errorf("adding admin: %w", err)
	}

	return s.Get(username)
}

// Get returns an admin account by username.
func (s *UserStore) Get(username string) (*User, error) {
	var u User
	err := s.db.QueryRow(
		"SELECT username, name, email, created_at FROM admins WHERE username = ?", username,
	).Scan(&u.Username, &u.Name, &u.Email, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("admin %s %w", username, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying admin: %w", err)
	}
	return &u, nil
}

// List returns all admin accounts ordered by username.
func (s *UserStore) List() ([]*User, error) {
	rows, err := s.db.Query(
		"SELECT username, name, email, created_at FROM admins ORDER BY username",
	)
	if err != nil {
		return nil, fmt.Errorf("listing admins: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("warning: closing rows: %v\n", cerr)
		}
	}()

	var users []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Username, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning admin: %w", err)
		}
		users = append(users, &u)
	}

	return users, rows.Err()
}

// Update applies a patch to an admin account. A supplied password is
// re-hashed; nil fields are left unchanged.
func (s *UserStore) Update(username string, patch UserPatch) (*User, error) {
	var sets []string
	var args []interface{}

	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *patch.Email)
	}
	if patch.Password != nil {
		if *patch.Password == "" {
			return nil, fmt.Errorf("%w: password must not be empty", store.ErrValidation)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		sets = append(sets, "password_hash = ?")
		args = append(args, string(hash))
	}

	if len(sets) == 0 {
		return s.Get(username)
	}

	args = append(args, username)
	result, err := s.db.Exec(
		"UPDATE admins SET "+strings.Join(sets, ", ")+" WHERE username = ?", args...,
	)
	if err != nil {
		return nil, fmt.Errorf("updating admin: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("admin %s %w", username, store.ErrNotFound)
	}

	return s.Get(username)
}

// Delete removes an admin account.
func (s *UserStore) Delete(username string) error {
	result, err := s.db.Exec("DELETE FROM admins WHERE username = ?", username)
	if err != nil {
		return fmt.Errorf("deleting admin: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("admin %s %w", username, store.ErrNotFound)
	}

	return nil
}

// Usernames returns all admin usernames. Used by passkey login to
// resolve a credential's user handle.
func (s *UserStore) Usernames() ([]string, error) {
	rows, err := s.db.Query("SELECT username FROM admins")
	if err != nil {
		return nil, fmt.Errorf("listing usernames: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("warning: closing rows: %v\n", cerr)
		}
	}()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning username: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}
