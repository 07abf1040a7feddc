package client

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lianasoft/agency-crm/internal/store"
)

// Repository provides CRUD operations for clients.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a client repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, name, phone, call_status, type, status, budget, notes, created_at`

// Create validates and inserts a new client. Unset enum fields default
// to not_called/active; an empty ID is minted from a sequence.
func (r *Repository) Create(c *Client) (*Client, error) {
	if c.CallStatus == "" {
		c.CallStatus = NotCalled
	}
	if c.Status == "" {
		c.Status = Active
	}
	if c.ID == "" {
		id, err := r.nextID()
		if err != nil {
			return nil, err
		}
		c.ID = id
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	if _, err := r.db.Exec(
		`INSERT INTO clients (id, name, phone, call_status, type, status, budget, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Phone, string(c.CallStatus), string(c.Type), string(c.Status), c.Budget, c.Notes,
	); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("client %s %w", c.ID, store.ErrConflict)
		}
		return nil, fmt.Errorf("inserting client: %w", err)
	}

	return r.Get(c.ID)
}

// Get returns a client by ID.
func (r *Repository) Get(id string) (*Client, error) {
	query := fmt.Sprintf("SELECT %s FROM clients WHERE id = ?", selectColumns)
	c, err := scanClient(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("client %s %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying client %s: %w", id, err)
	}
	return c, nil
}

// List returns all clients, newest first.
func (r *Repository) List() ([]*Client, error) {
	query := fmt.Sprintf("SELECT %s FROM clients ORDER BY created_at DESC, id DESC", selectColumns)
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var clients []*Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}
		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating clients: %w", err)
	}

	return clients, nil
}

// Update applies a patch to an existing client. The merged record is
// validated before anything is written.
func (r *Repository) Update(id string, patch Patch) (*Client, error) {
	current, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	merged := patch.apply(*current)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	if _, err := r.db.Exec(
		`UPDATE clients SET name = ?, phone = ?, call_status = ?, type = ?, status = ?,
		 budget = ?, notes = ? WHERE id = ?`,
		merged.Name, merged.Phone, string(merged.CallStatus), string(merged.Type),
		string(merged.Status), merged.Budget, merged.Notes, id,
	); err != nil {
		return nil, fmt.Errorf("updating client: %w", err)
	}

	return r.Get(id)
}

// Delete removes a client by ID.
func (r *Repository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("client %s %w", id, store.ErrNotFound)
	}

	return nil
}

// nextID mints a CLI-NNN identifier from the current row count.
func (r *Repository) nextID() (string, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM clients").Scan(&count); err != nil {
		return "", fmt.Errorf("counting clients: %w", err)
	}
	return fmt.Sprintf("CLI-%03d", count+1), nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanClient(s scanner) (*Client, error) {
	var c Client
	var callStatus, typ, status string

	err := s.Scan(&c.ID, &c.Name, &c.Phone, &callStatus, &typ, &status, &c.Budget, &c.Notes, &c.CreatedAt)
	if err != nil {
		return nil, err
	}

	c.CallStatus = CallStatus(callStatus)
	c.Type = Type(typ)
	c.Status = Status(status)
	return &c, nil
}
