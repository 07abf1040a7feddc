package showing

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lianasoft/agency-crm/internal/store"
)

// Repository provides CRUD operations for showings.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a showing repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, property_id, date, time, notes, created_at`

// Create validates and inserts a new showing. The referenced property
// must exist (enforced by the foreign key); an empty ID is minted from
// a sequence.
func (r *Repository) Create(s *Showing) (*Showing, error) {
	if s.ID == "" {
		id, err := r.nextID()
		if err != nil {
			return nil, err
		}
		s.ID = id
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	if _, err := r.db.Exec(
		"INSERT INTO showings (id, property_id, date, time, notes) VALUES (?, ?, ?, ?, ?)",
		s.ID, s.PropertyID, s.Date, s.Time, s.Notes,
	); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("showing %s %w", s.ID, store.ErrConflict)
		}
		if strings.Contains(err.Error(), "FOREIGN KEY") {
			return nil, fmt.Errorf("property %s %w", s.PropertyID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("inserting showing: %w", err)
	}

	return r.Get(s.ID)
}

// Get returns a showing by ID.
func (r *Repository) Get(id string) (*Showing, error) {
	query := fmt.Sprintf("SELECT %s FROM showings WHERE id = ?", selectColumns)
	var s Showing
	err := r.db.QueryRow(query, id).Scan(&s.ID, &s.PropertyID, &s.Date, &s.Time, &s.Notes, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("showing %s %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying showing %s: %w", id, err)
	}
	return &s, nil
}

// List returns all showings ordered by schedule.
func (r *Repository) List() ([]*Showing, error) {
	return r.query(fmt.Sprintf("SELECT %s FROM showings ORDER BY date, time, id", selectColumns))
}

// ListByProperty returns all showings for one property, ordered by
// schedule.
func (r *Repository) ListByProperty(propertyID string) ([]*Showing, error) {
	return r.query(
		fmt.Sprintf("SELECT %s FROM showings WHERE property_id = ? ORDER BY date, time, id", selectColumns),
		propertyID,
	)
}

// Update applies a patch to an existing showing.
func (r *Repository) Update(id string, patch Patch) (*Showing, error) {
	current, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	merged := patch.apply(*current)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	if _, err := r.db.Exec(
		"UPDATE showings SET date = ?, time = ?, notes = ? WHERE id = ?",
		merged.Date, merged.Time, merged.Notes, id,
	); err != nil {
		return nil, fmt.Errorf("updating showing: %w", err)
	}

	return r.Get(id)
}

// Delete removes a showing by ID.
func (r *Repository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM showings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting showing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("showing %s %w", id, store.ErrNotFound)
	}

	return nil
}

// nextID mints an SH-NNN identifier from the current row count.
func (r *Repository) nextID() (string, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM showings").Scan(&count); err != nil {
		return "", fmt.Errorf("counting showings: %w", err)
	}
	return fmt.Sprintf("SH-%03d", count+1), nil
}

func (r *Repository) query(q string, args ...interface{}) ([]*Showing, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing showings: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var showings []*Showing
	for rows.Next() {
		var s Showing
		if err := rows.Scan(&s.ID, &s.PropertyID, &s.Date, &s.Time, &s.Notes, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning showing: %w", err)
		}
		showings = append(showings, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating showings: %w", err)
	}

	return showings, nil
}
