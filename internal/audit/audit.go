// Package audit records administrator actions in an append-only log.
// Entries are never updated; the only destructive operation is the
// bulk clear used when wiping the database.
package audit

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded administrator action.
type Entry struct {
	ID            string    `json:"id"`
	AdminUsername string    `json:"adminUsername"`
	Action        string    `json:"action"`
	Details       string    `json:"details,omitempty"`
	IPAddress     string    `json:"ipAddress,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Log provides access to the admin action log.
type Log struct {
	db *sql.DB
}

// NewLog creates an audit log backed by the given database.
func NewLog(db *sql.DB) *Log {
	return &Log{db: db}
}

// Record appends an entry for an action performed by actor. The entry
// ID combines the timestamp with a random suffix so that concurrent
// writes never collide.
func (l *Log) Record(actor, action, details, ip string) (*Entry, error) {
	if actor == "" || action == "" {
		return nil, fmt.Errorf("audit entry requires an actor and an action")
	}

	now := time.Now().UTC()
	e := Entry{
		ID:            fmt.Sprintf("ACT-%d-%s", now.UnixMilli(), uuid.NewString()[:8]),
		AdminUsername: actor,
		Action:        action,
		Details:       details,
		IPAddress:     ip,
		Timestamp:     now,
	}

	if _, err := l.db.Exec(
		"INSERT INTO admin_actions (id, admin_username, action, details, ip_address, timestamp) VALUES (?, ?, ?, ?, ?, ?)",
		e.ID, e.AdminUsername, e.Action, e.Details, e.IPAddress, e.Timestamp,
	); err != nil {
		return nil, fmt.Errorf("recording admin action: %w", err)
	}

	return &e, nil
}

// List returns all entries, newest first.
func (l *Log) List() ([]*Entry, error) {
	return l.query("SELECT id, admin_username, action, details, ip_address, timestamp FROM admin_actions ORDER BY timestamp DESC, id DESC")
}

// ListByActor returns all entries recorded for one administrator,
// newest first.
func (l *Log) ListByActor(actor string) ([]*Entry, error) {
	return l.query(
		"SELECT id, admin_username, action, details, ip_address, timestamp FROM admin_actions WHERE admin_username = ? ORDER BY timestamp DESC, id DESC",
		actor,
	)
}

// Actors returns the distinct administrator usernames present in the
// log, sorted.
func (l *Log) Actors() ([]string, error) {
	rows, err := l.db.Query("SELECT DISTINCT admin_username FROM admin_actions ORDER BY admin_username")
	if err != nil {
		return nil, fmt.Errorf("listing audit actors: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("warning: closing rows: %v\n", cerr)
		}
	}()

	var actors []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scanning audit actor: %w", err)
		}
		actors = append(actors, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit actors: %w", err)
	}

	return actors, nil
}

// Clear removes every entry and returns the number removed.
func (l *Log) Clear() (int64, error) {
	result, err := l.db.Exec("DELETE FROM admin_actions")
	if err != nil {
		return 0, fmt.Errorf("clearing admin actions: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return rows, nil
}

func (l *Log) query(q string, args ...interface{}) ([]*Entry, error) {
	rows, err := l.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing admin actions: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("warning: closing rows: %v\n", cerr)
		}
	}()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.AdminUsername, &e.Action, &e.Details, &e.IPAddress, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning admin action: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating admin actions: %w", err)
	}

	return entries, nil
}
