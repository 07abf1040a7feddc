package db

import (
	"database/sql"
	"fmt"
)

// Clear wipes all business data: showings, properties, clients and the
// admin action log. Admin accounts and passkeys survive. Returns the
// number of rows removed per table.
func Clear(db *sql.DB) (map[string]int64, error) {
	// Showings first so the property delete does not have to cascade.
	tables := []string{"showings", "properties", "clients", "admin_actions"}
	removed := make(map[string]int64, len(tables))

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning clear: %w", err)
	}

	for _, table := range tables {
		result, err := tx.Exec("DELETE FROM " + table)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return nil, fmt.Errorf("clearing %s: %v (rollback: %w)", table, err, rbErr)
			}
			return nil, fmt.Errorf("clearing %s: %w", table, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return nil, fmt.Errorf("counting %s: %v (rollback: %w)", table, err, rbErr)
			}
			return nil, fmt.Errorf("counting %s: %w", table, err)
		}
		removed[table] = n
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing clear: %w", err)
	}

	return removed, nil
}
