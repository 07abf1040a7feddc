package property

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lianasoft/agency-crm/internal/store"
)

// Repository provides CRUD operations for properties.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a property repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, address, type, status, price, area, rooms, floor, total_floors,
	owner, owner_phone, owner_email, district, description, inventory, notes,
	has_furniture, photos, tags, created_at`

const insertSQL = `INSERT INTO properties
	(id, address, type, status, price, area, rooms, floor, total_floors,
	 owner, owner_phone, owner_email, district, description, inventory, notes,
	 has_furniture, photos, tags)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Create validates and inserts a new property. An empty ID is minted
// from the creation timestamp; a duplicate ID fails with ErrConflict
// and leaves the existing record unchanged.
func (r *Repository) Create(p *Property) (*Property, error) {
	if p.ID == "" {
		p.ID = fmt.Sprintf("OBJ-%d", time.Now().UnixMilli())
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	photos, tags, err := encodeLists(p.Photos, p.Tags)
	if err != nil {
		return nil, err
	}

	if _, err := r.db.Exec(insertSQL,
		p.ID, p.Address, string(p.Type), string(p.Status), p.Price, p.Area,
		p.Rooms, p.Floor, p.TotalFloors,
		p.Owner, p.OwnerPhone, p.OwnerEmail, p.District,
		p.Description, p.Inventory, p.Notes,
		boolToInt(p.HasFurniture), photos, tags,
	); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("property %s %w", p.ID, store.ErrConflict)
		}
		return nil, fmt.Errorf("inserting property: %w", err)
	}

	return r.Get(p.ID)
}

// Get returns a property by its ID.
func (r *Repository) Get(id string) (*Property, error) {
	query := fmt.Sprintf("SELECT %s FROM properties WHERE id = ?", selectColumns)
	p, err := scanProperty(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("property %s %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying property %s: %w", id, err)
	}
	return p, nil
}

// ListOptions controls filtering for List.
type ListOptions struct {
	Status   Status // empty = all
	Type     Type   // empty = all
	District string // empty = all
}

// List returns all properties, optionally filtered, newest first.
func (r *Repository) List(opts ListOptions) ([]*Property, error) {
	query := fmt.Sprintf("SELECT %s FROM properties", selectColumns)
	var args []interface{}
	var conditions []string

	if opts.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(opts.Status))
	}
	if opts.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, string(opts.Type))
	}
	if opts.District != "" {
		conditions = append(conditions, "district = ?")
		args = append(args, opts.District)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var properties []*Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		properties = append(properties, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating properties: %w", err)
	}

	return properties, nil
}

// Update applies a patch to an existing property. The merged record is
// validated before anything is written, so an invalid patch leaves the
// stored record untouched.
func (r *Repository) Update(id string, patch Patch) (*Property, error) {
	current, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	merged := patch.apply(*current)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	photos, tags, err := encodeLists(merged.Photos, merged.Tags)
	if err != nil {
		return nil, err
	}

	if _, err := r.db.Exec(
		`UPDATE properties SET address = ?, type = ?, status = ?, price = ?, area = ?,
		 rooms = ?, floor = ?, total_floors = ?, owner = ?, owner_phone = ?, owner_email = ?,
		 district = ?, description = ?, inventory = ?, notes = ?, has_furniture = ?,
		 photos = ?, tags = ? WHERE id = ?`,
		merged.Address, string(merged.Type), string(merged.Status), merged.Price, merged.Area,
		merged.Rooms, merged.Floor, merged.TotalFloors,
		merged.Owner, merged.OwnerPhone, merged.OwnerEmail,
		merged.District, merged.Description, merged.Inventory, merged.Notes,
		boolToInt(merged.HasFurniture), photos, tags, id,
	); err != nil {
		return nil, fmt.Errorf("updating property: %w", err)
	}

	return r.Get(id)
}

// Delete removes a property by ID. Its showings cascade.
func (r *Repository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM properties WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting property: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("property %s %w", id, store.ErrNotFound)
	}

	return nil
}

// AttachPhoto appends a photo reference to the property's ordered list.
// Only the reference path is stored, never binary content.
func (r *Repository) AttachPhoto(id, photo string) (*Property, error) {
	if strings.TrimSpace(photo) == "" {
		return nil, fmt.Errorf("%w: photo reference is required", store.ErrValidation)
	}

	p, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	photos := append(p.Photos, photo)
	return r.Update(id, Patch{Photos: &photos})
}

// DetachPhoto removes every occurrence of a photo reference.
func (r *Repository) DetachPhoto(id, photo string) (*Property, error) {
	if strings.TrimSpace(photo) == "" {
		return nil, fmt.Errorf("%w: photo reference is required", store.ErrValidation)
	}

	p, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	photos := make([]string, 0, len(p.Photos))
	for _, ref := range p.Photos {
		if ref != photo {
			photos = append(photos, ref)
		}
	}
	return r.Update(id, Patch{Photos: &photos})
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProperty(s scanner) (*Property, error) {
	var p Property
	var typ, status, photos, tags string
	var furniture int

	err := s.Scan(
		&p.ID, &p.Address, &typ, &status, &p.Price, &p.Area,
		&p.Rooms, &p.Floor, &p.TotalFloors,
		&p.Owner, &p.OwnerPhone, &p.OwnerEmail, &p.District,
		&p.Description, &p.Inventory, &p.Notes,
		&furniture, &photos, &tags, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Type = Type(typ)
	p.Status = Status(status)
	p.HasFurniture = furniture != 0

	// A corrupt list column degrades to empty rather than failing the read.
	if err := json.Unmarshal([]byte(photos), &p.Photos); err != nil {
		p.Photos = nil
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		p.Tags = nil
	}

	return &p, nil
}

func encodeLists(photos, tags []string) (string, string, error) {
	if photos == nil {
		photos = []string{}
	}
	if tags == nil {
		tags = []string{}
	}

	photoJSON, err := json.Marshal(photos)
	if err != nil {
		return "", "", fmt.Errorf("encoding photos: %w", err)
	}
	tagJSON, err := json.Marshal(tags)
	if err != nil {
		return "", "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(photoJSON), string(tagJSON), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
