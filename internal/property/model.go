// Package property provides the listing domain model and data access.
package property

import (
	"fmt"
	"strings"
	"time"

	"github.com/lianasoft/agency-crm/internal/store"
)

// Type represents the kind of property.
type Type string

const (
	Apartment Type = "apartment"
	House     Type = "house"
)

// IsValid checks if a property type is recognized.
func (t Type) IsValid() bool {
	return t == Apartment || t == House
}

// Status represents the sales state of a property.
type Status string

const (
	Available Status = "available"
	Reserved  Status = "reserved"
	Sold      Status = "sold"
)

// IsValid checks if a status is recognized.
func (s Status) IsValid() bool {
	return s == Available || s == Reserved || s == Sold
}

// Property represents a listed object. Identifiers are agency-assigned
// strings (typically a 5-digit code).
type Property struct {
	ID           string    `json:"id"`
	Address      string    `json:"address"`
	Type         Type      `json:"type"`
	Status       Status    `json:"status"`
	Price        int64     `json:"price"`
	Area         float64   `json:"area"`
	Rooms        *int      `json:"rooms,omitempty"`
	Floor        *int      `json:"floor,omitempty"`
	TotalFloors  *int      `json:"totalFloors,omitempty"`
	Owner        string    `json:"owner"`
	OwnerPhone   string    `json:"ownerPhone"`
	OwnerEmail   string    `json:"ownerEmail"`
	District     string    `json:"district"`
	Description  string    `json:"description"`
	Inventory    string    `json:"inventory"`
	Notes        string    `json:"notes"`
	HasFurniture bool      `json:"hasFurniture"`
	Photos       []string  `json:"photos"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Patch enumerates the updatable fields of a property. Nil fields are
// left untouched; the identifier and creation timestamp are immutable.
type Patch struct {
	Address      *string   `json:"address"`
	Type         *Type     `json:"type"`
	Status       *Status   `json:"status"`
	Price        *int64    `json:"price"`
	Area         *float64  `json:"area"`
	Rooms        *int      `json:"rooms"`
	Floor        *int      `json:"floor"`
	TotalFloors  *int      `json:"totalFloors"`
	Owner        *string   `json:"owner"`
	OwnerPhone   *string   `json:"ownerPhone"`
	OwnerEmail   *string   `json:"ownerEmail"`
	District     *string   `json:"district"`
	Description  *string   `json:"description"`
	Inventory    *string   `json:"inventory"`
	Notes        *string   `json:"notes"`
	HasFurniture *bool     `json:"hasFurniture"`
	Photos       *[]string `json:"photos"`
	Tags         *[]string `json:"tags"`
}

// apply merges the patch onto a copy of p and returns it.
func (patch Patch) apply(p Property) Property {
	if patch.Address != nil {
		p.Address = *patch.Address
	}
	if patch.Type != nil {
		p.Type = *patch.Type
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Area != nil {
		p.Area = *patch.Area
	}
	if patch.Rooms != nil {
		p.Rooms = patch.Rooms
	}
	if patch.Floor != nil {
		p.Floor = patch.Floor
	}
	if patch.TotalFloors != nil {
		p.TotalFloors = patch.TotalFloors
	}
	if patch.Owner != nil {
		p.Owner = *patch.Owner
	}
	if patch.OwnerPhone != nil {
		p.OwnerPhone = *patch.OwnerPhone
	}
	if patch.OwnerEmail != nil {
		p.OwnerEmail = *patch.OwnerEmail
	}
	if patch.District != nil {
		p.District = *patch.District
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Inventory != nil {
		p.Inventory = *patch.Inventory
	}
	if patch.Notes != nil {
		p.Notes = *patch.Notes
	}
	if patch.HasFurniture != nil {
		p.HasFurniture = *patch.HasFurniture
	}
	if patch.Photos != nil {
		p.Photos = *patch.Photos
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
	}
	return p
}

// Validate checks required fields and the owner invariant: a property
// that is reserved or sold must carry the owner's name and phone.
// Called before any write, including on the merged result of a patch.
func (p *Property) Validate() error {
	if strings.TrimSpace(p.Address) == "" {
		return fmt.Errorf("%w: address is required", store.ErrValidation)
	}
	if !p.Type.IsValid() {
		return fmt.Errorf("%w: type must be apartment or house", store.ErrValidation)
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("%w: status must be available, reserved or sold", store.ErrValidation)
	}
	if p.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", store.ErrValidation)
	}
	if p.Area <= 0 {
		return fmt.Errorf("%w: area must be positive", store.ErrValidation)
	}
	if p.Status != Available {
		if strings.TrimSpace(p.Owner) == "" || strings.TrimSpace(p.OwnerPhone) == "" {
			return fmt.Errorf("%w: owner name and phone are required when status is %s", store.ErrValidation, p.Status)
		}
	}
	return nil
}
