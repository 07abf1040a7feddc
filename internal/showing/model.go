// Package showing provides the scheduled showing domain model and data
// access. A showing's lifecycle is tied to its property: deleting the
// property cascades to its showings.
package showing

import (
	"fmt"
	"strings"
	"time"

	"github.com/lianasoft/agency-crm/internal/store"
)

// Showing represents a scheduled viewing of a property.
type Showing struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"objectId"`
	Date       string    `json:"date"` // YYYY-MM-DD
	Time       string    `json:"time"` // HH:MM
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Patch enumerates the updatable fields of a showing. The property
// reference is immutable; reschedule by date/time instead.
type Patch struct {
	Date  *string `json:"date"`
	Time  *string `json:"time"`
	Notes *string `json:"notes"`
}

// apply merges the patch onto a copy of s and returns it.
func (patch Patch) apply(s Showing) Showing {
	if patch.Date != nil {
		s.Date = *patch.Date
	}
	if patch.Time != nil {
		s.Time = *patch.Time
	}
	if patch.Notes != nil {
		s.Notes = *patch.Notes
	}
	return s
}

// Validate checks required fields and formats. Called before any write.
func (s *Showing) Validate() error {
	if strings.TrimSpace(s.PropertyID) == "" {
		return fmt.Errorf("%w: property reference is required", store.ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", s.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", store.ErrValidation)
	}
	if _, err := time.Parse("15:04", s.Time); err != nil {
		return fmt.Errorf("%w: time must be HH:MM", store.ErrValidation)
	}
	return nil
}
