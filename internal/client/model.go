// Package client provides the client (buyer/seller) domain model and
// data access.
package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/lianasoft/agency-crm/internal/store"
)

// CallStatus tracks whether the office has reached a client by phone.
type CallStatus string

const (
	NotCalled  CallStatus = "not_called"
	Reached    CallStatus = "reached"
	NotReached CallStatus = "not_reached"
)

// IsValid checks if a call status is recognized.
func (s CallStatus) IsValid() bool {
	return s == NotCalled || s == Reached || s == NotReached
}

// Type represents which side of a deal a client is on.
type Type string

const (
	Buyer  Type = "buyer"
	Seller Type = "seller"
	Both   Type = "both"
)

// IsValid checks if a client type is recognized.
func (t Type) IsValid() bool {
	return t == Buyer || t == Seller || t == Both
}

// Status represents the working state of a client relationship.
type Status string

const (
	Active    Status = "active"
	Inactive  Status = "inactive"
	Completed Status = "completed"
)

// IsValid checks if a status is recognized.
func (s Status) IsValid() bool {
	return s == Active || s == Inactive || s == Completed
}

// Client represents a person the agency works with.
type Client struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	CallStatus CallStatus `json:"callStatus"`
	Type       Type       `json:"type"`
	Status     Status     `json:"status"`
	Budget     string     `json:"budget,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Patch enumerates the updatable fields of a client. Nil fields are
// left untouched.
type Patch struct {
	Name       *string     `json:"name"`
	Phone      *string     `json:"phone"`
	CallStatus *CallStatus `json:"callStatus"`
	Type       *Type       `json:"type"`
	Status     *Status     `json:"status"`
	Budget     *string     `json:"budget"`
	Notes      *string     `json:"notes"`
}

// apply merges the patch onto a copy of c and returns it.
func (patch Patch) apply(c Client) Client {
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Phone != nil {
		c.Phone = *patch.Phone
	}
	if patch.CallStatus != nil {
		c.CallStatus = *patch.CallStatus
	}
	if patch.Type != nil {
		c.Type = *patch.Type
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if patch.Budget != nil {
		c.Budget = *patch.Budget
	}
	if patch.Notes != nil {
		c.Notes = *patch.Notes
	}
	return c
}

// Validate checks required fields. Called before any write.
func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", store.ErrValidation)
	}
	if strings.TrimSpace(c.Phone) == "" {
		return fmt.Errorf("%w: phone is required", store.ErrValidation)
	}
	if !c.CallStatus.IsValid() {
		return fmt.Errorf("%w: call status must be not_called, reached or not_reached", store.ErrValidation)
	}
	if !c.Type.IsValid() {
		return fmt.Errorf("%w: type must be buyer, seller or both", store.ErrValidation)
	}
	if !c.Status.IsValid() {
		return fmt.Errorf("%w: status must be active, inactive or completed", store.ErrValidation)
	}
	return nil
}
