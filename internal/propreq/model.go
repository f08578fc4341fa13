// Package propreq provides the property request model: a customer's description
// of the property they are looking for, worked by sales-ops staff.
package propreq

import (
	"fmt"
	"strings"
	"time"
)

// Status represents where a property request is in the sales-ops queue.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusMatched    Status = "matched"
	StatusClosed     Status = "closed"
)

// ValidStatuses is the set of statuses the backend reports.
var ValidStatuses = []Status{StatusPending, StatusInProgress, StatusMatched, StatusClosed}

// IsValid checks if a status is recognized.
func (s Status) IsValid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Label returns a human-readable label for the status.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusMatched:
		return "Matched"
	case StatusClosed:
		return "Closed"
	default:
		return string(s)
	}
}

// Request is a customer's property request.
type Request struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	PropertyID   string    `json:"property_id,omitempty"`
	PropertyType string    `json:"property_type"`
	Location     string    `json:"location"`
	MinBudget    *int64    `json:"min_budget,omitempty"`
	MaxBudget    *int64    `json:"max_budget,omitempty"`
	Bedrooms     *int64    `json:"bedrooms,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Status       Status    `json:"status"`
	AssignedTo   string    `json:"assigned_to,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Input is the body for creating or updating a property request.
// Custom fields configured by admins travel in Fields.
type Input struct {
	PropertyID   string            `json:"property_id,omitempty"`
	PropertyType string            `json:"property_type"`
	Location     string            `json:"location"`
	MinBudget    *int64            `json:"min_budget,omitempty"`
	MaxBudget    *int64            `json:"max_budget,omitempty"`
	Bedrooms     *int64            `json:"bedrooms,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
}

// Validate checks the fields the request form requires before it is sent.
func (in Input) Validate() error {
	if strings.TrimSpace(in.PropertyType) == "" {
		return fmt.Errorf("property type is required")
	}
	if strings.TrimSpace(in.Location) == "" {
		return fmt.Errorf("location is required")
	}
	if in.MinBudget != nil && *in.MinBudget < 0 {
		return fmt.Errorf("minimum budget cannot be negative")
	}
	if in.MinBudget != nil && in.MaxBudget != nil && *in.MinBudget > *in.MaxBudget {
		return fmt.Errorf("minimum budget exceeds maximum budget")
	}
	return nil
}
