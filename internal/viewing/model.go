// Package viewing provides the scheduled-viewing model, its status workflow,
// and the slot forms exchanged between customers and sales-ops staff.
package viewing

import "time"

// Status represents where a scheduled viewing is in the scheduling negotiation.
type Status string

const (
	// StatusNone means no viewing record exists yet for the property and user.
	// The backend never reports it.
	StatusNone         Status = "none"
	StatusRequested    Status = "requested"
	StatusOptionsSent  Status = "options_sent"
	StatusSlotSelected Status = "slot_selected"
	StatusConfirmed    Status = "confirmed"
	StatusCompleted    Status = "completed"
	StatusCancelled    Status = "cancelled"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{
	StatusNone,
	StatusRequested,
	StatusOptionsSent,
	StatusSlotSelected,
	StatusConfirmed,
	StatusCompleted,
	StatusCancelled,
}

// ParseStatus maps a backend value to a Status. Empty or unknown values become StatusNone.
func ParseStatus(s string) Status {
	st := Status(s)
	if st.IsValid() {
		return st
	}
	return StatusNone
}

// IsValid checks if a status is recognized.
func (s Status) IsValid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition can happen on the record.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Label returns a human-readable label for the status.
func (s Status) Label() string {
	switch s {
	case StatusNone:
		return "Not Requested"
	case StatusRequested:
		return "Requested"
	case StatusOptionsSent:
		return "Options Sent"
	case StatusSlotSelected:
		return "Slot Selected"
	case StatusConfirmed:
		return "Confirmed"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// Slot is a candidate date and time proposed by staff.
type Slot struct {
	Date string `json:"date"` // YYYY-MM-DD
	Time string `json:"time"` // HH:MM
}

// ScheduledViewing is the client projection of a viewing record owned by the backend.
type ScheduledViewing struct {
	ID            string    `json:"id"`
	PropertyID    string    `json:"property_id"`
	UserID        string    `json:"user_id"`
	RequestID     string    `json:"request_id,omitempty"`
	Status        Status    `json:"status"`
	ProposedDates []string  `json:"proposed_dates,omitempty"`
	ProposedTimes []string  `json:"proposed_times,omitempty"`
	SelectedDate  string    `json:"selected_date,omitempty"`
	SelectedTime  string    `json:"selected_time,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	PrivateNotes  string    `json:"private_notes,omitempty"`
	ViewingDate   string    `json:"viewing_date,omitempty"`
	ViewingTime   string    `json:"viewing_time,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CurrentStatus returns the record's status, or StatusNone for a nil record.
func (v *ScheduledViewing) CurrentStatus() Status {
	if v == nil {
		return StatusNone
	}
	return ParseStatus(string(v.Status))
}

// Slots returns every proposed date and time pairing, dates outermost.
func (v *ScheduledViewing) Slots() []Slot {
	if v == nil {
		return nil
	}
	slots := make([]Slot, 0, len(v.ProposedDates)*len(v.ProposedTimes))
	for _, d := range v.ProposedDates {
		for _, t := range v.ProposedTimes {
			slots = append(slots, Slot{Date: d, Time: t})
		}
	}
	return slots
}

// Schedule returns the confirmed date and time as a single display string.
func (v *ScheduledViewing) Schedule() string {
	if v == nil || v.ViewingDate == "" {
		return ""
	}
	if v.ViewingTime == "" {
		return v.ViewingDate
	}
	return v.ViewingDate + " " + v.ViewingTime
}

// ListOptions controls filtering for viewing listings.
type ListOptions struct {
	PropertyID string
	Status     Status // empty = all
	Page       int
	PageSize   int
}

// CreateRequest is the body for requesting a viewing.
type CreateRequest struct {
	PropertyID string `json:"property_id"`
	RequestID  string `json:"request_id,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// ProposeSlotsRequest is the body staff send with candidate dates and times.
type ProposeSlotsRequest struct {
	ProposedDates []string `json:"proposed_dates"`
	ProposedTimes []string `json:"proposed_times"`
	PrivateNotes  string   `json:"private_notes,omitempty"`
}

// SelectSlotRequest is the body a customer sends with the chosen slot.
type SelectSlotRequest struct {
	SelectedDate string `json:"selected_date"`
	SelectedTime string `json:"selected_time"`
	Notes        string `json:"notes,omitempty"`
}

// ConfirmRequest finalizes the viewing. Empty fields mean the customer's selection stands.
type ConfirmRequest struct {
	ViewingDate  string `json:"viewing_date,omitempty"`
	ViewingTime  string `json:"viewing_time,omitempty"`
	PrivateNotes string `json:"private_notes,omitempty"`
}

// CancelRequest carries an optional cancellation reason.
type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}
