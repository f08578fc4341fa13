// Package admin provides the aggregate and configuration models behind the
// admin and sales-ops dashboards.
package admin

import (
	"sort"
	"time"
)

// Dashboard is the admin overview returned by GET /admin/dashboard.
type Dashboard struct {
	TotalUsers           int            `json:"total_users"`
	TotalProperties      int            `json:"total_properties"`
	ActiveListings       int            `json:"active_listings"`
	OpenPropertyRequests int            `json:"open_property_requests"`
	UpcomingViewings     int            `json:"upcoming_viewings"`
	UsersByRole          map[string]int `json:"users_by_role,omitempty"`
	ViewingsByStatus     map[string]int `json:"viewings_by_status,omitempty"`
	RecentSignups        int            `json:"recent_signups"`
	GeneratedAt          time.Time      `json:"generated_at"`
}

// SalesOpsDashboard is the staff overview returned by GET /sales-ops/dashboard.
type SalesOpsDashboard struct {
	AssignedRequests  int            `json:"assigned_requests"`
	PendingRequests   int            `json:"pending_requests"`
	AwaitingSlots     int            `json:"awaiting_slots"`
	AwaitingConfirm   int            `json:"awaiting_confirmation"`
	ViewingsToday     int            `json:"viewings_today"`
	ViewingsByStatus  map[string]int `json:"viewings_by_status,omitempty"`
	ManagedProperties int            `json:"managed_properties"`
}

// FieldType is the input type of a configurable form field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldSelect   FieldType = "select"
	FieldTextarea FieldType = "textarea"
)

// FormField is an admin-configured field on the property request form.
type FormField struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
	Order    int       `json:"order"`
	Active   bool      `json:"active"`
}

// Settings is the site configuration. The public GET /settings returns the
// subset without contact secrets; admins read and write the full record.
type Settings struct {
	SiteName         string `json:"site_name"`
	ContactEmail     string `json:"contact_email,omitempty"`
	ContactPhone     string `json:"contact_phone,omitempty"`
	WhatsAppNumber   string `json:"whatsapp_number,omitempty"`
	Currency         string `json:"currency,omitempty"`
	MaintenanceMode  bool   `json:"maintenance_mode"`
	AllowSignups     bool   `json:"allow_signups"`
	MaxProposedSlots int    `json:"max_proposed_slots,omitempty"`
}

// ActiveFields returns the active fields in display order.
func ActiveFields(fields []*FormField) []*FormField {
	out := make([]*FormField, 0, len(fields))
	for _, f := range fields {
		if f != nil && f.Active {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
