package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bigdealegypt/bigdeal/internal/account"
	"github.com/bigdealegypt/bigdeal/internal/admin"
)

type usersData struct {
	Users []*account.User
	Roles []account.Role
}

type formFieldsData struct {
	Fields []*admin.FormField
}

type settingsData struct {
	Settings *admin.Settings
	Saved    bool
}

// handleAdminUsers lists user accounts with a role selector.
func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.api.AdminUsers(r.Context())
	if err != nil {
		s.renderError(w, r, "loading users", err)
		return
	}
	s.render(w, http.StatusOK, "admin_users.html", s.newPage("Users", usersData{Users: users, Roles: account.ValidRoles}))
}

// handleAdminUserRole changes a user's role.
func (s *Server) handleAdminUserRole(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	role := account.Role(r.FormValue("role"))
	if !role.IsValid() {
		http.Error(w, "Invalid role", http.StatusBadRequest)
		return
	}

	if _, err := s.api.UpdateUserRole(r.Context(), chi.URLParam(r, "id"), role); err != nil {
		s.renderError(w, r, "updating user role", err)
		return
	}
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// handleAdminFormFields lists the property request form fields.
func (s *Server) handleAdminFormFields(w http.ResponseWriter, r *http.Request) {
	fields, err := s.api.AdminFormFields(r.Context())
	if err != nil {
		s.renderError(w, r, "loading form fields", err)
		return
	}
	s.render(w, http.StatusOK, "admin_form_fields.html", s.newPage("Form Fields", formFieldsData{Fields: fields}))
}

// handleAdminSettings renders the site settings form.
func (s *Server) handleAdminSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.api.AdminSettings(r.Context())
	if err != nil {
		s.renderError(w, r, "loading settings", err)
		return
	}
	s.render(w, http.StatusOK, "admin_settings.html", s.newPage("Settings", settingsData{Settings: settings}))
}

// handleAdminSettingsSubmit saves the site settings.
func (s *Server) handleAdminSettingsSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	in := admin.Settings{
		SiteName:        strings.TrimSpace(r.FormValue("site_name")),
		ContactEmail:    strings.TrimSpace(r.FormValue("contact_email")),
		ContactPhone:    strings.TrimSpace(r.FormValue("contact_phone")),
		WhatsAppNumber:  strings.TrimSpace(r.FormValue("whatsapp_number")),
		Currency:        strings.TrimSpace(r.FormValue("currency")),
		MaintenanceMode: r.FormValue("maintenance_mode") == "on",
		AllowSignups:    r.FormValue("allow_signups") == "on",
	}
	if n, err := strconv.Atoi(r.FormValue("max_proposed_slots")); err == nil && n > 0 {
		in.MaxProposedSlots = n
	}

	if in.SiteName == "" {
		p := s.newPage("Settings", settingsData{Settings: &in})
		p.Error = "Site name is required"
		s.render(w, http.StatusBadRequest, "admin_settings.html", p)
		return
	}

	saved, err := s.api.UpdateAdminSettings(r.Context(), in)
	if err != nil {
		s.renderError(w, r, "saving settings", err)
		return
	}
	s.render(w, http.StatusOK, "admin_settings.html", s.newPage("Settings", settingsData{Settings: saved, Saved: true}))
}
