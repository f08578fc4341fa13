package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bigdealegypt/bigdeal/internal/account"
	"github.com/bigdealegypt/bigdeal/internal/admin"
	"github.com/bigdealegypt/bigdeal/internal/client"
	"github.com/bigdealegypt/bigdeal/internal/property"
	"github.com/bigdealegypt/bigdeal/internal/viewing"
)

type listData struct {
	Page *property.Page
}

type salesOpsData struct {
	Dashboard *admin.SalesOpsDashboard
	Viewings  []*viewing.ScheduledViewing
}

type adminData struct {
	Dashboard *admin.Dashboard
}

type detailData struct {
	Property *property.Property
	Viewing  *viewing.ScheduledViewing
	Action   viewing.Action
	Degraded bool
}

type viewingData struct {
	Viewing *viewing.ScheduledViewing
	Action  viewing.Action
	Staff   []viewing.StaffAction
}

type viewingListData struct {
	Viewings []*viewing.ScheduledViewing
}

type selectData struct {
	Viewing *viewing.ScheduledViewing
	Form    *viewing.SelectSlotForm
	Errors  viewing.FieldErrors
}

// handleDashboard renders the landing page for the user's role.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	u := s.sessions.User()
	switch {
	case u != nil && u.Role == account.RoleAdmin:
		d, err := s.api.AdminDashboard(r.Context())
		if err != nil {
			s.renderError(w, r, "loading admin dashboard", err)
			return
		}
		s.render(w, http.StatusOK, "admin_dashboard.html", s.newPage("Admin", adminData{Dashboard: d}))

	case u != nil && u.Role == account.RoleSalesOps:
		d, err := s.api.SalesOpsDashboard(r.Context())
		if err != nil {
			s.renderError(w, r, "loading sales-ops dashboard", err)
			return
		}
		vs, err := s.api.SalesOpsViewings(r.Context(), viewing.ListOptions{Status: viewing.StatusRequested})
		if err != nil {
			s.renderError(w, r, "loading viewings", err)
			return
		}
		s.render(w, http.StatusOK, "salesops_dashboard.html", s.newPage("Sales Ops", salesOpsData{Dashboard: d, Viewings: vs}))

	default:
		pg := parsePage(r)
		list, err := s.api.ListProperties(r.Context(), client.PropertyListOptions{
			Page:        pg,
			City:        r.URL.Query().Get("city"),
			ListingType: r.URL.Query().Get("listing_type"),
		})
		if err != nil {
			s.renderError(w, r, "loading properties", err)
			return
		}
		s.render(w, http.StatusOK, "list.html", s.newPage("Properties", listData{Page: list}))
	}
}

// handlePropertyDetail renders a property with its single primary viewing action.
func (s *Server) handlePropertyDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	prop, err := s.api.GetProperty(r.Context(), id)
	if err != nil {
		s.renderError(w, r, "loading property", err)
		return
	}

	tr := viewing.NewTracker(s.api, id, s.history)
	tr.Load(r.Context())

	s.render(w, http.StatusOK, "detail.html", s.newPage(prop.Title, detailData{
		Property: prop,
		Viewing:  tr.Viewing(),
		Action:   tr.Action(),
		Degraded: tr.Degraded(),
	}))
}

// handleRequestViewing submits a viewing request for the property.
func (s *Server) handleRequestViewing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	tr := viewing.NewTracker(s.api, id, s.history)
	tr.Load(r.Context())

	if _, err := tr.Request(r.Context(), strings.TrimSpace(r.FormValue("notes"))); err != nil {
		s.renderError(w, r, "requesting viewing", err)
		return
	}

	http.Redirect(w, r, "/properties/"+id, http.StatusSeeOther)
}

// handleViewingList renders the customer's viewings.
func (s *Server) handleViewingList(w http.ResponseWriter, r *http.Request) {
	vs, err := s.api.ListViewings(r.Context(), viewing.ListOptions{
		Status: viewing.Status(r.URL.Query().Get("status")),
		Page:   parsePage(r),
	})
	if err != nil {
		s.renderError(w, r, "loading viewings", err)
		return
	}
	s.render(w, http.StatusOK, "viewings.html", s.newPage("My Viewings", viewingListData{Viewings: vs}))
}

// handleViewingDetail renders one viewing with the actions open to the user.
func (s *Server) handleViewingDetail(w http.ResponseWriter, r *http.Request) {
	v, err := s.api.GetViewing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.renderError(w, r, "loading viewing", err)
		return
	}

	data := viewingData{Viewing: v, Action: viewing.ActionFor(v)}
	if u := s.sessions.User(); u != nil && u.IsStaff() {
		data.Staff = viewing.StaffActions(v.CurrentStatus())
	}
	s.render(w, http.StatusOK, "viewing.html", s.newPage("Viewing", data))
}

// handleSelectSlotPage renders the select-slot form for a viewing with options sent.
func (s *Server) handleSelectSlotPage(w http.ResponseWriter, r *http.Request) {
	v, err := s.api.GetViewing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.renderError(w, r, "loading viewing", err)
		return
	}
	if v.CurrentStatus() != viewing.StatusOptionsSent {
		http.Redirect(w, r, "/viewings/"+v.ID, http.StatusSeeOther)
		return
	}

	s.render(w, http.StatusOK, "select_slot.html", s.newPage("Select Viewing Slot", selectData{
		Viewing: v,
		Form:    viewing.NewSelectSlotForm(v),
	}))
}

// handleSelectSlotSubmit sends the chosen slot. Invalid choices are shown
// inline and never reach the API.
func (s *Server) handleSelectSlotSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	v, err := s.api.GetViewing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.renderError(w, r, "loading viewing", err)
		return
	}

	form := viewing.NewSelectSlotForm(v)
	errs := viewing.FieldErrors{}
	if d := r.FormValue("date"); d != "" {
		if err := form.ChooseDate(d); err != nil {
			errs["date"] = "Please choose one of the proposed dates"
		}
	}
	if t := r.FormValue("time"); t != "" {
		if err := form.ChooseTime(t); err != nil {
			errs["time"] = "Please choose one of the proposed times"
		}
	}
	form.Notes = r.FormValue("notes")

	if len(errs) == 0 {
		tr := viewing.NewTracker(s.api, v.PropertyID, s.history)
		tr.Set(v)
		_, err := tr.SelectSlot(r.Context(), form)
		if err == nil {
			http.Redirect(w, r, "/properties/"+v.PropertyID, http.StatusSeeOther)
			return
		}
		fe, ok := err.(viewing.FieldErrors)
		if !ok {
			s.renderError(w, r, "selecting slot", err)
			return
		}
		errs = fe
	}

	s.render(w, http.StatusUnprocessableEntity, "select_slot.html", s.newPage("Select Viewing Slot", selectData{
		Viewing: v,
		Form:    form,
		Errors:  errs,
	}))
}

// handleCancelViewing withdraws the customer's viewing.
func (s *Server) handleCancelViewing(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	v, err := s.api.GetViewing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.renderError(w, r, "loading viewing", err)
		return
	}

	tr := viewing.NewTracker(s.api, v.PropertyID, s.history)
	tr.Set(v)
	if _, err := tr.Cancel(r.Context(), strings.TrimSpace(r.FormValue("reason"))); err != nil {
		s.renderError(w, r, "cancelling viewing", err)
		return
	}

	http.Redirect(w, r, "/viewings/"+v.ID, http.StatusSeeOther)
}

// parsePage reads the page query parameter, defaulting to 1.
func parsePage(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
