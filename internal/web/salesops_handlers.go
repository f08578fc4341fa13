package web

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bigdealegypt/bigdeal/internal/viewing"
)

type staffViewingsData struct {
	Viewings []*viewing.ScheduledViewing
	Status   viewing.Status
	Statuses []viewing.Status
}

type proposeData struct {
	Viewing *viewing.ScheduledViewing
	Form    *viewing.ProposeSlotsForm
	Errors  viewing.FieldErrors
	Sent    bool
}

// handleStaffViewings lists every customer's viewings, optionally by status.
func (s *Server) handleStaffViewings(w http.ResponseWriter, r *http.Request) {
	status := viewing.Status(r.URL.Query().Get("status"))
	if !status.IsValid() {
		status = ""
	}

	vs, err := s.api.SalesOpsViewings(r.Context(), viewing.ListOptions{Status: status, Page: parsePage(r)})
	if err != nil {
		s.renderError(w, r, "loading viewings", err)
		return
	}

	s.render(w, http.StatusOK, "salesops_viewings.html", s.newPage("Scheduled Viewings", staffViewingsData{
		Viewings: vs,
		Status:   status,
		Statuses: viewing.Statuses[1:],
	}))
}

// handleProposePage renders an empty propose-slots form.
func (s *Server) handleProposePage(w http.ResponseWriter, r *http.Request) {
	v, err := s.api.GetViewing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.renderError(w, r, "loading viewing", err)
		return
	}
	if !canPropose(v.CurrentStatus()) {
		s.renderError(w, r, "propose slots", viewing.ErrActionNotAvailable)
		return
	}

	form := viewing.NewProposeSlotsForm()
	form.MaxSlots = s.maxProposedSlots(r)
	if v.CurrentStatus() == viewing.StatusOptionsSent && len(v.ProposedDates) > 0 {
		form.Dates = append([]string(nil), v.ProposedDates...)
		form.Times = append([]string(nil), v.ProposedTimes...)
	}

	s.render(w, http.StatusOK, "propose_slots.html", s.newPage("Propose Slots", proposeData{Viewing: v, Form: form}))
}

// handleProposeSubmit handles the propose-slots form. The op field selects
// between editing the rows and submitting. Nothing is sent until validation passes.
func (s *Server) handleProposeSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	v, err := s.api.GetViewing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.renderError(w, r, "loading viewing", err)
		return
	}
	if !canPropose(v.CurrentStatus()) {
		s.renderError(w, r, "propose slots", viewing.ErrActionNotAvailable)
		return
	}

	form := &viewing.ProposeSlotsForm{
		Dates:        r.Form["date"],
		Times:        r.Form["time"],
		PrivateNotes: r.FormValue("private_notes"),
		MaxSlots:     s.maxProposedSlots(r),
	}
	if len(form.Dates) == 0 {
		form.Dates = []string{""}
	}
	if len(form.Times) == 0 {
		form.Times = []string{""}
	}

	data := proposeData{Viewing: v, Form: form}
	op := r.FormValue("op")
	switch {
	case op == "add_date":
		form.AddDate()
	case op == "add_time":
		form.AddTime()
	case strings.HasPrefix(op, "remove_date:"):
		form.RemoveDate(opIndex(op))
	case strings.HasPrefix(op, "remove_time:"):
		form.RemoveTime(opIndex(op))
	default:
		req, err := form.Request()
		if err != nil {
			data.Errors, _ = err.(viewing.FieldErrors)
			s.render(w, http.StatusUnprocessableEntity, "propose_slots.html", s.newPage("Propose Slots", data))
			return
		}

		from := v.CurrentStatus()
		updated, err := s.api.ProposeSlots(r.Context(), v.ID, req)
		if err != nil {
			s.renderError(w, r, "proposing slots", err)
			return
		}
		s.record(from, updated)
		data.Viewing = updated
		data.Sent = true
	}

	s.render(w, http.StatusOK, "propose_slots.html", s.newPage("Propose Slots", data))
}

// handleStaffAction confirms, completes or cancels a viewing.
func (s *Server) handleStaffAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	action := viewing.StaffAction(chi.URLParam(r, "action"))

	v, err := s.api.GetViewing(r.Context(), id)
	if err != nil {
		s.renderError(w, r, "loading viewing", err)
		return
	}

	from := v.CurrentStatus()
	if !staffActionAllowed(from, action) {
		s.renderError(w, r, "staff action", viewing.ErrActionNotAvailable)
		return
	}

	var updated *viewing.ScheduledViewing
	switch action {
	case viewing.StaffConfirm:
		updated, err = s.api.ConfirmViewing(r.Context(), id, viewing.ConfirmRequest{
			ViewingDate:  strings.TrimSpace(r.FormValue("viewing_date")),
			ViewingTime:  strings.TrimSpace(r.FormValue("viewing_time")),
			PrivateNotes: strings.TrimSpace(r.FormValue("private_notes")),
		})
	case viewing.StaffComplete:
		updated, err = s.api.CompleteViewing(r.Context(), id)
	case viewing.StaffCancel:
		updated, err = s.api.CancelViewing(r.Context(), id, strings.TrimSpace(r.FormValue("reason")))
	}
	if err != nil {
		s.renderError(w, r, string(action)+" viewing", err)
		return
	}

	s.record(from, updated)
	http.Redirect(w, r, "/viewings/"+id, http.StatusSeeOther)
}

func staffActionAllowed(from viewing.Status, action viewing.StaffAction) bool {
	if action == viewing.StaffPropose {
		return false
	}
	for _, a := range viewing.StaffActions(from) {
		if a == action {
			return true
		}
	}
	return false
}

func canPropose(from viewing.Status) bool {
	return slices.Contains(viewing.StaffActions(from), viewing.StaffPropose)
}

// maxProposedSlots reads the site's slot cap. Zero, meaning no cap, is
// returned when the settings cannot be loaded.
func (s *Server) maxProposedSlots(r *http.Request) int {
	settings, err := s.api.GetSettings(r.Context())
	if err != nil {
		slog.Debug("loading site settings", "error", err)
		return 0
	}
	return settings.MaxProposedSlots
}

// record logs a staff-issued transition in the local history.
func (s *Server) record(from viewing.Status, v *viewing.ScheduledViewing) {
	if s.history == nil || v == nil {
		return
	}
	if err := s.history.Record(from, v); err != nil {
		slog.Warn("recording viewing transition", "viewing_id", v.ID, "error", err)
	}
}

func opIndex(op string) int {
	_, idx, _ := strings.Cut(op, ":")
	n, err := strconv.Atoi(idx)
	if err != nil {
		return -1
	}
	return n
}
