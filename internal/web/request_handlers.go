package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/bigdealegypt/bigdeal/internal/admin"
	"github.com/bigdealegypt/bigdeal/internal/client"
	"github.com/bigdealegypt/bigdeal/internal/propreq"
)

type requestsData struct {
	Requests []*propreq.Request
	Fields   []*admin.FormField
	Input    propreq.Input
	Created  bool
}

// handleRequestList renders property requests: the user's own, or all of them for staff.
func (s *Server) handleRequestList(w http.ResponseWriter, r *http.Request) {
	data, err := s.loadRequests(r)
	if err != nil {
		s.renderError(w, r, "loading property requests", err)
		return
	}
	data.Created = r.URL.Query().Get("created") == "1"
	s.render(w, http.StatusOK, "requests.html", s.newPage("Property Requests", data))
}

// handleRequestCreate submits a new property request.
func (s *Server) handleRequestCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	in := propreq.Input{
		PropertyID:   strings.TrimSpace(r.FormValue("property_id")),
		PropertyType: strings.TrimSpace(r.FormValue("property_type")),
		Location:     strings.TrimSpace(r.FormValue("location")),
		MinBudget:    parseOptionalInt(r.FormValue("min_budget")),
		MaxBudget:    parseOptionalInt(r.FormValue("max_budget")),
		Bedrooms:     parseOptionalInt(r.FormValue("bedrooms")),
		Notes:        strings.TrimSpace(r.FormValue("notes")),
	}
	for key, vals := range r.PostForm {
		if name, ok := strings.CutPrefix(key, "field_"); ok && len(vals) > 0 && vals[0] != "" {
			if in.Fields == nil {
				in.Fields = make(map[string]string)
			}
			in.Fields[name] = vals[0]
		}
	}

	if err := in.Validate(); err != nil {
		data, loadErr := s.loadRequests(r)
		if loadErr != nil {
			s.renderError(w, r, "loading property requests", loadErr)
			return
		}
		data.Input = in
		p := s.newPage("Property Requests", data)
		p.Error = err.Error()
		s.render(w, http.StatusUnprocessableEntity, "requests.html", p)
		return
	}

	if _, err := s.api.CreatePropertyRequest(r.Context(), in); err != nil {
		s.renderError(w, r, "creating property request", err)
		return
	}
	http.Redirect(w, r, "/requests?created=1", http.StatusSeeOther)
}

func (s *Server) loadRequests(r *http.Request) (requestsData, error) {
	var (
		reqs []*propreq.Request
		err  error
	)
	opts := client.RequestListOptions{Status: propreq.Status(r.URL.Query().Get("status")), Page: parsePage(r)}
	if u := s.sessions.User(); u != nil && u.IsStaff() {
		reqs, err = s.api.SalesOpsPropertyRequests(r.Context(), opts)
	} else {
		reqs, err = s.api.ListPropertyRequests(r.Context(), opts)
	}
	if err != nil {
		return requestsData{}, err
	}

	// Custom fields are optional decoration; the form works without them.
	fields, err := s.api.AdminFormFields(r.Context())
	if err != nil {
		slog.Debug("form fields unavailable", "error", err)
	}

	return requestsData{Requests: reqs, Fields: admin.ActiveFields(fields)}, nil
}

func parseOptionalInt(s string) *int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
