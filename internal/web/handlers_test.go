package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bigdealegypt/bigdeal/internal/account"
	"github.com/bigdealegypt/bigdeal/internal/admin"
	"github.com/bigdealegypt/bigdeal/internal/client"
	"github.com/bigdealegypt/bigdeal/internal/notify"
	"github.com/bigdealegypt/bigdeal/internal/property"
	"github.com/bigdealegypt/bigdeal/internal/session"
	"github.com/bigdealegypt/bigdeal/internal/viewing"
)

// fakeAPI is an in-memory marketplace backend.
type fakeAPI struct {
	mu         sync.Mutex
	role       account.Role
	viewings   map[string]*viewing.ScheduledViewing
	latestFail bool
	proposes   int
	selects    []viewing.SelectSlotRequest
	signouts   int
	counts     notify.Counts
	maxSlots   int
}

func newFakeAPI(t *testing.T, role account.Role) (*fakeAPI, *httptest.Server) {
	t.Helper()
	f := &fakeAPI{role: role, viewings: make(map[string]*viewing.ScheduledViewing)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/signin", f.handleSignIn)
	mux.HandleFunc("POST /api/auth/signout", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		f.signouts++
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/properties", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, property.Page{Properties: []*property.Property{testProperty()}, Page: 1, PageSize: 20, Total: 1})
	})
	mux.HandleFunc("GET /api/properties/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "P123" {
			http.Error(w, `{"error":"Property not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, testProperty())
	})
	mux.HandleFunc("GET /api/scheduled-viewings", f.handleList)
	mux.HandleFunc("POST /api/scheduled-viewings", f.handleCreate)
	mux.HandleFunc("GET /api/scheduled-viewings/{id}", f.handleGet)
	mux.HandleFunc("POST /api/scheduled-viewings/{id}/{action}", f.handleAction)
	mux.HandleFunc("GET /api/sales-ops/scheduled-viewings", f.handleList)
	mux.HandleFunc("GET /api/notifications/counts", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, f.counts)
	})
	mux.HandleFunc("GET /api/settings", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, admin.Settings{SiteName: "BigDealEgypt", MaxProposedSlots: f.maxSlots})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeAPI) put(v *viewing.ScheduledViewing) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewings[v.ID] = v
}

func (f *fakeAPI) get(id string) *viewing.ScheduledViewing {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewings[id]
}

func (f *fakeAPI) handleSignIn(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, session.AuthResponse{
		User:    &account.User{ID: "U1", Email: "user@example.com", FullName: "Mona Adel", Role: f.role},
		Session: &session.Session{AccessToken: "test-token"},
	})
}

func (f *fakeAPI) handleList(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latestFail {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
		return
	}
	propertyID := r.URL.Query().Get("property_id")
	out := []*viewing.ScheduledViewing{}
	for _, v := range f.viewings {
		if propertyID == "" || v.PropertyID == propertyID {
			out = append(out, v)
		}
	}
	writeJSON(w, out)
}

func (f *fakeAPI) handleGet(w http.ResponseWriter, r *http.Request) {
	v := f.get(r.PathValue("id"))
	if v == nil {
		http.Error(w, `{"error":"Viewing not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, v)
}

func (f *fakeAPI) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req viewing.CreateRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	v := &viewing.ScheduledViewing{ID: "V1", PropertyID: req.PropertyID, UserID: "U1", Status: viewing.StatusRequested, Notes: req.Notes}
	f.put(v)
	writeJSON(w, v)
}

func (f *fakeAPI) handleAction(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.viewings[r.PathValue("id")]
	if v == nil {
		http.Error(w, `{"error":"Viewing not found"}`, http.StatusNotFound)
		return
	}
	switch r.PathValue("action") {
	case "propose-slots":
		var req viewing.ProposeSlotsRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.proposes++
		v.ProposedDates, v.ProposedTimes = req.ProposedDates, req.ProposedTimes
		v.Status = viewing.StatusOptionsSent
	case "select-slot":
		var req viewing.SelectSlotRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.selects = append(f.selects, req)
		v.SelectedDate, v.SelectedTime = req.SelectedDate, req.SelectedTime
		v.Status = viewing.StatusSlotSelected
	case "complete":
		v.Status = viewing.StatusCompleted
	case "cancel":
		v.Status = viewing.StatusCancelled
	}
	writeJSON(w, v)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func testProperty() *property.Property {
	price := int64(4500000)
	beds := int64(3)
	return &property.Property{ID: "P123", Title: "Zamalek Apartment", Location: "Zamalek", City: "Cairo", Price: &price, Bedrooms: &beds}
}

// testServer returns a server signed in with role. An empty role leaves it signed out.
func testServer(t *testing.T, role account.Role, opts ...func(*Options)) (*Server, *fakeAPI) {
	t.Helper()
	api, apiSrv := newFakeAPI(t, role)

	c := client.New(apiSrv.URL, nil)
	m := session.NewManager(c, session.NewMemoryStore(""))
	c.UseTokens(m)
	t.Cleanup(m.Close)

	if role != "" {
		if _, err := m.SignIn(context.Background(), "user@example.com", "secret-pass"); err != nil {
			t.Fatalf("signing in: %v", err)
		}
	}

	o := Options{API: c, Sessions: m, Gatherer: prometheus.NewRegistry()}
	for _, opt := range opts {
		opt(&o)
	}
	srv, err := NewServer(o)
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	return srv, api
}

func do(srv *Server, method, target string, form url.Values) *httptest.ResponseRecorder {
	var r *http.Request
	if form != nil {
		r = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testServer(t, "")

	w := do(srv, "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "ok" {
		t.Errorf("body = %q, want ok", w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	notify.NewMetrics(reg)
	srv, _ := testServer(t, "", func(o *Options) { o.Gatherer = reg })

	w := do(srv, "GET", "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "bigdeal_notification_poll_errors_total") {
		t.Errorf("expected poll error counter in metrics output")
	}
}

func TestStaticAssets(t *testing.T) {
	srv, _ := testServer(t, "")

	w := do(srv, "GET", "/static/style.css", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRequireAuthRedirects(t *testing.T) {
	srv, _ := testServer(t, "")

	for _, path := range []string{"/", "/properties/P123", "/viewings", "/sales-ops/viewings"} {
		w := do(srv, "GET", path, nil)
		if w.Code != http.StatusSeeOther {
			t.Errorf("%s: status = %d, want %d", path, w.Code, http.StatusSeeOther)
		}
		if loc := w.Header().Get("Location"); loc != "/login" {
			t.Errorf("%s: location = %q, want /login", path, loc)
		}
	}
}

func TestLoginRequiresFields(t *testing.T) {
	srv, _ := testServer(t, "")

	w := do(srv, "POST", "/login", url.Values{"email": {"user@example.com"}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if !strings.Contains(w.Body.String(), "Email and password are required") {
		t.Error("expected validation message")
	}
}

func TestLoginThenList(t *testing.T) {
	srv, api := testServer(t, "")
	api.role = account.RoleCustomer

	w := do(srv, "POST", "/login", url.Values{"email": {"User@Example.com"}, "password": {"secret-pass"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}

	w = do(srv, "GET", "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Zamalek Apartment") {
		t.Error("expected property title in list")
	}
	if !strings.Contains(body, "EGP 4,500,000") {
		t.Error("expected formatted price in list")
	}
	if !strings.Contains(body, "Mona Adel") {
		t.Error("expected user name in header")
	}
}

func TestSignupValidation(t *testing.T) {
	srv, _ := testServer(t, "")

	w := do(srv, "POST", "/signup", url.Values{"email": {"a@b.c"}, "full_name": {"A"}, "password": {"short"}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if !strings.Contains(w.Body.String(), "at least 8 characters") {
		t.Error("expected password length message")
	}
}

func TestLogout(t *testing.T) {
	srv, api := testServer(t, account.RoleCustomer)

	w := do(srv, "POST", "/logout", nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if api.signouts != 1 {
		t.Errorf("signouts = %d, want 1", api.signouts)
	}

	w = do(srv, "GET", "/", nil)
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("after logout location = %q, want /login", loc)
	}
}

func TestPropertyDetailAction(t *testing.T) {
	tests := []struct {
		name    string
		viewing *viewing.ScheduledViewing
		want    []string
	}{
		{
			name: "none",
			want: []string{"Schedule a Viewing", `action="/properties/P123/viewing"`},
		},
		{
			name:    "requested",
			viewing: &viewing.ScheduledViewing{ID: "V1", PropertyID: "P123", Status: viewing.StatusRequested},
			want:    []string{"<button type=\"button\" disabled>Viewing Request Submitted</button>"},
		},
		{
			name:    "options sent",
			viewing: &viewing.ScheduledViewing{ID: "V1", PropertyID: "P123", Status: viewing.StatusOptionsSent},
			want:    []string{`href="/viewings/V1/select"`, "Select Viewing Slot"},
		},
		{
			name:    "slot selected",
			viewing: &viewing.ScheduledViewing{ID: "V1", PropertyID: "P123", Status: viewing.StatusSlotSelected},
			want:    []string{"<button type=\"button\" disabled>Waiting for Confirmation</button>"},
		},
		{
			name:    "confirmed",
			viewing: &viewing.ScheduledViewing{ID: "V1", PropertyID: "P123", Status: viewing.StatusConfirmed, ViewingDate: "2026-03-10", ViewingTime: "10:00"},
			want:    []string{"Viewing Confirmed: 2026-03-10", `href="/viewings/V1"`},
		},
		{
			name:    "cancelled",
			viewing: &viewing.ScheduledViewing{ID: "V1", PropertyID: "P123", Status: viewing.StatusCancelled},
			want:    []string{"Schedule Another Viewing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, api := testServer(t, account.RoleCustomer)
			if tt.viewing != nil {
				api.put(tt.viewing)
			}

			w := do(srv, "GET", "/properties/P123", nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
			}
			body := w.Body.String()
			for _, want := range tt.want {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q", want)
				}
			}
		})
	}
}

func TestPropertyDetailDegraded(t *testing.T) {
	srv, api := testServer(t, account.RoleCustomer)
	api.latestFail = true

	w := do(srv, "GET", "/properties/P123", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Schedule a Viewing") {
		t.Error("expected fallback to the request action")
	}
	if !strings.Contains(body, "could not be loaded") {
		t.Error("expected degraded notice")
	}
}

func TestPropertyDetailNotFound(t *testing.T) {
	srv, _ := testServer(t, account.RoleCustomer)

	w := do(srv, "GET", "/properties/NOPE", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if !strings.Contains(w.Body.String(), "Property not found") {
		t.Error("expected API message in error box")
	}
}

func TestRequestViewing(t *testing.T) {
	srv, api := testServer(t, account.RoleCustomer)

	w := do(srv, "POST", "/properties/P123/viewing", url.Values{"notes": {"  mornings  "}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	v := api.get("V1")
	if v == nil || v.Status != viewing.StatusRequested {
		t.Fatalf("viewing = %+v, want requested", v)
	}
	if v.Notes != "mornings" {
		t.Errorf("notes = %q, want mornings", v.Notes)
	}

	w = do(srv, "GET", "/properties/P123", nil)
	if !strings.Contains(w.Body.String(), "Viewing Request Submitted") {
		t.Error("expected submitted state after request")
	}
}

func TestRequestViewingWhileActiveConflicts(t *testing.T) {
	srv, api := testServer(t, account.RoleCustomer)
	api.put(&viewing.ScheduledViewing{ID: "V1", PropertyID: "P123", Status: viewing.StatusRequested})

	w := do(srv, "POST", "/properties/P123/viewing", url.Values{})
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestSelectSlotDisabledUntilChosen(t *testing.T) {
	srv, api := testServer(t, account.RoleCustomer)
	api.put(&viewing.ScheduledViewing{
		ID: "V1", PropertyID: "P123", Status: viewing.StatusOptionsSent,
		ProposedDates: []string{"2026-03-10", "2026-03-11"},
		ProposedTimes: []string{"10:00", "14:00"},
	})

	w := do(srv, "GET", "/viewings/V1/select", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	if !strings.Contains(body, `id="select-submit" disabled`) {
		t.Error("expected submit disabled with nothing chosen")
	}
	if !strings.Contains(body, `value="2026-03-11"`) {
		t.Error("expected every proposed date as a choice")
	}
}

func TestSelectSlotPreselectsSingleCandidates(t *testing.T) {
	srv, api := testServer(t, account.RoleCustomer)
	api.put(&viewing.ScheduledViewing{
		ID: "V1", PropertyID: "P123", Status: viewing.StatusOptionsSent,
		ProposedDates: []string{"2026-03-10"},
		ProposedTimes: []string{"10:00"},
	})

	w := do(srv, "GET", "/viewings/V1/select", nil)
	body := w.Body.String()
	if strings.Contains(body, `id="select-submit" disabled`) {
		t.Error("submit should be enabled when both values are preselected")
	}
	if !strings.Contains(body, "checked") {
		t.Error("expected preselected radio")
	}
}

func TestSelectSlotPageRedirectsWhenNotOffered(t *testing.T) {
	srv, api := testServer(t, account.RoleCustomer)
	api.put(&viewing.ScheduledViewing{ID: "V1", PropertyID: "P123", Status: viewing.StatusRequested})

	w := do(srv, "GET", "/viewings/V1/select", nil)
	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
}

func TestSelectSlotRejectsUnproposedValue(t *testing.T) {
	srv, api := testServer(t, account.RoleCustomer)
	api.put(&viewing.ScheduledViewing{
		ID: "V1", PropertyID: "P123", Status: viewing.StatusOptionsSent,
		ProposedDates: []string{"2026-03-10"},
		ProposedTimes: []string{"10:00", "14:00"},
	})

	w := do(srv, "POST", "/viewings/V1/select", url.Values{"date": {"2099-01-01"}, "time": {"10:00"}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(w.Body.String(), "Please choose one of the proposed dates") {
		t.Error("expected inline date error")
	}
	if len(api.selects) != 0 {
		t.Errorf("selects = %d, want 0", len(api.selects))
	}
}

func TestSelectSlotRequiresTime(t *testing.T) {
	srv, api := testServer(t, account.RoleCustomer)
	api.put(&viewing.ScheduledViewing{
		ID: "V1", PropertyID: "P123", Status: viewing.StatusOptionsSent,
		ProposedDates: []string{"2026-03-10", "2026-03-11"},
		ProposedTimes: []string{"10:00", "14:00"},
	})

	w := do(srv, "POST", "/viewings/V1/select", url.Values{"date": {"2026-03-10"}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(w.Body.String(), "Please select a time") {
		t.Error("expected inline time error")
	}
	if len(api.selects) != 0 {
		t.Errorf("selects = %d, want 0", len(api.selects))
	}
}

func TestSelectSlotSubmit(t *testing.T) {
	srv, api := testServer(t, account.RoleCustomer)
	api.put(&viewing.ScheduledViewing{
		ID: "V1", PropertyID: "P123", Status: viewing.StatusOptionsSent,
		ProposedDates: []string{"2026-03-10", "2026-03-11"},
		ProposedTimes: []string{"10:00", "14:00"},
	})

	w := do(srv, "POST", "/viewings/V1/select", url.Values{"date": {"2026-03-11"}, "time": {"14:00"}, "notes": {" gate code 12 "}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/properties/P123" {
		t.Errorf("location = %q, want /properties/P123", loc)
	}
	if len(api.selects) != 1 {
		t.Fatalf("selects = %d, want 1", len(api.selects))
	}
	want := viewing.SelectSlotRequest{SelectedDate: "2026-03-11", SelectedTime: "14:00", Notes: "gate code 12"}
	if api.selects[0] != want {
		t.Errorf("select body = %+v, want %+v", api.selects[0], want)
	}
}

func TestStaffRoutesForbidCustomers(t *testing.T) {
	srv, _ := testServer(t, account.RoleCustomer)

	for _, path := range []string{"/sales-ops/viewings", "/sales-ops/viewings/V1/propose", "/admin/users", "/admin/settings"} {
		w := do(srv, "GET", path, nil)
		if w.Code != http.StatusForbidden {
			t.Errorf("%s: status = %d, want %d", path, w.Code, http.StatusForbidden)
		}
	}
}

func TestAdminRoutesForbidSalesOps(t *testing.T) {
	srv, _ := testServer(t, account.RoleSalesOps)

	w := do(srv, "GET", "/admin/users", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestProposeInvalidIsNotSent(t *testing.T) {
	srv, api := testServer(t, account.RoleSalesOps)
	api.put(&viewing.ScheduledViewing{ID: "V1", PropertyID: "P123", Status: viewing.StatusRequested})

	w := do(srv, "POST", "/sales-ops/viewings/V1/propose", url.Values{
		"date": {""},
		"time": {"10:00", "10:00"},
		"op":   {"submit"},
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Date is required") {
		t.Error("expected inline date error")
	}
	if !strings.Contains(body, "Duplicate times are not allowed") {
		t.Error("expected duplicate time error")
	}
	if api.proposes != 0 {
		t.Errorf("proposes = %d, want 0", api.proposes)
	}
}

func TestProposeEditRows(t *testing.T) {
	srv, api := testServer(t, account.RoleSalesOps)
	api.put(&viewing.ScheduledViewing{ID: "V1", PropertyID: "P123", Status: viewing.StatusRequested})

	w := do(srv, "POST", "/sales-ops/viewings/V1/propose", url.Values{
		"date": {"2026-03-10"},
		"time": {"10:00"},
		"op":   {"add_date"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	if n := strings.Count(body, `name="date"`); n != 2 {
		t.Errorf("date rows = %d, want 2", n)
	}
	if !strings.Contains(body, `value="remove_date:1"`) {
		t.Error("expected remove button once two dates exist")
	}
	if api.proposes != 0 {
		t.Errorf("proposes = %d, want 0", api.proposes)
	}
}

func TestProposeSubmit(t *testing.T) {
	srv, api := testServer(t, account.RoleSalesOps)
	api.put(&viewing.ScheduledViewing{ID: "V1", PropertyID: "P123", Status: viewing.StatusRequested})

	w := do(srv, "POST", "/sales-ops/viewings/V1/propose", url.Values{
		"date": {"2026-03-10", " 2026-03-11 "},
		"time": {"10:00"},
		"op":   {"submit"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "Slots sent") {
		t.Error("expected success state")
	}
	if api.proposes != 1 {
		t.Errorf("proposes = %d, want 1", api.proposes)
	}
	v := api.get("V1")
	if v.Status != viewing.StatusOptionsSent {
		t.Errorf("status = %s, want options_sent", v.Status)
	}
	if len(v.ProposedDates) != 2 || v.ProposedDates[1] != "2026-03-11" {
		t.Errorf("proposed dates = %v", v.ProposedDates)
	}
}

func TestStaffActionNotAvailable(t *testing.T) {
	srv, api := testServer(t, account.RoleSalesOps)
	api.put(&viewing.ScheduledViewing{ID: "V1", PropertyID: "P123", Status: viewing.StatusRequested})

	w := do(srv, "POST", "/sales-ops/viewings/V1/complete", url.Values{})
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	if api.get("V1").Status != viewing.StatusRequested {
		t.Error("viewing should be unchanged")
	}
}

func TestStaffCancel(t *testing.T) {
	srv, api := testServer(t, account.RoleSalesOps)
	api.put(&viewing.ScheduledViewing{ID: "V1", PropertyID: "P123", Status: viewing.StatusOptionsSent})

	w := do(srv, "POST", "/sales-ops/viewings/V1/cancel", url.Values{"reason": {"owner withdrew"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if api.get("V1").Status != viewing.StatusCancelled {
		t.Error("expected viewing cancelled")
	}
}

func TestViewingDetailStaffActions(t *testing.T) {
	srv, api := testServer(t, account.RoleSalesOps)
	api.put(&viewing.ScheduledViewing{ID: "V1", PropertyID: "P123", Status: viewing.StatusSlotSelected, SelectedDate: "2026-03-10", SelectedTime: "10:00"})

	w := do(srv, "GET", "/viewings/V1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Confirm Viewing") {
		t.Error("expected confirm action")
	}
	if strings.Contains(body, "Propose Slots") {
		t.Error("propose should not be offered after a slot is selected")
	}
}

func TestBadgesFromPoller(t *testing.T) {
	var poller *notify.Poller
	srv, api := testServer(t, account.RoleCustomer, func(o *Options) {
		poller = notify.NewPoller(o.API, notify.Config{}, notify.NewMetrics(prometheus.NewRegistry()))
		o.Poller = poller
	})
	api.counts = notify.Counts{PropertyRequests: 2, ScheduledViewings: 1}
	poller.Poll(context.Background())

	w := do(srv, "GET", "/", nil)
	body := w.Body.String()
	if !strings.Contains(body, `My Viewings <span class="badge">1</span>`) {
		t.Error("expected viewings badge")
	}
	if !strings.Contains(body, `Requests <span class="badge">2</span>`) {
		t.Error("expected requests badge")
	}
}

func TestProposeRejectedOutsideProposableStatus(t *testing.T) {
	srv, api := testServer(t, account.RoleSalesOps)
	api.put(&viewing.ScheduledViewing{ID: "V1", PropertyID: "P123", Status: viewing.StatusConfirmed})

	w := do(srv, "GET", "/sales-ops/viewings/V1/propose", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("GET status = %d, want %d", w.Code, http.StatusConflict)
	}

	w = do(srv, "POST", "/sales-ops/viewings/V1/propose", url.Values{
		"date": {"2026-03-10"},
		"time": {"10:00"},
		"op":   {"submit"},
	})
	if w.Code != http.StatusConflict {
		t.Errorf("POST status = %d, want %d", w.Code, http.StatusConflict)
	}
	if api.proposes != 0 {
		t.Errorf("proposes = %d, want 0", api.proposes)
	}
	if v := api.get("V1"); v.Status != viewing.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", v.Status)
	}
}

func TestProposeEnforcesMaxSlots(t *testing.T) {
	srv, api := testServer(t, account.RoleSalesOps)
	api.mu.Lock()
	api.maxSlots = 2
	api.mu.Unlock()
	api.put(&viewing.ScheduledViewing{ID: "V1", PropertyID: "P123", Status: viewing.StatusRequested})

	w := do(srv, "GET", "/sales-ops/viewings/V1/propose", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "Up to 2 dates") {
		t.Error("expected the slot limit to be shown")
	}

	w = do(srv, "POST", "/sales-ops/viewings/V1/propose", url.Values{
		"date": {"2026-03-10", "2026-03-11", "2026-03-12"},
		"time": {"10:00"},
		"op":   {"submit"},
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(w.Body.String(), "At most 2 dates can be proposed") {
		t.Error("expected the slot limit error")
	}
	if api.proposes != 0 {
		t.Errorf("proposes = %d, want 0", api.proposes)
	}

	w = do(srv, "POST", "/sales-ops/viewings/V1/propose", url.Values{
		"date": {"2026-03-10", "2026-03-11"},
		"time": {"10:00"},
		"op":   {"add_date"},
	})
	if n := strings.Count(w.Body.String(), `name="date"`); n != 2 {
		t.Errorf("date rows = %d, want 2", n)
	}
}
