package web

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bigdealegypt/bigdeal/internal/account"
	"github.com/bigdealegypt/bigdeal/internal/client"
	"github.com/bigdealegypt/bigdeal/internal/notify"
	"github.com/bigdealegypt/bigdeal/internal/viewing"
)

// page is the data every template receives. Data holds the page-specific part.
type page struct {
	Title     string
	User      *account.User
	Badges    notify.Counts
	HasBadges bool
	Error     string
	Flash     string
	Data      interface{}
}

// newPage fills the shared fields for the signed-in user.
func (s *Server) newPage(title string, data interface{}) *page {
	p := &page{Title: title, User: s.sessions.User(), Data: data}
	if s.poller != nil {
		p.Badges, p.HasBadges = s.poller.Counts()
	}
	return p
}

// render executes a page template with layout. The page is buffered so a
// template error never leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, status int, name string, p *page) {
	tmpl, ok := s.pages[name]
	if !ok {
		slog.Error("unknown template", "name", name)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", p); err != nil {
		slog.Error("rendering template", "name", name, "error", err)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderError shows an API failure inline on the error page.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, action string, err error) {
	status := statusFor(err)
	slog.Warn(action, "path", r.URL.Path, "error", err)
	p := s.newPage("Something went wrong", nil)
	p.Error = userMessage(err)
	s.render(w, status, "error.html", p)
}

// statusFor maps an API failure onto the status the UI responds with.
func statusFor(err error) int {
	if errors.Is(err, viewing.ErrActionNotAvailable) {
		return http.StatusConflict
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusNotFound, http.StatusForbidden, http.StatusBadRequest, http.StatusConflict:
			return apiErr.StatusCode
		}
	}
	return http.StatusBadGateway
}

// userMessage is the text shown in the inline error box.
func userMessage(err error) string {
	if errors.Is(err, viewing.ErrActionNotAvailable) {
		return "That action is not available for this viewing any more. Reload to see its current status."
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "The server could not be reached. Please try again."
}
