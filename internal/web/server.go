// Package web provides the local web UI: property pages, the viewing
// scheduling forms, and the role-gated dashboards.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bigdealegypt/bigdeal/internal/client"
	"github.com/bigdealegypt/bigdeal/internal/logging"
	"github.com/bigdealegypt/bigdeal/internal/notify"
	"github.com/bigdealegypt/bigdeal/internal/property"
	"github.com/bigdealegypt/bigdeal/internal/session"
	"github.com/bigdealegypt/bigdeal/internal/viewing"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Options wires the server to its collaborators. API and Sessions are required.
type Options struct {
	API      *client.Client
	Sessions *session.Manager
	Poller   *notify.Poller      // may be nil
	History  viewing.Recorder    // may be nil
	Gatherer prometheus.Gatherer // nil uses the default registry
}

// Server is the web UI HTTP server.
type Server struct {
	api      *client.Client
	sessions *session.Manager
	poller   *notify.Poller
	history  viewing.Recorder
	pages    map[string]*template.Template
	router   chi.Router
}

// NewServer parses the templates and builds the router.
func NewServer(opts Options) (*Server, error) {
	if opts.API == nil || opts.Sessions == nil {
		return nil, errors.New("web server needs an API client and a session manager")
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		api:      opts.API,
		sessions: opts.Sessions,
		poller:   opts.Poller,
		history:  opts.History,
		pages:    pages,
	}

	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("creating static sub-fs: %w", err)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(chimw.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLoginSubmit)
	r.Get("/signup", s.handleSignupPage)
	r.Post("/signup", s.handleSignupSubmit)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/", s.handleDashboard)
		r.Get("/properties/{id}", s.handlePropertyDetail)
		r.Post("/properties/{id}/viewing", s.handleRequestViewing)

		r.Get("/viewings", s.handleViewingList)
		r.Get("/viewings/{id}", s.handleViewingDetail)
		r.Get("/viewings/{id}/select", s.handleSelectSlotPage)
		r.Post("/viewings/{id}/select", s.handleSelectSlotSubmit)
		r.Post("/viewings/{id}/cancel", s.handleCancelViewing)

		r.Get("/requests", s.handleRequestList)
		r.Post("/requests", s.handleRequestCreate)

		r.Route("/sales-ops", func(r chi.Router) {
			r.Use(s.requireStaff)
			r.Get("/viewings", s.handleStaffViewings)
			r.Get("/viewings/{id}/propose", s.handleProposePage)
			r.Post("/viewings/{id}/propose", s.handleProposeSubmit)
			r.Post("/viewings/{id}/{action}", s.handleStaffAction)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/users", s.handleAdminUsers)
			r.Post("/users/{id}/role", s.handleAdminUserRole)
			r.Get("/form-fields", s.handleAdminFormFields)
			r.Get("/settings", s.handleAdminSettings)
			r.Post("/settings", s.handleAdminSettingsSubmit)
		})
	})

	s.router = r
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting web UI", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down web UI: %w", err)
		}
		return nil
	}
}

// parsePages builds one template per page, each combined with the shared layout.
func parsePages() (map[string]*template.Template, error) {
	funcMap := template.FuncMap{
		"formatPrice": property.FormatPrice,
		"formatArea":  property.FormatArea,
		"formatCount": property.FormatCount,
		"add":         func(a, b int) int { return a + b },
		"fieldError":  fieldError,
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, f := range files {
		name := f[len("templates/"):]
		if name == "layout.html" {
			continue
		}
		tmpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", f)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// fieldError returns the inline error for key, or "".
func fieldError(errs viewing.FieldErrors, key string) string {
	if errs == nil {
		return ""
	}
	return errs[key]
}
