package web

import (
	"net/http"
	"strings"

	"github.com/bigdealegypt/bigdeal/internal/session"
)

type loginData struct {
	Email string
}

type signupData struct {
	Email    string
	FullName string
	Phone    string
}

// handleLoginPage renders the login form.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.sessions.SignedIn() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, "login.html", &page{Title: "Sign in", Data: loginData{}})
}

// handleLoginSubmit signs in with email and password.
func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	password := r.FormValue("password")
	data := loginData{Email: email}

	if email == "" || password == "" {
		s.render(w, http.StatusBadRequest, "login.html", &page{Title: "Sign in", Error: "Email and password are required", Data: data})
		return
	}

	if _, err := s.sessions.SignIn(r.Context(), email, password); err != nil {
		s.render(w, http.StatusUnauthorized, "login.html", &page{Title: "Sign in", Error: userMessage(err), Data: data})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleSignupPage renders the signup form.
func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "signup.html", &page{Title: "Create account", Data: signupData{}})
}

// handleSignupSubmit creates a customer account and signs it in.
func (s *Server) handleSignupSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	req := session.SignUpRequest{
		Email:    strings.TrimSpace(strings.ToLower(r.FormValue("email"))),
		Password: r.FormValue("password"),
		FullName: strings.TrimSpace(r.FormValue("full_name")),
		Phone:    strings.TrimSpace(r.FormValue("phone")),
	}
	data := signupData{Email: req.Email, FullName: req.FullName, Phone: req.Phone}

	switch {
	case req.Email == "" || req.Password == "" || req.FullName == "":
		s.render(w, http.StatusBadRequest, "signup.html", &page{Title: "Create account", Error: "Name, email and password are required", Data: data})
		return
	case len(req.Password) < 8:
		s.render(w, http.StatusBadRequest, "signup.html", &page{Title: "Create account", Error: "Password must be at least 8 characters", Data: data})
		return
	}

	if _, err := s.sessions.SignUp(r.Context(), req); err != nil {
		s.render(w, statusFor(err), "signup.html", &page{Title: "Create account", Error: userMessage(err), Data: data})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleLogout ends the session and redirects to login.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.SignOut(r.Context())
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
