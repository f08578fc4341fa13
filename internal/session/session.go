// Package session holds the signed-in user's credential and keeps it fresh.
package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bigdealegypt/bigdeal/internal/account"
)

// Session is the bearer credential used for API calls.
type Session struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Until returns how long the session stays valid from now.
func (s *Session) Until(now time.Time) time.Duration {
	return s.ExpiresAt.Sub(now)
}

// Expired reports whether the session has expired at now.
// A session with unknown expiry never reports expired.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// normalize fills a missing expiry from the token's exp claim.
// The signature is not verified; the backend does that on every call.
func (s *Session) normalize() error {
	if s.AccessToken == "" {
		return fmt.Errorf("session has no access token")
	}
	if !s.ExpiresAt.IsZero() {
		return nil
	}
	exp, err := TokenExpiry(s.AccessToken)
	if err != nil {
		return err
	}
	s.ExpiresAt = exp
	return nil
}

// TokenExpiry reads the exp claim of a JWT access token without verifying it.
// A token that is not a JWT, or has no exp claim, yields a zero time.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("reading token expiry: %w", err)
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

// AuthResponse is what the auth endpoints return.
type AuthResponse struct {
	User    *account.User `json:"user"`
	Session *Session      `json:"session"`
}

// SignUpRequest is the body for creating a customer account.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
}
