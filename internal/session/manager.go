package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bigdealegypt/bigdeal/internal/account"
)

// DefaultRefreshLead is how long before expiry the session is refreshed.
const DefaultRefreshLead = 5 * time.Minute

// ErrSignedOut is returned by operations that need a session when there is none.
var ErrSignedOut = errors.New("not signed in")

// AuthAPI is the subset of the marketplace API that issues and checks sessions.
type AuthAPI interface {
	GetSession(ctx context.Context, token string) (*AuthResponse, error)
	SignIn(ctx context.Context, email, password string) (*AuthResponse, error)
	SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error)
	SignOut(ctx context.Context, token string) error
	RefreshToken(ctx context.Context, token string) (*AuthResponse, error)
}

// State is a snapshot of the authentication state.
type State struct {
	User    *account.User
	Session *Session
	Loading bool
	Err     error
}

// Timer is a scheduled one-shot callback.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithAfterFunc overrides how refresh timers are scheduled.
func WithAfterFunc(af AfterFunc) Option {
	return func(m *Manager) { m.afterFunc = af }
}

// WithRefreshLead sets how long before expiry the session is refreshed.
func WithRefreshLead(d time.Duration) Option {
	return func(m *Manager) { m.refreshLead = d }
}

// OnSignedOut registers a hook run after a failed refresh clears the session.
// The web UI uses it to send the user back to the login page.
func OnSignedOut(fn func(error)) Option {
	return func(m *Manager) { m.onSignedOut = fn }
}

// Manager owns the signed-in user, the session, and the refresh timer.
//
// Every session change replaces the timer, so refreshing produces a chain of
// one-shot timers that lasts until sign-out or Close.
type Manager struct {
	api         AuthAPI
	store       TokenStore
	now         func() time.Time
	afterFunc   AfterFunc
	refreshLead time.Duration
	onSignedOut func(error)

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	state  State
	timer  Timer
	gen    uint64
	closed bool
}

// NewManager creates a signed-out manager. Call Init to restore a persisted session.
func NewManager(api AuthAPI, store TokenStore, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		api:         api,
		store:       store,
		now:         time.Now,
		afterFunc:   func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) },
		refreshLead: DefaultRefreshLead,
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init restores the persisted session. On any failure the stored token is
// cleared and the manager stays signed out; there is no retry.
func (m *Manager) Init(ctx context.Context) error {
	m.setLoading(true)
	defer m.setLoading(false)

	token, err := m.store.Load()
	if err != nil {
		m.fail(err)
		return fmt.Errorf("loading stored token: %w", err)
	}
	if token == "" {
		return nil
	}

	resp, err := m.api.GetSession(ctx, token)
	if err != nil {
		m.discard(err)
		return fmt.Errorf("restoring session: %w", err)
	}

	if resp.Session == nil {
		resp.Session = &Session{}
	}
	if resp.Session.AccessToken == "" {
		resp.Session.AccessToken = token
	}
	if err := m.establish(resp); err != nil {
		m.discard(err)
		return fmt.Errorf("restoring session: %w", err)
	}
	return nil
}

// SignIn authenticates with email and password.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*account.User, error) {
	m.setLoading(true)
	defer m.setLoading(false)

	resp, err := m.api.SignIn(ctx, email, password)
	if err != nil {
		m.fail(err)
		return nil, fmt.Errorf("signing in: %w", err)
	}
	if err := m.establish(resp); err != nil {
		m.fail(err)
		return nil, fmt.Errorf("signing in: %w", err)
	}
	return resp.User, nil
}

// SignUp creates an account and signs it in.
func (m *Manager) SignUp(ctx context.Context, req SignUpRequest) (*account.User, error) {
	m.setLoading(true)
	defer m.setLoading(false)

	resp, err := m.api.SignUp(ctx, req)
	if err != nil {
		m.fail(err)
		return nil, fmt.Errorf("signing up: %w", err)
	}
	if err := m.establish(resp); err != nil {
		m.fail(err)
		return nil, fmt.Errorf("signing up: %w", err)
	}
	return resp.User, nil
}

// SignOut ends the session. Local state is cleared even when the backend call
// fails, so the user is never stuck signed in.
func (m *Manager) SignOut(ctx context.Context) {
	token := m.Token()
	if token != "" {
		if err := m.api.SignOut(ctx, token); err != nil {
			slog.Warn("backend sign-out failed, clearing local session anyway", "error", err)
		}
	}
	m.clear(nil)
	if err := m.store.Clear(); err != nil {
		slog.Warn("clearing stored token", "error", err)
	}
}

// Refresh exchanges the current token for a new one. A failure signs the user
// out and runs the OnSignedOut hook. A refresh that no longer owns the session
// (see abandoned) leaves the stored token alone and drops a late response.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	var token string
	if m.state.Session != nil {
		token = m.state.Session.AccessToken
	}
	gen := m.gen
	m.mu.Unlock()
	if token == "" {
		return ErrSignedOut
	}

	resp, err := m.api.RefreshToken(ctx, token)
	if err == nil {
		if resp != nil && resp.User == nil {
			resp.User = m.User()
		}
		var adopted bool
		adopted, err = m.adopt(resp, &gen)
		if err == nil && !adopted {
			slog.Debug("session changed during refresh, dropping result")
			return nil
		}
	}
	if err != nil {
		if m.abandoned(ctx, gen) {
			slog.Debug("session refresh abandoned", "error", err)
			return fmt.Errorf("refreshing session: %w", err)
		}
		slog.Warn("session refresh failed, signing out", "error", err)
		m.discard(err)
		if m.onSignedOut != nil {
			m.onSignedOut(err)
		}
		return fmt.Errorf("refreshing session: %w", err)
	}

	slog.Debug("session refreshed", "expires_at", resp.Session.ExpiresAt)
	return nil
}

// abandoned reports whether a refresh started at gen no longer owns the
// session: its context was cancelled, the manager was closed, or the session
// was replaced or cleared in the meantime.
func (m *Manager) abandoned(ctx context.Context, gen uint64) bool {
	if ctx.Err() != nil || m.ctx.Err() != nil {
		return true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed || gen != m.gen
}

// Close stops the refresh timer. The manager keeps its state but never refreshes again.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.stopTimerLocked()
	m.mu.Unlock()
	m.cancel()
}

// Token returns the current access token, or "" when signed out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Session == nil {
		return ""
	}
	return m.state.Session.AccessToken
}

// User returns the signed-in user, or nil.
func (m *Manager) User() *account.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.User
}

// SignedIn reports whether a session is held.
func (m *Manager) SignedIn() bool {
	return m.Token() != ""
}

// State returns a snapshot of the authentication state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.state
	if st.Session != nil {
		s := *st.Session
		st.Session = &s
	}
	return st
}

// establish adopts a new user and session, persists the token, and reschedules refresh.
func (m *Manager) establish(resp *AuthResponse) error {
	_, err := m.adopt(resp, nil)
	return err
}

// adopt is establish for a caller that read the session at generation *gen.
// It reports false, changing nothing, when the manager was closed or the
// session moved on since then. A nil gen always adopts.
func (m *Manager) adopt(resp *AuthResponse, gen *uint64) (bool, error) {
	if resp == nil || resp.Session == nil {
		return false, fmt.Errorf("response has no session")
	}
	sess := *resp.Session
	if err := sess.normalize(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != nil && (m.closed || *gen != m.gen) {
		return false, nil
	}

	if err := m.store.Save(sess.AccessToken, sess.ExpiresAt); err != nil {
		return false, fmt.Errorf("persisting token: %w", err)
	}

	m.state.User = resp.User
	m.state.Session = &sess
	m.state.Err = nil
	m.scheduleLocked()
	return true, nil
}

// scheduleLocked replaces the refresh timer for the current session.
func (m *Manager) scheduleLocked() {
	m.stopTimerLocked()
	if m.closed || m.state.Session == nil {
		return
	}
	if m.state.Session.ExpiresAt.IsZero() {
		slog.Debug("session expiry unknown, not scheduling refresh")
		return
	}

	delay := m.state.Session.Until(m.now()) - m.refreshLead
	if delay < 0 {
		delay = 0
	}

	m.gen++
	gen := m.gen
	m.timer = m.afterFunc(delay, func() { m.refreshFromTimer(gen) })
}

// refreshFromTimer runs a scheduled refresh unless the session changed since it was scheduled.
func (m *Manager) refreshFromTimer(gen uint64) {
	m.mu.Lock()
	stale := m.closed || gen != m.gen
	m.mu.Unlock()
	if stale {
		return
	}
	_ = m.Refresh(m.ctx)
}

func (m *Manager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.gen++
}

// discard clears local state and the persisted token after a failure.
func (m *Manager) discard(err error) {
	m.clear(err)
	if cerr := m.store.Clear(); cerr != nil {
		slog.Warn("clearing stored token", "error", cerr)
	}
}

func (m *Manager) clear(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTimerLocked()
	m.state.User = nil
	m.state.Session = nil
	m.state.Err = err
}

func (m *Manager) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Err = err
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Loading = v
}
