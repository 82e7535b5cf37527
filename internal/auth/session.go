// Package auth owns the authenticated identity. A Manager runs the session
// state machine (initializing, then unauthenticated or authenticated),
// restores a persisted session asynchronously at process start, and refreshes
// stale tokens when connectivity allows.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/linkvault/linkvault/internal/logging"
	"github.com/linkvault/linkvault/internal/netx"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")
)

// Phase is the session state machine's current state.
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseUnauthenticated
	PhaseAuthenticated
)

// Session is an authenticated identity with its tokens.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	UserID       string    `json:"user_id"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Provider is the remote identity provider behind the Manager.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	Refresh(ctx context.Context, refreshToken string) (Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// SessionStore persists the session between process runs so restoration can
// happen without user interaction. LoadSession returns (nil, nil) when no
// session is stored.
type SessionStore interface {
	LoadSession(ctx context.Context) (*Session, error)
	SaveSession(ctx context.Context, s Session) error
	ClearSession(ctx context.Context) error
}

// refreshLeeway is how close to expiry a token may get before
// EnsureValidSession refreshes it.
const refreshLeeway = 30 * time.Second

// Manager is the authentication session manager. All methods are safe for
// concurrent use.
type Manager struct {
	provider Provider
	store    SessionStore
	conn     netx.Monitor
	log      logging.Logger

	mu      sync.RWMutex
	phase   Phase
	session *Session

	restored     chan struct{}
	restoredOnce sync.Once
}

// NewManager constructs a Manager in the initializing phase. Callers must
// run Restore once (typically in a goroutine at process start) and await it
// via AwaitRestored before attempting any sync operation.
func NewManager(provider Provider, store SessionStore, conn netx.Monitor, log logging.Logger) *Manager {
	return &Manager{
		provider: provider,
		store:    store,
		conn:     conn,
		log:      log,
		phase:    PhaseInitializing,
		restored: make(chan struct{}),
	}
}

// Restore loads the persisted session and transitions out of the
// initializing phase. When connected, the restored session is refreshed
// immediately so the provider carries valid tokens; a rejected refresh clears
// the stored session. When offline, the cached session is adopted as-is and
// validity is re-checked by EnsureValidSession once connectivity returns.
func (m *Manager) Restore(ctx context.Context) error {
	defer m.restoredOnce.Do(func() { close(m.restored) })

	stored, err := m.store.LoadSession(ctx)
	if err != nil {
		m.setPhase(PhaseUnauthenticated, nil)
		return fmt.Errorf("failed to load session: %w", err)
	}
	if stored == nil {
		m.setPhase(PhaseUnauthenticated, nil)
		return nil
	}

	if !m.conn.IsConnected() {
		m.log.Debug(ctx, "restored session offline, refresh deferred", "user", stored.UserID)
		m.setPhase(PhaseAuthenticated, stored)
		return nil
	}

	fresh, err := m.provider.Refresh(ctx, stored.RefreshToken)
	if err != nil {
		m.log.Warn(ctx, "stored session rejected, signing out", "error", err)
		_ = m.store.ClearSession(ctx)
		m.setPhase(PhaseUnauthenticated, nil)
		return nil
	}

	if err := m.store.SaveSession(ctx, fresh); err != nil {
		m.log.Warn(ctx, "failed to persist refreshed session", "error", err)
	}
	m.setPhase(PhaseAuthenticated, &fresh)
	return nil
}

// AwaitRestored blocks until Restore has completed once, or ctx is done.
func (m *Manager) AwaitRestored(ctx context.Context) error {
	select {
	case <-m.restored:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SignIn authenticates against the identity provider and persists the
// session for later restoration.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	s, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}
	if err := m.store.SaveSession(ctx, s); err != nil {
		m.log.Warn(ctx, "failed to persist session", "error", err)
	}
	m.restoredOnce.Do(func() { close(m.restored) })
	m.setPhase(PhaseAuthenticated, &s)
	return nil
}

// SignOut revokes the session best-effort and clears local state.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.RLock()
	s := m.session
	m.mu.RUnlock()

	if s != nil {
		if err := m.provider.SignOut(ctx, s.AccessToken); err != nil {
			m.log.Warn(ctx, "remote sign-out failed", "error", err)
		}
	}
	if err := m.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	m.setPhase(PhaseUnauthenticated, nil)
	return nil
}

// CurrentUserID returns the authenticated user's identity, if any.
func (m *Manager) CurrentUserID() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.phase != PhaseAuthenticated || m.session == nil {
		return "", false
	}
	return m.session.UserID, true
}

// IsAuthenticated reports whether the state machine is in the
// authenticated phase.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase == PhaseAuthenticated
}

// Phase returns the state machine's current phase.
func (m *Manager) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// EnsureValidSession guarantees the session's tokens are usable, refreshing
// them when they are within refreshLeeway of expiry. Refreshing requires
// connectivity; a stale session that cannot be refreshed offline fails with
// ErrSessionExpired.
func (m *Manager) EnsureValidSession(ctx context.Context) error {
	m.mu.RLock()
	phase, s := m.phase, m.session
	m.mu.RUnlock()

	if phase != PhaseAuthenticated || s == nil {
		return ErrNotAuthenticated
	}
	if time.Until(m.expiry(s)) > refreshLeeway {
		return nil
	}

	if !m.conn.IsConnected() {
		return fmt.Errorf("cannot refresh offline: %w", ErrSessionExpired)
	}
	fresh, err := m.provider.Refresh(ctx, s.RefreshToken)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", ErrSessionExpired)
	}
	if err := m.store.SaveSession(ctx, fresh); err != nil {
		m.log.Warn(ctx, "failed to persist refreshed session", "error", err)
	}
	m.setPhase(PhaseAuthenticated, &fresh)
	return nil
}

// expiry returns the session's expiry, falling back to the access token's
// exp claim when the stored timestamp is missing.
func (m *Manager) expiry(s *Session) time.Time {
	if !s.ExpiresAt.IsZero() {
		return s.ExpiresAt
	}
	return TokenExpiry(s.AccessToken)
}

func (m *Manager) setPhase(p Phase, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phase = p
	m.session = s
}

// TokenExpiry extracts the exp claim from a JWT without verifying the
// signature; the token's validity is the backend's concern, only the expiry
// is needed for refresh scheduling. Returns the zero time when the claim
// cannot be read.
func TokenExpiry(accessToken string) time.Time {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(accessToken, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
