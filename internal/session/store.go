package session

// Package session orchestrates the authenticated session lifecycle: named
// state transitions, write-through persistence, rehydration, the token
// expiry watcher, and single-flight refresh.

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	domainsession "github.com/mizan-mobiles/storefront-go/internal/domain/session"
	apperrors "github.com/mizan-mobiles/storefront-go/internal/errors"
	"github.com/mizan-mobiles/storefront-go/internal/ports"
)

// StateKey is the durable storage key the session is persisted under.
const StateKey = "session"

// DefaultRefreshMargin is how far before token expiry the watcher fires.
const DefaultRefreshMargin = 5 * time.Second

// StoreOptions groups dependencies for Store.
type StoreOptions struct {
	Backend ports.AuthBackend
	State   ports.StateStore
	Tokens  ports.TokenInspector
	Logger  *slog.Logger

	// RefreshMargin defaults to DefaultRefreshMargin when zero.
	RefreshMargin time.Duration
	// Now is an injectable clock for tests; defaults to time.Now.
	Now func() time.Time
}

// Store holds the current session and drives its transitions. It is safe
// for concurrent use; refresh is single-flight so concurrent 401 waiters
// share one refresh call instead of racing each other's refresh tokens.
type Store struct {
	backend ports.AuthBackend
	state   ports.StateStore
	tokens  ports.TokenInspector
	logger  *slog.Logger
	margin  time.Duration
	now     func() time.Time

	sf singleflight.Group

	mu      sync.Mutex
	current domainsession.Session
	timer   *time.Timer
	// generation invalidates scheduled refresh timers whenever the session
	// is replaced or cleared, so a stale timer never refreshes a session
	// that no longer exists.
	generation uint64
}

// NewStore constructs a Store. Call Rehydrate to load any persisted session
// before first use.
func NewStore(opts StoreOptions) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	margin := opts.RefreshMargin
	if margin <= 0 {
		margin = DefaultRefreshMargin
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		backend: opts.Backend,
		state:   opts.State,
		tokens:  opts.Tokens,
		logger:  logger,
		margin:  margin,
		now:     now,
	}
}

// Current returns a snapshot of the session.
func (s *Store) Current() domainsession.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// AccessToken returns the current access token, or empty when logged out.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Token.AccessToken
}

// Authenticated reports whether a session is active.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Authenticated()
}

// Login exchanges credentials for a session.
func (s *Store) Login(ctx context.Context, creds ports.Credentials) (domainsession.Session, error) {
	if creds.Email == "" {
		return domainsession.Session{}, apperrors.ValidationField("email", "email is required")
	}
	if creds.Password == "" {
		return domainsession.Session{}, apperrors.ValidationField("password", "password is required")
	}

	result, err := s.backend.Login(ctx, creds)
	if err != nil {
		return domainsession.Session{}, fmt.Errorf("login: %w", err)
	}
	return s.loginSucceeded(ctx, result), nil
}

// Signup registers a new account. A successful signup implies an
// authenticated session, identical in effect to login.
func (s *Store) Signup(ctx context.Context, in ports.SignupInput) (domainsession.Session, error) {
	if in.Email == "" {
		return domainsession.Session{}, apperrors.ValidationField("email", "email is required")
	}
	if in.Password == "" {
		return domainsession.Session{}, apperrors.ValidationField("password", "password is required")
	}

	result, err := s.backend.Signup(ctx, in)
	if err != nil {
		return domainsession.Session{}, fmt.Errorf("signup: %w", err)
	}
	return s.loginSucceeded(ctx, result), nil
}

// loginSucceeded applies a successful login/signup: sets the token pair and
// profile, persists, and schedules the expiry watcher.
func (s *Store) loginSucceeded(ctx context.Context, result ports.AuthResult) domainsession.Session {
	user := result.User

	s.mu.Lock()
	s.current = domainsession.Session{
		Token: s.buildToken(result.AccessToken, result.RefreshToken),
		User:  &user,
	}
	snapshot := s.current
	s.scheduleWatcherLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return snapshot
}

// UpdateProfile sends a partial profile update and merges the result into
// the current user. Identity fields the patch omits are preserved; the
// profile is merged, never replaced wholesale.
func (s *Store) UpdateProfile(ctx context.Context, patch ports.ProfilePatch) (domainsession.Session, error) {
	if !s.Authenticated() {
		return domainsession.Session{}, apperrors.Unauthorized("no active session")
	}

	updated, err := s.backend.UpdateProfile(ctx, patch)
	if err != nil {
		return domainsession.Session{}, fmt.Errorf("update profile: %w", err)
	}
	if updated == nil {
		return domainsession.Session{}, apperrors.Internal("profile update returned no profile")
	}

	s.mu.Lock()
	if s.current.User == nil {
		// Logged out while the request was in flight.
		s.mu.Unlock()
		return domainsession.Session{}, apperrors.Unauthorized("no active session")
	}
	merged := mergeProfile(*s.current.User, *updated, patch)
	merged.UpdatedAt = s.now()
	s.current.User = &merged
	snapshot := s.current
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return snapshot, nil
}

// Refresh exchanges the refresh token for a new access token. Concurrent
// callers share a single in-flight refresh; only the first initiates the
// network call, the rest await its result. An unrecoverable refresh failure
// logs the session out before returning.
func (s *Store) Refresh(ctx context.Context) (string, error) {
	v, err, _ := s.sf.Do("refresh", func() (any, error) {
		return s.doRefresh(ctx)
	})
	if err != nil {
		return "", err
	}
	token, _ := v.(string)
	return token, nil
}

func (s *Store) doRefresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	refreshToken := s.current.Token.RefreshToken
	s.mu.Unlock()

	if refreshToken == "" {
		s.Logout(ctx)
		return "", apperrors.SessionExpired("no refresh token")
	}

	result, err := s.backend.Refresh(ctx, refreshToken)
	if err != nil {
		s.Logout(ctx)
		return "", apperrors.Wrap(err, apperrors.ErrCodeSessionExpired, "refresh failed")
	}
	if result.AccessToken == "" {
		s.Logout(ctx)
		return "", apperrors.SessionExpired("refresh yielded no token")
	}

	s.mu.Lock()
	// The backend may or may not rotate the refresh token; keep the old one
	// when it didn't.
	newRefresh := result.RefreshToken
	if newRefresh == "" {
		newRefresh = s.current.Token.RefreshToken
	}
	s.current.Token = s.buildToken(result.AccessToken, newRefresh)
	if result.User != nil {
		u := *result.User
		s.current.User = &u
	}
	snapshot := s.current
	s.scheduleWatcherLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return result.AccessToken, nil
}

// Logout nulls the session, cancels any scheduled refresh, and clears the
// durable storage entry.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.current = domainsession.Session{}
	s.generation++
	s.stopTimerLocked()
	s.mu.Unlock()

	if err := s.state.Delete(ctx, StateKey); err != nil {
		s.logger.WarnContext(ctx, "clear persisted session failed", "error", err)
	}
}

// Rehydrate loads a persisted session from durable storage. A stored token
// that cannot be parsed for expiry is treated as corrupted: storage is
// cleared and the store remains logged out rather than failing startup.
// A token that rehydrates already expired triggers an immediate refresh.
func (s *Store) Rehydrate(ctx context.Context) error {
	data, err := s.state.Get(ctx, StateKey)
	if err != nil {
		s.logger.WarnContext(ctx, "read persisted session failed", "error", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var stored domainsession.Session
	if err := json.Unmarshal(data, &stored); err != nil {
		s.logger.WarnContext(ctx, "persisted session corrupted, discarding", "error", err)
		s.discardStored(ctx)
		return nil
	}
	if !stored.Authenticated() {
		return nil
	}
	if !stored.Valid() {
		s.logger.WarnContext(ctx, "persisted session missing profile, discarding")
		s.discardStored(ctx)
		return nil
	}

	expiry, err := s.tokens.ExpiresAt(stored.Token.AccessToken)
	if err != nil {
		s.logger.WarnContext(ctx, "persisted token unparseable, discarding", "error", err)
		s.discardStored(ctx)
		return nil
	}
	stored.Token.Expiry = expiry

	s.mu.Lock()
	s.current = stored
	expired := !expiry.IsZero() && !expiry.After(s.now())
	if !expired {
		s.scheduleWatcherLocked()
	}
	s.mu.Unlock()

	if expired {
		if _, err := s.Refresh(ctx); err != nil {
			s.logger.InfoContext(ctx, "session expired and refresh failed, logged out", "error", err)
		}
	}
	return nil
}

// Close cancels the expiry watcher. The session itself is untouched.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.stopTimerLocked()
}

// buildToken assembles the token pair, stamping Expiry from the access
// token's exp claim when it parses. A fresh token from the backend that
// fails to parse is logged and carried without an expiry; the watcher
// simply will not schedule for it.
func (s *Store) buildToken(accessToken, refreshToken string) (tok oauth2.Token) {
	tok.AccessToken = accessToken
	tok.RefreshToken = refreshToken
	expiry, err := s.tokens.ExpiresAt(accessToken)
	if err != nil {
		s.logger.Warn("access token expiry unparseable", "error", err)
		return tok
	}
	tok.Expiry = expiry
	return tok
}

// scheduleWatcherLocked arms a one-shot refresh at expiry minus the safety
// margin, replacing any previously scheduled timer. Callers must hold s.mu.
func (s *Store) scheduleWatcherLocked() {
	s.generation++
	s.stopTimerLocked()

	expiry := s.current.Token.Expiry
	if expiry.IsZero() {
		return
	}

	delay := expiry.Sub(s.now()) - s.margin
	if delay < 0 {
		delay = 0
	}

	gen := s.generation
	s.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		stale := gen != s.generation
		s.mu.Unlock()
		if stale {
			return
		}
		if _, err := s.Refresh(context.Background()); err != nil {
			s.logger.Info("scheduled refresh failed, logged out", "error", err)
		}
	})
}

func (s *Store) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// persist writes the session through to durable storage. Storage failures
// are logged, never propagated; the in-memory transition has already
// happened.
func (s *Store) persist(ctx context.Context, sess domainsession.Session) {
	data, err := json.Marshal(sess)
	if err != nil {
		s.logger.ErrorContext(ctx, "marshal session failed", "error", err)
		return
	}
	if err := s.state.Save(ctx, StateKey, data); err != nil {
		s.logger.WarnContext(ctx, "persist session failed", "error", err)
	}
}

func (s *Store) discardStored(ctx context.Context) {
	if err := s.state.Delete(ctx, StateKey); err != nil {
		s.logger.WarnContext(ctx, "discard persisted session failed", "error", err)
	}
}

// mergeProfile merges an updated profile into the current one. The backend
// response wins for fields the patch actually set; identity fields (ID,
// Email, Phone unless patched) and anything the update omitted fall back to
// the current profile.
func mergeProfile(current, updated domainsession.UserProfile, patch ports.ProfilePatch) domainsession.UserProfile {
	merged := current

	if updated.FullName != "" || patch.FullName != nil {
		merged.FullName = updated.FullName
	}
	if updated.Phone != "" || patch.Phone != nil {
		merged.Phone = updated.Phone
	}
	if updated.Bio != "" || patch.Bio != nil {
		merged.Bio = updated.Bio
	}
	if updated.Location != "" || patch.Location != nil {
		merged.Location = updated.Location
	}
	if updated.Avatar != "" || patch.Avatar != nil {
		merged.Avatar = updated.Avatar
	}
	if updated.Role != "" {
		merged.Role = updated.Role
	}
	return merged
}
