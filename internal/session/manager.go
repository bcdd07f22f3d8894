package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"minuteminds/internal/gateway"
	"minuteminds/internal/logging"
	"minuteminds/internal/services"
)

// State names the verification phases of a session.
type State int

const (
	// StateInitializing is the pre-load phase before stored state is read.
	StateInitializing State = iota
	// StateVerifying means a stored credential is being checked remotely.
	StateVerifying
	// StateVerified means a principal is present and calls may carry the credential.
	StateVerified
	// StateUnverified means no usable credential exists.
	StateUnverified
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateVerifying:
		return "verifying"
	case StateVerified:
		return "verified"
	default:
		return "unverified"
	}
}

// Authenticator is the slice of the gateway the session layer depends on.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (gateway.Credentials, error)
	Register(ctx context.Context, name, email, password string) (gateway.Profile, error)
	Verify(ctx context.Context, credential string) (gateway.Verification, error)
}

// ManagerOption customises Manager construction.
type ManagerOption func(*Manager)

// WithStore injects a custom persistence layer.
func WithStore(store CredentialStore) ManagerOption {
	return func(m *Manager) { m.store = store }
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logging.NewComponentLogger(logger, "session")
		}
	}
}

// Manager owns the session lifecycle. A credential loaded at startup is
// verified once; login and register mutate state directly. All reads and
// writes go through the manager, never through shared globals.
type Manager struct {
	auth   Authenticator
	store  CredentialStore
	logger *slog.Logger

	mu         sync.RWMutex
	state      State
	credential string
	principal  *gateway.Principal
	clientID   string
}

// NewManager builds a session manager persisting into stateDir.
func NewManager(auth Authenticator, stateDir string, opts ...ManagerOption) (*Manager, error) {
	if auth == nil {
		return nil, errors.New("authenticator is nil")
	}
	mgr := &Manager{
		auth:   auth,
		store:  NewFileCredentialStore(stateDir),
		logger: logging.NewNop(),
		state:  StateInitializing,
	}
	for _, opt := range opts {
		opt(mgr)
	}
	return mgr, nil
}

// Initialize loads the stored credential and verifies it remotely. Failures
// resolve internally to the unverified state; no error crosses this boundary.
func (m *Manager) Initialize(ctx context.Context) {
	stored, err := m.store.Load()
	if err != nil {
		m.logger.Warn("session state unreadable; starting unverified", logging.Error(err))
		m.resolveUnverified(false)
		return
	}

	m.mu.Lock()
	m.clientID = stored.ClientIdentifier
	m.mu.Unlock()

	if strings.TrimSpace(stored.Credential) == "" {
		m.resolveUnverified(false)
		return
	}

	m.setState(StateVerifying)
	result, err := m.auth.Verify(ctx, stored.Credential)
	if err != nil || !result.Valid {
		if err != nil {
			m.logger.Warn("credential verification failed", logging.Error(err))
		} else {
			m.logger.Info("stored credential rejected")
		}
		m.resolveUnverified(true)
		return
	}

	m.mu.Lock()
	m.state = StateVerified
	m.credential = stored.Credential
	principal := result.User
	m.principal = &principal
	m.mu.Unlock()
	m.logger.Info("session restored", logging.String("user", result.User.Email))
}

// Login authenticates with the backend and stores the issued credential. The
// issuing call is itself the verification; no extra round-trip happens.
func (m *Manager) Login(ctx context.Context, email, password string) (gateway.Principal, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return gateway.Principal{}, services.Wrap(services.ErrPrecondition, "session", "login", "email and password required", nil)
	}

	creds, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return gateway.Principal{}, err
	}

	m.mu.Lock()
	m.state = StateVerified
	m.credential = creds.Token
	principal := creds.User
	m.principal = &principal
	clientID := m.clientID
	m.mu.Unlock()

	if err := m.store.Save(credentialState{Credential: creds.Token, ClientIdentifier: clientID}); err != nil {
		m.logger.Warn("credential not persisted; session will not survive restart", logging.Error(err))
	}
	m.logger.Info("login succeeded", logging.String("user", creds.User.Email))
	return creds.User, nil
}

// Register creates an account. It does not authenticate the session.
func (m *Manager) Register(ctx context.Context, name, email, password string) (gateway.Profile, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return gateway.Profile{}, services.Wrap(services.ErrPrecondition, "session", "register", "name, email and password required", nil)
	}
	return m.auth.Register(ctx, name, email, password)
}

// Logout clears the credential, principal, and durable storage unconditionally.
func (m *Manager) Logout() {
	m.resolveUnverified(true)
	m.logger.Info("logged out")
}

// Invalidate is the forced-logout path taken when the gateway reports the
// credential rejected mid-session.
func (m *Manager) Invalidate() {
	m.mu.RLock()
	wasVerified := m.state == StateVerified
	m.mu.RUnlock()
	if !wasVerified {
		return
	}
	m.resolveUnverified(true)
	m.logger.Warn("credential rejected by backend; session invalidated")
}

// Verified reports whether a principal is present.
func (m *Manager) Verified() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateVerified
}

// State returns the current verification state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Principal returns the authenticated identity, or false when unverified.
func (m *Manager) Principal() (gateway.Principal, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.principal == nil {
		return gateway.Principal{}, false
	}
	return *m.principal, true
}

// Credential returns the current bearer token, or empty when not verified.
// It satisfies the gateway's CredentialSource.
func (m *Manager) Credential() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateVerified {
		return ""
	}
	return m.credential
}

func (m *Manager) setState(state State) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}

func (m *Manager) resolveUnverified(clearStore bool) {
	m.mu.Lock()
	m.state = StateUnverified
	m.credential = ""
	m.principal = nil
	m.mu.Unlock()

	if clearStore {
		if err := m.store.Clear(); err != nil {
			m.logger.Warn("stored credential not cleared", logging.Error(err))
		}
	}
}
