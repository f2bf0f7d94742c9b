package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"jobportal/internal/api"
	"jobportal/internal/auth"
	"jobportal/internal/tokenstore"
)

// ErrSuperseded is returned when a login or hydration finished after a newer
// login or logout replaced the session it was resolving.
var ErrSuperseded = errors.New("session: superseded by a newer session change")

// Operation names reported to observers.
const (
	OpHydrate  = "hydrate"
	OpLogin    = "login"
	OpRegister = "register"
	OpAdopt    = "adopt"
	OpLogout   = "logout"
)

// State is a snapshot of the current session.
// User is non-nil only when Token is set. Loading is true only while a token
// is being resolved into a profile.
type State struct {
	Token   string
	User    *auth.User
	Loading bool
}

// Authenticated reports whether a profile has been resolved for the token.
func (s State) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// Role returns the resolved user's role, or "" when there is none.
func (s State) Role() auth.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// Observer is told about every completed session operation.
type Observer interface {
	Transition(op string, err error)
}

type Option func(*Manager)

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(m *Manager) {
		m.observer = o
	}
}

// Manager owns the session state of one client (one browser session or one
// device). Only its methods change the state; readers get copies.
type Manager struct {
	base     *api.Client
	api      *api.Client
	store    tokenstore.Store
	log      *slog.Logger
	observer Observer

	// storeMu orders this manager's store writes with its generation.
	// Other managers sharing the store are fenced by ClearIf.
	storeMu sync.Mutex

	mu      sync.RWMutex
	state   State
	gen     uint64
	subs    map[int]func(State)
	nextSub int
}

// NewManager returns a logged-out manager. Call Hydrate to restore a
// persisted session.
func NewManager(base *api.Client, store tokenstore.Store, opts ...Option) *Manager {
	m := &Manager{
		base:  base,
		store: store,
		log:   slog.Default(),
		subs:  make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.api = base.WithTokenSource(m)
	return m
}

// API returns a client that authenticates with the current session token.
func (m *Manager) API() *api.Client {
	return m.api
}

// Token implements oauth2.TokenSource over the in-memory token.
func (m *Manager) Token() (*oauth2.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state.Token == "" {
		return nil, api.ErrNoToken
	}
	return bearer(m.state.Token), nil
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot()
}

// Subscribe registers fn to be called with the new state after every
// transition. The returned func removes the subscription.
func (m *Manager) Subscribe(fn func(State)) (cancel func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

// Hydrate restores the session from the token store. With no stored token
// the manager ends logged out and not loading. A stored token that cannot
// be resolved into a profile is discarded through Logout.
func (m *Manager) Hydrate(ctx context.Context) error {
	err := m.hydrate(ctx)
	m.report(OpHydrate, err)
	return err
}

func (m *Manager) hydrate(ctx context.Context) error {
	m.storeMu.Lock()
	token, err := m.store.Load(ctx)
	if err != nil {
		m.storeMu.Unlock()
		m.log.Error("session: load token", "error", err)
		m.logout(ctx)
		return fmt.Errorf("session: load token: %w", err)
	}
	if token == "" {
		m.transition(func(s *State) {
			m.gen++
			*s = State{}
		})
		m.storeMu.Unlock()
		return nil
	}
	gen := m.begin(token)
	m.storeMu.Unlock()

	return m.resolve(ctx, gen, token)
}

// Login exchanges credentials for a token, persists it and resolves the
// profile. A rejected login returns the backend error and leaves the state
// untouched. A profile failure after a successful login logs out.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	err := m.login(ctx, email, password)
	m.report(OpLogin, err)
	return err
}

func (m *Manager) login(ctx context.Context, email, password string) error {
	resp, err := m.base.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if resp.AccessToken == "" {
		return fmt.Errorf("session: login returned no access token")
	}
	return m.establish(ctx, resp.AccessToken)
}

// Register creates an account and then logs in with the same credentials.
func (m *Manager) Register(ctx context.Context, in api.Registration) error {
	err := m.register(ctx, in)
	m.report(OpRegister, err)
	return err
}

func (m *Manager) register(ctx context.Context, in api.Registration) error {
	if _, err := m.base.Register(ctx, in); err != nil {
		return err
	}
	return m.login(ctx, in.Email, in.Password)
}

// Adopt takes over a token minted elsewhere, such as the OAuth landing
// redirect, and resolves it exactly like a fresh login.
func (m *Manager) Adopt(ctx context.Context, token string) error {
	var err error
	if token == "" {
		err = fmt.Errorf("session: adopt: %w", auth.ErrMalformedToken)
	} else {
		err = m.establish(ctx, token)
	}
	m.report(OpAdopt, err)
	return err
}

// Logout forgets the session in memory and in the store. It is safe to call
// at any time, any number of times.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.logout(ctx)
	m.report(OpLogout, err)
	return err
}

func (m *Manager) logout(ctx context.Context) error {
	m.storeMu.Lock()
	defer m.storeMu.Unlock()

	m.transition(func(s *State) {
		m.gen++
		*s = State{}
	})
	if err := m.store.Clear(ctx); err != nil {
		m.log.Error("session: clear token", "error", err)
		return fmt.Errorf("session: clear token: %w", err)
	}
	return nil
}

// establish persists token, publishes it as loading and resolves it.
// A store failure aborts before memory is touched.
func (m *Manager) establish(ctx context.Context, token string) error {
	m.storeMu.Lock()
	if err := m.store.Save(ctx, token); err != nil {
		m.storeMu.Unlock()
		return fmt.Errorf("session: persist token: %w", err)
	}
	gen := m.begin(token)
	m.storeMu.Unlock()

	return m.resolve(ctx, gen, token)
}

// begin installs token as the current one in the loading state and returns
// its generation. Callers hold storeMu.
func (m *Manager) begin(token string) uint64 {
	var gen uint64
	m.transition(func(s *State) {
		m.gen++
		gen = m.gen
		*s = State{Token: token, Loading: true}
	})
	return gen
}

// resolve fetches the profile for token. The result is applied only if no
// newer login or logout happened meanwhile.
func (m *Manager) resolve(ctx context.Context, gen uint64, token string) error {
	user, err := m.fetchProfile(ctx, token)
	if err != nil {
		return m.fail(ctx, gen, token, err)
	}

	applied := false
	m.transition(func(s *State) {
		if m.gen != gen {
			return
		}
		applied = true
		*s = State{Token: token, User: &user}
	})
	if !applied {
		m.log.Debug("session: discarded stale profile", "user_id", user.ID)
		return ErrSuperseded
	}
	m.log.Info("session: resolved", "user_id", user.ID, "role", string(user.Role))
	return nil
}

func (m *Manager) fetchProfile(ctx context.Context, token string) (auth.User, error) {
	sub, err := auth.SubjectFromToken(token)
	if err != nil {
		return auth.User{}, err
	}
	// bound to this token rather than the manager so a concurrent login
	// cannot swap credentials under the request
	client := m.base.WithTokenSource(oauth2.StaticTokenSource(bearer(token)))
	return client.GetUser(ctx, sub)
}

// fail logs out after a resolution failure, unless the session it belonged
// to has already been replaced. Only the failed token is removed from the
// store; a token saved meanwhile by another manager survives.
func (m *Manager) fail(ctx context.Context, gen uint64, token string, cause error) error {
	m.storeMu.Lock()
	defer m.storeMu.Unlock()

	stale := false
	m.transition(func(s *State) {
		if m.gen != gen {
			stale = true
			return
		}
		m.gen++
		*s = State{}
	})
	if stale {
		return ErrSuperseded
	}

	m.log.Warn("session: profile resolution failed", "error", cause)
	// the request may have been cancelled; the stale token must still go
	if err := m.store.ClearIf(context.WithoutCancel(ctx), token); err != nil {
		return errors.Join(fmt.Errorf("session: resolve profile: %w", cause), fmt.Errorf("session: clear token: %w", err))
	}
	return fmt.Errorf("session: resolve profile: %w", cause)
}

// transition applies mutate under the lock and notifies subscribers if the
// state changed.
func (m *Manager) transition(mutate func(*State)) {
	m.mu.Lock()
	before := m.state
	mutate(&m.state)
	changed := before != m.state
	snap := m.snapshot()
	subs := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range subs {
		fn(snap)
	}
}

// snapshot copies the state so callers cannot reach the manager's user.
// Callers hold mu.
func (m *Manager) snapshot() State {
	s := m.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func (m *Manager) report(op string, err error) {
	if m.observer != nil {
		m.observer.Transition(op, err)
	}
}

func bearer(token string) *oauth2.Token {
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
}
