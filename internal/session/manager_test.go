package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal/internal/api"
	"jobportal/internal/api/apitest"
	"jobportal/internal/auth"
	"jobportal/internal/tokenstore"
)

type recorder struct {
	mu  sync.Mutex
	ops []string
}

func (r *recorder) Transition(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		op += ":error"
	}
	r.ops = append(r.ops, op)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ops...)
}

type brokenStore struct {
	tokenstore.Store
}

func (brokenStore) Save(context.Context, string) error {
	return errors.New("disk full")
}

func setup(t *testing.T, store tokenstore.Store, opts ...Option) (*apitest.Backend, *Manager) {
	t.Helper()
	b := apitest.NewBackend(t)
	return b, NewManager(b.Client(t), store, opts...)
}

func TestLoginResolvesProfile(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		role auth.Role
		home string
	}{
		{auth.RoleCandidate, "/"},
		{auth.RoleEmployer, "/employer/dashboard"},
		{auth.RoleAdmin, "/admin/dashboard"},
	}
	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			store := tokenstore.NewMemory()
			b, m := setup(t, store)
			u := b.AddUser(auth.User{Email: "a@example.com", Role: tc.role}, "pw")

			var seen []State
			cancel := m.Subscribe(func(s State) { seen = append(seen, s) })
			defer cancel()

			require.NoError(t, m.Login(ctx, "a@example.com", "pw"))

			st := m.State()
			require.True(t, st.Authenticated())
			assert.Equal(t, u.ID, st.User.ID)
			assert.False(t, st.Loading)
			assert.Equal(t, tc.home, auth.HomePath(st.Role()))

			stored, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, st.Token, stored)

			require.Len(t, seen, 2)
			assert.True(t, seen[0].Loading)
			assert.Nil(t, seen[0].User)
			assert.Equal(t, st.Token, seen[0].Token)
			assert.False(t, seen[1].Loading)
		})
	}
}

func TestLoginRejected(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemory()
	b, m := setup(t, store)
	b.AddUser(auth.User{Email: "a@example.com", Role: auth.RoleCandidate}, "pw")

	err := m.Login(ctx, "a@example.com", "wrong")

	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Incorrect email or password", apiErr.Error())
	assert.Equal(t, State{}, m.State())

	stored, _ := store.Load(ctx)
	assert.Empty(t, stored)
}

func TestLoginStoreFailureLeavesStateUntouched(t *testing.T) {
	b, m := setup(t, brokenStore{tokenstore.NewMemory()})
	b.AddUser(auth.User{Email: "a@example.com", Role: auth.RoleCandidate}, "pw")

	err := m.Login(context.Background(), "a@example.com", "pw")
	require.ErrorContains(t, err, "disk full")
	assert.Equal(t, State{}, m.State())
	for _, c := range b.Calls() {
		assert.NotContains(t, c, "GET /users/")
	}
}

func TestProfileFailureAfterLoginLogsOut(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemory()
	b, m := setup(t, store)
	b.AddUser(auth.User{Email: "a@example.com", Role: auth.RoleCandidate}, "pw")
	b.FailProfiles(http.StatusInternalServerError)

	err := m.Login(ctx, "a@example.com", "pw")
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, api.StatusCode(err))
	assert.Equal(t, State{}, m.State())

	stored, _ := store.Load(ctx)
	assert.Empty(t, stored)
}

func TestLogoutIdempotent(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemory()
	b, m := setup(t, store)
	b.AddUser(auth.User{Email: "a@example.com", Role: auth.RoleAdmin}, "pw")

	require.NoError(t, m.Logout(ctx), "logout while logged out")
	assert.Equal(t, State{}, m.State())

	require.NoError(t, m.Login(ctx, "a@example.com", "pw"))
	require.NoError(t, m.Logout(ctx))
	first := m.State()
	require.NoError(t, m.Logout(ctx))

	assert.Equal(t, State{}, first)
	assert.Equal(t, first, m.State())
	stored, _ := store.Load(ctx)
	assert.Empty(t, stored)
}

func TestHydrate(t *testing.T) {
	ctx := context.Background()

	t.Run("no stored token", func(t *testing.T) {
		_, m := setup(t, tokenstore.NewMemory())
		require.NoError(t, m.Hydrate(ctx))
		assert.Equal(t, State{}, m.State())
	})

	t.Run("valid stored token", func(t *testing.T) {
		store := tokenstore.NewMemory()
		b, m := setup(t, store)
		u := b.AddUser(auth.User{Email: "e@example.com", Role: auth.RoleEmployer}, "pw")
		require.NoError(t, store.Save(ctx, b.TokenFor(u.ID)))

		require.NoError(t, m.Hydrate(ctx))
		st := m.State()
		require.NotNil(t, st.User)
		assert.Equal(t, auth.RoleEmployer, st.User.Role)
	})

	t.Run("unauthorized profile equals logout", func(t *testing.T) {
		store := tokenstore.NewMemory()
		b, m := setup(t, store)
		u := b.AddUser(auth.User{Email: "e@example.com", Role: auth.RoleEmployer}, "pw")
		require.NoError(t, store.Save(ctx, b.TokenFor(u.ID)))
		b.FailProfiles(http.StatusUnauthorized)

		err := m.Hydrate(ctx)
		assert.True(t, api.IsUnauthorized(err))

		_, other := setup(t, tokenstore.NewMemory())
		require.NoError(t, other.Logout(ctx))
		assert.Equal(t, other.State(), m.State())

		stored, _ := store.Load(ctx)
		assert.Empty(t, stored)
	})

	t.Run("garbage token is discarded", func(t *testing.T) {
		store := tokenstore.NewMemory()
		_, m := setup(t, store)
		require.NoError(t, store.Save(ctx, "not-a-jwt"))

		err := m.Hydrate(ctx)
		assert.ErrorIs(t, err, auth.ErrMalformedToken)
		assert.Equal(t, State{}, m.State())
	})
}

func TestProtectedCallsCarryToken(t *testing.T) {
	ctx := context.Background()
	b, m := setup(t, tokenstore.NewMemory())
	b.AddUser(auth.User{Email: "a@example.com", Role: auth.RoleCandidate}, "pw")

	_, err := m.API().ListJobOffers(ctx)
	assert.True(t, api.IsUnauthorized(err), "anonymous call is rejected")

	require.NoError(t, m.Login(ctx, "a@example.com", "pw"))
	_, err = m.API().ListJobOffers(ctx)
	require.NoError(t, err)

	authz := b.Authorizations()
	assert.Equal(t, "", authz[0])
	assert.Equal(t, "Bearer "+m.State().Token, authz[len(authz)-1])

	require.NoError(t, m.Logout(ctx))
	_, err = m.API().ListJobOffers(ctx)
	assert.True(t, api.IsUnauthorized(err))
	authz = b.Authorizations()
	assert.Equal(t, "", authz[len(authz)-1])
}

func TestRegisterLogsIn(t *testing.T) {
	rec := &recorder{}
	b, m := setup(t, tokenstore.NewMemory(), WithObserver(rec))

	err := m.Register(context.Background(), api.Registration{
		Email:     "new@example.com",
		Password:  "pw",
		FirstName: "Nora",
		LastName:  "Vale",
		Role:      auth.RoleCandidate,
	})
	require.NoError(t, err)

	st := m.State()
	require.NotNil(t, st.User)
	assert.NotEmpty(t, st.Token)
	assert.Equal(t, auth.RoleCandidate, st.User.Role)
	assert.Equal(t, "Nora Vale", st.User.FullName())
	assert.Equal(t, 1, b.CountCalls("POST /register"))
	assert.Equal(t, 1, b.CountCalls("POST /login"))
	assert.Equal(t, []string{OpRegister}, rec.list())
}

func TestRestartRestoresSession(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b := apitest.NewBackend(t)
	u := b.AddUser(auth.User{Email: "a@example.com", Role: auth.RoleEmployer}, "pw")

	first := NewManager(b.Client(t), tokenstore.NewFile(dir))
	require.NoError(t, first.Login(ctx, "a@example.com", "pw"))

	second := NewManager(b.Client(t), tokenstore.NewFile(dir))
	require.NoError(t, second.Hydrate(ctx))

	assert.Equal(t, first.State(), second.State())
	assert.Equal(t, u.ID, second.State().User.ID)
}

func TestAdopt(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemory()
	b, m := setup(t, store)
	u := b.AddUser(auth.User{Email: "g@example.com", Role: auth.RoleCandidate}, "pw")
	token := b.TokenFor(u.ID)

	require.NoError(t, m.Adopt(ctx, token))
	assert.Equal(t, token, m.State().Token)
	assert.Equal(t, u.ID, m.State().User.ID)
	assert.Zero(t, b.CountCalls("POST /login"))

	stored, _ := store.Load(ctx)
	assert.Equal(t, token, stored)

	assert.ErrorIs(t, m.Adopt(ctx, ""), auth.ErrMalformedToken)
}

func TestStaleProfileDiscarded(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemory()
	b, m := setup(t, store)
	b.AddUser(auth.User{Email: "a@example.com", Role: auth.RoleCandidate}, "pw")

	release := b.HoldProfiles()
	defer release()

	done := make(chan error, 1)
	go func() { done <- m.Login(ctx, "a@example.com", "pw") }()

	require.Eventually(t, func() bool { return m.State().Loading }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, m.Logout(ctx))
	release()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("login did not return")
	}
	assert.Equal(t, State{}, m.State())
	stored, _ := store.Load(ctx)
	assert.Empty(t, stored)
}

func TestFailedHydrateKeepsNewerLoginFromOtherManager(t *testing.T) {
	ctx := context.Background()
	b := apitest.NewBackend(t)
	store := tokenstore.NewMemory()

	old := b.AddUser(auth.User{Email: "old@example.com", Role: auth.RoleCandidate}, "pw")
	fresh := b.AddUser(auth.User{Email: "new@example.com", Role: auth.RoleEmployer}, "pw")
	require.NoError(t, store.Save(ctx, b.TokenFor(old.ID)))

	answer := b.HoldProfile(old.ID)
	defer answer(0)

	// two requests of one browser session, each with its own manager
	hydrating := NewManager(b.Client(t), store)
	loggingIn := NewManager(b.Client(t), store)

	done := make(chan error, 1)
	go func() { done <- hydrating.Hydrate(ctx) }()
	require.Eventually(t, func() bool {
		return b.CountCalls("GET /users/"+old.ID) == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, loggingIn.Login(ctx, "new@example.com", "pw"))
	answer(http.StatusUnauthorized)

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("hydrate did not return")
	}
	assert.False(t, hydrating.State().Authenticated())

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, loggingIn.State().Token, stored)

	next := NewManager(b.Client(t), store)
	require.NoError(t, next.Hydrate(ctx))
	require.True(t, next.State().Authenticated())
	assert.Equal(t, fresh.ID, next.State().User.ID)
}

func TestSubscribeCancel(t *testing.T) {
	ctx := context.Background()
	b, m := setup(t, tokenstore.NewMemory())
	b.AddUser(auth.User{Email: "a@example.com", Role: auth.RoleCandidate}, "pw")

	calls := 0
	cancel := m.Subscribe(func(State) { calls++ })
	cancel()
	cancel()

	require.NoError(t, m.Login(ctx, "a@example.com", "pw"))
	assert.Zero(t, calls)
}

func TestStateIsACopy(t *testing.T) {
	ctx := context.Background()
	b, m := setup(t, tokenstore.NewMemory())
	b.AddUser(auth.User{Email: "a@example.com", Role: auth.RoleCandidate}, "pw")
	require.NoError(t, m.Login(ctx, "a@example.com", "pw"))

	st := m.State()
	st.User.Role = auth.RoleAdmin
	assert.Equal(t, auth.RoleCandidate, m.State().User.Role)
}
