// Package apitest provides an in-process fake of the job-matching backend
// for tests of packages built on the API client.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"jobportal/internal/api"
	"jobportal/internal/auth"
)

var signingKey = []byte("apitest-signing-key")

// Backend serves /login, /register, /users and /job-offers from memory.
// Anything else can be added with Handle.
type Backend struct {
	Server *httptest.Server
	mux    *http.ServeMux

	mu            sync.Mutex
	users         map[string]auth.User
	passwords     map[string]string
	tokens        map[string]string
	offers        map[string]api.JobOffer
	calls         []string
	authz         []string
	profileStatus int
	profileGate   chan struct{}
	profileHolds  map[string]chan int
}

func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		mux:       http.NewServeMux(),
		users:     make(map[string]auth.User),
		passwords: make(map[string]string),
		tokens:    make(map[string]string),
		offers:    make(map[string]api.JobOffer),

		profileHolds: make(map[string]chan int),
	}
	b.mux.HandleFunc("POST /login", b.login)
	b.mux.HandleFunc("POST /register", b.register)
	b.mux.HandleFunc("GET /users/{$}", b.protected(b.listUsers))
	b.mux.HandleFunc("GET /users/{id}", b.protected(b.getUser))
	b.mux.HandleFunc("DELETE /users/{id}", b.protected(b.deleteUser))
	b.mux.HandleFunc("GET /job-offers/{$}", b.protected(b.listOffers))
	b.mux.HandleFunc("POST /job-offers/{$}", b.protected(b.createOffer))
	b.mux.HandleFunc("GET /job-offers/{id}", b.protected(b.getOffer))
	b.mux.HandleFunc("DELETE /job-offers/{id}", b.protected(b.deleteOffer))

	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// Client returns an unauthenticated client pointed at the backend.
func (b *Backend) Client(t *testing.T) *api.Client {
	t.Helper()
	c, err := api.New(b.Server.URL, api.WithTimeout(5*time.Second))
	require.NoError(t, err)
	return c
}

// Handle registers an extra route. Patterns must not collide with the
// built-in ones.
func (b *Backend) Handle(pattern string, h http.HandlerFunc) {
	b.mux.HandleFunc(pattern, h)
}

// Protected wraps h so it answers 401 without a valid bearer token.
func (b *Backend) Protected(h http.HandlerFunc) http.HandlerFunc {
	return b.protected(func(w http.ResponseWriter, r *http.Request, _ auth.User) { h(w, r) })
}

// AddUser registers an account and returns it with a fresh id if none was set.
func (b *Backend) AddUser(u auth.User, password string) auth.User {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[u.ID] = u
	b.passwords[u.Email] = password
	return u
}

// TokenFor mints a token the backend will accept for userID.
func (b *Backend) TokenFor(userID string) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		ID:        uuid.NewString(),
	})
	s, err := tok.SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	b.mu.Lock()
	b.tokens[s] = userID
	b.mu.Unlock()
	return s
}

// FailProfiles makes GET /users/{id} answer status. Zero restores normal
// behaviour.
func (b *Backend) FailProfiles(status int) {
	b.mu.Lock()
	b.profileStatus = status
	b.mu.Unlock()
}

// HoldProfiles makes GET /users/{id} block until the returned func is
// called.
func (b *Backend) HoldProfiles() (release func()) {
	gate := make(chan struct{})
	b.mu.Lock()
	b.profileGate = gate
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.profileGate = nil
			b.mu.Unlock()
			close(gate)
		})
	}
}

// HoldProfile blocks GET /users/{userID} until answer is called. A non-zero
// status fails the pending request with it; zero lets it through.
func (b *Backend) HoldProfile(userID string) (answer func(status int)) {
	ch := make(chan int, 1)
	b.mu.Lock()
	b.profileHolds[userID] = ch
	b.mu.Unlock()

	var once sync.Once
	return func(status int) {
		once.Do(func() {
			b.mu.Lock()
			delete(b.profileHolds, userID)
			b.mu.Unlock()
			ch <- status
		})
	}
}

// Calls lists "METHOD /path" for every request seen, in order.
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// CountCalls returns how many requests matched "METHOD /path".
func (b *Backend) CountCalls(call string) int {
	n := 0
	for _, c := range b.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

// Authorizations lists the Authorization header of every request seen.
func (b *Backend) Authorizations() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.authz...)
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls = append(b.calls, r.Method+" "+r.URL.Path)
	b.authz = append(b.authz, r.Header.Get("Authorization"))
	b.mu.Unlock()
	b.mux.ServeHTTP(w, r)
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var in api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		detail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	b.mu.Lock()
	pw, ok := b.passwords[in.Email]
	var id string
	for _, u := range b.users {
		if u.Email == in.Email {
			id = u.ID
		}
	}
	b.mu.Unlock()

	if !ok || pw != in.Password {
		detail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	writeJSON(w, http.StatusOK, api.LoginResponse{AccessToken: b.TokenFor(id), TokenType: "bearer"})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var in api.Registration
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		detail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	b.mu.Lock()
	_, taken := b.passwords[in.Email]
	b.mu.Unlock()
	if taken {
		detail(w, http.StatusBadRequest, "Email already registered")
		return
	}

	role := in.Role
	if role == "" {
		role = auth.RoleCandidate
	}
	u := b.AddUser(auth.User{
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      role,
		CreatedAt: auth.Timestamp{Time: time.Now().UTC()},
	}, in.Password)
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) protected(h func(http.ResponseWriter, *http.Request, auth.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		id, known := b.tokens[token]
		caller, exists := b.users[id]
		b.mu.Unlock()
		if !ok || !known || !exists {
			detail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		h(w, r, caller)
	}
}

func (b *Backend) listUsers(w http.ResponseWriter, r *http.Request, _ auth.User) {
	b.mu.Lock()
	out := make([]auth.User, 0, len(b.users))
	for _, u := range b.users {
		out = append(out, u)
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getUser(w http.ResponseWriter, r *http.Request, _ auth.User) {
	b.mu.Lock()
	status, gate := b.profileStatus, b.profileGate
	hold := b.profileHolds[r.PathValue("id")]
	b.mu.Unlock()

	if hold != nil {
		select {
		case held := <-hold:
			if held != 0 {
				status = held
			}
		case <-r.Context().Done():
			return
		}
	}

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}
	if status != 0 {
		detail(w, status, http.StatusText(status))
		return
	}

	b.mu.Lock()
	u, ok := b.users[r.PathValue("id")]
	b.mu.Unlock()
	if !ok {
		detail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) deleteUser(w http.ResponseWriter, r *http.Request, _ auth.User) {
	b.mu.Lock()
	u, ok := b.users[r.PathValue("id")]
	if ok {
		delete(b.users, u.ID)
		delete(b.passwords, u.Email)
	}
	b.mu.Unlock()
	if !ok {
		detail(w, http.StatusNotFound, "User not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) listOffers(w http.ResponseWriter, r *http.Request, _ auth.User) {
	b.mu.Lock()
	out := make([]api.JobOffer, 0, len(b.offers))
	for _, o := range b.offers {
		out = append(out, o)
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createOffer(w http.ResponseWriter, r *http.Request, caller auth.User) {
	if caller.Role == auth.RoleCandidate {
		detail(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	var in api.JobOfferInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		detail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	o := api.JobOffer{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Criteria:    in.Criteria,
		CreatedBy:   caller.ID,
		CreatedAt:   auth.Timestamp{Time: time.Now().UTC()},
	}
	b.mu.Lock()
	b.offers[o.ID] = o
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, o)
}

func (b *Backend) getOffer(w http.ResponseWriter, r *http.Request, _ auth.User) {
	b.mu.Lock()
	o, ok := b.offers[r.PathValue("id")]
	b.mu.Unlock()
	if !ok {
		detail(w, http.StatusNotFound, "Job offer not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (b *Backend) deleteOffer(w http.ResponseWriter, r *http.Request, _ auth.User) {
	b.mu.Lock()
	_, ok := b.offers[r.PathValue("id")]
	delete(b.offers, r.PathValue("id"))
	b.mu.Unlock()
	if !ok {
		detail(w, http.StatusNotFound, "Job offer not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func detail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}
