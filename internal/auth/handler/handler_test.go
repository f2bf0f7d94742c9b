package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal/internal/api/apitest"
	"jobportal/internal/auth"
	"jobportal/internal/guard"
	"jobportal/internal/middleware"
	"jobportal/internal/session"
	"jobportal/internal/tokenstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type gateway struct {
	backend *apitest.Backend
	router  *gin.Engine
	cookie  *http.Cookie
}

func newGateway(t *testing.T) *gateway {
	t.Helper()
	b := apitest.NewBackend(t)
	client := b.Client(t)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.SessionLoader(middleware.SessionLoaderConfig{
		API:    client,
		Stores: tokenstore.NewMemoryFactory(time.Hour),
	}))
	NewHandler(client, session.CookieOptions{}, nil).
		RegisterRoutes(r, middleware.RequireGuard("private", guard.Private, nil))

	return &gateway{backend: b, router: r}
}

// send keeps the session cookie across calls like a browser would.
func (g *gateway) send(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.cookie != nil {
		req.AddCookie(g.cookie)
	}
	rec := httptest.NewRecorder()
	g.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			if c.MaxAge < 0 {
				g.cookie = nil
			} else {
				g.cookie = c
			}
		}
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestLoginMeLogout(t *testing.T) {
	g := newGateway(t)
	g.backend.AddUser(auth.User{Email: "boss@example.com", Role: auth.RoleEmployer}, "pw")

	rec := g.send(http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = g.send(http.MethodPost, "/login", `{"email":"boss@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "/employer/dashboard", body["redirect"])
	assert.Equal(t, "employer", body["user"].(map[string]any)["role"])

	rec = g.send(http.MethodGet, "/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "boss@example.com", decode(t, rec)["email"])

	rec = g.send(http.MethodPost, "/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = g.send(http.MethodPost, "/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = g.send(http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginErrors(t *testing.T) {
	g := newGateway(t)
	g.backend.AddUser(auth.User{Email: "a@example.com", Role: auth.RoleCandidate}, "pw")

	rec := g.send(http.MethodPost, "/login", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = g.send(http.MethodPost, "/login", `{"email":"a@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"backend_error","message":"Incorrect email or password"}}`, rec.Body.String())
}

func TestRegister(t *testing.T) {
	g := newGateway(t)

	rec := g.send(http.MethodPost, "/register",
		`{"email":"new@example.com","password":"pw","first_name":"Ada","last_name":"Ng"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "/", body["redirect"])
	assert.Equal(t, "candidate", body["user"].(map[string]any)["role"])
	assert.Equal(t, 1, g.backend.CountCalls("POST /login"))

	rec = g.send(http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = g.send(http.MethodPost, "/register",
		`{"email":"x@example.com","password":"pw","first_name":"A","last_name":"B","role":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginSuccessAdoptsToken(t *testing.T) {
	g := newGateway(t)
	u := g.backend.AddUser(auth.User{Email: "g@example.com", Role: auth.RoleAdmin}, "pw")

	rec := g.send(http.MethodGet, "/login/success?token="+g.backend.TokenFor(u.ID), "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))

	rec = g.send(http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = g.send(http.MethodGet, "/login/success?token=garbage", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = g.send(http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "failed adoption logs out")
}

func TestGoogleLogin(t *testing.T) {
	g := newGateway(t)
	rec := g.send(http.MethodGet, "/auth/google/login", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, g.backend.Server.URL+"/auth/google/login", rec.Header().Get("Location"))
}
