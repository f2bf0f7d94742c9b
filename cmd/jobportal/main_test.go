package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal/internal/api/apitest"
	"jobportal/internal/auth"
)

type harness struct {
	backend   *apitest.Backend
	tokenFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("JOBPORTAL_CONFIG", "")
	return &harness{
		backend:   apitest.NewBackend(t),
		tokenFile: filepath.Join(t.TempDir(), "token"),
	}
}

// run executes one CLI invocation as a fresh process would.
func (h *harness) run(stdin string, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	cmd := rootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(append([]string{"--api-url", h.backend.Server.URL, "--token-file", h.tokenFile}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	h := newHarness(t)
	h.backend.AddUser(auth.User{Email: "boss@example.com", FirstName: "Ada", LastName: "Boss", Role: auth.RoleEmployer}, "pw")

	out, err := h.run("", "login", "--email", "boss@example.com", "--password", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Logged in as Ada Boss <boss@example.com> (employer). Home: /employer/dashboard\n", out)

	info, err := os.Stat(h.tokenFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out, err = h.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, `"email": "boss@example.com"`)

	_, err = h.run("", "logout")
	require.NoError(t, err)
	_, err = h.run("", "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestLoginPromptsForPassword(t *testing.T) {
	h := newHarness(t)
	h.backend.AddUser(auth.User{Email: "c@example.com", Role: auth.RoleCandidate}, "secret")

	out, err := h.run("secret\n", "login", "--email", "c@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Home: /\n")
}

func TestReadPasswordFromNonTerminalFile(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	_, err = w.WriteString("piped-secret\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var errOut bytes.Buffer
	c := &cli{in: r, errOut: &errOut}
	got, err := c.readPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "piped-secret", got)
	assert.Equal(t, "Password: ", errOut.String())
}

func TestLoginRejectedShowsBackendDetail(t *testing.T) {
	h := newHarness(t)
	h.backend.AddUser(auth.User{Email: "c@example.com", Role: auth.RoleCandidate}, "secret")

	_, err := h.run("", "login", "--email", "c@example.com", "--password", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Incorrect email or password", err.Error())
}

func TestCommandsAreGatedByRole(t *testing.T) {
	h := newHarness(t)
	h.backend.AddUser(auth.User{Email: "boss@example.com", Role: auth.RoleEmployer}, "pw")

	_, err := h.run("", "users", "list")
	assert.ErrorIs(t, err, errNotLoggedIn)

	_, err = h.run("", "login", "--email", "boss@example.com", "--password", "pw")
	require.NoError(t, err)

	_, err = h.run("", "users", "list")
	assert.EqualError(t, err, "command not available to the employer role")

	_, err = h.run("", "match", "run")
	assert.ErrorIs(t, err, errNotLoggedIn, "candidate-only commands push to login")
}

func TestEmployerJobs(t *testing.T) {
	h := newHarness(t)
	h.backend.AddUser(auth.User{Email: "boss@example.com", Role: auth.RoleEmployer}, "pw")
	_, err := h.run("", "login", "--email", "boss@example.com", "--password", "pw")
	require.NoError(t, err)

	out, err := h.run("", "jobs", "create", "--title", "Go dev", "--description", "Build things", "--criteria", `{"skills":["go"]}`)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Created job offer "))

	out, err = h.run("", "jobs", "list", "--mine")
	require.NoError(t, err)
	assert.Contains(t, out, "Go dev")
}

func TestRegister(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("", "register", "--email", "n@example.com", "--password", "pw", "--first-name", "Nia", "--last-name", "Long")
	require.NoError(t, err)
	assert.Contains(t, out, "(candidate)")

	_, err = h.run("", "register", "--email", "x@example.com", "--password", "pw", "--first-name", "A", "--last-name", "B", "--role", "admin")
	assert.Error(t, err)
}

func TestStaleTokenIsDropped(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(h.tokenFile, []byte("garbage"), 0o600))

	_, err := h.run("", "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)

	_, err = os.Stat(h.tokenFile)
	assert.True(t, os.IsNotExist(err))
}

func TestCriteriaJSON(t *testing.T) {
	assert.JSONEq(t, `{"a":1}`, string(criteriaJSON(`{"a":1}`)))
	assert.JSONEq(t, `"go, sql"`, string(criteriaJSON("go, sql")))
	assert.JSONEq(t, `""`, string(criteriaJSON("")))
}
