package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glitchlobby/lobby-be/internal/auth"
	"github.com/glitchlobby/lobby-be/internal/database"
	"github.com/glitchlobby/lobby-be/internal/services"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	publicDir := t.TempDir()
	pages := map[string]string{
		"index.html":    "<h1>Welcome</h1>",
		"register.html": "<h1>Register</h1>",
		"login.html":    "<h1>Log in</h1>",
		"lobby.html":    "<h1>Lobby</h1>",
	}
	for name, body := range pages {
		require.NoError(t, os.WriteFile(filepath.Join(publicDir, name), []byte(body), 0644))
	}

	users := services.NewUserService(db)
	sessions := services.NewSessionService(db, time.Hour)
	gate := auth.New(sessions, []byte("test-secret"))

	srv := httptest.NewServer(NewRouter(gate, users, sessions, publicDir, time.Hour, "http://localhost:3000"))
	t.Cleanup(srv.Close)
	return srv
}

// newClient returns a client with its own cookie jar that does not follow
// redirects, so location headers can be asserted directly.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, client *http.Client, rawURL string, values url.Values) *http.Response {
	t.Helper()
	res, err := client.Post(rawURL, "application/x-www-form-urlencoded", strings.NewReader(values.Encode()))
	require.NoError(t, err)
	return res
}

func readBody(t *testing.T, res *http.Response) string {
	t.Helper()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(body)
}

type usersResponse struct {
	Current *struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	} `json:"current"`
	Others []struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	} `json:"others"`
}

func getUsers(t *testing.T, client *http.Client, baseURL string) usersResponse {
	t.Helper()
	res, err := client.Get(baseURL + "/api/users")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var parsed usersResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&parsed))
	return parsed
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)
	alice := newClient(t)

	creds := url.Values{"username": {"alice"}, "password": {"pw1"}}

	// Registering a new username succeeds and authenticates the session.
	res := postForm(t, alice, srv.URL+"/register", creds)
	res.Body.Close()
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/lobby", res.Header.Get("Location"))

	res, err := alice.Get(srv.URL + "/lobby")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, readBody(t, res), "Lobby")

	// Registering the same username again fails inline and leaves the
	// original account alone.
	res = postForm(t, newClient(t), srv.URL+"/register", url.Values{"username": {"alice"}, "password": {"pw2"}})
	assert.Contains(t, readBody(t, res), "Username already taken")

	// Wrong password and unknown username produce the same message.
	res = postForm(t, newClient(t), srv.URL+"/login", url.Values{"username": {"alice"}, "password": {"wrongpw"}})
	wrongPassword := readBody(t, res)
	assert.Contains(t, wrongPassword, "Invalid login")

	res = postForm(t, newClient(t), srv.URL+"/login", url.Values{"username": {"mallory"}, "password": {"pw1"}})
	assert.Equal(t, wrongPassword, readBody(t, res))

	// The original password still logs in, so the dup attempt changed nothing.
	relogin := newClient(t)
	res = postForm(t, relogin, srv.URL+"/login", creds)
	res.Body.Close()
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/lobby", res.Header.Get("Location"))

	parsed := getUsers(t, relogin, srv.URL)
	require.NotNil(t, parsed.Current)
	assert.Equal(t, "alice", parsed.Current.Username)
	assert.Empty(t, parsed.Others)
}

func TestListUsersPartitionsSelfFromOthers(t *testing.T) {
	srv := newTestServer(t)

	alice := newClient(t)
	res := postForm(t, alice, srv.URL+"/register", url.Values{"username": {"alice"}, "password": {"pw1"}})
	res.Body.Close()

	bob := newClient(t)
	res = postForm(t, bob, srv.URL+"/register", url.Values{"username": {"bob"}, "password": {"pw2"}})
	res.Body.Close()

	parsed := getUsers(t, alice, srv.URL)
	require.NotNil(t, parsed.Current)
	assert.Equal(t, "alice", parsed.Current.Username)
	require.Len(t, parsed.Others, 1)
	assert.Equal(t, "bob", parsed.Others[0].Username)
	for _, other := range parsed.Others {
		assert.NotEqual(t, parsed.Current.ID, other.ID)
	}
}

func TestGatedRoutesRedirectAnonymousToLogin(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	for _, path := range []string{"/lobby", "/api/users"} {
		res, err := client.Get(srv.URL + path)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusFound, res.StatusCode, path)
		assert.Equal(t, "/login", res.Header.Get("Location"), path)
	}
}

func TestLandingRedirectsAuthenticatedToLobby(t *testing.T) {
	srv := newTestServer(t)

	anonymous := newClient(t)
	res, err := anonymous.Get(srv.URL + "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, readBody(t, res), "Welcome")

	alice := newClient(t)
	res = postForm(t, alice, srv.URL+"/register", url.Values{"username": {"alice"}, "password": {"pw1"}})
	res.Body.Close()

	res, err = alice.Get(srv.URL + "/")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/lobby", res.Header.Get("Location"))
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t)
	alice := newClient(t)

	res := postForm(t, alice, srv.URL+"/register", url.Values{"username": {"alice"}, "password": {"pw1"}})
	res.Body.Close()

	res, err := alice.Get(srv.URL + "/logout")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/", res.Header.Get("Location"))

	res, err = alice.Get(srv.URL + "/lobby")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/login", res.Header.Get("Location"))
}

func TestDeleteAccount(t *testing.T) {
	srv := newTestServer(t)

	alice := newClient(t)
	res := postForm(t, alice, srv.URL+"/register", url.Values{"username": {"alice"}, "password": {"pw1"}})
	res.Body.Close()

	bob := newClient(t)
	res = postForm(t, bob, srv.URL+"/register", url.Values{"username": {"bob"}, "password": {"pw2"}})
	res.Body.Close()

	res = postForm(t, alice, srv.URL+"/delete", nil)
	res.Body.Close()
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/", res.Header.Get("Location"))

	// Alice's session died with the account.
	res, err := alice.Get(srv.URL + "/lobby")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/login", res.Header.Get("Location"))

	// Alice can no longer log in; bob's session is untouched.
	res = postForm(t, newClient(t), srv.URL+"/login", url.Values{"username": {"alice"}, "password": {"pw1"}})
	assert.Contains(t, readBody(t, res), "Invalid login")

	parsed := getUsers(t, bob, srv.URL)
	require.NotNil(t, parsed.Current)
	assert.Equal(t, "bob", parsed.Current.Username)
	assert.Empty(t, parsed.Others)
}

func TestRegisterAcceptsJSON(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	res, err := client.Post(srv.URL+"/register", "application/json",
		strings.NewReader(`{"username":"alice","password":"pw1"}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/lobby", res.Header.Get("Location"))

	parsed := getUsers(t, client, srv.URL)
	require.NotNil(t, parsed.Current)
	assert.Equal(t, "alice", parsed.Current.Username)
}

func TestRegisterRequiresUsernameAndPassword(t *testing.T) {
	srv := newTestServer(t)

	res := postForm(t, newClient(t), srv.URL+"/register", url.Values{"username": {"alice"}})
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = postForm(t, newClient(t), srv.URL+"/register", url.Values{"password": {"pw1"}})
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
