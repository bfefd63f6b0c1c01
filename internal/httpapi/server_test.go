// ABOUTME: End-to-end handler tests exercising the full routing tree
// ABOUTME: Uses a real SQLite store and JWT codec behind httptest

package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernworks/authgate/internal/auth"
	"github.com/fernworks/authgate/internal/config"
	"github.com/fernworks/authgate/internal/store"
)

const apiTestSecret = "httpapi-test-jwt-secret-32-bytes"

type testServer struct {
	server *Server
	store  *store.SQLiteStore
	codec  *auth.JWTCodec
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	codec, err := auth.NewJWTCodec([]byte(apiTestSecret))
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{HTTPAddr: "127.0.0.1:0"},
		Auth: config.AuthConfig{
			JWTSecret:     apiTestSecret,
			TokenLifetime: time.Hour,
			LookupTimeout: time.Second,
		},
	}

	return &testServer{
		server: New(cfg, st, codec, nil),
		store:  st,
		codec:  codec,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.TokenCookieName, Value: token})
	}

	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	return rec
}

// seedUser inserts a user directly and returns it with a valid session token.
func (ts *testServer) seedUser(t *testing.T, email, password string, role store.Role) (*store.User, string) {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	user := &store.User{
		ID:           uuid.NewString(),
		Name:         "Seeded User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, ts.store.CreateUser(t.Context(), user))

	token, err := ts.codec.Issue(user.ID, time.Hour)
	require.NoError(t, err)
	return user, token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRegister_Success(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, "POST", "/api/auth/register", map[string]string{
		"name":            "Alice",
		"email":           "alice@example.com",
		"password":        "password123",
		"passwordConfirm": "password123",
	}, "")

	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])

	user := body["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "Alice", user["name"])
	assert.Equal(t, "alice@example.com", user["email"])
	assert.Equal(t, "user", user["role"])
	assert.Equal(t, false, user["verified"])
	assert.NotContains(t, rec.Body.String(), "password")

	stored, err := ts.store.GetUserByEmail(t.Context(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedUser(t, "taken@example.com", "password123", store.RoleUser)

	rec := ts.do(t, "POST", "/api/auth/register", map[string]string{
		"name":            "Copycat",
		"email":           "taken@example.com",
		"password":        "password123",
		"passwordConfirm": "password123",
	}, "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, msgEmailExists, body["message"])
}

func TestRegister_Validation(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing name", map[string]string{
			"email": "a@example.com", "password": "password123", "passwordConfirm": "password123",
		}},
		{"bad email", map[string]string{
			"name": "A", "email": "not-an-email", "password": "password123", "passwordConfirm": "password123",
		}},
		{"short password", map[string]string{
			"name": "A", "email": "a@example.com", "password": "short", "passwordConfirm": "short",
		}},
		{"mismatched confirmation", map[string]string{
			"name": "A", "email": "a@example.com", "password": "password123", "passwordConfirm": "different123",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, "POST", "/api/auth/register", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "fail", decodeBody(t, rec)["status"])
		})
	}
}

func TestRegister_MalformedJSON(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_Success(t *testing.T) {
	ts := setupTestServer(t)
	user, _ := ts.seedUser(t, "bob@example.com", "password123", store.RoleUser)

	rec := ts.do(t, "POST", "/api/auth/login", map[string]string{
		"email":    "bob@example.com",
		"password": "password123",
	}, "")

	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	token, ok := body["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	subject, err := ts.codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, auth.TokenCookieName, cookie.Name)
	assert.Equal(t, token, cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int(time.Hour.Seconds()), cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedUser(t, "carol@example.com", "password123", store.RoleUser)

	wrongPassword := ts.do(t, "POST", "/api/auth/login", map[string]string{
		"email":    "carol@example.com",
		"password": "wrongpassword",
	}, "")
	unknownEmail := ts.do(t, "POST", "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	}, "")

	// Unknown email and wrong password must be indistinguishable
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Equal(t, msgWrongCredentials, decodeBody(t, wrongPassword)["message"])
}

func TestLogout(t *testing.T) {
	ts := setupTestServer(t)
	_, token := ts.seedUser(t, "dave@example.com", "password123", store.RoleUser)

	rec := ts.do(t, "GET", "/api/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", decodeBody(t, rec)["status"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.TokenCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestLogout_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, "GET", "/api/auth/logout", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe(t *testing.T) {
	ts := setupTestServer(t)
	user, token := ts.seedUser(t, "erin@example.com", "password123", store.RoleModerator)

	rec := ts.do(t, "GET", "/api/users/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	got := body["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, user.ID, got["id"])
	assert.Equal(t, "erin@example.com", got["email"])
	assert.Equal(t, "moderator", got["role"])
	assert.NotContains(t, rec.Body.String(), user.PasswordHash)
}

func TestMe_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, "GET", "/api/users/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, auth.MsgTokenNotProvided, decodeBody(t, rec)["message"])
}

func TestMe_BearerHeader(t *testing.T) {
	ts := setupTestServer(t)
	user, token := ts.seedUser(t, "frank@example.com", "password123", store.RoleUser)

	req := httptest.NewRequest("GET", "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody(t, rec)["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, user.ID, got["id"])
}

func TestListUsers_AdminOnly(t *testing.T) {
	ts := setupTestServer(t)
	_, userToken := ts.seedUser(t, "user@example.com", "password123", store.RoleUser)
	_, modToken := ts.seedUser(t, "mod@example.com", "password123", store.RoleModerator)

	for _, token := range []string{userToken, modToken} {
		rec := ts.do(t, "GET", "/api/users", nil, token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, auth.MsgPermissionDenied, decodeBody(t, rec)["message"])
	}
}

func TestListUsers_Pagination(t *testing.T) {
	ts := setupTestServer(t)
	_, adminToken := ts.seedUser(t, "admin@example.com", "password123", store.RoleAdmin)
	for i := 0; i < 4; i++ {
		ts.seedUser(t, fmt.Sprintf("user%d@example.com", i), "password123", store.RoleUser)
	}

	rec := ts.do(t, "GET", "/api/users?page=1&limit=3", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(3), body["results"])
	assert.Len(t, body["users"].([]any), 3)

	rec = ts.do(t, "GET", "/api/users?page=2&limit=3", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeBody(t, rec)["results"])

	// Garbage paging params fall back to defaults
	rec = ts.do(t, "GET", "/api/users?page=zero&limit=-1", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(5), decodeBody(t, rec)["results"])
}

func TestHealthz(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, "GET", "/healthz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestRegisterThenLoginFlow(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, "POST", "/api/auth/register", map[string]string{
		"name":            "Flow User",
		"email":           "flow@example.com",
		"password":        "password123",
		"passwordConfirm": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, "POST", "/api/auth/login", map[string]string{
		"email":    "flow@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody(t, rec)["token"].(string)

	rec = ts.do(t, "GET", "/api/users/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody(t, rec)["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "flow@example.com", got["email"])
}
