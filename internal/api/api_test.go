package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/erazemk/minirent/internal/auth"
	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/metrics"
	"github.com/erazemk/minirent/internal/model"
	"github.com/erazemk/minirent/internal/store"
)

const testJWTSecret = "test-secret"

// testEnv is a running API with one user per role.
type testEnv struct {
	t       *testing.T
	server  *httptest.Server
	db      *sql.DB
	metrics *metrics.Metrics

	adminToken, ownerToken, tenantToken, strangerToken string
	adminID, ownerID, tenantID, strangerID             int64
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	database := db.NewTestDB(t)
	m := metrics.New()
	server := httptest.NewServer(NewRouter(database, testJWTSecret, Options{Metrics: m}))
	t.Cleanup(server.Close)

	env := &testEnv{t: t, server: server, db: database, metrics: m}
	env.adminID, env.adminToken = env.user("root", model.RoleAdmin)
	env.ownerID, env.ownerToken = env.user("olga", model.RoleOwner)
	env.tenantID, env.tenantToken = env.user("tina", model.RoleTenant)
	env.strangerID, env.strangerToken = env.user("sam", model.RoleTenant)
	return env
}

// user creates an account directly in the store and signs a token for it.
func (e *testEnv) user(username, role string) (int64, string) {
	e.t.Helper()
	u, err := store.CreateUser(context.Background(), e.db, username, "unused", role, "")
	if err != nil {
		e.t.Fatalf("creating user %s: %v", username, err)
	}
	token, err := auth.GenerateToken(testJWTSecret, u.ID, u.Username, u.Role, 0)
	if err != nil {
		e.t.Fatalf("signing token: %v", err)
	}
	return u.ID, token
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

// do sends a JSON request and returns the status code and raw body.
func (e *testEnv) do(method, path, token string, body any) (int, []byte) {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e.t.Fatalf("encoding body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		e.t.Fatalf("building request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		e.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		e.t.Fatalf("reading response: %v", err)
	}
	return resp.StatusCode, data
}

// expect sends a request, checks the status and decodes the body into out
// when out is non-nil.
func (e *testEnv) expect(want int, method, path, token string, body, out any) {
	e.t.Helper()
	status, data := e.do(method, path, token, body)
	if status != want {
		e.t.Fatalf("%s %s: expected %d, got %d: %s", method, path, want, status, data)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			e.t.Fatalf("decoding %s %s: %v", method, path, err)
		}
	}
}

func TestLoginEndpoint(t *testing.T) {
	env := setupTestServer(t)

	hash, err := auth.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hashing: %v", err)
	}
	if _, err := store.CreateUser(context.Background(), env.db, "lana", hash, model.RoleTenant, ""); err != nil {
		t.Fatalf("creating user: %v", err)
	}

	var login loginResponse
	env.expect(http.StatusOK, "POST", "/api/auth/login", "", map[string]string{
		"username": "lana", "password": "correct horse",
	}, &login)
	if login.Token == "" {
		t.Fatal("empty token from login")
	}

	var me model.User
	env.expect(http.StatusOK, "GET", "/api/auth/me", login.Token, nil, &me)
	if me.Username != "lana" {
		t.Errorf("expected lana, got %q", me.Username)
	}

	env.expect(http.StatusUnauthorized, "POST", "/api/auth/login", "", map[string]string{
		"username": "lana", "password": "wrong",
	}, nil)
	env.expect(http.StatusUnauthorized, "POST", "/api/auth/login", "", map[string]string{
		"username": "nobody", "password": "whatever",
	}, nil)
}

func TestRegisterAndLogout(t *testing.T) {
	env := setupTestServer(t)

	var reg loginResponse
	env.expect(http.StatusCreated, "POST", "/api/auth/register", "", map[string]string{
		"username": "newbie", "password": "longenough", "email": "n@example.com",
	}, &reg)
	if reg.User == nil || reg.User.Role != model.RoleTenant {
		t.Fatalf("expected a tenant, got %+v", reg.User)
	}

	env.expect(http.StatusOK, "GET", "/api/auth/me", reg.Token, nil, nil)
	env.expect(http.StatusOK, "POST", "/api/auth/logout", reg.Token, nil, nil)
	env.expect(http.StatusUnauthorized, "GET", "/api/auth/me", reg.Token, nil, nil)

	// Same username again.
	env.expect(http.StatusConflict, "POST", "/api/auth/register", "", map[string]string{
		"username": "newbie", "password": "longenough",
	}, nil)
}

func TestRegisterValidation(t *testing.T) {
	env := setupTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"admin role", map[string]string{"username": "x", "password": "longenough", "role": "admin"}},
		{"short password", map[string]string{"username": "x", "password": "short"}},
		{"missing username", map[string]string{"password": "longenough"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do("POST", "/api/auth/register", "", tt.body)
			if status != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", status, body)
			}
		})
	}
}

func TestChangePassword(t *testing.T) {
	env := setupTestServer(t)

	var reg loginResponse
	env.expect(http.StatusCreated, "POST", "/api/auth/register", "", map[string]string{
		"username": "pat", "password": "first-pass",
	}, &reg)

	env.expect(http.StatusUnauthorized, "PUT", "/api/auth/password", reg.Token, map[string]string{
		"current_password": "wrong-pass", "new_password": "second-pass",
	}, nil)
	env.expect(http.StatusOK, "PUT", "/api/auth/password", reg.Token, map[string]string{
		"current_password": "first-pass", "new_password": "second-pass",
	}, nil)
	env.expect(http.StatusOK, "POST", "/api/auth/login", "", map[string]string{
		"username": "pat", "password": "second-pass",
	}, nil)
}

func TestUnauthenticatedAccess(t *testing.T) {
	env := setupTestServer(t)

	env.expect(http.StatusUnauthorized, "GET", "/api/properties", "", nil, nil)
	env.expect(http.StatusUnauthorized, "GET", "/api/rentals", "garbage", nil, nil)
}

func TestRoleBasedAccess(t *testing.T) {
	env := setupTestServer(t)

	env.expect(http.StatusForbidden, "POST", "/api/properties", env.tenantToken, map[string]any{
		"title": "Nope", "address": "Here 1", "city": "Kranj",
	}, nil)
	env.expect(http.StatusForbidden, "GET", "/api/users", env.tenantToken, nil, nil)
	env.expect(http.StatusForbidden, "GET", "/api/users", env.ownerToken, nil, nil)
	env.expect(http.StatusForbidden, "POST", "/api/amenities", env.ownerToken, map[string]string{"name": "Pool"}, nil)
	env.expect(http.StatusForbidden, "GET", "/api/stats", env.ownerToken, nil, nil)
}

func TestDeletedUserTokenRejected(t *testing.T) {
	env := setupTestServer(t)

	env.expect(http.StatusOK, "DELETE", "/api/users/"+itoa(env.strangerID), env.adminToken, nil, nil)
	env.expect(http.StatusUnauthorized, "GET", "/api/properties", env.strangerToken, nil, nil)
}

func TestUserManagement(t *testing.T) {
	env := setupTestServer(t)

	var created model.User
	env.expect(http.StatusCreated, "POST", "/api/users", env.adminToken, map[string]string{
		"username": "manager", "password": "longenough", "role": "owner",
	}, &created)

	var updated model.User
	env.expect(http.StatusOK, "PUT", "/api/users/"+itoa(created.ID), env.adminToken, map[string]string{
		"role": "tenant",
	}, &updated)
	if updated.Role != model.RoleTenant {
		t.Errorf("expected tenant, got %s", updated.Role)
	}

	env.expect(http.StatusOK, "PUT", "/api/users/"+itoa(created.ID)+"/password", env.adminToken, map[string]string{
		"password": "another-one",
	}, nil)

	// The only admin can neither demote nor delete themselves.
	env.expect(http.StatusConflict, "PUT", "/api/users/"+itoa(env.adminID), env.adminToken, map[string]string{
		"role": "owner",
	}, nil)
	env.expect(http.StatusBadRequest, "DELETE", "/api/users/"+itoa(env.adminID), env.adminToken, nil, nil)

	env.expect(http.StatusOK, "DELETE", "/api/users/"+itoa(created.ID), env.adminToken, nil, nil)
	env.expect(http.StatusNotFound, "GET", "/api/users/"+itoa(created.ID), env.adminToken, nil, nil)

	var users []model.User
	env.expect(http.StatusOK, "GET", "/api/users", env.adminToken, nil, &users)
	if len(users) != 4 {
		t.Errorf("expected 4 users, got %d", len(users))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestServer(t)

	env.expect(http.StatusOK, "GET", "/api/properties", env.tenantToken, nil, nil)

	status, body := env.do("GET", "/metrics", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if !bytes.Contains(body, []byte(`minirent_http_requests_total{code="200",method="GET"}`)) {
		t.Errorf("request counter missing from exposition:\n%s", body)
	}
}

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.ErrNotFound, http.StatusNotFound},
		{model.ErrValidation, http.StatusBadRequest},
		{model.ErrForbidden, http.StatusForbidden},
		{model.ErrInvalidTransition, http.StatusConflict},
		{model.ErrPreconditionFailed, http.StatusConflict},
		{model.ErrConflict, http.StatusConflict},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		writeError(rec, req, tt.err)
		if rec.Code != tt.want {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.want, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest("GET", "/", nil), io.ErrUnexpectedEOF)
	if bytes.Contains(rec.Body.Bytes(), []byte("unexpected EOF")) {
		t.Error("internal error details leaked to the client")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}
