package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eion/technotes/internal/directory"
	"github.com/eion/technotes/internal/directory/users"
	"github.com/eion/technotes/internal/health"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	dir    *directory.Directory
}

func newTestServer(t *testing.T, hm *health.Manager) *testServer {
	t.Helper()
	dir, err := directory.New(directory.NewMemoryStores(), users.NewBcryptHasher(4), nil, zap.NewNop())
	require.NoError(t, err)
	return &testServer{
		router: NewRouter(dir, hm, RouterConfig{MaxRequestSize: 1 << 20}, zap.NewNop()),
		dir:    dir,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

func TestUserLifecycleScenario(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/users", gin.H{"username": "bob", "password": "pw1", "roles": []string{"editor"}})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "New user bob created", decodeMessage(t, w))

	w = s.do(t, http.MethodPost, "/users", gin.H{"username": "BOB", "password": "pw2", "roles": []string{"viewer"}})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Duplicate Username", decodeMessage(t, w))

	w = s.do(t, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.NotContains(t, list[0], "password")
	assert.NotContains(t, list[0], "PasswordHash")
	id := list[0]["id"].(string)

	w = s.do(t, http.MethodPatch, "/users", gin.H{"id": id, "username": "bob", "roles": []string{"editor", "admin"}, "active": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bob updated", decodeMessage(t, w))

	w = s.do(t, http.MethodDelete, "/users", gin.H{"id": id})
	require.Equal(t, http.StatusOK, w.Code)
	var reply string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Equal(t, "Username bob with ID "+id+" deleted", reply)

	w = s.do(t, http.MethodGet, "/users", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No users found", decodeMessage(t, w))
}

func TestCreateUser_BadRequests(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name string
		body any
	}{
		{"no body", nil},
		{"missing password", gin.H{"username": "ann", "roles": []string{"editor"}}},
		{"empty roles", gin.H{"username": "ann", "password": "pw", "roles": []string{}}},
		{"unknown role", gin.H{"username": "ann", "password": "pw", "roles": []string{"root"}}},
		{"roles not a list", gin.H{"username": "ann", "password": "pw", "roles": "editor"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/users", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decodeMessage(t, w))
		})
	}
}

func TestUpdateUser_Errors(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	alice, err := s.dir.Users.CreateUser(ctx, &users.CreateUserRequest{Username: "alice", Password: "pw", Roles: []string{"employee"}})
	require.NoError(t, err)
	carol, err := s.dir.Users.CreateUser(ctx, &users.CreateUserRequest{Username: "carol", Password: "pw", Roles: []string{"employee"}})
	require.NoError(t, err)

	t.Run("missing active", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, "/users", gin.H{"id": alice.ID.String(), "username": "alice", "roles": []string{"employee"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, "/users", gin.H{"id": "00000000-0000-0000-0000-000000000001", "username": "x", "roles": []string{"employee"}, "active": true})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "User not found", decodeMessage(t, w))
	})

	t.Run("taken by another user", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, "/users", gin.H{"id": carol.ID.String(), "username": "ALICE", "roles": []string{"employee"}, "active": true})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("own name with different case", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, "/users", gin.H{"id": alice.ID.String(), "username": "Alice", "roles": []string{"employee"}, "active": false})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Alice updated", decodeMessage(t, w))
	})
}

func TestDeleteUser_Outcomes(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	owner, err := s.dir.Users.CreateUser(ctx, &users.CreateUserRequest{Username: "owner", Password: "pw", Roles: []string{"manager"}})
	require.NoError(t, err)

	w := s.do(t, http.MethodPost, "/notes", gin.H{"user": owner.ID.String(), "title": "Laptop", "text": "Replace battery"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "New note created", decodeMessage(t, w))

	t.Run("missing id", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/users", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "User ID required", decodeMessage(t, w))
	})

	t.Run("has notes", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/users", gin.H{"id": owner.ID.String()})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "User has assigned notes", decodeMessage(t, w))

		_, err := s.dir.Users.GetUser(ctx, owner.ID)
		assert.NoError(t, err)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/users", gin.H{"id": "00000000-0000-0000-0000-000000000002"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "User not found", decodeMessage(t, w))
	})
}

func TestNotesRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/notes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = s.do(t, http.MethodPost, "/notes", gin.H{"user": "00000000-0000-0000-0000-000000000003", "title": "t", "text": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User not found", decodeMessage(t, w))

	w = s.do(t, http.MethodDelete, "/notes", gin.H{"id": "00000000-0000-0000-0000-000000000004"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuditRoute(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/users", gin.H{"username": "dora", "password": "pw", "roles": []string{"viewer"}})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/audit?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Entries []map[string]any `json:"entries"`
		Count   int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, users.ActionUserCreated, body.Entries[0]["action"])

	w = s.do(t, http.MethodGet, "/audit?user_id=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/audit?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fixedChecker struct{ err error }

func (f fixedChecker) HealthCheck(context.Context) error { return f.err }
func (f fixedChecker) IsCritical() bool                  { return true }
func (f fixedChecker) Name() string                      { return "database" }

func TestHealth(t *testing.T) {
	healthy := health.NewManager(zap.NewNop())
	healthy.AddChecker(fixedChecker{})
	w := newTestServer(t, healthy).do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	down := health.NewManager(zap.NewNop())
	down.AddChecker(fixedChecker{err: errors.New("connection refused")})
	w = newTestServer(t, down).do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/notes", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
