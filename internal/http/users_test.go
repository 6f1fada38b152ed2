package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/backend-template/internal/audit"
	"github.com/mrlokans/backend-template/internal/auth"
	"github.com/mrlokans/backend-template/internal/config"
	"github.com/mrlokans/backend-template/internal/database"
	auditdb "github.com/mrlokans/backend-template/internal/database/audit"
	"github.com/mrlokans/backend-template/internal/database/users"
)

type testApp struct {
	router  *gin.Engine
	tokens  *auth.TokenService
	limiter *auth.RateLimiter
	cleanup func()
}

func setupTestApp(t *testing.T) *testApp {
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + t.Name() + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	authCfg := config.Auth{
		TokenSecret:      "test-secret",
		TokenExpiry:      time.Hour,
		BcryptCost:       4,
		MaxLoginAttempts: 3,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	}

	tokens := auth.NewTokenService(authCfg.TokenSecret, authCfg.TokenExpiry)
	service, err := auth.NewService(users.NewRepository(db.DB), tokens, authCfg)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditService := audit.NewService(auditdb.NewRepository(db.DB), logger)
	limiter := auth.NewRateLimiter(authCfg)

	cfg := &config.Config{
		HTTP: config.HTTP{Mode: config.ModeDevelopment},
		CORS: config.CORS{Origin: "http://localhost:3000", Credentials: true},
		Auth: authCfg,
	}

	router := NewRouter(RouterConfig{
		Database:     db,
		AuthService:  service,
		TokenService: tokens,
		AuditService: auditService,
		RateLimiter:  limiter,
		Config:       cfg,
		Logger:       logger,
		Version:      "test",
	})

	return &testApp{
		router:  router,
		tokens:  tokens,
		limiter: limiter,
		cleanup: func() {
			limiter.Stop()
			db.Close()
			os.Remove(dbPath)
		},
	}
}

func (a *testApp) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (a *testApp) register(t *testing.T, username, password string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/users/register", gin.H{
		"username": username, "password": password,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	user := body["user"].(map[string]any)
	return user["id"].(string)
}

func (a *testApp) login(t *testing.T, username, password string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/users/login", gin.H{
		"username": username, "password": password,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeBody(t, w)["token"].(string)
}

func TestRegister(t *testing.T) {
	app := setupTestApp(t)
	defer app.cleanup()

	w := app.do(t, http.MethodPost, "/users/register", gin.H{
		"username": "alice", "password": "secret-password",
	}, "")

	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "User registered", body["message"])

	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.NotEmpty(t, user["id"])
	// Password hash must never appear in responses.
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegister_ValidationFailures(t *testing.T) {
	app := setupTestApp(t)
	defer app.cleanup()

	tests := []struct {
		name    string
		payload gin.H
	}{
		{"missing username", gin.H{"password": "secret-password"}},
		{"missing password", gin.H{"username": "alice"}},
		{"short username", gin.H{"username": "ab", "password": "secret-password"}},
		{"oversized password", gin.H{"username": "alice", "password": strings.Repeat("p", 80)}},
		{"invalid characters", gin.H{"username": "alice!", "password": "secret-password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(t, http.MethodPost, "/users/register", tt.payload, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "ValidationError", decodeBody(t, w)["status"])
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	app := setupTestApp(t)
	defer app.cleanup()

	app.register(t, "alice", "secret-password")

	w := app.do(t, http.MethodPost, "/users/register", gin.H{
		"username": "alice", "password": "other-password",
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ValidationError", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestLogin(t *testing.T) {
	app := setupTestApp(t)
	defer app.cleanup()

	userID := app.register(t, "alice", "secret-password")

	w := app.do(t, http.MethodPost, "/users/login", gin.H{
		"username": "alice", "password": "secret-password",
	}, "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Login successful", body["message"])
	assert.Equal(t, userID, body["userId"])

	// Returned token must pass verification.
	claims, err := app.tokens.Verify(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID())
	assert.Equal(t, "alice", claims.Username)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	app := setupTestApp(t)
	defer app.cleanup()

	app.register(t, "alice", "secret-password")

	tests := []struct {
		name    string
		payload gin.H
	}{
		{"wrong password", gin.H{"username": "alice", "password": "wrong-password"}},
		{"unknown user", gin.H{"username": "nosuchuser", "password": "secret-password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(t, http.MethodPost, "/users/login", tt.payload, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			body := decodeBody(t, w)
			assert.Equal(t, "UnauthorizedError", body["status"])
			// Same message for both cases so usernames cannot be probed.
			assert.Equal(t, "Invalid username or password", body["message"])
		})
	}
}

func TestLogin_RateLimited(t *testing.T) {
	app := setupTestApp(t)
	defer app.cleanup()

	app.register(t, "alice", "secret-password")

	// MaxLoginAttempts is 3 in the test config.
	for i := 0; i < 3; i++ {
		w := app.do(t, http.MethodPost, "/users/login", gin.H{
			"username": "alice", "password": "wrong-password",
		}, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := app.do(t, http.MethodPost, "/users/login", gin.H{
		"username": "alice", "password": "secret-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "Too many login attempts, try again later", decodeBody(t, w)["message"])
}

func TestLogout(t *testing.T) {
	app := setupTestApp(t)
	defer app.cleanup()

	w := app.do(t, http.MethodPost, "/users/logout", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logout successful", decodeBody(t, w)["message"])
}

func TestListUsers(t *testing.T) {
	app := setupTestApp(t)
	defer app.cleanup()

	w := app.do(t, http.MethodGet, "/users", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	app.register(t, "alice", "secret-password")
	app.register(t, "bob", "secret-password")

	w = app.do(t, http.MethodGet, "/users", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var listed []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "alice", listed[0]["username"])
	assert.Equal(t, "bob", listed[1]["username"])
	assert.NotContains(t, w.Body.String(), "password")
}

func TestGetUserByID(t *testing.T) {
	app := setupTestApp(t)
	defer app.cleanup()

	userID := app.register(t, "alice", "secret-password")

	w := app.do(t, http.MethodGet, "/users/"+userID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, userID, body["id"])
	assert.Equal(t, "alice", body["username"])

	w = app.do(t, http.MethodGet, "/users/no-such-id", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NotFoundError", decodeBody(t, w)["status"])
}

func TestUpdatePassword(t *testing.T) {
	app := setupTestApp(t)
	defer app.cleanup()

	app.register(t, "alice", "secret-password")
	token := app.login(t, "alice", "secret-password")

	w := app.do(t, http.MethodPut, "/users/update-password", gin.H{
		"oldPassword": "secret-password", "newPassword": "brand-new-password",
	}, token)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "Password updated successfully", body["message"])
	assert.Equal(t, "alice", body["username"])

	// Old password no longer works, new one does.
	w = app.do(t, http.MethodPost, "/users/login", gin.H{
		"username": "alice", "password": "secret-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	app.login(t, "alice", "brand-new-password")
}

func TestUpdatePassword_WrongOldPassword(t *testing.T) {
	app := setupTestApp(t)
	defer app.cleanup()

	app.register(t, "alice", "secret-password")
	token := app.login(t, "alice", "secret-password")

	w := app.do(t, http.MethodPut, "/users/update-password", gin.H{
		"oldPassword": "wrong-password", "newPassword": "brand-new-password",
	}, token)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "PasswordMismatchError", decodeBody(t, w)["status"])
}

func TestUpdatePassword_RequiresToken(t *testing.T) {
	app := setupTestApp(t)
	defer app.cleanup()

	w := app.do(t, http.MethodPut, "/users/update-password", gin.H{
		"oldPassword": "a", "newPassword": "b",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UnauthorizedError", decodeBody(t, w)["status"])
}

func TestUpdatePassword_ExpiredToken(t *testing.T) {
	app := setupTestApp(t)
	defer app.cleanup()

	userID := app.register(t, "alice", "secret-password")

	expired := auth.NewTokenService("test-secret", -time.Hour)
	token, err := expired.Issue(userID, "alice")
	require.NoError(t, err)

	w := app.do(t, http.MethodPut, "/users/update-password", gin.H{
		"oldPassword": "secret-password", "newPassword": "brand-new-password",
	}, token)

	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "InvalidTokenError", body["status"])
	assert.Equal(t, "Token expired", body["message"])
}

func TestDeleteUser(t *testing.T) {
	app := setupTestApp(t)
	defer app.cleanup()

	userID := app.register(t, "alice", "secret-password")
	token := app.login(t, "alice", "secret-password")

	w := app.do(t, http.MethodDelete, "/users/"+userID, nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, fmt.Sprintf("User with id %s deleted", userID), decodeBody(t, w)["message"])

	w = app.do(t, http.MethodGet, "/users/"+userID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteUser_OtherAccountForbidden(t *testing.T) {
	app := setupTestApp(t)
	defer app.cleanup()

	app.register(t, "alice", "secret-password")
	bobID := app.register(t, "bob", "secret-password")
	aliceToken := app.login(t, "alice", "secret-password")

	w := app.do(t, http.MethodDelete, "/users/"+bobID, nil, aliceToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "AuthorizationError", decodeBody(t, w)["status"])

	// Bob's account is untouched.
	w = app.do(t, http.MethodGet, "/users/"+bobID, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteUser_RequiresToken(t *testing.T) {
	app := setupTestApp(t)
	defer app.cleanup()

	userID := app.register(t, "alice", "secret-password")

	w := app.do(t, http.MethodDelete, "/users/"+userID, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	app := setupTestApp(t)
	defer app.cleanup()

	w := app.do(t, http.MethodGet, "/no-such-route", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NotFoundError", decodeBody(t, w)["status"])
}

func TestWelcomeRoute(t *testing.T) {
	app := setupTestApp(t)
	defer app.cleanup()

	w := app.do(t, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Welcome to the backend template!", decodeBody(t, w)["message"])
}

func TestSecurityHeaders(t *testing.T) {
	app := setupTestApp(t)
	defer app.cleanup()

	w := app.do(t, http.MethodGet, "/", nil, "")
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
