package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/db"
	"github.com/geocoder89/taskhub/internal/domain/user"
	apphttp "github.com/geocoder89/taskhub/internal/http"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func testConfig() config.Config {
	return config.Config{
		Env:                 "test",
		Port:                0,
		JWTSecret:           "test-secret-key",
		JWTAccessTTLMinutes: 60,
		JWTRefreshTTLDays:   7,
	}
}

// setupTestRouter connects to TEST_DB_DSN and applies migrations. The
// whole integration suite is skipped when the variable is unset so the
// unit tests stay runnable without a database.
func setupTestRouter(t *testing.T) (*gin.Engine, *pgxpool.Pool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")

	if dsn == "" {
		t.Skip("TEST_DB_DSN not set, skipping integration tests")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)

	if err != nil {
		t.Fatalf("Failed to create pgx pool: %v", err)
	}

	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	router := apphttp.NewRouter(logger, pool, testConfig())

	return router, pool
}

func resetDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE tasks, projects, categories, refresh_tokens, users
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

type tokenResponse struct {
	AccessToken string    `json:"accessToken"`
	User        user.User `json:"user"`
}

type apiErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func extractRefreshCookie(t *testing.T, response *http.Response) *http.Cookie {
	t.Helper()

	for _, c := range response.Cookies() {
		if c.Name == "refresh_token" {
			return c
		}
	}

	t.Fatalf("refresh_token cookie not found in response")

	return nil
}

// doRequest runs a request through the router. token is the bearer
// access token ("" for unauthenticated calls).

func doRequest(router http.Handler, method, path, token, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, *http.Response) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w, w.Result()
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

// signupUser creates an account and returns its access token and id.
func signupUser(t *testing.T, router http.Handler, email string) (string, int64) {
	t.Helper()

	body := fmt.Sprintf(`{"name":"Sam Doe","email":%q,"password":"password123"}`, email)

	w, _ := doRequest(router, http.MethodPost, "/auth/signup", "", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("signup got status %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp tokenResponse
	mustReadJSON(t, w, &resp)

	if strings.TrimSpace(resp.AccessToken) == "" {
		t.Fatalf("signup expected accessToken, got empty")
	}

	return resp.AccessToken, resp.User.ID
}

func TestAuthIntegration_Signup_Refresh_Logout(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)

	defer resetDB(t, pool)

	signupBody := `{"name":"Sam Doe","email":"sam@example.com","password":"password123"}`

	w, response := doRequest(router, http.MethodPost, "/auth/signup", "", signupBody)

	if w.Code != http.StatusCreated {
		t.Fatalf("signup got status %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}

	var signupToken tokenResponse

	mustReadJSON(t, w, &signupToken)

	if strings.TrimSpace(signupToken.AccessToken) == "" {
		t.Fatalf("signup expected accessToken, got empty")
	}

	signupRefresh := extractRefreshCookie(t, response)

	// refresh (happy path)

	w2, response2 := doRequest(router, http.MethodPost, "/auth/refresh", "", "", signupRefresh)

	if w2.Code != http.StatusOK {
		t.Fatalf("refresh got status %d, want %d, body=%s", w2.Code, http.StatusOK, w2.Body.String())
	}

	var refreshed tokenResponse
	mustReadJSON(t, w2, &refreshed)

	if strings.TrimSpace(refreshed.AccessToken) == "" {
		t.Fatalf("refresh expected access token, got empty")
	}

	rotatedRefresh := extractRefreshCookie(t, response2)

	// refresh with the OLD cookie must now fail (rotation)

	w3, _ := doRequest(router, http.MethodPost, "/auth/refresh", "", "", signupRefresh)
	if w3.Code != http.StatusUnauthorized {
		t.Fatalf("refresh(old cookie) got status %d, want %d, body=%s", w3.Code, http.StatusUnauthorized, w3.Body.String())
	}

	// the rotated cookie still works

	w4, _ := doRequest(router, http.MethodPost, "/auth/refresh", "", "", rotatedRefresh)

	if w4.Code != http.StatusOK {
		t.Fatalf("refresh(new cookie) got status %d, want %d, body=%s", w4.Code, http.StatusOK, w4.Body.String())
	}

	// logout revokes and clears the cookie

	w5, response5 := doRequest(router, http.MethodPost, "/auth/logout", "", "", rotatedRefresh)

	if w5.Code != http.StatusNoContent {
		t.Fatalf("logout got status %d, want %d, body=%s", w5.Code, http.StatusNoContent, w5.Body.String())
	}

	cleared := false

	for _, c := range response5.Cookies() {
		if c.Name == "refresh_token" && (c.MaxAge < 0 || c.Value == "") {
			cleared = true
		}
	}

	if !cleared {
		t.Fatalf("expected logout to clear refresh_token cookie")
	}

	// refresh after logout must fail

	w6, _ := doRequest(router, http.MethodPost, "/auth/refresh", "", "", rotatedRefresh)
	if w6.Code != http.StatusUnauthorized {
		t.Fatalf("refresh(after logout) got status %d, want %d, body=%s", w6.Code, http.StatusUnauthorized, w6.Body.String())
	}
}

func TestAuthIntegration_Signup_DuplicateEmail(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)
	defer resetDB(t, pool)

	signupUser(t, router, "dupe@example.com")

	body := `{"name":"Other Sam","email":"dupe@example.com","password":"password456"}`

	w, _ := doRequest(router, http.MethodPost, "/auth/signup", "", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("signup(duplicate) got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var e apiErrorResponse
	mustReadJSON(t, w, &e)

	if e.Error.Code != "email_taken" {
		t.Fatalf("expected email_taken, got %s", e.Error.Code)
	}
}

func TestAuthIntegration_Refresh_MissingCookie(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)
	defer resetDB(t, pool)

	w, _ := doRequest(router, http.MethodPost, "/auth/refresh", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("refresh(missing cookie) got status %d, want %d, body=%s", w.Code, http.StatusUnauthorized, w.Body.String())
	}

	var e apiErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &e)
	if e.Error.Code != "no_refresh" {
		t.Fatalf("expected no_refresh, got %s", e.Error.Code)
	}
}

func TestAuthIntegration_Login_InvalidCredentials(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)
	defer resetDB(t, pool)

	// no user created
	body := `{"email":"nope@example.com","password":"wrongpass"}`
	w, _ := doRequest(router, http.MethodPost, "/auth/login", "", body)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("login(invalid creds) got status %d, want %d, body=%s", w.Code, http.StatusUnauthorized, w.Body.String())
	}
}
