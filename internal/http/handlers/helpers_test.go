package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

const testUserID int64 = 42

// fake token verifier so handler tests run behind the real auth
// middleware without minting JWTs

type fakeVerifier struct {
	userID int64
	email  string
	err    error
}

func (f *fakeVerifier) VerifyAccessToken(token string) (*auth.Claims, error) {
	if f.err != nil {
		return nil, f.err
	}

	return &auth.Claims{UserID: f.userID, Email: f.email}, nil
}

// small helper function which returns a gin engine mounting one
// authenticated handler per test

func setupAuthedRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	mw := middlewares.NewAuthMiddleware(&fakeVerifier{userID: testUserID, email: "alice@example.com"})

	r.Handle(method, path, mw.RequireAuth(), h)

	return r
}

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func doRequest(t *testing.T, r http.Handler, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if authed {
		req.Header.Set("Authorization", "Bearer test-token")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}
