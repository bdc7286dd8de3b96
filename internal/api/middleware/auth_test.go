// Bearer JWT AuthMiddleware tests.
// Covers: token absent, invalid, expired, foreign issuer, valid, and context injection.
package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/matiasleandrokruk/seekassist/internal/api/ctxkeys"
	"github.com/matiasleandrokruk/seekassist/internal/api/middleware"
	pkgauth "github.com/matiasleandrokruk/seekassist/pkg/auth"
)

const testSecret = "test-secret-key-32-chars-min!!!"

// TestMain sets JWT_SECRET before any test runs; GenerateJWT fails without it.
func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", testSecret) //nolint:errcheck
	os.Exit(m.Run())
}

// ===== HELPER =====

// nextHandler returns an http.Handler that sets called=true and records the context.
func nextHandler(called *bool, capturedCtx *context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		if capturedCtx != nil {
			*capturedCtx = r.Context()
		}
		w.WriteHeader(http.StatusOK)
	})
}

// makeRequest creates a GET request with an optional Authorization header.
func makeRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func assertRejected(t *testing.T, req *http.Request) {
	t.Helper()

	called := false
	handler := middleware.AuthMiddleware(nextHandler(&called, nil))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want %d", rr.Code, http.StatusUnauthorized)
	}
	if called {
		t.Error("next handler should NOT be called")
	}
}

// ===== TESTS: REJECTED =====

func TestAuthMiddleware_NoToken(t *testing.T) {
	t.Parallel()
	assertRejected(t, makeRequest(""))
}

// TestAuthMiddleware_EmptyBearerValue verifies that "Bearer " with empty token returns 401.
func TestAuthMiddleware_EmptyBearerValue(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	req.Header.Set("Authorization", "Bearer ")
	assertRejected(t, req)
}

func TestAuthMiddleware_WrongScheme(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assertRejected(t, req)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	t.Parallel()
	assertRejected(t, makeRequest("not.a.jwt"))
}

// TestAuthMiddleware_TamperedToken verifies that a token with a modified signature is rejected.
func TestAuthMiddleware_TamperedToken(t *testing.T) {
	t.Parallel()

	validToken, err := pkgauth.GenerateJWT("panel")
	if err != nil {
		t.Fatalf("GenerateJWT error = %v", err)
	}
	tampered := validToken[:len(validToken)-4] + "XXXX"
	assertRejected(t, makeRequest(tampered))
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	t.Parallel()

	token := signClaims(t, jwt.RegisteredClaims{
		Issuer:    pkgauth.Issuer,
		Subject:   "panel",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Second)),
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
	})
	assertRejected(t, makeRequest(token))
}

func TestAuthMiddleware_ForeignIssuer(t *testing.T) {
	t.Parallel()

	token := signClaims(t, jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   "panel",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	assertRejected(t, makeRequest(token))
}

// ===== TESTS: VALID TOKEN =====

func TestAuthMiddleware_ValidToken_InjectsClient(t *testing.T) {
	t.Parallel()

	token, err := pkgauth.GenerateJWT("vscode-panel")
	if err != nil {
		t.Fatalf("GenerateJWT error = %v", err)
	}

	called := false
	var capturedCtx context.Context
	handler := middleware.AuthMiddleware(nextHandler(&called, &capturedCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, makeRequest(token))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d; want %d", rr.Code, http.StatusOK)
	}
	if !called {
		t.Fatal("next handler SHOULD be called for valid token")
	}
	if got := ctxkeys.String(capturedCtx, ctxkeys.Client); got != "vscode-panel" {
		t.Errorf("context Client = %q; want %q", got, "vscode-panel")
	}
}

// TestAuthMiddleware_ErrorResponseIsJSON verifies that 401 response is JSON.
func TestAuthMiddleware_ErrorResponseIsJSON(t *testing.T) {
	t.Parallel()

	called := false
	handler := middleware.AuthMiddleware(nextHandler(&called, nil))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, makeRequest(""))

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q; want %q", ct, "application/json")
	}
}

// ===== HELPER: hand-built tokens =====

func signClaims(t *testing.T, rc jwt.RegisteredClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &pkgauth.Claims{RegisteredClaims: rc})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signClaims: failed to sign: %v", err)
	}
	return signed
}
