package auth

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestMain sets JWT_SECRET before any test runs.
// Using os.Setenv (not t.Setenv) here because TestMain runs before t is available.
func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret-key-32-chars-min!!!") //nolint:errcheck
	os.Exit(m.Run())
}

// ===== JWT TESTS =====

func TestGenerateJWT(t *testing.T) {
	t.Parallel()

	token, err := GenerateJWT("panel")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}
	if token == "" {
		t.Error("GenerateJWT returned empty token")
	}

	// header.payload.signature
	if parts := countJWTParts(token); parts != 3 {
		t.Errorf("JWT should have 3 parts, got %d", parts)
	}
}

func TestGenerateJWT_EmptyClient(t *testing.T) {
	t.Parallel()

	if _, err := GenerateJWT("   "); err == nil {
		t.Error("GenerateJWT should reject a blank client name")
	}
}

func TestParseJWT_ValidToken(t *testing.T) {
	t.Parallel()

	token, _ := GenerateJWT("vscode")

	claims, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT failed for valid token: %v", err)
	}
	if claims.Client() != "vscode" {
		t.Errorf("Expected client vscode, got %s", claims.Client())
	}
	if claims.Issuer != Issuer {
		t.Errorf("Expected issuer %s, got %s", Issuer, claims.Issuer)
	}
}

func TestParseJWT_InvalidToken(t *testing.T) {
	t.Parallel()

	if _, err := ParseJWT("invalid.token.here"); err == nil {
		t.Error("ParseJWT should return error for invalid token")
	}
}

func TestParseJWT_MalformedToken(t *testing.T) {
	t.Parallel()

	if _, err := ParseJWT("not-a-jwt"); err == nil {
		t.Error("ParseJWT should return error for malformed token")
	}
}

func TestParseJWT_EmptyToken(t *testing.T) {
	t.Parallel()

	if _, err := ParseJWT(""); err == nil {
		t.Error("ParseJWT should return error for empty token")
	}
}

// TestParseJWT_ForeignIssuer verifies tokens signed with the same secret but
// minted by another tool are rejected.
func TestParseJWT_ForeignIssuer(t *testing.T) {
	t.Parallel()

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "panel",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ParseJWT(signed); err == nil {
		t.Error("ParseJWT should reject a token from another issuer")
	}
}

func TestParseJWT_ExpiredToken(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-2 * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   "panel",
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
		},
	})
	signed, _ := token.SignedString([]byte(os.Getenv("JWT_SECRET")))

	if _, err := ParseJWT(signed); err == nil {
		t.Error("ParseJWT should reject an expired token")
	}
}

func TestJWT_Expiry(t *testing.T) {
	t.Parallel()

	token, _ := GenerateJWT("panel")
	claims, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT failed: %v", err)
	}

	if claims.ExpiresAt == nil {
		t.Fatal("JWT should have ExpiresAt set")
	}
	if claims.ExpiresAt.Before(time.Now()) {
		t.Error("JWT ExpiresAt should be in the future")
	}
	if claims.IssuedAt == nil {
		t.Error("JWT missing IssuedAt claim")
	}
}

// ===== parseJWTExpiry TESTS =====

func TestParseJWTExpiry(t *testing.T) {
	t.Parallel()

	def := time.Duration(DefaultJWTExpiry) * time.Hour
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"", def},
		{"48", 48 * time.Hour},
		{"not-a-number", def},
		{"0", 0},
		{"1", time.Hour},
	}
	for _, tc := range cases {
		if got := parseJWTExpiry(tc.in); got != tc.want {
			t.Errorf("parseJWTExpiry(%q) = %v; want %v", tc.in, got, tc.want)
		}
	}
}

// ===== env-dependent TESTS (not parallel) =====

func TestJWT_CustomExpiry(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "2")

	before := time.Now()
	token, err := GenerateJWT("panel")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	claims, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT failed: %v", err)
	}

	expectedExpiry := before.Add(2 * time.Hour)
	diff := claims.ExpiresAt.Time.Sub(expectedExpiry).Abs()
	if diff > 5*time.Second {
		t.Errorf("Expected expiry ~2h from now, diff is %v", diff)
	}
}

func TestGenerateJWT_NoSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := GenerateJWT("panel"); !errors.Is(err, ErrNoSecret) {
		t.Errorf("expected ErrNoSecret, got %v", err)
	}
	if err := RequireSecret(); !errors.Is(err, ErrNoSecret) {
		t.Errorf("RequireSecret: expected ErrNoSecret, got %v", err)
	}
}

// ===== HELPER FUNCTIONS =====

func countJWTParts(token string) int {
	count := 1
	for i := 0; i < len(token); i++ {
		if token[i] == '.' {
			count++
		}
	}
	return count
}
