// Package auth issues and validates the bearer tokens that local clients (the
// editor panel, scripts) present to the seekassist HTTP API.
// This is a leaf package with no domain dependencies. Used by cmd/seekassist and internal/api/middleware.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ===== CONSTANTS =====

// DefaultJWTExpiry is the default JWT expiration time in hours if not set via env.
const DefaultJWTExpiry = 24

// Issuer is stamped on every token and checked on parse.
const Issuer = "seekassist"

const (
	envJWTSecret = "JWT_SECRET"
	envJWTExpiry = "JWT_EXPIRY"
)

// ErrNoSecret is returned when JWT_SECRET is unset; the API cannot run without it.
var ErrNoSecret = errors.New(envJWTSecret + " environment variable not set")

// ===== ENVIRONMENT VARIABLES =====

func getJWTSecret() ([]byte, error) {
	secret := os.Getenv(envJWTSecret)
	if secret == "" {
		return nil, ErrNoSecret
	}
	return []byte(secret), nil
}

// RequireSecret reports ErrNoSecret early so `serve` can refuse to start
// instead of rejecting every request later.
func RequireSecret() error {
	_, err := getJWTSecret()
	return err
}

// parseJWTExpiry parses an expiry string (hours) into a Duration.
// Returns DefaultJWTExpiry if empty string or invalid number.
func parseJWTExpiry(expiryStr string) time.Duration {
	if expiryStr == "" {
		return time.Duration(DefaultJWTExpiry) * time.Hour
	}

	hours, err := strconv.Atoi(expiryStr)
	if err != nil {
		return time.Duration(DefaultJWTExpiry) * time.Hour
	}

	return time.Duration(hours) * time.Hour
}

func getJWTExpiry() time.Duration {
	return parseJWTExpiry(os.Getenv(envJWTExpiry))
}

// ===== JWT FUNCTIONS =====

// Claims identifies the client a token was issued to. The client name is
// carried as the registered subject.
type Claims struct {
	jwt.RegisteredClaims
}

// Client returns the name the token was issued for.
func (c *Claims) Client() string { return c.Subject }

// GenerateJWT creates a signed token for the named client.
func GenerateJWT(client string) (string, error) {
	client = strings.TrimSpace(client)
	if client == "" {
		return "", errors.New("client name is empty")
	}
	secret, err := getJWTSecret()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   client,
			ExpiresAt: jwt.NewNumericDate(now.Add(getJWTExpiry())),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}

	return signedToken, nil
}

// ParseJWT validates and parses a token, extracting claims.
// Returns error if the token is invalid, expired, malformed or from another issuer.
func ParseJWT(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token is empty")
	}
	secret, err := getJWTSecret()
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// HMAC only: reject algorithm substitution
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(Issuer))

	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid JWT claims or signature")
	}
	if claims.Subject == "" {
		return nil, errors.New("JWT has no subject")
	}

	return claims, nil
}
