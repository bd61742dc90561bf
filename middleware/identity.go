// Package middleware extracts caller identity from requests. Role and
// permission policy live upstream in the capability layer that issues the
// tokens; here a token is only verified and its subject read out.
package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// HTTPError carries a status code alongside a client-safe message.
type HTTPError struct {
	StatusCode int
	Message    string
}

// CallerAddress verifies the bearer token with the shared HS256 secret and
// returns its subject, the caller's ledger address.
func CallerAddress(r *http.Request, secret []byte) (string, *HTTPError) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Bearer token required",
		}
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Invalid or expired token",
		}
	}
	if claims.Subject == "" {
		return "", &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Token has no subject",
		}
	}
	return claims.Subject, nil
}

// RequireAdmin checks the X-Admin-Key header against the bcrypt hash of the
// operator key.
func RequireAdmin(r *http.Request, adminKeyHash []byte) *HTTPError {
	key := r.Header.Get("X-Admin-Key")
	if key == "" {
		return &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Admin key required",
		}
	}
	if err := bcrypt.CompareHashAndPassword(adminKeyHash, []byte(key)); err != nil {
		return &HTTPError{
			StatusCode: http.StatusForbidden,
			Message:    "Invalid admin key",
		}
	}
	return nil
}
