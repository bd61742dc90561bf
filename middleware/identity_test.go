package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("test-secret")

func signedToken(t *testing.T, claims *jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func requestWithAuth(header string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	return r
}

func TestCallerAddressReadsSubject(t *testing.T) {
	token := signedToken(t, &jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	addr, httpErr := CallerAddress(requestWithAuth("Bearer "+token), testSecret)
	require.Nil(t, httpErr)
	assert.Equal(t, "alice", addr)
}

func TestCallerAddressRejectsBadTokens(t *testing.T) {
	_, httpErr := CallerAddress(requestWithAuth(""), testSecret)
	require.NotNil(t, httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)

	_, httpErr = CallerAddress(requestWithAuth("Bearer garbage"), testSecret)
	require.NotNil(t, httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)

	// Expired token.
	expired := signedToken(t, &jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	_, httpErr = CallerAddress(requestWithAuth("Bearer "+expired), testSecret)
	require.NotNil(t, httpErr)

	// Valid signature but no subject.
	noSubject := signedToken(t, &jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	_, httpErr = CallerAddress(requestWithAuth("Bearer "+noSubject), testSecret)
	require.NotNil(t, httpErr)

	// Wrong secret.
	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwt.RegisteredClaims{
		Subject: "alice",
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, httpErr = CallerAddress(requestWithAuth("Bearer "+other), testSecret)
	require.NotNil(t, httpErr)
}

func TestRequireAdmin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	httpErr := RequireAdmin(r, hash)
	require.NotNil(t, httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)

	r.Header.Set("X-Admin-Key", "wrong")
	httpErr = RequireAdmin(r, hash)
	require.NotNil(t, httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)

	r.Header.Set("X-Admin-Key", "hunter2")
	assert.Nil(t, RequireAdmin(r, hash))
}
