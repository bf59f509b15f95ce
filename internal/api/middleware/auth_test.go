package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/bookshop-event-driven/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key", 15*time.Minute, 7*24*time.Hour)
}

func claimsCapturingHandler(captured **auth.Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := r.Context().Value(UserContextKey).(*auth.Claims); ok {
			*captured = claims
		}
		w.WriteHeader(http.StatusOK)
	})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidToken_Header(t *testing.T) {
	jwtService := newTestJWTService()
	mw := AuthMiddleware(jwtService)

	token, _, err := jwtService.GenerateAccessToken("user-1", "reader@example.com", "customer")
	require.NoError(t, err)

	var captured *auth.Claims
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw(claimsCapturingHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "user-1", captured.UserID)
	assert.Equal(t, "reader@example.com", captured.Email)
	assert.Equal(t, "customer", captured.Role)
}

func TestAuthMiddleware_ValidToken_Cookie(t *testing.T) {
	jwtService := newTestJWTService()
	mw := AuthMiddleware(jwtService)

	token, _, err := jwtService.GenerateAccessToken("user-2", "admin@example.com", "admin")
	require.NoError(t, err)

	var captured *auth.Claims
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec := httptest.NewRecorder()

	mw(claimsCapturingHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "user-2", captured.UserID)
}

func TestAuthMiddleware_CookieTakesPrecedence(t *testing.T) {
	jwtService := newTestJWTService()
	mw := AuthMiddleware(jwtService)

	cookieToken, _, _ := jwtService.GenerateAccessToken("cookie-user", "cookie@example.com", "customer")
	headerToken, _, _ := jwtService.GenerateAccessToken("header-user", "header@example.com", "admin")

	var captured *auth.Claims
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: cookieToken})
	req.Header.Set("Authorization", "Bearer "+headerToken)
	rec := httptest.NewRecorder()

	mw(claimsCapturingHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "cookie-user", captured.UserID)
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	mw := AuthMiddleware(newTestJWTService())

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	mw := AuthMiddleware(newTestJWTService())

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret-key", 1*time.Millisecond, 7*24*time.Hour)
	mw := AuthMiddleware(jwtService)

	token, _, err := jwtService.GenerateAccessToken("user-1", "reader@example.com", "customer")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_WrongSignature(t *testing.T) {
	signer := auth.NewJWTService("secret-a", 15*time.Minute, 7*24*time.Hour)
	verifier := auth.NewJWTService("secret-b", 15*time.Minute, 7*24*time.Hour)

	token, _, err := signer.GenerateAccessToken("user-1", "reader@example.com", "customer")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	AuthMiddleware(verifier)(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================
// Optional Auth Middleware Tests
// ============================================

func TestOptionalAuthMiddleware_ValidToken(t *testing.T) {
	jwtService := newTestJWTService()
	mw := OptionalAuthMiddleware(jwtService)

	token, _, _ := jwtService.GenerateAccessToken("user-1", "reader@example.com", "customer")

	var captured *auth.Claims
	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw(claimsCapturingHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "user-1", captured.UserID)
}

func TestOptionalAuthMiddleware_NoToken(t *testing.T) {
	mw := OptionalAuthMiddleware(newTestJWTService())

	var captured *auth.Claims
	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	rec := httptest.NewRecorder()

	mw(claimsCapturingHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, captured)
}

func TestOptionalAuthMiddleware_InvalidTokenIgnored(t *testing.T) {
	mw := OptionalAuthMiddleware(newTestJWTService())

	var captured *auth.Claims
	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()

	mw(claimsCapturingHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, captured)
}

// ============================================
// Require Role Middleware Tests
// ============================================

func requestWithClaims(claims *auth.Claims) *http.Request {
	ctx := context.WithValue(context.Background(), UserContextKey, claims)
	return httptest.NewRequest(http.MethodGet, "/admin", nil).WithContext(ctx)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		roles    []string
		userRole string
		want     int
	}{
		{"has role", []string{"admin"}, "admin", http.StatusOK},
		{"has alternate role", []string{"admin", "moderator"}, "moderator", http.StatusOK},
		{"wrong role", []string{"admin"}, "customer", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := requestWithClaims(&auth.Claims{UserID: "user-1", Role: tt.userRole})

			RequireRole(tt.roles...)(okHandler()).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireRole_NoClaims(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)

	RequireRole("admin")(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================
// Helper Functions Tests
// ============================================

func TestGetUserFromContext(t *testing.T) {
	claims := &auth.Claims{UserID: "user-1", Email: "reader@example.com", Role: "customer"}
	ctx := context.WithValue(context.Background(), UserContextKey, claims)

	got, ok := GetUserFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, claims, got)

	got, ok = GetUserFromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestGetUserID(t *testing.T) {
	ctx := context.WithValue(context.Background(), UserContextKey, &auth.Claims{UserID: "user-1"})

	assert.Equal(t, "user-1", GetUserID(ctx))
	assert.Empty(t, GetUserID(context.Background()))
}
