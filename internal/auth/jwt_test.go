package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *JWTManager {
	return NewJWTManager("test-secret", time.Hour, 15*time.Minute)
}

func TestJWTManager_AccessTokenRoundTrip(t *testing.T) {
	m := newTestManager()

	s, err := m.GenerateAccessToken(Identity{UserID: "u1", Email: "a@b.com", Role: RoleClient})
	require.NoError(t, err)
	assert.NotEmpty(t, s.AccessToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, time.Minute)

	claims, err := m.ParseAndValidate(s.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, RoleClient, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTManager_Rejections(t *testing.T) {
	m := newTestManager()
	reset, err := m.GenerateResetToken("u1", "a@b.com")
	require.NoError(t, err)

	other := NewJWTManager("other-secret", time.Hour, time.Hour)
	foreign, err := other.GenerateAccessToken(Identity{UserID: "u1"})
	require.NoError(t, err)

	expiredMgr := newTestManager()
	expiredMgr.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredMgr.GenerateAccessToken(Identity{UserID: "u1"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "reset token used as access token", token: reset},
		{name: "wrong signing key", token: foreign.AccessToken},
		{name: "expired", token: expired.AccessToken},
		{name: "garbage", token: "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.ParseAndValidate(tt.token)
			assert.Error(t, err)
		})
	}

	claims, err := m.ParseResetToken(reset)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestJWTVerifier_Revoke(t *testing.T) {
	m := newTestManager()
	v := NewJWTVerifier(m, NewMemoryRevocationList())
	ctx := context.Background()

	s, err := m.GenerateAccessToken(Identity{UserID: "u1", Email: "a@b.com"})
	require.NoError(t, err)

	id, err := v.Verify(ctx, s.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)

	require.NoError(t, v.Revoke(ctx, s.AccessToken))
	_, err = v.Verify(ctx, s.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Other sessions of the same user are unaffected.
	s2, err := m.GenerateAccessToken(Identity{UserID: "u1", Email: "a@b.com"})
	require.NoError(t, err)
	_, err = v.Verify(ctx, s2.AccessToken)
	assert.NoError(t, err)
}

func TestMemoryRevocationList_Expires(t *testing.T) {
	l := NewMemoryRevocationList()
	now := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, l.Revoke(ctx, "jti", now.Add(time.Minute)))
	revoked, err := l.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = l.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newTestManager()
	v := NewJWTVerifier(m, NewMemoryRevocationList())
	s, err := m.GenerateAccessToken(Identity{UserID: "u1", Email: "a@b.com"})
	require.NoError(t, err)

	r := gin.New()
	whoami := func(c *gin.Context) { c.String(http.StatusOK, GetUserID(c)) }
	r.GET("/required", AuthRequired(v), whoami)
	r.GET("/optional", OptionalAuth(v), whoami)

	tests := []struct {
		name     string
		path     string
		header   string
		wantCode int
		wantBody string
	}{
		{name: "required with token", path: "/required", header: "Bearer " + s.AccessToken, wantCode: http.StatusOK, wantBody: "u1"},
		{name: "required without token", path: "/required", wantCode: http.StatusUnauthorized},
		{name: "required malformed header", path: "/required", header: "Token abc", wantCode: http.StatusUnauthorized},
		{name: "required bad token", path: "/required", header: "Bearer nope", wantCode: http.StatusUnauthorized},
		{name: "optional anonymous", path: "/optional", wantCode: http.StatusOK, wantBody: ""},
		{name: "optional with token", path: "/optional", header: "Bearer " + s.AccessToken, wantCode: http.StatusOK, wantBody: "u1"},
		{name: "optional bad token", path: "/optional", header: "Bearer nope", wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestValidateCredentials(t *testing.T) {
	assert.ErrorIs(t, ValidateCredentials("  ", "longenough"), ErrEmailRequired)
	assert.ErrorIs(t, ValidateCredentials("a@b.com", "short"), ErrPasswordTooShort)
	assert.NoError(t, ValidateCredentials("a@b.com", "longenough"))
	assert.Equal(t, "a@b.com", NormalizeEmail("  A@B.com "))
}
