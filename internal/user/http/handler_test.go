package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/auth"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/user"
)

var ana = auth.Identity{UserID: "u1", Email: "ana@example.com", Role: auth.RoleClient}

type stubProvider struct {
	signedOut  []string
	resetEmail string
}

func (p *stubProvider) Verify(_ context.Context, token string) (*auth.Identity, error) {
	if token != "good" {
		return nil, auth.ErrInvalidToken
	}
	id := ana
	return &id, nil
}

func (p *stubProvider) SignIn(_ context.Context, email, password string) (*auth.Session, error) {
	if email != ana.Email || password != "correct-horse" {
		return nil, auth.ErrInvalidCredentials
	}
	return &auth.Session{Identity: ana, AccessToken: "good", ExpiresAt: time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)}, nil
}

func (p *stubProvider) SignUp(_ context.Context, params auth.SignUpParams) (*auth.Identity, error) {
	if params.Email == ana.Email {
		return nil, auth.ErrEmailAlreadyUsed
	}
	return &auth.Identity{UserID: "u2", Email: params.Email, Role: auth.RoleClient}, nil
}

func (p *stubProvider) SignOut(_ context.Context, token string) error {
	p.signedOut = append(p.signedOut, token)
	return nil
}

func (p *stubProvider) RequestPasswordReset(_ context.Context, email string) error {
	p.resetEmail = email
	return nil
}

type stubProfiles struct {
	last user.ProfileUpdate
}

func (s *stubProfiles) GetProfile(_ context.Context, id *auth.Identity) (*user.Profile, error) {
	return &user.Profile{ID: id.UserID, Email: id.Email, FullName: "Ana", Role: id.Role}, nil
}

func (s *stubProfiles) UpdateProfile(_ context.Context, id *auth.Identity, upd user.ProfileUpdate) (*user.Profile, error) {
	s.last = upd
	p := &user.Profile{ID: id.UserID, Email: id.Email, FullName: "Ana", Role: id.Role}
	if upd.Phone != nil {
		p.Phone = *upd.Phone
	}
	return p, nil
}

func newTestRouter(p *stubProvider, profiles *stubProfiles) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(p, profiles), auth.AuthRequired(p))
	return r
}

func do(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSignUp(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "created", body: `{"email":"bruno@example.com","password":"12345678","full_name":"Bruno"}`, wantCode: http.StatusCreated},
		{name: "email taken", body: `{"email":"ana@example.com","password":"12345678","full_name":"Ana"}`, wantCode: http.StatusConflict},
		{name: "short password", body: `{"email":"c@example.com","password":"1234","full_name":"C"}`, wantCode: http.StatusBadRequest},
		{name: "blank name", body: `{"email":"c@example.com","password":"12345678","full_name":"   "}`, wantCode: http.StatusBadRequest},
		{name: "bad email", body: `{"email":"nope","password":"12345678","full_name":"C"}`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&stubProvider{}, &stubProfiles{})
			w := do(r, http.MethodPost, "/v1/auth/signup", tt.body, "")
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}
}

func TestSignInAndOut(t *testing.T) {
	p := &stubProvider{}
	r := newTestRouter(p, &stubProfiles{})

	w := do(r, http.MethodPost, "/v1/auth/signin", `{"email":"ana@example.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/v1/auth/signin", `{"email":"ana@example.com","password":"correct-horse"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var sess SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	assert.Equal(t, "good", sess.AccessToken)
	assert.Equal(t, "u1", sess.User.ID)

	w = do(r, http.MethodPost, "/v1/auth/signout", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/v1/auth/signout", "", "good")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"good"}, p.signedOut)
}

func TestPasswordReset(t *testing.T) {
	p := &stubProvider{}
	r := newTestRouter(p, &stubProfiles{})

	w := do(r, http.MethodPost, "/v1/auth/password-reset", `{"email":"ana@example.com"}`, "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "ana@example.com", p.resetEmail)

	// The stub cannot complete resets itself.
	w = do(r, http.MethodPost, "/v1/auth/password-reset/confirm", `{"token":"t","password":"12345678"}`, "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestProfile(t *testing.T) {
	profiles := &stubProfiles{}
	r := newTestRouter(&stubProvider{}, profiles)

	w := do(r, http.MethodGet, "/v1/me/profile", "", "good")
	require.Equal(t, http.StatusOK, w.Code)
	var p ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "Ana", p.FullName)

	w = do(r, http.MethodPatch, "/v1/me/profile", `{}`, "good")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPatch, "/v1/me/profile", `{"phone":"+5511999990001"}`, "good")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "+5511999990001", p.Phone)
	assert.Nil(t, profiles.last.FullName)

	w = do(r, http.MethodGet, "/v1/me", "", "bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
