package supabase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/auth"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/apperror"
	"github.com/supabase-community/gotrue-go/types"
	supa "github.com/supabase-community/supabase-go"
)

// AuthProvider delegates identity to the Supabase auth service (GoTrue).
type AuthProvider struct {
	client *supa.Client
	now    func() time.Time
}

func NewAuthProvider(client *supa.Client) *AuthProvider {
	return &AuthProvider{client: client, now: time.Now}
}

func (p *AuthProvider) Verify(_ context.Context, token string) (*auth.Identity, error) {
	resp, err := p.client.Auth.WithToken(token).GetUser()
	if err != nil {
		return nil, classify(err, auth.ErrInvalidToken)
	}
	return &auth.Identity{
		UserID: resp.ID.String(),
		Email:  resp.Email,
		Role:   roleFromMetadata(resp.UserMetadata),
	}, nil
}

func (p *AuthProvider) SignIn(_ context.Context, email, password string) (*auth.Session, error) {
	resp, err := p.client.Auth.SignInWithEmailPassword(auth.NormalizeEmail(email), password)
	if err != nil {
		return nil, classify(err, auth.ErrInvalidCredentials)
	}
	return &auth.Session{
		Identity: auth.Identity{
			UserID: resp.User.ID.String(),
			Email:  resp.User.Email,
			Role:   roleFromMetadata(resp.User.UserMetadata),
		},
		AccessToken: resp.AccessToken,
		ExpiresAt:   p.now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}, nil
}

// SignUp registers the user and writes the profile row the booking flow reads.
func (p *AuthProvider) SignUp(_ context.Context, params auth.SignUpParams) (*auth.Identity, error) {
	if err := auth.ValidateCredentials(params.Email, params.Password); err != nil {
		return nil, err
	}

	resp, err := p.client.Auth.Signup(types.SignupRequest{
		Email:    auth.NormalizeEmail(params.Email),
		Password: params.Password,
		Data: map[string]interface{}{
			"full_name": strings.TrimSpace(params.FullName),
			"phone":     strings.TrimSpace(params.Phone),
		},
	})
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already registered") {
			return nil, auth.ErrEmailAlreadyUsed.WithCause(err)
		}
		return nil, auth.ErrProviderFailed.WithCause(err)
	}

	id := resp.User.ID.String()
	row := map[string]any{
		"id":        id,
		"full_name": strings.TrimSpace(params.FullName),
		"phone":     strings.TrimSpace(params.Phone),
		"role":      string(auth.RoleClient),
	}
	if _, _, err := p.client.From("profiles").Insert(row, true, "id", "minimal", "").Execute(); err != nil {
		return nil, auth.ErrProviderFailed.WithCause(fmt.Errorf("upsert profile %s: %w", id, err))
	}

	return &auth.Identity{UserID: id, Email: resp.User.Email, Role: auth.RoleClient}, nil
}

func (p *AuthProvider) SignOut(_ context.Context, token string) error {
	if err := p.client.Auth.WithToken(token).Logout(); err != nil {
		return classify(err, auth.ErrInvalidToken)
	}
	return nil
}

// RequestPasswordReset asks GoTrue to email a recovery link. GoTrue itself
// answers the same way for unknown addresses.
func (p *AuthProvider) RequestPasswordReset(_ context.Context, email string) error {
	email = auth.NormalizeEmail(email)
	if email == "" {
		return auth.ErrEmailRequired
	}
	if err := p.client.Auth.Recover(types.RecoverRequest{Email: email}); err != nil {
		return auth.ErrProviderFailed.WithCause(err)
	}
	return nil
}

// classify maps GoTrue client errors: 4xx responses become the caller's
// rejection, anything else is an upstream failure.
func classify(err error, rejected *apperror.AppError) error {
	msg := err.Error()
	for _, code := range []string{"400", "401", "403", "404", "422"} {
		if strings.Contains(msg, "status code "+code) {
			return rejected.WithCause(err)
		}
	}
	return auth.ErrProviderFailed.WithCause(err)
}

func roleFromMetadata(meta map[string]interface{}) auth.Role {
	if r, ok := meta["role"].(string); ok {
		switch auth.Role(r) {
		case auth.RoleBarber, auth.RoleAdmin:
			return auth.Role(r)
		}
	}
	return auth.RoleClient
}
