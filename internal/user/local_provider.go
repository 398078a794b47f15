package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/auth"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/notify"
)

// LocalProvider is the auth collaborator backed by our own users table:
// bcrypt password hashes and locally signed JWTs.
type LocalProvider struct {
	creds     CredentialRepository
	hasher    auth.PasswordHasher
	jwt       *auth.JWTManager
	verifier  *auth.JWTVerifier
	publisher notify.Publisher
	logger    *slog.Logger
}

func NewLocalProvider(
	creds CredentialRepository,
	hasher auth.PasswordHasher,
	jwt *auth.JWTManager,
	verifier *auth.JWTVerifier,
	publisher notify.Publisher,
	logger *slog.Logger,
) *LocalProvider {
	return &LocalProvider{
		creds:     creds,
		hasher:    hasher,
		jwt:       jwt,
		verifier:  verifier,
		publisher: publisher,
		logger:    logger,
	}
}

func (p *LocalProvider) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	return p.verifier.Verify(ctx, token)
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	email = auth.NormalizeEmail(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, auth.ErrInvalidCredentials
	}

	cred, err := p.creds.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errCredentialsGone) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, auth.ErrProviderFailed.WithCause(err)
	}

	if err := p.hasher.Compare(cred.PasswordHash, password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	s, err := p.jwt.GenerateAccessToken(auth.Identity{UserID: cred.UserID, Email: cred.Email, Role: cred.Role})
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return s, nil
}

func (p *LocalProvider) SignUp(ctx context.Context, params auth.SignUpParams) (*auth.Identity, error) {
	if err := auth.ValidateCredentials(params.Email, params.Password); err != nil {
		return nil, err
	}
	fullName := strings.TrimSpace(params.FullName)
	if fullName == "" {
		return nil, ErrFullNameBlank
	}

	hash, err := p.hasher.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	cred := &Credential{
		Email:        auth.NormalizeEmail(params.Email),
		PasswordHash: hash,
		Role:         auth.RoleClient,
	}
	profile := &Profile{FullName: fullName, Phone: strings.TrimSpace(params.Phone)}

	if err := p.creds.Create(ctx, cred, profile); err != nil {
		if errors.Is(err, auth.ErrEmailAlreadyUsed) {
			return nil, auth.ErrEmailAlreadyUsed
		}
		return nil, ErrWriteFailed.WithCause(err)
	}

	return &auth.Identity{UserID: cred.UserID, Email: cred.Email, Role: cred.Role}, nil
}

func (p *LocalProvider) SignOut(ctx context.Context, token string) error {
	if err := p.verifier.Revoke(ctx, token); err != nil {
		return auth.ErrProviderFailed.WithCause(err)
	}
	return nil
}

// RequestPasswordReset issues a reset token and hands it to the notification
// pipeline. Unknown emails succeed silently.
func (p *LocalProvider) RequestPasswordReset(ctx context.Context, email string) error {
	email = auth.NormalizeEmail(email)
	if email == "" {
		return auth.ErrEmailRequired
	}

	cred, err := p.creds.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errCredentialsGone) {
			p.logger.InfoContext(ctx, "password reset requested for unknown email")
			return nil
		}
		return auth.ErrProviderFailed.WithCause(err)
	}

	token, err := p.jwt.GenerateResetToken(cred.UserID, cred.Email)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	e := notify.NewEvent(notify.EventPasswordResetRequested, cred.UserID, map[string]string{
		"email":       cred.Email,
		"reset_token": token,
	})
	if err := p.publisher.Publish(ctx, e); err != nil {
		return auth.ErrProviderFailed.WithCause(err)
	}
	return nil
}

// ResetPassword sets a new password using a token from RequestPasswordReset.
func (p *LocalProvider) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := p.jwt.ParseResetToken(token)
	if err != nil {
		return ErrInvalidReset.WithCause(err)
	}
	if len(newPassword) < auth.MinPasswordLength {
		return auth.ErrPasswordTooShort
	}

	hash, err := p.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := p.creds.UpdatePassword(ctx, claims.UserID, hash); err != nil {
		if errors.Is(err, errCredentialsGone) {
			return ErrInvalidReset
		}
		return ErrWriteFailed.WithCause(err)
	}
	return nil
}
