package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/apperror"
)

var (
	ErrUnauthenticated    = apperror.New(http.StatusUnauthorized, "authentication required")
	ErrInvalidToken       = apperror.New(http.StatusUnauthorized, "invalid or expired token")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password is too short")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, "email is required")
	ErrProviderFailed     = apperror.NewRetryable(http.StatusBadGateway, "authentication service unavailable, please try again")
)

type Role string

const (
	RoleClient Role = "client"
	RoleBarber Role = "barber"
	RoleAdmin  Role = "admin"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}

// Session is a signed-in identity and its bearer token.
type Session struct {
	Identity
	AccessToken string
	ExpiresAt   time.Time
}

type SignUpParams struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

// Verifier resolves a bearer token to an identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Provider is the auth collaborator: local credentials or a hosted identity service.
type Provider interface {
	Verifier
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, p SignUpParams) (*Identity, error)
	SignOut(ctx context.Context, token string) error
	// RequestPasswordReset never reveals whether the email is registered.
	RequestPasswordReset(ctx context.Context, email string) error
}
