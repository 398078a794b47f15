package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/auth"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "profile not found")
	ErrFullNameBlank   = apperror.New(http.StatusBadRequest, "full name must not be blank")
	ErrInvalidReset    = apperror.New(http.StatusBadRequest, "password reset link is invalid or expired")
	ErrFetchFailed     = apperror.NewRetryable(http.StatusBadGateway, "failed to load profile, please try again")
	ErrWriteFailed     = apperror.NewRetryable(http.StatusBadGateway, "failed to save profile, please try again")
	errCredentialsGone = apperror.New(http.StatusNotFound, "credentials not found")
)

// Profile is the public part of an account. Email comes from the auth collaborator.
type Profile struct {
	ID        string
	Email     string
	FullName  string
	Phone     string
	Role      auth.Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileUpdate carries the editable fields; nil leaves a field unchanged.
type ProfileUpdate struct {
	FullName *string
	Phone    *string
}

// Credential is a locally stored login.
type Credential struct {
	UserID       string
	Email        string
	PasswordHash string
	Role         auth.Role
}
