package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/auth"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/user"
)

var errEmptyUpdate = apperror.New(http.StatusBadRequest, "nothing to update")

// SignUpRequest defines the payload for account registration.
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone" binding:"omitempty,max=32"`
}

func (r *SignUpRequest) Validate() error {
	if strings.TrimSpace(r.FullName) == "" {
		return user.ErrFullNameBlank
	}
	return nil
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// UpdateProfileRequest uses pointers to distinguish "not sent" from "sent empty".
type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone" binding:"omitempty,max=32"`
}

func (r *UpdateProfileRequest) Validate() error {
	if r.FullName == nil && r.Phone == nil {
		return errEmptyUpdate
	}
	return nil
}

type IdentityResponse struct {
	ID    string    `json:"id"`
	Email string    `json:"email"`
	Role  auth.Role `json:"role,omitempty"`
}

func NewIdentityResponse(id *auth.Identity) IdentityResponse {
	return IdentityResponse{ID: id.UserID, Email: id.Email, Role: id.Role}
}

type SessionResponse struct {
	AccessToken string           `json:"access_token"`
	ExpiresAt   time.Time        `json:"expires_at"`
	User        IdentityResponse `json:"user"`
}

type ProfileResponse struct {
	ID       string    `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Phone    string    `json:"phone"`
	Role     auth.Role `json:"role"`
}

func NewProfileResponse(p *user.Profile) ProfileResponse {
	return ProfileResponse{
		ID:       p.ID,
		Email:    p.Email,
		FullName: p.FullName,
		Phone:    p.Phone,
		Role:     p.Role,
	}
}
