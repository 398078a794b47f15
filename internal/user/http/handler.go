package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/auth"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/user"
)

var errResetUnsupported = apperror.New(http.StatusNotImplemented, "password reset is completed through the emailed link")

// PasswordResetter is implemented by providers that complete resets themselves.
type PasswordResetter interface {
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type Handler struct {
	provider auth.Provider
	profiles user.Service
}

func NewHandler(provider auth.Provider, profiles user.Service) *Handler {
	return &Handler{provider: provider, profiles: profiles}
}

func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	id, err := h.provider.SignUp(c.Request.Context(), auth.SignUpParams{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewIdentityResponse(id))
}

func (h *Handler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	s, err := h.provider.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{
		AccessToken: s.AccessToken,
		ExpiresAt:   s.ExpiresAt,
		User:        NewIdentityResponse(&s.Identity),
	})
}

func (h *Handler) SignOut(c *gin.Context) {
	if err := h.provider.SignOut(c.Request.Context(), auth.GetAccessToken(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestPasswordReset always answers 202 for a well-formed email.
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	if err := h.provider.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (h *Handler) ConfirmPasswordReset(c *gin.Context) {
	resetter, ok := h.provider.(PasswordResetter)
	if !ok {
		response.Error(c, errResetUnsupported)
		return
	}

	var req PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	if err := resetter.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Me(c *gin.Context) {
	id, ok := auth.GetIdentity(c)
	if !ok {
		response.Error(c, auth.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, NewIdentityResponse(id))
}

func (h *Handler) GetProfile(c *gin.Context) {
	id, ok := auth.GetIdentity(c)
	if !ok {
		response.Error(c, auth.ErrUnauthenticated)
		return
	}

	p, err := h.profiles.GetProfile(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewProfileResponse(p))
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	id, ok := auth.GetIdentity(c)
	if !ok {
		response.Error(c, auth.ErrUnauthenticated)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	p, err := h.profiles.UpdateProfile(c.Request.Context(), id, user.ProfileUpdate{
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewProfileResponse(p))
}
