package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/auth"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/booking"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/response"
)

type Handler struct {
	manager *booking.Manager
}

func NewHandler(manager *booking.Manager) *Handler {
	return &Handler{manager: manager}
}

func caller(c *gin.Context) *auth.Identity {
	id, _ := auth.GetIdentity(c)
	return id
}

// sessionID binds the :id path parameter, writing the 400 itself on failure.
func sessionID(c *gin.Context) (string, bool) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, err)
		return "", false
	}
	return req.ID, true
}

func respond(c *gin.Context, code int, s *booking.Session, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(code, NewSessionResponse(s))
}

func (h *Handler) Create(c *gin.Context) {
	s, err := h.manager.Create(c.Request.Context(), caller(c))
	respond(c, http.StatusCreated, s, err)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	s, err := h.manager.Get(c.Request.Context(), id, caller(c))
	respond(c, http.StatusOK, s, err)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if err := h.manager.Delete(c.Request.Context(), id, caller(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SelectService(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req SelectServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	s, err := h.manager.SelectService(c.Request.Context(), id, caller(c), req.ServiceID)
	respond(c, http.StatusOK, s, err)
}

func (h *Handler) SelectBarber(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req SelectBarberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	s, err := h.manager.SelectBarber(c.Request.Context(), id, caller(c), req.BarberID)
	respond(c, http.StatusOK, s, err)
}

// SelectDate answers with the slots for the new date. When loading them fails
// the error is returned and the session keeps an empty snapshot.
func (h *Handler) SelectDate(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req SelectDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	s, err := h.manager.SelectDate(c.Request.Context(), id, caller(c), req.Date)
	respond(c, http.StatusOK, s, err)
}

func (h *Handler) SelectTime(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req SelectTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	s, err := h.manager.SelectTime(c.Request.Context(), id, caller(c), req.Time)
	respond(c, http.StatusOK, s, err)
}

func (h *Handler) Confirm(c *gin.Context) {
	h.transition(c, h.manager.Confirm)
}

func (h *Handler) Authenticate(c *gin.Context) {
	h.transition(c, h.manager.Authenticate)
}

func (h *Handler) Submit(c *gin.Context) {
	h.transition(c, h.manager.Submit)
}

func (h *Handler) Retry(c *gin.Context) {
	h.transition(c, h.manager.Retry)
}

func (h *Handler) ConfirmCancel(c *gin.Context) {
	h.transition(c, h.manager.ConfirmCancel)
}

func (h *Handler) transition(c *gin.Context, fn func(context.Context, string, *auth.Identity) (*booking.Session, error)) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	s, err := fn(c.Request.Context(), id, caller(c))
	respond(c, http.StatusOK, s, err)
}

// StartEdit opens a reschedule session for one of the caller's appointments.
func (h *Handler) StartEdit(c *gin.Context) {
	var req AppointmentRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	s, err := h.manager.StartEdit(c.Request.Context(), caller(c), req.AppointmentID)
	respond(c, http.StatusCreated, s, err)
}

func (h *Handler) StartCancel(c *gin.Context) {
	var req AppointmentRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	s, err := h.manager.StartCancel(c.Request.Context(), caller(c), req.AppointmentID)
	respond(c, http.StatusCreated, s, err)
}
