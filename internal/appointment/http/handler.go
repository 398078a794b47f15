package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/appointment"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/auth"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/catalog"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/schedule"
)

type Handler struct {
	appointments appointment.Service
	catalog      catalog.Catalog
	gen          *schedule.Generator
	now          func() time.Time
}

func NewHandler(appointments appointment.Service, c catalog.Catalog, gen *schedule.Generator) *Handler {
	return &Handler{
		appointments: appointments,
		catalog:      c,
		gen:          gen,
		now:          time.Now,
	}
}

// ListDates returns the bookable days from today through the booking window.
func (h *Handler) ListDates(c *gin.Context) {
	dates := h.gen.AvailableDates(h.now(), schedule.BookingWindowDays)

	items := make([]DateResponse, len(dates))
	for i, d := range dates {
		items[i] = DateResponse{Date: schedule.FormatDate(d), Weekday: d.Weekday().String()}
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

// ListSlots returns every generated start time for the day with its availability.
func (h *Handler) ListSlots(c *gin.Context) {
	var req SlotsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	ctx := c.Request.Context()

	if req.ExcludeID != "" {
		// Only the owner may see the picker with their appointment left out.
		userID := auth.GetUserID(c)
		if userID == "" {
			response.Error(c, auth.ErrUnauthenticated)
			return
		}
		if _, err := h.appointments.GetOwned(ctx, req.ExcludeID, userID); err != nil {
			response.Error(c, err)
			return
		}
	}

	svc, err := h.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := svc.Bookable(); err != nil {
		response.Error(c, err)
		return
	}
	if _, err := h.catalog.GetActiveBarber(ctx, req.BarberID); err != nil {
		response.Error(c, err)
		return
	}

	avail, err := h.appointments.Availability(ctx, appointment.AvailabilityQuery{
		BarberID:  req.BarberID,
		Date:      req.Date,
		Duration:  svc.Duration,
		ExcludeID: req.ExcludeID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, SlotsResponse{Date: avail.Date, Duration: svc.Duration, Slots: avail.Slots})
}

// ListMine returns the caller's pending and confirmed appointments.
func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.appointments.ListActive(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]AppointmentResponse, len(list))
	for i, a := range list {
		items[i] = NewAppointmentResponse(a)
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	a, err := h.appointments.GetOwned(c.Request.Context(), req.ID, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAppointmentResponse(a))
}
