package http

import (
	"time"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/booking"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/schedule"
)

type SelectServiceRequest struct {
	ServiceID string `json:"service_id" binding:"required,uuid"`
}

type SelectBarberRequest struct {
	BarberID string `json:"barber_id" binding:"required,uuid"`
}

type SelectDateRequest struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
}

// SelectTimeRequest carries an HH:MM start time. Midnight is never offered,
// so the zero clock counts as missing.
type SelectTimeRequest struct {
	Time schedule.Clock `json:"time" binding:"required"`
}

// AppointmentRefRequest seeds an edit or cancel session.
type AppointmentRefRequest struct {
	AppointmentID string `json:"appointment_id" binding:"required,uuid"`
}

type AvailabilityResponse struct {
	Slots     []schedule.Slot `json:"slots"`
	Error     string          `json:"error,omitempty"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// SessionResponse is the client's view of a booking session: the step it is on,
// what has been picked so far and, once complete, the summary to confirm.
type SessionResponse struct {
	ID            string                `json:"id"`
	Mode          booking.Mode          `json:"mode"`
	State         booking.State         `json:"state"`
	Authenticated bool                  `json:"authenticated"`
	Selection     booking.Selection     `json:"selection"`
	Availability  *AvailabilityResponse `json:"availability,omitempty"`
	Target        *booking.Target       `json:"target,omitempty"`
	Summary       *booking.Summary      `json:"summary,omitempty"`
	LastError     *booking.LastError    `json:"last_error,omitempty"`
	Result        *booking.Result       `json:"result,omitempty"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func NewSessionResponse(s *booking.Session) SessionResponse {
	resp := SessionResponse{
		ID:            s.ID,
		Mode:          s.Mode,
		State:         s.State,
		Authenticated: s.OwnerID != "",
		Selection:     s.Selection,
		Target:        s.Target,
		Summary:       s.Summary(),
		LastError:     s.LastError,
		Result:        s.Result,
		UpdatedAt:     s.UpdatedAt,
	}
	if s.Available != nil {
		slots := s.Available.Slots
		if slots == nil {
			slots = make([]schedule.Slot, 0)
		}
		resp.Availability = &AvailabilityResponse{
			Slots:     slots,
			Error:     s.Available.Error,
			FetchedAt: s.Available.FetchedAt,
		}
	}
	return resp
}
