package http

import (
	"time"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/appointment"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/schedule"
)

// SlotsRequest selects the barber, service and day to build the picker for.
// ExcludeID names the caller's appointment under edit.
type SlotsRequest struct {
	BarberID  string `form:"barber_id" binding:"required,uuid"`
	ServiceID string `form:"service_id" binding:"required,uuid"`
	Date      string `form:"date" binding:"required,datetime=2006-01-02"`
	ExcludeID string `form:"exclude_id" binding:"omitempty,uuid"`
}

type DateResponse struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
}

type SlotsResponse struct {
	Date     string          `json:"date"`
	Duration int             `json:"duration"`
	Slots    []schedule.Slot `json:"slots"`
}

type AppointmentResponse struct {
	ID        string             `json:"id"`
	BarberID  string             `json:"barber_id"`
	ServiceID string             `json:"service_id"`
	Date      string             `json:"appointment_date"`
	StartTime schedule.Clock     `json:"start_time"`
	EndTime   schedule.Clock     `json:"end_time"`
	Status    appointment.Status `json:"status"`
	CreatedAt time.Time          `json:"created_at"`

	ServiceName  string  `json:"service_name,omitempty"`
	ServicePrice float64 `json:"service_price,omitempty"`
	BarberName   string  `json:"barber_name,omitempty"`
}

func NewAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:           a.ID,
		BarberID:     a.BarberID,
		ServiceID:    a.ServiceID,
		Date:         a.Date,
		StartTime:    a.Start,
		EndTime:      a.End,
		Status:       a.Status,
		CreatedAt:    a.CreatedAt,
		ServiceName:  a.ServiceName,
		ServicePrice: a.ServicePrice,
		BarberName:   a.BarberName,
	}
}
