package appointment

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/schedule"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "appointment not found")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
	ErrNotActive        = apperror.New(http.StatusConflict, "appointment is no longer active")
	ErrInvalidDate      = apperror.New(http.StatusBadRequest, "date must be an open day within the booking window")
	ErrInvalidTime      = apperror.New(http.StatusBadRequest, "time is not an offered slot")
	ErrInvalidInput     = apperror.New(http.StatusBadRequest, "invalid input parameters")
	ErrPastMidnight     = apperror.New(http.StatusUnprocessableEntity, "the service would run past midnight, pick an earlier time")
	ErrSlotTaken        = apperror.NewRetryable(http.StatusConflict, "this time was just taken, please pick another slot")
	ErrFetchFailed      = apperror.NewRetryable(http.StatusBadGateway, "failed to load appointments, please try again")
	ErrWriteFailed      = apperror.NewRetryable(http.StatusBadGateway, "failed to save appointment, please try again")
)

type Status string

const (
	// StatusPending is valid in storage but never produced by this service.
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// ActiveStatuses are the statuses shown in a client's appointment list.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) Valid() bool {
	return s.IsActive() || s == StatusCancelled
}

type Appointment struct {
	ID        string
	ClientID  string
	BarberID  string
	ServiceID string
	Date      string // YYYY-MM-DD
	Start     schedule.Clock
	End       schedule.Clock
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time

	// Read-side joins, empty on writes.
	ServiceName  string
	ServicePrice float64
	BarberName   string
}

// Duration is the booked length in minutes.
func (a *Appointment) Duration() int {
	return int(a.End - a.Start)
}

// Interval is the span this appointment occupies on its barber's day.
func (a *Appointment) Interval() schedule.Interval {
	return schedule.Interval{ID: a.ID, Start: a.Start, End: a.End}
}
