package booking

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/schedule"
)

var (
	ErrSessionNotFound   = apperror.New(http.StatusNotFound, "booking session not found or expired")
	ErrNotOwner          = apperror.New(http.StatusForbidden, "booking session belongs to another user")
	ErrInvalidTransition = apperror.New(http.StatusConflict, "action not allowed in the current booking step")
	ErrFixedInEdit       = apperror.New(http.StatusConflict, "service and barber cannot be changed while editing")
	ErrDateNotBookable   = apperror.New(http.StatusUnprocessableEntity, "date is closed or outside the booking window")
	ErrSlotUnavailable   = apperror.New(http.StatusConflict, "time is not available for this barber")
	ErrNoAvailability    = apperror.New(http.StatusConflict, "availability for this date has not been loaded yet")
	ErrIncomplete        = apperror.New(http.StatusBadRequest, "select a service, barber, date and time before confirming")
	ErrSubmitInProgress  = apperror.New(http.StatusConflict, "this booking is already being submitted")
	ErrSessionBusy       = apperror.NewRetryable(http.StatusConflict, "booking session is busy, please retry")
)

// msgOutcomeUnknown is shown when a submission was abandoned without a recorded result.
const msgOutcomeUnknown = "we could not confirm your last request, check your appointments before trying again"

type State string

const (
	StateSelectingService           State = "selecting_service"
	StateSelectingBarber            State = "selecting_barber"
	StateSelectingDate              State = "selecting_date"
	StateSelectingTime              State = "selecting_time"
	StateAuthenticating             State = "authenticating"
	StateAwaitingConfirmation       State = "awaiting_confirmation"
	StateAwaitingCancelConfirmation State = "awaiting_cancel_confirmation"
	StateSubmitting                 State = "submitting"
	StateSucceeded                  State = "succeeded"
	StateFailed                     State = "failed"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
	ModeCancel Mode = "cancel"
)

type ServiceChoice struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Duration int     `json:"duration"`
	Price    float64 `json:"price"`
}

type BarberChoice struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// Selection is the transient choice the customer is building.
type Selection struct {
	Service *ServiceChoice  `json:"service,omitempty"`
	Barber  *BarberChoice   `json:"barber,omitempty"`
	Date    string          `json:"date,omitempty"`
	Time    *schedule.Clock `json:"time,omitempty"`
}

// Availability is a conflict-filtered slot list tagged with the selection key
// it was fetched for.
type Availability struct {
	Key       string          `json:"key"`
	Slots     []schedule.Slot `json:"slots"`
	Error     string          `json:"error,omitempty"`
	FetchedAt time.Time       `json:"fetched_at"`
}

type LastError struct {
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// Target is the existing appointment an edit or cancel session works on.
type Target struct {
	AppointmentID string         `json:"appointment_id"`
	Date          string         `json:"date"`
	Start         schedule.Clock `json:"start"`
	End           schedule.Clock `json:"end"`
}

// Result is what a successful submission produced.
type Result struct {
	AppointmentID string         `json:"appointment_id"`
	Date          string         `json:"date"`
	Start         schedule.Clock `json:"start"`
	End           schedule.Clock `json:"end"`
	Status        string         `json:"status"`
}

type Session struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"owner_id,omitempty"`
	OwnerEmail  string        `json:"owner_email,omitempty"`
	Mode        Mode          `json:"mode"`
	State       State         `json:"state"`
	Selection   Selection     `json:"selection"`
	Version     int           `json:"version"`
	Available   *Availability `json:"availability,omitempty"`
	Target      *Target       `json:"target,omitempty"`
	LastError   *LastError    `json:"last_error,omitempty"`
	Result      *Result       `json:"result,omitempty"`
	SubmittedAt time.Time     `json:"submitted_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// SelectionKey identifies the barber and date an availability fetch belongs to.
// Version moves on every barber or date choice, so a repeated choice still
// outdates fetches issued before it.
func (s *Session) SelectionKey() string {
	barberID := ""
	if s.Selection.Barber != nil {
		barberID = s.Selection.Barber.ID
	}
	return fmt.Sprintf("%s|%s|%d", barberID, s.Selection.Date, s.Version)
}

// Summary is shown for explicit confirmation before any write.
type Summary struct {
	Service  string         `json:"service"`
	Barber   string         `json:"barber"`
	Date     string         `json:"date"`
	Start    schedule.Clock `json:"start"`
	End      schedule.Clock `json:"end"`
	Price    float64        `json:"price"`
	Duration int            `json:"duration"`
	Previous *Target        `json:"previous,omitempty"` // edit and cancel only
}
