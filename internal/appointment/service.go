package appointment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/notify"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/metrics"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/schedule"
)

type AvailabilityQuery struct {
	BarberID  string
	Date      string
	Duration  int
	ExcludeID string // appointment under edit
}

type Availability struct {
	Date  string
	Slots []schedule.Slot
}

type BookRequest struct {
	ClientID  string
	BarberID  string
	ServiceID string
	Date      string
	Start     schedule.Clock
	Duration  int
}

type RescheduleRequest struct {
	ID       string
	ClientID string
	Date     string
	Start    schedule.Clock
	Duration int // zero keeps the booked length
}

type Service interface {
	Availability(ctx context.Context, q AvailabilityQuery) (*Availability, error)
	Book(ctx context.Context, req BookRequest) (*Appointment, error)
	Reschedule(ctx context.Context, req RescheduleRequest) (*Appointment, error)
	Cancel(ctx context.Context, id, clientID string) (*Appointment, error)
	GetOwned(ctx context.Context, id, clientID string) (*Appointment, error)
	ListActive(ctx context.Context, clientID string) ([]*Appointment, error)
}

type Options struct {
	// RecheckConflicts re-reads the barber's day right before each write and
	// rejects the write with ErrSlotTaken when the slot is no longer free.
	RecheckConflicts bool
	Now              func() time.Time
}

type service struct {
	repo      Repository
	gen       *schedule.Generator
	publisher notify.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	opts      Options
}

func NewService(
	repo Repository,
	gen *schedule.Generator,
	publisher notify.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts Options,
) Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &service{
		repo:      repo,
		gen:       gen,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		opts:      opts,
	}
}

func (s *service) Availability(ctx context.Context, q AvailabilityQuery) (*Availability, error) {
	result := &Availability{Date: q.Date, Slots: []schedule.Slot{}}

	slots := s.gen.Generate(q.Date, q.Duration)
	if len(slots) == 0 {
		return result, nil
	}

	booked, err := s.repo.ListBooked(ctx, q.BarberID, q.Date, q.ExcludeID)
	if err != nil {
		return nil, ErrFetchFailed.WithCause(err)
	}

	result.Slots = schedule.Filter(slots, q.Duration, booked, q.ExcludeID)
	return result, nil
}

func (s *service) Book(ctx context.Context, req BookRequest) (*Appointment, error) {
	if req.ClientID == "" || req.BarberID == "" || req.ServiceID == "" || req.Duration <= 0 {
		return nil, ErrInvalidInput
	}
	if err := s.validateSlot(req.Date, req.Start, req.Duration); err != nil {
		return nil, err
	}
	if err := s.recheck(ctx, req.BarberID, req.Date, req.Start, req.Duration, ""); err != nil {
		return nil, err
	}

	a := &Appointment{
		ClientID:  req.ClientID,
		BarberID:  req.BarberID,
		ServiceID: req.ServiceID,
		Date:      req.Date,
		Start:     req.Start,
		End:       req.Start.Add(req.Duration),
		Status:    StatusConfirmed,
	}

	err := s.repo.Create(ctx, a)
	s.metrics.ObserveWrite("book", err)
	if err != nil {
		return nil, writeError(err)
	}

	s.publish(ctx, notify.EventAppointmentBooked, a)
	return a, nil
}

func (s *service) Reschedule(ctx context.Context, req RescheduleRequest) (*Appointment, error) {
	a, err := s.GetOwned(ctx, req.ID, req.ClientID)
	if err != nil {
		return nil, err
	}
	if !a.Status.IsActive() {
		return nil, ErrNotActive
	}

	duration := req.Duration
	if duration <= 0 {
		duration = a.Duration()
	}
	if err := s.validateSlot(req.Date, req.Start, duration); err != nil {
		return nil, err
	}
	if err := s.recheck(ctx, a.BarberID, req.Date, req.Start, duration, a.ID); err != nil {
		return nil, err
	}

	end := req.Start.Add(duration)
	err = s.repo.Reschedule(ctx, a.ID, req.Date, req.Start, end)
	s.metrics.ObserveWrite("reschedule", err)
	if err != nil {
		return nil, writeError(err)
	}

	a.Date = req.Date
	a.Start = req.Start
	a.End = end
	s.publish(ctx, notify.EventAppointmentRescheduled, a)
	return a, nil
}

// Cancel soft-deletes the appointment by moving it to cancelled.
func (s *service) Cancel(ctx context.Context, id, clientID string) (*Appointment, error) {
	a, err := s.GetOwned(ctx, id, clientID)
	if err != nil {
		return nil, err
	}
	if !a.Status.IsActive() {
		return nil, ErrNotActive
	}

	err = s.repo.SetStatus(ctx, a.ID, StatusCancelled)
	s.metrics.ObserveWrite("cancel", err)
	if err != nil {
		return nil, writeError(err)
	}

	a.Status = StatusCancelled
	s.publish(ctx, notify.EventAppointmentCancelled, a)
	return a, nil
}

func (s *service) GetOwned(ctx context.Context, id, clientID string) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrFetchFailed.WithCause(err)
	}
	if a.ClientID != clientID {
		return nil, ErrPermissionDenied
	}
	return a, nil
}

func (s *service) ListActive(ctx context.Context, clientID string) ([]*Appointment, error) {
	list, err := s.repo.ListActiveByClient(ctx, clientID)
	if err != nil {
		return nil, ErrFetchFailed.WithCause(err)
	}
	return list, nil
}

// validateSlot checks the date is an open day inside the booking window,
// start is one of the generated slots for that day and the service ends by midnight.
func (s *service) validateSlot(date string, start schedule.Clock, duration int) error {
	day, err := schedule.ParseDate(date, s.gen.Location())
	if err != nil {
		return ErrInvalidDate
	}
	if !s.gen.IsDateEligible(day) || !s.gen.InWindow(day, s.opts.Now()) {
		return ErrInvalidDate
	}
	offered := false
	for _, slot := range s.gen.SlotsFor(day) {
		if slot == start {
			offered = true
			break
		}
	}
	if !offered {
		return ErrInvalidTime
	}
	if start.Add(duration) > schedule.EndOfDay {
		return ErrPastMidnight
	}
	return nil
}

func (s *service) recheck(ctx context.Context, barberID, date string, start schedule.Clock, duration int, excludeID string) error {
	if !s.opts.RecheckConflicts {
		return nil
	}
	booked, err := s.repo.ListBooked(ctx, barberID, date, excludeID)
	if err != nil {
		return ErrFetchFailed.WithCause(err)
	}
	if !schedule.IsAvailable(start, duration, booked, excludeID) {
		return ErrSlotTaken
	}
	return nil
}

func (s *service) publish(ctx context.Context, eventType string, a *Appointment) {
	e := notify.NewEvent(eventType, a.ID, map[string]string{
		"client_id":  a.ClientID,
		"barber_id":  a.BarberID,
		"service_id": a.ServiceID,
		"date":       a.Date,
		"start_time": a.Start.String(),
		"end_time":   a.End.String(),
		"status":     string(a.Status),
	})
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "publish appointment event failed", "type", eventType, "appointment_id", a.ID, "err", err)
	}
}

// writeError passes domain errors such as ErrSlotTaken and ErrNotFound
// through and reports anything else as a retryable write failure.
func writeError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return ErrWriteFailed.WithCause(err)
}
