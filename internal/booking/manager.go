package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/appointment"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/auth"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/catalog"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/metrics"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/schedule"
)

// completionWait is how long a request waits for the session lock when it
// must record the outcome of work already done.
const completionWait = 2 * time.Second

// abandonSubmitAfter bounds how long a submission may sit without a recorded
// outcome before Retry gives up on it.
const abandonSubmitAfter = time.Minute

var errStale = errors.New("availability fetched for an outdated selection")

// Manager drives booking sessions through their lifecycle.
type Manager struct {
	store        Store
	catalog      catalog.Catalog
	appointments appointment.Service
	gen          *schedule.Generator
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time
}

func NewManager(
	store Store,
	c catalog.Catalog,
	appointments appointment.Service,
	gen *schedule.Generator,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		store:        store,
		catalog:      c,
		appointments: appointments,
		gen:          gen,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

// Create starts a new booking. caller may be nil for anonymous browsing.
func (m *Manager) Create(ctx context.Context, caller *auth.Identity) (*Session, error) {
	s := newSession(uuid.NewString(), m.now())
	if caller != nil {
		s.OwnerID, s.OwnerEmail = caller.UserID, caller.Email
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) Get(ctx context.Context, id string, caller *auth.Identity) (*Session, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(s, caller); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) Delete(ctx context.Context, id string, caller *auth.Identity) error {
	unlock, err := m.store.Lock(ctx, id, 0)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := m.Get(ctx, id, caller); err != nil {
		return err
	}
	return m.store.Delete(ctx, id)
}

func (m *Manager) SelectService(ctx context.Context, id string, caller *auth.Identity, serviceID string) (*Session, error) {
	svc, err := m.catalog.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	return m.mutate(ctx, id, caller, 0, func(s *Session) error {
		return s.SelectService(ServiceChoice{
			ID:       svc.ID,
			Name:     svc.Name,
			Duration: svc.Duration,
			Price:    svc.Price,
		})
	})
}

func (m *Manager) SelectBarber(ctx context.Context, id string, caller *auth.Identity, barberID string) (*Session, error) {
	b, err := m.catalog.GetActiveBarber(ctx, barberID)
	if err != nil {
		return nil, err
	}

	return m.mutate(ctx, id, caller, 0, func(s *Session) error {
		return s.SelectBarber(BarberChoice{ID: b.ID, FullName: b.FullName}, b.IsActive)
	})
}

// SelectDate records the date and loads the conflict-filtered slots for it.
// The fetch runs without holding the session lock; its result is dropped if
// the selection changed while it was in flight.
func (m *Manager) SelectDate(ctx context.Context, id string, caller *auth.Identity, date string) (*Session, error) {
	bookable := m.bookable(date)

	var (
		key string
		q   appointment.AvailabilityQuery
	)
	_, err := m.mutate(ctx, id, caller, 0, func(s *Session) error {
		k, err := s.SelectDate(date, bookable)
		if err != nil {
			return err
		}
		key = k
		q = availabilityQuery(s)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return m.loadAvailability(ctx, id, caller, key, q)
}

func (m *Manager) bookable(date string) bool {
	day, err := schedule.ParseDate(date, m.gen.Location())
	if err != nil {
		return false
	}
	return m.gen.IsDateEligible(day) && m.gen.InWindow(day, m.now())
}

func availabilityQuery(s *Session) appointment.AvailabilityQuery {
	q := appointment.AvailabilityQuery{
		BarberID: s.Selection.Barber.ID,
		Date:     s.Selection.Date,
		Duration: s.Selection.Service.Duration,
	}
	if s.Mode == ModeEdit && s.Target != nil {
		q.ExcludeID = s.Target.AppointmentID
	}
	return q
}

func (m *Manager) loadAvailability(ctx context.Context, id string, caller *auth.Identity, key string, q appointment.AvailabilityQuery) (*Session, error) {
	var (
		slots    []schedule.Slot
		fetchMsg string
	)
	avail, fetchErr := m.appointments.Availability(ctx, q)
	if fetchErr != nil {
		fetchMsg = publicMessage(fetchErr)
	} else {
		slots = avail.Slots
	}

	s, err := m.mutate(ctx, id, caller, completionWait, func(s *Session) error {
		if !s.ApplyAvailability(key, slots, fetchMsg, m.now()) {
			return errStale
		}
		return nil
	})
	if errors.Is(err, errStale) {
		m.metrics.StaleFetchDiscarded()
		m.logger.DebugContext(ctx, "discarded stale availability", "session_id", id, "key", key)
		return m.Get(ctx, id, caller)
	}
	if err != nil {
		return nil, err
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	return s, nil
}

func (m *Manager) SelectTime(ctx context.Context, id string, caller *auth.Identity, t schedule.Clock) (*Session, error) {
	return m.mutate(ctx, id, caller, 0, func(s *Session) error {
		return s.SelectTime(t)
	})
}

// Confirm moves to the summary, or to sign-in for anonymous sessions.
func (m *Manager) Confirm(ctx context.Context, id string, caller *auth.Identity) (*Session, error) {
	return m.mutate(ctx, id, caller, 0, func(s *Session) error {
		return s.Confirm()
	})
}

// Authenticate binds the session to caller and resumes where sign-in interrupted it.
func (m *Manager) Authenticate(ctx context.Context, id string, caller *auth.Identity) (*Session, error) {
	if caller == nil {
		return nil, auth.ErrUnauthenticated
	}
	return m.mutate(ctx, id, caller, 0, func(s *Session) error {
		return s.Authenticate(caller.UserID, caller.Email)
	})
}

// Retry returns a failed session to confirmation. A submission whose outcome
// was never recorded is failed first once abandonSubmitAfter has passed.
func (m *Manager) Retry(ctx context.Context, id string, caller *auth.Identity) (*Session, error) {
	return m.mutate(ctx, id, caller, 0, func(s *Session) error {
		if s.AbandonSubmit(m.now(), abandonSubmitAfter) {
			m.logger.WarnContext(ctx, "abandoned submission without recorded outcome", "session_id", id)
		}
		return s.Retry()
	})
}

// Submit writes the confirmed create or edit.
func (m *Manager) Submit(ctx context.Context, id string, caller *auth.Identity) (*Session, error) {
	return m.submit(ctx, id, caller, false)
}

// ConfirmCancel performs the cancellation the customer explicitly confirmed.
func (m *Manager) ConfirmCancel(ctx context.Context, id string, caller *auth.Identity) (*Session, error) {
	return m.submit(ctx, id, caller, true)
}

func (m *Manager) submit(ctx context.Context, id string, caller *auth.Identity, cancel bool) (*Session, error) {
	s, err := m.mutate(ctx, id, caller, 0, func(s *Session) error {
		if (s.Mode == ModeCancel) != cancel {
			return ErrInvalidTransition
		}
		if err := s.BeginSubmit(); err != nil {
			return err
		}
		s.SubmittedAt = m.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, writeErr := m.write(ctx, s)

	// The write happened; record its outcome even if the client went away.
	ctx = context.WithoutCancel(ctx)
	s, err = m.mutate(ctx, id, caller, completionWait, func(s *Session) error {
		if writeErr != nil {
			return s.FailSubmit(publicMessage(writeErr), retryable(writeErr))
		}
		return s.CompleteSubmit(*result)
	})
	if err != nil {
		m.logger.ErrorContext(ctx, "booking outcome not recorded",
			"session_id", id, "write_err", writeErr, "err", err)
		return nil, err
	}
	if writeErr != nil {
		return nil, writeErr
	}
	return s, nil
}

func (m *Manager) write(ctx context.Context, s *Session) (*Result, error) {
	sel := s.Selection

	var (
		a   *appointment.Appointment
		err error
	)
	switch s.Mode {
	case ModeCreate:
		a, err = m.appointments.Book(ctx, appointment.BookRequest{
			ClientID:  s.OwnerID,
			BarberID:  sel.Barber.ID,
			ServiceID: sel.Service.ID,
			Date:      sel.Date,
			Start:     *sel.Time,
			Duration:  sel.Service.Duration,
		})
	case ModeEdit:
		a, err = m.appointments.Reschedule(ctx, appointment.RescheduleRequest{
			ID:       s.Target.AppointmentID,
			ClientID: s.OwnerID,
			Date:     sel.Date,
			Start:    *sel.Time,
			Duration: sel.Service.Duration,
		})
	case ModeCancel:
		a, err = m.appointments.Cancel(ctx, s.Target.AppointmentID, s.OwnerID)
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		AppointmentID: a.ID,
		Date:          a.Date,
		Start:         a.Start,
		End:           a.End,
		Status:        string(a.Status),
	}, nil
}

// StartEdit opens a reschedule session for one of the caller's active
// appointments. Service and barber stay fixed; when the current date is still
// bookable it is preselected and its slots are loaded without the appointment
// blocking itself.
func (m *Manager) StartEdit(ctx context.Context, caller *auth.Identity, appointmentID string) (*Session, error) {
	a, err := m.activeAppointment(ctx, caller, appointmentID)
	if err != nil {
		return nil, err
	}

	svc, err := m.catalog.GetService(ctx, a.ServiceID)
	if err != nil {
		return nil, err
	}
	if err := svc.Bookable(); err != nil {
		return nil, err
	}

	s := newEditSession(uuid.NewString(),
		Target{AppointmentID: a.ID, Date: a.Date, Start: a.Start, End: a.End},
		ServiceChoice{ID: svc.ID, Name: svc.Name, Duration: svc.Duration, Price: svc.Price},
		BarberChoice{ID: a.BarberID, FullName: a.BarberName},
		m.now())
	s.OwnerID, s.OwnerEmail = caller.UserID, caller.Email
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}

	if !m.bookable(a.Date) {
		return s, nil
	}
	return m.SelectDate(ctx, s.ID, caller, a.Date)
}

// StartCancel opens the explicit confirmation step for cancelling an appointment.
func (m *Manager) StartCancel(ctx context.Context, caller *auth.Identity, appointmentID string) (*Session, error) {
	a, err := m.activeAppointment(ctx, caller, appointmentID)
	if err != nil {
		return nil, err
	}

	s := newCancelSession(uuid.NewString(),
		Target{AppointmentID: a.ID, Date: a.Date, Start: a.Start, End: a.End},
		ServiceChoice{ID: a.ServiceID, Name: a.ServiceName, Duration: a.Duration(), Price: a.ServicePrice},
		BarberChoice{ID: a.BarberID, FullName: a.BarberName},
		m.now())
	s.OwnerID, s.OwnerEmail = caller.UserID, caller.Email
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) activeAppointment(ctx context.Context, caller *auth.Identity, id string) (*appointment.Appointment, error) {
	if caller == nil {
		return nil, auth.ErrUnauthenticated
	}
	a, err := m.appointments.GetOwned(ctx, id, caller.UserID)
	if err != nil {
		return nil, err
	}
	if !a.Status.IsActive() {
		return nil, appointment.ErrNotActive
	}
	return a, nil
}

// mutate runs fn on the locked session and saves it only when fn succeeds.
// A signed-in caller claims an anonymous session.
func (m *Manager) mutate(ctx context.Context, id string, caller *auth.Identity, wait time.Duration, fn func(*Session) error) (*Session, error) {
	unlock, err := m.store.Lock(ctx, id, wait)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(s, caller); err != nil {
		return nil, err
	}
	if caller != nil && s.OwnerID == "" {
		s.OwnerID, s.OwnerEmail = caller.UserID, caller.Email
	}

	if err := fn(s); err != nil {
		return nil, err
	}

	s.UpdatedAt = m.now()
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func authorize(s *Session, caller *auth.Identity) error {
	if s.OwnerID == "" {
		return nil
	}
	if caller == nil || caller.UserID != s.OwnerID {
		return ErrNotOwner
	}
	return nil
}

func publicMessage(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "something went wrong, please try again"
}

func retryable(err error) bool {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return true
}
