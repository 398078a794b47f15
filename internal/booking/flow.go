package booking

import (
	"time"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/catalog"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/schedule"
)

// Transitions below only touch the in-memory session. A rejected transition
// returns an error before mutating anything.

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Mode:      ModeCreate,
		State:     StateSelectingService,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// newEditSession fixes service and barber and opens the date picker.
func newEditSession(id string, target Target, svc ServiceChoice, barber BarberChoice, now time.Time) *Session {
	s := newSession(id, now)
	s.Mode = ModeEdit
	s.State = StateSelectingDate
	s.Target = &target
	s.Selection = Selection{Service: &svc, Barber: &barber}
	return s
}

// newCancelSession goes straight to the cancel confirmation.
func newCancelSession(id string, target Target, svc ServiceChoice, barber BarberChoice, now time.Time) *Session {
	s := newSession(id, now)
	s.Mode = ModeCancel
	s.State = StateAwaitingCancelConfirmation
	s.Target = &target
	start := target.Start
	s.Selection = Selection{Service: &svc, Barber: &barber, Date: target.Date, Time: &start}
	return s
}

// choosing reports whether the customer may still change selections.
func (s *Session) choosing() bool {
	if s.Mode == ModeCancel {
		return false
	}
	switch s.State {
	case StateSelectingService, StateSelectingBarber, StateSelectingDate, StateSelectingTime,
		StateAuthenticating, StateAwaitingConfirmation, StateFailed:
		return true
	}
	return false
}

// SelectService picks the service and clears every later choice.
func (s *Session) SelectService(svc ServiceChoice) error {
	if s.Mode == ModeEdit {
		return ErrFixedInEdit
	}
	if !s.choosing() {
		return ErrInvalidTransition
	}
	if svc.Duration <= 0 {
		return catalog.ErrInvalidDuration
	}

	s.Selection = Selection{Service: &svc}
	s.Available = nil
	s.LastError = nil
	s.Version++
	s.State = StateSelectingBarber
	return nil
}

func (s *Session) SelectBarber(b BarberChoice, active bool) error {
	if s.Mode == ModeEdit {
		return ErrFixedInEdit
	}
	if !s.choosing() || s.Selection.Service == nil {
		return ErrInvalidTransition
	}
	if !active {
		return catalog.ErrBarberInactive
	}

	s.Selection.Barber = &b
	s.Selection.Date = ""
	s.Selection.Time = nil
	s.Available = nil
	s.LastError = nil
	s.Version++
	s.State = StateSelectingDate
	return nil
}

// SelectDate returns the selection key the availability fetch must be stamped with.
func (s *Session) SelectDate(date string, bookable bool) (string, error) {
	if !s.choosing() || s.Selection.Barber == nil {
		return "", ErrInvalidTransition
	}
	if !bookable {
		return "", ErrDateNotBookable
	}

	s.Selection.Date = date
	s.Selection.Time = nil
	s.Available = nil
	s.LastError = nil
	s.Version++
	s.State = StateSelectingTime
	return s.SelectionKey(), nil
}

// ApplyAvailability stores a fetch result unless the selection moved on since
// the fetch was issued. It reports whether the result was kept.
func (s *Session) ApplyAvailability(key string, slots []schedule.Slot, fetchErr string, at time.Time) bool {
	if key != s.SelectionKey() {
		return false
	}
	if slots == nil {
		slots = []schedule.Slot{}
	}
	s.Available = &Availability{Key: key, Slots: slots, Error: fetchErr, FetchedAt: at}
	return true
}

// SelectTime accepts only a slot the conflict filter marked available in the
// snapshot for the current selection.
func (s *Session) SelectTime(t schedule.Clock) error {
	if !s.choosing() || s.Selection.Date == "" {
		return ErrInvalidTransition
	}
	if s.Available == nil || s.Available.Key != s.SelectionKey() {
		return ErrNoAvailability
	}
	slot, ok := schedule.Find(s.Available.Slots, t)
	if !ok || !slot.Available {
		return ErrSlotUnavailable
	}

	s.Selection.Time = &t
	s.LastError = nil
	s.State = StateSelectingTime
	return nil
}

// Confirm asks for the summary. Anonymous sessions detour through sign-in first.
func (s *Session) Confirm() error {
	if s.Mode == ModeCancel || s.State != StateSelectingTime {
		return ErrInvalidTransition
	}
	if !s.complete() {
		return ErrIncomplete
	}

	if s.OwnerID == "" {
		s.State = StateAuthenticating
		return nil
	}
	s.State = StateAwaitingConfirmation
	return nil
}

// Authenticate binds the session to the signed-in user and resumes an
// interrupted confirmation.
func (s *Session) Authenticate(userID, email string) error {
	if s.OwnerID != "" && s.OwnerID != userID {
		return ErrNotOwner
	}
	s.OwnerID = userID
	s.OwnerEmail = email
	if s.State == StateAuthenticating {
		s.State = StateAwaitingConfirmation
	}
	return nil
}

func (s *Session) complete() bool {
	sel := s.Selection
	return sel.Service != nil && sel.Barber != nil && sel.Date != "" && sel.Time != nil
}

// Summary describes what will be written; nil until the selection is complete.
func (s *Session) Summary() *Summary {
	if !s.complete() {
		return nil
	}
	sel := s.Selection
	sum := &Summary{
		Service:  sel.Service.Name,
		Barber:   sel.Barber.FullName,
		Date:     sel.Date,
		Start:    *sel.Time,
		End:      sel.Time.Add(sel.Service.Duration),
		Price:    sel.Service.Price,
		Duration: sel.Service.Duration,
	}
	if s.Mode == ModeEdit {
		sum.Previous = s.Target
	}
	if s.Mode == ModeCancel && s.Target != nil {
		sum.End = s.Target.End
	}
	return sum
}

// BeginSubmit moves to submitting. A session already submitting is rejected,
// which makes submission non-reentrant.
func (s *Session) BeginSubmit() error {
	if s.State == StateSubmitting {
		return ErrSubmitInProgress
	}

	want := StateAwaitingConfirmation
	if s.Mode == ModeCancel {
		want = StateAwaitingCancelConfirmation
	}
	if s.State != want {
		return ErrInvalidTransition
	}
	if !s.complete() || s.OwnerID == "" {
		return ErrIncomplete
	}
	if s.Mode != ModeCreate && s.Target == nil {
		return ErrIncomplete
	}

	s.State = StateSubmitting
	s.LastError = nil
	return nil
}

// CompleteSubmit records the written appointment and clears the transient selection.
func (s *Session) CompleteSubmit(r Result) error {
	if s.State != StateSubmitting {
		return ErrInvalidTransition
	}
	s.State = StateSucceeded
	s.Result = &r
	s.Selection = Selection{}
	s.Available = nil
	return nil
}

// FailSubmit keeps the selection so the same request can be resubmitted.
func (s *Session) FailSubmit(message string, retryable bool) error {
	if s.State != StateSubmitting {
		return ErrInvalidTransition
	}
	s.State = StateFailed
	s.LastError = &LastError{Message: message, Retryable: retryable}
	return nil
}

// AbandonSubmit fails a submission whose outcome was never recorded once it has
// been running for longer than after. The write may still have gone through.
func (s *Session) AbandonSubmit(now time.Time, after time.Duration) bool {
	if s.State != StateSubmitting || now.Sub(s.SubmittedAt) < after {
		return false
	}
	s.State = StateFailed
	s.LastError = &LastError{Message: msgOutcomeUnknown, Retryable: true}
	return true
}

// Retry returns a failed session to its confirmation step.
func (s *Session) Retry() error {
	if s.State == StateSubmitting {
		return ErrSubmitInProgress
	}
	if s.State != StateFailed {
		return ErrInvalidTransition
	}
	if s.Mode == ModeCancel {
		s.State = StateAwaitingCancelConfirmation
	} else {
		s.State = StateAwaitingConfirmation
	}
	return nil
}
