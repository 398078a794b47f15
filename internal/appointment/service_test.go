package appointment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/notify"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu      sync.Mutex
	seq     int
	items   map[string]*Appointment
	failGet error
	failWr  error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[string]*Appointment{}}
}

func (r *memoryRepo) put(a Appointment) *Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := a
	r.items[a.ID] = &cp
	return &cp
}

func (r *memoryRepo) Create(_ context.Context, a *Appointment) error {
	if r.failWr != nil {
		return r.failWr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	a.ID = "appt-" + strconv.Itoa(r.seq)
	cp := *a
	r.items[a.ID] = &cp
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*Appointment, error) {
	if r.failGet != nil {
		return nil, r.failGet
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memoryRepo) ListBooked(_ context.Context, barberID, date, excludeID string) ([]schedule.Interval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []schedule.Interval
	for _, a := range r.items {
		if a.BarberID == barberID && a.Date == date && a.Status == StatusConfirmed && a.ID != excludeID {
			out = append(out, a.Interval())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (r *memoryRepo) Reschedule(_ context.Context, id, date string, start, end schedule.Clock) error {
	if r.failWr != nil {
		return r.failWr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	a.Date, a.Start, a.End = date, start, end
	return nil
}

func (r *memoryRepo) SetStatus(_ context.Context, id string, status Status) error {
	if r.failWr != nil {
		return r.failWr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	return nil
}

func (r *memoryRepo) ListActiveByClient(_ context.Context, clientID string) ([]*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Appointment
	for _, a := range r.items {
		if a.ClientID == clientID && a.Status.IsActive() {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Start < out[j].Start
	})
	return out, nil
}

func (r *memoryRepo) ListByDate(_ context.Context, date string, status Status) ([]*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Appointment
	for _, a := range r.items {
		if a.Date == date && a.Status == status {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e notify.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// Monday 2026-02-02, mid-morning.
var testNow = time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)

func newTestService(repo Repository, pub notify.Publisher, recheck bool) Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen := schedule.NewGenerator(schedule.DefaultHours(), time.UTC, logger)
	return NewService(repo, gen, pub, nil, logger, Options{
		RecheckConflicts: recheck,
		Now:              func() time.Time { return testNow },
	})
}

func confirmed(id, client, barber, date, start, end string) Appointment {
	return Appointment{
		ID:        id,
		ClientID:  client,
		BarberID:  barber,
		ServiceID: "svc-1",
		Date:      date,
		Start:     schedule.MustParseClock(start),
		End:       schedule.MustParseClock(end),
		Status:    StatusConfirmed,
	}
}

func TestAvailability_MarksBookedSlots(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(confirmed("a1", "c1", "b1", "2026-02-03", "10:00", "11:00"))
	cancelled := confirmed("a2", "c1", "b1", "2026-02-03", "12:00", "13:00")
	cancelled.Status = StatusCancelled
	repo.put(cancelled)
	svc := newTestService(repo, &recordingPublisher{}, false)

	avail, err := svc.Availability(context.Background(), AvailabilityQuery{BarberID: "b1", Date: "2026-02-03", Duration: 30})
	require.NoError(t, err)
	require.Len(t, avail.Slots, 28)

	tests := []struct {
		at   string
		want bool
	}{
		{at: "09:30", want: true},
		{at: "10:00", want: false},
		{at: "10:30", want: false},
		{at: "11:00", want: true},
		{at: "12:00", want: true}, // cancelled does not block
	}
	for _, tt := range tests {
		t.Run(tt.at, func(t *testing.T) {
			slot, ok := schedule.Find(avail.Slots, schedule.MustParseClock(tt.at))
			require.True(t, ok)
			assert.Equal(t, tt.want, slot.Available)
		})
	}
}

func TestAvailability_EmptyWithoutDateOrDuration(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &recordingPublisher{}, false)

	avail, err := svc.Availability(context.Background(), AvailabilityQuery{BarberID: "b1", Date: "2026-02-08", Duration: 30})
	require.NoError(t, err)
	assert.Empty(t, avail.Slots)

	avail, err = svc.Availability(context.Background(), AvailabilityQuery{BarberID: "b1", Date: "2026-02-03"})
	require.NoError(t, err)
	assert.Empty(t, avail.Slots)
}

func TestAvailability_EditDoesNotSelfBlock(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(confirmed("own", "c1", "b1", "2026-02-03", "10:00", "11:00"))
	svc := newTestService(repo, &recordingPublisher{}, false)

	avail, err := svc.Availability(context.Background(), AvailabilityQuery{
		BarberID: "b1", Date: "2026-02-03", Duration: 60, ExcludeID: "own",
	})
	require.NoError(t, err)

	slot, ok := schedule.Find(avail.Slots, schedule.MustParseClock("10:00"))
	require.True(t, ok)
	assert.True(t, slot.Available)
}

func TestBook(t *testing.T) {
	repo := newMemoryRepo()
	pub := &recordingPublisher{}
	svc := newTestService(repo, pub, false)

	a, err := svc.Book(context.Background(), BookRequest{
		ClientID:  "c1",
		BarberID:  "b1",
		ServiceID: "svc-1",
		Date:      "2026-02-04",
		Start:     schedule.MustParseClock("21:00"),
		Duration:  90,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, StatusConfirmed, a.Status)
	assert.Equal(t, "22:30", a.End.String())
	assert.Equal(t, []string{notify.EventAppointmentBooked}, pub.types())
}

func TestBook_Validation(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &recordingPublisher{}, false)
	valid := BookRequest{
		ClientID: "c1", BarberID: "b1", ServiceID: "svc-1",
		Date: "2026-02-04", Start: schedule.MustParseClock("09:00"), Duration: 30,
	}

	tests := []struct {
		name   string
		mutate func(r *BookRequest)
		want   error
	}{
		{name: "missing client", mutate: func(r *BookRequest) { r.ClientID = "" }, want: ErrInvalidInput},
		{name: "zero duration", mutate: func(r *BookRequest) { r.Duration = 0 }, want: ErrInvalidInput},
		{name: "sunday", mutate: func(r *BookRequest) { r.Date = "2026-02-08" }, want: ErrInvalidDate},
		{name: "past date", mutate: func(r *BookRequest) { r.Date = "2026-02-01" }, want: ErrInvalidDate},
		{name: "beyond window", mutate: func(r *BookRequest) { r.Date = "2026-03-04" }, want: ErrInvalidDate},
		{name: "bad date", mutate: func(r *BookRequest) { r.Date = "tomorrow" }, want: ErrInvalidDate},
		{name: "off-grid time", mutate: func(r *BookRequest) { r.Start = schedule.MustParseClock("09:15") }, want: ErrInvalidTime},
		{name: "no 21:30 slot", mutate: func(r *BookRequest) { r.Start = schedule.MustParseClock("21:30") }, want: ErrInvalidTime},
		{
			name: "ends past midnight",
			mutate: func(r *BookRequest) {
				r.Start, r.Duration = schedule.MustParseClock("22:00"), 150
			},
			want: ErrPastMidnight,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := svc.Book(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBook_EndingAtMidnight(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &recordingPublisher{}, true)

	a, err := svc.Book(context.Background(), BookRequest{
		ClientID: "c1", BarberID: "b1", ServiceID: "svc-1",
		Date: "2026-02-03", Start: schedule.MustParseClock("22:00"), Duration: 120,
	})
	require.NoError(t, err)
	assert.Equal(t, "24:00", a.End.String())

	// The stored end reads back the way the database returns it.
	end, err := schedule.ParseClock(a.End.String() + ":00")
	require.NoError(t, err)
	assert.Equal(t, a.End, end)

	_, err = svc.Book(context.Background(), BookRequest{
		ClientID: "c2", BarberID: "b1", ServiceID: "svc-1",
		Date: "2026-02-03", Start: schedule.MustParseClock("22:00"), Duration: 150,
	})
	assert.ErrorIs(t, err, ErrPastMidnight)
	assert.False(t, ErrPastMidnight.Retryable)
	assert.Len(t, repo.items, 1, "nothing written past midnight")
}

func TestBook_RecheckRejectsTakenSlot(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(confirmed("a1", "c2", "b1", "2026-02-04", "09:00", "10:00"))
	req := BookRequest{
		ClientID: "c1", BarberID: "b1", ServiceID: "svc-1",
		Date: "2026-02-04", Start: schedule.MustParseClock("09:30"), Duration: 30,
	}

	_, err := newTestService(repo, &recordingPublisher{}, true).Book(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Without the recheck the write goes through and storage is the arbiter.
	_, err = newTestService(repo, &recordingPublisher{}, false).Book(context.Background(), req)
	assert.NoError(t, err)
}

func TestBook_WriteFailures(t *testing.T) {
	req := BookRequest{
		ClientID: "c1", BarberID: "b1", ServiceID: "svc-1",
		Date: "2026-02-04", Start: schedule.MustParseClock("09:00"), Duration: 30,
	}

	repo := newMemoryRepo()
	repo.failWr = ErrSlotTaken.WithCause(errors.New("exclusion violation"))
	_, err := newTestService(repo, &recordingPublisher{}, false).Book(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotTaken)

	repo.failWr = errors.New("connection reset")
	_, err = newTestService(repo, &recordingPublisher{}, false).Book(context.Background(), req)
	assert.ErrorIs(t, err, ErrWriteFailed)
}

func TestReschedule(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(confirmed("own", "c1", "b1", "2026-02-03", "10:00", "11:00"))
	pub := &recordingPublisher{}
	svc := newTestService(repo, pub, true)

	// Moving by half an hour overlaps only the appointment itself.
	a, err := svc.Reschedule(context.Background(), RescheduleRequest{
		ID: "own", ClientID: "c1", Date: "2026-02-03", Start: schedule.MustParseClock("10:30"),
	})
	require.NoError(t, err)
	assert.Equal(t, "10:30", a.Start.String())
	assert.Equal(t, "11:30", a.End.String())
	assert.Equal(t, "b1", a.BarberID)
	assert.Equal(t, "svc-1", a.ServiceID)

	stored, err := repo.GetByID(context.Background(), "own")
	require.NoError(t, err)
	assert.Equal(t, "10:30", stored.Start.String())
	assert.Equal(t, []string{notify.EventAppointmentRescheduled}, pub.types())
}

func TestReschedule_Rejections(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(confirmed("own", "c1", "b1", "2026-02-03", "10:00", "11:00"))
	repo.put(confirmed("other", "c2", "b1", "2026-02-03", "14:00", "15:00"))
	gone := confirmed("gone", "c1", "b1", "2026-02-03", "16:00", "17:00")
	gone.Status = StatusCancelled
	repo.put(gone)
	svc := newTestService(repo, &recordingPublisher{}, true)

	tests := []struct {
		name string
		req  RescheduleRequest
		want error
	}{
		{
			name: "someone else's appointment",
			req:  RescheduleRequest{ID: "other", ClientID: "c1", Date: "2026-02-03", Start: schedule.MustParseClock("09:00")},
			want: ErrPermissionDenied,
		},
		{
			name: "cancelled appointment",
			req:  RescheduleRequest{ID: "gone", ClientID: "c1", Date: "2026-02-03", Start: schedule.MustParseClock("09:00")},
			want: ErrNotActive,
		},
		{
			name: "unknown appointment",
			req:  RescheduleRequest{ID: "nope", ClientID: "c1", Date: "2026-02-03", Start: schedule.MustParseClock("09:00")},
			want: ErrNotFound,
		},
		{
			name: "ends past midnight",
			req:  RescheduleRequest{ID: "own", ClientID: "c1", Date: "2026-02-03", Start: schedule.MustParseClock("22:00"), Duration: 150},
			want: ErrPastMidnight,
		},
		{
			name: "overlaps another booking",
			req:  RescheduleRequest{ID: "own", ClientID: "c1", Date: "2026-02-03", Start: schedule.MustParseClock("13:30")},
			want: ErrSlotTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Reschedule(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCancel(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(confirmed("own", "c1", "b1", "2026-02-03", "10:00", "11:00"))
	pub := &recordingPublisher{}
	svc := newTestService(repo, pub, false)

	a, err := svc.Cancel(context.Background(), "own", "c1")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, a.Status)

	// Cancelled appointments no longer block and drop out of the active list.
	avail, err := svc.Availability(context.Background(), AvailabilityQuery{BarberID: "b1", Date: "2026-02-03", Duration: 60})
	require.NoError(t, err)
	slot, ok := schedule.Find(avail.Slots, schedule.MustParseClock("10:00"))
	require.True(t, ok)
	assert.True(t, slot.Available)

	active, err := svc.ListActive(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = svc.Cancel(context.Background(), "own", "c1")
	assert.ErrorIs(t, err, ErrNotActive)
	assert.Equal(t, []string{notify.EventAppointmentCancelled}, pub.types())
}

func TestCancel_FetchFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.failGet = errors.New("timeout")
	_, err := newTestService(repo, &recordingPublisher{}, false).Cancel(context.Background(), "own", "c1")
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestListActive_Ordered(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(confirmed("late", "c1", "b1", "2026-02-05", "09:00", "09:30"))
	repo.put(confirmed("early", "c1", "b2", "2026-02-03", "15:00", "15:30"))
	repo.put(confirmed("mid", "c1", "b1", "2026-02-03", "16:00", "16:30"))
	repo.put(confirmed("stranger", "c9", "b1", "2026-02-03", "08:00", "08:30"))
	svc := newTestService(repo, &recordingPublisher{}, false)

	list, err := svc.ListActive(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "early", list[0].ID)
	assert.Equal(t, "mid", list[1].ID)
	assert.Equal(t, "late", list[2].ID)
}
