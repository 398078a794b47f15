package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/appointment"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/notify"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/schedule"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAppointments struct {
	appointment.Repository
	byDate   map[string][]*appointment.Appointment
	gotDate  string
	gotState appointment.Status
	err      error
}

func (s *stubAppointments) ListByDate(_ context.Context, date string, status appointment.Status) ([]*appointment.Appointment, error) {
	s.gotDate, s.gotState = date, status
	return s.byDate[date], s.err
}

type stubProfiles struct {
	user.ProfileRepository
	profiles map[string]*user.Profile
}

func (s stubProfiles) GetProfile(_ context.Context, id string) (*user.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return p, nil
}

type sms struct{ to, body string }

type recordingMessenger struct {
	sent []sms
	fail map[string]bool
}

func (m *recordingMessenger) Send(_ context.Context, to, body string) error {
	if m.fail[to] {
		return errors.New("undeliverable")
	}
	m.sent = append(m.sent, sms{to: to, body: body})
	return nil
}

type recordingPublisher struct {
	events []notify.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e notify.Event) error {
	p.events = append(p.events, e)
	return nil
}

func newTestJob(apps *stubAppointments, msgr *recordingMessenger, pub *recordingPublisher) *Job {
	profiles := stubProfiles{profiles: map[string]*user.Profile{
		"u1": {ID: "u1", FullName: "Ana", Phone: "+5511999990001"},
		"u2": {ID: "u2", FullName: "Bruno"},
		"u3": {ID: "u3", Phone: "+5511999990003"},
	}}
	j := NewJob(apps, profiles, msgr, pub, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), time.UTC)
	j.now = func() time.Time { return time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC) }
	return j
}

func appt(id, client, start string) *appointment.Appointment {
	s := schedule.MustParseClock(start)
	return &appointment.Appointment{
		ID: id, ClientID: client, Date: "2026-02-03", Start: s, End: s.Add(30),
		Status: appointment.StatusConfirmed, ServiceName: "Corte", BarberName: "João",
	}
}

func TestRun_SendsTomorrowsReminders(t *testing.T) {
	apps := &stubAppointments{byDate: map[string][]*appointment.Appointment{
		"2026-02-03": {
			appt("a1", "u1", "09:00"),
			appt("a2", "u2", "10:00"), // no phone
			appt("a3", "u3", "11:00"),
			appt("a4", "gone", "12:00"), // no profile
		},
	}}
	msgr := &recordingMessenger{fail: map[string]bool{"+5511999990003": true}}
	pub := &recordingPublisher{}

	sent, err := newTestJob(apps, msgr, pub).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2026-02-03", apps.gotDate)
	assert.Equal(t, appointment.StatusConfirmed, apps.gotState)
	assert.Equal(t, 1, sent)

	require.Len(t, msgr.sent, 1)
	assert.Equal(t, "+5511999990001", msgr.sent[0].to)
	assert.Equal(t, "Hi Ana, a reminder of your Corte with João tomorrow (2026-02-03) at 09:00.", msgr.sent[0].body)

	require.Len(t, pub.events, 1)
	assert.Equal(t, notify.EventAppointmentReminder, pub.events[0].Type)
	assert.Equal(t, "a1", pub.events[0].Key)
}

func TestRun_ListFailure(t *testing.T) {
	apps := &stubAppointments{err: errors.New("db down")}

	_, err := newTestJob(apps, &recordingMessenger{}, &recordingPublisher{}).Run(context.Background())
	assert.Error(t, err)
}

func TestSchedule(t *testing.T) {
	j := newTestJob(&stubAppointments{}, &recordingMessenger{}, &recordingPublisher{})

	c, err := Schedule(j, "")
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)

	_, err = Schedule(j, "every tuesday")
	assert.Error(t, err)
}
