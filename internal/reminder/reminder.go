package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/appointment"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/notify"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/metrics"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/schedule"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/user"
	"github.com/robfig/cron/v3"
)

// DefaultSpec runs the job every morning at nine, shop time.
const DefaultSpec = "0 9 * * *"

// Job texts every client with a confirmed appointment tomorrow.
type Job struct {
	appointments appointment.Repository
	profiles     user.ProfileRepository
	messenger    notify.Messenger
	publisher    notify.Publisher
	metrics      *metrics.Metrics
	logger       *slog.Logger
	location     *time.Location
	now          func() time.Time
}

func NewJob(
	appointments appointment.Repository,
	profiles user.ProfileRepository,
	messenger notify.Messenger,
	publisher notify.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	location *time.Location,
) *Job {
	return &Job{
		appointments: appointments,
		profiles:     profiles,
		messenger:    messenger,
		publisher:    publisher,
		metrics:      m,
		logger:       logger,
		location:     location,
		now:          time.Now,
	}
}

// Run sends tomorrow's reminders and reports how many went out. A failure for
// one client is logged and does not stop the rest.
func (j *Job) Run(ctx context.Context) (int, error) {
	date := schedule.FormatDate(j.now().In(j.location).AddDate(0, 0, 1))

	list, err := j.appointments.ListByDate(ctx, date, appointment.StatusConfirmed)
	if err != nil {
		return 0, fmt.Errorf("list appointments for %s: %w", date, err)
	}

	sent := 0
	for _, a := range list {
		err := j.remind(ctx, a)
		j.metrics.ReminderSent(err)
		if err != nil {
			j.logger.WarnContext(ctx, "reminder not sent", "appointment_id", a.ID, "err", err)
			continue
		}
		sent++
	}

	j.logger.InfoContext(ctx, "reminders processed", "date", date, "total", len(list), "sent", sent)
	return sent, nil
}

var errNoPhone = errors.New("client has no phone number")

func (j *Job) remind(ctx context.Context, a *appointment.Appointment) error {
	p, err := j.profiles.GetProfile(ctx, a.ClientID)
	if err != nil {
		return err
	}
	if p.Phone == "" {
		return errNoPhone
	}

	if err := j.messenger.Send(ctx, p.Phone, message(p.FullName, a)); err != nil {
		return err
	}

	e := notify.NewEvent(notify.EventAppointmentReminder, a.ID, map[string]string{
		"client_id": a.ClientID,
		"date":      a.Date,
		"start":     a.Start.String(),
	})
	if err := j.publisher.Publish(ctx, e); err != nil {
		j.logger.WarnContext(ctx, "publish reminder event", "appointment_id", a.ID, "err", err)
	}
	return nil
}

func message(name string, a *appointment.Appointment) string {
	greeting := "Hi"
	if name != "" {
		greeting += " " + name
	}
	what := "your appointment"
	if a.ServiceName != "" {
		what = "your " + a.ServiceName
	}
	if a.BarberName != "" {
		what += " with " + a.BarberName
	}
	return fmt.Sprintf("%s, a reminder of %s tomorrow (%s) at %s.", greeting, what, a.Date, a.Start)
}

// Schedule registers the job on a cron scheduler in the shop's timezone.
// The caller starts the scheduler and stops it on shutdown.
func Schedule(j *Job, spec string) (*cron.Cron, error) {
	if spec == "" {
		spec = DefaultSpec
	}

	c := cron.New(cron.WithLocation(j.location))
	_, err := c.AddFunc(spec, func() {
		if _, err := j.Run(context.Background()); err != nil {
			j.logger.Error("reminder job failed", "err", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule reminders %q: %w", spec, err)
	}
	return c, nil
}
