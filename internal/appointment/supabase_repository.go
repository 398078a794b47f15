package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/schedule"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/supabase"
	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

type supabaseRepository struct {
	client *supa.Client
}

// NewSupabaseRepository stores appointments through the Supabase data API.
func NewSupabaseRepository(client *supa.Client) Repository {
	return &supabaseRepository{client: client}
}

const detailedSelect = "id, client_id, barber_id, service_id, appointment_date, start_time, end_time, status, " +
	"created_at, updated_at, services(name, price), barber:barbers!inner(profiles(full_name))"

type appointmentRow struct {
	ID        string    `json:"id,omitempty"`
	ClientID  string    `json:"client_id"`
	BarberID  string    `json:"barber_id"`
	ServiceID string    `json:"service_id"`
	Date      string    `json:"appointment_date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Service *struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	} `json:"services,omitempty"`
	Barber *struct {
		Profile *struct {
			FullName *string `json:"full_name"`
		} `json:"profiles"`
	} `json:"barber,omitempty"`
}

type insertRow struct {
	ClientID  string `json:"client_id"`
	BarberID  string `json:"barber_id"`
	ServiceID string `json:"service_id"`
	Date      string `json:"appointment_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    Status `json:"status"`
}

func (row appointmentRow) toModel() (*Appointment, error) {
	a := &Appointment{
		ID:        row.ID,
		ClientID:  row.ClientID,
		BarberID:  row.BarberID,
		ServiceID: row.ServiceID,
		Date:      row.Date,
		Status:    row.Status,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if err := parseSpan(a, row.StartTime, row.EndTime); err != nil {
		return nil, err
	}
	if row.Service != nil {
		a.ServiceName = row.Service.Name
		a.ServicePrice = row.Service.Price
	}
	if row.Barber != nil && row.Barber.Profile != nil && row.Barber.Profile.FullName != nil {
		a.BarberName = *row.Barber.Profile.FullName
	}
	return a, nil
}

func toModels(rows []appointmentRow) ([]*Appointment, error) {
	out := make([]*Appointment, 0, len(rows))
	for _, row := range rows {
		a, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *supabaseRepository) Create(ctx context.Context, a *Appointment) error {
	row := insertRow{
		ClientID:  a.ClientID,
		BarberID:  a.BarberID,
		ServiceID: a.ServiceID,
		Date:      a.Date,
		StartTime: a.Start.String(),
		EndTime:   a.End.String(),
		Status:    a.Status,
	}

	var created []appointmentRow
	_, err := r.client.From("appointments").
		Insert(row, false, "", "representation", "").
		ExecuteTo(&created)
	if err != nil {
		if supabase.IsConflict(err) {
			return ErrSlotTaken.WithCause(err)
		}
		return fmt.Errorf("create appointment failed: %w", err)
	}
	if len(created) == 0 {
		return fmt.Errorf("create appointment returned no row")
	}

	a.ID = created[0].ID
	a.CreatedAt = created[0].CreatedAt
	a.UpdatedAt = created[0].UpdatedAt
	return nil
}

func (r *supabaseRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	var rows []appointmentRow
	_, err := r.client.From("appointments").
		Select(detailedSelect, "", false).
		Eq("id", id).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("get appointment failed: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0].toModel()
}

func (r *supabaseRepository) ListBooked(ctx context.Context, barberID, date, excludeID string) ([]schedule.Interval, error) {
	q := r.client.From("appointments").
		Select("id, start_time, end_time", "", false).
		Eq("barber_id", barberID).
		Eq("appointment_date", date).
		Eq("status", string(StatusConfirmed))
	if excludeID != "" {
		q = q.Neq("id", excludeID)
	}

	var rows []appointmentRow
	if _, err := q.ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("list booked failed: %w", err)
	}

	intervals := make([]schedule.Interval, 0, len(rows))
	for _, row := range rows {
		a := Appointment{ID: row.ID}
		if err := parseSpan(&a, row.StartTime, row.EndTime); err != nil {
			return nil, err
		}
		intervals = append(intervals, a.Interval())
	}
	return intervals, nil
}

func (r *supabaseRepository) update(id string, values map[string]any) error {
	var rows []json.RawMessage
	_, err := r.client.From("appointments").
		Update(values, "representation", "").
		Eq("id", id).
		ExecuteTo(&rows)
	if err != nil {
		if supabase.IsConflict(err) {
			return ErrSlotTaken.WithCause(err)
		}
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *supabaseRepository) Reschedule(ctx context.Context, id, date string, start, end schedule.Clock) error {
	err := r.update(id, map[string]any{
		"appointment_date": date,
		"start_time":       start.String(),
		"end_time":         end.String(),
		"updated_at":       time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("reschedule appointment failed: %w", err)
	}
	return nil
}

func (r *supabaseRepository) SetStatus(ctx context.Context, id string, status Status) error {
	err := r.update(id, map[string]any{
		"status":     status,
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("set appointment status failed: %w", err)
	}
	return nil
}

func (r *supabaseRepository) ListActiveByClient(ctx context.Context, clientID string) ([]*Appointment, error) {
	statuses := make([]string, len(ActiveStatuses))
	for i, s := range ActiveStatuses {
		statuses[i] = string(s)
	}

	var rows []appointmentRow
	_, err := r.client.From("appointments").
		Select(detailedSelect, "", false).
		Eq("client_id", clientID).
		In("status", statuses).
		Order("appointment_date", &postgrest.OrderOpts{Ascending: true}).
		Order("start_time", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list active appointments failed: %w", err)
	}
	return toModels(rows)
}

func (r *supabaseRepository) ListByDate(ctx context.Context, date string, status Status) ([]*Appointment, error) {
	var rows []appointmentRow
	_, err := r.client.From("appointments").
		Select(detailedSelect, "", false).
		Eq("appointment_date", date).
		Eq("status", string(status)).
		Order("start_time", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list appointments by date failed: %w", err)
	}
	return toModels(rows)
}
