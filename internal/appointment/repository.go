package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/schedule"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)

	// ListBooked returns the confirmed intervals of a barber on a date.
	// excludeID drops the appointment being edited; empty keeps everything.
	ListBooked(ctx context.Context, barberID, date, excludeID string) ([]schedule.Interval, error)

	Reschedule(ctx context.Context, id, date string, start, end schedule.Clock) error
	SetStatus(ctx context.Context, id string, status Status) error

	// ListActiveByClient returns pending and confirmed appointments ordered by date and start.
	ListActiveByClient(ctx context.Context, clientID string) ([]*Appointment, error)
	ListByDate(ctx context.Context, date string, status Status) ([]*Appointment, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func (r *pgxRepository) selectDetailed() squirrel.SelectBuilder {
	return psql.Select(
		"a.id", "a.client_id", "a.barber_id", "a.service_id",
		"a.appointment_date::text", "a.start_time::text", "a.end_time::text", "a.status",
		"a.created_at", "a.updated_at",
		"s.name", "s.price::float8", "COALESCE(p.full_name, '')",
	).
		From("public.appointments a").
		Join("public.services s ON s.id = a.service_id").
		LeftJoin("public.profiles p ON p.id = a.barber_id")
}

func scanDetailed(row pgx.Row) (*Appointment, error) {
	var (
		a          Appointment
		start, end string
	)
	if err := row.Scan(
		&a.ID, &a.ClientID, &a.BarberID, &a.ServiceID,
		&a.Date, &start, &end, &a.Status,
		&a.CreatedAt, &a.UpdatedAt,
		&a.ServiceName, &a.ServicePrice, &a.BarberName,
	); err != nil {
		return nil, err
	}
	if err := parseSpan(&a, start, end); err != nil {
		return nil, err
	}
	return &a, nil
}

func parseSpan(a *Appointment, start, end string) error {
	var err error
	if a.Start, err = schedule.ParseClock(start); err != nil {
		return fmt.Errorf("appointment %s start: %w", a.ID, err)
	}
	if a.End, err = schedule.ParseClock(end); err != nil {
		return fmt.Errorf("appointment %s end: %w", a.ID, err)
	}
	return nil
}

// isSlotConflict reports a unique or exclusion constraint guarding barber time ranges.
func isSlotConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		(pgErr.Code == pgerrcode.UniqueViolation || pgErr.Code == pgerrcode.ExclusionViolation)
}

func (r *pgxRepository) Create(ctx context.Context, a *Appointment) error {
	query, args, err := psql.Insert("public.appointments").
		Columns("client_id", "barber_id", "service_id", "appointment_date", "start_time", "end_time", "status").
		Values(a.ClientID, a.BarberID, a.ServiceID, a.Date, a.Start.String(), a.End.String(), a.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create appointment query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if isSlotConflict(err) {
			return ErrSlotTaken.WithCause(err)
		}
		return fmt.Errorf("create appointment failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	query, args, err := r.selectDetailed().
		Where(squirrel.Eq{"a.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get appointment query failed: %w", err)
	}

	a, err := scanDetailed(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get appointment failed: %w", err)
	}
	return a, nil
}

func (r *pgxRepository) ListBooked(ctx context.Context, barberID, date, excludeID string) ([]schedule.Interval, error) {
	q := psql.Select("id", "start_time::text", "end_time::text").
		From("public.appointments").
		Where(squirrel.Eq{"barber_id": barberID}).
		Where(squirrel.Eq{"appointment_date": date}).
		Where(squirrel.Eq{"status": StatusConfirmed}).
		OrderBy("start_time ASC")

	if excludeID != "" {
		q = q.Where(squirrel.NotEq{"id": excludeID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list booked query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list booked failed: %w", err)
	}
	defer rows.Close()

	var intervals []schedule.Interval
	for rows.Next() {
		var (
			a          Appointment
			start, end string
		)
		if err := rows.Scan(&a.ID, &start, &end); err != nil {
			return nil, fmt.Errorf("scan booked interval failed: %w", err)
		}
		if err := parseSpan(&a, start, end); err != nil {
			return nil, err
		}
		intervals = append(intervals, a.Interval())
	}
	return intervals, rows.Err()
}

func (r *pgxRepository) Reschedule(ctx context.Context, id, date string, start, end schedule.Clock) error {
	query, args, err := psql.Update("public.appointments").
		Set("appointment_date", date).
		Set("start_time", start.String()).
		Set("end_time", end.String()).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build reschedule query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isSlotConflict(err) {
			return ErrSlotTaken.WithCause(err)
		}
		return fmt.Errorf("reschedule appointment failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) SetStatus(ctx context.Context, id string, status Status) error {
	query, args, err := psql.Update("public.appointments").
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set status query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set appointment status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ListActiveByClient(ctx context.Context, clientID string) ([]*Appointment, error) {
	return r.list(ctx, r.selectDetailed().
		Where(squirrel.Eq{"a.client_id": clientID}).
		Where(squirrel.Eq{"a.status": ActiveStatuses}).
		OrderBy("a.appointment_date ASC", "a.start_time ASC"))
}

func (r *pgxRepository) ListByDate(ctx context.Context, date string, status Status) ([]*Appointment, error) {
	return r.list(ctx, r.selectDetailed().
		Where(squirrel.Eq{"a.appointment_date": date}).
		Where(squirrel.Eq{"a.status": status}).
		OrderBy("a.start_time ASC"))
}

func (r *pgxRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]*Appointment, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list appointments query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments failed: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		a, err := scanDetailed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment failed: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
