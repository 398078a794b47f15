package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the shop catalog.
type Repository interface {
	ListServices(ctx context.Context) ([]*Service, error)
	GetService(ctx context.Context, id string) (*Service, error)
	ListActiveBarbers(ctx context.Context) ([]*Barber, error)
	GetBarber(ctx context.Context, id string) (*Barber, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var serviceColumns = []string{"id", "name", "description", "duration", "price::float8"}

var barberColumns = []string{
	"p.id", "COALESCE(p.full_name, '')", "b.bio", "b.years_of_experience",
	"COALESCE(b.specialties, '{}')", "b.is_active",
}

func (r *pgxRepository) ListServices(ctx context.Context) ([]*Service, error) {
	query, args, err := psql.Select(serviceColumns...).
		From("public.services").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list services query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list services failed: %w", err)
	}
	defer rows.Close()

	var services []*Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Duration, &s.Price); err != nil {
			return nil, fmt.Errorf("scan service failed: %w", err)
		}
		services = append(services, &s)
	}
	return services, rows.Err()
}

func (r *pgxRepository) GetService(ctx context.Context, id string) (*Service, error) {
	query, args, err := psql.Select(serviceColumns...).
		From("public.services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get service query failed: %w", err)
	}

	var s Service
	if err := r.pool.QueryRow(ctx, query, args...).
		Scan(&s.ID, &s.Name, &s.Description, &s.Duration, &s.Price); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("get service failed: %w", err)
	}
	return &s, nil
}

func (r *pgxRepository) barberQuery() squirrel.SelectBuilder {
	return psql.Select(barberColumns...).
		From("public.profiles p").
		Join("public.barbers b ON b.id = p.id").
		Where(squirrel.Eq{"p.role": "barber"})
}

func (r *pgxRepository) ListActiveBarbers(ctx context.Context) ([]*Barber, error) {
	query, args, err := r.barberQuery().
		Where(squirrel.Eq{"b.is_active": true}).
		OrderBy("p.full_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list barbers query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list barbers failed: %w", err)
	}
	defer rows.Close()

	var barbers []*Barber
	for rows.Next() {
		var b Barber
		if err := rows.Scan(&b.ID, &b.FullName, &b.Bio, &b.YearsOfExperience, &b.Specialties, &b.IsActive); err != nil {
			return nil, fmt.Errorf("scan barber failed: %w", err)
		}
		barbers = append(barbers, &b)
	}
	return barbers, rows.Err()
}

func (r *pgxRepository) GetBarber(ctx context.Context, id string) (*Barber, error) {
	query, args, err := r.barberQuery().
		Where(squirrel.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get barber query failed: %w", err)
	}

	var b Barber
	if err := r.pool.QueryRow(ctx, query, args...).
		Scan(&b.ID, &b.FullName, &b.Bio, &b.YearsOfExperience, &b.Specialties, &b.IsActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBarberNotFound
		}
		return nil, fmt.Errorf("get barber failed: %w", err)
	}
	return &b, nil
}
