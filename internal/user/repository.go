package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/auth"
)

type ProfileRepository interface {
	GetProfile(ctx context.Context, id string) (*Profile, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) error
}

// CredentialRepository backs the local auth provider.
type CredentialRepository interface {
	GetByEmail(ctx context.Context, email string) (*Credential, error)
	// Create stores the credential and its profile atomically and fills in the new user id.
	Create(ctx context.Context, cred *Credential, p *Profile) error
	UpdatePassword(ctx context.Context, userID, hash string) error
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type PgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository returns a repository implementing both profile and credential storage.
func NewPgxRepository(pool *pgxpool.Pool) *PgxRepository {
	return &PgxRepository{pool: pool}
}

func (r *PgxRepository) GetProfile(ctx context.Context, id string) (*Profile, error) {
	query, args, err := psql.Select(
		"p.id", "COALESCE(u.email, '')", "COALESCE(p.full_name, '')", "COALESCE(p.phone, '')",
		"COALESCE(p.role::text, 'client')", "p.created_at", "p.updated_at",
	).
		From("public.profiles p").
		LeftJoin("public.users u ON u.id = p.id").
		Where(squirrel.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get profile query failed: %w", err)
	}

	var p Profile
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.Email, &p.FullName, &p.Phone, &p.Role, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile failed: %w", err)
	}
	return &p, nil
}

func (r *PgxRepository) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) error {
	q := psql.Update("public.profiles").
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id})
	if upd.FullName != nil {
		q = q.Set("full_name", *upd.FullName)
	}
	if upd.Phone != nil {
		q = q.Set("phone", *upd.Phone)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update profile query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update profile failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgxRepository) GetByEmail(ctx context.Context, email string) (*Credential, error) {
	query, args, err := psql.Select("u.id", "u.email", "u.password_hash", "COALESCE(p.role::text, 'client')").
		From("public.users u").
		LeftJoin("public.profiles p ON p.id = u.id").
		Where(squirrel.Eq{"u.email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get credential query failed: %w", err)
	}

	var c Credential
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&c.UserID, &c.Email, &c.PasswordHash, &c.Role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errCredentialsGone
		}
		return nil, fmt.Errorf("get credential failed: %w", err)
	}
	return &c, nil
}

func (r *PgxRepository) Create(ctx context.Context, cred *Credential, p *Profile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create user tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := psql.Insert("public.users").
		Columns("email", "password_hash").
		Values(cred.Email, cred.PasswordHash).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user query failed: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&cred.UserID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return auth.ErrEmailAlreadyUsed
		}
		return fmt.Errorf("insert user failed: %w", err)
	}

	query, args, err = psql.Insert("public.profiles").
		Columns("id", "full_name", "phone", "role").
		Values(cred.UserID, p.FullName, p.Phone, string(cred.Role)).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert profile query failed: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("insert profile failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create user tx failed: %w", err)
	}

	p.ID = cred.UserID
	p.Email = cred.Email
	p.Role = cred.Role
	return nil
}

func (r *PgxRepository) UpdatePassword(ctx context.Context, userID, hash string) error {
	query, args, err := psql.Update("public.users").
		Set("password_hash", hash).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update password query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update password failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return errCredentialsGone
	}
	return nil
}
