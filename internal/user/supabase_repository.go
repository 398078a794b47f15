package user

import (
	"context"
	"fmt"
	"time"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/auth"
	supa "github.com/supabase-community/supabase-go"
)

type profileRow struct {
	ID        string     `json:"id"`
	FullName  *string    `json:"full_name"`
	Phone     *string    `json:"phone"`
	Role      *string    `json:"role"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func (r profileRow) toModel() *Profile {
	p := &Profile{ID: r.ID, Role: auth.RoleClient}
	if r.FullName != nil {
		p.FullName = *r.FullName
	}
	if r.Phone != nil {
		p.Phone = *r.Phone
	}
	if r.Role != nil {
		p.Role = auth.Role(*r.Role)
	}
	if r.CreatedAt != nil {
		p.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		p.UpdatedAt = *r.UpdatedAt
	}
	return p
}

type supabaseProfileRepository struct {
	client *supa.Client
}

// NewSupabaseProfileRepository reads profiles through PostgREST. Emails live in
// the hosted auth service, so Profile.Email is left empty here.
func NewSupabaseProfileRepository(client *supa.Client) ProfileRepository {
	return &supabaseProfileRepository{client: client}
}

func (r *supabaseProfileRepository) GetProfile(_ context.Context, id string) (*Profile, error) {
	var rows []profileRow
	_, err := r.client.From("profiles").
		Select("id, full_name, phone, role, created_at, updated_at", "", false).
		Eq("id", id).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("get profile failed: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0].toModel(), nil
}

func (r *supabaseProfileRepository) UpdateProfile(_ context.Context, id string, upd ProfileUpdate) error {
	values := map[string]any{"updated_at": time.Now().UTC()}
	if upd.FullName != nil {
		values["full_name"] = *upd.FullName
	}
	if upd.Phone != nil {
		values["phone"] = *upd.Phone
	}

	var rows []profileRow
	_, err := r.client.From("profiles").
		Update(values, "representation", "").
		Eq("id", id).
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("update profile failed: %w", err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}
