package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

type supabaseRepository struct {
	client *supa.Client
}

// NewSupabaseRepository reads the catalog through the Supabase data API.
func NewSupabaseRepository(client *supa.Client) Repository {
	return &supabaseRepository{client: client}
}

type serviceRow struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Duration    int     `json:"duration"`
	Price       float64 `json:"price"`
}

func (r serviceRow) toModel() *Service {
	return &Service{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Duration:    r.Duration,
		Price:       r.Price,
	}
}

type barberDetails struct {
	Bio               *string  `json:"bio"`
	YearsOfExperience *int     `json:"years_of_experience"`
	Specialties       []string `json:"specialties"`
	IsActive          bool     `json:"is_active"`
}

type barberRow struct {
	ID       string          `json:"id"`
	FullName *string         `json:"full_name"`
	Barbers  json.RawMessage `json:"barbers"`
}

// toModel flattens the embedded barbers relation, which PostgREST renders
// as an object or a one-element array depending on the detected cardinality.
func (r barberRow) toModel() (*Barber, error) {
	var d barberDetails
	if len(r.Barbers) > 0 && r.Barbers[0] == '[' {
		var list []barberDetails
		if err := json.Unmarshal(r.Barbers, &list); err != nil {
			return nil, fmt.Errorf("decode barber details: %w", err)
		}
		if len(list) > 0 {
			d = list[0]
		}
	} else if len(r.Barbers) > 0 && string(r.Barbers) != "null" {
		if err := json.Unmarshal(r.Barbers, &d); err != nil {
			return nil, fmt.Errorf("decode barber details: %w", err)
		}
	}

	b := &Barber{
		ID:                r.ID,
		Bio:               d.Bio,
		YearsOfExperience: d.YearsOfExperience,
		Specialties:       d.Specialties,
		IsActive:          d.IsActive,
	}
	if r.FullName != nil {
		b.FullName = *r.FullName
	}
	return b, nil
}

const barberSelect = "id, full_name, barbers!inner(bio, years_of_experience, specialties, is_active)"

func (r *supabaseRepository) ListServices(ctx context.Context) ([]*Service, error) {
	var rows []serviceRow
	_, err := r.client.From("services").
		Select("id, name, description, duration, price", "", false).
		Order("name", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list services failed: %w", err)
	}

	services := make([]*Service, 0, len(rows))
	for _, row := range rows {
		services = append(services, row.toModel())
	}
	return services, nil
}

func (r *supabaseRepository) GetService(ctx context.Context, id string) (*Service, error) {
	var rows []serviceRow
	_, err := r.client.From("services").
		Select("id, name, description, duration, price", "", false).
		Eq("id", id).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("get service failed: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrServiceNotFound
	}
	return rows[0].toModel(), nil
}

func (r *supabaseRepository) ListActiveBarbers(ctx context.Context) ([]*Barber, error) {
	var rows []barberRow
	_, err := r.client.From("profiles").
		Select(barberSelect, "", false).
		Eq("role", "barber").
		Eq("barbers.is_active", "true").
		Order("full_name", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list barbers failed: %w", err)
	}

	barbers := make([]*Barber, 0, len(rows))
	for _, row := range rows {
		b, err := row.toModel()
		if err != nil {
			return nil, err
		}
		barbers = append(barbers, b)
	}
	return barbers, nil
}

func (r *supabaseRepository) GetBarber(ctx context.Context, id string) (*Barber, error) {
	var rows []barberRow
	_, err := r.client.From("profiles").
		Select(barberSelect, "", false).
		Eq("role", "barber").
		Eq("id", id).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("get barber failed: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrBarberNotFound
	}
	return rows[0].toModel()
}
