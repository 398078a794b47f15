package catalog

import (
	"context"
	"errors"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/apperror"
)

// Catalog serves the services and barbers customers choose from.
type Catalog interface {
	ListServices(ctx context.Context) ([]*Service, error)
	GetService(ctx context.Context, id string) (*Service, error)
	ListActiveBarbers(ctx context.Context) ([]*Barber, error)
	GetActiveBarber(ctx context.Context, id string) (*Barber, error)
}

type catalogService struct {
	repo Repository
}

func NewCatalog(repo Repository) Catalog {
	return &catalogService{repo: repo}
}

func (s *catalogService) ListServices(ctx context.Context) ([]*Service, error) {
	services, err := s.repo.ListServices(ctx)
	if err != nil {
		return nil, fetchError(err)
	}
	return services, nil
}

func (s *catalogService) GetService(ctx context.Context, id string) (*Service, error) {
	svc, err := s.repo.GetService(ctx, id)
	if err != nil {
		return nil, fetchError(err)
	}
	return svc, nil
}

func (s *catalogService) ListActiveBarbers(ctx context.Context) ([]*Barber, error) {
	barbers, err := s.repo.ListActiveBarbers(ctx)
	if err != nil {
		return nil, fetchError(err)
	}
	return barbers, nil
}

// GetActiveBarber returns the barber only while they are taking appointments.
func (s *catalogService) GetActiveBarber(ctx context.Context, id string) (*Barber, error) {
	b, err := s.repo.GetBarber(ctx, id)
	if err != nil {
		return nil, fetchError(err)
	}
	if !b.IsActive {
		return nil, ErrBarberInactive
	}
	return b, nil
}

// fetchError keeps domain errors and turns storage failures into a retryable fetch error.
func fetchError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return ErrFetchFailed.WithCause(err)
}
