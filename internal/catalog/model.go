package catalog

import (
	"net/http"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/apperror"
)

var (
	ErrServiceNotFound = apperror.New(http.StatusNotFound, "service not found")
	ErrBarberNotFound  = apperror.New(http.StatusNotFound, "barber not found")
	ErrBarberInactive  = apperror.New(http.StatusUnprocessableEntity, "barber is not taking appointments")
	ErrInvalidDuration = apperror.New(http.StatusUnprocessableEntity, "service has no bookable duration")
	ErrFetchFailed     = apperror.NewRetryable(http.StatusBadGateway, "failed to load services and barbers, please try again")
)

// Service is something the shop offers, e.g. a haircut.
type Service struct {
	ID          string
	Name        string
	Description *string
	Duration    int // minutes
	Price       float64
}

// Bookable reports whether the service can seed a booking.
func (s *Service) Bookable() error {
	if s.Duration <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// Barber is a profile with role barber joined with its barber record.
type Barber struct {
	ID                string
	FullName          string
	Bio               *string
	YearsOfExperience *int
	Specialties       []string
	IsActive          bool
}
