package http

import "github.com/nekogravitycat/barbershop-booking-backend/internal/catalog"

type ServiceResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Duration    int     `json:"duration"`
	Price       float64 `json:"price"`
}

func NewServiceResponse(s *catalog.Service) ServiceResponse {
	return ServiceResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Duration:    s.Duration,
		Price:       s.Price,
	}
}

type BarberResponse struct {
	ID                string   `json:"id"`
	FullName          string   `json:"full_name"`
	Bio               *string  `json:"bio,omitempty"`
	YearsOfExperience *int     `json:"years_of_experience,omitempty"`
	Specialties       []string `json:"specialties"`
}

func NewBarberResponse(b *catalog.Barber) BarberResponse {
	specialties := b.Specialties
	if specialties == nil {
		specialties = []string{}
	}
	return BarberResponse{
		ID:                b.ID,
		FullName:          b.FullName,
		Bio:               b.Bio,
		YearsOfExperience: b.YearsOfExperience,
		Specialties:       specialties,
	}
}
