package user

import (
	"context"
	"errors"
	"strings"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/auth"
)

// Service reads and edits the caller's own profile.
type Service interface {
	GetProfile(ctx context.Context, id *auth.Identity) (*Profile, error)
	UpdateProfile(ctx context.Context, id *auth.Identity, upd ProfileUpdate) (*Profile, error)
}

type service struct {
	repo ProfileRepository
}

func NewService(repo ProfileRepository) Service {
	return &service{repo: repo}
}

func (s *service) GetProfile(ctx context.Context, id *auth.Identity) (*Profile, error) {
	p, err := s.repo.GetProfile(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrFetchFailed.WithCause(err)
	}
	if p.Email == "" {
		p.Email = id.Email
	}
	return p, nil
}

func (s *service) UpdateProfile(ctx context.Context, id *auth.Identity, upd ProfileUpdate) (*Profile, error) {
	if upd.FullName != nil {
		name := strings.TrimSpace(*upd.FullName)
		if name == "" {
			return nil, ErrFullNameBlank
		}
		upd.FullName = &name
	}
	if upd.Phone != nil {
		phone := strings.TrimSpace(*upd.Phone)
		upd.Phone = &phone
	}

	if err := s.repo.UpdateProfile(ctx, id.UserID, upd); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrWriteFailed.WithCause(err)
	}
	return s.GetProfile(ctx, id)
}
