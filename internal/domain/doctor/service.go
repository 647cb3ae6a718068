package doctor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	doctors Repository
}

func NewService(doctors Repository) *Service {
	return &Service{doctors: doctors}
}

func (s *Service) Create(ctx context.Context, d *Doctor) error {
	if d.FirstName == "" || d.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	// New doctors start unapproved; an admin flips the flag after review.
	d.Approved = false
	return s.doctors.Create(ctx, d)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, d *Doctor) error {
	if d.FirstName == "" || d.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	return s.doctors.Update(ctx, d)
}

func (s *Service) SetApproval(ctx context.Context, id uuid.UUID, approved bool) error {
	return s.doctors.SetApproval(ctx, id, approved)
}

func (s *Service) SetAcceptingNewPatients(ctx context.Context, id uuid.UUID, accepting bool) error {
	return s.doctors.SetAcceptingNewPatients(ctx, id, accepting)
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, filter, limit, offset)
}
