package doctor

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the requested doctor does not exist.
var ErrNotFound = errors.New("doctor not found")

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	SetApproval(ctx context.Context, id uuid.UUID, approved bool) error
	SetAcceptingNewPatients(ctx context.Context, id uuid.UUID, accepting bool) error
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Doctor, int, error)
}

// ListFilter narrows doctor listings.
type ListFilter struct {
	SpecialtyID  *uuid.UUID
	ApprovedOnly bool
}
