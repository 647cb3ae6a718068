package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a window or blocked date does not exist.
	ErrNotFound = errors.New("schedule entry not found")

	// ErrDuplicateBlockedDate is returned when a doctor already has a
	// blocked date on the given calendar date.
	ErrDuplicateBlockedDate = errors.New("date already blocked for this doctor")
)

// Repository persists weekly windows and blocked dates.
type Repository interface {
	CreateWindow(ctx context.Context, w *WeeklyWindow) error
	GetWindow(ctx context.Context, id uuid.UUID) (*WeeklyWindow, error)
	UpdateWindow(ctx context.Context, w *WeeklyWindow) error
	DeleteWindow(ctx context.Context, id uuid.UUID) error
	ListWindowsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*WeeklyWindow, error)
	ListWindowsByDoctorDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]*WeeklyWindow, error)

	// ReplaceWindowsForDoctor atomically swaps a doctor's entire weekly
	// schedule for the given set.
	ReplaceWindowsForDoctor(ctx context.Context, doctorID uuid.UUID, windows []*WeeklyWindow) error

	CreateBlockedDate(ctx context.Context, b *BlockedDate) error
	DeleteBlockedDate(ctx context.Context, id uuid.UUID) error
	GetBlockedDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (*BlockedDate, error)
	ListBlockedDates(ctx context.Context, doctorID uuid.UUID) ([]*BlockedDate, error)
}
