package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/careslot/careslot/internal/domain/schedule"
)

// Repository persists bookings. Insert is the final authority on
// non-overlap: implementations must reject a booking whose interval
// overlaps an active booking for the same doctor, returning a
// BookingConflict error, even under concurrent inserts.
type Repository interface {
	Insert(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error

	// ListActiveInRange returns pending and confirmed bookings for the
	// doctor whose intervals intersect [from, to).
	ListActiveInRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Booking, error)

	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Booking, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Booking, int, error)
}

// ScheduleSource is the slice of the schedule repository the availability
// resolver needs.
type ScheduleSource interface {
	ListWindowsByDoctorDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]*schedule.WeeklyWindow, error)
	GetBlockedDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (*schedule.BlockedDate, error)
}
