package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// overlaps reports whether the half-open intervals [a0,a1) and [b0,b1)
// intersect. Touching boundaries do not overlap, so back-to-back
// appointments are allowed.
func overlaps(a0, a1, b0, b1 time.Time) bool {
	return a0.Before(b1) && b0.Before(a1)
}

// ConflictChecker tests a proposed interval against a doctor's live
// active bookings.
type ConflictChecker struct {
	bookings Repository
}

func NewConflictChecker(bookings Repository) *ConflictChecker {
	return &ConflictChecker{bookings: bookings}
}

// Conflicts reports whether the proposed [start, start+duration) interval
// overlaps any pending or confirmed booking for the doctor. Pass a
// non-nil exclude to ignore one booking, which lets a reschedule check
// against everything but itself.
func (c *ConflictChecker) Conflicts(ctx context.Context, doctorID uuid.UUID, start time.Time, durationMinutes int, exclude *uuid.UUID) (bool, error) {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	existing, err := c.bookings.ListActiveInRange(ctx, doctorID, start, end)
	if err != nil {
		return false, repositoryError("list active bookings", err)
	}
	for _, b := range existing {
		if exclude != nil && b.ID == *exclude {
			continue
		}
		if overlaps(start, end, b.AppointmentTime, b.End()) {
			return true, nil
		}
	}
	return false, nil
}
