package booking

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/careslot/careslot/internal/domain/schedule"
)

// AvailabilityResolver turns a doctor's recurring weekly windows into the
// concrete bookable slots for one calendar date.
type AvailabilityResolver struct {
	schedules    ScheduleSource
	bookings     Repository
	slotDuration int
	now          func() time.Time
}

func NewAvailabilityResolver(schedules ScheduleSource, bookings Repository, slotDurationMinutes int) *AvailabilityResolver {
	return &AvailabilityResolver{
		schedules:    schedules,
		bookings:     bookings,
		slotDuration: slotDurationMinutes,
		now:          time.Now,
	}
}

// Resolve returns the day's candidate slots in ascending start order.
// Slots overlapping an active booking are marked unavailable rather than
// removed, so callers can render a full grid; slots already in the past
// on the current day are dropped entirely. A doctor with no windows on
// the weekday, or a blocked date, yields an empty list, not an error.
func (r *AvailabilityResolver) Resolve(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]TimeSlot, error) {
	if doctorID == uuid.Nil {
		return nil, invalidInput("doctor id is required")
	}
	if date.IsZero() {
		return nil, invalidInput("date is required")
	}
	day := schedule.NormalizeDate(date)

	windows, err := r.schedules.ListWindowsByDoctorDay(ctx, doctorID, int(day.Weekday()))
	if err != nil {
		return nil, repositoryError("list weekly windows", err)
	}
	if len(windows) == 0 {
		return []TimeSlot{}, nil
	}

	if _, err := r.schedules.GetBlockedDate(ctx, doctorID, day); err == nil {
		return []TimeSlot{}, nil
	} else if !errors.Is(err, schedule.ErrNotFound) {
		return nil, repositoryError("get blocked date", err)
	}

	slots := []TimeSlot{}
	for _, w := range windows {
		generated, err := GenerateSlots(w, day, r.slotDuration)
		if err != nil {
			return nil, err
		}
		slots = append(slots, generated...)
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].StartTime.Before(slots[j].StartTime)
	})
	slots = dedupeSlots(slots)

	dayEnd := day.Add(24 * time.Hour)
	active, err := r.bookings.ListActiveInRange(ctx, doctorID, day, dayEnd)
	if err != nil {
		return nil, repositoryError("list active bookings", err)
	}
	for i := range slots {
		for _, b := range active {
			if overlaps(slots[i].StartTime, slots[i].End(), b.AppointmentTime, b.End()) {
				slots[i].Available = false
				id := b.ID
				slots[i].ConflictingBookingID = &id
				break
			}
		}
	}

	now := r.now().UTC()
	if day.Equal(schedule.NormalizeDate(now)) {
		upcoming := slots[:0]
		for _, s := range slots {
			if s.StartTime.After(now) {
				upcoming = append(upcoming, s)
			}
		}
		slots = upcoming
	}

	return slots, nil
}

// dedupeSlots drops duplicate (start, duration) pairs produced by
// overlapping windows, keeping the first occurrence. Input must be
// sorted by start time.
func dedupeSlots(slots []TimeSlot) []TimeSlot {
	out := slots[:0]
	for _, s := range slots {
		dup := false
		for _, kept := range out {
			if kept.StartTime.Equal(s.StartTime) && kept.DurationMinutes == s.DurationMinutes {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, s)
		}
	}
	return out
}
