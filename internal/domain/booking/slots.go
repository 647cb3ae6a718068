package booking

import (
	"time"

	"github.com/careslot/careslot/internal/domain/schedule"
)

// GenerateSlots expands one weekly window into fixed-duration candidate
// slots on the given calendar date. Slots step through
// [window.start, window.end) in slotDuration increments; a final partial
// slot that would cross the window end is dropped. Pure and deterministic.
func GenerateSlots(w *schedule.WeeklyWindow, date time.Time, slotDuration int) ([]TimeSlot, error) {
	if slotDuration <= 0 {
		return nil, invalidInput("slot duration must be positive, got %d", slotDuration)
	}
	start, err := w.StartMinutes()
	if err != nil {
		return nil, invalidInput("window start: %v", err)
	}
	end, err := w.EndMinutes()
	if err != nil {
		return nil, invalidInput("window end: %v", err)
	}
	if start >= end {
		return nil, invalidInput("window start %s must be before end %s", w.StartTime, w.EndTime)
	}

	day := schedule.NormalizeDate(date)
	slots := []TimeSlot{}
	for m := start; m+slotDuration <= end; m += slotDuration {
		slots = append(slots, TimeSlot{
			StartTime:       day.Add(time.Duration(m) * time.Minute),
			DurationMinutes: slotDuration,
			Available:       true,
		})
	}
	return slots, nil
}
