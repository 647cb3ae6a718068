package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WeeklyWindow is a doctor's recurring availability range on one weekday.
// Times are wall-clock "HH:MM" strings at minute granularity; day_of_week
// follows the stored convention 0=Sunday..6=Saturday.
type WeeklyWindow struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ParseClock converts an "HH:MM" wall-clock string to minutes from midnight.
func ParseClock(s string) (int, error) {
	if len(s) > 5 {
		// Tolerate "09:00:00" coming back from a TIME column.
		s = s[:5]
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes from midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// StartMinutes returns the window start as minutes from midnight.
func (w *WeeklyWindow) StartMinutes() (int, error) {
	return ParseClock(w.StartTime)
}

// EndMinutes returns the window end as minutes from midnight.
func (w *WeeklyWindow) EndMinutes() (int, error) {
	return ParseClock(w.EndTime)
}

// Validate checks the window invariants: a known weekday and start < end.
func (w *WeeklyWindow) Validate() error {
	if w.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		return fmt.Errorf("day_of_week must be 0 (Sunday) through 6 (Saturday), got %d", w.DayOfWeek)
	}
	start, err := w.StartMinutes()
	if err != nil {
		return err
	}
	end, err := w.EndMinutes()
	if err != nil {
		return err
	}
	if start >= end {
		return fmt.Errorf("start_time %s must be before end_time %s", w.StartTime, w.EndTime)
	}
	return nil
}

// BlockedDate is a full-day exception overriding all weekly windows for a
// doctor on one calendar date. Unique per (doctor_id, date).
type BlockedDate struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Date      time.Time `db:"date" json:"date"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NormalizeDate truncates a timestamp to its UTC calendar date.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
