package booking

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a booking. Cancellation is a status,
// never a row deletion.
type Status string

const (
	StatusPending            Status = "pending"
	StatusConfirmed          Status = "confirmed"
	StatusCancelledByPatient Status = "cancelled_by_patient"
	StatusCancelledByDoctor  Status = "cancelled_by_doctor"
	StatusCompleted          Status = "completed"
	StatusNoShow             Status = "no_show"
)

// ActiveStatuses are the states that occupy a doctor's calendar.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelledByPatient,
		StatusCancelledByDoctor, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// Active reports whether the status blocks the doctor's time.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelledByPatient, StatusCancelledByDoctor},
	StatusConfirmed: {StatusCancelledByPatient, StatusCancelledByDoctor, StatusCompleted, StatusNoShow},
}

// CanTransition reports whether from → to is a legal status change.
// Cancelled, completed and no-show are terminal.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Booking is a persisted appointment between a patient and a doctor.
type Booking struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	PatientID       uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	SpecialtyID     *uuid.UUID `db:"specialty_id" json:"specialty_id,omitempty"`
	AppointmentTime time.Time  `db:"appointment_time" json:"appointment_time"`
	DurationMinutes int        `db:"duration_minutes" json:"duration_minutes"`
	Status          Status     `db:"status" json:"status"`
	Channel         string     `db:"channel" json:"channel"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// End returns the exclusive end of the booking's interval.
func (b *Booking) End() time.Time {
	return b.AppointmentTime.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// TimeSlot is a computed candidate appointment interval. It is produced
// fresh on every availability query and never persisted.
type TimeSlot struct {
	StartTime            time.Time  `json:"start_time"`
	DurationMinutes      int        `json:"duration_minutes"`
	Available            bool       `json:"available"`
	ConflictingBookingID *uuid.UUID `json:"conflicting_booking_id,omitempty"`
}

// End returns the exclusive end of the slot's interval.
func (s *TimeSlot) End() time.Time {
	return s.StartTime.Add(time.Duration(s.DurationMinutes) * time.Minute)
}
