package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/careslot/careslot/internal/domain/doctor"
)

// readRetryDelays bounds the backoff between retries of transient read
// failures. Writes are never retried: an ambiguous insert failure could
// otherwise create a duplicate booking.
var readRetryDelays = []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}

// AdmissionService validates and persists booking requests. It is the
// only writer of new bookings.
type AdmissionService struct {
	doctors  doctor.Repository
	resolver *AvailabilityResolver
	checker  *ConflictChecker
	bookings Repository
	policy   ConfirmationPolicy
	now      func() time.Time
}

func NewAdmissionService(doctors doctor.Repository, resolver *AvailabilityResolver, checker *ConflictChecker, bookings Repository, policy ConfirmationPolicy) *AdmissionService {
	return &AdmissionService{
		doctors:  doctors,
		resolver: resolver,
		checker:  checker,
		bookings: bookings,
		policy:   policy,
		now:      time.Now,
	}
}

// AdmitRequest is a patient's proposed appointment.
type AdmitRequest struct {
	PatientID       uuid.UUID
	DoctorID        uuid.UUID
	SpecialtyID     *uuid.UUID
	AppointmentTime time.Time
	DurationMinutes int
	Channel         string
}

func (r *AdmitRequest) validate() error {
	if r.PatientID == uuid.Nil {
		return invalidInput("patient_id is required")
	}
	if r.DoctorID == uuid.Nil {
		return invalidInput("doctor_id is required")
	}
	if r.AppointmentTime.IsZero() {
		return invalidInput("appointment_time is required")
	}
	if r.DurationMinutes <= 0 {
		return invalidInput("duration_minutes must be positive")
	}
	return nil
}

// Admit runs the full admission sequence: structural validation, doctor
// eligibility, an availability re-check, a live conflict re-check, the
// confirmation policy, then the insert. The in-process checks are a fast
// path; the store's exclusion constraint remains the final authority on
// overlap, so a concurrent duplicate surfaces here as BookingConflict.
func (s *AdmissionService) Admit(ctx context.Context, req AdmitRequest) (*Booking, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	req.AppointmentTime = req.AppointmentTime.UTC()
	if !req.AppointmentTime.After(now) {
		return nil, invalidInput("appointment_time must be in the future")
	}
	if req.Channel == "" {
		req.Channel = "web"
	}

	var d *doctor.Doctor
	err := s.retryRead(ctx, func() error {
		var err error
		d, err = s.doctors.GetByID(ctx, req.DoctorID)
		return err
	})
	if err != nil {
		if errors.Is(err, doctor.ErrNotFound) {
			return nil, notFound("doctor %s not found", req.DoctorID)
		}
		return nil, repositoryError("get doctor", err)
	}
	if !d.Bookable() {
		return nil, doctorUnavailable("doctor is not approved or not accepting new patients")
	}

	var slots []TimeSlot
	err = s.retryRead(ctx, func() error {
		var err error
		slots, err = s.resolver.Resolve(ctx, req.DoctorID, req.AppointmentTime)
		return err
	})
	if err != nil {
		return nil, err
	}
	slot, ok := findSlot(slots, req.AppointmentTime)
	if !ok {
		return nil, doctorUnavailable("requested time is not within the doctor's bookable hours")
	}
	if !slot.Available {
		// An overlap is a conflict whether seen here or at the insert.
		if slot.ConflictingBookingID != nil {
			return nil, conflict("requested interval overlaps an existing booking")
		}
		return nil, doctorUnavailable("requested slot is not currently bookable")
	}

	var conflicted bool
	err = s.retryRead(ctx, func() error {
		var err error
		conflicted, err = s.checker.Conflicts(ctx, req.DoctorID, req.AppointmentTime, req.DurationMinutes, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	if conflicted {
		return nil, conflict("requested interval overlaps an existing booking")
	}

	b := &Booking{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		SpecialtyID:     req.SpecialtyID,
		AppointmentTime: req.AppointmentTime,
		DurationMinutes: req.DurationMinutes,
		Status:          s.policy.Decide(d),
		Channel:         req.Channel,
	}
	if err := s.bookings.Insert(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func findSlot(slots []TimeSlot, start time.Time) (TimeSlot, bool) {
	for _, s := range slots {
		if s.StartTime.Equal(start) {
			return s, true
		}
	}
	return TimeSlot{}, false
}

// Availability resolves the bookable slots for a doctor on a date,
// retrying transient read failures.
func (s *AdmissionService) Availability(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]TimeSlot, error) {
	var slots []TimeSlot
	err := s.retryRead(ctx, func() error {
		var err error
		slots, err = s.resolver.Resolve(ctx, doctorID, date)
		return err
	})
	return slots, err
}

// TransitionStatus applies one legal status change. A nil requesterID
// marks a privileged caller and skips the ownership check; otherwise a
// patient-side cancellation must come from the booking's patient and
// doctor-side statuses from its doctor.
func (s *AdmissionService) TransitionStatus(ctx context.Context, bookingID uuid.UUID, to Status, requesterID uuid.UUID) (*Booking, error) {
	if !to.Valid() {
		return nil, invalidInput("unknown status %q", to)
	}

	var b *Booking
	err := s.retryRead(ctx, func() error {
		var err error
		b, err = s.bookings.GetByID(ctx, bookingID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !CanTransition(b.Status, to) {
		return nil, invalidInput("cannot transition booking from %s to %s", b.Status, to)
	}
	if to == StatusConfirmed && !b.AppointmentTime.After(s.now().UTC()) {
		return nil, invalidInput("cannot confirm a booking whose appointment time has passed")
	}
	if requesterID != uuid.Nil {
		switch to {
		case StatusCancelledByPatient:
			if requesterID != b.PatientID {
				return nil, invalidInput("only the booking's patient may cancel as patient")
			}
		default:
			if requesterID != b.DoctorID {
				return nil, invalidInput("only the booking's doctor may set status %s", to)
			}
		}
	}

	if err := s.bookings.UpdateStatus(ctx, bookingID, to); err != nil {
		return nil, err
	}
	b.Status = to
	b.UpdatedAt = time.Now().UTC()
	return b, nil
}

func (s *AdmissionService) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *AdmissionService) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Booking, int, error) {
	return s.bookings.ListByPatient(ctx, patientID, limit, offset)
}

func (s *AdmissionService) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Booking, int, error) {
	return s.bookings.ListByDoctor(ctx, doctorID, limit, offset)
}

// retryRead runs op, retrying only transient repository failures with
// bounded backoff. Any typed domain error returns immediately.
func (s *AdmissionService) retryRead(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		var e *Error
		if errors.As(err, &e) && e.Kind != KindRepository {
			return err
		}
		if errors.Is(err, doctor.ErrNotFound) {
			return err
		}
		if attempt >= len(readRetryDelays) {
			return err
		}
		select {
		case <-ctx.Done():
			return repositoryError("read cancelled", ctx.Err())
		case <-time.After(readRetryDelays[attempt]):
		}
	}
}
