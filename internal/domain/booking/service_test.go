package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/careslot/careslot/internal/domain/doctor"
	"github.com/careslot/careslot/internal/domain/schedule"
)

var (
	// A Tuesday noon; the Monday after it is the usual target date.
	fixedNow   = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	mondayDate = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
)

type mockScheduleSource struct {
	windows []*schedule.WeeklyWindow
	blocked []*schedule.BlockedDate
	fails   int
}

func (m *mockScheduleSource) ListWindowsByDoctorDay(_ context.Context, doctorID uuid.UUID, day int) ([]*schedule.WeeklyWindow, error) {
	if m.fails > 0 {
		m.fails--
		return nil, errors.New("connection reset")
	}
	out := []*schedule.WeeklyWindow{}
	for _, w := range m.windows {
		if w.DoctorID == doctorID && w.DayOfWeek == day {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *mockScheduleSource) GetBlockedDate(_ context.Context, doctorID uuid.UUID, date time.Time) (*schedule.BlockedDate, error) {
	for _, b := range m.blocked {
		if b.DoctorID == doctorID && b.Date.Equal(schedule.NormalizeDate(date)) {
			return b, nil
		}
	}
	return nil, schedule.ErrNotFound
}

// mockBookingRepo serializes inserts behind a mutex and rejects
// overlapping active intervals, mirroring the database exclusion
// constraint.
type mockBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*Booking
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{bookings: make(map[uuid.UUID]*Booking)}
}

func (m *mockBookingRepo) Insert(_ context.Context, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := b.AppointmentTime.Add(time.Duration(b.DurationMinutes) * time.Minute)
	for _, existing := range m.bookings {
		if existing.DoctorID != b.DoctorID || !existing.Status.Active() {
			continue
		}
		if overlaps(b.AppointmentTime, end, existing.AppointmentTime, existing.End()) {
			return conflict("interval overlaps an existing booking for this doctor")
		}
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *mockBookingRepo) GetByID(_ context.Context, id uuid.UUID) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, notFound("booking %s not found", id)
	}
	cp := *b
	return &cp, nil
}

func (m *mockBookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return notFound("booking %s not found", id)
	}
	b.Status = status
	return nil
}

func (m *mockBookingRepo) ListActiveInRange(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*Booking{}
	for _, b := range m.bookings {
		if b.DoctorID == doctorID && b.Status.Active() && overlaps(from, to, b.AppointmentTime, b.End()) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Booking, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*Booking{}
	for _, b := range m.bookings {
		if b.PatientID == patientID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *mockBookingRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Booking, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*Booking{}
	for _, b := range m.bookings {
		if b.DoctorID == doctorID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

type mockDoctorRepo struct {
	doctors map[uuid.UUID]*doctor.Doctor
}

func (m *mockDoctorRepo) Create(_ context.Context, d *doctor.Doctor) error { return nil }

func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, doctor.ErrNotFound
	}
	return d, nil
}

func (m *mockDoctorRepo) Update(_ context.Context, d *doctor.Doctor) error { return nil }

func (m *mockDoctorRepo) SetApproval(_ context.Context, id uuid.UUID, approved bool) error {
	return nil
}

func (m *mockDoctorRepo) SetAcceptingNewPatients(_ context.Context, id uuid.UUID, accepting bool) error {
	return nil
}

func (m *mockDoctorRepo) List(_ context.Context, f doctor.ListFilter, limit, offset int) ([]*doctor.Doctor, int, error) {
	return nil, 0, nil
}

type fixture struct {
	doctorID uuid.UUID
	doctors  *mockDoctorRepo
	sched    *mockScheduleSource
	repo     *mockBookingRepo
	svc      *AdmissionService
}

// newFixture builds an admission service for a bookable doctor with a
// Monday 09:00-11:00 window and 30-minute slots.
func newFixture() *fixture {
	doctorID := uuid.New()
	doctors := &mockDoctorRepo{doctors: map[uuid.UUID]*doctor.Doctor{
		doctorID: {ID: doctorID, FirstName: "Ada", LastName: "Nwosu", Approved: true, AcceptingNewPatients: true},
	}}
	sched := &mockScheduleSource{windows: []*schedule.WeeklyWindow{
		{ID: uuid.New(), DoctorID: doctorID, DayOfWeek: 1, StartTime: "09:00", EndTime: "11:00"},
	}}
	repo := newMockBookingRepo()

	resolver := NewAvailabilityResolver(sched, repo, 30)
	resolver.now = func() time.Time { return fixedNow }
	svc := NewAdmissionService(doctors, resolver, NewConflictChecker(repo), repo, AutoConfirmPolicy{})
	svc.now = func() time.Time { return fixedNow }

	return &fixture{doctorID: doctorID, doctors: doctors, sched: sched, repo: repo, svc: svc}
}

func (f *fixture) admitAt(t *testing.T, start time.Time) (*Booking, error) {
	t.Helper()
	return f.svc.Admit(context.Background(), AdmitRequest{
		PatientID:       uuid.New(),
		DoctorID:        f.doctorID,
		AppointmentTime: start,
		DurationMinutes: 30,
	})
}

func TestAdmitSuccess(t *testing.T) {
	f := newFixture()
	start := mondayDate.Add(9 * time.Hour)

	b, err := f.admitAt(t, start)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if b.Status != StatusConfirmed {
		t.Errorf("status = %s, want confirmed (auto-confirm)", b.Status)
	}
	if b.ID == uuid.Nil {
		t.Error("expected generated booking id")
	}
	if b.Channel != "web" {
		t.Errorf("channel = %q, want default web", b.Channel)
	}
}

func TestAdmitPastTime(t *testing.T) {
	f := newFixture()
	_, err := f.admitAt(t, fixedNow.Add(-time.Hour))
	if KindOf(err) != KindInvalidInput {
		t.Errorf("expected InvalidInput, got %v", err)
	}
}

func TestAdmitUnknownDoctor(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Admit(context.Background(), AdmitRequest{
		PatientID:       uuid.New(),
		DoctorID:        uuid.New(),
		AppointmentTime: mondayDate.Add(9 * time.Hour),
		DurationMinutes: 30,
	})
	if KindOf(err) != KindNotFound {
		t.Errorf("expected ResourceNotFound, got %v", err)
	}
}

func TestAdmitDoctorNotApproved(t *testing.T) {
	f := newFixture()
	f.doctors.doctors[f.doctorID].Approved = false

	_, err := f.admitAt(t, mondayDate.Add(9*time.Hour))
	if KindOf(err) != KindDoctorUnavailable {
		t.Errorf("expected DoctorUnavailable, got %v", err)
	}
}

func TestAdmitDoctorNotAcceptingPatients(t *testing.T) {
	f := newFixture()
	f.doctors.doctors[f.doctorID].AcceptingNewPatients = false

	_, err := f.admitAt(t, mondayDate.Add(9*time.Hour))
	if KindOf(err) != KindDoctorUnavailable {
		t.Errorf("expected DoctorUnavailable, got %v", err)
	}
}

func TestAdmitOutsideWindow(t *testing.T) {
	f := newFixture()
	_, err := f.admitAt(t, mondayDate.Add(8*time.Hour))
	if KindOf(err) != KindDoctorUnavailable {
		t.Errorf("expected DoctorUnavailable for 08:00 request, got %v", err)
	}
}

func TestAdmitBlockedDate(t *testing.T) {
	f := newFixture()
	f.sched.blocked = []*schedule.BlockedDate{
		{ID: uuid.New(), DoctorID: f.doctorID, Date: mondayDate, Reason: "conference"},
	}
	_, err := f.admitAt(t, mondayDate.Add(9*time.Hour))
	if KindOf(err) != KindDoctorUnavailable {
		t.Errorf("expected DoctorUnavailable on blocked date, got %v", err)
	}
}

func TestAdmitConflictingSlot(t *testing.T) {
	f := newFixture()
	seed := &Booking{
		PatientID:       uuid.New(),
		DoctorID:        f.doctorID,
		AppointmentTime: mondayDate.Add(9*time.Hour + 30*time.Minute),
		DurationMinutes: 30,
		Status:          StatusConfirmed,
	}
	if err := f.repo.Insert(context.Background(), seed); err != nil {
		t.Fatal(err)
	}

	_, err := f.admitAt(t, mondayDate.Add(9*time.Hour+30*time.Minute))
	if KindOf(err) != KindConflict {
		t.Errorf("expected BookingConflict, got %v", err)
	}
}

func TestAdmitConcurrentSameSlot(t *testing.T) {
	f := newFixture()
	start := mondayDate.Add(10 * time.Hour)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.admitAt(t, start)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case KindOf(err) == KindConflict:
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != 1 {
		t.Errorf("got %d successes and %d conflicts, want exactly 1 and 1", successes, conflicts)
	}
}

func TestAdmitRetriesTransientReads(t *testing.T) {
	f := newFixture()
	f.sched.fails = 2

	b, err := f.admitAt(t, mondayDate.Add(9*time.Hour))
	if err != nil {
		t.Fatalf("expected retries to absorb transient failures, got %v", err)
	}
	if b.Status != StatusConfirmed {
		t.Errorf("status = %s, want confirmed", b.Status)
	}
}

func TestAdmitManualConfirmPolicy(t *testing.T) {
	f := newFixture()
	f.svc.policy = ManualConfirmPolicy{}

	b, err := f.admitAt(t, mondayDate.Add(9*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if b.Status != StatusPending {
		t.Errorf("status = %s, want pending under manual policy", b.Status)
	}
}

func TestTransitionStatus(t *testing.T) {
	f := newFixture()
	b, err := f.admitAt(t, mondayDate.Add(9*time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	got, err := f.svc.TransitionStatus(context.Background(), b.ID, StatusCancelledByPatient, b.PatientID)
	if err != nil {
		t.Fatalf("TransitionStatus: %v", err)
	}
	if got.Status != StatusCancelledByPatient {
		t.Errorf("status = %s", got.Status)
	}

	// Cancelled is terminal.
	_, err = f.svc.TransitionStatus(context.Background(), b.ID, StatusConfirmed, uuid.Nil)
	if KindOf(err) != KindInvalidInput {
		t.Errorf("expected InvalidInput on terminal transition, got %v", err)
	}
}

func TestTransitionStatusOwnership(t *testing.T) {
	f := newFixture()
	b, err := f.admitAt(t, mondayDate.Add(9*time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.svc.TransitionStatus(context.Background(), b.ID, StatusCancelledByPatient, uuid.New())
	if KindOf(err) != KindInvalidInput {
		t.Errorf("expected rejection for foreign requester, got %v", err)
	}

	_, err = f.svc.TransitionStatus(context.Background(), b.ID, StatusCancelledByDoctor, f.doctorID)
	if err != nil {
		t.Errorf("doctor cancellation failed: %v", err)
	}
}

func TestCancelledSlotBecomesBookable(t *testing.T) {
	f := newFixture()
	start := mondayDate.Add(9 * time.Hour)

	b, err := f.admitAt(t, start)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.admitAt(t, start); KindOf(err) != KindConflict {
		t.Fatalf("expected BookingConflict while booked, got %v", err)
	}

	if _, err := f.svc.TransitionStatus(context.Background(), b.ID, StatusCancelledByPatient, b.PatientID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.admitAt(t, start); err != nil {
		t.Errorf("slot should be bookable again after cancellation: %v", err)
	}
}
