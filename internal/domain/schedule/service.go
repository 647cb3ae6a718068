package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careslot/careslot/internal/domain/doctor"
)

// Service applies schedule business rules on top of the repository.
type Service struct {
	repo    Repository
	doctors doctor.Repository
}

func NewService(repo Repository, doctors doctor.Repository) *Service {
	return &Service{repo: repo, doctors: doctors}
}

func (s *Service) ensureDoctor(ctx context.Context, doctorID uuid.UUID) error {
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return err
	}
	return nil
}

// CreateWindow validates and stores a recurring availability window.
func (s *Service) CreateWindow(ctx context.Context, w *WeeklyWindow) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if err := s.ensureDoctor(ctx, w.DoctorID); err != nil {
		return err
	}
	return s.repo.CreateWindow(ctx, w)
}

func (s *Service) GetWindow(ctx context.Context, id uuid.UUID) (*WeeklyWindow, error) {
	return s.repo.GetWindow(ctx, id)
}

// UpdateWindow replaces the day and time range of an existing window.
func (s *Service) UpdateWindow(ctx context.Context, id uuid.UUID, dayOfWeek int, startTime, endTime string) (*WeeklyWindow, error) {
	w, err := s.repo.GetWindow(ctx, id)
	if err != nil {
		return nil, err
	}
	w.DayOfWeek = dayOfWeek
	w.StartTime = startTime
	w.EndTime = endTime
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateWindow(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Service) DeleteWindow(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteWindow(ctx, id)
}

// ReplaceWindows swaps a doctor's whole weekly schedule in one shot. All
// windows are validated before any row is touched.
func (s *Service) ReplaceWindows(ctx context.Context, doctorID uuid.UUID, windows []*WeeklyWindow) error {
	if err := s.ensureDoctor(ctx, doctorID); err != nil {
		return err
	}
	for _, w := range windows {
		w.DoctorID = doctorID
		if err := w.Validate(); err != nil {
			return err
		}
	}
	return s.repo.ReplaceWindowsForDoctor(ctx, doctorID, windows)
}

func (s *Service) ListWindows(ctx context.Context, doctorID uuid.UUID) ([]*WeeklyWindow, error) {
	if err := s.ensureDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.repo.ListWindowsByDoctor(ctx, doctorID)
}

// BlockDate records a full-day exception for a doctor.
func (s *Service) BlockDate(ctx context.Context, b *BlockedDate) error {
	if b.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if b.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if err := s.ensureDoctor(ctx, b.DoctorID); err != nil {
		return err
	}
	b.Date = NormalizeDate(b.Date)
	return s.repo.CreateBlockedDate(ctx, b)
}

func (s *Service) UnblockDate(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteBlockedDate(ctx, id)
}

func (s *Service) ListBlockedDates(ctx context.Context, doctorID uuid.UUID) ([]*BlockedDate, error) {
	if err := s.ensureDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.repo.ListBlockedDates(ctx, doctorID)
}

// IsBlocked reports whether the doctor has a blocked date on the given day.
func (s *Service) IsBlocked(ctx context.Context, doctorID uuid.UUID, date time.Time) (bool, error) {
	_, err := s.repo.GetBlockedDate(ctx, doctorID, date)
	if err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
