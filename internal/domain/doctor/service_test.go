package doctor

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	doctors map[uuid.UUID]*Doctor
}

func newMockRepo() *mockRepo {
	return &mockRepo{doctors: make(map[uuid.UUID]*Doctor)}
}

func (m *mockRepo) Create(_ context.Context, d *Doctor) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockRepo) Update(_ context.Context, d *Doctor) error {
	if _, ok := m.doctors[d.ID]; !ok {
		return ErrNotFound
	}
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) SetApproval(_ context.Context, id uuid.UUID, approved bool) error {
	d, ok := m.doctors[id]
	if !ok {
		return ErrNotFound
	}
	d.Approved = approved
	return nil
}

func (m *mockRepo) SetAcceptingNewPatients(_ context.Context, id uuid.UUID, accepting bool) error {
	d, ok := m.doctors[id]
	if !ok {
		return ErrNotFound
	}
	d.AcceptingNewPatients = accepting
	return nil
}

func (m *mockRepo) List(_ context.Context, filter ListFilter, limit, offset int) ([]*Doctor, int, error) {
	var result []*Doctor
	for _, d := range m.doctors {
		if filter.ApprovedOnly && !d.Approved {
			continue
		}
		if filter.SpecialtyID != nil && (d.SpecialtyID == nil || *d.SpecialtyID != *filter.SpecialtyID) {
			continue
		}
		result = append(result, d)
	}
	return result, len(result), nil
}

func newTestService() *Service {
	return NewService(newMockRepo())
}

// -- Tests --

func TestService_Create(t *testing.T) {
	svc := newTestService()
	d := &Doctor{FirstName: "Asha", LastName: "Rao", AcceptingNewPatients: true}
	if err := svc.Create(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID == uuid.Nil {
		t.Error("expected ID to be assigned")
	}
	if d.Approved {
		t.Error("new doctors must start unapproved")
	}
}

func TestService_Create_RequiresName(t *testing.T) {
	svc := newTestService()
	if err := svc.Create(context.Background(), &Doctor{FirstName: "Asha"}); err == nil {
		t.Error("expected error for missing last_name")
	}
	if err := svc.Create(context.Background(), &Doctor{LastName: "Rao"}); err == nil {
		t.Error("expected error for missing first_name")
	}
}

func TestService_ApprovalLifecycle(t *testing.T) {
	svc := newTestService()
	d := &Doctor{FirstName: "Asha", LastName: "Rao"}
	if err := svc.Create(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.SetApproval(context.Background(), d.ID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SetAcceptingNewPatients(context.Background(), d.ID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.Get(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Bookable() {
		t.Error("expected doctor to be bookable after approval and intake enabled")
	}
}

func TestService_Get_NotFound(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Get(context.Background(), uuid.New()); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_List_ApprovedOnly(t *testing.T) {
	svc := newTestService()
	a := &Doctor{FirstName: "Asha", LastName: "Rao"}
	b := &Doctor{FirstName: "Ben", LastName: "Lee"}
	svc.Create(context.Background(), a)
	svc.Create(context.Background(), b)
	svc.SetApproval(context.Background(), a.ID, true)

	items, total, err := svc.List(context.Background(), ListFilter{ApprovedOnly: true}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("expected 1 approved doctor, got %d", total)
	}
}
