package patient

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/clinident/clinident/pkg/clinicerr"
)

type mockRepo struct {
	store map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo { return &mockRepo{store: make(map[uuid.UUID]*Patient)} }

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	m.store[p.ID] = p
	return nil
}
func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.store[id]
	if !ok {
		return nil, clinicerr.NotFound("patient", id.String())
	}
	return p, nil
}
func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var r []*Patient
	for _, p := range m.store {
		r = append(r, p)
	}
	return r, len(r), nil
}
func (m *mockRepo) ListByCaregiver(_ context.Context, cid uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	var r []*Patient
	for _, p := range m.store {
		if p.CaregiverID == cid {
			r = append(r, p)
		}
	}
	return r, len(r), nil
}
func (m *mockRepo) SearchByName(_ context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	var r []*Patient
	for _, p := range m.store {
		if strings.Contains(strings.ToLower(p.FirstName+" "+p.LastName), strings.ToLower(name)) {
			r = append(r, p)
		}
	}
	return r, len(r), nil
}
func (m *mockRepo) UpdateContact(_ context.Context, p *Patient) error {
	old, ok := m.store[p.ID]
	if !ok {
		return clinicerr.NotFound("patient", p.ID.String())
	}
	old.Email, old.Phone, old.Address = p.Email, p.Phone, p.Address
	return nil
}
func (m *mockRepo) Reassign(_ context.Context, id, cid uuid.UUID) error {
	p, ok := m.store[id]
	if !ok {
		return clinicerr.NotFound("patient", id.String())
	}
	p.CaregiverID = cid
	return nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo), repo
}

func TestCreate_Success(t *testing.T) {
	svc, _ := newTestService()
	p := &Patient{FirstName: "Ana", LastName: "Paredes", CaregiverID: uuid.New()}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected ID to be assigned")
	}
}

func TestCreate_MissingNames(t *testing.T) {
	svc, _ := newTestService()
	cases := []*Patient{
		{LastName: "Paredes", CaregiverID: uuid.New()},
		{FirstName: "Ana", CaregiverID: uuid.New()},
		{FirstName: "  ", LastName: "Paredes", CaregiverID: uuid.New()},
	}
	for _, p := range cases {
		err := svc.Create(context.Background(), p)
		if !clinicerr.IsValidation(err) {
			t.Errorf("expected validation error for %+v, got %v", p, err)
		}
	}
}

func TestCreate_MissingCaregiver(t *testing.T) {
	svc, _ := newTestService()
	err := svc.Create(context.Background(), &Patient{FirstName: "Ana", LastName: "Paredes"})
	if !clinicerr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Get(context.Background(), uuid.New())
	if !clinicerr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReassign(t *testing.T) {
	svc, repo := newTestService()
	p := &Patient{FirstName: "Ana", LastName: "Paredes", CaregiverID: uuid.New()}
	svc.Create(context.Background(), p)

	next := uuid.New()
	if err := svc.Reassign(context.Background(), p.ID, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.store[p.ID].CaregiverID != next {
		t.Error("expected caregiver to change")
	}
	if repo.store[p.ID].FirstName != "Ana" {
		t.Error("reassignment must not touch other fields")
	}
}

func TestReassign_NilCaregiver(t *testing.T) {
	svc, _ := newTestService()
	err := svc.Reassign(context.Background(), uuid.New(), uuid.Nil)
	if !clinicerr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListByCaregiver(t *testing.T) {
	svc, _ := newTestService()
	cid := uuid.New()
	svc.Create(context.Background(), &Patient{FirstName: "A", LastName: "One", CaregiverID: cid})
	svc.Create(context.Background(), &Patient{FirstName: "B", LastName: "Two", CaregiverID: cid})
	svc.Create(context.Background(), &Patient{FirstName: "C", LastName: "Three", CaregiverID: uuid.New()})

	items, total, err := svc.ListByCaregiver(context.Background(), cid, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected 2 patients, got %d", total)
	}
}

func TestSearchByName_BlankFallsBackToList(t *testing.T) {
	svc, _ := newTestService()
	svc.Create(context.Background(), &Patient{FirstName: "Ana", LastName: "Paredes", CaregiverID: uuid.New()})
	items, _, err := svc.SearchByName(context.Background(), "  ", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected full list for blank query, got %d", len(items))
	}
}
