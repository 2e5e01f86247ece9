package treatmentplan

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinident/clinident/pkg/clinicerr"
)

type mockPlanRepo struct {
	store map[uuid.UUID]*Plan
}

func newMockPlanRepo() *mockPlanRepo { return &mockPlanRepo{store: make(map[uuid.UUID]*Plan)} }

func (m *mockPlanRepo) Create(_ context.Context, p *Plan) error {
	p.ID = uuid.New()
	m.store[p.ID] = p
	return nil
}
func (m *mockPlanRepo) GetByID(_ context.Context, id uuid.UUID) (*Plan, error) {
	p, ok := m.store[id]
	if !ok {
		return nil, clinicerr.NotFound("treatment plan", id.String())
	}
	return p, nil
}
func (m *mockPlanRepo) ListByPatient(_ context.Context, pid uuid.UUID) ([]*Plan, error) {
	var r []*Plan
	for _, p := range m.store {
		if p.PatientID == pid {
			r = append(r, p)
		}
	}
	return r, nil
}
func (m *mockPlanRepo) ActiveByPatient(_ context.Context, pid uuid.UUID) (*Plan, error) {
	for _, p := range m.store {
		if p.PatientID == pid && p.Active() {
			return p, nil
		}
	}
	return nil, clinicerr.NotFound("active treatment plan", pid.String())
}
func (m *mockPlanRepo) UpdateDocument(_ context.Context, id uuid.UUID, doc Document) error {
	p, ok := m.store[id]
	if !ok || p.Status != StatusDraft {
		return clinicerr.NotFound("draft treatment plan", id.String())
	}
	p.Document = doc
	return nil
}
func (m *mockPlanRepo) Approve(_ context.Context, id, reviewerID uuid.UUID) (bool, error) {
	p, ok := m.store[id]
	if !ok {
		return false, clinicerr.NotFound("treatment plan", id.String())
	}
	if p.Status != StatusDraft {
		return false, nil
	}
	now := time.Now()
	for _, other := range m.store {
		if other.PatientID == p.PatientID && other.Status == StatusApproved {
			other.Status = StatusClosed
			other.ClosedAt = &now
		}
	}
	p.Status = StatusApproved
	p.ApprovedBy = &reviewerID
	p.ApprovedAt = &now
	return true, nil
}
func (m *mockPlanRepo) Close(_ context.Context, id uuid.UUID) (bool, error) {
	p, ok := m.store[id]
	if !ok || p.Status != StatusApproved {
		return false, nil
	}
	now := time.Now()
	p.Status = StatusClosed
	p.ClosedAt = &now
	return true, nil
}

type mockModRepo struct {
	mu    sync.Mutex
	store map[uuid.UUID]*ModificationRequest
}

func newMockModRepo() *mockModRepo {
	return &mockModRepo{store: make(map[uuid.UUID]*ModificationRequest)}
}

func (m *mockModRepo) Create(_ context.Context, r *ModificationRequest) error {
	r.ID = uuid.New()
	r.State = StatePending
	m.store[r.ID] = r
	return nil
}
func (m *mockModRepo) GetByID(_ context.Context, id uuid.UUID) (*ModificationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.store[id]
	if !ok {
		return nil, clinicerr.NotFound("modification request", id.String())
	}
	return r, nil
}
func (m *mockModRepo) ListByPlan(_ context.Context, planID uuid.UUID) ([]*ModificationRequest, error) {
	var r []*ModificationRequest
	for _, v := range m.store {
		if v.PlanID == planID {
			r = append(r, v)
		}
	}
	return r, nil
}
func (m *mockModRepo) ListByState(_ context.Context, state string, limit, offset int) ([]*ModificationRequest, int, error) {
	var r []*ModificationRequest
	for _, v := range m.store {
		if v.State == state {
			r = append(r, v)
		}
	}
	return r, len(r), nil
}
func (m *mockModRepo) Decide(_ context.Context, id, reviewerID uuid.UUID, state string, comment *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.store[id]
	if !ok || r.State != StatePending {
		return false, nil
	}
	now := time.Now()
	r.State = state
	r.ReviewerID = &reviewerID
	r.DecidedAt = &now
	r.Comment = comment
	return true, nil
}

func newTestService() (*Service, *mockPlanRepo, *mockModRepo) {
	plans := newMockPlanRepo()
	mods := newMockModRepo()
	return NewService(plans, mods), plans, mods
}

func seedActivePlan(t *testing.T, svc *Service) *Plan {
	t.Helper()
	p := &Plan{PatientID: uuid.New(), Kind: KindGeneral, CreatedBy: uuid.New()}
	if err := svc.CreatePlan(context.Background(), p); err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if err := svc.ApprovePlan(context.Background(), p.ID, uuid.New()); err != nil {
		t.Fatalf("approve plan: %v", err)
	}
	return p
}

func TestCreatePlan_UnknownKind(t *testing.T) {
	svc, _, _ := newTestService()
	p := &Plan{PatientID: uuid.New(), Kind: "experimental", CreatedBy: uuid.New()}
	if err := svc.CreatePlan(context.Background(), p); !clinicerr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestApprovePlan_ClosesPriorActive(t *testing.T) {
	svc, plans, _ := newTestService()
	first := seedActivePlan(t, svc)

	second := &Plan{PatientID: first.PatientID, Kind: KindGeneral, CreatedBy: uuid.New()}
	if err := svc.CreatePlan(context.Background(), second); err != nil {
		t.Fatalf("create second plan: %v", err)
	}
	if err := svc.ApprovePlan(context.Background(), second.ID, uuid.New()); err != nil {
		t.Fatalf("approve second plan: %v", err)
	}

	if plans.store[first.ID].Status != StatusClosed {
		t.Error("expected first plan to be closed")
	}
	active, err := svc.ActivePlan(context.Background(), first.PatientID)
	if err != nil {
		t.Fatalf("active plan: %v", err)
	}
	if active.ID != second.ID {
		t.Error("expected second plan to be the active one")
	}
}

func TestApprovePlan_NotDraft(t *testing.T) {
	svc, _, _ := newTestService()
	p := seedActivePlan(t, svc)
	err := svc.ApprovePlan(context.Background(), p.ID, uuid.New())
	if !clinicerr.IsConflict(err) {
		t.Errorf("expected conflict approving an approved plan, got %v", err)
	}
}

func TestClosePlan_Lifecycle(t *testing.T) {
	svc, _, _ := newTestService()
	p := seedActivePlan(t, svc)
	if err := svc.ClosePlan(context.Background(), p.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := svc.ClosePlan(context.Background(), p.ID); !clinicerr.IsConflict(err) {
		t.Errorf("expected conflict closing a closed plan, got %v", err)
	}
}

func seedModification(t *testing.T, svc *Service) *ModificationRequest {
	t.Helper()
	p := seedActivePlan(t, svc)
	m := &ModificationRequest{PlanID: p.ID, RequesterID: uuid.New(), Description: "add sealant on tooth 26"}
	if err := svc.RequestModification(context.Background(), m); err != nil {
		t.Fatalf("request modification: %v", err)
	}
	return m
}

func TestRequestModification_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	p := seedActivePlan(t, svc)

	m := &ModificationRequest{PlanID: p.ID, RequesterID: uuid.New(), Description: "   "}
	if err := svc.RequestModification(context.Background(), m); !clinicerr.IsValidation(err) {
		t.Errorf("expected validation error for blank description, got %v", err)
	}

	if err := svc.ClosePlan(context.Background(), p.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	m = &ModificationRequest{PlanID: p.ID, RequesterID: uuid.New(), Description: "too late"}
	if err := svc.RequestModification(context.Background(), m); !clinicerr.IsConflict(err) {
		t.Errorf("expected conflict against closed plan, got %v", err)
	}
}

func TestModification_TerminalOnce(t *testing.T) {
	svc, _, mods := newTestService()
	m := seedModification(t, svc)

	if err := svc.ApproveModification(context.Background(), m.ID, uuid.New()); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	stateAfter := mods.store[m.ID].State

	err := svc.RejectModification(context.Background(), m.ID, uuid.New(), "changed my mind")
	if !errors.Is(err, clinicerr.ErrAlreadyDecided) {
		t.Errorf("expected AlreadyDecided, got %v", err)
	}
	if mods.store[m.ID].State != stateAfter {
		t.Error("losing decision must not change state")
	}
}

func TestModification_ConcurrentSingleWinner(t *testing.T) {
	svc, _, _ := newTestService()
	m := seedModification(t, svc)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); errs <- svc.ApproveModification(context.Background(), m.ID, uuid.New()) }()
	go func() {
		defer wg.Done()
		errs <- svc.RejectModification(context.Background(), m.ID, uuid.New(), "needs a narrower scope")
	}()
	wg.Wait()
	close(errs)

	var wins, losses int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, clinicerr.ErrAlreadyDecided):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Errorf("expected exactly one winner and one AlreadyDecided, got %d wins and %d losses", wins, losses)
	}
}

func TestRejectModification_MissingComment(t *testing.T) {
	svc, _, mods := newTestService()
	m := seedModification(t, svc)

	err := svc.RejectModification(context.Background(), m.ID, uuid.New(), "  ")
	if !errors.Is(err, clinicerr.ErrMissingComment) {
		t.Fatalf("expected MissingComment, got %v", err)
	}
	if mods.store[m.ID].State != StatePending {
		t.Error("blank comment must leave the request pending")
	}
}
