package report

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/clinident/clinident/internal/domain/treatmentplan"
	"github.com/clinident/clinident/pkg/clinicerr"
)

// PlanSource is the slice of the plan repository the report workflow
// needs: resolving the plan a submission claims progress under.
type PlanSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*treatmentplan.Plan, error)
}

type Service struct {
	repo  Repository
	plans PlanSource
}

func NewService(repo Repository, plans PlanSource) *Service {
	return &Service{repo: repo, plans: plans}
}

// Submit records one caregiver submission. Every claim must name an
// item the plan actually contains, carry a known progress value, and
// pass the re-claim gate built from earlier approvals. The report and
// its items persist as one unit or not at all.
func (s *Service) Submit(ctx context.Context, rep *Report, items []*Item) error {
	if rep.CaregiverID == uuid.Nil {
		return clinicerr.Invalid("caregiver_id", "is required")
	}
	if rep.PlanID == uuid.Nil {
		return clinicerr.Invalid("plan_id", "is required")
	}
	if len(items) == 0 {
		return clinicerr.Invalid("items", "at least one item is required")
	}

	plan, err := s.plans.GetByID(ctx, rep.PlanID)
	if err != nil {
		return err
	}
	if !plan.Active() {
		return clinicerr.Conflict("treatment plan", plan.ID.String(), plan.Status)
	}
	rep.PatientID = plan.PatientID

	planned := treatmentplan.IdentitySet(treatmentplan.Extract(plan))
	for _, it := range items {
		if !ValidProgress(it.ReportedProgress) {
			return clinicerr.Invalid("reported_progress", "unknown progress value")
		}
		if _, ok := planned[it.Identity()]; !ok {
			return clinicerr.NotFound("treatment item", it.ItemType+" "+it.Specification)
		}
	}

	gate, err := s.approvedProgress(ctx, rep.PlanID)
	if err != nil {
		return err
	}
	for _, it := range items {
		switch gate[it.Identity()] {
		case ProgressComplete:
			// A completed item never takes another claim.
			return clinicerr.Conflict("treatment item", it.Specification, ProgressComplete)
		case ProgressInProcess:
			if it.ReportedProgress == ProgressInProcess {
				return clinicerr.Conflict("treatment item", it.Specification, ProgressInProcess)
			}
		}
	}

	return s.repo.CreateReport(ctx, rep, items)
}

// approvedProgress collapses the plan's approved claims to the
// strongest progress per identity: complete dominates in_process.
func (s *Service) approvedProgress(ctx context.Context, planID uuid.UUID) (map[treatmentplan.ItemIdentity]string, error) {
	items, err := s.repo.ListItemsByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	gate := make(map[treatmentplan.ItemIdentity]string)
	for _, it := range items {
		if it.Approval != ApprovalApproved {
			continue
		}
		id := it.Identity()
		if gate[id] != ProgressComplete {
			gate[id] = it.ReportedProgress
		}
	}
	return gate, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Report, error) {
	return s.repo.GetReport(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Report, int, error) {
	return s.repo.ListReportsByPatient(ctx, patientID, limit, offset)
}

// PendingItems is the reviewer's work queue.
func (s *Service) PendingItems(ctx context.Context, limit, offset int) ([]*Item, int, error) {
	return s.repo.ListItemsByApproval(ctx, ApprovalPending, limit, offset)
}

// Approve decides one pending claim, optionally overriding the claimed
// progress (a reviewer may downgrade complete to in_process). Losing a
// race against another decision reports AlreadyDecided.
func (s *Service) Approve(ctx context.Context, itemID, reviewerID uuid.UUID, progress *string) error {
	if progress != nil && !ValidProgress(*progress) {
		return clinicerr.Invalid("progress", "unknown progress value")
	}
	ok, err := s.repo.Approve(ctx, itemID, reviewerID, progress)
	if err != nil {
		return err
	}
	if !ok {
		return s.decidedConflict(ctx, itemID)
	}
	return nil
}

// Reject requires a comment: the caregiver has to know what to fix.
func (s *Service) Reject(ctx context.Context, itemID, reviewerID uuid.UUID, comment string) error {
	if strings.TrimSpace(comment) == "" {
		return clinicerr.ErrMissingComment
	}
	ok, err := s.repo.Reject(ctx, itemID, reviewerID, comment)
	if err != nil {
		return err
	}
	if !ok {
		return s.decidedConflict(ctx, itemID)
	}
	return nil
}

func (s *Service) decidedConflict(ctx context.Context, itemID uuid.UUID) error {
	it, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	return clinicerr.Conflict("report item", itemID.String(), it.Approval)
}

// ActiveRejections lists the rejections the caregiver still has to
// address, after supersession by later approvals.
func (s *Service) ActiveRejections(ctx context.Context, caregiverID uuid.UUID) ([]*Item, error) {
	rejected, err := s.repo.ListDecidedByCaregiver(ctx, caregiverID, ApprovalRejected)
	if err != nil {
		return nil, err
	}
	approved, err := s.repo.ListDecidedByCaregiver(ctx, caregiverID, ApprovalApproved)
	if err != nil {
		return nil, err
	}
	return ActiveRejections(rejected, approved), nil
}
