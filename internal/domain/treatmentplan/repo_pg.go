package treatmentplan

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinident/clinident/internal/platform/db"
	"github.com/clinident/clinident/pkg/clinicerr"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

type planRepoPG struct{ pool *pgxpool.Pool }

func NewPlanRepoPG(pool *pgxpool.Pool) PlanRepository {
	return &planRepoPG{pool: pool}
}

const planCols = `id, patient_id, kind, status, document, created_by,
	approved_by, approved_at, closed_at, created_at, updated_at`

func scanPlan(row pgx.Row) (*Plan, error) {
	var p Plan
	var doc []byte
	err := row.Scan(&p.ID, &p.PatientID, &p.Kind, &p.Status, &doc, &p.CreatedBy,
		&p.ApprovedBy, &p.ApprovedAt, &p.ClosedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(doc) > 0 {
		if err := json.Unmarshal(doc, &p.Document); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func (r *planRepoPG) Create(ctx context.Context, p *Plan) error {
	p.ID = uuid.New()
	doc, err := json.Marshal(p.Document)
	if err != nil {
		return clinicerr.Dependency("encode plan document", err)
	}
	_, err = conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO treatment_plan (id, patient_id, kind, status, document, created_by)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		p.ID, p.PatientID, p.Kind, p.Status, doc, p.CreatedBy)
	return clinicerr.Dependency("insert treatment plan", err)
}

func (r *planRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Plan, error) {
	p, err := scanPlan(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+planCols+` FROM treatment_plan WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("treatment plan", id.String())
	}
	if err != nil {
		return nil, clinicerr.Dependency("select treatment plan", err)
	}
	return p, nil
}

func (r *planRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Plan, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+planCols+` FROM treatment_plan
		WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, clinicerr.Dependency("list treatment plans", err)
	}
	defer rows.Close()
	var plans []*Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, clinicerr.Dependency("scan treatment plan", err)
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (r *planRepoPG) ActiveByPatient(ctx context.Context, patientID uuid.UUID) (*Plan, error) {
	p, err := scanPlan(conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+planCols+` FROM treatment_plan
		WHERE patient_id = $1 AND status = $2`, patientID, StatusApproved))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("active treatment plan", patientID.String())
	}
	if err != nil {
		return nil, clinicerr.Dependency("select active treatment plan", err)
	}
	return p, nil
}

func (r *planRepoPG) UpdateDocument(ctx context.Context, id uuid.UUID, docv Document) error {
	doc, err := json.Marshal(docv)
	if err != nil {
		return clinicerr.Dependency("encode plan document", err)
	}
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE treatment_plan SET document=$2, updated_at=NOW()
		WHERE id = $1 AND status = $3`, id, doc, StatusDraft)
	if err != nil {
		return clinicerr.Dependency("update plan document", err)
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.NotFound("draft treatment plan", id.String())
	}
	return nil
}

// Approve closes the patient's prior active plan and promotes this one
// inside a single transaction, so two active plans are never visible.
func (r *planRepoPG) Approve(ctx context.Context, id, reviewerID uuid.UUID) (bool, error) {
	var promoted bool
	err := db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		q := conn(ctx, r.pool)

		var patientID uuid.UUID
		err := q.QueryRow(ctx,
			`SELECT patient_id FROM treatment_plan WHERE id = $1`, id).Scan(&patientID)
		if errors.Is(err, pgx.ErrNoRows) {
			return clinicerr.NotFound("treatment plan", id.String())
		}
		if err != nil {
			return clinicerr.Dependency("select treatment plan", err)
		}

		if _, err := q.Exec(ctx, `
			UPDATE treatment_plan SET status=$2, closed_at=NOW(), updated_at=NOW()
			WHERE patient_id = $1 AND status = $3`,
			patientID, StatusClosed, StatusApproved); err != nil {
			return clinicerr.Dependency("close prior plan", err)
		}

		tag, err := q.Exec(ctx, `
			UPDATE treatment_plan SET status=$2, approved_by=$3, approved_at=NOW(), updated_at=NOW()
			WHERE id = $1 AND status = $4`,
			id, StatusApproved, reviewerID, StatusDraft)
		if err != nil {
			return clinicerr.Dependency("approve treatment plan", err)
		}
		promoted = tag.RowsAffected() == 1
		return nil
	})
	return promoted, err
}

func (r *planRepoPG) Close(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE treatment_plan SET status=$2, closed_at=NOW(), updated_at=NOW()
		WHERE id = $1 AND status = $3`, id, StatusClosed, StatusApproved)
	if err != nil {
		return false, clinicerr.Dependency("close treatment plan", err)
	}
	return tag.RowsAffected() == 1, nil
}

type modificationRepoPG struct{ pool *pgxpool.Pool }

func NewModificationRepoPG(pool *pgxpool.Pool) ModificationRepository {
	return &modificationRepoPG{pool: pool}
}

const modCols = `id, plan_id, patient_id, requester_id, description, state,
	reviewer_id, decided_at, comment, created_at`

func scanMod(row pgx.Row) (*ModificationRequest, error) {
	var m ModificationRequest
	err := row.Scan(&m.ID, &m.PlanID, &m.PatientID, &m.RequesterID, &m.Description, &m.State,
		&m.ReviewerID, &m.DecidedAt, &m.Comment, &m.CreatedAt)
	return &m, err
}

func (r *modificationRepoPG) Create(ctx context.Context, m *ModificationRequest) error {
	m.ID = uuid.New()
	m.State = StatePending
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO modification_request (id, plan_id, patient_id, requester_id, description, state)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.PlanID, m.PatientID, m.RequesterID, m.Description, m.State)
	return clinicerr.Dependency("insert modification request", err)
}

func (r *modificationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ModificationRequest, error) {
	m, err := scanMod(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+modCols+` FROM modification_request WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("modification request", id.String())
	}
	if err != nil {
		return nil, clinicerr.Dependency("select modification request", err)
	}
	return m, nil
}

func (r *modificationRepoPG) ListByPlan(ctx context.Context, planID uuid.UUID) ([]*ModificationRequest, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+modCols+` FROM modification_request
		WHERE plan_id = $1 ORDER BY created_at DESC`, planID)
	if err != nil {
		return nil, clinicerr.Dependency("list modification requests", err)
	}
	defer rows.Close()
	return collectMods(rows)
}

func (r *modificationRepoPG) ListByState(ctx context.Context, state string, limit, offset int) ([]*ModificationRequest, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM modification_request WHERE state = $1`, state).Scan(&total); err != nil {
		return nil, 0, clinicerr.Dependency("count modification requests", err)
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+modCols+` FROM modification_request
		WHERE state = $1 ORDER BY created_at LIMIT $2 OFFSET $3`, state, limit, offset)
	if err != nil {
		return nil, 0, clinicerr.Dependency("list modification requests", err)
	}
	defer rows.Close()
	items, err := collectMods(rows)
	return items, total, err
}

func collectMods(rows pgx.Rows) ([]*ModificationRequest, error) {
	var items []*ModificationRequest
	for rows.Next() {
		m, err := scanMod(rows)
		if err != nil {
			return nil, clinicerr.Dependency("scan modification request", err)
		}
		items = append(items, m)
	}
	return items, nil
}

// Decide is the compare-and-set: the guard on pending makes concurrent
// approve and reject race to a single winner.
func (r *modificationRepoPG) Decide(ctx context.Context, id, reviewerID uuid.UUID, state string, comment *string) (bool, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE modification_request SET state=$2, reviewer_id=$3, decided_at=NOW(), comment=$4
		WHERE id = $1 AND state = $5`,
		id, state, reviewerID, comment, StatePending)
	if err != nil {
		return false, clinicerr.Dependency("decide modification request", err)
	}
	return tag.RowsAffected() == 1, nil
}
