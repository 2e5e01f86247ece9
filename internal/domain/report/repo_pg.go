package report

import (
	"context"
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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const itemCols = `id, report_id, item_type, specification, reported_progress,
	approval, reviewer_id, decided_at, rejection_comment, created_at`

func scanItem(row pgx.Row) (*Item, error) {
	var i Item
	err := row.Scan(&i.ID, &i.ReportID, &i.ItemType, &i.Specification, &i.ReportedProgress,
		&i.Approval, &i.ReviewerID, &i.DecidedAt, &i.RejectionComment, &i.CreatedAt)
	return &i, err
}

// CreateReport inserts the report and every item inside a transaction,
// so a failed item insert rolls the report back too.
func (r *repoPG) CreateReport(ctx context.Context, rep *Report, items []*Item) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		q := conn(ctx, r.pool)

		rep.ID = uuid.New()
		if _, err := q.Exec(ctx, `
			INSERT INTO report (id, patient_id, plan_id, caregiver_id, note)
			VALUES ($1,$2,$3,$4,$5)`,
			rep.ID, rep.PatientID, rep.PlanID, rep.CaregiverID, rep.Note); err != nil {
			return clinicerr.Dependency("insert report", err)
		}

		for _, it := range items {
			it.ID = uuid.New()
			it.ReportID = rep.ID
			it.Approval = ApprovalPending
			if _, err := q.Exec(ctx, `
				INSERT INTO report_item (id, report_id, item_type, specification, reported_progress, approval)
				VALUES ($1,$2,$3,$4,$5,$6)`,
				it.ID, it.ReportID, it.ItemType, it.Specification, it.ReportedProgress, it.Approval); err != nil {
				return clinicerr.Dependency("insert report item", err)
			}
		}
		rep.Items = items
		return nil
	})
}

func (r *repoPG) GetReport(ctx context.Context, id uuid.UUID) (*Report, error) {
	var rep Report
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, patient_id, plan_id, caregiver_id, note, created_at
		FROM report WHERE id = $1`, id).
		Scan(&rep.ID, &rep.PatientID, &rep.PlanID, &rep.CaregiverID, &rep.Note, &rep.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("report", id.String())
	}
	if err != nil {
		return nil, clinicerr.Dependency("select report", err)
	}

	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+itemCols+` FROM report_item WHERE report_id = $1 ORDER BY created_at, id`, id)
	if err != nil {
		return nil, clinicerr.Dependency("list report items", err)
	}
	defer rows.Close()
	rep.Items, err = collectItems(rows)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *repoPG) ListReportsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Report, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM report WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, clinicerr.Dependency("count reports", err)
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, patient_id, plan_id, caregiver_id, note, created_at
		FROM report WHERE patient_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, clinicerr.Dependency("list reports", err)
	}
	defer rows.Close()
	var reports []*Report
	for rows.Next() {
		var rep Report
		if err := rows.Scan(&rep.ID, &rep.PatientID, &rep.PlanID, &rep.CaregiverID, &rep.Note, &rep.CreatedAt); err != nil {
			return nil, 0, clinicerr.Dependency("scan report", err)
		}
		reports = append(reports, &rep)
	}
	return reports, total, nil
}

func (r *repoPG) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	i, err := scanItem(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+itemCols+` FROM report_item WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("report item", id.String())
	}
	if err != nil {
		return nil, clinicerr.Dependency("select report item", err)
	}
	return i, nil
}

func (r *repoPG) ListItemsByApproval(ctx context.Context, approval string, limit, offset int) ([]*Item, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM report_item WHERE approval = $1`, approval).Scan(&total); err != nil {
		return nil, 0, clinicerr.Dependency("count report items", err)
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+itemCols+` FROM report_item WHERE approval = $1
		ORDER BY created_at LIMIT $2 OFFSET $3`, approval, limit, offset)
	if err != nil {
		return nil, 0, clinicerr.Dependency("list report items", err)
	}
	defer rows.Close()
	items, err := collectItems(rows)
	return items, total, err
}

func (r *repoPG) ListItemsByPlan(ctx context.Context, planID uuid.UUID) ([]*Item, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+itemColsPrefixed("i")+` FROM report_item i
		JOIN report rep ON rep.id = i.report_id
		WHERE rep.plan_id = $1 ORDER BY i.created_at`, planID)
	if err != nil {
		return nil, clinicerr.Dependency("list report items by plan", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

func (r *repoPG) ListDecidedByCaregiver(ctx context.Context, caregiverID uuid.UUID, approval string) ([]*Item, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+itemColsPrefixed("i")+` FROM report_item i
		JOIN report rep ON rep.id = i.report_id
		WHERE rep.caregiver_id = $1 AND i.approval = $2
		ORDER BY i.created_at`, caregiverID, approval)
	if err != nil {
		return nil, clinicerr.Dependency("list decided report items", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

func itemColsPrefixed(alias string) string {
	return alias + `.id, ` + alias + `.report_id, ` + alias + `.item_type, ` +
		alias + `.specification, ` + alias + `.reported_progress, ` + alias + `.approval, ` +
		alias + `.reviewer_id, ` + alias + `.decided_at, ` + alias + `.rejection_comment, ` +
		alias + `.created_at`
}

func collectItems(rows pgx.Rows) ([]*Item, error) {
	var items []*Item
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, clinicerr.Dependency("scan report item", err)
		}
		items = append(items, i)
	}
	return items, nil
}

// Approve is the compare-and-set: the pending guard lets a concurrent
// approve and reject race to exactly one winner.
func (r *repoPG) Approve(ctx context.Context, id, reviewerID uuid.UUID, progress *string) (bool, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE report_item
		SET approval=$2, reviewer_id=$3, decided_at=NOW(),
		    reported_progress=COALESCE($4, reported_progress)
		WHERE id = $1 AND approval = $5`,
		id, ApprovalApproved, reviewerID, progress, ApprovalPending)
	if err != nil {
		return false, clinicerr.Dependency("approve report item", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) Reject(ctx context.Context, id, reviewerID uuid.UUID, comment string) (bool, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE report_item
		SET approval=$2, reviewer_id=$3, decided_at=NOW(), rejection_comment=$4
		WHERE id = $1 AND approval = $5`,
		id, ApprovalRejected, reviewerID, comment, ApprovalPending)
	if err != nil {
		return false, clinicerr.Dependency("reject report item", err)
	}
	return tag.RowsAffected() == 1, nil
}
