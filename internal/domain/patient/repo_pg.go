package patient

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `id, first_name, last_name, document_no, email, phone, address,
	caregiver_id, created_at, updated_at`

func scan(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.DocumentNo,
		&p.Email, &p.Phone, &p.Address, &p.CaregiverID,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (id, first_name, last_name, document_no, email, phone, address, caregiver_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.FirstName, p.LastName, p.DocumentNo, p.Email, p.Phone, p.Address, p.CaregiverID)
	return clinicerr.Dependency("insert patient", err)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM patient WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("patient", id.String())
	}
	if err != nil {
		return nil, clinicerr.Dependency("select patient", err)
	}
	return p, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, clinicerr.Dependency("count patients", err)
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+cols+` FROM patient ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, clinicerr.Dependency("list patients", err)
	}
	defer rows.Close()
	return collect(rows, total)
}

func (r *repoPG) ListByCaregiver(ctx context.Context, caregiverID uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient WHERE caregiver_id = $1`, caregiverID).Scan(&total); err != nil {
		return nil, 0, clinicerr.Dependency("count patients", err)
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+cols+` FROM patient WHERE caregiver_id = $1 ORDER BY last_name, first_name LIMIT $2 OFFSET $3`,
		caregiverID, limit, offset)
	if err != nil {
		return nil, 0, clinicerr.Dependency("list patients by caregiver", err)
	}
	defer rows.Close()
	return collect(rows, total)
}

func (r *repoPG) SearchByName(ctx context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	pattern := "%" + name + "%"
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient WHERE first_name ILIKE $1 OR last_name ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, clinicerr.Dependency("count patients", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM patient WHERE first_name ILIKE $1 OR last_name ILIKE $1
		 ORDER BY last_name, first_name LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, 0, clinicerr.Dependency("search patients", err)
	}
	defer rows.Close()
	return collect(rows, total)
}

func (r *repoPG) UpdateContact(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET email=$2, phone=$3, address=$4, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Email, p.Phone, p.Address)
	if err != nil {
		return clinicerr.Dependency("update patient contact", err)
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.NotFound("patient", p.ID.String())
	}
	return nil
}

func (r *repoPG) Reassign(ctx context.Context, id, caregiverID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE patient SET caregiver_id=$2, updated_at=NOW() WHERE id = $1`, id, caregiverID)
	if err != nil {
		return clinicerr.Dependency("reassign patient", err)
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.NotFound("patient", id.String())
	}
	return nil
}

func collect(rows pgx.Rows, total int) ([]*Patient, int, error) {
	var items []*Patient
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, 0, clinicerr.Dependency("scan patient", err)
		}
		items = append(items, p)
	}
	return items, total, nil
}
