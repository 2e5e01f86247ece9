package booking

import (
	"context"
	"errors"
	"time"

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

// =========== ScheduleWindow ===========

type windowRepoPG struct{ pool *pgxpool.Pool }

func NewWindowRepoPG(pool *pgxpool.Pool) WindowRepository {
	return &windowRepoPG{pool: pool}
}

const windowCols = `id, weekday, start_minutes, end_minutes, active, created_at, updated_at`

func scanWindow(row pgx.Row) (*ScheduleWindow, error) {
	var w ScheduleWindow
	var start, end int
	err := row.Scan(&w.ID, &w.Weekday, &start, &end, &w.Active, &w.CreatedAt, &w.UpdatedAt)
	w.Start, w.End = TimeOfDay(start), TimeOfDay(end)
	return &w, err
}

func (r *windowRepoPG) Create(ctx context.Context, w *ScheduleWindow) error {
	w.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO schedule_window (id, weekday, start_minutes, end_minutes, active)
		VALUES ($1,$2,$3,$4,$5)`,
		w.ID, w.Weekday, int(w.Start), int(w.End), w.Active)
	return clinicerr.Dependency("insert schedule window", err)
}

func (r *windowRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ScheduleWindow, error) {
	w, err := scanWindow(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+windowCols+` FROM schedule_window WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("schedule window", id.String())
	}
	if err != nil {
		return nil, clinicerr.Dependency("select schedule window", err)
	}
	return w, nil
}

func (r *windowRepoPG) List(ctx context.Context) ([]*ScheduleWindow, error) {
	return r.list(ctx, `SELECT `+windowCols+` FROM schedule_window ORDER BY weekday, start_minutes`)
}

func (r *windowRepoPG) ListActive(ctx context.Context) ([]*ScheduleWindow, error) {
	return r.list(ctx, `SELECT `+windowCols+` FROM schedule_window WHERE active ORDER BY weekday, start_minutes`)
}

func (r *windowRepoPG) list(ctx context.Context, query string) ([]*ScheduleWindow, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, clinicerr.Dependency("list schedule windows", err)
	}
	defer rows.Close()
	var items []*ScheduleWindow
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, clinicerr.Dependency("scan schedule window", err)
		}
		items = append(items, w)
	}
	return items, nil
}

func (r *windowRepoPG) Update(ctx context.Context, w *ScheduleWindow) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE schedule_window SET weekday=$2, start_minutes=$3, end_minutes=$4, active=$5, updated_at=NOW()
		WHERE id = $1`,
		w.ID, w.Weekday, int(w.Start), int(w.End), w.Active)
	if err != nil {
		return clinicerr.Dependency("update schedule window", err)
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.NotFound("schedule window", w.ID.String())
	}
	return nil
}

func (r *windowRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM schedule_window WHERE id = $1`, id)
	return clinicerr.Dependency("delete schedule window", err)
}

// =========== Holiday ===========

type holidayRepoPG struct{ pool *pgxpool.Pool }

func NewHolidayRepoPG(pool *pgxpool.Pool) HolidayRepository {
	return &holidayRepoPG{pool: pool}
}

func (r *holidayRepoPG) Create(ctx context.Context, h *Holiday) error {
	h.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO holiday (id, holiday_date, name) VALUES ($1,$2,$3)`,
		h.ID, h.Date, h.Name)
	return clinicerr.Dependency("insert holiday", err)
}

func (r *holidayRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM holiday WHERE id = $1`, id)
	return clinicerr.Dependency("delete holiday", err)
}

func (r *holidayRepoPG) ListByYearRange(ctx context.Context, fromYear, toYear int) ([]*Holiday, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, holiday_date, name FROM holiday
		WHERE EXTRACT(YEAR FROM holiday_date) BETWEEN $1 AND $2
		ORDER BY holiday_date`, fromYear, toYear)
	if err != nil {
		return nil, clinicerr.Dependency("list holidays", err)
	}
	defer rows.Close()
	var items []*Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name); err != nil {
			return nil, clinicerr.Dependency("scan holiday", err)
		}
		items = append(items, &h)
	}
	return items, nil
}

// =========== ExceptionalPermission ===========

type permissionRepoPG struct{ pool *pgxpool.Pool }

func NewPermissionRepoPG(pool *pgxpool.Pool) PermissionRepository {
	return &permissionRepoPG{pool: pool}
}

const permCols = `id, caregiver_id, valid_from, valid_until, created_at`

func (r *permissionRepoPG) Create(ctx context.Context, p *ExceptionalPermission) error {
	p.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO exceptional_permission (id, caregiver_id, valid_from, valid_until)
		VALUES ($1,$2,$3,$4)`,
		p.ID, p.CaregiverID, p.ValidFrom, p.ValidUntil)
	return clinicerr.Dependency("insert exceptional permission", err)
}

func (r *permissionRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM exceptional_permission WHERE id = $1`, id)
	return clinicerr.Dependency("delete exceptional permission", err)
}

func (r *permissionRepoPG) ListByCaregiver(ctx context.Context, caregiverID uuid.UUID) ([]*ExceptionalPermission, error) {
	return r.list(ctx, `SELECT `+permCols+` FROM exceptional_permission WHERE caregiver_id = $1 ORDER BY valid_from DESC`, caregiverID)
}

func (r *permissionRepoPG) ListValidAt(ctx context.Context, caregiverID uuid.UUID, at time.Time) ([]*ExceptionalPermission, error) {
	return r.list(ctx, `
		SELECT `+permCols+` FROM exceptional_permission
		WHERE caregiver_id = $1 AND valid_from <= $2 AND valid_until >= $2`, caregiverID, at)
}

func (r *permissionRepoPG) list(ctx context.Context, query string, args ...interface{}) ([]*ExceptionalPermission, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, clinicerr.Dependency("list exceptional permissions", err)
	}
	defer rows.Close()
	var items []*ExceptionalPermission
	for rows.Next() {
		var p ExceptionalPermission
		if err := rows.Scan(&p.ID, &p.CaregiverID, &p.ValidFrom, &p.ValidUntil, &p.CreatedAt); err != nil {
			return nil, clinicerr.Dependency("scan exceptional permission", err)
		}
		items = append(items, &p)
	}
	return items, nil
}

// =========== Appointment ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

const apptCols = `id, patient_id, caregiver_id, appointment_date, window_id, slot_minutes,
	treatment, note, status, created_at, updated_at`

func scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var slot int
	err := row.Scan(&a.ID, &a.PatientID, &a.CaregiverID, &a.Date, &a.WindowID, &slot,
		&a.Treatment, &a.Note, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	a.Slot = TimeOfDay(slot)
	return &a, err
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.Status = StatusScheduled
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO appointment (id, patient_id, caregiver_id, appointment_date, window_id,
			slot_minutes, treatment, note, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.PatientID, a.CaregiverID, a.Date, a.WindowID,
		int(a.Slot), a.Treatment, a.Note, a.Status)
	return clinicerr.Dependency("insert appointment", err)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppt(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("appointment", id.String())
	}
	if err != nil {
		return nil, clinicerr.Dependency("select appointment", err)
	}
	return a, nil
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.listBy(ctx, "patient_id", patientID, limit, offset)
}

func (r *appointmentRepoPG) ListByCaregiver(ctx context.Context, caregiverID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.listBy(ctx, "caregiver_id", caregiverID, limit, offset)
}

func (r *appointmentRepoPG) listBy(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE `+col+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, clinicerr.Dependency("count appointments", err)
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE `+col+` = $1
		 ORDER BY appointment_date DESC, slot_minutes DESC LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, clinicerr.Dependency("list appointments", err)
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, 0, clinicerr.Dependency("scan appointment", err)
		}
		items = append(items, a)
	}
	return items, total, nil
}

func (r *appointmentRepoPG) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE appointment SET status=$2, updated_at=NOW()
		WHERE id = $1 AND status = $3`,
		id, StatusCancelled, StatusScheduled)
	if err != nil {
		return false, clinicerr.Dependency("cancel appointment", err)
	}
	return tag.RowsAffected() == 1, nil
}
