package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgRepo struct{ pool *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

const appointmentCols = `id, patient_id, hospital_id, doctor_id, date, time_of_day,
	duration, type, status, notes, created_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.HospitalID, &a.DoctorID, &a.Date,
		&a.TimeOfDay, &a.Duration, &a.Type, &a.Status, &a.Notes, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]*Appointment, error) {
	defer rows.Close()
	out := make([]*Appointment, 0)
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.HospitalID, &a.DoctorID, &a.Date,
			&a.TimeOfDay, &a.Duration, &a.Type, &a.Status, &a.Notes, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *pgRepo) List(ctx context.Context) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+appointmentCols+` FROM appointment ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *pgRepo) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `SELECT `+appointmentCols+` FROM appointment WHERE id = $1`, id))
}

func (r *pgRepo) ByPatient(ctx context.Context, patientID int64) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentCols+` FROM appointment
		WHERE patient_id = $1
		ORDER BY date DESC, id DESC`, patientID)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *pgRepo) ByDate(ctx context.Context, day time.Time) ([]*Appointment, error) {
	// UTC calendar date on both sides, independent of the session TimeZone.
	// The expression matches the idx_appointment_date index.
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentCols+` FROM appointment
		WHERE (date AT TIME ZONE 'UTC')::date = $1::date
		ORDER BY date DESC, id DESC`, day.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *pgRepo) Create(ctx context.Context, a *Appointment) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO appointment (patient_id, hospital_id, doctor_id, date, time_of_day,
			duration, type, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		a.PatientID, a.HospitalID, a.DoctorID, a.Date, a.TimeOfDay,
		a.Duration, a.Type, a.Status, a.Notes).
		Scan(&a.ID, &a.CreatedAt)
}

func (r *pgRepo) Update(ctx context.Context, id int64, patch AppointmentPatch) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `
		UPDATE appointment SET
			hospital_id = COALESCE($2, hospital_id),
			doctor_id   = COALESCE($3, doctor_id),
			date        = COALESCE($4, date),
			time_of_day = COALESCE($5, time_of_day),
			duration    = COALESCE($6, duration),
			type        = COALESCE($7, type),
			status      = COALESCE($8, status),
			notes       = COALESCE($9, notes)
		WHERE id = $1
		RETURNING `+appointmentCols,
		id, patch.HospitalID, patch.DoctorID, patch.Date, patch.TimeOfDay,
		patch.Duration, patch.Type, patch.Status, patch.Notes))
}

func (r *pgRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
