package patient

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgRepo struct{ pool *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

const patientCols = `id, pid, user_id, name, age, gender, email, phone, address,
	allergies, last_visit_date, next_visit_date, profile_image, created_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.PID, &p.UserID, &p.Name, &p.Age, &p.Gender, &p.Email,
		&p.Phone, &p.Address, &p.Allergies, &p.LastVisitDate, &p.NextVisitDate,
		&p.ProfileImage, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pgRepo) List(ctx context.Context) ([]*Patient, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patient ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.PID, &p.UserID, &p.Name, &p.Age, &p.Gender, &p.Email,
			&p.Phone, &p.Address, &p.Allergies, &p.LastVisitDate, &p.NextVisitDate,
			&p.ProfileImage, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *pgRepo) GetByID(ctx context.Context, id int64) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *pgRepo) GetByPID(ctx context.Context, pid string) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE pid = $1`, pid))
}

func (r *pgRepo) Create(ctx context.Context, p *Patient) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO patient (pid, user_id, name, age, gender, email, phone, address,
			allergies, last_visit_date, next_visit_date, profile_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`,
		p.PID, p.UserID, p.Name, p.Age, p.Gender, p.Email, p.Phone, p.Address,
		p.Allergies, p.LastVisitDate, p.NextVisitDate, p.ProfileImage).
		Scan(&p.ID, &p.CreatedAt)
}

func (r *pgRepo) Update(ctx context.Context, id int64, patch PatientPatch) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `
		UPDATE patient SET
			name            = COALESCE($2, name),
			age             = COALESCE($3, age),
			gender          = COALESCE($4, gender),
			email           = COALESCE($5, email),
			phone           = COALESCE($6, phone),
			address         = COALESCE($7, address),
			allergies       = COALESCE($8, allergies),
			last_visit_date = COALESCE($9, last_visit_date),
			next_visit_date = COALESCE($10, next_visit_date),
			profile_image   = COALESCE($11, profile_image)
		WHERE id = $1
		RETURNING `+patientCols,
		id, patch.Name, patch.Age, patch.Gender, patch.Email, patch.Phone,
		patch.Address, patch.Allergies, patch.LastVisitDate, patch.NextVisitDate,
		patch.ProfileImage))
}

func (r *pgRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
