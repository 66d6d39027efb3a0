package medication

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

const medicationCols = `id, name, category, description, dosage_form, price, in_stock, image, created_at`

func scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.Name, &m.Category, &m.Description, &m.DosageForm,
		&m.Price, &m.InStock, &m.Image, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func collectMedications(rows pgx.Rows) ([]*Medication, error) {
	defer rows.Close()
	out := make([]*Medication, 0)
	for rows.Next() {
		var m Medication
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &m.Description, &m.DosageForm,
			&m.Price, &m.InStock, &m.Image, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *pgRepo) List(ctx context.Context) ([]*Medication, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+medicationCols+` FROM medication ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return collectMedications(rows)
}

func (r *pgRepo) GetByID(ctx context.Context, id int64) (*Medication, error) {
	return scanMedication(r.pool.QueryRow(ctx, `SELECT `+medicationCols+` FROM medication WHERE id = $1`, id))
}

func (r *pgRepo) ByCategory(ctx context.Context, category string) ([]*Medication, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+medicationCols+` FROM medication
		WHERE category = $1
		ORDER BY created_at DESC, id DESC`, category)
	if err != nil {
		return nil, err
	}
	return collectMedications(rows)
}

func (r *pgRepo) Create(ctx context.Context, m *Medication) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO medication (name, category, description, dosage_form, price, in_stock, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		m.Name, m.Category, m.Description, m.DosageForm, m.Price, m.InStock, m.Image).
		Scan(&m.ID, &m.CreatedAt)
}

func (r *pgRepo) Update(ctx context.Context, id int64, patch MedicationPatch) (*Medication, error) {
	return scanMedication(r.pool.QueryRow(ctx, `
		UPDATE medication SET
			name        = COALESCE($2, name),
			category    = COALESCE($3, category),
			description = COALESCE($4, description),
			dosage_form = COALESCE($5, dosage_form),
			price       = COALESCE($6, price),
			in_stock    = COALESCE($7, in_stock),
			image       = COALESCE($8, image)
		WHERE id = $1
		RETURNING `+medicationCols,
		id, patch.Name, patch.Category, patch.Description, patch.DosageForm,
		patch.Price, patch.InStock, patch.Image))
}

func (r *pgRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medication WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
