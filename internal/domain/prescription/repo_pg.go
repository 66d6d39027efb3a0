package prescription

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

const prescriptionCols = `id, patient_id, date, remarks, created_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.PatientID, &p.Date, &p.Remarks, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// loadItems fills in the ordered item list for one prescription.
func loadItems(ctx context.Context, q querier, p *Prescription) error {
	rows, err := q.Query(ctx, `
		SELECT medication_id, dosage, instructions
		FROM prescription_item
		WHERE prescription_id = $1
		ORDER BY position`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	p.Items = make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.MedicationID, &it.Dosage, &it.Instructions); err != nil {
			return err
		}
		p.Items = append(p.Items, it)
	}
	return rows.Err()
}

func insertItems(ctx context.Context, tx pgx.Tx, prescriptionID int64, items []Item) error {
	for i, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO prescription_item (prescription_id, position, medication_id, dosage, instructions)
			VALUES ($1, $2, $3, $4, $5)`,
			prescriptionID, i, it.MedicationID, it.Dosage, it.Instructions); err != nil {
			return err
		}
	}
	return nil
}

func (r *pgRepo) collect(ctx context.Context, rows pgx.Rows) ([]*Prescription, error) {
	defer rows.Close()
	out := make([]*Prescription, 0)
	for rows.Next() {
		var p Prescription
		if err := rows.Scan(&p.ID, &p.PatientID, &p.Date, &p.Remarks, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range out {
		if err := loadItems(ctx, r.pool, p); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *pgRepo) List(ctx context.Context) ([]*Prescription, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+prescriptionCols+` FROM prescription ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

func (r *pgRepo) GetByID(ctx context.Context, id int64) (*Prescription, error) {
	p, err := scanPrescription(r.pool.QueryRow(ctx, `SELECT `+prescriptionCols+` FROM prescription WHERE id = $1`, id))
	if err != nil || p == nil {
		return p, err
	}
	if err := loadItems(ctx, r.pool, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgRepo) ByPatient(ctx context.Context, patientID int64) ([]*Prescription, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+prescriptionCols+` FROM prescription
		WHERE patient_id = $1
		ORDER BY date DESC, id DESC`, patientID)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

// Create writes the prescription row and its items in one transaction so a
// partial item failure never leaves a headless prescription behind.
func (r *pgRepo) Create(ctx context.Context, p *Prescription) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `
		INSERT INTO prescription (patient_id, date, remarks)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		p.PatientID, p.Date, p.Remarks).Scan(&p.ID, &p.CreatedAt); err != nil {
		return err
	}
	if err := insertItems(ctx, tx, p.ID, p.Items); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *pgRepo) Update(ctx context.Context, id int64, patch PrescriptionPatch) (*Prescription, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	p, err := scanPrescription(tx.QueryRow(ctx, `
		UPDATE prescription SET
			date    = COALESCE($2, date),
			remarks = COALESCE($3, remarks)
		WHERE id = $1
		RETURNING `+prescriptionCols,
		id, patch.Date, patch.Remarks))
	if err != nil || p == nil {
		return p, err
	}

	if patch.Items != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM prescription_item WHERE prescription_id = $1`, id); err != nil {
			return nil, err
		}
		if err := insertItems(ctx, tx, id, *patch.Items); err != nil {
			return nil, err
		}
	}
	if err := loadItems(ctx, tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM prescription_item WHERE prescription_id = $1`, id); err != nil {
		return false, err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM prescription WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
