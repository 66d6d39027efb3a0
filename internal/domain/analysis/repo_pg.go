package analysis

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Finding slices ride in and out of Postgres as JSONB; pgx handles the
// (un)marshalling through encoding/json.

type pgRepo struct{ pool *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

const analysisCols = `id, patient_id, image_url, image_type, body_part, results,
	validation_status, expert_results, final_results, expert_comments, notes, date, created_at`

func scanAnalysis(row pgx.Row) (*SkinAnalysis, error) {
	var a SkinAnalysis
	err := row.Scan(&a.ID, &a.PatientID, &a.ImageURL, &a.ImageType, &a.BodyPart,
		&a.Results, &a.ValidationStatus, &a.ExpertResults, &a.FinalResults,
		&a.ExpertComments, &a.Notes, &a.Date, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAnalyses(rows pgx.Rows) ([]*SkinAnalysis, error) {
	defer rows.Close()
	out := make([]*SkinAnalysis, 0)
	for rows.Next() {
		var a SkinAnalysis
		if err := rows.Scan(&a.ID, &a.PatientID, &a.ImageURL, &a.ImageType, &a.BodyPart,
			&a.Results, &a.ValidationStatus, &a.ExpertResults, &a.FinalResults,
			&a.ExpertComments, &a.Notes, &a.Date, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *pgRepo) List(ctx context.Context) ([]*SkinAnalysis, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+analysisCols+` FROM skin_analysis ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return collectAnalyses(rows)
}

func (r *pgRepo) GetByID(ctx context.Context, id int64) (*SkinAnalysis, error) {
	return scanAnalysis(r.pool.QueryRow(ctx, `SELECT `+analysisCols+` FROM skin_analysis WHERE id = $1`, id))
}

func (r *pgRepo) ByPatient(ctx context.Context, patientID int64) ([]*SkinAnalysis, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+analysisCols+` FROM skin_analysis
		WHERE patient_id = $1
		ORDER BY date DESC, id DESC`, patientID)
	if err != nil {
		return nil, err
	}
	return collectAnalyses(rows)
}

func (r *pgRepo) ByStatus(ctx context.Context, status string) ([]*SkinAnalysis, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+analysisCols+` FROM skin_analysis
		WHERE validation_status = $1
		ORDER BY date DESC, id DESC`, status)
	if err != nil {
		return nil, err
	}
	return collectAnalyses(rows)
}

func (r *pgRepo) Create(ctx context.Context, a *SkinAnalysis) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO skin_analysis (patient_id, image_url, image_type, body_part, results,
			validation_status, expert_results, final_results, expert_comments, notes, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`,
		a.PatientID, a.ImageURL, a.ImageType, a.BodyPart, a.Results,
		a.ValidationStatus, a.ExpertResults, a.FinalResults, a.ExpertComments,
		a.Notes, a.Date).
		Scan(&a.ID, &a.CreatedAt)
}

func (r *pgRepo) Update(ctx context.Context, id int64, patch SkinAnalysisPatch) (*SkinAnalysis, error) {
	var results, expertResults, finalResults any
	if patch.Results != nil {
		results = *patch.Results
	}
	if patch.ExpertResults != nil {
		expertResults = *patch.ExpertResults
	}
	if patch.FinalResults != nil {
		finalResults = *patch.FinalResults
	}
	return scanAnalysis(r.pool.QueryRow(ctx, `
		UPDATE skin_analysis SET
			body_part         = COALESCE($2, body_part),
			results           = COALESCE($3, results),
			validation_status = COALESCE($4, validation_status),
			expert_results    = COALESCE($5, expert_results),
			final_results     = COALESCE($6, final_results),
			expert_comments   = COALESCE($7, expert_comments),
			notes             = COALESCE($8, notes)
		WHERE id = $1
		RETURNING `+analysisCols,
		id, patch.BodyPart, results, patch.ValidationStatus, expertResults,
		finalResults, patch.ExpertComments, patch.Notes))
}

func (r *pgRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM skin_analysis WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type pgValidationRepo struct{ pool *pgxpool.Pool }

func NewPGValidationRepo(pool *pgxpool.Pool) ValidationRepository {
	return &pgValidationRepo{pool: pool}
}

const validationCols = `id, expert_id, skin_analysis_id, status, expert_results, comments, created_at`

func scanValidation(row pgx.Row) (*Validation, error) {
	var v Validation
	err := row.Scan(&v.ID, &v.ExpertID, &v.SkinAnalysisID, &v.Status,
		&v.ExpertResults, &v.Comments, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func collectValidations(rows pgx.Rows) ([]*Validation, error) {
	defer rows.Close()
	out := make([]*Validation, 0)
	for rows.Next() {
		var v Validation
		if err := rows.Scan(&v.ID, &v.ExpertID, &v.SkinAnalysisID, &v.Status,
			&v.ExpertResults, &v.Comments, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

func (r *pgValidationRepo) GetByID(ctx context.Context, id int64) (*Validation, error) {
	return scanValidation(r.pool.QueryRow(ctx, `SELECT `+validationCols+` FROM analysis_validation WHERE id = $1`, id))
}

func (r *pgValidationRepo) ByExpert(ctx context.Context, expertID int64) ([]*Validation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+validationCols+` FROM analysis_validation
		WHERE expert_id = $1
		ORDER BY created_at DESC, id DESC`, expertID)
	if err != nil {
		return nil, err
	}
	return collectValidations(rows)
}

func (r *pgValidationRepo) ByAnalysis(ctx context.Context, analysisID int64) ([]*Validation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+validationCols+` FROM analysis_validation
		WHERE skin_analysis_id = $1
		ORDER BY created_at DESC, id DESC`, analysisID)
	if err != nil {
		return nil, err
	}
	return collectValidations(rows)
}

func (r *pgValidationRepo) Create(ctx context.Context, v *Validation) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO analysis_validation (expert_id, skin_analysis_id, status, expert_results, comments)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		v.ExpertID, v.SkinAnalysisID, v.Status, v.ExpertResults, v.Comments).
		Scan(&v.ID, &v.CreatedAt)
}

func (r *pgValidationRepo) Update(ctx context.Context, id int64, patch ValidationPatch) (*Validation, error) {
	var expertResults any
	if patch.ExpertResults != nil {
		expertResults = *patch.ExpertResults
	}
	return scanValidation(r.pool.QueryRow(ctx, `
		UPDATE analysis_validation SET
			status         = COALESCE($2, status),
			expert_results = COALESCE($3, expert_results),
			comments       = COALESCE($4, comments)
		WHERE id = $1
		RETURNING `+validationCols,
		id, patch.Status, expertResults, patch.Comments))
}

type pgQuestionnaireRepo struct{ pool *pgxpool.Pool }

func NewPGQuestionnaireRepo(pool *pgxpool.Pool) QuestionnaireRepository {
	return &pgQuestionnaireRepo{pool: pool}
}

func (r *pgQuestionnaireRepo) GetByAnalysis(ctx context.Context, analysisID int64) (*Questionnaire, error) {
	var q Questionnaire
	err := r.pool.QueryRow(ctx, `
		SELECT id, skin_analysis_id, answers, created_at
		FROM medical_questionnaire
		WHERE skin_analysis_id = $1`, analysisID).
		Scan(&q.ID, &q.SkinAnalysisID, &q.Answers, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *pgQuestionnaireRepo) Create(ctx context.Context, q *Questionnaire) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO medical_questionnaire (skin_analysis_id, answers)
		VALUES ($1, $2)
		RETURNING id, created_at`,
		q.SkinAnalysisID, q.Answers).
		Scan(&q.ID, &q.CreatedAt)
}

type pgNotificationRepo struct{ pool *pgxpool.Pool }

func NewPGNotificationRepo(pool *pgxpool.Pool) NotificationRepository {
	return &pgNotificationRepo{pool: pool}
}

const notificationCols = `id, expert_id, skin_analysis_id, message, is_read, created_at`

func (r *pgNotificationRepo) ByExpert(ctx context.Context, expertID int64, unreadOnly bool) ([]*Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationCols+` FROM expert_notification
		WHERE expert_id = $1 AND (NOT $2::boolean OR is_read = FALSE)
		ORDER BY created_at DESC, id DESC`, expertID, unreadOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*Notification, 0)
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.ExpertID, &n.SkinAnalysisID, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (r *pgNotificationRepo) Create(ctx context.Context, n *Notification) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO expert_notification (expert_id, skin_analysis_id, message, is_read)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		n.ExpertID, n.SkinAnalysisID, n.Message, n.IsRead).
		Scan(&n.ID, &n.CreatedAt)
}

func (r *pgNotificationRepo) MarkRead(ctx context.Context, id int64) (*Notification, error) {
	var n Notification
	err := r.pool.QueryRow(ctx, `
		UPDATE expert_notification SET is_read = TRUE
		WHERE id = $1
		RETURNING `+notificationCols, id).
		Scan(&n.ID, &n.ExpertID, &n.SkinAnalysisID, &n.Message, &n.IsRead, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}
