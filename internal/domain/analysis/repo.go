package analysis

import "context"

// Repository is the skin-analysis store. Lookups return (nil, nil) when no
// record matches; Delete reports whether a record was actually removed.
type Repository interface {
	List(ctx context.Context) ([]*SkinAnalysis, error)
	GetByID(ctx context.Context, id int64) (*SkinAnalysis, error)
	ByPatient(ctx context.Context, patientID int64) ([]*SkinAnalysis, error)
	ByStatus(ctx context.Context, status string) ([]*SkinAnalysis, error)
	Create(ctx context.Context, a *SkinAnalysis) error
	Update(ctx context.Context, id int64, patch SkinAnalysisPatch) (*SkinAnalysis, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// ValidationRepository stores expert review assignments.
type ValidationRepository interface {
	GetByID(ctx context.Context, id int64) (*Validation, error)
	ByExpert(ctx context.Context, expertID int64) ([]*Validation, error)
	ByAnalysis(ctx context.Context, analysisID int64) ([]*Validation, error)
	Create(ctx context.Context, v *Validation) error
	Update(ctx context.Context, id int64, patch ValidationPatch) (*Validation, error)
}

// QuestionnaireRepository stores intake answers, one record per analysis.
type QuestionnaireRepository interface {
	GetByAnalysis(ctx context.Context, analysisID int64) (*Questionnaire, error)
	Create(ctx context.Context, q *Questionnaire) error
}

// NotificationRepository stores expert review alerts. MarkRead is the only
// mutation; it returns the updated record or (nil, nil) for an unknown id.
// ByExpert with unreadOnly set returns only unacknowledged alerts.
type NotificationRepository interface {
	ByExpert(ctx context.Context, expertID int64, unreadOnly bool) ([]*Notification, error)
	Create(ctx context.Context, n *Notification) error
	MarkRead(ctx context.Context, id int64) (*Notification, error)
}
