package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dermaclinic/dermaclinic/internal/platform/analyzer"
	outbound "github.com/dermaclinic/dermaclinic/internal/platform/notification"
)

var (
	ErrUnknownPatient      = fmt.Errorf("patient does not exist")
	ErrUnknownAnalysis     = fmt.Errorf("skin analysis does not exist")
	ErrNotExpert           = fmt.Errorf("user is not an active expert")
	ErrQuestionnaireExists = fmt.Errorf("questionnaire already attached to this analysis")
)

// PatientDirectory exposes the slice of patient data this package needs:
// existence for reference checks and an email address for result alerts.
type PatientDirectory interface {
	PatientExists(ctx context.Context, id int64) (bool, error)
	PatientEmail(ctx context.Context, id int64) (string, error)
}

// ExpertRef identifies an expert reviewer for fan-out.
type ExpertRef struct {
	ID    int64
	Name  string
	Email string
}

// ExpertDirectory lists the active experts and answers role checks.
type ExpertDirectory interface {
	IsExpert(ctx context.Context, id int64) (bool, error)
	ActiveExperts(ctx context.Context) ([]ExpertRef, error)
}

type Service struct {
	analyses       Repository
	validations    ValidationRepository
	questionnaires QuestionnaireRepository
	notifications  NotificationRepository

	patients PatientDirectory
	experts  ExpertDirectory
	analyzer analyzer.Analyzer
	outbox   *outbound.Dispatcher
	logger   zerolog.Logger
}

func NewService(
	analyses Repository,
	validations ValidationRepository,
	questionnaires QuestionnaireRepository,
	notifications NotificationRepository,
	patients PatientDirectory,
	experts ExpertDirectory,
	az analyzer.Analyzer,
	outbox *outbound.Dispatcher,
	logger zerolog.Logger,
) *Service {
	return &Service{
		analyses:       analyses,
		validations:    validations,
		questionnaires: questionnaires,
		notifications:  notifications,
		patients:       patients,
		experts:        experts,
		analyzer:       az,
		outbox:         outbox,
		logger:         logger,
	}
}

func checkConfidence(findings []analyzer.Finding) error {
	for _, f := range findings {
		if f.Confidence < 0 || f.Confidence > 1 {
			return fmt.Errorf("confidence %f out of range [0,1] for %s", f.Confidence, f.Condition)
		}
	}
	return nil
}

// Upload records a new skin analysis. When the caller supplies no results the
// configured analyzer scores the image; either way the record starts pending
// and every active expert is alerted that a review is waiting.
func (s *Service) Upload(ctx context.Context, a *SkinAnalysis) (*SkinAnalysis, error) {
	if a.PatientID == 0 {
		return nil, fmt.Errorf("patient_id is required")
	}
	if a.ImageURL == "" {
		return nil, fmt.Errorf("image_url is required")
	}
	ok, err := s.patients.PatientExists(ctx, a.PatientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownPatient
	}

	if len(a.Results) == 0 && s.analyzer != nil {
		findings, err := s.analyzer.Analyze(ctx, a.ImageURL, a.BodyPart)
		if err != nil {
			return nil, fmt.Errorf("analyze image: %w", err)
		}
		a.Results = findings
	}
	if err := checkConfidence(a.Results); err != nil {
		return nil, err
	}

	if a.ValidationStatus == "" {
		a.ValidationStatus = ValidationPending
	}
	if !ValidStatuses[a.ValidationStatus] {
		return nil, fmt.Errorf("invalid validation status: %s", a.ValidationStatus)
	}
	if a.Date.IsZero() {
		a.Date = time.Now()
	}

	if err := s.analyses.Create(ctx, a); err != nil {
		return nil, err
	}

	if err := s.alertExperts(ctx, a); err != nil {
		// The analysis is saved; a failed alert should not fail the upload.
		s.logger.Warn().Err(err).Int64("analysis_id", a.ID).Msg("expert alert failed")
	}
	return a, nil
}

func (s *Service) alertExperts(ctx context.Context, a *SkinAnalysis) error {
	experts, err := s.experts.ActiveExperts(ctx)
	if err != nil {
		return err
	}
	message := fmt.Sprintf("New skin analysis #%d (%s) awaiting review", a.ID, a.BodyPart)
	for _, e := range experts {
		n := &Notification{ExpertID: e.ID, SkinAnalysisID: a.ID, Message: message}
		if err := s.notifications.Create(ctx, n); err != nil {
			return err
		}
		if s.outbox != nil && e.Email != "" {
			_, err := s.outbox.Send(ctx, outbound.TypeEmail, e.Email, "expert-review-requested",
				map[string]string{
					"patient_pid": fmt.Sprintf("%d", a.PatientID),
					"body_part":   a.BodyPart,
				})
			if err != nil {
				s.logger.Warn().Err(err).Int64("expert_id", e.ID).Msg("review alert delivery failed")
			}
		}
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]*SkinAnalysis, error) {
	return s.analyses.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*SkinAnalysis, error) {
	return s.analyses.GetByID(ctx, id)
}

func (s *Service) ByPatient(ctx context.Context, patientID int64) ([]*SkinAnalysis, error) {
	return s.analyses.ByPatient(ctx, patientID)
}

func (s *Service) ByStatus(ctx context.Context, status string) ([]*SkinAnalysis, error) {
	if !ValidStatuses[status] {
		return nil, fmt.Errorf("invalid validation status: %s", status)
	}
	return s.analyses.ByStatus(ctx, status)
}

func (s *Service) Update(ctx context.Context, id int64, patch SkinAnalysisPatch) (*SkinAnalysis, error) {
	if patch.ValidationStatus != nil && !ValidStatuses[*patch.ValidationStatus] {
		return nil, fmt.Errorf("invalid validation status: %s", *patch.ValidationStatus)
	}
	for _, findings := range []*[]analyzer.Finding{patch.Results, patch.ExpertResults, patch.FinalResults} {
		if findings != nil {
			if err := checkConfidence(*findings); err != nil {
				return nil, err
			}
		}
	}
	return s.analyses.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	return s.analyses.Delete(ctx, id)
}

// RequestReview assigns an analysis to a specific expert for validation.
func (s *Service) RequestReview(ctx context.Context, analysisID, expertID int64) (*Validation, error) {
	a, err := s.analyses.GetByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrUnknownAnalysis
	}
	ok, err := s.experts.IsExpert(ctx, expertID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotExpert
	}

	v := &Validation{ExpertID: expertID, SkinAnalysisID: analysisID, Status: ValidationPending}
	if err := s.validations.Create(ctx, v); err != nil {
		return nil, err
	}

	n := &Notification{
		ExpertID:       expertID,
		SkinAnalysisID: analysisID,
		Message:        fmt.Sprintf("Skin analysis #%d assigned to you for review", analysisID),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.logger.Warn().Err(err).Int64("expert_id", expertID).Msg("assignment alert failed")
	}
	return v, nil
}

// CompleteReview records an expert's verdict and folds it back into the
// analysis: validation status moves to the verdict, the expert's findings are
// stored, and the final result set becomes the expert's findings when they
// provided any, otherwise the original model output (unless rejected).
func (s *Service) CompleteReview(ctx context.Context, validationID int64, status string, expertResults []analyzer.Finding, comments *string) (*SkinAnalysis, error) {
	if status == ValidationPending || !ValidStatuses[status] {
		return nil, fmt.Errorf("invalid review verdict: %s", status)
	}
	if err := checkConfidence(expertResults); err != nil {
		return nil, err
	}

	v, err := s.validations.GetByID(ctx, validationID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("validation not found")
	}

	if _, err := s.validations.Update(ctx, validationID, ValidationPatch{
		Status:        &status,
		ExpertResults: &expertResults,
		Comments:      comments,
	}); err != nil {
		return nil, err
	}

	a, err := s.analyses.GetByID(ctx, v.SkinAnalysisID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrUnknownAnalysis
	}

	var final []analyzer.Finding
	switch {
	case status == ValidationRejected:
		final = nil
	case len(expertResults) > 0:
		final = expertResults
	default:
		final = a.Results
	}

	updated, err := s.analyses.Update(ctx, a.ID, SkinAnalysisPatch{
		ValidationStatus: &status,
		ExpertResults:    &expertResults,
		FinalResults:     &final,
		ExpertComments:   comments,
	})
	if err != nil {
		return nil, err
	}

	if s.outbox != nil {
		email, err := s.patients.PatientEmail(ctx, a.PatientID)
		if err == nil && email != "" {
			_, err := s.outbox.Send(ctx, outbound.TypeEmail, email, "analysis-reviewed",
				map[string]string{"date": a.Date.Format("2006-01-02")})
			if err != nil {
				s.logger.Warn().Err(err).Int64("patient_id", a.PatientID).Msg("result alert delivery failed")
			}
		}
	}
	return updated, nil
}

func (s *Service) ValidationsByExpert(ctx context.Context, expertID int64) ([]*Validation, error) {
	return s.validations.ByExpert(ctx, expertID)
}

func (s *Service) ValidationsByAnalysis(ctx context.Context, analysisID int64) ([]*Validation, error) {
	return s.validations.ByAnalysis(ctx, analysisID)
}

// AttachQuestionnaire stores the intake answers for an analysis. Each
// analysis takes at most one questionnaire.
func (s *Service) AttachQuestionnaire(ctx context.Context, analysisID int64, answers json.RawMessage) (*Questionnaire, error) {
	if len(answers) == 0 || !json.Valid(answers) {
		return nil, fmt.Errorf("answers must be valid JSON")
	}
	a, err := s.analyses.GetByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrUnknownAnalysis
	}
	existing, err := s.questionnaires.GetByAnalysis(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrQuestionnaireExists
	}

	q := &Questionnaire{SkinAnalysisID: analysisID, Answers: answers}
	if err := s.questionnaires.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *Service) QuestionnaireByAnalysis(ctx context.Context, analysisID int64) (*Questionnaire, error) {
	return s.questionnaires.GetByAnalysis(ctx, analysisID)
}

func (s *Service) NotificationsByExpert(ctx context.Context, expertID int64, unreadOnly bool) ([]*Notification, error) {
	return s.notifications.ByExpert(ctx, expertID, unreadOnly)
}

func (s *Service) MarkNotificationRead(ctx context.Context, id int64) (*Notification, error) {
	return s.notifications.MarkRead(ctx, id)
}
