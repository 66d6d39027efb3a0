package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dermaclinic/dermaclinic/internal/platform/analyzer"
)

type stubPatients map[int64]string

func (s stubPatients) PatientExists(_ context.Context, id int64) (bool, error) {
	_, ok := s[id]
	return ok, nil
}

func (s stubPatients) PatientEmail(_ context.Context, id int64) (string, error) {
	return s[id], nil
}

type stubExperts []ExpertRef

func (s stubExperts) IsExpert(_ context.Context, id int64) (bool, error) {
	for _, e := range s {
		if e.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s stubExperts) ActiveExperts(_ context.Context) ([]ExpertRef, error) {
	return s, nil
}

func newService() *Service {
	return NewService(
		NewMemRepo(),
		NewMemValidationRepo(),
		NewMemQuestionnaireRepo(),
		NewMemNotificationRepo(),
		stubPatients{1: "jane@example.com"},
		stubExperts{{ID: 5, Name: "Expert One", Email: "expert@example.com"}},
		analyzer.NewSimulated(zerolog.Nop()),
		nil,
		zerolog.Nop(),
	)
}

func TestUploadDefaultsPendingAndRunsAnalyzer(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	a, err := svc.Upload(ctx, &SkinAnalysis{
		PatientID: 1,
		ImageURL:  "uploads/lesion-1.jpg",
		ImageType: "image/jpeg",
		BodyPart:  "forearm",
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if a.ID == 0 || a.CreatedAt.IsZero() || a.Date.IsZero() {
		t.Errorf("id/timestamps not assigned: %+v", a)
	}
	if a.ValidationStatus != ValidationPending {
		t.Errorf("ValidationStatus = %q, want pending", a.ValidationStatus)
	}
	if len(a.Results) == 0 {
		t.Fatal("analyzer produced no findings")
	}
	for _, f := range a.Results {
		if f.Confidence < 0 || f.Confidence > 1 {
			t.Errorf("confidence out of range: %+v", f)
		}
	}
}

func TestUploadAlertsActiveExperts(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	a, err := svc.Upload(ctx, &SkinAnalysis{PatientID: 1, ImageURL: "uploads/x.jpg"})
	if err != nil {
		t.Fatal(err)
	}

	alerts, err := svc.NotificationsByExpert(ctx, 5, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	if alerts[0].SkinAnalysisID != a.ID || alerts[0].IsRead {
		t.Errorf("alert = %+v", alerts[0])
	}
}

func TestUploadRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if _, err := svc.Upload(ctx, &SkinAnalysis{PatientID: 99, ImageURL: "x.jpg"}); !errors.Is(err, ErrUnknownPatient) {
		t.Errorf("unknown patient: err = %v", err)
	}
	if _, err := svc.Upload(ctx, &SkinAnalysis{PatientID: 1}); err == nil {
		t.Error("expected error for missing image")
	}
	_, err := svc.Upload(ctx, &SkinAnalysis{
		PatientID: 1,
		ImageURL:  "x.jpg",
		Results:   []analyzer.Finding{{Condition: "Rosacea", Confidence: 1.7}},
	})
	if err == nil {
		t.Error("expected error for out-of-range confidence")
	}
}

func TestLifecyclePendingToApproved(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	a, err := svc.Upload(ctx, &SkinAnalysis{
		PatientID: 1,
		ImageURL:  "uploads/lesion-2.jpg",
		Results:   []analyzer.Finding{{Condition: "Psoriasis", Confidence: 0.81, Severity: "moderate"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if a.ValidationStatus != ValidationPending {
		t.Fatalf("initial status = %q", a.ValidationStatus)
	}

	approved := ValidationApproved
	expert := []analyzer.Finding{{Condition: "Psoriasis", Confidence: 0.9, Severity: "moderate"}}
	updated, err := svc.Update(ctx, a.ID, SkinAnalysisPatch{
		ValidationStatus: &approved,
		ExpertResults:    &expert,
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.ValidationStatus != ValidationApproved {
		t.Errorf("status = %q", updated.ValidationStatus)
	}
	if updated.ImageURL != a.ImageURL || updated.PatientID != a.PatientID {
		t.Error("image or patient changed on status update")
	}
	if len(updated.ExpertResults) != 1 || updated.ExpertResults[0].Confidence != 0.9 {
		t.Errorf("expert results = %+v", updated.ExpertResults)
	}
}

func TestRequestReviewCreatesValidationAndAlert(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	a, _ := svc.Upload(ctx, &SkinAnalysis{PatientID: 1, ImageURL: "x.jpg"})

	v, err := svc.RequestReview(ctx, a.ID, 5)
	if err != nil {
		t.Fatalf("RequestReview: %v", err)
	}
	if v.Status != ValidationPending || v.SkinAnalysisID != a.ID || v.ExpertID != 5 {
		t.Errorf("validation = %+v", v)
	}

	if _, err := svc.RequestReview(ctx, a.ID, 42); !errors.Is(err, ErrNotExpert) {
		t.Errorf("non-expert: err = %v", err)
	}
	if _, err := svc.RequestReview(ctx, 999999, 5); !errors.Is(err, ErrUnknownAnalysis) {
		t.Errorf("unknown analysis: err = %v", err)
	}
}

func TestCompleteReviewFoldsVerdictIntoAnalysis(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	a, _ := svc.Upload(ctx, &SkinAnalysis{PatientID: 1, ImageURL: "x.jpg"})
	v, _ := svc.RequestReview(ctx, a.ID, 5)

	comments := "lesion consistent with contact dermatitis"
	expert := []analyzer.Finding{{Condition: "Contact Dermatitis", Confidence: 0.85, Severity: "moderate"}}
	updated, err := svc.CompleteReview(ctx, v.ID, ValidationModified, expert, &comments)
	if err != nil {
		t.Fatalf("CompleteReview: %v", err)
	}
	if updated.ValidationStatus != ValidationModified {
		t.Errorf("status = %q", updated.ValidationStatus)
	}
	if len(updated.FinalResults) != 1 || updated.FinalResults[0].Condition != "Contact Dermatitis" {
		t.Errorf("final results = %+v", updated.FinalResults)
	}
	if updated.ExpertComments == nil || *updated.ExpertComments != comments {
		t.Errorf("comments = %v", updated.ExpertComments)
	}

	reviews, _ := svc.ValidationsByExpert(ctx, 5)
	if len(reviews) != 1 || reviews[0].Status != ValidationModified {
		t.Errorf("validations = %+v", reviews)
	}
}

func TestCompleteReviewApprovalKeepsModelResults(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	a, _ := svc.Upload(ctx, &SkinAnalysis{PatientID: 1, ImageURL: "x.jpg"})
	v, _ := svc.RequestReview(ctx, a.ID, 5)

	updated, err := svc.CompleteReview(ctx, v.ID, ValidationApproved, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.FinalResults) != len(a.Results) {
		t.Errorf("final = %d findings, want %d", len(updated.FinalResults), len(a.Results))
	}
}

func TestCompleteReviewRejectsPendingVerdict(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	a, _ := svc.Upload(ctx, &SkinAnalysis{PatientID: 1, ImageURL: "x.jpg"})
	v, _ := svc.RequestReview(ctx, a.ID, 5)

	if _, err := svc.CompleteReview(ctx, v.ID, ValidationPending, nil, nil); err == nil {
		t.Error("expected error for pending verdict")
	}
}

func TestQuestionnaireOnePerAnalysis(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	a, _ := svc.Upload(ctx, &SkinAnalysis{PatientID: 1, ImageURL: "x.jpg"})

	answers := json.RawMessage(`{"itching":"yes","duration_weeks":3}`)
	q, err := svc.AttachQuestionnaire(ctx, a.ID, answers)
	if err != nil {
		t.Fatalf("AttachQuestionnaire: %v", err)
	}
	if q.ID == 0 || q.SkinAnalysisID != a.ID {
		t.Errorf("questionnaire = %+v", q)
	}

	if _, err := svc.AttachQuestionnaire(ctx, a.ID, answers); !errors.Is(err, ErrQuestionnaireExists) {
		t.Errorf("second attach: err = %v", err)
	}
	if _, err := svc.AttachQuestionnaire(ctx, a.ID, json.RawMessage(`{not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}

	got, err := svc.QuestionnaireByAnalysis(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || string(got.Answers) != string(answers) {
		t.Errorf("round trip: %+v", got)
	}
}

func TestMarkNotificationRead(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	svc.Upload(ctx, &SkinAnalysis{PatientID: 1, ImageURL: "x.jpg"})

	alerts, _ := svc.NotificationsByExpert(ctx, 5, false)
	if len(alerts) == 0 {
		t.Fatal("no alerts created")
	}
	n, err := svc.MarkNotificationRead(ctx, alerts[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if !n.IsRead {
		t.Error("notification not marked read")
	}

	missing, err := svc.MarkNotificationRead(ctx, 999999)
	if err != nil || missing != nil {
		t.Errorf("missing id: got %+v err=%v", missing, err)
	}
}

func TestByStatusFiltersAnalyses(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	a1, _ := svc.Upload(ctx, &SkinAnalysis{PatientID: 1, ImageURL: "uploads/a.jpg"})
	a2, _ := svc.Upload(ctx, &SkinAnalysis{PatientID: 1, ImageURL: "uploads/b.jpg"})

	approved := ValidationApproved
	if _, err := svc.Update(ctx, a1.ID, SkinAnalysisPatch{ValidationStatus: &approved}); err != nil {
		t.Fatal(err)
	}

	pending, err := svc.ByStatus(ctx, ValidationPending)
	if err != nil {
		t.Fatalf("ByStatus: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != a2.ID {
		t.Errorf("pending = %+v, want only analysis %d", pending, a2.ID)
	}

	done, err := svc.ByStatus(ctx, ValidationApproved)
	if err != nil {
		t.Fatal(err)
	}
	if len(done) != 1 || done[0].ID != a1.ID {
		t.Errorf("approved = %+v, want only analysis %d", done, a1.ID)
	}

	if _, err := svc.ByStatus(ctx, "bogus"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestNotificationsUnreadFilter(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	svc.Upload(ctx, &SkinAnalysis{PatientID: 1, ImageURL: "uploads/a.jpg"})
	svc.Upload(ctx, &SkinAnalysis{PatientID: 1, ImageURL: "uploads/b.jpg"})

	all, err := svc.NotificationsByExpert(ctx, 5, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("alerts = %d, want 2", len(all))
	}

	if _, err := svc.MarkNotificationRead(ctx, all[0].ID); err != nil {
		t.Fatal(err)
	}

	unread, err := svc.NotificationsByExpert(ctx, 5, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(unread) != 1 || unread[0].ID == all[0].ID || unread[0].IsRead {
		t.Errorf("unread = %+v", unread)
	}

	all, _ = svc.NotificationsByExpert(ctx, 5, false)
	if len(all) != 2 {
		t.Errorf("unfiltered list shrank to %d", len(all))
	}
}

func TestDeterministicAnalyzerAgreesOnRepeatUpload(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	a1, _ := svc.Upload(ctx, &SkinAnalysis{PatientID: 1, ImageURL: "uploads/same.jpg", BodyPart: "scalp"})
	a2, _ := svc.Upload(ctx, &SkinAnalysis{PatientID: 1, ImageURL: "uploads/same.jpg", BodyPart: "scalp"})

	if a1.Results[0].Condition != a2.Results[0].Condition {
		t.Errorf("top condition differs: %q vs %q", a1.Results[0].Condition, a2.Results[0].Condition)
	}
}

func TestByPatientUnknownIDReturnsEmptyList(t *testing.T) {
	svc := newService()
	out, err := svc.ByPatient(context.Background(), 999999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Errorf("got %v, want empty list", out)
	}
}
