package analysis

import (
	"encoding/json"
	"time"

	"github.com/dermaclinic/dermaclinic/internal/platform/analyzer"
)

// Validation statuses for a skin analysis. A record starts pending; an expert
// review moves it to one of the terminal states.
const (
	ValidationPending  = "pending"
	ValidationApproved = "approved"
	ValidationModified = "modified"
	ValidationRejected = "rejected"
)

// ValidStatuses is the set of accepted validation states.
var ValidStatuses = map[string]bool{
	ValidationPending:  true,
	ValidationApproved: true,
	ValidationModified: true,
	ValidationRejected: true,
}

// SkinAnalysis maps to the skin_analysis table. Results holds the raw model
// output; ExpertResults the reviewer's corrected findings; FinalResults the
// set shown to the patient once review completes. All three persist as JSONB.
type SkinAnalysis struct {
	ID               int64              `db:"id" json:"id"`
	PatientID        int64              `db:"patient_id" json:"patient_id"`
	ImageURL         string             `db:"image_url" json:"image_url"`
	ImageType        string             `db:"image_type" json:"image_type"`
	BodyPart         string             `db:"body_part" json:"body_part"`
	Results          []analyzer.Finding `db:"results" json:"results"`
	ValidationStatus string             `db:"validation_status" json:"validation_status"`
	ExpertResults    []analyzer.Finding `db:"expert_results" json:"expert_results,omitempty"`
	FinalResults     []analyzer.Finding `db:"final_results" json:"final_results,omitempty"`
	ExpertComments   *string            `db:"expert_comments" json:"expert_comments,omitempty"`
	Notes            *string            `db:"notes" json:"notes,omitempty"`
	Date             time.Time          `db:"date" json:"date"`
	CreatedAt        time.Time          `db:"created_at" json:"created_at"`
}

// SkinAnalysisPatch lists the mutable analysis fields. Patient, image and
// creation timestamp are immutable and deliberately absent.
type SkinAnalysisPatch struct {
	BodyPart         *string             `json:"body_part,omitempty"`
	Results          *[]analyzer.Finding `json:"results,omitempty"`
	ValidationStatus *string             `json:"validation_status,omitempty"`
	ExpertResults    *[]analyzer.Finding `json:"expert_results,omitempty"`
	FinalResults     *[]analyzer.Finding `json:"final_results,omitempty"`
	ExpertComments   *string             `json:"expert_comments,omitempty"`
	Notes            *string             `json:"notes,omitempty"`
}

func (a *SkinAnalysis) apply(p SkinAnalysisPatch) {
	if p.BodyPart != nil {
		a.BodyPart = *p.BodyPart
	}
	if p.Results != nil {
		a.Results = copyFindings(*p.Results)
	}
	if p.ValidationStatus != nil {
		a.ValidationStatus = *p.ValidationStatus
	}
	if p.ExpertResults != nil {
		a.ExpertResults = copyFindings(*p.ExpertResults)
	}
	if p.FinalResults != nil {
		a.FinalResults = copyFindings(*p.FinalResults)
	}
	if p.ExpertComments != nil {
		a.ExpertComments = clonePtr(p.ExpertComments)
	}
	if p.Notes != nil {
		a.Notes = clonePtr(p.Notes)
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func copyFindings(in []analyzer.Finding) []analyzer.Finding {
	out := make([]analyzer.Finding, len(in))
	copy(out, in)
	return out
}

// Validation is an expert's review assignment for one analysis.
type Validation struct {
	ID             int64              `db:"id" json:"id"`
	ExpertID       int64              `db:"expert_id" json:"expert_id"`
	SkinAnalysisID int64              `db:"skin_analysis_id" json:"skin_analysis_id"`
	Status         string             `db:"status" json:"status"`
	ExpertResults  []analyzer.Finding `db:"expert_results" json:"expert_results,omitempty"`
	Comments       *string            `db:"comments" json:"comments,omitempty"`
	CreatedAt      time.Time          `db:"created_at" json:"created_at"`
}

// ValidationPatch lists the mutable review fields.
type ValidationPatch struct {
	Status        *string             `json:"status,omitempty"`
	ExpertResults *[]analyzer.Finding `json:"expert_results,omitempty"`
	Comments      *string             `json:"comments,omitempty"`
}

func (v *Validation) apply(p ValidationPatch) {
	if p.Status != nil {
		v.Status = *p.Status
	}
	if p.ExpertResults != nil {
		v.ExpertResults = copyFindings(*p.ExpertResults)
	}
	if p.Comments != nil {
		v.Comments = clonePtr(p.Comments)
	}
}

// Questionnaire holds a patient's structured intake answers for one analysis.
// Answers is provider-defined JSON and is stored opaque after validation.
type Questionnaire struct {
	ID             int64           `db:"id" json:"id"`
	SkinAnalysisID int64           `db:"skin_analysis_id" json:"skin_analysis_id"`
	Answers        json.RawMessage `db:"answers" json:"answers"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// Notification is an unread-until-acknowledged review alert for an expert.
// The only permitted mutation is marking it read.
type Notification struct {
	ID             int64     `db:"id" json:"id"`
	ExpertID       int64     `db:"expert_id" json:"expert_id"`
	SkinAnalysisID int64     `db:"skin_analysis_id" json:"skin_analysis_id"`
	Message        string    `db:"message" json:"message"`
	IsRead         bool      `db:"is_read" json:"is_read"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
