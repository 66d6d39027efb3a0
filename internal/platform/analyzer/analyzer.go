// Package analyzer scores uploaded skin images against the clinic's known
// condition classes. The default implementation is deterministic: it derives
// a stable pseudo-score from the image reference so repeated analyses of the
// same upload agree, standing in for the external CNN service whose output it
// mirrors. Results are persisted verbatim by the analysis domain.
package analyzer

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/rs/zerolog"
)

// Finding is a single scored condition for an analyzed image.
type Finding struct {
	Condition       string   `json:"condition"`
	Confidence      float64  `json:"confidence"`
	Severity        string   `json:"severity"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
	Causes          []string `json:"causes,omitempty"`
}

// Analyzer produces findings for an uploaded image.
type Analyzer interface {
	Analyze(ctx context.Context, imageRef, bodyPart string) ([]Finding, error)
}

// Conditions lists the dermatology classes the model distinguishes.
var Conditions = []string{
	"Acne Vulgaris",
	"Atopic Dermatitis",
	"Psoriasis",
	"Seborrheic Dermatitis",
	"Contact Dermatitis",
	"Melanoma",
	"Basal Cell Carcinoma",
	"Rosacea",
}

var treatments = map[string][]string{
	"Acne Vulgaris": {
		"Topical retinoids (tretinoin, adapalene)",
		"Benzoyl peroxide",
		"Antibiotic therapy if severe",
		"Gentle cleansing routine",
	},
	"Atopic Dermatitis": {
		"Moisturizers and emollients",
		"Topical corticosteroids",
		"Calcineurin inhibitors",
		"Avoid known triggers",
	},
	"Psoriasis": {
		"Topical corticosteroids",
		"Vitamin D analogues",
		"Phototherapy",
		"Systemic therapy for severe cases",
	},
	"Seborrheic Dermatitis": {
		"Antifungal shampoos/topicals",
		"Topical corticosteroids",
		"Calcineurin inhibitors",
		"Gentle skincare routine",
	},
	"Contact Dermatitis": {
		"Identify and avoid allergens",
		"Topical corticosteroids",
		"Cool compresses",
		"Antihistamines for itching",
	},
	"Melanoma": {
		"URGENT: Immediate dermatologist consultation",
		"Surgical excision",
		"Biopsy confirmation required",
		"Regular skin monitoring",
	},
	"Basal Cell Carcinoma": {
		"Dermatologist consultation required",
		"Surgical removal options",
		"Mohs surgery consideration",
		"Regular follow-up",
	},
	"Rosacea": {
		"Topical metronidazole",
		"Avoid triggers (sun, spicy foods)",
		"Gentle skincare products",
		"Oral antibiotics if severe",
	},
}

var causes = map[string][]string{
	"Acne Vulgaris":         {"Hormonal changes", "Excess sebum production", "Bacterial growth"},
	"Atopic Dermatitis":     {"Genetic predisposition", "Immune system dysfunction", "Environmental triggers"},
	"Psoriasis":             {"Autoimmune condition", "Genetic factors", "Stress"},
	"Seborrheic Dermatitis": {"Malassezia yeast overgrowth", "Oily skin", "Cold, dry weather"},
	"Contact Dermatitis":    {"Allergen exposure", "Irritant contact", "Occupational exposure"},
	"Melanoma":              {"UV radiation exposure", "Genetic mutations", "Fair skin and sun sensitivity"},
	"Basal Cell Carcinoma":  {"Chronic sun exposure", "Fair skin", "Advanced age"},
	"Rosacea":               {"Vascular abnormalities", "Demodex mites", "Sun exposure and heat"},
}

// severityFor maps a condition and its score to a clinical severity band.
// Malignant classes are always flagged high regardless of confidence.
func severityFor(condition string, confidence float64) string {
	switch condition {
	case "Melanoma", "Basal Cell Carcinoma":
		return "high"
	}
	switch {
	case confidence >= 0.75:
		return "moderate"
	default:
		return "low"
	}
}

// Simulated is the deterministic stand-in analyzer.
type Simulated struct {
	logger zerolog.Logger
	// topN is how many findings to return per analysis.
	topN int
}

func NewSimulated(logger zerolog.Logger) *Simulated {
	return &Simulated{logger: logger, topN: 3}
}

// Analyze derives stable per-condition scores from the image reference and
// body part, normalizes them, and returns the top findings in descending
// confidence order. Confidence is always within [0,1].
func (a *Simulated) Analyze(ctx context.Context, imageRef, bodyPart string) ([]Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if imageRef == "" {
		return nil, fmt.Errorf("image reference is required")
	}

	scores := make([]float64, len(Conditions))
	var total float64
	for i, cond := range Conditions {
		h := fnv.New64a()
		h.Write([]byte(imageRef))
		h.Write([]byte(bodyPart))
		h.Write([]byte(cond))
		scores[i] = float64(h.Sum64()%1000) + 1
		total += scores[i]
	}

	findings := make([]Finding, len(Conditions))
	for i, cond := range Conditions {
		conf := scores[i] / total
		findings[i] = Finding{
			Condition:       cond,
			Confidence:      conf,
			Severity:        severityFor(cond, conf),
			Recommendations: treatments[cond],
			Causes:          causes[cond],
		}
	}

	sort.Slice(findings, func(i, j int) bool { return findings[i].Confidence > findings[j].Confidence })
	findings = findings[:a.topN]
	for i := range findings {
		findings[i].Description = fmt.Sprintf(
			"AI-powered analysis indicates %s with %.1f%% confidence using our specialized dermatology model.",
			findings[i].Condition, findings[i].Confidence*100)
	}

	a.logger.Debug().
		Str("image", imageRef).
		Str("body_part", bodyPart).
		Str("top_condition", findings[0].Condition).
		Float64("confidence", findings[0].Confidence).
		Msg("image analyzed")

	return findings, nil
}
