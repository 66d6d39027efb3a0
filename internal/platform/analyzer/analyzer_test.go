package analyzer

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestAnalyzeDeterministic(t *testing.T) {
	a := NewSimulated(zerolog.Nop())
	ctx := context.Background()

	first, err := a.Analyze(ctx, "uploads/img-1.jpg", "forearm")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	second, err := a.Analyze(ctx, "uploads/img-1.jpg", "forearm")
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != 3 {
		t.Fatalf("got %d findings, want 3", len(first))
	}
	for i := range first {
		if first[i].Condition != second[i].Condition || first[i].Confidence != second[i].Confidence {
			t.Errorf("finding %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestAnalyzeConfidenceBounds(t *testing.T) {
	a := NewSimulated(zerolog.Nop())
	findings, err := a.Analyze(context.Background(), "uploads/img-2.png", "scalp")
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range findings {
		if f.Confidence < 0 || f.Confidence > 1 {
			t.Errorf("confidence %f out of [0,1] for %s", f.Confidence, f.Condition)
		}
		if f.Severity == "" {
			t.Errorf("no severity for %s", f.Condition)
		}
		if len(f.Recommendations) == 0 {
			t.Errorf("no recommendations for %s", f.Condition)
		}
	}
	for i := 1; i < len(findings); i++ {
		if findings[i].Confidence > findings[i-1].Confidence {
			t.Error("findings not sorted by descending confidence")
		}
	}
}

func TestAnalyzeRequiresImageRef(t *testing.T) {
	a := NewSimulated(zerolog.Nop())
	if _, err := a.Analyze(context.Background(), "", "arm"); err == nil {
		t.Error("expected error for empty image reference")
	}
}

func TestSeverityForMalignantClasses(t *testing.T) {
	if got := severityFor("Melanoma", 0.1); got != "high" {
		t.Errorf("Melanoma severity = %q, want high", got)
	}
	if got := severityFor("Basal Cell Carcinoma", 0.2); got != "high" {
		t.Errorf("BCC severity = %q, want high", got)
	}
	if got := severityFor("Rosacea", 0.9); got != "moderate" {
		t.Errorf("Rosacea@0.9 severity = %q, want moderate", got)
	}
	if got := severityFor("Acne Vulgaris", 0.3); got != "low" {
		t.Errorf("Acne@0.3 severity = %q, want low", got)
	}
}
