package main

import (
	"context"

	"github.com/dermaclinic/dermaclinic/internal/domain/analysis"
	"github.com/dermaclinic/dermaclinic/internal/domain/identity"
	"github.com/dermaclinic/dermaclinic/internal/domain/medication"
	"github.com/dermaclinic/dermaclinic/internal/domain/patient"
)

// The domain packages declare thin interfaces for the slices of other
// domains they need. These adapters connect the services to them so the
// packages never import each other directly.

type patientDirectory struct {
	svc *patient.Service
}

func (d patientDirectory) PatientExists(ctx context.Context, id int64) (bool, error) {
	p, err := d.svc.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return p != nil, nil
}

func (d patientDirectory) PatientEmail(ctx context.Context, id int64) (string, error) {
	p, err := d.svc.Get(ctx, id)
	if err != nil || p == nil {
		return "", err
	}
	return p.Email, nil
}

type medicationCatalog struct {
	svc *medication.Service
}

func (d medicationCatalog) MedicationExists(ctx context.Context, id int64) (bool, error) {
	return d.svc.Exists(ctx, id)
}

type expertDirectory struct {
	svc *identity.Service
}

func (d expertDirectory) IsExpert(ctx context.Context, id int64) (bool, error) {
	u, err := d.svc.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return u != nil && u.Active && u.Role == identity.RoleExpert, nil
}

func (d expertDirectory) ActiveExperts(ctx context.Context) ([]analysis.ExpertRef, error) {
	experts, err := d.svc.ListExperts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]analysis.ExpertRef, 0, len(experts))
	for _, e := range experts {
		// Usernames double as contact addresses for the log-only sender.
		out = append(out, analysis.ExpertRef{ID: e.ID, Name: e.Name, Email: e.Username})
	}
	return out, nil
}
