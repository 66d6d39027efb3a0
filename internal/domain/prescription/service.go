package prescription

import (
	"context"
	"fmt"
	"time"
)

var (
	ErrUnknownPatient    = fmt.Errorf("patient does not exist")
	ErrUnknownMedication = fmt.Errorf("medication does not exist")
)

// PatientDirectory answers whether a patient record exists.
type PatientDirectory interface {
	PatientExists(ctx context.Context, id int64) (bool, error)
}

// MedicationCatalog answers whether a medication exists, used to validate
// every item before a prescription is written.
type MedicationCatalog interface {
	MedicationExists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	prescriptions Repository
	patients      PatientDirectory
	catalog       MedicationCatalog
}

func NewService(prescriptions Repository, patients PatientDirectory, catalog MedicationCatalog) *Service {
	return &Service{prescriptions: prescriptions, patients: patients, catalog: catalog}
}

func (s *Service) checkItems(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return fmt.Errorf("prescription needs at least one item")
	}
	for _, it := range items {
		ok, err := s.catalog.MedicationExists(ctx, it.MedicationID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: id %d", ErrUnknownMedication, it.MedicationID)
		}
	}
	return nil
}

// Write creates a prescription after checking the patient and every item's
// medication reference, so both storage backends reject dangling references
// the same way. Date defaults to today when the prescriber leaves it blank.
func (s *Service) Write(ctx context.Context, p *Prescription) (*Prescription, error) {
	if p.PatientID == 0 {
		return nil, fmt.Errorf("patient_id is required")
	}
	ok, err := s.patients.PatientExists(ctx, p.PatientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownPatient
	}
	if err := s.checkItems(ctx, p.Items); err != nil {
		return nil, err
	}
	if p.Date.IsZero() {
		p.Date = time.Now()
	}
	if err := s.prescriptions.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]*Prescription, error) {
	return s.prescriptions.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Prescription, error) {
	return s.prescriptions.GetByID(ctx, id)
}

func (s *Service) ByPatient(ctx context.Context, patientID int64) ([]*Prescription, error) {
	return s.prescriptions.ByPatient(ctx, patientID)
}

func (s *Service) Update(ctx context.Context, id int64, patch PrescriptionPatch) (*Prescription, error) {
	if patch.Items != nil {
		if err := s.checkItems(ctx, *patch.Items); err != nil {
			return nil, err
		}
	}
	return s.prescriptions.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	return s.prescriptions.Delete(ctx, id)
}
