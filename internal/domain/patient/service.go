package patient

import (
	"context"
	"fmt"
)

var ErrPIDTaken = fmt.Errorf("patient record number already in use")

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

// Create registers a new patient record. The pid uniqueness check lives here
// so the in-memory and Postgres backends reject duplicates the same way; the
// database unique constraint remains as a backstop.
func (s *Service) Create(ctx context.Context, p *Patient) (*Patient, error) {
	if p.PID == "" {
		return nil, fmt.Errorf("pid is required")
	}
	if p.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if p.Age < 0 {
		return nil, fmt.Errorf("age cannot be negative")
	}

	existing, err := s.patients.GetByPID(ctx, p.PID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPIDTaken
	}

	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]*Patient, error) {
	return s.patients.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) GetByPID(ctx context.Context, pid string) (*Patient, error) {
	return s.patients.GetByPID(ctx, pid)
}

func (s *Service) Update(ctx context.Context, id int64, patch PatientPatch) (*Patient, error) {
	if patch.Age != nil && *patch.Age < 0 {
		return nil, fmt.Errorf("age cannot be negative")
	}
	return s.patients.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	return s.patients.Delete(ctx, id)
}
