package medication

import (
	"context"
	"fmt"
)

type Service struct {
	catalog Repository
}

func NewService(catalog Repository) *Service {
	return &Service{catalog: catalog}
}

func (s *Service) Create(ctx context.Context, m *Medication) (*Medication, error) {
	if m.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if m.Price < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}
	if err := s.catalog.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) List(ctx context.Context) ([]*Medication, error) {
	return s.catalog.List(ctx)
}

func (s *Service) ByCategory(ctx context.Context, category string) ([]*Medication, error) {
	return s.catalog.ByCategory(ctx, category)
}

func (s *Service) Get(ctx context.Context, id int64) (*Medication, error) {
	return s.catalog.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, patch MedicationPatch) (*Medication, error) {
	if patch.Price != nil && *patch.Price < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}
	return s.catalog.Update(ctx, id, patch)
}

// Restock flips stock availability without touching the rest of the record.
func (s *Service) Restock(ctx context.Context, id int64, inStock bool) (*Medication, error) {
	return s.catalog.Update(ctx, id, MedicationPatch{InStock: &inStock})
}

func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	return s.catalog.Delete(ctx, id)
}

// Exists is the reference check prescriptions use when validating items.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	m, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return m != nil, nil
}
