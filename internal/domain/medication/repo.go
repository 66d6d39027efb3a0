package medication

import "context"

// Repository is the medication catalog store. Lookups return (nil, nil) when
// no record matches; Delete reports whether a record was actually removed.
type Repository interface {
	List(ctx context.Context) ([]*Medication, error)
	GetByID(ctx context.Context, id int64) (*Medication, error)
	ByCategory(ctx context.Context, category string) ([]*Medication, error)
	Create(ctx context.Context, m *Medication) error
	Update(ctx context.Context, id int64, patch MedicationPatch) (*Medication, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
