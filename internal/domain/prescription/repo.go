package prescription

import "context"

// Repository is the prescription store. Lookups return (nil, nil) when no
// record matches; ByPatient returns an empty slice for unknown patient ids.
// Delete reports whether a record was actually removed.
type Repository interface {
	List(ctx context.Context) ([]*Prescription, error)
	GetByID(ctx context.Context, id int64) (*Prescription, error)
	ByPatient(ctx context.Context, patientID int64) ([]*Prescription, error)
	Create(ctx context.Context, p *Prescription) error
	Update(ctx context.Context, id int64, patch PrescriptionPatch) (*Prescription, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
