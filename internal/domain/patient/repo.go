package patient

import "context"

// Repository is the patient store. Lookups return (nil, nil) when no record
// matches; Delete reports whether a record was actually removed.
type Repository interface {
	List(ctx context.Context) ([]*Patient, error)
	GetByID(ctx context.Context, id int64) (*Patient, error)
	GetByPID(ctx context.Context, pid string) (*Patient, error)
	Create(ctx context.Context, p *Patient) error
	Update(ctx context.Context, id int64, patch PatientPatch) (*Patient, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
