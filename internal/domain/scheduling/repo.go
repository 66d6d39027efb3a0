package scheduling

import (
	"context"
	"time"
)

// Repository is the appointment store. Lookups return (nil, nil) when no
// record matches; filter queries return empty slices, never errors, for
// unknown foreign keys. Delete reports whether a record was actually removed.
type Repository interface {
	List(ctx context.Context) ([]*Appointment, error)
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	ByPatient(ctx context.Context, patientID int64) ([]*Appointment, error)
	ByDate(ctx context.Context, day time.Time) ([]*Appointment, error)
	Create(ctx context.Context, a *Appointment) error
	Update(ctx context.Context, id int64, patch AppointmentPatch) (*Appointment, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
