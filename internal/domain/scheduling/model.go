package scheduling

import "time"

// Appointment statuses. Any value may follow any other; staff move records
// freely between states without a transition machine.
const (
	StatusPending   = "Pending"
	StatusConfirmed = "Confirmed"
	StatusCheckedIn = "Checked In"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

// ValidStatuses is the set of accepted appointment states.
var ValidStatuses = map[string]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusCheckedIn: true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// Appointment maps to the appointment table. Date carries the calendar day of
// the visit; TimeOfDay is the display slot (e.g. "14:30") and is kept as text
// because slots are clinic-local and never computed with.
type Appointment struct {
	ID         int64     `db:"id" json:"id"`
	PatientID  int64     `db:"patient_id" json:"patient_id"`
	HospitalID *int64    `db:"hospital_id" json:"hospital_id,omitempty"`
	DoctorID   int64     `db:"doctor_id" json:"doctor_id"`
	Date       time.Time `db:"date" json:"date"`
	TimeOfDay  string    `db:"time_of_day" json:"time"`
	Duration   string    `db:"duration" json:"duration"`
	Type       string    `db:"type" json:"type"`
	Status     string    `db:"status" json:"status"`
	Notes      *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AppointmentPatch lists the mutable appointment fields. Patient and creation
// timestamp are immutable and deliberately absent.
type AppointmentPatch struct {
	HospitalID *int64     `json:"hospital_id,omitempty"`
	DoctorID   *int64     `json:"doctor_id,omitempty"`
	Date       *time.Time `json:"date,omitempty"`
	TimeOfDay  *string    `json:"time,omitempty"`
	Duration   *string    `json:"duration,omitempty"`
	Type       *string    `json:"type,omitempty"`
	Status     *string    `json:"status,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// clone copies the record including pointer-field targets so callers never
// share memory with the store.
func (a *Appointment) clone() *Appointment {
	cp := *a
	cp.HospitalID = clonePtr(a.HospitalID)
	cp.Notes = clonePtr(a.Notes)
	return &cp
}

func (a *Appointment) apply(p AppointmentPatch) {
	if p.HospitalID != nil {
		a.HospitalID = clonePtr(p.HospitalID)
	}
	if p.DoctorID != nil {
		a.DoctorID = *p.DoctorID
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.TimeOfDay != nil {
		a.TimeOfDay = *p.TimeOfDay
	}
	if p.Duration != nil {
		a.Duration = *p.Duration
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Notes != nil {
		a.Notes = clonePtr(p.Notes)
	}
}

// sameDay reports whether two instants fall on the same UTC calendar date.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
