package patient

import "time"

// Patient maps to the patient table. PID is the human-facing record number
// (e.g. "DRM1001") and is unique; UserID links the record to a portal login
// when the patient has one.
type Patient struct {
	ID            int64      `db:"id" json:"id"`
	PID           string     `db:"pid" json:"pid"`
	UserID        *int64     `db:"user_id" json:"user_id,omitempty"`
	Name          string     `db:"name" json:"name"`
	Age           int        `db:"age" json:"age"`
	Gender        string     `db:"gender" json:"gender"`
	Email         string     `db:"email" json:"email"`
	Phone         string     `db:"phone" json:"phone"`
	Address       *string    `db:"address" json:"address,omitempty"`
	Allergies     *string    `db:"allergies" json:"allergies,omitempty"`
	LastVisitDate *time.Time `db:"last_visit_date" json:"last_visit_date,omitempty"`
	NextVisitDate *time.Time `db:"next_visit_date" json:"next_visit_date,omitempty"`
	ProfileImage  *string    `db:"profile_image" json:"profile_image,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// PatientPatch lists the mutable patient fields. PID, user link and creation
// timestamp are immutable and deliberately absent.
type PatientPatch struct {
	Name          *string    `json:"name,omitempty"`
	Age           *int       `json:"age,omitempty"`
	Gender        *string    `json:"gender,omitempty"`
	Email         *string    `json:"email,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	Address       *string    `json:"address,omitempty"`
	Allergies     *string    `json:"allergies,omitempty"`
	LastVisitDate *time.Time `json:"last_visit_date,omitempty"`
	NextVisitDate *time.Time `json:"next_visit_date,omitempty"`
	ProfileImage  *string    `json:"profile_image,omitempty"`
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
func (p *Patient) clone() *Patient {
	cp := *p
	cp.UserID = clonePtr(p.UserID)
	cp.Address = clonePtr(p.Address)
	cp.Allergies = clonePtr(p.Allergies)
	cp.LastVisitDate = clonePtr(p.LastVisitDate)
	cp.NextVisitDate = clonePtr(p.NextVisitDate)
	cp.ProfileImage = clonePtr(p.ProfileImage)
	return &cp
}

func (p *Patient) apply(patch PatientPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Age != nil {
		p.Age = *patch.Age
	}
	if patch.Gender != nil {
		p.Gender = *patch.Gender
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.Address != nil {
		p.Address = clonePtr(patch.Address)
	}
	if patch.Allergies != nil {
		p.Allergies = clonePtr(patch.Allergies)
	}
	if patch.LastVisitDate != nil {
		p.LastVisitDate = clonePtr(patch.LastVisitDate)
	}
	if patch.NextVisitDate != nil {
		p.NextVisitDate = clonePtr(patch.NextVisitDate)
	}
	if patch.ProfileImage != nil {
		p.ProfileImage = clonePtr(patch.ProfileImage)
	}
}
