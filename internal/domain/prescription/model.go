package prescription

import "time"

// Item is one line on a prescription. Order matters; the list is stored and
// returned in the order the prescriber wrote it.
type Item struct {
	MedicationID int64  `db:"medication_id" json:"medication_id"`
	Dosage       string `db:"dosage" json:"dosage"`
	Instructions string `db:"instructions" json:"instructions"`
}

// Prescription maps to the prescription table plus its ordered items.
type Prescription struct {
	ID        int64     `db:"id" json:"id"`
	PatientID int64     `db:"patient_id" json:"patient_id"`
	Date      time.Time `db:"date" json:"date"`
	Items     []Item    `json:"items"`
	Remarks   *string   `db:"remarks" json:"remarks,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PrescriptionPatch lists the mutable fields. A non-nil Items replaces the
// whole ordered list; patient and creation timestamp are immutable.
type PrescriptionPatch struct {
	Date    *time.Time `json:"date,omitempty"`
	Items   *[]Item    `json:"items,omitempty"`
	Remarks *string    `json:"remarks,omitempty"`
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func (p *Prescription) apply(patch PrescriptionPatch) {
	if patch.Date != nil {
		p.Date = *patch.Date
	}
	if patch.Items != nil {
		items := make([]Item, len(*patch.Items))
		copy(items, *patch.Items)
		p.Items = items
	}
	if patch.Remarks != nil {
		p.Remarks = clonePtr(patch.Remarks)
	}
}
