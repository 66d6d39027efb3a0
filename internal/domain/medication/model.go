package medication

import "time"

// Medication maps to the medication table. Price is integer cents so catalog
// math never touches floating point.
type Medication struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Category    string    `db:"category" json:"category"`
	Description string    `db:"description" json:"description"`
	DosageForm  string    `db:"dosage_form" json:"dosage_form"`
	Price       int64     `db:"price" json:"price"`
	InStock     bool      `db:"in_stock" json:"in_stock"`
	Image       *string   `db:"image" json:"image,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// MedicationPatch lists the mutable catalog fields.
type MedicationPatch struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	DosageForm  *string `json:"dosage_form,omitempty"`
	Price       *int64  `json:"price,omitempty"`
	InStock     *bool   `json:"in_stock,omitempty"`
	Image       *string `json:"image,omitempty"`
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
func (m *Medication) clone() *Medication {
	cp := *m
	cp.Image = clonePtr(m.Image)
	return &cp
}

func (m *Medication) apply(p MedicationPatch) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.DosageForm != nil {
		m.DosageForm = *p.DosageForm
	}
	if p.Price != nil {
		m.Price = *p.Price
	}
	if p.InStock != nil {
		m.InStock = *p.InStock
	}
	if p.Image != nil {
		m.Image = clonePtr(p.Image)
	}
}
