package prescription

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memRepo struct {
	mu            sync.RWMutex
	prescriptions map[int64]*Prescription
	nextID        int64
}

func NewMemRepo() Repository {
	return &memRepo{prescriptions: make(map[int64]*Prescription), nextID: 1}
}

// clone copies the record including its item slice and pointer-field targets
// so callers never share memory with the store.
func clone(p *Prescription) *Prescription {
	cp := *p
	cp.Items = make([]Item, len(p.Items))
	copy(cp.Items, p.Items)
	cp.Remarks = clonePtr(p.Remarks)
	return &cp
}

func byDateDesc(out []*Prescription) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
}

func (r *memRepo) List(_ context.Context) ([]*Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Prescription, 0, len(r.prescriptions))
	for _, p := range r.prescriptions {
		out = append(out, clone(p))
	}
	byDateDesc(out)
	return out, nil
}

func (r *memRepo) GetByID(_ context.Context, id int64) (*Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.prescriptions[id]
	if !ok {
		return nil, nil
	}
	return clone(p), nil
}

func (r *memRepo) ByPatient(_ context.Context, patientID int64) ([]*Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Prescription, 0)
	for _, p := range r.prescriptions {
		if p.PatientID == patientID {
			out = append(out, clone(p))
		}
	}
	byDateDesc(out)
	return out, nil
}

func (r *memRepo) Create(_ context.Context, p *Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	p.CreatedAt = time.Now()
	r.prescriptions[p.ID] = clone(p)
	return nil
}

func (r *memRepo) Update(_ context.Context, id int64, patch PrescriptionPatch) (*Prescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prescriptions[id]
	if !ok {
		return nil, nil
	}
	p.apply(patch)
	return clone(p), nil
}

func (r *memRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prescriptions[id]; !ok {
		return false, nil
	}
	delete(r.prescriptions, id)
	return true, nil
}
