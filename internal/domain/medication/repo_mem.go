package medication

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memRepo struct {
	mu          sync.RWMutex
	medications map[int64]*Medication
	nextID      int64
}

func NewMemRepo() Repository {
	return &memRepo{medications: make(map[int64]*Medication), nextID: 1}
}

func (r *memRepo) List(_ context.Context) ([]*Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Medication, 0, len(r.medications))
	for _, m := range r.medications {
		out = append(out, m.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memRepo) GetByID(_ context.Context, id int64) (*Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.medications[id]
	if !ok {
		return nil, nil
	}
	return m.clone(), nil
}

func (r *memRepo) ByCategory(_ context.Context, category string) ([]*Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Medication, 0)
	for _, m := range r.medications {
		if m.Category == category {
			out = append(out, m.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memRepo) Create(_ context.Context, m *Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = r.nextID
	r.nextID++
	m.CreatedAt = time.Now()
	r.medications[m.ID] = m.clone()
	return nil
}

func (r *memRepo) Update(_ context.Context, id int64, patch MedicationPatch) (*Medication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.medications[id]
	if !ok {
		return nil, nil
	}
	m.apply(patch)
	return m.clone(), nil
}

func (r *memRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.medications[id]; !ok {
		return false, nil
	}
	delete(r.medications, id)
	return true, nil
}
