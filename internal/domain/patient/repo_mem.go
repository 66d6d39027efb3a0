package patient

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memRepo struct {
	mu       sync.RWMutex
	patients map[int64]*Patient
	nextID   int64
}

func NewMemRepo() Repository {
	return &memRepo{patients: make(map[int64]*Patient), nextID: 1}
}

func (r *memRepo) List(_ context.Context) ([]*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Patient, 0, len(r.patients))
	for _, p := range r.patients {
		out = append(out, p.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memRepo) GetByID(_ context.Context, id int64) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, nil
	}
	return p.clone(), nil
}

func (r *memRepo) GetByPID(_ context.Context, pid string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.patients {
		if p.PID == pid {
			return p.clone(), nil
		}
	}
	return nil, nil
}

func (r *memRepo) Create(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	p.CreatedAt = time.Now()
	r.patients[p.ID] = p.clone()
	return nil
}

func (r *memRepo) Update(_ context.Context, id int64, patch PatientPatch) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, nil
	}
	p.apply(patch)
	return p.clone(), nil
}

func (r *memRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[id]; !ok {
		return false, nil
	}
	delete(r.patients, id)
	return true, nil
}
