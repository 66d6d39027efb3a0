package scheduling

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memRepo struct {
	mu           sync.RWMutex
	appointments map[int64]*Appointment
	nextID       int64
}

func NewMemRepo() Repository {
	return &memRepo{appointments: make(map[int64]*Appointment), nextID: 1}
}

func byDateDesc(out []*Appointment) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
}

func (r *memRepo) List(_ context.Context) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Appointment, 0, len(r.appointments))
	for _, a := range r.appointments {
		out = append(out, a.clone())
	}
	byDateDesc(out)
	return out, nil
}

func (r *memRepo) GetByID(_ context.Context, id int64) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, nil
	}
	return a.clone(), nil
}

func (r *memRepo) ByPatient(_ context.Context, patientID int64) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Appointment, 0)
	for _, a := range r.appointments {
		if a.PatientID == patientID {
			out = append(out, a.clone())
		}
	}
	byDateDesc(out)
	return out, nil
}

func (r *memRepo) ByDate(_ context.Context, day time.Time) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Appointment, 0)
	for _, a := range r.appointments {
		if sameDay(a.Date, day) {
			out = append(out, a.clone())
		}
	}
	byDateDesc(out)
	return out, nil
}

func (r *memRepo) Create(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.nextID
	r.nextID++
	a.CreatedAt = time.Now()
	r.appointments[a.ID] = a.clone()
	return nil
}

func (r *memRepo) Update(_ context.Context, id int64, patch AppointmentPatch) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, nil
	}
	a.apply(patch)
	return a.clone(), nil
}

func (r *memRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[id]; !ok {
		return false, nil
	}
	delete(r.appointments, id)
	return true, nil
}
