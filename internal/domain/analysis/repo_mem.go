package analysis

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memRepo struct {
	mu       sync.RWMutex
	analyses map[int64]*SkinAnalysis
	nextID   int64
}

func NewMemRepo() Repository {
	return &memRepo{analyses: make(map[int64]*SkinAnalysis), nextID: 1}
}

func cloneAnalysis(a *SkinAnalysis) *SkinAnalysis {
	cp := *a
	cp.Results = copyFindings(a.Results)
	cp.ExpertResults = copyFindings(a.ExpertResults)
	cp.FinalResults = copyFindings(a.FinalResults)
	cp.ExpertComments = clonePtr(a.ExpertComments)
	cp.Notes = clonePtr(a.Notes)
	return &cp
}

func analysesByDateDesc(out []*SkinAnalysis) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
}

func (r *memRepo) List(_ context.Context) ([]*SkinAnalysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*SkinAnalysis, 0, len(r.analyses))
	for _, a := range r.analyses {
		out = append(out, cloneAnalysis(a))
	}
	analysesByDateDesc(out)
	return out, nil
}

func (r *memRepo) GetByID(_ context.Context, id int64) (*SkinAnalysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.analyses[id]
	if !ok {
		return nil, nil
	}
	return cloneAnalysis(a), nil
}

func (r *memRepo) ByPatient(_ context.Context, patientID int64) ([]*SkinAnalysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*SkinAnalysis, 0)
	for _, a := range r.analyses {
		if a.PatientID == patientID {
			out = append(out, cloneAnalysis(a))
		}
	}
	analysesByDateDesc(out)
	return out, nil
}

func (r *memRepo) ByStatus(_ context.Context, status string) ([]*SkinAnalysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*SkinAnalysis, 0)
	for _, a := range r.analyses {
		if a.ValidationStatus == status {
			out = append(out, cloneAnalysis(a))
		}
	}
	analysesByDateDesc(out)
	return out, nil
}

func (r *memRepo) Create(_ context.Context, a *SkinAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.nextID
	r.nextID++
	a.CreatedAt = time.Now()
	r.analyses[a.ID] = cloneAnalysis(a)
	return nil
}

func (r *memRepo) Update(_ context.Context, id int64, patch SkinAnalysisPatch) (*SkinAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[id]
	if !ok {
		return nil, nil
	}
	a.apply(patch)
	return cloneAnalysis(a), nil
}

func (r *memRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.analyses[id]; !ok {
		return false, nil
	}
	delete(r.analyses, id)
	return true, nil
}

type memValidationRepo struct {
	mu          sync.RWMutex
	validations map[int64]*Validation
	nextID      int64
}

func NewMemValidationRepo() ValidationRepository {
	return &memValidationRepo{validations: make(map[int64]*Validation), nextID: 1}
}

func cloneValidation(v *Validation) *Validation {
	cp := *v
	cp.ExpertResults = copyFindings(v.ExpertResults)
	cp.Comments = clonePtr(v.Comments)
	return &cp
}

func (r *memValidationRepo) GetByID(_ context.Context, id int64) (*Validation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.validations[id]
	if !ok {
		return nil, nil
	}
	return cloneValidation(v), nil
}

func (r *memValidationRepo) ByExpert(_ context.Context, expertID int64) ([]*Validation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Validation, 0)
	for _, v := range r.validations {
		if v.ExpertID == expertID {
			out = append(out, cloneValidation(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memValidationRepo) ByAnalysis(_ context.Context, analysisID int64) ([]*Validation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Validation, 0)
	for _, v := range r.validations {
		if v.SkinAnalysisID == analysisID {
			out = append(out, cloneValidation(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memValidationRepo) Create(_ context.Context, v *Validation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v.ID = r.nextID
	r.nextID++
	v.CreatedAt = time.Now()
	r.validations[v.ID] = cloneValidation(v)
	return nil
}

func (r *memValidationRepo) Update(_ context.Context, id int64, patch ValidationPatch) (*Validation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.validations[id]
	if !ok {
		return nil, nil
	}
	v.apply(patch)
	return cloneValidation(v), nil
}

type memQuestionnaireRepo struct {
	mu             sync.RWMutex
	questionnaires map[int64]*Questionnaire
	nextID         int64
}

func NewMemQuestionnaireRepo() QuestionnaireRepository {
	return &memQuestionnaireRepo{questionnaires: make(map[int64]*Questionnaire), nextID: 1}
}

func (r *memQuestionnaireRepo) GetByAnalysis(_ context.Context, analysisID int64) (*Questionnaire, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, q := range r.questionnaires {
		if q.SkinAnalysisID == analysisID {
			cp := *q
			cp.Answers = append([]byte(nil), q.Answers...)
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memQuestionnaireRepo) Create(_ context.Context, q *Questionnaire) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q.ID = r.nextID
	r.nextID++
	q.CreatedAt = time.Now()
	cp := *q
	cp.Answers = append([]byte(nil), q.Answers...)
	r.questionnaires[q.ID] = &cp
	return nil
}

type memNotificationRepo struct {
	mu            sync.RWMutex
	notifications map[int64]*Notification
	nextID        int64
}

func NewMemNotificationRepo() NotificationRepository {
	return &memNotificationRepo{notifications: make(map[int64]*Notification), nextID: 1}
}

func (r *memNotificationRepo) ByExpert(_ context.Context, expertID int64, unreadOnly bool) ([]*Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Notification, 0)
	for _, n := range r.notifications {
		if n.ExpertID != expertID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memNotificationRepo) Create(_ context.Context, n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = r.nextID
	r.nextID++
	n.CreatedAt = time.Now()
	cp := *n
	r.notifications[n.ID] = &cp
	return nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, id int64) (*Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return nil, nil
	}
	n.IsRead = true
	cp := *n
	return &cp, nil
}
