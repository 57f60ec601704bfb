package repository

import (
	"context"
	"sync"

	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/internal/store"
)

const absentTeachersFile = "absent_teachers.json"

// AbsenceRepository persists the absence registry blob.
type AbsenceRepository struct {
	mu    sync.Mutex
	store *store.Store
}

// NewAbsenceRepository constructs an AbsenceRepository.
func NewAbsenceRepository(st *store.Store) *AbsenceRepository {
	return &AbsenceRepository{store: st}
}

// List returns all absence entries across all dates.
func (r *AbsenceRepository) List(ctx context.Context) ([]models.AbsentTeacher, error) {
	var entries []models.AbsentTeacher
	if _, err := r.store.LoadJSON(absentTeachersFile, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByDate returns the entries for one date.
func (r *AbsenceRepository) ListByDate(ctx context.Context, date string) ([]models.AbsentTeacher, error) {
	entries, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.AbsentTeacher
	for _, e := range entries {
		if e.Date == date {
			out = append(out, e)
		}
	}
	return out, nil
}

// SaveAll replaces the registry.
func (r *AbsenceRepository) SaveAll(ctx context.Context, entries []models.AbsentTeacher) error {
	if entries == nil {
		entries = []models.AbsentTeacher{}
	}
	return r.store.SaveJSON(absentTeachersFile, entries)
}

// Update applies fn to the registry under one read-modify-write cycle.
func (r *AbsenceRepository) Update(ctx context.Context, fn func(entries []models.AbsentTeacher) ([]models.AbsentTeacher, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var entries []models.AbsentTeacher
	if _, err := r.store.LoadJSON(absentTeachersFile, &entries); err != nil {
		return err
	}
	out, err := fn(entries)
	if err != nil {
		return err
	}
	if out == nil {
		out = []models.AbsentTeacher{}
	}
	return r.store.SaveJSON(absentTeachersFile, out)
}
