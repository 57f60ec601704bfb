package repository

import (
	"context"
	"sync"

	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/internal/store"
)

const (
	assignedTeacherFile    = "assigned_teacher.json"
	substituteWarningsFile = "substitute_warnings.json"
)

// AssignmentRepository persists substitute assignments and the per-date
// warnings produced by the auto-assign run.
type AssignmentRepository struct {
	mu    sync.Mutex
	store *store.Store
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(st *store.Store) *AssignmentRepository {
	return &AssignmentRepository{store: st}
}

// Load returns the current assignment file, empty when none exists.
func (r *AssignmentRepository) Load(ctx context.Context) (models.AssignmentFile, error) {
	var file models.AssignmentFile
	if _, err := r.store.LoadJSON(assignedTeacherFile, &file); err != nil {
		return models.AssignmentFile{}, err
	}
	if file.Assignments == nil {
		file.Assignments = []models.SubstituteAssignment{}
	}
	return file, nil
}

// Save replaces the assignment file.
func (r *AssignmentRepository) Save(ctx context.Context, file models.AssignmentFile) error {
	if file.Assignments == nil {
		file.Assignments = []models.SubstituteAssignment{}
	}
	return r.store.SaveJSON(assignedTeacherFile, file)
}

// Update applies fn to the assignment file under one read-modify-write cycle.
func (r *AssignmentRepository) Update(ctx context.Context, fn func(file models.AssignmentFile) (models.AssignmentFile, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	file, err := r.Load(ctx)
	if err != nil {
		return err
	}
	out, err := fn(file)
	if err != nil {
		return err
	}
	return r.Save(ctx, out)
}

// Warnings returns the stored per-date warning lists.
func (r *AssignmentRepository) Warnings(ctx context.Context) (map[string][]string, error) {
	out := map[string][]string{}
	if _, err := r.store.LoadJSON(substituteWarningsFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveWarnings replaces the warning list for one date.
func (r *AssignmentRepository) SaveWarnings(ctx context.Context, date string, warnings []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := map[string][]string{}
	if _, err := r.store.LoadJSON(substituteWarningsFile, &all); err != nil {
		return err
	}
	if warnings == nil {
		warnings = []string{}
	}
	all[date] = warnings
	return r.store.SaveJSON(substituteWarningsFile, all)
}
