package repository

import (
	"context"
	"sync"

	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/internal/store"
)

const (
	teachersFile  = "teachers.json"
	currentIDFile = "currentId.json"
)

type idCounter struct {
	CurrentID int `json:"currentId"`
}

// TeacherRepository manages the teacher roster blob and its ID sequence.
type TeacherRepository struct {
	mu    sync.Mutex
	store *store.Store
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(st *store.Store) *TeacherRepository {
	return &TeacherRepository{store: st}
}

// List returns all teachers, substitutes included.
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	var teachers []models.Teacher
	if _, err := r.store.LoadJSON(teachersFile, &teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}

// FindByID returns the teacher with the given ID, or nil when absent.
func (r *TeacherRepository) FindByID(ctx context.Context, id int) (*models.Teacher, error) {
	teachers, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range teachers {
		if teachers[i].ID == id {
			return &teachers[i], nil
		}
	}
	return nil, nil
}

// FindByName matches on normalized name, then on recorded variations.
func (r *TeacherRepository) FindByName(ctx context.Context, name string) (*models.Teacher, error) {
	teachers, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	norm := models.NormalizeName(name)
	for i := range teachers {
		if models.NormalizeName(teachers[i].Name) == norm {
			return &teachers[i], nil
		}
	}
	for i := range teachers {
		for _, v := range teachers[i].Variations {
			if models.NormalizeName(v) == norm {
				return &teachers[i], nil
			}
		}
	}
	return nil, nil
}

// NextID advances and persists the shared ID sequence.
func (r *TeacherRepository) NextID(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var counter idCounter
	if _, err := r.store.LoadJSON(currentIDFile, &counter); err != nil {
		return 0, err
	}
	counter.CurrentID++
	if err := r.store.SaveJSON(currentIDFile, counter); err != nil {
		return 0, err
	}
	return counter.CurrentID, nil
}

// SaveAll replaces the full roster.
func (r *TeacherRepository) SaveAll(ctx context.Context, teachers []models.Teacher) error {
	if teachers == nil {
		teachers = []models.Teacher{}
	}
	return r.store.SaveJSON(teachersFile, teachers)
}

// Update applies fn to the current roster under a single read-modify-write
// cycle and persists the result.
func (r *TeacherRepository) Update(ctx context.Context, fn func(teachers []models.Teacher) ([]models.Teacher, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var teachers []models.Teacher
	if _, err := r.store.LoadJSON(teachersFile, &teachers); err != nil {
		return err
	}
	out, err := fn(teachers)
	if err != nil {
		return err
	}
	if out == nil {
		out = []models.Teacher{}
	}
	return r.store.SaveJSON(teachersFile, out)
}
