package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schooldesk/substitute-api/internal/models"
	appErrors "github.com/schooldesk/substitute-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id int) (*models.Teacher, error)
	FindByName(ctx context.Context, name string) (*models.Teacher, error)
	NextID(ctx context.Context) (int, error)
	Update(ctx context.Context, fn func(teachers []models.Teacher) ([]models.Teacher, error)) error
}

// CreateTeacherRequest holds payload for registering a teacher.
type CreateTeacherRequest struct {
	Name         string `json:"name" validate:"required"`
	PhoneNumber  string `json:"phoneNumber"`
	IsSubstitute bool   `json:"isSubstitute"`
	GradeLevel   int    `json:"gradeLevel"`
}

// RosterService manages the teacher directory, regular and substitute alike.
type RosterService struct {
	repo      teacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRosterService constructs a RosterService.
func NewRosterService(repo teacherRepository, v *validator.Validate, logger *zap.Logger) *RosterService {
	if v == nil {
		v = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{repo: repo, validator: v, logger: logger}
}

// List returns the full roster.
func (s *RosterService) List(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to access teacher roster")
	}
	if teachers == nil {
		teachers = []models.Teacher{}
	}
	return teachers, nil
}

// Substitutes returns only substitute teachers.
func (s *RosterService) Substitutes(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	subs := []models.Teacher{}
	for _, t := range teachers {
		if t.IsSubstitute {
			subs = append(subs, t)
		}
	}
	return subs, nil
}

// Get returns one teacher by ID.
func (s *RosterService) Get(ctx context.Context, id int) (*models.Teacher, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to access teacher roster")
	}
	if t == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	return t, nil
}

// Create registers a new teacher after validating the payload.
func (s *RosterService) Create(ctx context.Context, req CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	return s.FindOrCreate(ctx, req.Name, req.PhoneNumber, req.IsSubstitute, req.GradeLevel)
}

// FindOrCreate resolves a teacher by normalized name, creating the record
// when no match exists. A matched record absorbs the raw spelling as a
// variation and backfills a missing phone number.
func (s *RosterService) FindOrCreate(ctx context.Context, name, phone string, isSubstitute bool, gradeLevel int) (*models.Teacher, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher name is required")
	}

	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to access teacher roster")
	}
	if existing != nil {
		updated := *existing
		changed := false
		if models.NormalizeName(existing.Name) != models.NormalizeName(name) && !hasVariation(existing.Variations, name) {
			updated.Variations = append(updated.Variations, name)
			changed = true
		}
		if phone != "" && existing.Phone() == "" {
			p := phone
			updated.PhoneNumber = &p
			changed = true
		}
		if changed {
			if err := s.repo.Update(ctx, func(teachers []models.Teacher) ([]models.Teacher, error) {
				for i := range teachers {
					if teachers[i].ID == updated.ID {
						teachers[i] = updated
					}
				}
				return teachers, nil
			}); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to access teacher roster")
			}
		}
		return &updated, nil
	}

	id, err := s.repo.NextID(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate teacher id")
	}
	t := models.Teacher{
		ID:           id,
		Name:         models.DisplayName(name),
		IsSubstitute: isSubstitute,
		GradeLevel:   gradeLevel,
	}
	if phone != "" {
		p := phone
		t.PhoneNumber = &p
	}
	if err := s.repo.Update(ctx, func(teachers []models.Teacher) ([]models.Teacher, error) {
		return append(teachers, t), nil
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save teacher")
	}
	s.logger.Info("teacher registered", zap.Int("id", t.ID), zap.String("name", t.Name), zap.Bool("substitute", t.IsSubstitute))
	return &t, nil
}

// ImportSubstitutes ingests substitute CSV rows of the form name,phone.
// Rows already in the roster update their phone number instead of
// duplicating.
func (s *RosterService) ImportSubstitutes(ctx context.Context, rows [][]string) (int, error) {
	imported := 0
	for _, row := range rows {
		if len(row) < 1 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" || strings.EqualFold(name, "name") {
			continue
		}
		phone := ""
		if len(row) > 1 {
			phone = strings.TrimSpace(row[1])
		}
		if _, err := s.FindOrCreate(ctx, name, phone, true, 0); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func hasVariation(variations []string, name string) bool {
	norm := models.NormalizeName(name)
	for _, v := range variations {
		if models.NormalizeName(v) == norm {
			return true
		}
	}
	return false
}
