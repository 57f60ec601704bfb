package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/schooldesk/substitute-api/internal/models"
	appErrors "github.com/schooldesk/substitute-api/pkg/errors"
)

type absenceRepository interface {
	List(ctx context.Context) ([]models.AbsentTeacher, error)
	ListByDate(ctx context.Context, date string) ([]models.AbsentTeacher, error)
	Update(ctx context.Context, fn func(entries []models.AbsentTeacher) ([]models.AbsentTeacher, error)) error
}

type assignmentPruner interface {
	Update(ctx context.Context, fn func(file models.AssignmentFile) (models.AssignmentFile, error)) error
}

type teacherScheduleReader interface {
	TeacherSchedule(ctx context.Context, name string) ([]models.TeacherPeriod, error)
}

// AbsenceService maintains the absence registry. The server-side registry is
// the single source of truth; clients only mirror it.
type AbsenceService struct {
	repo        absenceRepository
	assignments assignmentPruner
	roster      teacherRepository
	resolver    rosterResolver
	schedule    teacherScheduleReader
	logger      *zap.Logger
	now         func() time.Time
}

// NewAbsenceService constructs an AbsenceService.
func NewAbsenceService(repo absenceRepository, assignments assignmentPruner, roster teacherRepository, resolver rosterResolver, schedule teacherScheduleReader, logger *zap.Logger) *AbsenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AbsenceService{
		repo:        repo,
		assignments: assignments,
		roster:      roster,
		resolver:    resolver,
		schedule:    schedule,
		logger:      logger,
		now:         time.Now,
	}
}

// List returns the absence entries for one date, or all entries when date is
// empty.
func (s *AbsenceService) List(ctx context.Context, date string) ([]models.AbsentTeacher, error) {
	var entries []models.AbsentTeacher
	var err error
	if date == "" {
		entries, err = s.repo.List(ctx)
	} else {
		entries, err = s.repo.ListByDate(ctx, date)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read absence registry")
	}
	if entries == nil {
		entries = []models.AbsentTeacher{}
	}
	return entries, nil
}

// Count returns the total number of absence entries.
func (s *AbsenceService) Count(ctx context.Context) (int, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read absence registry")
	}
	return len(entries), nil
}

// Update marks or unmarks one teacher absent on a date. Marking is
// idempotent: at most one entry per (teacher, date) pair. Unmarking removes
// the entry and any substitute assignments made for that teacher on that
// date.
func (s *AbsenceService) Update(ctx context.Context, teacherID int, date string, isAbsent bool) error {
	teacher, err := s.roster.FindByID(ctx, teacherID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve teacher")
	}
	if teacher == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}

	if !isAbsent {
		return s.unmark(ctx, teacher, date)
	}
	return s.mark(ctx, teacher, date)
}

func (s *AbsenceService) mark(ctx context.Context, teacher *models.Teacher, date string) error {
	periods, err := s.periodsFor(ctx, teacher.Name, date)
	if err != nil {
		return err
	}
	entry := models.AbsentTeacher{
		ID:          teacher.ID,
		TeacherID:   teacher.ID,
		Name:        teacher.Name,
		PhoneNumber: teacher.Phone(),
		Date:        date,
		Timestamp:   s.now().UTC().Format(time.RFC3339),
		Periods:     periods,
	}
	err = s.repo.Update(ctx, func(entries []models.AbsentTeacher) ([]models.AbsentTeacher, error) {
		for _, e := range entries {
			if e.TeacherID == teacher.ID && e.Date == date {
				// already marked, keep the existing entry
				return entries, nil
			}
		}
		return append(entries, entry), nil
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update absence registry")
	}
	s.logger.Info("teacher marked absent", zap.Int("teacherId", teacher.ID), zap.String("date", date), zap.Int("periods", len(entry.Periods)))
	return nil
}

func (s *AbsenceService) unmark(ctx context.Context, teacher *models.Teacher, date string) error {
	err := s.repo.Update(ctx, func(entries []models.AbsentTeacher) ([]models.AbsentTeacher, error) {
		out := entries[:0]
		for _, e := range entries {
			if e.TeacherID == teacher.ID && e.Date == date {
				continue
			}
			out = append(out, e)
		}
		return out, nil
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update absence registry")
	}
	norm := models.NormalizeName(teacher.Name)
	err = s.assignments.Update(ctx, func(file models.AssignmentFile) (models.AssignmentFile, error) {
		kept := file.Assignments[:0]
		for _, a := range file.Assignments {
			if models.NormalizeName(a.OriginalTeacher) == norm && (a.Date == date || a.Date == "") {
				continue
			}
			kept = append(kept, a)
		}
		file.Assignments = kept
		return file, nil
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to prune assignments")
	}
	s.logger.Info("teacher unmarked absent", zap.Int("teacherId", teacher.ID), zap.String("date", date))
	return nil
}

// ReplaceNames replaces the registry for a date with the given name list,
// resolving or creating each teacher. Names absent from the list are
// unmarked.
func (s *AbsenceService) ReplaceNames(ctx context.Context, date string, names []string) ([]models.AbsentTeacher, error) {
	wanted := map[int]bool{}
	for _, name := range names {
		teacher, err := s.resolver.FindOrCreate(ctx, name, "", false, 0)
		if err != nil {
			return nil, err
		}
		wanted[teacher.ID] = true
		if err := s.Update(ctx, teacher.ID, date, true); err != nil {
			return nil, err
		}
	}

	current, err := s.List(ctx, date)
	if err != nil {
		return nil, err
	}
	for _, e := range current {
		if !wanted[e.TeacherID] {
			teacher, err := s.roster.FindByID(ctx, e.TeacherID)
			if err != nil || teacher == nil {
				continue
			}
			if err := s.unmark(ctx, teacher, date); err != nil {
				return nil, err
			}
		}
	}
	return s.List(ctx, date)
}

// periodsFor resolves the teacher's timetable periods for the date's
// weekday. Dates outside the school week or teachers without a schedule get
// an empty period list.
func (s *AbsenceService) periodsFor(ctx context.Context, teacherName, date string) ([]models.PeriodAssignment, error) {
	day, ok := weekdayOfDate(date)
	if !ok {
		return []models.PeriodAssignment{}, nil
	}
	slots, err := s.schedule.TeacherSchedule(ctx, teacherName)
	if err != nil {
		return nil, err
	}
	periods := []models.PeriodAssignment{}
	for i, slot := range slots {
		if slot.Day != day {
			continue
		}
		className := slot.ClassName
		if className == "" {
			className = fmt.Sprintf("Class %d", i+1)
		}
		periods = append(periods, models.PeriodAssignment{Period: slot.Period, ClassName: className})
	}
	return periods, nil
}

// weekdayOfDate parses a YYYY-MM-DD date and maps it to a school weekday.
func weekdayOfDate(date string) (models.Weekday, bool) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", false
	}
	return models.WeekdayOf(t)
}
