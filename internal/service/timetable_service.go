package service

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/internal/store"
	"github.com/schooldesk/substitute-api/pkg/cache"
	appErrors "github.com/schooldesk/substitute-api/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context) ([]models.ScheduleEntry, error)
	SaveAll(ctx context.Context, entries []models.ScheduleEntry) error
	TeacherSchedules(ctx context.Context) (models.TeacherSchedules, error)
	DaySchedules(ctx context.Context) (models.DaySchedules, error)
	PeriodSchedules(ctx context.Context) (models.PeriodSchedules, error)
	ClassSchedules(ctx context.Context) (models.ClassSchedules, error)
	SaveIndexes(ctx context.Context, ts models.TeacherSchedules, ds models.DaySchedules, ps models.PeriodSchedules, cs models.ClassSchedules) error
}

type periodRepository interface {
	Load(ctx context.Context) ([]models.PeriodConfig, error)
	Save(ctx context.Context, periods []models.PeriodConfig) error
}

type rosterResolver interface {
	List(ctx context.Context) ([]models.Teacher, error)
	FindOrCreate(ctx context.Context, name, phone string, isSubstitute bool, gradeLevel int) (*models.Teacher, error)
}

// TimetableService ingests the timetable CSV and maintains the derived
// schedule indexes.
type TimetableService struct {
	repo    scheduleRepository
	periods periodRepository
	roster  rosterResolver
	store   *store.Store
	file    string
	cache   *cache.JSONCache
	metrics *MetricsService
	logger  *zap.Logger
}

// NewTimetableService constructs a TimetableService reading the named CSV
// from the store. cache and metrics may be nil.
func NewTimetableService(repo scheduleRepository, periods periodRepository, roster rosterResolver, st *store.Store, file string, c *cache.JSONCache, metrics *MetricsService, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{repo: repo, periods: periods, roster: roster, store: st, file: file, cache: c, metrics: metrics, logger: logger}
}

const (
	cacheKeyTeacherSchedules = "schedules:teacher"
	cacheKeyDaySchedules     = "schedules:day"
)

// PeriodConfig returns the period time grid, materializing the default on
// first read.
func (s *TimetableService) PeriodConfig(ctx context.Context) ([]models.PeriodConfig, error) {
	periods, err := s.periods.Load(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period config")
	}
	return periods, nil
}

// SavePeriodConfig replaces the period time grid.
func (s *TimetableService) SavePeriodConfig(ctx context.Context, periods []models.PeriodConfig) error {
	if err := s.periods.Save(ctx, periods); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save period config")
	}
	return nil
}

// Process reads the timetable CSV, registers every teacher it names, and
// rebuilds the flat schedule plus all four derived indexes. Returns the
// number of timetable entries produced.
func (s *TimetableService) Process(ctx context.Context) (int, error) {
	rows, err := s.store.ReadCSV(s.file)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read timetable file")
	}
	if len(rows) == 0 {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "timetable file is empty or missing")
	}

	var entries []models.ScheduleEntry
	nextID := 1
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		day, ok := models.ParseWeekday(row[0])
		if !ok {
			// header row or unparseable day, skip
			continue
		}
		period, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil || period < models.MinPeriod || period > models.MaxPeriod {
			continue
		}
		for col := 2; col < len(row) && col-2 < len(models.ValidClasses); col++ {
			name := strings.TrimSpace(row[col])
			if name == "" || strings.EqualFold(name, "empty") {
				continue
			}
			className := models.ValidClasses[col-2]
			teacher, err := s.roster.FindOrCreate(ctx, name, "", false, classGrade(className))
			if err != nil {
				return 0, err
			}
			entries = append(entries, models.ScheduleEntry{
				ID:        nextID,
				Day:       day,
				Period:    period,
				TeacherID: teacher.ID,
				ClassName: className,
			})
			nextID++
		}
	}

	if err := s.repo.SaveAll(ctx, entries); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save schedules")
	}
	if err := s.rebuildIndexes(ctx, entries); err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, cacheKeyTeacherSchedules, cacheKeyDaySchedules)
	}
	s.logger.Info("timetable processed", zap.Int("entries", len(entries)))
	return len(entries), nil
}

// Upload replaces the timetable CSV on disk and reprocesses it.
func (s *TimetableService) Upload(ctx context.Context, content []byte) (int, error) {
	if len(content) == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "uploaded timetable is empty")
	}
	if err := s.store.WriteFile(s.file, content); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store timetable file")
	}
	return s.Process(ctx)
}

// Schedules returns the flat timetable.
func (s *TimetableService) Schedules(ctx context.Context) ([]models.ScheduleEntry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedules")
	}
	if entries == nil {
		entries = []models.ScheduleEntry{}
	}
	return entries, nil
}

// TeacherSchedule returns one teacher's weekly slots keyed by normalized
// name.
func (s *TimetableService) TeacherSchedule(ctx context.Context, name string) ([]models.TeacherPeriod, error) {
	all := models.TeacherSchedules{}
	if s.cache != nil && s.cache.Get(ctx, cacheKeyTeacherSchedules, &all) {
		s.metrics.RecordCacheOperation(true)
	} else {
		s.metrics.RecordCacheOperation(false)
		var err error
		all, err = s.repo.TeacherSchedules(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher schedules")
		}
		if s.cache != nil {
			s.cache.Set(ctx, cacheKeyTeacherSchedules, all)
		}
	}
	periods, ok := all[models.NormalizeName(name)]
	if !ok {
		return []models.TeacherPeriod{}, nil
	}
	return periods, nil
}

// DaySchedule returns all slots for one weekday.
func (s *TimetableService) DaySchedule(ctx context.Context, day models.Weekday) ([]models.DaySlot, error) {
	all := models.DaySchedules{}
	if s.cache != nil && s.cache.Get(ctx, cacheKeyDaySchedules, &all) {
		s.metrics.RecordCacheOperation(true)
	} else {
		s.metrics.RecordCacheOperation(false)
		var err error
		all, err = s.repo.DaySchedules(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day schedules")
		}
		if s.cache != nil {
			s.cache.Set(ctx, cacheKeyDaySchedules, all)
		}
	}
	slots, ok := all[day]
	if !ok {
		return []models.DaySlot{}, nil
	}
	return slots, nil
}

// PeriodSchedule returns all slots for one weekday and period.
func (s *TimetableService) PeriodSchedule(ctx context.Context, day models.Weekday, period int) ([]models.DaySlot, error) {
	all, err := s.repo.PeriodSchedules(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period schedules")
	}
	byPeriod, ok := all[day]
	if !ok {
		return []models.DaySlot{}, nil
	}
	slots, ok := byPeriod[period]
	if !ok {
		return []models.DaySlot{}, nil
	}
	return slots, nil
}

// ClassSchedule returns one class's weekly slots.
func (s *TimetableService) ClassSchedule(ctx context.Context, className string) (map[models.Weekday][]models.DaySlot, error) {
	all, err := s.repo.ClassSchedules(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class schedules")
	}
	week, ok := all[strings.ToUpper(strings.TrimSpace(className))]
	if !ok {
		return map[models.Weekday][]models.DaySlot{}, nil
	}
	return week, nil
}

func (s *TimetableService) rebuildIndexes(ctx context.Context, entries []models.ScheduleEntry) error {
	roster, err := s.roster.List(ctx)
	if err != nil {
		return err
	}
	teachers := make(map[int]string, len(roster))
	for _, t := range roster {
		teachers[t.ID] = t.Name
	}

	ts := models.TeacherSchedules{}
	ds := models.DaySchedules{}
	ps := models.PeriodSchedules{}
	cs := models.ClassSchedules{}

	for _, e := range entries {
		name := teachers[e.TeacherID]
		if name == "" {
			continue
		}
		key := models.NormalizeName(name)
		ts[key] = append(ts[key], models.TeacherPeriod{Day: e.Day, Period: e.Period, ClassName: e.ClassName})

		slot := models.DaySlot{Period: e.Period, TeacherName: name, ClassName: e.ClassName}
		ds[e.Day] = append(ds[e.Day], slot)

		if ps[e.Day] == nil {
			ps[e.Day] = map[int][]models.DaySlot{}
		}
		ps[e.Day][e.Period] = append(ps[e.Day][e.Period], slot)

		if cs[e.ClassName] == nil {
			cs[e.ClassName] = map[models.Weekday][]models.DaySlot{}
		}
		cs[e.ClassName][e.Day] = append(cs[e.ClassName][e.Day], slot)
	}

	for key := range ts {
		periods := ts[key]
		sort.Slice(periods, func(i, j int) bool {
			if periods[i].Day != periods[j].Day {
				return periods[i].Day.Order() < periods[j].Day.Order()
			}
			return periods[i].Period < periods[j].Period
		})
		ts[key] = periods
	}
	for day := range ds {
		slots := ds[day]
		sort.Slice(slots, func(i, j int) bool { return slots[i].Period < slots[j].Period })
		ds[day] = slots
	}

	if err := s.repo.SaveIndexes(ctx, ts, ds, ps, cs); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save schedule indexes")
	}
	return nil
}

// classGrade extracts the numeric grade from a class name like "8B".
func classGrade(className string) int {
	i := 0
	for i < len(className) && className[i] >= '0' && className[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0
	}
	grade, _ := strconv.Atoi(className[:i])
	return grade
}
