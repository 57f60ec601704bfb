package repository

import (
	"context"

	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/internal/store"
)

const (
	schedulesFile        = "schedules.json"
	teacherSchedulesFile = "teacher_schedules.json"
	daySchedulesFile     = "day_schedules.json"
	periodSchedulesFile  = "period_schedules.json"
	classSchedulesFile   = "class_schedules.json"
)

// ScheduleRepository persists the flat timetable and its derived indexes.
// The indexes are regenerated wholesale on each timetable upload.
type ScheduleRepository struct {
	store *store.Store
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(st *store.Store) *ScheduleRepository {
	return &ScheduleRepository{store: st}
}

// List returns all timetable entries.
func (r *ScheduleRepository) List(ctx context.Context) ([]models.ScheduleEntry, error) {
	var entries []models.ScheduleEntry
	if _, err := r.store.LoadJSON(schedulesFile, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SaveAll replaces the flat timetable.
func (r *ScheduleRepository) SaveAll(ctx context.Context, entries []models.ScheduleEntry) error {
	if entries == nil {
		entries = []models.ScheduleEntry{}
	}
	return r.store.SaveJSON(schedulesFile, entries)
}

// TeacherSchedules returns the per-teacher index keyed by normalized name.
func (r *ScheduleRepository) TeacherSchedules(ctx context.Context) (models.TeacherSchedules, error) {
	out := models.TeacherSchedules{}
	if _, err := r.store.LoadJSON(teacherSchedulesFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DaySchedules returns the per-day index.
func (r *ScheduleRepository) DaySchedules(ctx context.Context) (models.DaySchedules, error) {
	out := models.DaySchedules{}
	if _, err := r.store.LoadJSON(daySchedulesFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PeriodSchedules returns the per-day per-period index.
func (r *ScheduleRepository) PeriodSchedules(ctx context.Context) (models.PeriodSchedules, error) {
	out := models.PeriodSchedules{}
	if _, err := r.store.LoadJSON(periodSchedulesFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClassSchedules returns the per-class index.
func (r *ScheduleRepository) ClassSchedules(ctx context.Context) (models.ClassSchedules, error) {
	out := models.ClassSchedules{}
	if _, err := r.store.LoadJSON(classSchedulesFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveIndexes writes all four derived indexes at once.
func (r *ScheduleRepository) SaveIndexes(ctx context.Context, ts models.TeacherSchedules, ds models.DaySchedules, ps models.PeriodSchedules, cs models.ClassSchedules) error {
	if err := r.store.SaveJSON(teacherSchedulesFile, ts); err != nil {
		return err
	}
	if err := r.store.SaveJSON(daySchedulesFile, ds); err != nil {
		return err
	}
	if err := r.store.SaveJSON(periodSchedulesFile, ps); err != nil {
		return err
	}
	return r.store.SaveJSON(classSchedulesFile, cs)
}
