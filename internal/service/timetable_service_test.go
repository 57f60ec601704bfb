package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/internal/repository"
	"github.com/schooldesk/substitute-api/internal/store"
	appErrors "github.com/schooldesk/substitute-api/pkg/errors"
)

const timetableCSV = `Day,Period,10A,10B,10C,9A
Monday,1,Sana Ahmed,Hina Khan,empty,Noor Fatima
Monday,2,empty,Sana Ahmed
Thurday,1,Hina Khan
Monday,9,Ghost Teacher
Someday,3,Ghost Teacher
Monday,x,Ghost Teacher
`

type timetableFixture struct {
	service *TimetableService
	roster  *RosterService
	store   *store.Store
}

func newTimetableFixture(t *testing.T) timetableFixture {
	t.Helper()
	st := newTestStore(t)
	roster := NewRosterService(repository.NewTeacherRepository(st), nil, nil)
	svc := NewTimetableService(repository.NewScheduleRepository(st), repository.NewPeriodRepository(st), roster, st, "timetable_file.csv", nil, nil, nil)
	return timetableFixture{service: svc, roster: roster, store: st}
}

func processTimetable(t *testing.T, fx timetableFixture, csv string) int {
	t.Helper()
	require.NoError(t, fx.store.WriteFile("timetable_file.csv", []byte(csv)))
	n, err := fx.service.Process(context.Background())
	require.NoError(t, err)
	return n
}

func TestTimetableServiceProcessSkipsInvalidRows(t *testing.T) {
	fx := newTimetableFixture(t)

	// header, "empty" cells, day typos, out-of-range periods
	n := processTimetable(t, fx, timetableCSV)
	assert.Equal(t, 5, n)

	entries, err := fx.service.Schedules(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 5)

	// rows skipped before registration never touch the roster
	teachers, err := fx.roster.List(context.Background())
	require.NoError(t, err)
	for _, teacher := range teachers {
		assert.NotEqual(t, "Ghost Teacher", teacher.Name)
	}
}

func TestTimetableServiceProcessRegistersTeachersWithGrade(t *testing.T) {
	fx := newTimetableFixture(t)
	processTimetable(t, fx, "Monday,1,empty,empty,empty,Noor Fatima\n")

	teachers, err := fx.roster.List(context.Background())
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, "Noor Fatima", teachers[0].Name)
	assert.Equal(t, 9, teachers[0].GradeLevel)
	assert.False(t, teachers[0].IsSubstitute)
}

func TestTimetableServiceProcessMissingFile(t *testing.T) {
	fx := newTimetableFixture(t)

	_, err := fx.service.Process(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceTeacherScheduleSorted(t *testing.T) {
	fx := newTimetableFixture(t)
	csv := strings.Join([]string{
		"Friday,3,Sana Ahmed",
		"Monday,2,Sana Ahmed",
		"Monday,1,Sana Ahmed",
	}, "\n")
	processTimetable(t, fx, csv)

	slots, err := fx.service.TeacherSchedule(context.Background(), "SANA  AHMED")
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, models.Monday, slots[0].Day)
	assert.Equal(t, 1, slots[0].Period)
	assert.Equal(t, 2, slots[1].Period)
	assert.Equal(t, models.Friday, slots[2].Day)
	assert.Equal(t, "10A", slots[0].ClassName)
}

func TestTimetableServiceTeacherScheduleUnknownName(t *testing.T) {
	fx := newTimetableFixture(t)
	processTimetable(t, fx, "Monday,1,Sana Ahmed\n")

	slots, err := fx.service.TeacherSchedule(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestTimetableServiceDayAndPeriodSchedules(t *testing.T) {
	fx := newTimetableFixture(t)
	processTimetable(t, fx, "Monday,1,Sana Ahmed,Hina Khan\nMonday,2,Noor Fatima\nTuesday,1,Sana Ahmed\n")
	ctx := context.Background()

	day, err := fx.service.DaySchedule(ctx, models.Monday)
	require.NoError(t, err)
	assert.Len(t, day, 3)

	period, err := fx.service.PeriodSchedule(ctx, models.Monday, 1)
	require.NoError(t, err)
	require.Len(t, period, 2)
	assert.Equal(t, "Sana Ahmed", period[0].TeacherName)

	empty, err := fx.service.PeriodSchedule(ctx, models.Wednesday, 1)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTimetableServiceClassSchedule(t *testing.T) {
	fx := newTimetableFixture(t)
	processTimetable(t, fx, "Monday,1,Sana Ahmed\nTuesday,2,Hina Khan\n")

	week, err := fx.service.ClassSchedule(context.Background(), " 10a ")
	require.NoError(t, err)
	require.Len(t, week, 2)
	assert.Equal(t, "Sana Ahmed", week[models.Monday][0].TeacherName)
	assert.Equal(t, "Hina Khan", week[models.Tuesday][0].TeacherName)
}

func TestTimetableServiceUploadReplacesTimetable(t *testing.T) {
	fx := newTimetableFixture(t)
	processTimetable(t, fx, "Monday,1,Sana Ahmed,Hina Khan\n")

	n, err := fx.service.Upload(context.Background(), []byte("Tuesday,4,Noor Fatima\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entries, err := fx.service.Schedules(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.Tuesday, entries[0].Day)
}

func TestTimetableServiceUploadRejectsEmpty(t *testing.T) {
	fx := newTimetableFixture(t)

	_, err := fx.service.Upload(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServicePeriodConfigDefaults(t *testing.T) {
	fx := newTimetableFixture(t)
	ctx := context.Background()

	periods, err := fx.service.PeriodConfig(ctx)
	require.NoError(t, err)
	require.Len(t, periods, 8)
	assert.Equal(t, 1, periods[0].PeriodNumber)

	periods[0].StartTime = "07:30"
	require.NoError(t, fx.service.SavePeriodConfig(ctx, periods))

	reloaded, err := fx.service.PeriodConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "07:30", reloaded[0].StartTime)
}
