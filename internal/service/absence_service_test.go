package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/internal/repository"
	appErrors "github.com/schooldesk/substitute-api/pkg/errors"
)

// stubScheduleReader serves canned weekly schedules keyed by normalized name.
type stubScheduleReader map[string][]models.TeacherPeriod

func (s stubScheduleReader) TeacherSchedule(ctx context.Context, name string) ([]models.TeacherPeriod, error) {
	return s[models.NormalizeName(name)], nil
}

type absenceFixture struct {
	absences    *AbsenceService
	roster      *RosterService
	teachers    *repository.TeacherRepository
	assignments *repository.AssignmentRepository
}

func newAbsenceFixture(t *testing.T, schedules stubScheduleReader) absenceFixture {
	t.Helper()
	st := newTestStore(t)
	teachers := repository.NewTeacherRepository(st)
	assignments := repository.NewAssignmentRepository(st)
	roster := NewRosterService(teachers, nil, nil)
	svc := NewAbsenceService(repository.NewAbsenceRepository(st), assignments, teachers, roster, schedules, nil)
	return absenceFixture{absences: svc, roster: roster, teachers: teachers, assignments: assignments}
}

// 2025-03-03 is a Monday.
const mondayDate = "2025-03-03"

func TestAbsenceServiceMarkResolvesSchedulePeriods(t *testing.T) {
	fx := newAbsenceFixture(t, stubScheduleReader{
		"sana ahmed": {
			{Day: models.Monday, Period: 1, ClassName: "9A"},
			{Day: models.Monday, Period: 3, ClassName: "7B"},
			{Day: models.Tuesday, Period: 2, ClassName: "10C"},
		},
	})
	ctx := context.Background()
	teacher, err := fx.roster.FindOrCreate(ctx, "Sana Ahmed", "0300123", false, 0)
	require.NoError(t, err)

	require.NoError(t, fx.absences.Update(ctx, teacher.ID, mondayDate, true))

	entries, err := fx.absences.List(ctx, mondayDate)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, teacher.ID, entry.TeacherID)
	assert.Equal(t, "0300123", entry.PhoneNumber)
	assert.NotEmpty(t, entry.Timestamp)
	require.Len(t, entry.Periods, 2)
	assert.Equal(t, "9A", entry.Periods[0].ClassName)
	assert.Equal(t, 3, entry.Periods[1].Period)
}

func TestAbsenceServiceMarkIsIdempotent(t *testing.T) {
	fx := newAbsenceFixture(t, stubScheduleReader{})
	ctx := context.Background()
	teacher, err := fx.roster.FindOrCreate(ctx, "Sana Ahmed", "", false, 0)
	require.NoError(t, err)

	require.NoError(t, fx.absences.Update(ctx, teacher.ID, mondayDate, true))
	require.NoError(t, fx.absences.Update(ctx, teacher.ID, mondayDate, true))

	count, err := fx.absences.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAbsenceServiceMarkSundayHasNoPeriods(t *testing.T) {
	fx := newAbsenceFixture(t, stubScheduleReader{
		"sana ahmed": {{Day: models.Monday, Period: 1, ClassName: "9A"}},
	})
	ctx := context.Background()
	teacher, err := fx.roster.FindOrCreate(ctx, "Sana Ahmed", "", false, 0)
	require.NoError(t, err)

	require.NoError(t, fx.absences.Update(ctx, teacher.ID, "2025-03-02", true))

	entries, err := fx.absences.List(ctx, "2025-03-02")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Periods)
}

func TestAbsenceServiceUnmarkPrunesAssignments(t *testing.T) {
	fx := newAbsenceFixture(t, stubScheduleReader{})
	ctx := context.Background()
	teacher, err := fx.roster.FindOrCreate(ctx, "Sana Ahmed", "", false, 0)
	require.NoError(t, err)

	require.NoError(t, fx.absences.Update(ctx, teacher.ID, mondayDate, true))
	require.NoError(t, fx.assignments.Save(ctx, models.AssignmentFile{Assignments: []models.SubstituteAssignment{
		{OriginalTeacher: "sana  ahmed", Period: 1, ClassName: "9A", Substitute: "Sub One", Date: mondayDate},
		{OriginalTeacher: "Hina Khan", Period: 2, ClassName: "7B", Substitute: "Sub One", Date: mondayDate},
	}}))

	require.NoError(t, fx.absences.Update(ctx, teacher.ID, mondayDate, false))

	entries, err := fx.absences.List(ctx, mondayDate)
	require.NoError(t, err)
	assert.Empty(t, entries)

	file, err := fx.assignments.Load(ctx)
	require.NoError(t, err)
	require.Len(t, file.Assignments, 1)
	assert.Equal(t, "Hina Khan", file.Assignments[0].OriginalTeacher)
}

func TestAbsenceServiceUpdateUnknownTeacher(t *testing.T) {
	fx := newAbsenceFixture(t, stubScheduleReader{})

	err := fx.absences.Update(context.Background(), 42, mondayDate, true)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAbsenceServiceReplaceNames(t *testing.T) {
	fx := newAbsenceFixture(t, stubScheduleReader{})
	ctx := context.Background()

	_, err := fx.absences.ReplaceNames(ctx, mondayDate, []string{"Sana Ahmed", "Hina Khan"})
	require.NoError(t, err)

	entries, err := fx.absences.ReplaceNames(ctx, mondayDate, []string{"hina khan", "Noor Fatima"})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	names := []string{entries[0].Name, entries[1].Name}
	assert.Contains(t, names, "Hina Khan")
	assert.Contains(t, names, "Noor Fatima")
	assert.NotContains(t, names, "Sana Ahmed")
}
