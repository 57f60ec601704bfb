package service

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/internal/repository"
	"github.com/schooldesk/substitute-api/internal/store"
)

func newAttendanceService(t *testing.T) *AttendanceService {
	svc, _ := newAttendanceFixture(t)
	return svc
}

func newAttendanceFixture(t *testing.T) (*AttendanceService, *store.Store) {
	t.Helper()
	st := newTestStore(t)
	repo := repository.NewAttendanceRepository(st, "teacher_attendance.csv")
	return NewAttendanceService(repo, nil, nil), st
}

func TestAttendanceServiceRecordFillsMissingDates(t *testing.T) {
	svc := newAttendanceService(t)
	ctx := context.Background()

	n, err := svc.Record(ctx, RecordAttendanceRequest{
		Date: "2025-03-03",
		Records: []models.AttendanceRecord{
			{TeacherName: "Sana Ahmed", Status: models.AttendancePresent},
			{Date: "2025-03-04", TeacherName: "Hina Khan", Status: models.AttendanceAbsent, Period: 2, Notes: "sick"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2025-03-03", all[0].Date)
	assert.Equal(t, "2025-03-04", all[1].Date)
	assert.Equal(t, 2, all[1].Period)
	assert.Equal(t, "sick", all[1].Notes)
}

func TestAttendanceServiceRecordRejectsEmptyBatch(t *testing.T) {
	svc := newAttendanceService(t)

	_, err := svc.Record(context.Background(), RecordAttendanceRequest{Date: "2025-03-03"})
	require.Error(t, err)
}

func TestAttendanceServiceRecordRejectsUnknownStatus(t *testing.T) {
	svc := newAttendanceService(t)

	_, err := svc.Record(context.Background(), RecordAttendanceRequest{
		Date:    "2025-03-03",
		Records: []models.AttendanceRecord{{TeacherName: "Sana Ahmed", Status: "late"}},
	})
	require.Error(t, err)
}

func TestAttendanceServiceByDateReturnsEveryRow(t *testing.T) {
	svc := newAttendanceService(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, RecordAttendanceRequest{
		Date: "2025-03-03",
		Records: []models.AttendanceRecord{
			{TeacherName: "Sana Ahmed", Status: models.AttendanceAbsent, Period: 3},
			{TeacherName: "Hina Khan", Status: models.AttendancePresent},
		},
	})
	require.NoError(t, err)

	// same teacher and date again, marked for a later period
	_, err = svc.Record(ctx, RecordAttendanceRequest{
		Date:    "2025-03-03",
		Records: []models.AttendanceRecord{{TeacherName: "sana  ahmed", Status: models.AttendanceAbsent, Period: 5}},
	})
	require.NoError(t, err)

	_, err = svc.Record(ctx, RecordAttendanceRequest{
		Date:    "2025-03-04",
		Records: []models.AttendanceRecord{{TeacherName: "Hina Khan", Status: models.AttendanceAbsent}},
	})
	require.NoError(t, err)

	marks, err := svc.ByDate(ctx, "2025-03-03")
	require.NoError(t, err)
	require.Len(t, marks, 3)
	assert.Equal(t, "sana ahmed", marks[0].TeacherName)
	assert.Equal(t, 3, marks[0].Period)
	assert.Equal(t, "hina khan", marks[1].TeacherName)
	assert.Equal(t, "sana ahmed", marks[2].TeacherName)
	assert.Equal(t, 5, marks[2].Period)
}

func TestAttendanceServiceRecordNormalizesLogLines(t *testing.T) {
	svc, st := newAttendanceFixture(t)

	_, err := svc.Record(context.Background(), RecordAttendanceRequest{
		Date:    "2025-03-03",
		Records: []models.AttendanceRecord{{TeacherName: "  Sana Ahmed ", Status: models.AttendancePresent}},
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(st.Path("teacher_attendance.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2025-03-03,sana ahmed,Present,,", lines[1])
}

func TestAttendanceServiceReportRangeAndRates(t *testing.T) {
	svc := newAttendanceService(t)
	ctx := context.Background()

	days := []struct {
		date   string
		status models.AttendanceStatus
	}{
		{"2025-03-03", models.AttendancePresent},
		{"2025-03-04", models.AttendanceAbsent},
		{"2025-03-05", models.AttendancePresent},
		{"2025-03-10", models.AttendanceAbsent}, // outside range
	}
	for _, d := range days {
		_, err := svc.Record(ctx, RecordAttendanceRequest{
			Date:    d.date,
			Records: []models.AttendanceRecord{{TeacherName: "Sana Ahmed", Status: d.status}},
		})
		require.NoError(t, err)
	}

	rows, err := svc.Report(ctx, "2025-03-03", "2025-03-07")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Sana Ahmed", rows[0].TeacherName)
	assert.Equal(t, 2, rows[0].PresentDays)
	assert.Equal(t, 1, rows[0].AbsentDays)
	assert.Equal(t, 3, rows[0].TotalDays)
	assert.InDelta(t, 1.0/3.0, rows[0].AbsenceRate, 0.001)
}

func TestAttendanceServiceReportCountsCorrectedDayOnce(t *testing.T) {
	svc := newAttendanceService(t)
	ctx := context.Background()

	for _, status := range []models.AttendanceStatus{models.AttendanceAbsent, models.AttendancePresent} {
		_, err := svc.Record(ctx, RecordAttendanceRequest{
			Date:    "2025-03-03",
			Records: []models.AttendanceRecord{{TeacherName: "Sana Ahmed", Status: status}},
		})
		require.NoError(t, err)
	}

	rows, err := svc.Report(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].TotalDays)
	assert.Equal(t, 1, rows[0].PresentDays)
	assert.Equal(t, 0, rows[0].AbsentDays)
}

func TestAttendanceServiceExportDataset(t *testing.T) {
	svc := newAttendanceService(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, RecordAttendanceRequest{
		Date:    "2025-03-03",
		Records: []models.AttendanceRecord{{TeacherName: "Sana Ahmed", Status: models.AttendanceAbsent}},
	})
	require.NoError(t, err)

	ds, err := svc.ExportDataset(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Teacher", "Present", "Absent", "Total", "Absence Rate"}, ds.Headers)
	require.Len(t, ds.Rows, 1)
	assert.Equal(t, "1.00", ds.Rows[0]["Absence Rate"])
}
