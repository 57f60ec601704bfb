package service

import (
	"context"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schooldesk/substitute-api/internal/models"
	appErrors "github.com/schooldesk/substitute-api/pkg/errors"
	"github.com/schooldesk/substitute-api/pkg/export"
)

type attendanceRepository interface {
	Append(ctx context.Context, records []models.AttendanceRecord) error
	All(ctx context.Context) ([]models.AttendanceRecord, error)
}

// RecordAttendanceRequest holds payload for logging attendance marks.
type RecordAttendanceRequest struct {
	Date    string                    `json:"date" validate:"required"`
	Records []models.AttendanceRecord `json:"records" validate:"required,min=1,dive"`
}

// AttendanceService manages the append-only attendance log and its reports.
type AttendanceService struct {
	repo      attendanceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, v *validator.Validate, logger *zap.Logger) *AttendanceService {
	if v == nil {
		v = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, validator: v, logger: logger}
}

// Record appends marks to the log. Teacher names are normalized before the
// rows are written. Duplicate (date, teacher) rows are accepted as per-period
// marks; the report layer resolves the latest row as authoritative.
func (s *AttendanceService) Record(ctx context.Context, req RecordAttendanceRequest) (int, error) {
	records := make([]models.AttendanceRecord, 0, len(req.Records))
	for _, rec := range req.Records {
		if rec.Date == "" {
			rec.Date = req.Date
		}
		rec.TeacherName = models.NormalizeName(rec.TeacherName)
		records = append(records, rec)
	}
	req.Records = records
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if err := s.repo.Append(ctx, records); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to append attendance records")
	}
	s.logger.Info("attendance recorded", zap.String("date", req.Date), zap.Int("records", len(records)))
	return len(records), nil
}

// All returns the complete log in file order.
func (s *AttendanceService) All(ctx context.Context) ([]models.AttendanceRecord, error) {
	records, err := s.repo.All(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read attendance log")
	}
	if records == nil {
		records = []models.AttendanceRecord{}
	}
	return records, nil
}

// ByDate returns every row logged for one date in file order. Multiple rows
// per teacher are legitimate per-period marks; only the report layer collapses
// them.
func (s *AttendanceService) ByDate(ctx context.Context, date string) ([]models.AttendanceRecord, error) {
	records, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.AttendanceRecord{}
	for _, rec := range records {
		if rec.Date == date {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Report aggregates per-teacher presence over an inclusive date range. Dates
// compare lexicographically in YYYY-MM-DD form.
func (s *AttendanceService) Report(ctx context.Context, from, to string) ([]models.AttendanceReportRow, error) {
	records, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	type dayKey struct{ teacher, date string }
	latest := map[dayKey]models.AttendanceStatus{}
	for _, rec := range records {
		if from != "" && rec.Date < from {
			continue
		}
		if to != "" && rec.Date > to {
			continue
		}
		key := models.NormalizeName(rec.TeacherName)
		latest[dayKey{key, rec.Date}] = rec.Status
	}

	type tally struct{ present, absent int }
	tallies := map[string]*tally{}
	for key, status := range latest {
		t := tallies[key.teacher]
		if t == nil {
			t = &tally{}
			tallies[key.teacher] = t
		}
		if status == models.AttendancePresent {
			t.present++
		} else {
			t.absent++
		}
	}

	rows := make([]models.AttendanceReportRow, 0, len(tallies))
	for key, t := range tallies {
		total := t.present + t.absent
		rate := 0.0
		if total > 0 {
			rate = float64(t.absent) / float64(total)
		}
		rows = append(rows, models.AttendanceReportRow{
			TeacherName: models.DisplayName(key),
			PresentDays: t.present,
			AbsentDays:  t.absent,
			TotalDays:   total,
			AbsenceRate: rate,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TeacherName < rows[j].TeacherName })
	return rows, nil
}

// ExportDataset shapes a report for the CSV and PDF exporters.
func (s *AttendanceService) ExportDataset(ctx context.Context, from, to string) (export.Dataset, error) {
	rows, err := s.Report(ctx, from, to)
	if err != nil {
		return export.Dataset{}, err
	}
	ds := export.Dataset{
		Headers: []string{"Teacher", "Present", "Absent", "Total", "Absence Rate"},
	}
	for _, row := range rows {
		ds.Rows = append(ds.Rows, map[string]string{
			"Teacher":      row.TeacherName,
			"Present":      strconv.Itoa(row.PresentDays),
			"Absent":       strconv.Itoa(row.AbsentDays),
			"Total":        strconv.Itoa(row.TotalDays),
			"Absence Rate": strconv.FormatFloat(row.AbsenceRate, 'f', 2, 64),
		})
	}
	return ds, nil
}
