package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/internal/store"
)

var attendanceHeader = []string{"Date", "TeacherName", "Status", "Period", "Notes"}

// AttendanceRepository persists the append-only attendance CSV log.
type AttendanceRepository struct {
	store *store.Store
	file  string
}

// NewAttendanceRepository constructs an AttendanceRepository over the named
// CSV file.
func NewAttendanceRepository(st *store.Store, file string) *AttendanceRepository {
	return &AttendanceRepository{store: st, file: file}
}

// Append writes records to the end of the log. The header row is written
// once when the file is new. Statuses go out in the legacy capitalized form
// ("Present"/"Absent") so existing consumers of the CSV keep working; reads
// stay case-insensitive.
func (r *AttendanceRepository) Append(ctx context.Context, records []models.AttendanceRecord) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		period := ""
		if rec.Period > 0 {
			period = strconv.Itoa(rec.Period)
		}
		rows = append(rows, []string{rec.Date, rec.TeacherName, legacyStatus(rec.Status), period, rec.Notes})
	}
	return r.store.AppendCSV(r.file, attendanceHeader, rows)
}

// legacyStatus renders a status the way the historical CSV spells it.
func legacyStatus(status models.AttendanceStatus) string {
	switch status {
	case models.AttendancePresent:
		return "Present"
	case models.AttendanceAbsent:
		return "Absent"
	default:
		return string(status)
	}
}

// All returns every record in the log in file order, skipping the header and
// malformed rows.
func (r *AttendanceRepository) All(ctx context.Context) ([]models.AttendanceRecord, error) {
	rows, err := r.store.ReadCSV(r.file)
	if err != nil {
		return nil, err
	}
	var out []models.AttendanceRecord
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(row[0]), "date") {
			continue
		}
		status := models.AttendanceStatus(strings.ToLower(strings.TrimSpace(row[2])))
		if !status.Valid() {
			continue
		}
		rec := models.AttendanceRecord{
			Date:        strings.TrimSpace(row[0]),
			TeacherName: strings.TrimSpace(row[1]),
			Status:      status,
		}
		if len(row) > 3 {
			if p, err := strconv.Atoi(strings.TrimSpace(row[3])); err == nil {
				rec.Period = p
			}
		}
		if len(row) > 4 {
			rec.Notes = strings.TrimSpace(row[4])
		}
		out = append(out, rec)
	}
	return out, nil
}
