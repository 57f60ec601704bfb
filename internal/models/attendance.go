package models

// AttendanceStatus is a daily attendance mark.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// Valid reports whether s is a known status.
func (s AttendanceStatus) Valid() bool {
	return s == AttendancePresent || s == AttendanceAbsent
}

// AttendanceRecord is one row of the attendance CSV log. The log is
// append-only; the latest row for a (date, teacher) pair wins.
type AttendanceRecord struct {
	Date        string           `json:"date" validate:"required"`
	TeacherName string           `json:"teacherName" validate:"required"`
	Status      AttendanceStatus `json:"status" validate:"required,oneof=present absent"`
	Period      int              `json:"period,omitempty"`
	Notes       string           `json:"notes,omitempty"`
}

// AttendanceReportRow summarizes one teacher over a date range.
type AttendanceReportRow struct {
	TeacherName string  `json:"teacherName"`
	PresentDays int     `json:"presentDays"`
	AbsentDays  int     `json:"absentDays"`
	TotalDays   int     `json:"totalDays"`
	AbsenceRate float64 `json:"absenceRate"`
}
