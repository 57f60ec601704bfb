package models

// ScheduleEntry is one recurring weekly timetable slot. Entries are immutable
// once loaded; a timetable upload replaces the full set.
type ScheduleEntry struct {
	ID        int     `json:"id"`
	Day       Weekday `json:"day"`
	Period    int     `json:"period"`
	TeacherID int     `json:"teacherId"`
	ClassName string  `json:"className"`
}

// TeacherPeriod is one slot in a teacher's own weekly schedule, as stored in
// teacher_schedules.json keyed by normalized teacher name.
type TeacherPeriod struct {
	Day       Weekday `json:"day"`
	Period    int     `json:"period"`
	ClassName string  `json:"className"`
}

// DaySlot is one slot in the per-day / per-period / per-class indexes.
type DaySlot struct {
	Period      int    `json:"period"`
	TeacherName string `json:"teacherName"`
	ClassName   string `json:"className"`
}

// Derived timetable indexes persisted as JSON blobs for the client.
type (
	TeacherSchedules map[string][]TeacherPeriod
	DaySchedules     map[Weekday][]DaySlot
	PeriodSchedules  map[Weekday]map[int][]DaySlot
	ClassSchedules   map[string]map[Weekday][]DaySlot
)

// ValidClasses are the class-slot columns of the timetable CSV, in column
// order (columns 2 and up).
var ValidClasses = []string{
	"10A", "10B", "10C",
	"9A", "9B", "9C",
	"8A", "8B", "8C",
	"7A", "7B", "7C",
	"6A", "6B", "6C",
}

const (
	// MinPeriod and MaxPeriod bound the period column of the timetable.
	MinPeriod = 1
	MaxPeriod = 8
)
