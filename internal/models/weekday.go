package models

import (
	"strings"
	"time"
)

// Weekday is a school day. Sunday is deliberately absent: the timetable has no
// Sunday column and dates falling on a Sunday resolve to no periods.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
)

// Weekdays lists school days in timetable order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// dayAliases tolerates the abbreviations and typos found in uploaded CSVs.
var dayAliases = map[string]Weekday{
	"monday":    Monday,
	"mon":       Monday,
	"tuesday":   Tuesday,
	"tue":       Tuesday,
	"tues":      Tuesday,
	"wednesday": Wednesday,
	"wed":       Wednesday,
	"thursday":  Thursday,
	"thurday":   Thursday,
	"thu":       Thursday,
	"thur":      Thursday,
	"thurs":     Thursday,
	"friday":    Friday,
	"fri":       Friday,
	"saturday":  Saturday,
	"sat":       Saturday,
}

// ParseWeekday normalizes a raw day cell. It reports false for the header
// cell, Sundays and anything unrecognized.
func ParseWeekday(raw string) (Weekday, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" || normalized == "day" {
		return "", false
	}
	day, ok := dayAliases[normalized]
	return day, ok
}

// WeekdayOf maps a calendar date onto a school day.
func WeekdayOf(t time.Time) (Weekday, bool) {
	switch t.Weekday() {
	case time.Monday:
		return Monday, true
	case time.Tuesday:
		return Tuesday, true
	case time.Wednesday:
		return Wednesday, true
	case time.Thursday:
		return Thursday, true
	case time.Friday:
		return Friday, true
	case time.Saturday:
		return Saturday, true
	default:
		return "", false
	}
}

// Order returns the position of the day within the school week, for sorting.
func (d Weekday) Order() int {
	for i, day := range Weekdays {
		if day == d {
			return i
		}
	}
	return len(Weekdays)
}

// Valid reports whether d is one of the six school days.
func (d Weekday) Valid() bool {
	_, ok := dayAliases[string(d)]
	return ok
}
