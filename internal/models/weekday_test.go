package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseWeekdayAliases(t *testing.T) {
	cases := map[string]Weekday{
		"Monday":    Monday,
		" tue ":     Tuesday,
		"WED":       Wednesday,
		"thurday":   Thursday,
		"thurs":     Thursday,
		"fri":       Friday,
		"Saturday":  Saturday,
		"wednesday": Wednesday,
	}
	for raw, want := range cases {
		got, ok := ParseWeekday(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestParseWeekdayRejectsHeaderAndUnknown(t *testing.T) {
	for _, raw := range []string{"", "Day", "sunday", "holiday"} {
		_, ok := ParseWeekday(raw)
		assert.False(t, ok, raw)
	}
}

func TestWeekdayOfSundayInvalid(t *testing.T) {
	sunday := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	_, ok := WeekdayOf(sunday)
	assert.False(t, ok)

	monday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	day, ok := WeekdayOf(monday)
	assert.True(t, ok)
	assert.Equal(t, Monday, day)
}

func TestWeekdayOrder(t *testing.T) {
	assert.Equal(t, 0, Monday.Order())
	assert.Equal(t, 5, Saturday.Order())
	assert.Less(t, Tuesday.Order(), Friday.Order())
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "sir mushtaq ahmed", NormalizeName("  Sir  Mushtaq   Ahmed "))
	assert.Equal(t, NormalizeName("SANA AHMED"), NormalizeName("sana ahmed"))
}
