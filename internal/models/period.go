package models

// PeriodConfig is one teaching period's time window, as stored in
// period_config.json.
type PeriodConfig struct {
	PeriodNumber int    `json:"periodNumber" validate:"required,min=1"`
	StartTime    string `json:"startTime" validate:"required"`
	EndTime      string `json:"endTime" validate:"required"`
}

// DefaultPeriodConfig returns the stock eight-period school day written when
// no configuration exists yet.
func DefaultPeriodConfig() []PeriodConfig {
	return []PeriodConfig{
		{PeriodNumber: 1, StartTime: "08:00", EndTime: "08:45"},
		{PeriodNumber: 2, StartTime: "08:45", EndTime: "09:30"},
		{PeriodNumber: 3, StartTime: "09:30", EndTime: "10:15"},
		{PeriodNumber: 4, StartTime: "10:15", EndTime: "11:00"},
		{PeriodNumber: 5, StartTime: "11:15", EndTime: "12:00"},
		{PeriodNumber: 6, StartTime: "12:00", EndTime: "12:45"},
		{PeriodNumber: 7, StartTime: "12:45", EndTime: "13:30"},
		{PeriodNumber: 8, StartTime: "13:45", EndTime: "14:30"},
	}
}
