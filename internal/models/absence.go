package models

// PeriodAssignment is one period a substitute covers for an absent teacher.
type PeriodAssignment struct {
	Period          int    `json:"period"`
	ClassName       string `json:"className"`
	SubstituteID    *int   `json:"substituteId,omitempty"`
	SubstituteName  string `json:"substituteName,omitempty"`
	SubstitutePhone string `json:"substitutePhone,omitempty"`
}

// AbsentTeacher is one entry of the absence registry for a date. The field
// set mirrors the persisted JSON blob consumed by the mobile client, which
// expects both id and teacherId present.
type AbsentTeacher struct {
	ID                 int                `json:"id"`
	TeacherID          int                `json:"teacherId"`
	Name               string             `json:"name"`
	PhoneNumber        string             `json:"phoneNumber,omitempty"`
	Date               string             `json:"date"`
	Timestamp          string             `json:"timestamp"`
	Periods            []PeriodAssignment `json:"periods,omitempty"`
	AssignedSubstitute *string            `json:"assignedSubstitute,omitempty"`
	SubstituteID       *int               `json:"substituteId,omitempty"`
}
