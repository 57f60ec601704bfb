package models

// SubstituteAssignment is one substitute covering one period of one class on
// one date. The JSON field names match the legacy assigned_teacher.json blob.
type SubstituteAssignment struct {
	OriginalTeacher string `json:"originalTeacher"`
	Period          int    `json:"period"`
	ClassName       string `json:"className"`
	Substitute      string `json:"substitute"`
	SubstitutePhone string `json:"substitutePhone"`
	Date            string `json:"date,omitempty"`
}

// AssignmentFile is the on-disk shape of assigned_teacher.json.
type AssignmentFile struct {
	Assignments []SubstituteAssignment `json:"assignments"`
	Warnings    []string               `json:"warnings,omitempty"`
}

// AssignmentCheck flags one suspect assignment found during verification.
type AssignmentCheck struct {
	Assignment SubstituteAssignment `json:"assignment"`
	Issue      string               `json:"issue"`
}

// VerificationReport is the result of auditing current assignments against
// the timetable and absence registry.
type VerificationReport struct {
	Valid    bool              `json:"valid"`
	Total    int               `json:"total"`
	Issues   []AssignmentCheck `json:"issues,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
}
