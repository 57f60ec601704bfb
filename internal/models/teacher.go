package models

import "strings"

// Teacher represents one staff member from either source CSV. IDs are
// sequential and stable within a data directory (persisted counter),
// first-seen wins on deduplication.
type Teacher struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	IsSubstitute bool     `json:"isSubstitute"`
	PhoneNumber  *string  `json:"phoneNumber"`
	GradeLevel   int      `json:"gradeLevel,omitempty"`
	Variations   []string `json:"variations,omitempty"`
}

// Phone returns the phone number or an empty string.
func (t Teacher) Phone() string {
	if t.PhoneNumber == nil {
		return ""
	}
	return *t.PhoneNumber
}

// NormalizeName lower-cases, trims and collapses inner whitespace so that the
// same teacher spelled differently across files collapses to one entry.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// DisplayName title-cases each word of a normalized name for presentation.
func DisplayName(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
