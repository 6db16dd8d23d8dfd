package parser

import "strings"

// CandidateRecord is the normalized result of parsing one candidate mention
// out of a model response. Optional fields are nil when nothing was extracted,
// which is distinct from an extracted-but-empty value.
type CandidateRecord struct {
	Name           string   `json:"name"`
	Email          *string  `json:"email,omitempty"`
	Phone          *string  `json:"phone,omitempty"`
	CGPA           *string  `json:"cgpa,omitempty"`
	Percentage     *string  `json:"percentage,omitempty"`
	Education      *string  `json:"education,omitempty"`
	Experience     *string  `json:"experience,omitempty"`
	Skills         []string `json:"skills"`
	AdditionalInfo *string  `json:"additional_info,omitempty"`
}

// Valid reports whether the record carries a usable name. Callers discard
// invalid records; the parser itself keeps them so nothing is silently lost.
func (r CandidateRecord) Valid() bool {
	return strings.TrimSpace(r.Name) != ""
}

func strPtr(s string) *string {
	return &s
}
