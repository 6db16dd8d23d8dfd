package models

import (
	"time"

	"github.com/google/uuid"
)

type Candidate struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name                string    `gorm:"type:text;not null" json:"name"`
	Email               string    `gorm:"type:text" json:"email,omitempty"`
	Phone               string    `gorm:"type:text" json:"phone,omitempty"`
	ExperienceYears     *float64  `gorm:"type:decimal(4,1)" json:"experience_years,omitempty"`
	Skills              []string  `gorm:"serializer:json;type:text" json:"skills"`
	EducationSummary    string    `gorm:"type:text" json:"education_summary,omitempty"`
	ProfessionalSummary string    `gorm:"type:text" json:"professional_summary,omitempty"`
	RawText             string    `gorm:"type:text" json:"raw_text,omitempty"`
	SourceFile          string    `gorm:"type:text" json:"source_file,omitempty"`
	CreatedAt           time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt           time.Time `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (c *Candidate) TableName() string {
	return "candidates"
}
