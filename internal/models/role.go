package models

import "time"

// RoleProfile describes what a job role asks for. RoleID is unique across the
// catalog and every keyword weight is non-negative; the role store enforces both
// before a catalog becomes visible.
type RoleProfile struct {
	RoleID             string              `gorm:"column:role_id;type:text;primaryKey" json:"role_id" yaml:"role_id"`
	Title              string              `gorm:"type:text" json:"title" yaml:"title"`
	Description        string              `gorm:"type:text" json:"description,omitempty" yaml:"description"`
	Education          string              `gorm:"type:text" json:"education,omitempty" yaml:"education"`
	RequiredSkills     []string            `gorm:"type:jsonb;serializer:json" json:"required_skills" yaml:"required_skills"`
	PreferredSkills    []string            `gorm:"type:jsonb;serializer:json" json:"preferred_skills" yaml:"preferred_skills"`
	KeywordWeights     map[string]float64  `gorm:"type:jsonb;serializer:json" json:"keyword_weights,omitempty" yaml:"keyword_weights"`
	Synonyms           map[string][]string `gorm:"type:jsonb;serializer:json" json:"synonyms,omitempty" yaml:"synonyms"`
	MinExperienceYears *float64            `gorm:"type:decimal(4,1)" json:"min_experience_years,omitempty" yaml:"min_experience_years"`
	CreatedAt          time.Time           `gorm:"default:CURRENT_TIMESTAMP" json:"-" yaml:"-"`
	UpdatedAt          time.Time           `gorm:"default:CURRENT_TIMESTAMP" json:"-" yaml:"-"`
}

func (RoleProfile) TableName() string {
	return "role_profiles"
}

// RoleSummary is the listing entry shown to the role picker.
type RoleSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
