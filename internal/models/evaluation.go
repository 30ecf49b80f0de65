package models

import (
	"time"

	"github.com/google/uuid"
)

type EvaluationStatus string

const (
	StatusQueued     EvaluationStatus = "queued"
	StatusProcessing EvaluationStatus = "processing"
	StatusCompleted  EvaluationStatus = "completed"
	StatusFailed     EvaluationStatus = "failed"
)

// Evaluation is the persisted record of one scoring request. The engine itself
// never reads it back; it exists for the HTTP result endpoint and the worker.
type Evaluation struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RoleID              string           `gorm:"type:text;not null" json:"role_id"`
	DocumentID          uuid.UUID        `gorm:"type:uuid;not null" json:"document_id"`
	Status              EvaluationStatus `gorm:"not null;default:'queued'" json:"status"`
	ScoreWithoutChatGPT *float64         `gorm:"column:score_without_chatgpt;type:decimal(5,2)" json:"score_without_chatgpt,omitempty"`
	ScoreWithChatGPT    *float64         `gorm:"column:score_with_chatgpt;type:decimal(5,2)" json:"score_with_chatgpt,omitempty"`
	Summary             *string          `gorm:"type:text" json:"summary,omitempty"`
	MatchedSkills       []string         `gorm:"type:jsonb;serializer:json" json:"matched_skills,omitempty"`
	MissingSkills       []string         `gorm:"type:jsonb;serializer:json" json:"missing_skills,omitempty"`
	Degraded            bool             `gorm:"not null;default:false" json:"degraded"`
	ErrorKind           *string          `gorm:"type:text" json:"error_kind,omitempty"`
	ErrorMessage        *string          `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt           time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Document Document `gorm:"foreignKey:DocumentID" json:"-"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}
