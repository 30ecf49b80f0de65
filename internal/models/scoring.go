package models

import "strings"

type MediaType string

const (
	MediaTypePDF  MediaType = "application/pdf"
	MediaTypeDOCX MediaType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ResumeDocument is the raw upload handed to the engine for a single request.
type ResumeDocument struct {
	Data      []byte
	MediaType MediaType
}

type Section string

const (
	SectionSummary        Section = "summary"
	SectionExperience     Section = "experience"
	SectionEducation      Section = "education"
	SectionSkills         Section = "skills"
	SectionProjects       Section = "projects"
	SectionCertifications Section = "certifications"
	SectionOther          Section = "other"
)

type Segment struct {
	Section Section
	Text    string
}

// ExtractedText is the normalised text of a résumé. Treat it as immutable once
// the extractor returns it.
type ExtractedText struct {
	Segments  []Segment
	PageCount int
}

// Text joins all segments with newlines.
func (e ExtractedText) Text() string {
	parts := make([]string, 0, len(e.Segments))
	for _, s := range e.Segments {
		if s.Text != "" {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// IsEmpty reports whether no text could be recovered.
func (e ExtractedText) IsEmpty() bool {
	for _, s := range e.Segments {
		if strings.TrimSpace(s.Text) != "" {
			return false
		}
	}
	return true
}

// Section returns the concatenated text of every segment tagged with sec.
func (e ExtractedText) Section(sec Section) string {
	var parts []string
	for _, s := range e.Segments {
		if s.Section == sec && s.Text != "" {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, "\n")
}

type BaselineResult struct {
	Score                    float64  `json:"score"`
	MatchedSkills            []string `json:"matched_skills"`
	MissingSkills            []string `json:"missing_skills"`
	EstimatedExperienceYears float64  `json:"estimated_experience_years"`
}

type AugmentedResult struct {
	Score   float64 `json:"score"`
	Summary string  `json:"summary"`
}

// ScoringOutcome is the public result of one evaluation.
type ScoringOutcome struct {
	ScoreWithoutChatGPT float64  `json:"score_without_chatgpt"`
	ScoreWithChatGPT    float64  `json:"score_with_chatgpt"`
	Summary             string   `json:"summary"`
	MatchedSkills       []string `json:"matched_skills"`
	MissingSkills       []string `json:"missing_skills"`
	Degraded            bool     `json:"degraded"`
}
