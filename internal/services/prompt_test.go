package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"alfredoptarigan/resume-screener/internal/models"
)

func TestBuildAugmentationPrompt(t *testing.T) {
	years := 3.0
	system, user := NewPromptBuilder().BuildAugmentationPrompt(AugmentationInput{
		ResumeText: "Jane Doe. Go engineer.",
		Profile: models.RoleProfile{
			RoleID:             "backend-engineer",
			Title:              "Backend Engineer",
			RequiredSkills:     []string{"Go", "PostgreSQL"},
			MinExperienceYears: &years,
		},
		Baseline: models.BaselineResult{
			Score:                    60,
			MatchedSkills:            []string{"Go"},
			MissingSkills:            []string{"PostgreSQL"},
			EstimatedExperienceYears: 5,
		},
		RoleContext: "--- Reference 1 ---\nOn-call rotation",
	})

	assert.Contains(t, system, `"score"`)
	assert.Contains(t, user, "JOB ROLE: Backend Engineer (backend-engineer)")
	assert.Contains(t, user, "PREFERRED SKILLS: none")
	assert.Contains(t, user, "MINIMUM EXPERIENCE: 3.0 years")
	assert.Contains(t, user, "- Missing: PostgreSQL")
	assert.Contains(t, user, "about 5 years")
	assert.Contains(t, user, "On-call rotation")
	assert.Contains(t, user, "Jane Doe. Go engineer.")
}

func TestBuildRetrievalQuery(t *testing.T) {
	pb := NewPromptBuilder()

	assert.Equal(t, "Job requirements and qualifications for data-scientist",
		pb.BuildRetrievalQuery(models.RoleProfile{RoleID: "data-scientist"}))
	assert.Equal(t, "Job requirements and qualifications for Data Scientist: Python, Spark",
		pb.BuildRetrievalQuery(models.RoleProfile{RoleID: "ds", Title: "Data Scientist", RequiredSkills: []string{"Python"}, PreferredSkills: []string{"Spark"}}))
}

func TestFormatRAGContext(t *testing.T) {
	assert.Equal(t, "", FormatRAGContext(nil))
	assert.Equal(t, "--- Reference 1 (relevance 0.50) ---\nhello",
		FormatRAGContext([]SearchResult{{Score: 0.5, Text: " hello "}}))
}
