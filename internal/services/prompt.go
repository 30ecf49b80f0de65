package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/resume-screener/internal/models"
)

const augmentationSystemPrompt = `You are an experienced technical recruiter. You assess how well a candidate's résumé fits a job role.
Read the résumé as a whole: judge depth of experience, seniority, and evidence of the listed skills rather than keyword presence.
Respond with a JSON object only: {"score": <number 0-100>, "summary": "<3-5 sentences on strengths, gaps and overall fit>"}.`

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// AugmentationInput carries everything the model sees about one evaluation.
type AugmentationInput struct {
	ResumeText  string
	Profile     models.RoleProfile
	Baseline    models.BaselineResult
	RoleContext string
}

// BuildAugmentationPrompt returns the system and user prompts for a résumé
// assessment.
func (pb *PromptBuilder) BuildAugmentationPrompt(in AugmentationInput) (string, string) {
	var b strings.Builder

	title := in.Profile.Title
	if title == "" {
		title = in.Profile.RoleID
	}
	fmt.Fprintf(&b, "JOB ROLE: %s (%s)\n", title, in.Profile.RoleID)
	if desc := strings.TrimSpace(in.Profile.Description); desc != "" {
		fmt.Fprintf(&b, "\nROLE DESCRIPTION:\n%s\n", desc)
	}

	fmt.Fprintf(&b, "\nREQUIRED SKILLS: %s\n", listOrNone(in.Profile.RequiredSkills))
	fmt.Fprintf(&b, "PREFERRED SKILLS: %s\n", listOrNone(in.Profile.PreferredSkills))
	if in.Profile.Education != "" {
		fmt.Fprintf(&b, "EDUCATION: %s\n", in.Profile.Education)
	}
	if in.Profile.MinExperienceYears != nil {
		fmt.Fprintf(&b, "MINIMUM EXPERIENCE: %.1f years\n", *in.Profile.MinExperienceYears)
	}

	fmt.Fprintf(&b, "\nKEYWORD MATCH (deterministic baseline):\n")
	fmt.Fprintf(&b, "- Baseline score: %.2f / 100\n", in.Baseline.Score)
	fmt.Fprintf(&b, "- Matched: %s\n", listOrNone(in.Baseline.MatchedSkills))
	fmt.Fprintf(&b, "- Missing: %s\n", listOrNone(in.Baseline.MissingSkills))
	if in.Baseline.EstimatedExperienceYears > 0 {
		fmt.Fprintf(&b, "- Stated experience: about %.0f years\n", in.Baseline.EstimatedExperienceYears)
	}

	if ctx := strings.TrimSpace(in.RoleContext); ctx != "" {
		fmt.Fprintf(&b, "\nROLE REFERENCE MATERIAL:\n%s\n", ctx)
	}

	fmt.Fprintf(&b, "\nCANDIDATE RÉSUMÉ:\n%s\n", in.ResumeText)
	b.WriteString("\nThe baseline only counts keywords. Give your own 0-100 score; it may differ from the baseline.")

	return augmentationSystemPrompt, b.String()
}

// BuildRetrievalQuery creates the query used to find role reference material.
func (pb *PromptBuilder) BuildRetrievalQuery(profile models.RoleProfile) string {
	title := profile.Title
	if title == "" {
		title = profile.RoleID
	}
	skills := append(append([]string{}, profile.RequiredSkills...), profile.PreferredSkills...)
	if len(skills) == 0 {
		return fmt.Sprintf("Job requirements and qualifications for %s", title)
	}
	return fmt.Sprintf("Job requirements and qualifications for %s: %s", title, strings.Join(skills, ", "))
}

// FormatRAGContext joins retrieved role reference chunks for the prompt.
func FormatRAGContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Reference %d (relevance %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
