package services

import (
	"math"
	"regexp"
	"sort"
	"strconv"

	"alfredoptarigan/resume-screener/internal/models"
)

const (
	// maxMissingRequiredPenalty is split evenly across the required skills.
	maxMissingRequiredPenalty = 40.0
	defaultKeywordWeight      = 1.0
	maxPlausibleYears         = 50.0
)

var experienceYearsPattern = regexp.MustCompile(`(?i)(\d{1,2}(?:\.\d)?)\s*\+?\s*(?:years?|yrs?)\b`)

// BaselineScorer produces the deterministic "without ChatGPT" score. It makes
// no external calls and the same inputs always give a bit-identical result.
type BaselineScorer interface {
	Score(text models.ExtractedText, profile models.RoleProfile) models.BaselineResult
}

type baselineScorer struct{}

func NewBaselineScorer() BaselineScorer {
	return &baselineScorer{}
}

type scoredTerm struct {
	name     string
	weight   float64
	required bool
	skill    bool
}

// Score implements BaselineScorer.
func (b *baselineScorer) Score(text models.ExtractedText, profile models.RoleProfile) models.BaselineResult {
	terms := collectTerms(profile)
	required := requiredNames(terms)

	if len(profile.RequiredSkills) == 0 && len(profile.PreferredSkills) == 0 {
		return models.BaselineResult{
			Score:         100,
			MatchedSkills: []string{},
			MissingSkills: []string{},
		}
	}

	raw := text.Text()
	if text.IsEmpty() {
		return models.BaselineResult{
			Score:         0,
			MatchedSkills: []string{},
			MissingSkills: required,
		}
	}

	index := newTokenIndex(raw)
	matched := []string{}
	missing := []string{}
	var maxWeight, achieved float64
	var requiredCount, missingRequired int

	for _, term := range terms {
		maxWeight += term.weight
		present := false
		for _, variant := range skillVariants(term.name, profile.Synonyms) {
			if index.containsPhrase(variant) {
				present = true
				break
			}
		}

		if present {
			achieved += term.weight
		}
		if term.skill && present {
			matched = append(matched, term.name)
		}
		if term.required {
			requiredCount++
			if !present {
				missingRequired++
				missing = append(missing, term.name)
			}
		}
	}

	normalized := 100.0
	if maxWeight > 0 {
		normalized = 100 * achieved / maxWeight
	}

	penalty := 0.0
	if requiredCount > 0 {
		penalty = maxMissingRequiredPenalty * float64(missingRequired) / float64(requiredCount)
	}

	sort.Strings(matched)
	sort.Strings(missing)

	return models.BaselineResult{
		Score:                    roundScore(clampScore(normalized - penalty)),
		MatchedSkills:            matched,
		MissingSkills:            missing,
		EstimatedExperienceYears: estimateExperienceYears(raw),
	}
}

// collectTerms merges required skills, preferred skills and extra weighted
// keywords into one ordered, de-duplicated list. The order is fixed so that the
// floating point sums are reproducible.
func collectTerms(profile models.RoleProfile) []scoredTerm {
	weights := make(map[string]float64, len(profile.KeywordWeights))
	for k, w := range profile.KeywordWeights {
		weights[canonicalKey(k)] = w
	}
	weightOf := func(key string) float64 {
		w, ok := weights[key]
		if !ok {
			return defaultKeywordWeight
		}
		return math.Max(w, 0)
	}

	seen := make(map[string]struct{})
	var terms []scoredTerm
	add := func(name string, required, skill bool) {
		key := canonicalKey(name)
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		terms = append(terms, scoredTerm{name: name, weight: weightOf(key), required: required, skill: skill})
	}

	for _, s := range profile.RequiredSkills {
		add(s, true, true)
	}
	for _, s := range profile.PreferredSkills {
		add(s, false, true)
	}

	extra := make([]string, 0, len(profile.KeywordWeights))
	for k := range profile.KeywordWeights {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	for _, k := range extra {
		add(k, false, false)
	}

	return terms
}

func requiredNames(terms []scoredTerm) []string {
	out := []string{}
	for _, t := range terms {
		if t.required {
			out = append(out, t.name)
		}
	}
	sort.Strings(out)
	return out
}

func estimateExperienceYears(text string) float64 {
	best := 0.0
	for _, m := range experienceYearsPattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || v > maxPlausibleYears {
			continue
		}
		best = math.Max(best, v)
	}
	return best
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(100, math.Max(0, v))
}

func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
