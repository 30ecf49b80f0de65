package services

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"alfredoptarigan/resume-screener/internal/models"
)

var (
	pageNumberLine = regexp.MustCompile(`(?i)^(page\s*)?\d{1,3}(\s*(of|/)\s*\d{1,3})?$`)
	headingCleaner = regexp.MustCompile(`[^\p{L}& ]+`)
)

var sectionHeadings = map[string]models.Section{
	"summary":                   models.SectionSummary,
	"professional summary":      models.SectionSummary,
	"profile":                   models.SectionSummary,
	"objective":                 models.SectionSummary,
	"about me":                  models.SectionSummary,
	"experience":                models.SectionExperience,
	"work experience":           models.SectionExperience,
	"professional experience":   models.SectionExperience,
	"employment history":        models.SectionExperience,
	"work history":              models.SectionExperience,
	"education":                 models.SectionEducation,
	"academic background":       models.SectionEducation,
	"skills":                    models.SectionSkills,
	"technical skills":          models.SectionSkills,
	"key skills":                models.SectionSkills,
	"core competencies":         models.SectionSkills,
	"technologies":              models.SectionSkills,
	"projects":                  models.SectionProjects,
	"personal projects":         models.SectionProjects,
	"certifications":            models.SectionCertifications,
	"certificates":              models.SectionCertifications,
	"licenses & certifications": models.SectionCertifications,
}

// headerFooterWindow is how many lines at each end of a page are candidates
// for running headers and footers.
const headerFooterWindow = 3

// buildExtractedText normalises raw page texts and splits the result into
// section-tagged segments.
func buildExtractedText(pages []string) models.ExtractedText {
	pageLines := make([][]string, 0, len(pages))
	for _, page := range pages {
		pageLines = append(pageLines, CleanLines(page))
	}

	running := runningEdgeLines(pageLines)

	var lines []string
	for p, pl := range pageLines {
		for i, line := range pl {
			if _, ok := running[p][i]; ok {
				continue
			}
			if pageNumberLine.MatchString(line) {
				continue
			}
			lines = append(lines, line)
		}
	}

	return models.ExtractedText{
		Segments:  segmentBySection(lines),
		PageCount: len(pages),
	}
}

// CleanLines returns the non-empty, whitespace-collapsed lines of s after
// UTF-8 repair, NFC normalisation and control character removal.
func CleanLines(s string) []string {
	s = strings.ToValidUTF8(s, " ")
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\r', r == '\t', r == ' ', unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r), r == '�', unicode.Is(unicode.Cf, r):
			return -1
		}
		return r
	}, s)

	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

type edgeKey struct {
	line string
	// pos counts from the top for headers (0, 1, ...) and from the bottom for
	// footers (-1, -2, ...).
	pos int
}

// edgeKeys lists the header and footer positions line i of a page occupies.
func edgeKeys(lines []string, i int) []edgeKey {
	var keys []edgeKey
	if i < headerFooterWindow {
		keys = append(keys, edgeKey{line: lines[i], pos: i})
	}
	if fromBottom := len(lines) - i; fromBottom <= headerFooterWindow {
		keys = append(keys, edgeKey{line: lines[i], pos: -fromBottom})
	}
	return keys
}

// runningEdgeLines marks, per page, the line indexes that are running headers
// or footers: the same text at the same edge position on every page of a
// two-page document, or on at least half the pages of a longer one. Section
// headings are never marked. Single-page documents have no running headers.
func runningEdgeLines(pages [][]string) []map[int]struct{} {
	drop := make([]map[int]struct{}, len(pages))
	for i := range drop {
		drop[i] = make(map[int]struct{})
	}
	if len(pages) < 2 {
		return drop
	}

	counts := make(map[edgeKey]int)
	for _, lines := range pages {
		seen := make(map[edgeKey]struct{})
		for i := range lines {
			for _, k := range edgeKeys(lines, i) {
				if _, ok := seen[k]; ok {
					continue
				}
				seen[k] = struct{}{}
				counts[k]++
			}
		}
	}

	threshold := len(pages)
	if len(pages) >= 3 {
		threshold = max((len(pages)+1)/2, 2)
	}

	for p, lines := range pages {
		for i, line := range lines {
			if _, heading := headingSection(line); heading {
				continue
			}
			for _, k := range edgeKeys(lines, i) {
				if counts[k] >= threshold {
					drop[p][i] = struct{}{}
					break
				}
			}
		}
	}
	return drop
}

func segmentBySection(lines []string) []models.Segment {
	var segments []models.Segment
	current := models.Segment{Section: models.SectionOther}
	var buf []string

	flush := func() {
		if len(buf) > 0 {
			current.Text = strings.Join(buf, "\n")
			segments = append(segments, current)
		}
		buf = nil
	}

	for _, line := range lines {
		if sec, ok := headingSection(line); ok {
			flush()
			current = models.Segment{Section: sec}
		}
		buf = append(buf, line)
	}
	flush()

	return segments
}

func headingSection(line string) (models.Section, bool) {
	if len(line) > 40 {
		return "", false
	}
	key := strings.ToLower(headingCleaner.ReplaceAllString(line, ""))
	key = strings.Join(strings.Fields(key), " ")
	sec, ok := sectionHeadings[key]
	return sec, ok
}
