package services

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"
)

// Tokens keep '+', '#' and inner dots so c++, c# and node.js survive.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}+#.]*`)

var builtinAliases = map[string][]string{
	"postgres":   {"postgresql"},
	"postgresql": {"postgres"},
	"k8s":        {"kubernetes"},
	"kubernetes": {"k8s"},
	"golang":     {"go"},
	"go":         {"golang"},
	"js":         {"javascript"},
	"javascript": {"js"},
	"ts":         {"typescript"},
	"typescript": {"ts"},
	"ci cd":      {"cicd"},
	"cicd":       {"ci cd"},
	"rest":       {"rest api"},
	"rest api":   {"rest"},
	"aws":        {"amazon web services"},
	"gcp":        {"google cloud"},
	"ml":         {"machine learning"},
}

// Tokenize case-folds and stems s into an ordered token list.
func Tokenize(s string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(s), -1)
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimRight(t, ".")
		if t == "" {
			continue
		}
		out = append(out, stemToken(t))
	}
	return out
}

func stemToken(t string) string {
	for _, r := range t {
		if !unicode.IsLetter(r) {
			return t
		}
	}
	// Short tokens are mostly acronyms (go, js, ml); stemming only mangles them.
	if utf8.RuneCountInString(t) <= 3 {
		return t
	}
	return english.Stem(t, false)
}

// canonicalKey folds a skill name for equality checks between the profile's
// skill lists and its weight map.
func canonicalKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// tokenIndex is a résumé's token stream prepared for whole-phrase lookups.
type tokenIndex struct {
	joined string
}

func newTokenIndex(text string) tokenIndex {
	return tokenIndex{joined: " " + strings.Join(Tokenize(text), " ") + " "}
}

func (ti tokenIndex) containsPhrase(phrase string) bool {
	tokens := Tokenize(phrase)
	if len(tokens) == 0 {
		return false
	}
	return strings.Contains(ti.joined, " "+strings.Join(tokens, " ")+" ")
}

// skillVariants lists the skill itself, its profile synonyms and built-in aliases.
func skillVariants(skill string, synonyms map[string][]string) []string {
	key := canonicalKey(skill)
	variants := []string{skill}
	for name, aliases := range synonyms {
		if canonicalKey(name) == key {
			variants = append(variants, aliases...)
		}
	}
	variants = append(variants, builtinAliases[normalizePhrase(skill)]...)
	return variants
}

// normalizePhrase lowercases and joins the raw (unstemmed) tokens of s.
func normalizePhrase(s string) string {
	raw := tokenPattern.FindAllString(strings.ToLower(s), -1)
	for i, t := range raw {
		raw[i] = strings.TrimRight(t, ".")
	}
	return strings.Join(raw, " ")
}
