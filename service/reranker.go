package service

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PhraseRules holds the three static phrase-weight tables the reranker scans.
// Weights are signed integers; a phrase contained in the lowered comment text
// contributes its weight once per table entry, so nested and overlapping
// phrases all count.
type PhraseRules struct {
	Positive map[string]int `yaml:"positive"`
	Negative map[string]int `yaml:"negative"`
	Neutral  map[string]int `yaml:"neutral"`
}

// LoadPhraseRules reads a rules file, falling back to the built-in tables
// when path is empty.
func LoadPhraseRules(path string) (*PhraseRules, error) {
	if path == "" {
		return DefaultPhraseRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rules PhraseRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, err
	}
	return &rules, nil
}

// Reranker adjusts a model score using lexical signals found in the lead's
// comments. It holds no mutable state; Rerank is safe for concurrent use.
type Reranker struct {
	rules *PhraseRules
}

func NewReranker(rules *PhraseRules) *Reranker {
	return &Reranker{rules: rules}
}

// Rerank applies the phrase-weight adjustment to initialScore and clamps the
// result into [0,100]. Empty comments leave the score untouched. Matching is
// case-insensitive substring containment, deliberately not tokenized so that
// multi-word idioms ("ready to purchase") register as single signals.
func (r *Reranker) Rerank(initialScore float64, comments string) float64 {
	if comments == "" {
		return initialScore
	}

	lowered := strings.ToLower(comments)

	adjustment := 0
	for _, table := range []map[string]int{r.rules.Positive, r.rules.Negative, r.rules.Neutral} {
		for phrase, weight := range table {
			if strings.Contains(lowered, strings.ToLower(phrase)) {
				adjustment += weight
			}
		}
	}

	adjusted := initialScore + float64(adjustment)
	if adjusted < 0 {
		return 0
	}
	if adjusted > 100 {
		return 100
	}
	return adjusted
}

// DefaultPhraseRules returns the built-in phrase tables.
func DefaultPhraseRules() *PhraseRules {
	return &PhraseRules{
		Positive: map[string]int{
			"urgent":                   10,
			"need immediately":         15,
			"ready to purchase":        20,
			"pre-approved loan":        15,
			"cash buyer":               20,
			"looking to close quickly": 15,
			"very interested":          10,
			"perfect match":            10,
			"dream home":               8,
			"must have":                12,
			"excited":                  5,
			"ideal":                    5,
			"love":                     5,
			"perfect":                  8,
			"asap":                     12,
			"immediately":              10,
			"today":                    8,
			"tomorrow":                 5,
			"this week":                5,
			"approved":                 10,
			"financing ready":          15,
			"down payment ready":       15,
			"serious buyer":            15,
			"ready to move":            10,
			"ready to sign":            20,
			"ready to commit":          15,
			"ready to make an offer":   20,
		},
		Negative: map[string]int{
			"just browsing":     -15,
			"not sure yet":      -10,
			"might consider":    -8,
			"too expensive":     -12,
			"not interested":    -20,
			"just checking":     -10,
			"maybe next year":   -15,
			"not ready":         -15,
			"need to think":     -10,
			"too small":         -5,
			"too big":           -5,
			"maybe":             -5,
			"possibly":          -5,
			"someday":           -10,
			"in the future":     -8,
			"not now":           -12,
			"just looking":      -10,
			"just curious":      -10,
			"out of budget":     -15,
			"too far":           -8,
			"too close":         -5,
			"not what i want":   -12,
			"not what i need":   -12,
			"not convinced":     -10,
			"need more options": -8,
			"need more time":    -10,
			"need to discuss":   -5,
		},
		Neutral: map[string]int{
			"information":    2,
			"details":        2,
			"question":       0,
			"wondering":      -2,
			"considering":    0,
			"thinking about": 0,
			"interested in":  3,
			"looking for":    2,
			"searching":      2,
			"exploring":      0,
			"options":        0,
			"alternatives":   -2,
			"features":       2,
			"specifications": 2,
			"price":          0,
			"cost":           0,
			"budget":         0,
			"location":       0,
			"area":           0,
			"neighborhood":   0,
			"size":           0,
			"space":          0,
			"rooms":          0,
			"bedrooms":       0,
			"bathrooms":      0,
		},
	}
}
