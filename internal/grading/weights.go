package grading

import (
	"math"
	"strings"
)

// Weights are the component fractions applied to percentage scores.
type Weights struct {
	WrittenWorks        float64 `json:"ww"`
	PerformanceTasks    float64 `json:"pt"`
	QuarterlyAssessment float64 `json:"qa"`
}

// Sum returns the total of the three fractions.
func (w Weights) Sum() float64 {
	return w.WrittenWorks + w.PerformanceTasks + w.QuarterlyAssessment
}

// Balanced reports whether the weights add up to 100% within a hundredth of a percent.
func (w Weights) Balanced() bool {
	return math.Abs(w.Sum()-1) < 0.0001
}

var (
	// SkillsWeights apply to MAPEH and the TLE/EPP family.
	SkillsWeights = Weights{WrittenWorks: 0.20, PerformanceTasks: 0.60, QuarterlyAssessment: 0.20}
	// STEMWeights apply to Mathematics and Science.
	STEMWeights = Weights{WrittenWorks: 0.40, PerformanceTasks: 0.40, QuarterlyAssessment: 0.20}
	// DefaultWeights apply to languages, Araling Panlipunan and EsP.
	DefaultWeights = Weights{WrittenWorks: 0.30, PerformanceTasks: 0.50, QuarterlyAssessment: 0.20}
)

type weightRule struct {
	patterns []string
	weights  Weights
}

// weightRules are evaluated in order; the first rule with a pattern contained in the
// normalized subject name wins.
var weightRules = []weightRule{
	{
		patterns: []string{
			"mapeh", "music", "arts", "pe", "health", "epp", "tle",
			"technology and livelihood education",
			"edukasyong pantahanan at pangkabuhayan",
		},
		weights: SkillsWeights,
	},
	{
		patterns: []string{"math", "mathematics", "science"},
		weights:  STEMWeights,
	},
}

// SubjectWeightDefaults returns the default component weights for a subject name.
// Matching is by substring, so names such as "Language Arts" land in the skills group.
func SubjectWeightDefaults(subject string) Weights {
	name := strings.ToLower(strings.TrimSpace(subject))
	for _, rule := range weightRules {
		for _, pattern := range rule.patterns {
			if strings.Contains(name, pattern) {
				return rule.weights
			}
		}
	}
	return DefaultWeights
}
