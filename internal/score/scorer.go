// Package score combines per-criterion assessments into the final weighted
// score and eligibility category.
package score

import (
	"fmt"
	"math"

	"visascope/internal/assess"
	"visascope/internal/visatype"
)

// Category is the four-step eligibility verdict.
type Category string

const (
	CategoryStrongCandidate      Category = "strong_candidate"
	CategoryModerateFit          Category = "moderate_fit"
	CategoryConsiderAlternatives Category = "consider_alternatives"
	CategoryNotRecommended       Category = "not_recommended"
)

// Category thresholds are fixed, not configurable per visa type.
const (
	strongThreshold   = 75
	moderateThreshold = 60
	considerThreshold = 40
)

// CategoryFor maps a capped final score to its category. Pure and total.
func CategoryFor(finalScore int) Category {
	switch {
	case finalScore >= strongThreshold:
		return CategoryStrongCandidate
	case finalScore >= moderateThreshold:
		return CategoryModerateFit
	case finalScore >= considerThreshold:
		return CategoryConsiderAlternatives
	default:
		return CategoryNotRecommended
	}
}

// Result is the scored portion of an evaluation: the capped weighted score,
// the per-dimension breakdown, and the category.
type Result struct {
	FinalScore int            `json:"finalScore"`
	Breakdown  map[string]int `json:"breakdown"`
	Category   Category       `json:"category"`
}

// Score computes the weighted sum of the five dimension scores, rounds it,
// applies the visa type's cap, and assigns the category. Every dimension
// carrying weight must be present in the assessments.
func Score(assessments []assess.CriterionAssessment, vt *visatype.VisaType) (*Result, error) {
	byDim := make(map[string]int, len(assessments))
	for _, a := range assessments {
		byDim[a.Dimension] = a.Score
	}

	weights := map[string]int{
		assess.DimExperience:      vt.Weights.Experience,
		assess.DimEducation:       vt.Weights.Education,
		assess.DimSpecialization:  vt.Weights.Specialization,
		assess.DimLanguage:        vt.Weights.Language,
		assess.DimDocumentQuality: vt.Weights.DocumentQuality,
	}

	breakdown := make(map[string]int, len(weights))
	var weighted float64
	for _, dim := range assess.Dimensions() {
		s, ok := byDim[dim]
		if !ok {
			return nil, fmt.Errorf("assessment missing dimension %q", dim)
		}
		breakdown[dim] = s
		weighted += float64(s) * float64(weights[dim]) / 100
	}

	finalScore := int(math.Round(weighted))
	if finalScore > vt.MaxScoreCap {
		finalScore = vt.MaxScoreCap
	}
	if finalScore < 0 {
		finalScore = 0
	}

	return &Result{
		FinalScore: finalScore,
		Breakdown:  breakdown,
		Category:   CategoryFor(finalScore),
	}, nil
}
