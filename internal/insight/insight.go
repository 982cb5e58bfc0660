// Package insight derives the human-readable portion of an evaluation:
// strengths, improvement areas, recommended next steps, and a one-sentence
// summary. Rule-based; missing inputs are treated as absent evidence.
package insight

import (
	"fmt"
	"strings"

	"visascope/internal/assess"
	"visascope/internal/score"
	"visascope/internal/visatype"
)

// Insights is the generated narrative attached to an evaluation result.
type Insights struct {
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	NextSteps    []string `json:"nextSteps"`
	Summary      string   `json:"summary"`
	Reasoning    string   `json:"reasoning"`
}

// Per-dimension high-water thresholds above which a dimension counts as a
// strength, and the shared low-water threshold below which it needs work.
var highWater = map[string]int{
	assess.DimExperience:      80,
	assess.DimEducation:       85,
	assess.DimSpecialization:  90,
	assess.DimLanguage:        80,
	assess.DimDocumentQuality: 80,
}

const lowWater = 55

// Generate builds the insights from the scored breakdown and profile facts.
func Generate(breakdown map[string]int, profile assess.Profile, vt *visatype.VisaType, finalScore int, category score.Category) *Insights {
	ins := &Insights{}

	for _, dim := range assess.Dimensions() {
		s, ok := breakdown[dim]
		if !ok {
			continue
		}
		if s >= highWater[dim] {
			ins.Strengths = append(ins.Strengths, strengthSentence(dim, profile))
		}
		if s < lowWater {
			ins.Improvements = append(ins.Improvements, improvementSentence(dim, vt))
		}
	}

	ins.NextSteps = nextSteps(finalScore, vt)
	ins.Summary = summarySentence(finalScore, category, vt)
	ins.Reasoning = reasoningText(breakdown, vt)

	return ins
}

func strengthSentence(dim string, profile assess.Profile) string {
	switch dim {
	case assess.DimExperience:
		return fmt.Sprintf("Your %s of professional experience is a significant asset for this visa.", assess.DescribeExperience(profile.ExperienceYears))
	case assess.DimEducation:
		return fmt.Sprintf("Your %s qualification meets or exceeds the academic requirement.", educationLabel(profile.Education))
	case assess.DimSpecialization:
		if profile.Specialization != "" {
			return fmt.Sprintf("Your background in %s matches the visa's targeted fields.", profile.Specialization)
		}
		return "Your professional field matches the visa's targeted specializations."
	case assess.DimLanguage:
		return fmt.Sprintf("Your %s language level satisfies the proficiency requirement.", strings.ToUpper(string(profile.Language)))
	default:
		return "Your supporting documents give strong evidence for your application."
	}
}

func improvementSentence(dim string, vt *visatype.VisaType) string {
	switch dim {
	case assess.DimExperience:
		return fmt.Sprintf("This visa expects at least %d years of relevant experience.", vt.MinExperienceYears)
	case assess.DimEducation:
		return fmt.Sprintf("This visa requires a %s or higher.", educationLabel(vt.MinEducationLevel))
	case assess.DimSpecialization:
		return fmt.Sprintf("Eligible specializations are: %s.", strings.Join(vt.AllowedSpecializations, ", "))
	case assess.DimLanguage:
		return fmt.Sprintf("Language proficiency of %s or better is required.", strings.ToUpper(string(vt.LanguageRequirement)))
	default:
		return "Upload the required supporting documents to strengthen the assessment."
	}
}

// nextSteps selects one of three fixed tiers by final score and always ends
// with the visa type's official reference link.
func nextSteps(finalScore int, vt *visatype.VisaType) []string {
	var steps []string
	switch {
	case finalScore >= 75:
		steps = []string{
			"Prepare your full application package.",
			"Schedule a consultation with an immigration attorney to review your case.",
		}
	case finalScore >= 60:
		steps = []string{
			"Address the improvement areas above before applying.",
			"Consider alternative visa categories as a backup.",
		}
	default:
		steps = []string{
			"Build the missing qualifications before reapplying.",
			"Explore alternative visa categories better suited to your profile.",
		}
	}
	if vt.ReferenceURL != "" {
		steps = append(steps, fmt.Sprintf("Review the official requirements: %s", vt.ReferenceURL))
	}
	return steps
}

func summarySentence(finalScore int, category score.Category, vt *visatype.VisaType) string {
	switch category {
	case score.CategoryStrongCandidate:
		return fmt.Sprintf("With a score of %d/100, you are a strong candidate for the %s.", finalScore, vt.Name)
	case score.CategoryModerateFit:
		return fmt.Sprintf("With a score of %d/100, you are a moderate fit for the %s with some gaps to close.", finalScore, vt.Name)
	case score.CategoryConsiderAlternatives:
		return fmt.Sprintf("With a score of %d/100, the %s is a stretch; alternative routes may serve you better.", finalScore, vt.Name)
	default:
		return fmt.Sprintf("With a score of %d/100, the %s is not recommended for your current profile.", finalScore, vt.Name)
	}
}

func reasoningText(breakdown map[string]int, vt *visatype.VisaType) string {
	weights := map[string]int{
		assess.DimExperience:      vt.Weights.Experience,
		assess.DimEducation:       vt.Weights.Education,
		assess.DimSpecialization:  vt.Weights.Specialization,
		assess.DimLanguage:        vt.Weights.Language,
		assess.DimDocumentQuality: vt.Weights.DocumentQuality,
	}

	parts := make([]string, 0, len(breakdown))
	for _, dim := range assess.Dimensions() {
		if s, ok := breakdown[dim]; ok {
			parts = append(parts, fmt.Sprintf("%s %d (weight %d%%)", dim, s, weights[dim]))
		}
	}
	return "Dimension scores: " + strings.Join(parts, ", ") + "."
}

func educationLabel(level visatype.EducationLevel) string {
	switch level {
	case visatype.EducationHighSchool:
		return "high school diploma"
	case visatype.EducationBachelor:
		return "bachelor's degree"
	case visatype.EducationMaster:
		return "master's degree"
	case visatype.EducationPhD:
		return "doctorate"
	default:
		return string(level)
	}
}
