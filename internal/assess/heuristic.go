// internal/assess/heuristic.go
package assess

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"visascope/internal/common/logger"
	"visascope/internal/extract"
	"visascope/internal/visatype"
)

// Canonical specialization match constants, shared by both evaluator paths.
const (
	specExactScore   = 100
	specPartialScore = 75
	specNoneScore    = 45
)

var (
	yearsPattern = regexp.MustCompile(`(\d+)\s*\+?\s*(?:years?|yrs?)`)
	cefrPattern  = regexp.MustCompile(`\b([a-cA-C][1-2])\b`)
)

// specializationVocabulary is the fixed lookup list for the deterministic
// path, checked in order so the first hit wins.
var specializationVocabulary = []string{
	"technology",
	"software",
	"engineering",
	"healthcare",
	"medicine",
	"nursing",
	"finance",
	"accounting",
	"education",
	"research",
	"science",
	"construction",
	"hospitality",
	"agriculture",
	"law",
	"business",
	"arts",
}

// HeuristicAssessor is the deterministic, self-contained evaluator used when
// the oracle is disabled or fails. It extracts coarse profile facts with
// lexical pattern matching and scores each dimension with fixed monotonic
// functions.
type HeuristicAssessor struct {
	logger logger.Logger
}

func NewHeuristicAssessor(log logger.Logger) *HeuristicAssessor {
	return &HeuristicAssessor{
		logger: log.WithFields(map[string]interface{}{"assessor": "heuristic"}),
	}
}

func (h *HeuristicAssessor) Assess(_ context.Context, applicantText string, docs []extract.ParsedDocument, vt *visatype.VisaType) (*Result, error) {
	profile := ParseProfile(applicantText)
	parsed := parsedDocs(docs)

	assessments := []CriterionAssessment{
		{
			Dimension: DimExperience,
			Score:     ExperienceScore(profile.ExperienceYears, vt.MinExperienceYears),
		},
		{
			Dimension: DimEducation,
			Score:     EducationScore(profile.Education, vt.MinEducationLevel),
		},
		{
			Dimension: DimSpecialization,
			Score:     SpecializationScore(profile.Specialization, vt),
		},
		{
			Dimension: DimLanguage,
			Score:     LanguageScore(profile.Language, vt.LanguageRequirement),
		},
		{
			Dimension: DimDocumentQuality,
			Score:     documentQualityScore(parsed, vt),
		},
	}

	h.logger.Debug("heuristic assessment complete", map[string]interface{}{
		"experienceYears": profile.ExperienceYears,
		"education":       profile.Education,
		"specialization":  profile.Specialization,
		"language":        profile.Language,
	})

	return &Result{Assessments: assessments, Profile: profile}, nil
}

// ParseProfile extracts coarse applicant facts from free text. Defaults per
// the evaluation contract: bachelor education, b2 language, zero years.
func ParseProfile(text string) Profile {
	lower := strings.ToLower(text)

	profile := Profile{
		ExperienceYears: 0,
		Education:       visatype.EducationBachelor,
		Language:        visatype.CEFRB2,
	}

	if m := yearsPattern.FindStringSubmatch(lower); m != nil {
		if years, err := strconv.Atoi(m[1]); err == nil {
			profile.ExperienceYears = years
		}
	}

	switch {
	case strings.Contains(lower, "phd") || strings.Contains(lower, "doctorate"):
		profile.Education = visatype.EducationPhD
	case strings.Contains(lower, "master"):
		profile.Education = visatype.EducationMaster
	case strings.Contains(lower, "bachelor"):
		profile.Education = visatype.EducationBachelor
	case strings.Contains(lower, "high school"):
		profile.Education = visatype.EducationHighSchool
	}

	for _, spec := range specializationVocabulary {
		if strings.Contains(lower, spec) {
			profile.Specialization = spec
			break
		}
	}

	if m := cefrPattern.FindStringSubmatch(lower); m != nil {
		profile.Language = visatype.CEFRLevel(strings.ToLower(m[1]))
	}

	return profile
}

// ExperienceScore: below the minimum the score is penalized proportionally
// and stays under 50; at the minimum it is exactly 50; it saturates at 100
// once the applicant is 10 or more years past the minimum.
func ExperienceScore(years, minRequired int) int {
	if minRequired <= 0 || years >= minRequired {
		above := years - minRequired
		if minRequired <= 0 {
			above = years
		}
		if above > 10 {
			above = 10
		}
		return int(math.Round(50 + float64(above)/10*50))
	}
	return int(math.Round(float64(years) / float64(minRequired) * 40))
}

var educationBaseline = map[visatype.EducationLevel]int{
	visatype.EducationHighSchool: 40,
	visatype.EducationBachelor:   65,
	visatype.EducationMaster:     85,
	visatype.EducationPhD:        100,
}

// EducationScore: meeting or exceeding the requirement yields the
// applicant's own baseline; falling short scales the baseline ratio into a
// sub-50 score.
func EducationScore(level, required visatype.EducationLevel) int {
	userBase, ok := educationBaseline[level]
	if !ok {
		userBase = educationBaseline[visatype.EducationBachelor]
	}
	reqBase, ok := educationBaseline[required]
	if !ok || reqBase == 0 {
		return userBase
	}
	if level.Rank() >= required.Rank() {
		return userBase
	}
	return int(math.Round(float64(userBase) / float64(reqBase) * 50))
}

// SpecializationScore: exact > partial > none, with one canonical constant
// set for both evaluator paths.
func SpecializationScore(spec string, vt *visatype.VisaType) int {
	switch vt.AllowsSpecialization(spec) {
	case "exact":
		return specExactScore
	case "partial":
		return specPartialScore
	default:
		return specNoneScore
	}
}

// LanguageScore: 80 at the required level, +5 per level above (capped at
// 100), -20 per level below (floored at 30).
func LanguageScore(level, required visatype.CEFRLevel) int {
	gap := level.Rank() - required.Rank()
	switch {
	case gap == 0:
		return 80
	case gap > 0:
		return clamp(80+5*gap, 0, 100)
	default:
		return clamp(80+20*gap, 30, 100)
	}
}

// documentQualityScore combines a completeness flag with a count bonus:
// no parsed documents at all scores 40; otherwise 70 when every required
// kind is present, 55 when not, plus +10 for three or more parsed documents
// or +15 for five or more.
func documentQualityScore(parsed []extract.ParsedDocument, vt *visatype.VisaType) int {
	if len(parsed) == 0 {
		return 40
	}

	present := make(map[string]bool, len(parsed))
	for _, d := range parsed {
		present[strings.ToLower(d.Kind)] = true
	}

	score := 70
	for _, kind := range vt.RequiredKinds() {
		if !present[kind] {
			score = 55
			break
		}
	}

	switch {
	case len(parsed) >= 5:
		score += 15
	case len(parsed) >= 3:
		score += 10
	}

	return clamp(score, 0, 100)
}

// DescribeExperience renders the applicant's stat for insight sentences.
func DescribeExperience(years int) string {
	if years == 1 {
		return "1 year"
	}
	return fmt.Sprintf("%d years", years)
}
