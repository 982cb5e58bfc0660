// internal/assess/heuristic_test.go
package assess

import (
	"context"
	"testing"

	"visascope/internal/common/logger"
	"visascope/internal/extract"
	"visascope/internal/visatype"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVisaType() *visatype.VisaType {
	return &visatype.VisaType{
		Country:                "US",
		Code:                   "h1b",
		Name:                   "H-1B Specialty Occupation",
		MinExperienceYears:     5,
		MinEducationLevel:      visatype.EducationBachelor,
		AllowedSpecializations: []string{"software", "engineering"},
		LanguageRequirement:    visatype.CEFRB2,
		Weights: visatype.ScoringWeights{
			Experience:      25,
			Education:       25,
			Specialization:  20,
			Language:        15,
			DocumentQuality: 15,
		},
		MaxScoreCap: 85,
		RequiredDocuments: []visatype.RequiredDocument{
			{Kind: "resume", Required: true},
			{Kind: "degree", Required: true},
		},
		ReferenceURL: "https://example.gov/h1b",
	}
}

// ==========================
// Profile parsing
// ==========================

func TestParseProfile_FullText(t *testing.T) {
	p := ParseProfile("I have 8 years of software development experience, " +
		"hold a master degree and speak English at C1 level.")

	assert.Equal(t, 8, p.ExperienceYears)
	assert.Equal(t, visatype.EducationMaster, p.Education)
	assert.Equal(t, "software", p.Specialization)
	assert.Equal(t, visatype.CEFRC1, p.Language)
}

func TestParseProfile_Defaults(t *testing.T) {
	p := ParseProfile("I would like to move abroad.")

	assert.Equal(t, 0, p.ExperienceYears)
	assert.Equal(t, visatype.EducationBachelor, p.Education)
	assert.Equal(t, "", p.Specialization)
	assert.Equal(t, visatype.CEFRB2, p.Language)
}

func TestParseProfile_YearsVariants(t *testing.T) {
	tests := []struct {
		text  string
		years int
	}{
		{"12 years in nursing", 12},
		{"3+ years experience", 3},
		{"7 yrs of practice", 7},
		{"1 year as a teacher", 1},
	}
	for _, tt := range tests {
		p := ParseProfile(tt.text)
		assert.Equal(t, tt.years, p.ExperienceYears, tt.text)
	}
}

func TestParseProfile_DegreePrecedence(t *testing.T) {
	// The highest mentioned degree wins.
	p := ParseProfile("bachelor degree followed by a phd")
	assert.Equal(t, visatype.EducationPhD, p.Education)

	p = ParseProfile("master after my bachelor")
	assert.Equal(t, visatype.EducationMaster, p.Education)

	p = ParseProfile("finished high school only")
	assert.Equal(t, visatype.EducationHighSchool, p.Education)
}

// ==========================
// Dimension scoring
// ==========================

func TestExperienceScore(t *testing.T) {
	// Exactly at the minimum scores 50.
	assert.Equal(t, 50, ExperienceScore(5, 5))
	// Saturates at 100 once 10 years past the minimum.
	assert.Equal(t, 100, ExperienceScore(15, 5))
	assert.Equal(t, 100, ExperienceScore(30, 5))
	// Between minimum and saturation the score climbs linearly.
	assert.Equal(t, 75, ExperienceScore(10, 5))
	// Below the minimum stays under 50.
	assert.Equal(t, 24, ExperienceScore(3, 5))
	assert.Equal(t, 0, ExperienceScore(0, 5))
	// No minimum means every applicant starts at or above 50.
	assert.Equal(t, 50, ExperienceScore(0, 0))
	assert.Equal(t, 100, ExperienceScore(10, 0))
}

func TestEducationScore(t *testing.T) {
	// Meeting or exceeding the requirement yields the applicant's baseline.
	assert.Equal(t, 65, EducationScore(visatype.EducationBachelor, visatype.EducationBachelor))
	assert.Equal(t, 85, EducationScore(visatype.EducationMaster, visatype.EducationBachelor))
	assert.Equal(t, 100, EducationScore(visatype.EducationPhD, visatype.EducationHighSchool))
	// Falling short scales the ratio into a sub-50 score.
	assert.Equal(t, 24, EducationScore(visatype.EducationHighSchool, visatype.EducationMaster))
	assert.Equal(t, 38, EducationScore(visatype.EducationBachelor, visatype.EducationMaster))
}

func TestSpecializationScore(t *testing.T) {
	vt := testVisaType()

	assert.Equal(t, 100, SpecializationScore("software", vt))
	assert.Equal(t, 75, SpecializationScore("software development", vt))
	assert.Equal(t, 45, SpecializationScore("nursing", vt))
	assert.Equal(t, 45, SpecializationScore("", vt))
}

func TestLanguageScore(t *testing.T) {
	// At the requirement.
	assert.Equal(t, 80, LanguageScore(visatype.CEFRB2, visatype.CEFRB2))
	// Above: +5 per level, capped at 100.
	assert.Equal(t, 85, LanguageScore(visatype.CEFRC1, visatype.CEFRB2))
	assert.Equal(t, 90, LanguageScore(visatype.CEFRC2, visatype.CEFRB2))
	assert.Equal(t, 100, LanguageScore(visatype.CEFRC2, visatype.CEFRA1))
	// Below: -20 per level, floored at 30.
	assert.Equal(t, 60, LanguageScore(visatype.CEFRB1, visatype.CEFRB2))
	assert.Equal(t, 40, LanguageScore(visatype.CEFRA2, visatype.CEFRB2))
	assert.Equal(t, 30, LanguageScore(visatype.CEFRA1, visatype.CEFRB2))
}

func TestDocumentQualityScore(t *testing.T) {
	vt := testVisaType()

	parsed := func(kinds ...string) []extract.ParsedDocument {
		var out []extract.ParsedDocument
		for _, k := range kinds {
			out = append(out, extract.ParsedDocument{Kind: k, ParseSuccess: true})
		}
		return out
	}

	// No parsed documents at all.
	assert.Equal(t, 40, documentQualityScore(nil, vt))
	// All required kinds present.
	assert.Equal(t, 70, documentQualityScore(parsed("resume", "degree"), vt))
	// A required kind missing.
	assert.Equal(t, 55, documentQualityScore(parsed("resume"), vt))
	// Volume bonus: +10 at three parsed, +15 at five.
	assert.Equal(t, 80, documentQualityScore(parsed("resume", "degree", "other"), vt))
	assert.Equal(t, 85, documentQualityScore(parsed("resume", "degree", "a", "b", "c"), vt))
}

// ==========================
// Full assessment
// ==========================

func TestHeuristicAssessor_Assess_ReferenceProfile(t *testing.T) {
	h := NewHeuristicAssessor(logger.NewTestLogger(t))
	vt := testVisaType()

	text := "I have 5 years of software experience, a bachelor degree, and English level C1."

	result, err := h.Assess(context.Background(), text, nil, vt)
	require.NoError(t, err)
	require.Len(t, result.Assessments, 5)

	byDim := result.ByDimension()
	assert.Equal(t, 50, byDim[DimExperience].Score)
	assert.Equal(t, 65, byDim[DimEducation].Score)
	assert.Equal(t, 100, byDim[DimSpecialization].Score)
	assert.Equal(t, 85, byDim[DimLanguage].Score)
	assert.Equal(t, 40, byDim[DimDocumentQuality].Score)

	assert.Equal(t, 5, result.Profile.ExperienceYears)
	assert.Equal(t, "software", result.Profile.Specialization)
}

func TestHeuristicAssessor_Assess_IgnoresFailedDocuments(t *testing.T) {
	h := NewHeuristicAssessor(logger.NewTestLogger(t))
	vt := testVisaType()

	docs := []extract.ParsedDocument{
		{Kind: "resume", ParseSuccess: true},
		{Kind: "degree", ParseSuccess: false, Error: "pdf parse failed"},
	}

	result, err := h.Assess(context.Background(), "software engineer", docs, vt)
	require.NoError(t, err)

	// Only the successfully parsed resume counts, so the degree is missing.
	assert.Equal(t, 55, result.ByDimension()[DimDocumentQuality].Score)
}

func TestHeuristicAssessor_Assess_EmptyInputStillScoresAllDimensions(t *testing.T) {
	h := NewHeuristicAssessor(logger.NewTestLogger(t))
	vt := testVisaType()

	result, err := h.Assess(context.Background(), "", nil, vt)
	require.NoError(t, err)
	require.Len(t, result.Assessments, 5)

	for _, a := range result.Assessments {
		assert.GreaterOrEqual(t, a.Score, 0, a.Dimension)
		assert.LessOrEqual(t, a.Score, 100, a.Dimension)
	}
}
