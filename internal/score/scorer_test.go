// internal/score/scorer_test.go
package score

import (
	"testing"

	"visascope/internal/assess"
	"visascope/internal/visatype"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVisaType() *visatype.VisaType {
	return &visatype.VisaType{
		Country:             "US",
		Code:                "h1b",
		Name:                "H-1B Specialty Occupation",
		MinEducationLevel:   visatype.EducationBachelor,
		LanguageRequirement: visatype.CEFRB2,
		Weights: visatype.ScoringWeights{
			Experience:      25,
			Education:       25,
			Specialization:  20,
			Language:        15,
			DocumentQuality: 15,
		},
		MaxScoreCap: 85,
	}
}

func assessments(exp, edu, spec, lang, doc int) []assess.CriterionAssessment {
	return []assess.CriterionAssessment{
		{Dimension: assess.DimExperience, Score: exp},
		{Dimension: assess.DimEducation, Score: edu},
		{Dimension: assess.DimSpecialization, Score: spec},
		{Dimension: assess.DimLanguage, Score: lang},
		{Dimension: assess.DimDocumentQuality, Score: doc},
	}
}

func TestCategoryFor_Boundaries(t *testing.T) {
	tests := []struct {
		score    int
		category Category
	}{
		{100, CategoryStrongCandidate},
		{75, CategoryStrongCandidate},
		{74, CategoryModerateFit},
		{60, CategoryModerateFit},
		{59, CategoryConsiderAlternatives},
		{40, CategoryConsiderAlternatives},
		{39, CategoryNotRecommended},
		{0, CategoryNotRecommended},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.category, CategoryFor(tt.score), "score %d", tt.score)
	}
}

func TestScore_WeightedSum(t *testing.T) {
	// 50*.25 + 65*.25 + 100*.20 + 85*.15 + 40*.15 = 67.5, rounds to 68.
	result, err := Score(assessments(50, 65, 100, 85, 40), testVisaType())
	require.NoError(t, err)

	assert.Equal(t, 68, result.FinalScore)
	assert.Equal(t, CategoryModerateFit, result.Category)
	assert.Equal(t, map[string]int{
		assess.DimExperience:      50,
		assess.DimEducation:       65,
		assess.DimSpecialization:  100,
		assess.DimLanguage:        85,
		assess.DimDocumentQuality: 40,
	}, result.Breakdown)
}

func TestScore_AppliesCap(t *testing.T) {
	result, err := Score(assessments(100, 100, 100, 100, 100), testVisaType())
	require.NoError(t, err)

	// Raw weighted sum is 100 but this visa caps at 85.
	assert.Equal(t, 85, result.FinalScore)
	assert.Equal(t, CategoryStrongCandidate, result.Category)
}

func TestScore_CapCanDowngradeCategory(t *testing.T) {
	vt := testVisaType()
	vt.MaxScoreCap = 70

	result, err := Score(assessments(100, 100, 100, 100, 100), vt)
	require.NoError(t, err)

	assert.Equal(t, 70, result.FinalScore)
	assert.Equal(t, CategoryModerateFit, result.Category)
}

func TestScore_ZeroWeightDimensionContributesNothing(t *testing.T) {
	vt := testVisaType()
	vt.Weights = visatype.ScoringWeights{
		Experience:      50,
		Education:       50,
		Specialization:  0,
		Language:        0,
		DocumentQuality: 0,
	}

	result, err := Score(assessments(80, 60, 100, 100, 100), vt)
	require.NoError(t, err)

	// Only experience and education carry weight: 80*.5 + 60*.5 = 70.
	assert.Equal(t, 70, result.FinalScore)
}

func TestScore_MissingDimensionFails(t *testing.T) {
	missing := assessments(50, 65, 100, 85, 40)[:4]

	result, err := Score(missing, testVisaType())
	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "documentQuality")
}

func TestScore_AllZeroScores(t *testing.T) {
	result, err := Score(assessments(0, 0, 0, 0, 0), testVisaType())
	require.NoError(t, err)

	assert.Equal(t, 0, result.FinalScore)
	assert.Equal(t, CategoryNotRecommended, result.Category)
}
