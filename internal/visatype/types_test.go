// internal/visatype/types_test.go
package visatype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validVisaType() *VisaType {
	return &VisaType{
		Country:                "US",
		Code:                   "h1b",
		Name:                   "H-1B Specialty Occupation",
		MinExperienceYears:     5,
		MinEducationLevel:      EducationBachelor,
		AllowedSpecializations: []string{"software", "engineering"},
		LanguageRequirement:    CEFRB2,
		Weights: ScoringWeights{
			Experience:      25,
			Education:       25,
			Specialization:  20,
			Language:        15,
			DocumentQuality: 15,
		},
		MaxScoreCap: 85,
		RequiredDocuments: []RequiredDocument{
			{Kind: "resume", Required: true},
			{Kind: "degree", Required: true},
			{Kind: "reference_letter", Required: false},
		},
		ReferenceURL: "https://example.gov/h1b",
	}
}

func TestVisaType_Validate_OK(t *testing.T) {
	assert.NoError(t, validVisaType().Validate())
}

func TestVisaType_Validate_WeightsMustSumTo100(t *testing.T) {
	vt := validVisaType()
	vt.Weights.Experience = 30

	err := vt.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "scoring weights sum to 105")
}

func TestVisaType_Validate_UnknownEducationLevel(t *testing.T) {
	vt := validVisaType()
	vt.MinEducationLevel = "postdoc"

	assert.Error(t, vt.Validate())
}

func TestVisaType_Validate_UnknownLanguageLevel(t *testing.T) {
	vt := validVisaType()
	vt.LanguageRequirement = "d1"

	assert.Error(t, vt.Validate())
}

func TestVisaType_Validate_CapOutOfRange(t *testing.T) {
	vt := validVisaType()
	vt.MaxScoreCap = 120

	assert.Error(t, vt.Validate())
}

func TestVisaType_Validate_ZeroCapDefaultsTo100(t *testing.T) {
	vt := validVisaType()
	vt.MaxScoreCap = 0

	assert.NoError(t, vt.Validate())
	assert.Equal(t, 100, vt.MaxScoreCap)
}

func TestVisaType_Validate_MissingIdentity(t *testing.T) {
	vt := validVisaType()
	vt.Code = ""

	assert.Error(t, vt.Validate())
}

func TestVisaType_RequiredKinds(t *testing.T) {
	vt := validVisaType()
	assert.Equal(t, []string{"resume", "degree"}, vt.RequiredKinds())
}

func TestVisaType_AllowsSpecialization(t *testing.T) {
	vt := validVisaType()

	assert.Equal(t, "exact", vt.AllowsSpecialization("software"))
	assert.Equal(t, "exact", vt.AllowsSpecialization("  Software  "))
	assert.Equal(t, "partial", vt.AllowsSpecialization("software engineering"))
	assert.Equal(t, "none", vt.AllowsSpecialization("nursing"))
	assert.Equal(t, "none", vt.AllowsSpecialization(""))
}

func TestEducationLevel_Rank(t *testing.T) {
	assert.Equal(t, 0, EducationHighSchool.Rank())
	assert.Equal(t, 1, EducationBachelor.Rank())
	assert.Equal(t, 2, EducationMaster.Rank())
	assert.Equal(t, 3, EducationPhD.Rank())
	assert.Equal(t, -1, EducationLevel("diploma").Rank())
}

func TestCEFRLevel_Rank(t *testing.T) {
	assert.Equal(t, 0, CEFRA1.Rank())
	assert.Equal(t, 5, CEFRC2.Rank())
	assert.Equal(t, 3, CEFRLevel("B2").Rank())
	assert.Equal(t, -1, CEFRLevel("d1").Rank())
}
