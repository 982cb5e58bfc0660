// Package visatype holds the read-only visa reference data the evaluation
// pipeline scores against.
package visatype

import (
	"fmt"
	"strings"
)

// EducationLevel is a totally ordered academic attainment level.
type EducationLevel string

const (
	EducationHighSchool EducationLevel = "high_school"
	EducationBachelor   EducationLevel = "bachelor"
	EducationMaster     EducationLevel = "master"
	EducationPhD        EducationLevel = "phd"
)

var educationRank = map[EducationLevel]int{
	EducationHighSchool: 0,
	EducationBachelor:   1,
	EducationMaster:     2,
	EducationPhD:        3,
}

// Rank returns the ordinal position of the level, -1 for unknown values.
func (e EducationLevel) Rank() int {
	if r, ok := educationRank[e]; ok {
		return r
	}
	return -1
}

// Valid reports whether the level is one of the four known values.
func (e EducationLevel) Valid() bool {
	return e.Rank() >= 0
}

// CEFRLevel is a language proficiency level on the six-step CEFR scale.
type CEFRLevel string

const (
	CEFRA1 CEFRLevel = "a1"
	CEFRA2 CEFRLevel = "a2"
	CEFRB1 CEFRLevel = "b1"
	CEFRB2 CEFRLevel = "b2"
	CEFRC1 CEFRLevel = "c1"
	CEFRC2 CEFRLevel = "c2"
)

var cefrRank = map[CEFRLevel]int{
	CEFRA1: 0,
	CEFRA2: 1,
	CEFRB1: 2,
	CEFRB2: 3,
	CEFRC1: 4,
	CEFRC2: 5,
}

// Rank returns the ordinal position of the level, -1 for unknown values.
func (c CEFRLevel) Rank() int {
	if r, ok := cefrRank[CEFRLevel(strings.ToLower(string(c)))]; ok {
		return r
	}
	return -1
}

// Valid reports whether the level is one of the six CEFR values.
func (c CEFRLevel) Valid() bool {
	return c.Rank() >= 0
}

// ScoringWeights distributes 100 points over the five scoring dimensions.
type ScoringWeights struct {
	Experience      int `json:"experience"`
	Education       int `json:"education"`
	Specialization  int `json:"specialization"`
	Language        int `json:"language"`
	DocumentQuality int `json:"documentQuality"`
}

// Sum returns the total of all five weights.
func (w ScoringWeights) Sum() int {
	return w.Experience + w.Education + w.Specialization + w.Language + w.DocumentQuality
}

// RequiredDocument describes one document kind the visa application expects.
type RequiredDocument struct {
	Kind     string `json:"kind"`
	Required bool   `json:"required"`
}

// VisaType is the reference definition a single evaluation run scores against.
// Instances are shared and read-only at evaluation time.
type VisaType struct {
	Country                string             `json:"country"`
	Code                   string             `json:"code"`
	Name                   string             `json:"name"`
	MinExperienceYears     int                `json:"minExperienceYears"`
	MinEducationLevel      EducationLevel     `json:"minEducationLevel"`
	AllowedSpecializations []string           `json:"allowedSpecializations"`
	LanguageRequirement    CEFRLevel          `json:"languageRequirement"`
	Weights                ScoringWeights     `json:"scoringWeights"`
	MaxScoreCap            int                `json:"maxScoreCap"`
	RequiredDocuments      []RequiredDocument `json:"requiredDocuments"`
	ReferenceURL           string             `json:"referenceUrl"`
}

// Validate checks the structural invariants of a definition. The weight sum
// is enforced here, at the reference-data boundary, and never re-checked per
// evaluation run.
func (v *VisaType) Validate() error {
	if v.Country == "" || v.Code == "" {
		return fmt.Errorf("visa type needs both country and code")
	}
	if v.MinExperienceYears < 0 {
		return fmt.Errorf("visa type %s/%s: minExperienceYears must be >= 0", v.Country, v.Code)
	}
	if !v.MinEducationLevel.Valid() {
		return fmt.Errorf("visa type %s/%s: unknown education level %q", v.Country, v.Code, v.MinEducationLevel)
	}
	if !v.LanguageRequirement.Valid() {
		return fmt.Errorf("visa type %s/%s: unknown language requirement %q", v.Country, v.Code, v.LanguageRequirement)
	}
	if sum := v.Weights.Sum(); sum != 100 {
		return fmt.Errorf("visa type %s/%s: scoring weights sum to %d, want 100", v.Country, v.Code, sum)
	}
	if v.MaxScoreCap == 0 {
		// Definitions without a cap score out of the full 100.
		v.MaxScoreCap = 100
	}
	if v.MaxScoreCap < 0 || v.MaxScoreCap > 100 {
		return fmt.Errorf("visa type %s/%s: maxScoreCap %d outside [0,100]", v.Country, v.Code, v.MaxScoreCap)
	}
	return nil
}

// RequiredKinds returns the kinds flagged as required, lowercased.
func (v *VisaType) RequiredKinds() []string {
	var kinds []string
	for _, d := range v.RequiredDocuments {
		if d.Required {
			kinds = append(kinds, strings.ToLower(d.Kind))
		}
	}
	return kinds
}

// AllowsSpecialization reports how the given specialization relates to the
// allowed set: "exact" on a case-insensitive match, "partial" when one side
// contains the other, "none" otherwise.
func (v *VisaType) AllowsSpecialization(spec string) string {
	s := strings.ToLower(strings.TrimSpace(spec))
	if s == "" {
		return "none"
	}
	for _, allowed := range v.AllowedSpecializations {
		a := strings.ToLower(strings.TrimSpace(allowed))
		if s == a {
			return "exact"
		}
	}
	for _, allowed := range v.AllowedSpecializations {
		a := strings.ToLower(strings.TrimSpace(allowed))
		if strings.Contains(a, s) || strings.Contains(s, a) {
			return "partial"
		}
	}
	return "none"
}
