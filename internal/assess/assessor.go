// Package assess produces one CriterionAssessment per scoring dimension from
// the applicant's free text and extracted documents. Two implementations
// satisfy the same contract: an oracle-backed assessor that delegates
// semantic judgment to an external service, and a deterministic assessor
// built on lexical pattern matching. Both are pure functions of their inputs
// plus the visa type.
package assess

import (
	"context"

	"visascope/internal/extract"
	"visascope/internal/visatype"
)

// Scoring dimension names. Every visa type weights exactly these five.
const (
	DimExperience      = "experience"
	DimEducation       = "education"
	DimSpecialization  = "specialization"
	DimLanguage        = "language"
	DimDocumentQuality = "documentQuality"
)

// Dimensions returns the five dimension names in canonical order.
func Dimensions() []string {
	return []string{DimExperience, DimEducation, DimSpecialization, DimLanguage, DimDocumentQuality}
}

// CriterionAssessment is one dimension's judgment.
type CriterionAssessment struct {
	Dimension string   `json:"dimension"`
	Score     int      `json:"score"`
	Evidence  []string `json:"evidenceFound,omitempty"`
	Gaps      []string `json:"gaps,omitempty"`
}

// Profile holds the coarse applicant facts backing the assessments. The
// insight generator uses them to phrase strengths in the applicant's own
// terms.
type Profile struct {
	ExperienceYears int                     `json:"experienceYears"`
	Education       visatype.EducationLevel `json:"education"`
	Specialization  string                  `json:"specialization"`
	Language        visatype.CEFRLevel      `json:"language"`
}

// Result pairs the per-dimension assessments with the aggregate profile.
type Result struct {
	Assessments []CriterionAssessment
	Profile     Profile
}

// ByDimension indexes the assessments by dimension name.
func (r *Result) ByDimension() map[string]CriterionAssessment {
	out := make(map[string]CriterionAssessment, len(r.Assessments))
	for _, a := range r.Assessments {
		out[a.Dimension] = a
	}
	return out
}

// Assessor is the criterion evaluator contract shared by both paths.
type Assessor interface {
	Assess(ctx context.Context, applicantText string, docs []extract.ParsedDocument, vt *visatype.VisaType) (*Result, error)
}

// clamp keeps a score inside [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// parsedDocs filters to the documents whose extraction succeeded.
func parsedDocs(docs []extract.ParsedDocument) []extract.ParsedDocument {
	var out []extract.ParsedDocument
	for _, d := range docs {
		if d.ParseSuccess {
			out = append(out, d)
		}
	}
	return out
}
