// internal/oracle/models.go
package oracle

// DocumentPayload is one extracted document, labelled with its provenance so
// the oracle can cite where evidence came from.
type DocumentPayload struct {
	Kind     string `json:"kind"`
	FileName string `json:"file_name"`
	Text     string `json:"text"`
}

// Thresholds carries the visa type's eligibility requirements.
type Thresholds struct {
	MinExperienceYears     int      `json:"min_experience_years"`
	MinEducationLevel      string   `json:"min_education_level"`
	AllowedSpecializations []string `json:"allowed_specializations"`
	LanguageRequirement    string   `json:"language_requirement"`
}

// AssessRequest is the single structured payload sent to the oracle.
type AssessRequest struct {
	ApplicantText string            `json:"applicant_text"`
	Documents     []DocumentPayload `json:"documents"`
	Thresholds    Thresholds        `json:"thresholds"`
	Dimensions    []string          `json:"dimensions"`
	Instructions  string            `json:"instructions"`
}

// Evidence tiers the oracle assigns before scores are derived.
const (
	TierNone        = "none"
	TierWeak        = "weak"
	TierModerate    = "moderate"
	TierStrong      = "strong"
	TierExceptional = "exceptional"
)

// Assessment is the oracle's judgment of a single scoring dimension.
type Assessment struct {
	Dimension string   `json:"dimension"`
	Tier      string   `json:"tier"`
	Score     int      `json:"score"`
	Evidence  []string `json:"evidence"`
	Gaps      []string `json:"gaps"`
}

// ProfileFacts are the aggregate facts the oracle extracted from the
// applicant's text and documents.
type ProfileFacts struct {
	ExperienceYears int    `json:"experience_years"`
	EducationLevel  string `json:"education_level"`
	Specialization  string `json:"specialization"`
	LanguageLevel   string `json:"language_level"`
}

// AssessResponse is the oracle's full reply. It is untrusted until it passes
// schema validation.
type AssessResponse struct {
	Assessments []Assessment `json:"assessments"`
	Profile     ProfileFacts `json:"profile"`
}
