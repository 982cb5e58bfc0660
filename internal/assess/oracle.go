// internal/assess/oracle.go
package assess

import (
	"context"
	"fmt"
	"strings"

	"visascope/internal/common/logger"
	"visascope/internal/extract"
	"visascope/internal/oracle"
	"visascope/internal/visatype"
)

// OracleClient is the slice of the oracle client this assessor needs.
type OracleClient interface {
	Assess(ctx context.Context, req *oracle.AssessRequest) (*oracle.AssessResponse, error)
}

// tierBands maps an evidence tier to the score band it permits. Scores the
// oracle reports outside the band are clamped into it rather than rejected.
var tierBands = map[string][2]int{
	oracle.TierNone:        {0, 20},
	oracle.TierWeak:        {21, 40},
	oracle.TierModerate:    {41, 60},
	oracle.TierStrong:      {61, 85},
	oracle.TierExceptional: {86, 100},
}

// OracleAssessor delegates semantic judgment to the external oracle. It owns
// the request/response mapping only; transport, timeout and schema validation
// live in the oracle client. Any error it returns means "fall back".
type OracleAssessor struct {
	client OracleClient
	logger logger.Logger
}

func NewOracleAssessor(client OracleClient, log logger.Logger) *OracleAssessor {
	return &OracleAssessor{
		client: client,
		logger: log.WithFields(map[string]interface{}{"assessor": "oracle"}),
	}
}

func (o *OracleAssessor) Assess(ctx context.Context, applicantText string, docs []extract.ParsedDocument, vt *visatype.VisaType) (*Result, error) {
	parsed := parsedDocs(docs)

	req := &oracle.AssessRequest{
		ApplicantText: applicantText,
		Documents:     make([]oracle.DocumentPayload, 0, len(parsed)),
		Thresholds: oracle.Thresholds{
			MinExperienceYears:     vt.MinExperienceYears,
			MinEducationLevel:      string(vt.MinEducationLevel),
			AllowedSpecializations: vt.AllowedSpecializations,
			LanguageRequirement:    string(vt.LanguageRequirement),
		},
		Dimensions:   Dimensions(),
		Instructions: buildInstructions(vt),
	}
	for _, d := range parsed {
		req.Documents = append(req.Documents, oracle.DocumentPayload{
			Kind:     d.Kind,
			FileName: d.FileName,
			Text:     d.ExtractedText,
		})
	}

	resp, err := o.client.Assess(ctx, req)
	if err != nil {
		return nil, err
	}

	byDim := make(map[string]oracle.Assessment, len(resp.Assessments))
	for _, a := range resp.Assessments {
		byDim[a.Dimension] = a
	}

	assessments := make([]CriterionAssessment, 0, 5)
	for _, dim := range Dimensions() {
		a, ok := byDim[dim]
		if !ok {
			return nil, fmt.Errorf("%w: missing dimension %q", oracle.ErrInvalidResponse, dim)
		}

		score := a.Score
		if band, ok := tierBands[a.Tier]; ok {
			score = clamp(score, band[0], band[1])
		}
		if dim == DimDocumentQuality {
			// Small bonus for volume of successfully parsed documents.
			bonus := 2 * len(parsed)
			if bonus > 10 {
				bonus = 10
			}
			score = clamp(score+bonus, 0, 100)
		}

		assessments = append(assessments, CriterionAssessment{
			Dimension: dim,
			Score:     score,
			Evidence:  a.Evidence,
			Gaps:      a.Gaps,
		})
	}

	o.logger.Debug("oracle assessment mapped", map[string]interface{}{
		"documents": len(parsed),
	})

	return &Result{
		Assessments: assessments,
		Profile:     mergeProfile(resp.Profile, applicantText),
	}, nil
}

// mergeProfile prefers the oracle's extracted facts and falls back to the
// lexical parse for anything it left out or got wrong.
func mergeProfile(facts oracle.ProfileFacts, applicantText string) Profile {
	profile := ParseProfile(applicantText)

	if facts.ExperienceYears > 0 {
		profile.ExperienceYears = facts.ExperienceYears
	}
	if lvl := visatype.EducationLevel(strings.ToLower(facts.EducationLevel)); lvl.Valid() {
		profile.Education = lvl
	}
	if facts.Specialization != "" {
		profile.Specialization = strings.ToLower(facts.Specialization)
	}
	if lvl := visatype.CEFRLevel(strings.ToLower(facts.LanguageLevel)); lvl.Valid() {
		profile.Language = lvl
	}
	return profile
}

func buildInstructions(vt *visatype.VisaType) string {
	var parts []string

	parts = append(parts, "You are an immigration eligibility analyst. Judge each criterion independently against the provided thresholds.")
	parts = append(parts, fmt.Sprintf("Visa: %s (%s).", vt.Name, vt.Country))
	parts = append(parts, "For every dimension assign an evidence tier (none/weak/moderate/strong/exceptional) and a 0-100 score consistent with that tier.")
	parts = append(parts, "List concrete evidence found and concrete gaps per dimension.")
	parts = append(parts, "Report aggregate profile facts: years of experience, education level, specialization, CEFR language level.")
	parts = append(parts, "Base judgments ONLY on the applicant text and the labelled documents.")

	return strings.Join(parts, "\n")
}
