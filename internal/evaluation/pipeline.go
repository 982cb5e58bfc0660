// internal/evaluation/pipeline.go
package evaluation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"visascope/internal/assess"
	"visascope/internal/common/logger"
	"visascope/internal/common/metrics"
	"visascope/internal/extract"
	"visascope/internal/insight"
	"visascope/internal/score"
	"visascope/internal/visatype"

	"github.com/google/uuid"
)

// Pipeline runs one evaluation end to end: extract all documents, assess,
// score, generate insights. A run is strictly sequential, shares no mutable
// state with other runs, and is atomic from the caller's perspective: it
// either yields one complete Record or fails outright. An oracle failure is
// not a run failure; the run silently downgrades to the deterministic
// assessor and still completes.
type Pipeline struct {
	extractor *extract.Extractor
	oracle    assess.Assessor // nil when the oracle is disabled
	fallback  assess.Assessor
	retention time.Duration
	logger    logger.Logger
}

func NewPipeline(ex *extract.Extractor, oracleAssessor, fallbackAssessor assess.Assessor, retentionDays int, log logger.Logger) *Pipeline {
	return &Pipeline{
		extractor: ex,
		oracle:    oracleAssessor,
		fallback:  fallbackAssessor,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    log.WithFields(map[string]interface{}{"component": "pipeline"}),
	}
}

// Run executes the pipeline and returns an unsaved Record.
func (p *Pipeline) Run(ctx context.Context, sub Submission, uploads []Upload, vt *visatype.VisaType) (*Record, error) {
	started := time.Now()

	docs := make([]extract.ParsedDocument, 0, len(uploads))
	summaries := make([]DocumentSummary, 0, len(uploads))
	for _, up := range uploads {
		doc := p.extractor.Extract(up.Data, up.FileName, up.Kind)
		docs = append(docs, doc)
		summaries = append(summaries, DocumentSummary{
			FileName:     doc.FileName,
			Kind:         doc.Kind,
			SizeBytes:    len(up.Data),
			WordCount:    doc.WordCount,
			ParseSuccess: doc.ParseSuccess,
			ParseError:   doc.Error,
		})
	}

	assessment, usedOracle := p.assess(ctx, sub.Description, docs, vt)

	scored, err := score.Score(assessment.Assessments, vt)
	if err != nil {
		return nil, fmt.Errorf("scoring failed: %w", err)
	}

	ins := insight.Generate(scored.Breakdown, assessment.Profile, vt, scored.FinalScore, scored.Category)

	now := time.Now().UTC()
	rec := &Record{
		ID:         uuid.New().String(),
		Submission: sub,
		Documents:  summaries,
		Result: Result{
			FinalScore:   scored.FinalScore,
			Breakdown:    scored.Breakdown,
			Category:     scored.Category,
			Strengths:    ins.Strengths,
			Improvements: ins.Improvements,
			NextSteps:    ins.NextSteps,
			Summary:      ins.Summary,
			Reasoning:    ins.Reasoning,
			UsedOracle:   usedOracle,
		},
		CreatedAt: now,
		ExpiresAt: now.Add(p.retention),
	}

	metrics.EvaluationDuration.Observe(time.Since(started).Seconds())
	metrics.EvaluationsCompleted.WithLabelValues(string(scored.Category)).Inc()
	p.logger.Info("evaluation completed", map[string]interface{}{
		"evaluationId": rec.ID,
		"country":      sub.Country,
		"visaCode":     sub.VisaCode,
		"finalScore":   scored.FinalScore,
		"category":     scored.Category,
		"usedOracle":   usedOracle,
		"documents":    len(uploads),
	})

	return rec, nil
}

// assess tries the oracle path first when configured; any oracle error
// downgrades to the deterministic path without retrying the oracle.
func (p *Pipeline) assess(ctx context.Context, applicantText string, docs []extract.ParsedDocument, vt *visatype.VisaType) (*assess.Result, bool) {
	if p.oracle != nil {
		result, err := p.oracle.Assess(ctx, applicantText, docs, vt)
		if err == nil {
			return result, true
		}
		metrics.OracleFallbacks.Inc()
		p.logger.Warn("oracle assessment failed, using deterministic fallback", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// The deterministic path cannot fail.
	result, _ := p.fallback.Assess(ctx, applicantText, docs, vt)
	return result, false
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateSubmission checks the applicant-entered fields before the
// pipeline starts. Returns a joined description of every problem found.
func ValidateSubmission(sub Submission) error {
	var problems []string

	if strings.TrimSpace(sub.FullName) == "" {
		problems = append(problems, "fullName is required")
	}
	if !emailPattern.MatchString(sub.Email) {
		problems = append(problems, "email is missing or malformed")
	}
	if strings.TrimSpace(sub.Country) == "" {
		problems = append(problems, "country is required")
	}
	if strings.TrimSpace(sub.VisaCode) == "" {
		problems = append(problems, "visaType is required")
	}
	if strings.TrimSpace(sub.Description) == "" {
		problems = append(problems, "description is required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}
