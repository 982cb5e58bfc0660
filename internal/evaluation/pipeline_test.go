// internal/evaluation/pipeline_test.go
package evaluation

import (
	"context"
	"testing"
	"time"

	"visascope/internal/assess"
	"visascope/internal/common/logger"
	"visascope/internal/extract"
	"visascope/internal/oracle"
	"visascope/internal/visatype"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingAssessor always errors, standing in for a broken oracle.
type failingAssessor struct {
	calls int
}

func (f *failingAssessor) Assess(context.Context, string, []extract.ParsedDocument, *visatype.VisaType) (*assess.Result, error) {
	f.calls++
	return nil, oracle.ErrTimeout
}

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

func testSubmission() Submission {
	return Submission{
		FullName:    "Ada Lovelace",
		Email:       "ada@example.com",
		Country:     "US",
		VisaCode:    "h1b",
		Description: "I have 5 years of software experience, a bachelor degree, and English level C1.",
	}
}

func newTestPipeline(t *testing.T, oracleAssessor assess.Assessor) *Pipeline {
	t.Helper()
	log := logger.NewTestLogger(t)
	return NewPipeline(
		extract.NewExtractor(log),
		oracleAssessor,
		assess.NewHeuristicAssessor(log),
		90,
		log,
	)
}

func TestPipeline_Run_DeterministicPath(t *testing.T) {
	p := newTestPipeline(t, nil)

	rec, err := p.Run(context.Background(), testSubmission(), nil, testVisaType())
	require.NoError(t, err)

	// 50*.25 + 65*.25 + 100*.20 + 85*.15 + 40*.15 = 67.5, rounds to 68.
	assert.Equal(t, 68, rec.Result.FinalScore)
	assert.Equal(t, "moderate_fit", string(rec.Result.Category))
	assert.False(t, rec.Result.UsedOracle)

	assert.Equal(t, map[string]int{
		"experience":      50,
		"education":       65,
		"specialization":  100,
		"language":        85,
		"documentQuality": 40,
	}, rec.Result.Breakdown)

	assert.NotEmpty(t, rec.ID)
	assert.NotEmpty(t, rec.Result.Summary)
	assert.NotEmpty(t, rec.Result.NextSteps)
	assert.Equal(t, testSubmission(), rec.Submission)
}

func TestPipeline_Run_OracleFailureFallsBack(t *testing.T) {
	broken := &failingAssessor{}
	p := newTestPipeline(t, broken)

	rec, err := p.Run(context.Background(), testSubmission(), nil, testVisaType())
	require.NoError(t, err)

	// The oracle was tried exactly once; the run still completed.
	assert.Equal(t, 1, broken.calls)
	assert.False(t, rec.Result.UsedOracle)
	assert.Equal(t, 68, rec.Result.FinalScore)
}

func TestPipeline_Run_DocumentsAreSummarized(t *testing.T) {
	p := newTestPipeline(t, nil)

	uploads := []Upload{
		{FileName: "resume.txt", Kind: "resume", Data: []byte("5 years of software engineering")},
		{FileName: "photo.png", Kind: "other", Data: []byte{0x89, 0x50}},
	}

	rec, err := p.Run(context.Background(), testSubmission(), uploads, testVisaType())
	require.NoError(t, err)
	require.Len(t, rec.Documents, 2)

	assert.Equal(t, "resume.txt", rec.Documents[0].FileName)
	assert.True(t, rec.Documents[0].ParseSuccess)
	assert.Equal(t, 5, rec.Documents[0].WordCount)

	assert.Equal(t, "photo.png", rec.Documents[1].FileName)
	assert.False(t, rec.Documents[1].ParseSuccess)
	assert.NotEmpty(t, rec.Documents[1].ParseError)
}

func TestPipeline_Run_SetsRetentionWindow(t *testing.T) {
	p := newTestPipeline(t, nil)

	rec, err := p.Run(context.Background(), testSubmission(), nil, testVisaType())
	require.NoError(t, err)

	assert.WithinDuration(t, time.Now().UTC(), rec.CreatedAt, 5*time.Second)
	assert.Equal(t, rec.CreatedAt.Add(90*24*time.Hour), rec.ExpiresAt)
}

func TestValidateSubmission(t *testing.T) {
	assert.NoError(t, ValidateSubmission(testSubmission()))

	tests := []struct {
		name   string
		mutate func(*Submission)
		want   string
	}{
		{"missing name", func(s *Submission) { s.FullName = "  " }, "fullName"},
		{"missing email", func(s *Submission) { s.Email = "" }, "email"},
		{"malformed email", func(s *Submission) { s.Email = "not-an-email" }, "email"},
		{"missing country", func(s *Submission) { s.Country = "" }, "country"},
		{"missing visa", func(s *Submission) { s.VisaCode = "" }, "visaType"},
		{"missing description", func(s *Submission) { s.Description = "" }, "description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := testSubmission()
			tt.mutate(&sub)
			err := ValidateSubmission(sub)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateSubmission_ReportsAllProblems(t *testing.T) {
	err := ValidateSubmission(Submission{})
	require.Error(t, err)

	for _, field := range []string{"fullName", "email", "country", "visaType", "description"} {
		assert.Contains(t, err.Error(), field)
	}
}
