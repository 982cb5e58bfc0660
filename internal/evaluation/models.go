// Package evaluation orchestrates the scoring pipeline and owns the
// persisted Evaluation Record. A record is written exactly once and never
// mutated afterwards; downstream consumers (report renderer, notifier)
// read it only.
package evaluation

import (
	"time"

	"visascope/internal/score"
)

// Submission holds the applicant-entered fields, kept verbatim on the record.
type Submission struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Country     string `json:"country"`
	VisaCode    string `json:"visaCode"`
	Description string `json:"description"`
}

// Upload is one raw file handed to the pipeline. The bytes are owned by the
// run and discarded once the record is built.
type Upload struct {
	FileName string
	Kind     string
	Data     []byte
}

// DocumentSummary is the metadata retained about an upload after the run.
type DocumentSummary struct {
	FileName     string `json:"fileName"`
	Kind         string `json:"kind"`
	SizeBytes    int    `json:"sizeBytes"`
	WordCount    int    `json:"wordCount"`
	ParseSuccess bool   `json:"parseSuccess"`
	ParseError   string `json:"parseError,omitempty"`
}

// Result is the immutable outcome of one pipeline run.
type Result struct {
	FinalScore   int            `json:"finalScore"`
	Breakdown    map[string]int `json:"breakdown"`
	Category     score.Category `json:"category"`
	Strengths    []string       `json:"strengths"`
	Improvements []string       `json:"improvements"`
	NextSteps    []string       `json:"nextSteps"`
	Summary      string         `json:"summary"`
	Reasoning    string         `json:"reasoning"`
	UsedOracle   bool           `json:"usedOracle"`
}

// Record is the persisted evaluation, addressable by its opaque id until
// the retention window expires.
type Record struct {
	ID         string            `json:"id"`
	Submission Submission        `json:"submission"`
	Documents  []DocumentSummary `json:"documents"`
	Result     Result            `json:"result"`
	CreatedAt  time.Time         `json:"createdAt"`
	ExpiresAt  time.Time         `json:"expiresAt"`
}
