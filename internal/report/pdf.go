// Package report renders a completed evaluation as a downloadable PDF and
// delivers result notifications. Both consumers read the persisted record
// only; neither mutates it.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"visascope/internal/common/errors"
	"visascope/internal/evaluation"

	"github.com/go-pdf/fpdf"
)

// Renderer produces the applicant-facing PDF report. Rendering is
// deterministic: the same record always yields the same layout.
type Renderer struct {
	appName string
}

func NewRenderer(appName string) *Renderer {
	if appName == "" {
		appName = "VisaScope"
	}
	return &Renderer{appName: appName}
}

// Render builds the PDF for one record.
func (r *Renderer) Render(rec *evaluation.Record) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s Evaluation Report", r.appName), false)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, fmt.Sprintf("%s Eligibility Report", r.appName))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Evaluation ID: %s", rec.ID))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", rec.CreatedAt.Format("2 Jan 2006 15:04 MST")))
	pdf.Ln(10)

	// Applicant
	r.sectionTitle(pdf, "Applicant")
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, rec.Submission.FullName)
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Visa: %s (%s)", rec.Submission.VisaCode, rec.Submission.Country))
	pdf.Ln(10)

	// Score
	r.sectionTitle(pdf, "Result")
	pdf.SetFont("Helvetica", "B", 24)
	pdf.Cell(0, 12, fmt.Sprintf("%d / 100", rec.Result.FinalScore))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, categoryLabel(string(rec.Result.Category)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, rec.Result.Summary, "", "L", false)
	pdf.Ln(4)

	// Breakdown table
	r.sectionTitle(pdf, "Score Breakdown")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(90, 7, "Criterion", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Score", "1", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, dim := range breakdownOrder {
		score, ok := rec.Result.Breakdown[dim]
		if !ok {
			continue
		}
		pdf.CellFormat(90, 7, dimensionLabel(dim), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", score), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	r.bulletSection(pdf, "Strengths", rec.Result.Strengths)
	r.bulletSection(pdf, "Areas for Improvement", rec.Result.Improvements)
	r.bulletSection(pdf, "Recommended Next Steps", rec.Result.NextSteps)

	// Documents
	if len(rec.Documents) > 0 {
		r.sectionTitle(pdf, "Documents Reviewed")
		pdf.SetFont("Helvetica", "", 10)
		for _, doc := range rec.Documents {
			status := "parsed"
			if !doc.ParseSuccess {
				status = "not parsed"
			}
			pdf.Cell(0, 6, fmt.Sprintf("- %s (%s, %s)", doc.FileName, doc.Kind, status))
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	// Footer disclaimer
	pdf.SetFont("Helvetica", "I", 8)
	pdf.MultiCell(0, 4,
		"This report is an automated self-assessment and does not constitute legal advice "+
			"or a decision by any immigration authority.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &errors.StandardError{
			Code:      errors.ErrCodeReportRenderFailed,
			Message:   "Failed to render PDF report",
			Details:   err.Error(),
			Retryable: true,
		}
	}
	return buf.Bytes(), nil
}

func (r *Renderer) sectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
}

func (r *Renderer) bulletSection(pdf *fpdf.Fpdf, title string, items []string) {
	if len(items) == 0 {
		return
	}
	r.sectionTitle(pdf, title)
	pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		pdf.MultiCell(0, 6, "- "+item, "", "L", false)
	}
	pdf.Ln(4)
}

var breakdownOrder = []string{
	"experience", "education", "specialization", "language", "documentQuality",
}

func dimensionLabel(dim string) string {
	switch dim {
	case "experience":
		return "Professional Experience"
	case "education":
		return "Education"
	case "specialization":
		return "Specialization Match"
	case "language":
		return "Language Proficiency"
	case "documentQuality":
		return "Document Quality"
	default:
		return dim
	}
}

func categoryLabel(category string) string {
	words := strings.Split(category, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
