// Package extract turns uploaded files into plain text for assessment.
// A parse failure is terminal for that one document but never for the run.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"visascope/internal/common/logger"
	"visascope/internal/common/metrics"

	docx "github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
)

// ParsedDocument is the immutable result of one extraction attempt.
type ParsedDocument struct {
	FileName      string `json:"fileName"`
	Kind          string `json:"kind"`
	ExtractedText string `json:"extractedText"`
	WordCount     int    `json:"wordCount"`
	ParseSuccess  bool   `json:"parseSuccess"`
	Error         string `json:"error,omitempty"`
}

const (
	errImageNeedsOCR    = "image documents require OCR, not implemented"
	errUnsupportedType  = "unsupported file type"
	errLegacyDocFailure = "legacy .doc structure could not be parsed"
)

type Extractor struct {
	logger logger.Logger
}

func NewExtractor(log logger.Logger) *Extractor {
	return &Extractor{
		logger: log.WithFields(map[string]interface{}{"component": "extractor"}),
	}
}

// Extract dispatches on the file extension (case-insensitive) and never
// returns an error: any failure is recorded on the ParsedDocument itself.
// Extracting the same bytes twice yields the same result.
func (e *Extractor) Extract(data []byte, fileName, kind string) ParsedDocument {
	doc := ParsedDocument{
		FileName: fileName,
		Kind:     strings.ToLower(strings.TrimSpace(kind)),
	}

	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx", ".doc":
		text, err = extractDOCX(data)
	case ".txt":
		text = string(data)
	case ".jpg", ".jpeg", ".png":
		err = errors.New(errImageNeedsOCR)
	default:
		err = errors.New(errUnsupportedType)
	}

	doc.ExtractedText = text
	doc.WordCount = len(strings.Fields(text))

	if err != nil {
		doc.ParseSuccess = false
		doc.Error = err.Error()
		metrics.DocumentParseFailures.WithLabelValues(doc.Kind).Inc()
		e.logger.Warn("document extraction failed", map[string]interface{}{
			"fileName": fileName,
			"kind":     doc.Kind,
			"error":    err.Error(),
		})
		return doc
	}

	doc.ParseSuccess = true
	e.logger.Debug("document extracted", map[string]interface{}{
		"fileName":  fileName,
		"kind":      doc.Kind,
		"wordCount": doc.WordCount,
	})
	return doc
}

// extractPDF pulls the plain text stream out of a PDF. The parser panics on
// some corrupt files, so panics are converted into ordinary parse errors.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf parse failed: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf parse failed: %v", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf text extraction failed: %v", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("pdf text read failed: %v", err)
	}
	return buf.String(), nil
}

// extractDOCX reads the word-processing body paragraphs. Legacy binary .doc
// files fail the zip open and surface as a parse failure.
func extractDOCX(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("docx parse failed: %v", r)
		}
	}()

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%s: %v", errLegacyDocFailure, err)
	}

	var parts []string
	for _, item := range doc.Document.Body.Items {
		if s, ok := item.(fmt.Stringer); ok {
			if line := strings.TrimSpace(s.String()); line != "" {
				parts = append(parts, line)
			}
		}
	}
	return strings.Join(parts, "\n"), nil
}
