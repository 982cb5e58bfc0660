// internal/server/handlers.go
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"visascope/internal/common/errors"
	"visascope/internal/common/logger"
	"visascope/internal/common/metrics"
	"visascope/internal/evaluation"
	"visascope/internal/visatype"

	"github.com/gin-gonic/gin"
)

// Narrow interfaces over the collaborators so handlers are testable with
// plain fakes.
type CatalogService interface {
	Get(ctx context.Context, country, code string) (*visatype.VisaType, error)
	ListByCountry(ctx context.Context, country string) ([]*visatype.VisaType, error)
}

type PipelineService interface {
	Run(ctx context.Context, sub evaluation.Submission, uploads []evaluation.Upload, vt *visatype.VisaType) (*evaluation.Record, error)
}

type StoreService interface {
	Create(ctx context.Context, rec *evaluation.Record) error
	Get(ctx context.Context, id string) (*evaluation.Record, error)
}

type SearchService interface {
	Search(ctx context.Context, filters evaluation.SearchFilters) (*evaluation.SearchResult, error)
}

type ReportService interface {
	Render(rec *evaluation.Record) ([]byte, error)
}

type NotifyService interface {
	Notify(ctx context.Context, rec *evaluation.Record)
}

// Handlers holds the route implementations.
type Handlers struct {
	catalog        CatalogService
	pipeline       PipelineService
	store          StoreService
	search         SearchService // nil when search is disabled
	report         ReportService
	notifier       NotifyService // nil when notifications are disabled
	maxUploadBytes int64
	logger         logger.Logger
}

func NewHandlers(
	catalog CatalogService,
	pipeline PipelineService,
	store StoreService,
	search SearchService,
	report ReportService,
	notifier NotifyService,
	maxUploadBytes int,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		catalog:        catalog,
		pipeline:       pipeline,
		store:          store,
		search:         search,
		report:         report,
		notifier:       notifier,
		maxUploadBytes: int64(maxUploadBytes),
		logger:         log.WithFields(map[string]interface{}{"component": "handlers"}),
	}
}

// Health reports liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SubmitEvaluation accepts the multipart submission, runs the pipeline and
// persists the record. The response carries the full record.
//
// POST /api/v1/evaluations
func (h *Handlers) SubmitEvaluation(c *gin.Context) {
	sub := evaluation.Submission{
		FullName:    strings.TrimSpace(c.PostForm("fullName")),
		Email:       strings.TrimSpace(c.PostForm("email")),
		Phone:       strings.TrimSpace(c.PostForm("phone")),
		Country:     strings.ToUpper(strings.TrimSpace(c.PostForm("country"))),
		VisaCode:    strings.ToLower(strings.TrimSpace(c.PostForm("visaType"))),
		Description: strings.TrimSpace(c.PostForm("description")),
	}

	if err := evaluation.ValidateSubmission(sub); err != nil {
		h.respondError(c, errors.NewValidationError(err.Error()))
		return
	}

	vt, err := h.catalog.Get(c.Request.Context(), sub.Country, sub.VisaCode)
	if err != nil {
		if stderrors.Is(err, visatype.ErrVisaTypeNotFound) {
			h.respondError(c, errors.NewVisaTypeNotFoundError(sub.Country, sub.VisaCode))
			return
		}
		h.respondError(c, errors.Normalize(err))
		return
	}

	uploads, err := h.readUploads(c)
	if err != nil {
		h.respondError(c, errors.NewValidationError(err.Error()))
		return
	}

	rec, err := h.pipeline.Run(c.Request.Context(), sub, uploads, vt)
	if err != nil {
		h.respondError(c, errors.Normalize(err))
		return
	}

	if err := h.store.Create(c.Request.Context(), rec); err != nil {
		h.respondError(c, errors.Normalize(err))
		return
	}

	if h.notifier != nil {
		// Delivery happens off the request path; its failures are logged
		// inside the notifier.
		go func(rec *evaluation.Record) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			h.notifier.Notify(ctx, rec)
		}(rec)
	}

	c.JSON(http.StatusCreated, rec)
}

// GetEvaluation returns one stored record.
//
// GET /api/v1/evaluations/:id
func (h *Handlers) GetEvaluation(c *gin.Context) {
	rec, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, errors.Normalize(err))
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetEvaluationReport streams the PDF rendering of a stored record.
//
// GET /api/v1/evaluations/:id/report
func (h *Handlers) GetEvaluationReport(c *gin.Context) {
	rec, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, errors.Normalize(err))
		return
	}

	pdfBytes, err := h.report.Render(rec)
	if err != nil {
		h.respondError(c, errors.Normalize(err))
		return
	}

	c.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename="evaluation-%s.pdf"`, rec.ID))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// ListVisaTypes returns the catalog entries for one country.
//
// GET /api/v1/visa-types?country=US
func (h *Handlers) ListVisaTypes(c *gin.Context) {
	country := strings.ToUpper(strings.TrimSpace(c.Query("country")))
	if country == "" {
		h.respondError(c, errors.NewValidationError("country query parameter is required"))
		return
	}

	types, err := h.catalog.ListByCountry(c.Request.Context(), country)
	if err != nil {
		h.respondError(c, errors.Normalize(err))
		return
	}
	if types == nil {
		types = []*visatype.VisaType{}
	}
	c.JSON(http.StatusOK, gin.H{"country": country, "visaTypes": types})
}

// SearchEvaluations serves the admin listing backed by the search index.
//
// GET /api/v1/admin/evaluations
func (h *Handlers) SearchEvaluations(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": gin.H{"code": "SEARCH_DISABLED", "message": "Search is not enabled"},
		})
		return
	}

	filters := evaluation.SearchFilters{
		Country:  strings.ToUpper(strings.TrimSpace(c.Query("country"))),
		VisaCode: strings.ToLower(strings.TrimSpace(c.Query("visaType"))),
		Category: strings.TrimSpace(c.Query("category")),
		Keywords: strings.TrimSpace(c.Query("q")),
		MinScore: intQuery(c, "minScore"),
		MaxScore: intQuery(c, "maxScore"),
		From:     intQuery(c, "from"),
		Size:     intQuery(c, "size"),
	}

	result, err := h.search.Search(c.Request.Context(), filters)
	if err != nil {
		h.respondError(c, errors.Normalize(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// readUploads collects the files from the `documents` multipart field with
// the parallel `kinds` field declaring each file's document kind.
func (h *Handlers) readUploads(c *gin.Context) ([]evaluation.Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// No files attached is a valid submission.
		return nil, nil
	}

	files := form.File["documents"]
	kinds := form.Value["kinds"]

	uploads := make([]evaluation.Upload, 0, len(files))
	for i, fh := range files {
		if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
			return nil, fmt.Errorf("file %q exceeds the %d byte limit", fh.Filename, h.maxUploadBytes)
		}

		kind := "other"
		if i < len(kinds) && strings.TrimSpace(kinds[i]) != "" {
			kind = strings.ToLower(strings.TrimSpace(kinds[i]))
		}

		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open file %q: %v", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read file %q: %v", fh.Filename, err)
		}

		uploads = append(uploads, evaluation.Upload{
			FileName: fh.Filename,
			Kind:     kind,
			Data:     data,
		})
	}
	return uploads, nil
}

func (h *Handlers) respondError(c *gin.Context, stdErr *errors.StandardError) {
	status := errors.HTTPStatus(stdErr.Code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", map[string]interface{}{
			"path":  c.FullPath(),
			"code":  stdErr.Code,
			"error": stdErr.Details,
		})
	}
	metrics.EvaluationsFailed.WithLabelValues(string(stdErr.Code)).Inc()

	c.JSON(status, gin.H{
		"error": gin.H{
			"code":      stdErr.Code,
			"message":   stdErr.Message,
			"details":   stdErr.Details,
			"retryable": stdErr.Retryable,
		},
	})
}

func intQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}
