// internal/evaluation/store.go
package evaluation

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"visascope/internal/common/errors"
	"visascope/internal/common/logger"

	"github.com/lib/pq"
)

// Store persists evaluation records. Records are create-only; there is no
// update path. Reads past the retention window behave exactly like reads of
// an id that never existed.
type Store struct {
	db      *sql.DB
	indexer Indexer // nil when search indexing is disabled
	logger  logger.Logger
}

// Indexer is the slice of the search layer the store needs. Indexing is
// best-effort; the store logs failures and keeps going.
type Indexer interface {
	Index(ctx context.Context, rec *Record) error
}

func NewStore(db *sql.DB, indexer Indexer, log logger.Logger) *Store {
	return &Store{
		db:      db,
		indexer: indexer,
		logger:  log.WithFields(map[string]interface{}{"component": "evaluation-store"}),
	}
}

// Create inserts the record and writes a non-critical audit entry. A primary
// key collision maps to DUPLICATE_RECORD.
func (s *Store) Create(ctx context.Context, rec *Record) error {
	submissionJSON, err := json.Marshal(rec.Submission)
	if err != nil {
		return errors.NewInternalError(fmt.Errorf("marshal submission: %w", err))
	}
	documentsJSON, err := json.Marshal(rec.Documents)
	if err != nil {
		return errors.NewInternalError(fmt.Errorf("marshal documents: %w", err))
	}
	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return errors.NewInternalError(fmt.Errorf("marshal result: %w", err))
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations (
			id, country, visa_code, submission, documents, result,
			final_score, category, created_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID,
		rec.Submission.Country,
		rec.Submission.VisaCode,
		submissionJSON,
		documentsJSON,
		resultJSON,
		rec.Result.FinalScore,
		string(rec.Result.Category),
		rec.CreatedAt,
		rec.ExpiresAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23505" {
			return errors.NewDuplicateRecordError(rec.ID)
		}
		return errors.NewRecordInsertError(fmt.Sprintf("insert failed: %v", err))
	}

	// Audit log entry is non-critical, log errors but don't fail the create.
	auditDetailsJSON, err := json.Marshal(map[string]interface{}{
		"country":    rec.Submission.Country,
		"visaCode":   rec.Submission.VisaCode,
		"finalScore": rec.Result.FinalScore,
		"category":   rec.Result.Category,
		"usedOracle": rec.Result.UsedOracle,
	})
	if err != nil {
		s.logger.Warn("failed to marshal audit log details", map[string]interface{}{
			"error": err,
		})
		auditDetailsJSON = []byte("{}")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"evaluation_created",
		"evaluation",
		rec.ID,
		auditDetailsJSON,
		rec.CreatedAt,
	)
	if err != nil {
		s.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":        err,
			"evaluationId": rec.ID,
		})
	}

	if s.indexer != nil {
		if err := s.indexer.Index(ctx, rec); err != nil {
			s.logger.Warn("search indexing failed", map[string]interface{}{
				"error":        err.Error(),
				"evaluationId": rec.ID,
			})
		}
	}

	s.logger.Info("evaluation record created", map[string]interface{}{
		"evaluationId": rec.ID,
		"country":      rec.Submission.Country,
		"visaCode":     rec.Submission.VisaCode,
		"finalScore":   rec.Result.FinalScore,
		"category":     rec.Result.Category,
	})

	return nil
}

// Get loads a record by id. Expired records are indistinguishable from
// missing ones.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	var (
		rec            Record
		submissionJSON []byte
		documentsJSON  []byte
		resultJSON     []byte
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, submission, documents, result, created_at, expires_at
		FROM evaluations
		WHERE id = $1`, id).Scan(
		&rec.ID, &submissionJSON, &documentsJSON, &resultJSON,
		&rec.CreatedAt, &rec.ExpiresAt,
	)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewRecordNotFoundError(id)
		}
		return nil, errors.NewInternalError(fmt.Errorf("query evaluation: %w", err))
	}

	if time.Now().UTC().After(rec.ExpiresAt) {
		return nil, errors.NewRecordNotFoundError(id)
	}

	if err := json.Unmarshal(submissionJSON, &rec.Submission); err != nil {
		return nil, errors.NewInternalError(fmt.Errorf("unmarshal submission: %w", err))
	}
	if err := json.Unmarshal(documentsJSON, &rec.Documents); err != nil {
		return nil, errors.NewInternalError(fmt.Errorf("unmarshal documents: %w", err))
	}
	if err := json.Unmarshal(resultJSON, &rec.Result); err != nil {
		return nil, errors.NewInternalError(fmt.Errorf("unmarshal result: %w", err))
	}

	return &rec, nil
}
