// Package oracle is the client for the external text-understanding service.
// The service is treated as untrusted and optional: every response is
// schema-validated before use, a failed or malformed call is never retried,
// and callers are expected to fall back to the deterministic assessor.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"visascope/internal/common/logger"

	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrTimeout         = errors.New("ORACLE_TIMEOUT")
	ErrUnavailable     = errors.New("ORACLE_UNAVAILABLE")
	ErrInvalidResponse = errors.New("ORACLE_INVALID_RESPONSE")
)

// responseSchema is the structural contract for the oracle reply. Anything
// that fails it is discarded wholesale; there is no partial acceptance.
const responseSchema = `{
	"type": "object",
	"required": ["assessments", "profile"],
	"properties": {
		"assessments": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["dimension", "tier", "score"],
				"properties": {
					"dimension": {"type": "string", "minLength": 1},
					"tier": {"type": "string", "enum": ["none", "weak", "moderate", "strong", "exceptional"]},
					"score": {"type": "integer", "minimum": 0, "maximum": 100},
					"evidence": {"type": "array", "items": {"type": "string"}},
					"gaps": {"type": "array", "items": {"type": "string"}}
				}
			}
		},
		"profile": {
			"type": "object",
			"properties": {
				"experience_years": {"type": "integer", "minimum": 0},
				"education_level": {"type": "string"},
				"specialization": {"type": "string"},
				"language_level": {"type": "string"}
			}
		}
	}
}`

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the oracle. It is constructed explicitly and passed in by
// the caller; a missing credential fails here, not on first use.
type Client struct {
	cfg    Config
	client *http.Client
	schema *gojsonschema.Schema
	logger logger.Logger
}

func NewClient(cfg Config, log logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("oracle: base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("oracle: API key is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchema))
	if err != nil {
		return nil, fmt.Errorf("oracle: compile response schema: %w", err)
	}

	return &Client{
		cfg: cfg,
		// No transport timeout; the per-call context deadline governs.
		client: &http.Client{},
		schema: schema,
		logger: log.WithFields(map[string]interface{}{"component": "oracle"}),
	}, nil
}

// Assess sends one assessment request and returns the validated response.
// A single attempt only: timeouts and malformed payloads are equivalent
// from the caller's perspective and both mean "use the fallback".
func (c *Client) Assess(ctx context.Context, req *AssessRequest) (*AssessResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrUnavailable, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/assess", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if err := c.validate(raw); err != nil {
		return nil, err
	}

	var out AssessResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidResponse, err)
	}

	c.logger.Debug("oracle assessment received", map[string]interface{}{
		"assessments": len(out.Assessments),
	})
	return &out, nil
}

func (c *Client) validate(raw []byte) error {
	result, err := c.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %v", ErrInvalidResponse, msgs)
	}
	return nil
}
