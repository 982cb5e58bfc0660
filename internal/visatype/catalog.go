// internal/visatype/catalog.go
package visatype

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"visascope/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

var (
	ErrVisaTypeNotFound = errors.New("VISA_TYPE_NOT_FOUND")
	ErrCatalogInvalid   = errors.New("CATALOG_INVALID")
)

// Catalog reads visa type definitions from postgres with a redis
// read-through cache. Definitions are validated on every load so a
// misconfigured weight set is rejected before it can skew a score.
type Catalog struct {
	db       *sql.DB
	redis    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewCatalog(db *sql.DB, rdb *redis.Client, cacheTTL time.Duration, log logger.Logger) *Catalog {
	return &Catalog{
		db:       db,
		redis:    rdb,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "visatype-catalog"}),
	}
}

// Get resolves one visa type by country and code.
func (c *Catalog) Get(ctx context.Context, country, code string) (*VisaType, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	code = strings.ToLower(strings.TrimSpace(code))

	cacheKey := "visatype:" + country + ":" + code
	if c.redis != nil {
		if val, err := c.redis.Get(ctx, cacheKey).Result(); err == nil {
			var vt VisaType
			if err := json.Unmarshal([]byte(val), &vt); err == nil {
				return &vt, nil
			}
		}
	}

	row := c.db.QueryRowContext(ctx, `
		SELECT definition FROM visa_types
		WHERE country = $1 AND code = $2`, country, code)

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrVisaTypeNotFound, country, code)
		}
		return nil, fmt.Errorf("catalog query failed: %w", err)
	}

	var vt VisaType
	if err := json.Unmarshal(raw, &vt); err != nil {
		return nil, fmt.Errorf("%w: malformed definition for %s/%s: %v", ErrCatalogInvalid, country, code, err)
	}
	if err := vt.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogInvalid, err)
	}

	if c.redis != nil {
		if data, err := json.Marshal(&vt); err == nil {
			if err := c.redis.Set(ctx, cacheKey, data, c.cacheTTL).Err(); err != nil {
				c.logger.Warn("visa type cache write failed", map[string]interface{}{
					"country": country,
					"code":    code,
					"error":   err,
				})
			}
		}
	}

	return &vt, nil
}

// ListByCountry returns all valid definitions for a country. Invalid rows
// are skipped and logged rather than failing the whole listing.
func (c *Catalog) ListByCountry(ctx context.Context, country string) ([]*VisaType, error) {
	country = strings.ToUpper(strings.TrimSpace(country))

	rows, err := c.db.QueryContext(ctx, `
		SELECT definition FROM visa_types
		WHERE country = $1 ORDER BY code`, country)
	if err != nil {
		return nil, fmt.Errorf("catalog query failed: %w", err)
	}
	defer rows.Close()

	var out []*VisaType
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("catalog scan failed: %w", err)
		}
		var vt VisaType
		if err := json.Unmarshal(raw, &vt); err != nil {
			c.logger.Warn("skipping malformed visa type row", map[string]interface{}{
				"country": country,
				"error":   err,
			})
			continue
		}
		if err := vt.Validate(); err != nil {
			c.logger.Warn("skipping invalid visa type", map[string]interface{}{
				"country": country,
				"code":    vt.Code,
				"error":   err,
			})
			continue
		}
		out = append(out, &vt)
	}
	return out, rows.Err()
}
