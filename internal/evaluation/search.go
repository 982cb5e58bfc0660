// internal/evaluation/search.go
package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"visascope/internal/common/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const evaluationsIndex = "evaluations"

// SearchFilters narrows the admin evaluation search.
type SearchFilters struct {
	Country  string
	VisaCode string
	Category string
	MinScore int
	MaxScore int
	Keywords string
	From     int
	Size     int
}

// SearchHit is the flattened projection stored in the search index. The
// postgres record stays the source of truth; hits carry only what the admin
// listing displays.
type SearchHit struct {
	ID         string    `json:"id"`
	Country    string    `json:"country"`
	VisaCode   string    `json:"visaCode"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	FinalScore int       `json:"finalScore"`
	Category   string    `json:"category"`
	UsedOracle bool      `json:"usedOracle"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SearchResult is one page of hits plus the total match count.
type SearchResult struct {
	Total int         `json:"total"`
	Hits  []SearchHit `json:"hits"`
}

// SearchService indexes completed evaluations and serves the admin listing.
type SearchService struct {
	client *elasticsearch.Client
	logger logger.Logger
}

func NewSearchService(client *elasticsearch.Client, log logger.Logger) *SearchService {
	return &SearchService{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "evaluation-search"}),
	}
}

// Index writes the flattened projection of a record. Callers treat failures
// as non-fatal.
func (s *SearchService) Index(ctx context.Context, rec *Record) error {
	hit := SearchHit{
		ID:         rec.ID,
		Country:    rec.Submission.Country,
		VisaCode:   rec.Submission.VisaCode,
		FullName:   rec.Submission.FullName,
		Email:      rec.Submission.Email,
		FinalScore: rec.Result.FinalScore,
		Category:   string(rec.Result.Category),
		UsedOracle: rec.Result.UsedOracle,
		CreatedAt:  rec.CreatedAt,
	}

	body, err := json.Marshal(hit)
	if err != nil {
		return fmt.Errorf("marshal search document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      evaluationsIndex,
		DocumentID: rec.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("index request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index request returned %s", res.Status())
	}
	return nil
}

// Search runs the admin listing query, newest first.
func (s *SearchService) Search(ctx context.Context, filters SearchFilters) (*SearchResult, error) {
	queryBody := buildEvaluationSearchQuery(filters)

	body, _ := json.Marshal(queryBody)

	from := filters.From
	size := filters.Size
	if size <= 0 {
		size = 20
	}

	req := esapi.SearchRequest{
		Index: []string{evaluationsIndex},
		Body:  strings.NewReader(string(body)),
		From:  &from,
		Size:  &size,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search request returned %s", res.Status())
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source SearchHit `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	result := &SearchResult{
		Total: parsed.Hits.Total.Value,
		Hits:  make([]SearchHit, 0, len(parsed.Hits.Hits)),
	}
	for _, h := range parsed.Hits.Hits {
		result.Hits = append(result.Hits, h.Source)
	}
	return result, nil
}

func buildEvaluationSearchQuery(filters SearchFilters) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if filters.Keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  filters.Keywords,
				"fields": []string{"fullName^2", "email", "visaCode", "country"},
				"type":   "best_fields",
			},
		})
	}

	if filters.Country != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"country": filters.Country},
		})
	}
	if filters.VisaCode != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"visaCode": filters.VisaCode},
		})
	}
	if filters.Category != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"category": filters.Category},
		})
	}

	scoreRange := map[string]interface{}{}
	if filters.MinScore > 0 {
		scoreRange["gte"] = filters.MinScore
	}
	if filters.MaxScore > 0 {
		scoreRange["lte"] = filters.MaxScore
	}
	if len(scoreRange) > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{"finalScore": scoreRange},
		})
	}

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery := map[string]interface{}{"must": mustClauses}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
		"sort": []map[string]interface{}{{"createdAt": "desc"}},
	}
}
