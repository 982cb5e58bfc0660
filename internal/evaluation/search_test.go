// internal/evaluation/search_test.go
package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEvaluationSearchQuery_Default(t *testing.T) {
	q := buildEvaluationSearchQuery(SearchFilters{})

	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})

	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)
	assert.Contains(t, must[0], "match_all")

	_, hasFilter := boolQuery["filter"]
	assert.False(t, hasFilter)

	sort := q["sort"].([]map[string]interface{})
	require.Len(t, sort, 1)
	assert.Equal(t, "desc", sort[0]["createdAt"])
}

func TestBuildEvaluationSearchQuery_Keywords(t *testing.T) {
	q := buildEvaluationSearchQuery(SearchFilters{Keywords: "ada software"})

	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)

	multiMatch := must[0].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "ada software", multiMatch["query"])
	assert.Equal(t, []string{"fullName^2", "email", "visaCode", "country"}, multiMatch["fields"])
}

func TestBuildEvaluationSearchQuery_TermFilters(t *testing.T) {
	q := buildEvaluationSearchQuery(SearchFilters{
		Country:  "US",
		VisaCode: "h1b",
		Category: "strong_candidate",
	})

	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filters := boolQuery["filter"].([]interface{})
	require.Len(t, filters, 3)

	terms := map[string]interface{}{}
	for _, f := range filters {
		for field, value := range f.(map[string]interface{})["term"].(map[string]interface{}) {
			terms[field] = value
		}
	}
	assert.Equal(t, "US", terms["country"])
	assert.Equal(t, "h1b", terms["visaCode"])
	assert.Equal(t, "strong_candidate", terms["category"])
}

func TestBuildEvaluationSearchQuery_ScoreRange(t *testing.T) {
	q := buildEvaluationSearchQuery(SearchFilters{MinScore: 40, MaxScore: 80})

	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filters := boolQuery["filter"].([]interface{})
	require.Len(t, filters, 1)

	scoreRange := filters[0].(map[string]interface{})["range"].(map[string]interface{})["finalScore"].(map[string]interface{})
	assert.Equal(t, 40, scoreRange["gte"])
	assert.Equal(t, 80, scoreRange["lte"])
}

func TestBuildEvaluationSearchQuery_MinScoreOnly(t *testing.T) {
	q := buildEvaluationSearchQuery(SearchFilters{MinScore: 60})

	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filters := boolQuery["filter"].([]interface{})
	require.Len(t, filters, 1)

	scoreRange := filters[0].(map[string]interface{})["range"].(map[string]interface{})["finalScore"].(map[string]interface{})
	assert.Equal(t, 60, scoreRange["gte"])
	_, hasUpper := scoreRange["lte"]
	assert.False(t, hasUpper)
}
