package elasticsearch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Radioacti1ve/MEOWShop/internal/domain"
)

// roundTrip marshals a query body and decodes it back so assertions run
// against the exact wire shape.
func roundTrip(t *testing.T, body Clause) map[string]any {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	return decoded
}

func dig(t *testing.T, m map[string]any, keys ...string) any {
	t.Helper()
	var current any = m
	for _, key := range keys {
		asMap, ok := current.(map[string]any)
		require.True(t, ok, "expected map at key %q", key)
		current, ok = asMap[key]
		require.True(t, ok, "missing key %q", key)
	}
	return current
}

func TestSearchBody_MultiMatchFieldsAndBoosts(t *testing.T) {
	req := &domain.SearchRequest{Query: "wireless mouse", Page: 2, PageSize: 10}
	body := roundTrip(t, searchBody(req))

	must := dig(t, body, "query", "bool", "must").([]any)
	require.Len(t, must, 1)

	mm := must[0].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "wireless mouse", mm["query"])
	assert.Equal(t, "AUTO", mm["fuzziness"])
	assert.Equal(t, "or", mm["operator"])
	assert.ElementsMatch(t,
		[]any{"product_name^3", "description^2", "category^2", "seller_name"},
		mm["fields"].([]any),
	)

	assert.Equal(t, float64(10), body["from"])
	assert.Equal(t, float64(10), body["size"])
}

func TestSearchBody_CategoryFilter(t *testing.T) {
	category := "electronics"
	req := &domain.SearchRequest{Query: "mouse", Category: &category, Page: 1, PageSize: 20}
	body := roundTrip(t, searchBody(req))

	filters := dig(t, body, "query", "bool", "filter").([]any)
	require.Len(t, filters, 1)
	assert.Equal(t, "electronics", dig(t, filters[0].(map[string]any), "term", "category.keyword"))
}

func TestSearchBody_NoCategoryOmitsFilter(t *testing.T) {
	req := &domain.SearchRequest{Query: "mouse", Page: 1, PageSize: 20}
	body := roundTrip(t, searchBody(req))

	boolQuery := dig(t, body, "query", "bool").(map[string]any)
	_, hasFilter := boolQuery["filter"]
	assert.False(t, hasFilter)
}

func TestRelevanceSort_SharedAcrossAllReadPaths(t *testing.T) {
	searchReq := &domain.SearchRequest{Query: "q", Page: 1, PageSize: 20}
	doc := &domain.ProductDocument{ProductID: "1", Price: 10}

	for name, body := range map[string]Clause{
		"search":  searchBody(searchReq),
		"suggest": suggestBody("q", 5),
		"similar": similarBody(doc, 5),
	} {
		decoded := roundTrip(t, body)
		sorts := decoded["sort"].([]any)
		require.Len(t, sorts, 3, name)

		score := sorts[0].(map[string]any)["_score"].(map[string]any)
		assert.Equal(t, "desc", score["order"], name)

		avgRating := sorts[1].(map[string]any)["avg_rating"].(map[string]any)
		assert.Equal(t, "desc", avgRating["order"], name)
		assert.Equal(t, "_last", avgRating["missing"], name)

		price := sorts[2].(map[string]any)["price"].(map[string]any)
		assert.Equal(t, "asc", price["order"], name)
	}
}

func TestSuggestBody_FourRecallTiers(t *testing.T) {
	body := roundTrip(t, suggestBody("mous", 5))

	should := dig(t, body, "query", "bool", "should").([]any)
	require.Len(t, should, 4)

	prefix := dig(t, should[0].(map[string]any), "match_phrase_prefix", "product_name").(map[string]any)
	assert.Equal(t, "mous", prefix["query"])
	assert.Equal(t, float64(10), prefix["boost"])

	fuzzy := dig(t, should[1].(map[string]any), "match", "product_name").(map[string]any)
	assert.Equal(t, "AUTO", fuzzy["fuzziness"])
	assert.Equal(t, float64(5), fuzzy["boost"])

	wildcard := dig(t, should[2].(map[string]any), "wildcard", "product_name").(map[string]any)
	assert.Equal(t, "*mous*", wildcard["value"])
	assert.Equal(t, float64(2), wildcard["boost"])

	broad := dig(t, should[3].(map[string]any), "match", "product_name").(map[string]any)
	assert.Equal(t, float64(2), broad["fuzziness"])
	assert.Equal(t, float64(1), broad["prefix_length"])
	assert.Equal(t, float64(1), broad["boost"])

	assert.Equal(t, float64(1), dig(t, body, "query", "bool", "minimum_should_match"))
	assert.Equal(t, float64(5), body["size"])
}

func TestSuggestBody_WildcardMatchesAnalyzedTokens(t *testing.T) {
	// Wildcard patterns are not analyzed, so the substring tier targets the
	// analyzed product_name field (lowercase tokens) with a lowercased
	// pattern. A mixed-case prefix must still hit "Wireless Mouse".
	body := roundTrip(t, suggestBody("Wir", 5))

	should := dig(t, body, "query", "bool", "should").([]any)
	wildcard := dig(t, should[2].(map[string]any), "wildcard", "product_name").(map[string]any)
	assert.Equal(t, "*wir*", wildcard["value"])
}

func TestSuggestBody_PurchasableFilter(t *testing.T) {
	body := roundTrip(t, suggestBody("mous", 5))

	filters := dig(t, body, "query", "bool", "filter").([]any)
	require.Len(t, filters, 2)
	assert.Equal(t, domain.StatusAvailable, dig(t, filters[0].(map[string]any), "term", "status"))
	assert.Equal(t, float64(0), dig(t, filters[1].(map[string]any), "range", "in_stock", "gt"))
}

func TestSimilarBody_BoostsAndExclusion(t *testing.T) {
	doc := &domain.ProductDocument{
		ProductID:   "42",
		SellerID:    "7",
		Category:    "electronics",
		Price:       100,
		Description: "a very nice mouse",
	}
	body := roundTrip(t, similarBody(doc, 5))

	should := dig(t, body, "query", "bool", "should").([]any)
	require.Len(t, should, 4)

	category := dig(t, should[0].(map[string]any), "term", "category.keyword").(map[string]any)
	assert.Equal(t, "electronics", category["value"])
	assert.Equal(t, 4.0, category["boost"])

	seller := dig(t, should[1].(map[string]any), "term", "seller_id").(map[string]any)
	assert.Equal(t, "7", seller["value"])
	assert.Equal(t, 2.0, seller["boost"])

	price := dig(t, should[2].(map[string]any), "range", "price").(map[string]any)
	assert.InDelta(t, 70.0, price["gte"], 0.001)
	assert.InDelta(t, 130.0, price["lte"], 0.001)
	assert.Equal(t, 1.5, price["boost"])

	mlt := should[3].(map[string]any)["more_like_this"].(map[string]any)
	assert.Equal(t, "a very nice mouse", mlt["like"])
	assert.Equal(t, float64(1), mlt["min_term_freq"])
	assert.Equal(t, float64(12), mlt["max_query_terms"])
	assert.Equal(t, "30%", mlt["minimum_should_match"])

	mustNot := dig(t, body, "query", "bool", "must_not").([]any)
	require.Len(t, mustNot, 1)
	assert.Equal(t, "42", dig(t, mustNot[0].(map[string]any), "term", "product_id"))

	filters := dig(t, body, "query", "bool", "filter").([]any)
	assert.Len(t, filters, 2)
}

func TestIndexMapping_IsValidJSON(t *testing.T) {
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(indexMapping), &decoded))

	props := dig(t, decoded, "mappings", "properties").(map[string]any)
	for _, field := range []string{
		"product_id", "seller_id", "product_name", "description",
		"price", "category", "in_stock", "status", "seller_name", "avg_rating",
	} {
		assert.Contains(t, props, field)
	}
}
