package elasticsearch

import (
	"strings"

	"github.com/Radioacti1ve/MEOWShop/internal/domain"
)

// Clause is a single Elasticsearch query clause in its wire form. Queries are
// assembled from typed constructors instead of hand-concatenated JSON so a
// malformed shape fails at the type level, not at the cluster.
type Clause map[string]any

// Term matches a keyword field exactly.
func Term(field string, value any) Clause {
	return Clause{"term": Clause{field: value}}
}

// BoostedTerm matches a keyword field exactly with a scoring boost.
func BoostedTerm(field string, value any, boost float64) Clause {
	return Clause{"term": Clause{field: Clause{"value": value, "boost": boost}}}
}

// MultiMatch searches several fields at once. Per-field boosts are encoded in
// the field names ("product_name^3").
func MultiMatch(query string, fields []string) Clause {
	return Clause{"multi_match": Clause{
		"query":     query,
		"fields":    fields,
		"fuzziness": "AUTO",
		"operator":  "or",
	}}
}

// MatchPhrasePrefix matches documents whose field starts with the phrase.
func MatchPhrasePrefix(field, query string, boost float64) Clause {
	return Clause{"match_phrase_prefix": Clause{
		field: Clause{"query": query, "boost": boost},
	}}
}

// FuzzyMatch is a match clause with automatic fuzziness.
func FuzzyMatch(field, query string, boost float64) Clause {
	return Clause{"match": Clause{
		field: Clause{"query": query, "fuzziness": "AUTO", "boost": boost},
	}}
}

// BroadFuzzyMatch is a match clause with wide edit-distance tolerance for
// short, typo-heavy input.
func BroadFuzzyMatch(field, query string, boost float64) Clause {
	return Clause{"match": Clause{
		field: Clause{
			"query":         query,
			"fuzziness":     2,
			"prefix_length": 1,
			"boost":         boost,
		},
	}}
}

// Wildcard matches the field against a contains-style pattern.
func Wildcard(field, pattern string, boost float64) Clause {
	return Clause{"wildcard": Clause{
		field: Clause{"value": pattern, "boost": boost},
	}}
}

// RangeGT filters on field > value.
func RangeGT(field string, value any) Clause {
	return Clause{"range": Clause{field: Clause{"gt": value}}}
}

// PriceBand matches prices within [min, max] with a scoring boost.
func PriceBand(min, max, boost float64) Clause {
	return Clause{"range": Clause{"price": Clause{
		"gte":   min,
		"lte":   max,
		"boost": boost,
	}}}
}

// MoreLikeThis finds documents textually similar to the given text.
func MoreLikeThis(fields []string, like string, boost float64) Clause {
	return Clause{"more_like_this": Clause{
		"fields":               fields,
		"like":                 like,
		"min_term_freq":        1,
		"max_query_terms":      12,
		"minimum_should_match": "30%",
		"boost":                boost,
	}}
}

// BoolQuery composes clauses into a bool query.
type BoolQuery struct {
	Must               []Clause
	Should             []Clause
	Filter             []Clause
	MustNot            []Clause
	MinimumShouldMatch int
}

// Clause renders the bool query in wire form.
func (q *BoolQuery) Clause() Clause {
	b := Clause{}
	if len(q.Must) > 0 {
		b["must"] = q.Must
	}
	if len(q.Should) > 0 {
		b["should"] = q.Should
	}
	if len(q.Filter) > 0 {
		b["filter"] = q.Filter
	}
	if len(q.MustNot) > 0 {
		b["must_not"] = q.MustNot
	}
	if q.MinimumShouldMatch > 0 {
		b["minimum_should_match"] = q.MinimumShouldMatch
	}
	return Clause{"bool": b}
}

// relevanceSort is the single ranking contract for every ranked read path:
// relevance first, then best-rated (unrated products last), then cheapest.
var relevanceSort = []Clause{
	{"_score": Clause{"order": "desc"}},
	{"avg_rating": Clause{"order": "desc", "missing": "_last"}},
	{"price": Clause{"order": "asc"}},
}

// availabilityFilter restricts results to purchasable products.
func availabilityFilter() []Clause {
	return []Clause{
		Term("status", domain.StatusAvailable),
		RangeGT("in_stock", 0),
	}
}

// searchBody builds the ranked full-text search request.
func searchBody(req *domain.SearchRequest) Clause {
	boolQuery := &BoolQuery{
		Must: []Clause{
			MultiMatch(req.Query, []string{
				"product_name^3",
				"description^2",
				"category^2",
				"seller_name",
			}),
		},
	}
	if req.Category != nil {
		boolQuery.Filter = append(boolQuery.Filter, Term("category.keyword", *req.Category))
	}

	return Clause{
		"query": boolQuery.Clause(),
		"sort":  relevanceSort,
		"from":  req.Offset(),
		"size":  req.PageSize,
	}
}

// suggestBody builds the autocomplete request: four recall tiers over the
// product name, best tier wins, restricted to purchasable products.
func suggestBody(prefix string, limit int) Clause {
	// The wildcard runs against the analyzed field: its tokens are
	// lowercased, so the pattern must be too, or the substring tier would
	// never fire for mixed-case names.
	boolQuery := &BoolQuery{
		Should: []Clause{
			MatchPhrasePrefix("product_name", prefix, 10),
			FuzzyMatch("product_name", prefix, 5),
			Wildcard("product_name", "*"+strings.ToLower(prefix)+"*", 2),
			BroadFuzzyMatch("product_name", prefix, 1),
		},
		MinimumShouldMatch: 1,
		Filter:             availabilityFilter(),
	}

	return Clause{
		"query": boolQuery.Clause(),
		"sort":  relevanceSort,
		"size":  limit,
		"_source": []string{
			"product_id", "product_name", "category", "price",
		},
	}
}

// similarBody builds the similar-products request around a source document:
// same category strongest, same seller, comparable price band, then textual
// similarity, with the source itself excluded.
func similarBody(doc *domain.ProductDocument, limit int) Clause {
	boolQuery := &BoolQuery{
		Should: []Clause{
			BoostedTerm("category.keyword", doc.Category, 4.0),
			BoostedTerm("seller_id", doc.SellerID, 2.0),
			PriceBand(doc.Price*0.7, doc.Price*1.3, 1.5),
			MoreLikeThis([]string{"product_name", "description"}, doc.Description, 1.0),
		},
		MinimumShouldMatch: 1,
		MustNot: []Clause{
			Term("product_id", doc.ProductID),
		},
		Filter: availabilityFilter(),
	}

	return Clause{
		"query": boolQuery.Clause(),
		"sort":  relevanceSort,
		"size":  limit,
	}
}
