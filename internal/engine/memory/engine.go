package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Radioacti1ve/MEOWShop/internal/domain"
	apperrors "github.com/Radioacti1ve/MEOWShop/pkg/errors"
)

// Engine is an in-memory implementation of the SearchEngine interface. It
// mirrors the Elasticsearch ranking contract closely enough for tests and
// single-node deployments: weighted field matching, the shared tie-break
// order and the purchasable-only filters on suggest and similar.
type Engine struct {
	mu   sync.RWMutex
	docs map[string]domain.ProductDocument
}

// New creates an empty in-memory engine.
func New() *Engine {
	return &Engine{docs: make(map[string]domain.ProductDocument)}
}

// Index adds or replaces a single product document.
func (e *Engine) Index(_ context.Context, doc *domain.ProductDocument) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs[doc.ProductID] = *doc
	return nil
}

// Delete removes a document by product ID. Absent documents are ignored.
func (e *Engine) Delete(_ context.Context, productID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.docs, productID)
	return nil
}

// RebuildAll atomically replaces the whole document set.
func (e *Engine) RebuildAll(_ context.Context, docs []domain.ProductDocument) error {
	next := make(map[string]domain.ProductDocument, len(docs))
	for _, doc := range docs {
		next[doc.ProductID] = doc
	}

	e.mu.Lock()
	e.docs = next
	e.mu.Unlock()
	return nil
}

// Get returns the document for a product ID.
func (e *Engine) Get(_ context.Context, productID string) (*domain.ProductDocument, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	doc, ok := e.docs[productID]
	if !ok {
		return nil, apperrors.NotFound("product", productID)
	}
	return &doc, nil
}

// scoredDoc pairs a document with its computed relevance score.
type scoredDoc struct {
	doc   domain.ProductDocument
	score float64
}

// sortRanked orders hits by the shared ranking contract: score descending,
// then average rating descending with unrated products last, then price
// ascending.
func sortRanked(hits []scoredDoc) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		ri, rj := hits[i].doc.AvgRating, hits[j].doc.AvgRating
		switch {
		case ri != nil && rj != nil && *ri != *rj:
			return *ri > *rj
		case ri != nil && rj == nil:
			return true
		case ri == nil && rj != nil:
			return false
		}
		return hits[i].doc.Price < hits[j].doc.Price
	})
}

// Search executes a ranked full-text query with weighted fields.
func (e *Engine) Search(_ context.Context, req *domain.SearchRequest) (*domain.SearchResult, error) {
	terms := tokenize(req.Query)

	e.mu.RLock()
	var hits []scoredDoc
	for _, doc := range e.docs {
		if req.Category != nil && doc.Category != *req.Category {
			continue
		}
		score := searchScore(&doc, terms)
		if score > 0 {
			hits = append(hits, scoredDoc{doc: doc, score: score})
		}
	}
	e.mu.RUnlock()

	sortRanked(hits)

	total := len(hits)
	start := req.Offset()
	if start > total {
		start = total
	}
	end := start + req.PageSize
	if end > total {
		end = total
	}

	items := make([]domain.ProductDocument, 0, end-start)
	for _, hit := range hits[start:end] {
		items = append(items, hit.doc)
	}

	return &domain.SearchResult{Total: total, Items: items}, nil
}

// searchScore computes the weighted relevance of a document against the
// query terms: name 3, description 2, category 2, seller name 1 per term.
func searchScore(doc *domain.ProductDocument, terms []string) float64 {
	var score float64
	name := strings.ToLower(doc.ProductName)
	desc := strings.ToLower(doc.Description)
	category := strings.ToLower(doc.Category)
	seller := strings.ToLower(doc.SellerName)

	for _, term := range terms {
		if strings.Contains(name, term) {
			score += 3
		}
		if strings.Contains(desc, term) {
			score += 2
		}
		if strings.Contains(category, term) {
			score += 2
		}
		if strings.Contains(seller, term) {
			score += 1
		}
	}
	return score
}

// Suggest returns autocomplete suggestions over purchasable products: prefix
// matches rank above fuzzy matches, which rank above substring matches.
func (e *Engine) Suggest(_ context.Context, prefix string, limit int) ([]domain.Suggestion, error) {
	needle := strings.ToLower(prefix)

	e.mu.RLock()
	var hits []scoredDoc
	for _, doc := range e.docs {
		if !doc.Purchasable() {
			continue
		}
		score := suggestScore(strings.ToLower(doc.ProductName), needle)
		if score > 0 {
			hits = append(hits, scoredDoc{doc: doc, score: score})
		}
	}
	e.mu.RUnlock()

	sortRanked(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}

	suggestions := make([]domain.Suggestion, 0, len(hits))
	for _, hit := range hits {
		suggestions = append(suggestions, domain.Suggestion{
			ID:       hit.doc.ProductID,
			Name:     hit.doc.ProductName,
			Category: hit.doc.Category,
			Price:    hit.doc.Price,
		})
	}
	return suggestions, nil
}

// suggestScore ranks the recall tiers: phrase prefix 10, fuzzy token 5,
// substring 2, loose fuzzy 1.
func suggestScore(name, needle string) float64 {
	if strings.HasPrefix(name, needle) {
		return 10
	}
	for _, token := range strings.Fields(name) {
		if strings.HasPrefix(token, needle) {
			return 10
		}
	}
	for _, token := range strings.Fields(name) {
		if withinEditDistance(token, needle, 1) {
			return 5
		}
	}
	if strings.Contains(name, needle) {
		return 2
	}
	for _, token := range strings.Fields(name) {
		if withinEditDistance(token, needle, 2) {
			return 1
		}
	}
	return 0
}

// Similar ranks purchasable products by similarity to the given one: same
// category strongest, same seller, comparable price, textual overlap.
func (e *Engine) Similar(_ context.Context, productID string, limit int) ([]domain.ProductDocument, error) {
	e.mu.RLock()
	source, ok := e.docs[productID]
	e.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("product", productID)
	}

	sourceTerms := tokenize(source.Description)
	if len(sourceTerms) > 12 {
		sourceTerms = sourceTerms[:12]
	}

	e.mu.RLock()
	var hits []scoredDoc
	for _, doc := range e.docs {
		if doc.ProductID == productID || !doc.Purchasable() {
			continue
		}
		score := similarScore(&doc, &source, sourceTerms)
		if score > 0 {
			hits = append(hits, scoredDoc{doc: doc, score: score})
		}
	}
	e.mu.RUnlock()

	sortRanked(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}

	items := make([]domain.ProductDocument, 0, len(hits))
	for _, hit := range hits {
		items = append(items, hit.doc)
	}
	return items, nil
}

// similarScore mirrors the similarity boosts: category 4, seller 2, price
// band 1.5, textual overlap 1 when at least 30% of the source terms appear.
func similarScore(doc, source *domain.ProductDocument, sourceTerms []string) float64 {
	var score float64
	if doc.Category == source.Category {
		score += 4.0
	}
	if doc.SellerID == source.SellerID {
		score += 2.0
	}
	if doc.Price >= source.Price*0.7 && doc.Price <= source.Price*1.3 {
		score += 1.5
	}
	if len(sourceTerms) > 0 {
		text := strings.ToLower(doc.ProductName + " " + doc.Description)
		matched := 0
		for _, term := range sourceTerms {
			if strings.Contains(text, term) {
				matched++
			}
		}
		if float64(matched) >= 0.3*float64(len(sourceTerms)) && matched > 0 {
			score += 1.0
		}
	}
	return score
}

// tokenize lowercases and splits a query into terms.
func tokenize(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

// withinEditDistance reports whether the Levenshtein distance between two
// strings is at most max.
func withinEditDistance(a, b string, max int) bool {
	la, lb := len(a), len(b)
	if la-lb > max || lb-la > max {
		return false
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[lb] <= max
}
