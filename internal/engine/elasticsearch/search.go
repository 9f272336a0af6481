package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Radioacti1ve/MEOWShop/internal/domain"
)

// Search executes a ranked full-text query against the live alias.
func (e *Engine) Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResult, error) {
	esResp, err := e.execSearch(ctx, searchBody(req))
	if err != nil {
		return nil, err
	}

	items := make([]domain.ProductDocument, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		items = append(items, hit.Source)
	}

	return &domain.SearchResult{
		Total: esResp.Hits.Total.Value,
		Items: items,
	}, nil
}

// Suggest returns autocomplete suggestions for purchasable products.
func (e *Engine) Suggest(ctx context.Context, prefix string, limit int) ([]domain.Suggestion, error) {
	esResp, err := e.execSearch(ctx, suggestBody(prefix, limit))
	if err != nil {
		return nil, err
	}

	suggestions := make([]domain.Suggestion, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		suggestions = append(suggestions, domain.Suggestion{
			ID:       hit.Source.ProductID,
			Name:     hit.Source.ProductName,
			Category: hit.Source.Category,
			Price:    hit.Source.Price,
		})
	}
	return suggestions, nil
}

// Similar returns purchasable products ranked by similarity to the given
// product. The source document is fetched from the index itself, so a
// product that was never indexed yields ErrNotFound.
func (e *Engine) Similar(ctx context.Context, productID string, limit int) ([]domain.ProductDocument, error) {
	doc, err := e.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	esResp, err := e.execSearch(ctx, similarBody(doc, limit))
	if err != nil {
		return nil, err
	}

	items := make([]domain.ProductDocument, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		items = append(items, hit.Source)
	}
	return items, nil
}

// execSearch marshals a query body, runs it against the alias and decodes
// the hits.
func (e *Engine) execSearch(ctx context.Context, body Clause) (*esSearchResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.alias),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
		e.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, esError("elasticsearch search", res.Body, res.Status())
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch search: decode response: %w", err)
	}
	return &esResp, nil
}
