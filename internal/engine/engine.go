package engine

import (
	"context"

	"github.com/Radioacti1ve/MEOWShop/internal/domain"
)

// SearchEngine defines the interface for indexing and querying product
// documents. Implementations may use Elasticsearch or in-memory storage.
type SearchEngine interface {
	// Index adds or replaces a single product document.
	Index(ctx context.Context, doc *domain.ProductDocument) error

	// Delete removes a document by product ID. Deleting an absent
	// document is not an error.
	Delete(ctx context.Context, productID string) error

	// RebuildAll replaces the entire document set atomically: readers
	// never observe a partially populated index.
	RebuildAll(ctx context.Context, docs []domain.ProductDocument) error

	// Get returns the document for a product ID, or ErrNotFound.
	Get(ctx context.Context, productID string) (*domain.ProductDocument, error)

	// Search executes a ranked full-text query.
	Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResult, error)

	// Suggest returns autocomplete suggestions for purchasable products.
	Suggest(ctx context.Context, prefix string, limit int) ([]domain.Suggestion, error)

	// Similar returns products similar to the given one, excluding it.
	// Returns ErrNotFound if the source product is not indexed.
	Similar(ctx context.Context, productID string, limit int) ([]domain.ProductDocument, error)
}
