package elasticsearch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Radioacti1ve/MEOWShop/internal/domain"
	apperrors "github.com/Radioacti1ve/MEOWShop/pkg/errors"
)

// newIntegrationEngine connects to a live cluster, or skips the test when
// ELASTICSEARCH_URL is not set. Each test run gets its own alias so parallel
// runs cannot collide.
func newIntegrationEngine(t *testing.T) *Engine {
	t.Helper()

	url := os.Getenv("ELASTICSEARCH_URL")
	if url == "" {
		t.Skip("ELASTICSEARCH_URL not set; skipping Elasticsearch integration test")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng, err := New(context.Background(), Config{
		URL:            url,
		Alias:          fmt.Sprintf("products-test-%d", time.Now().UnixNano()),
		ConnectRetries: 2,
	}, logger)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx := context.Background()
		if indices, err := eng.aliasedIndices(ctx); err == nil && len(indices) > 0 {
			_ = eng.deleteIndices(ctx, indices)
		}
	})

	return eng
}

func TestIntegration_IndexGetDelete(t *testing.T) {
	eng := newIntegrationEngine(t)
	ctx := context.Background()

	doc := &domain.ProductDocument{
		ProductID: "1", SellerID: "10", ProductName: "Wireless Mouse",
		Description: "Ergonomic wireless mouse", Category: "electronics",
		Price: 29.99, InStock: 12, Status: domain.StatusAvailable,
		SellerName: "techstore",
	}
	require.NoError(t, eng.Index(ctx, doc))

	got, err := eng.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Wireless Mouse", got.ProductName)

	require.NoError(t, eng.Delete(ctx, "1"))
	_, err = eng.Get(ctx, "1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestIntegration_SearchRanksNameMatchesFirst(t *testing.T) {
	eng := newIntegrationEngine(t)
	ctx := context.Background()

	docs := []domain.ProductDocument{
		{ProductID: "1", ProductName: "Wireless Mouse", Description: "Ergonomic",
			Category: "electronics", Price: 29.99, InStock: 5, Status: domain.StatusAvailable},
		{ProductID: "2", ProductName: "Desk Lamp", Description: "Includes a free mouse pad",
			Category: "office", Price: 19.99, InStock: 5, Status: domain.StatusAvailable},
	}
	require.NoError(t, eng.RebuildAll(ctx, docs))

	result, err := eng.Search(ctx, &domain.SearchRequest{Query: "mouse", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.Total, 1)
	assert.Equal(t, "1", result.Items[0].ProductID)
}

func TestIntegration_RebuildAllSwapsAtomically(t *testing.T) {
	eng := newIntegrationEngine(t)
	ctx := context.Background()

	first := []domain.ProductDocument{
		{ProductID: "1", ProductName: "Old Product", Price: 1, InStock: 1, Status: domain.StatusAvailable},
	}
	require.NoError(t, eng.RebuildAll(ctx, first))

	second := []domain.ProductDocument{
		{ProductID: "2", ProductName: "New Product", Price: 2, InStock: 1, Status: domain.StatusAvailable},
	}
	require.NoError(t, eng.RebuildAll(ctx, second))

	// Only the new generation is visible behind the alias.
	_, err := eng.Get(ctx, "1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	got, err := eng.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "New Product", got.ProductName)

	// The old generation index itself is gone too.
	indices, err := eng.aliasedIndices(ctx)
	require.NoError(t, err)
	assert.Len(t, indices, 1)
}
