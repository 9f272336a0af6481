package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/Radioacti1ve/MEOWShop/internal/domain"
	"github.com/Radioacti1ve/MEOWShop/pkg/database"
	apperrors "github.com/Radioacti1ve/MEOWShop/pkg/errors"
)

// Config holds Elasticsearch connection settings.
type Config struct {
	URL            string
	Alias          string
	ConnectRetries int
}

// Engine is an Elasticsearch-backed implementation of the SearchEngine
// interface. Documents live in generation-named physical indices behind a
// stable alias; full rebuilds populate a fresh generation and swap the alias
// atomically.
type Engine struct {
	client *elasticsearch.Client
	alias  string
	logger *slog.Logger
}

// esSearchResponse is the structure used to decode Elasticsearch search responses.
type esSearchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source domain.ProductDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// esGetResponse is the structure used to decode single-document responses.
type esGetResponse struct {
	Found  bool                   `json:"found"`
	Source domain.ProductDocument `json:"_source"`
}

// esBulkResponse is the structure used to decode Elasticsearch bulk responses.
type esBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"index"`
	} `json:"items"`
}

// esErrorResponse is used to decode Elasticsearch error responses.
type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// New creates an Elasticsearch engine connected to the configured cluster.
// The cluster may still be starting up, so the initial ping is retried with
// backoff. Once reachable, the alias and its first generation index are
// created if absent.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Engine, error) {
	if cfg.Alias == "" {
		cfg.Alias = DefaultAlias
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: failed to create client: %w", err)
	}

	e := &Engine{
		client: client,
		alias:  cfg.Alias,
		logger: logger,
	}

	retries := cfg.ConnectRetries
	if retries < 1 {
		retries = 1
	}
	for attempt := 1; ; attempt++ {
		err = e.Ping(ctx)
		if err == nil {
			break
		}
		if attempt >= retries {
			return nil, fmt.Errorf("elasticsearch: unreachable after %d attempts: %w", retries, err)
		}
		wait := database.RetryBackoff(attempt - 1)
		logger.Warn("elasticsearch not ready, retrying",
			"attempt", attempt,
			"wait", wait.String(),
			"error", err,
		)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := e.ensureAlias(ctx); err != nil {
		return nil, fmt.Errorf("elasticsearch: failed to ensure alias: %w", err)
	}

	return e, nil
}

// Ping checks whether the Elasticsearch cluster is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

// generationName returns a fresh physical index name under the alias.
func (e *Engine) generationName() string {
	return fmt.Sprintf("%s-%d", e.alias, time.Now().UnixNano())
}

// ensureAlias checks whether the alias exists and, if not, creates the first
// generation index and points the alias at it.
func (e *Engine) ensureAlias(ctx context.Context) error {
	res, err := e.client.Indices.ExistsAlias(
		[]string{e.alias},
		e.client.Indices.ExistsAlias.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("check alias exists: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == 200 {
		e.logger.Info("elasticsearch alias already exists", "alias", e.alias)
		return nil
	}

	name := e.generationName()
	if err := e.createIndex(ctx, name); err != nil {
		return err
	}

	res, err = e.client.Indices.PutAlias(
		[]string{name},
		e.alias,
		e.client.Indices.PutAlias.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create alias: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return esError("create alias", res.Body, res.Status())
	}

	e.logger.Info("elasticsearch alias created", "alias", e.alias, "index", name)
	return nil
}

// createIndex creates a generation index with the products mapping.
func (e *Engine) createIndex(ctx context.Context, name string) error {
	res, err := e.client.Indices.Create(
		name,
		e.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return esError("create index", res.Body, res.Status())
	}

	e.logger.Info("elasticsearch index created", "index", name)
	return nil
}

// Index adds or replaces a single product document.
func (e *Engine) Index(ctx context.Context, doc *domain.ProductDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("elasticsearch index: marshal document: %w", err)
	}

	res, err := e.client.Index(
		e.alias,
		bytes.NewReader(data),
		e.client.Index.WithDocumentID(doc.ProductID),
		e.client.Index.WithRefresh("true"),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return esError("elasticsearch index", res.Body, res.Status())
	}

	e.logger.Debug("indexed product", "id", doc.ProductID, "name", doc.ProductName)
	return nil
}

// Delete removes a product document by ID. A 404 is ignored: deleting an
// absent document is not an error.
func (e *Engine) Delete(ctx context.Context, productID string) error {
	res, err := e.client.Delete(
		e.alias,
		productID,
		e.client.Delete.WithRefresh("true"),
		e.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch delete: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() && res.StatusCode != 404 {
		return esError("elasticsearch delete", res.Body, res.Status())
	}

	e.logger.Debug("deleted product", "id", productID)
	return nil
}

// Get returns the indexed document for a product ID.
func (e *Engine) Get(ctx context.Context, productID string) (*domain.ProductDocument, error) {
	res, err := e.client.Get(
		e.alias,
		productID,
		e.client.Get.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch get: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == 404 {
		return nil, apperrors.NotFound("product", productID)
	}
	if res.IsError() {
		return nil, esError("elasticsearch get", res.Body, res.Status())
	}

	var getResp esGetResponse
	if err := json.NewDecoder(res.Body).Decode(&getResp); err != nil {
		return nil, fmt.Errorf("elasticsearch get: decode response: %w", err)
	}
	if !getResp.Found {
		return nil, apperrors.NotFound("product", productID)
	}

	return &getResp.Source, nil
}

// RebuildAll replaces the full document set: it bulk-loads every document
// into a fresh generation index, atomically repoints the alias, then removes
// the previous generations. Readers keep hitting the old generation until the
// swap and never observe a partially built index.
func (e *Engine) RebuildAll(ctx context.Context, docs []domain.ProductDocument) error {
	old, err := e.aliasedIndices(ctx)
	if err != nil {
		return err
	}

	name := e.generationName()
	if err := e.createIndex(ctx, name); err != nil {
		return err
	}

	if err := e.bulkIndex(ctx, name, docs); err != nil {
		// Leave the alias on the old generation; clean up the half-built one.
		if cleanErr := e.deleteIndices(ctx, []string{name}); cleanErr != nil {
			e.logger.Warn("failed to clean up aborted generation", "index", name, "error", cleanErr)
		}
		return err
	}

	if err := e.swapAlias(ctx, old, name); err != nil {
		return err
	}

	if len(old) > 0 {
		if err := e.deleteIndices(ctx, old); err != nil {
			// The swap already succeeded; stale generations only waste disk.
			e.logger.Warn("failed to delete old generations", "indices", old, "error", err)
		}
	}

	e.logger.Info("index rebuilt",
		"alias", e.alias,
		"index", name,
		"documents", len(docs),
	)
	return nil
}

// aliasedIndices returns the physical indices currently behind the alias.
func (e *Engine) aliasedIndices(ctx context.Context) ([]string, error) {
	res, err := e.client.Indices.GetAlias(
		e.client.Indices.GetAlias.WithName(e.alias),
		e.client.Indices.GetAlias.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("resolve alias: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == 404 {
		return nil, nil
	}
	if res.IsError() {
		return nil, esError("resolve alias", res.Body, res.Status())
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("resolve alias: decode response: %w", err)
	}

	indices := make([]string, 0, len(body))
	for name := range body {
		indices = append(indices, name)
	}
	return indices, nil
}

// swapAlias atomically moves the alias from the old generations to the new one.
func (e *Engine) swapAlias(ctx context.Context, old []string, next string) error {
	actions := make([]map[string]any, 0, len(old)+1)
	for _, name := range old {
		actions = append(actions, map[string]any{
			"remove": map[string]any{"index": name, "alias": e.alias},
		})
	}
	actions = append(actions, map[string]any{
		"add": map[string]any{"index": next, "alias": e.alias},
	})

	data, err := json.Marshal(map[string]any{"actions": actions})
	if err != nil {
		return fmt.Errorf("swap alias: marshal actions: %w", err)
	}

	res, err := e.client.Indices.UpdateAliases(
		bytes.NewReader(data),
		e.client.Indices.UpdateAliases.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("swap alias: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return esError("swap alias", res.Body, res.Status())
	}
	return nil
}

// deleteIndices removes physical indices, ignoring 404s.
func (e *Engine) deleteIndices(ctx context.Context, names []string) error {
	res, err := e.client.Indices.Delete(
		names,
		e.client.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete indices: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() && res.StatusCode != 404 {
		return esError("delete indices", res.Body, res.Status())
	}
	return nil
}

// bulkIndex loads documents into a specific physical index via the bulk
// NDJSON API.
func (e *Engine) bulkIndex(ctx context.Context, index string, docs []domain.ProductDocument) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for i := range docs {
		action := map[string]any{
			"index": map[string]any{
				"_index": index,
				"_id":    docs[i].ProductID,
			},
		}
		if err := json.NewEncoder(&buf).Encode(action); err != nil {
			return fmt.Errorf("elasticsearch bulk index: encode action: %w", err)
		}
		if err := json.NewEncoder(&buf).Encode(docs[i]); err != nil {
			return fmt.Errorf("elasticsearch bulk index: encode document: %w", err)
		}
	}

	res, err := e.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		e.client.Bulk.WithIndex(index),
		e.client.Bulk.WithRefresh("true"),
		e.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch bulk index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return esError("elasticsearch bulk index", res.Body, res.Status())
	}

	var bulkResp esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("elasticsearch bulk index: decode response: %w", err)
	}

	if bulkResp.Errors {
		var errMsgs []string
		for _, item := range bulkResp.Items {
			if item.Index.Error.Type != "" {
				errMsgs = append(errMsgs, fmt.Sprintf("id=%s: %s: %s", item.Index.ID, item.Index.Error.Type, item.Index.Error.Reason))
			}
		}
		return fmt.Errorf("elasticsearch bulk index: partial errors: %s", strings.Join(errMsgs, "; "))
	}

	e.logger.Info("bulk indexed products", "index", index, "count", len(docs))
	return nil
}

// esError decodes an error response body into a readable error.
func esError(op string, body io.Reader, status string) error {
	var errResp esErrorResponse
	if decErr := json.NewDecoder(body).Decode(&errResp); decErr == nil && errResp.Error.Type != "" {
		return fmt.Errorf("%s: %s: %s", op, errResp.Error.Type, errResp.Error.Reason)
	}
	return fmt.Errorf("%s: unexpected status %s", op, status)
}
