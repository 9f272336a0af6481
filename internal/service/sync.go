package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Radioacti1ve/MEOWShop/internal/engine"
	"github.com/Radioacti1ve/MEOWShop/internal/repository"
	apperrors "github.com/Radioacti1ve/MEOWShop/pkg/errors"
)

// SyncService keeps the search index consistent with the relational store.
// The store is the source of truth: the index is always rebuildable from it.
type SyncService struct {
	repo   repository.CatalogRepository
	engine engine.SearchEngine
	logger *slog.Logger
}

// NewSyncService creates a new index synchronizer.
func NewSyncService(repo repository.CatalogRepository, eng engine.SearchEngine, logger *slog.Logger) *SyncService {
	return &SyncService{repo: repo, engine: eng, logger: logger}
}

// ReindexAll rebuilds the entire index from the relational store and returns
// the number of documents indexed. The rebuild is atomic: searches keep
// hitting the previous document set until the new one is complete.
func (s *SyncService) ReindexAll(ctx context.Context) (int, error) {
	docs, err := s.repo.FetchAllDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("reindex: fetch documents: %w", err)
	}

	if err := s.engine.RebuildAll(ctx, docs); err != nil {
		return 0, fmt.Errorf("reindex: rebuild: %w", err)
	}

	s.logger.Info("full reindex complete", "documents", len(docs))
	return len(docs), nil
}

// ReindexOne refreshes the indexed document for a single product. If the
// product no longer exists relationally, it is removed from the index
// instead, so callers can fire it on any product mutation including deletes.
func (s *SyncService) ReindexOne(ctx context.Context, productID string) error {
	doc, err := s.repo.FetchDocument(ctx, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Info("product gone from store, removing from index", "product_id", productID)
			return s.Remove(ctx, productID)
		}
		return fmt.Errorf("reindex %s: fetch document: %w", productID, err)
	}

	if err := s.engine.Index(ctx, doc); err != nil {
		return fmt.Errorf("reindex %s: index: %w", productID, err)
	}

	s.logger.Debug("product reindexed", "product_id", productID)
	return nil
}

// Remove deletes a product from the index. Removing an absent product is a
// no-op.
func (s *SyncService) Remove(ctx context.Context, productID string) error {
	if err := s.engine.Delete(ctx, productID); err != nil {
		return fmt.Errorf("remove %s from index: %w", productID, err)
	}
	return nil
}
