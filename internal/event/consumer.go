package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Radioacti1ve/MEOWShop/internal/service"
	"github.com/Radioacti1ve/MEOWShop/pkg/kafka"
)

// Product change event types emitted by the catalog writers.
const (
	TypeProductCreated = "product.created"
	TypeProductUpdated = "product.updated"
	TypeProductDeleted = "product.deleted"
)

// ProductConsumer subscribes to product change topics and keeps the search
// index in step without full rebuilds: creates and updates trigger a
// single-document reindex, deletes remove the document.
type ProductConsumer struct {
	consumers []*kafka.Consumer
	sync      *service.SyncService
	logger    *slog.Logger
}

// NewProductConsumer creates consumers for the product created, updated and
// deleted topics, all in the same consumer group.
func NewProductConsumer(brokers []string, groupID string, syncSvc *service.SyncService, logger *slog.Logger) *ProductConsumer {
	c := &ProductConsumer{
		sync:   syncSvc,
		logger: logger,
	}

	for _, action := range []string{"created", "updated", "deleted"} {
		cfg := kafka.ConsumerConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   kafka.Topic("product", action),
		}
		c.consumers = append(c.consumers, kafka.NewConsumer(cfg, c.handle, logger))
	}

	return c
}

// Start runs all topic consumers until the context is canceled.
func (c *ProductConsumer) Start(ctx context.Context) error {
	var wg sync.WaitGroup
	errCh := make(chan error, len(c.consumers))

	for _, consumer := range c.consumers {
		wg.Add(1)
		go func(consumer *kafka.Consumer) {
			defer wg.Done()
			if err := consumer.Start(ctx); err != nil {
				errCh <- err
			}
		}(consumer)
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// Close stops all topic consumers.
func (c *ProductConsumer) Close() error {
	var firstErr error
	for _, consumer := range c.consumers {
		if err := consumer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// handle routes one product change event to the synchronizer. The aggregate
// ID carries the product ID; the payload is not needed because the document
// is re-read from the store, which also absorbs out-of-order events.
func (c *ProductConsumer) handle(ctx context.Context, event *kafka.Event) error {
	switch event.EventType {
	case TypeProductCreated, TypeProductUpdated:
		if err := c.sync.ReindexOne(ctx, event.AggregateID); err != nil {
			return fmt.Errorf("handle %s: %w", event.EventType, err)
		}
	case TypeProductDeleted:
		if err := c.sync.Remove(ctx, event.AggregateID); err != nil {
			return fmt.Errorf("handle %s: %w", event.EventType, err)
		}
	default:
		c.logger.Warn("ignoring unknown event type",
			"event_type", event.EventType,
			"aggregate_id", event.AggregateID,
		)
	}
	return nil
}
