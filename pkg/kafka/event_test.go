package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalEvent(t *testing.T) {
	raw := []byte(`{
		"event_id": "e-1",
		"event_type": "product.created",
		"aggregate_id": "42",
		"aggregate_type": "product",
		"version": 1,
		"timestamp": "2026-08-01T12:00:00Z",
		"source": "product-service",
		"data": {"name": "Mouse"}
	}`)

	event, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "e-1", event.EventID)
	assert.Equal(t, "product.created", event.EventType)
	assert.Equal(t, "42", event.AggregateID)
	assert.Equal(t, "product", event.AggregateType)
	assert.Equal(t, "product-service", event.Source)
	assert.Equal(t, 1, event.Version)
	assert.False(t, event.Timestamp.IsZero())
	assert.JSONEq(t, `{"name": "Mouse"}`, string(event.Data))
}

func TestUnmarshalEvent_InvalidJSON(t *testing.T) {
	_, err := UnmarshalEvent([]byte("{not json"))
	assert.Error(t, err)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "meowshop.product.created", Topic("product", "created"))
	assert.Equal(t, "meowshop.comment.deleted", Topic("comment", "deleted"))
}
