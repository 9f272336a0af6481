package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPurchasable(t *testing.T) {
	tests := []struct {
		name string
		doc  ProductDocument
		want bool
	}{
		{"available and stocked", ProductDocument{Status: StatusAvailable, InStock: 3}, true},
		{"available but out of stock", ProductDocument{Status: StatusAvailable, InStock: 0}, false},
		{"disabled", ProductDocument{Status: StatusDisabled, InStock: 10}, false},
		{"waiting", ProductDocument{Status: StatusWaiting, InStock: 10}, false},
		{"rejected", ProductDocument{Status: StatusRejected, InStock: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.doc.Purchasable())
		})
	}
}

func TestSearchRequestOffset(t *testing.T) {
	assert.Equal(t, 0, (&SearchRequest{Page: 1, PageSize: 20}).Offset())
	assert.Equal(t, 20, (&SearchRequest{Page: 2, PageSize: 20}).Offset())
	assert.Equal(t, 45, (&SearchRequest{Page: 4, PageSize: 15}).Offset())
}

func TestFormatRating(t *testing.T) {
	assert.Equal(t, NoRatings, FormatRating(nil))

	v := 4.567
	// The store already rounds to two decimals; formatting keeps two digits
	// regardless so cached values stay uniform.
	assert.Equal(t, "4.57", FormatRating(&v))
}
