package domain

import "strconv"

// NoRatings is the sentinel cached for products without any comments. It is
// a real cache value, not an absence marker, so zero-comment products do not
// recompute the aggregate on every read.
const NoRatings = "no ratings"

// FormatRating serializes an average rating for caching and API responses.
// Both the synchronizer projection and the cache-miss computation go through
// this single function so the two paths cannot drift apart.
func FormatRating(avg *float64) string {
	if avg == nil {
		return NoRatings
	}
	return strconv.FormatFloat(*avg, 'f', 2, 64)
}
