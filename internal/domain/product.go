package domain

// Product status values as stored in the relational products table and
// mirrored into the search index.
const (
	StatusWaiting   = "waiting"
	StatusAvailable = "available"
	StatusDisabled  = "disabled"
	StatusRejected  = "rejected"
)

// ProductDocument is the denormalized search-index projection of a product.
// It is produced by the synchronizer from the canonical join/aggregate query
// and is keyed by ProductID; writes always replace the whole document.
type ProductDocument struct {
	ProductID   string   `json:"product_id"`
	SellerID    string   `json:"seller_id"`
	ProductName string   `json:"product_name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	InStock     int      `json:"in_stock"`
	Status      string   `json:"status"`
	SellerName  string   `json:"seller_name"`
	AvgRating   *float64 `json:"avg_rating"`
}

// Purchasable reports whether the product may appear in suggest/similar
// results: available status and positive stock.
func (d *ProductDocument) Purchasable() bool {
	return d.Status == StatusAvailable && d.InStock > 0
}

// ProductDetail is the product card returned by the detail and list
// endpoints. AvgRating carries the cached serialized rating (either a
// numeric string or the "no ratings" sentinel).
type ProductDetail struct {
	ProductID   string  `json:"product_id"`
	SellerID    string  `json:"seller_id"`
	SellerName  string  `json:"seller_name"`
	ProductName string  `json:"product_name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	InStock     int     `json:"in_stock"`
	Status      string  `json:"status"`
	AvgRating   string  `json:"avg_rating"`
}

// Suggestion is the reduced autocomplete projection.
type Suggestion struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// SearchRequest holds all parameters for a catalog search.
type SearchRequest struct {
	Query    string  `json:"query"`
	Category *string `json:"category,omitempty"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// Offset returns the zero-based offset implied by the page parameters.
func (r *SearchRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// SearchResult holds the paginated search response.
type SearchResult struct {
	Total int               `json:"total"`
	Items []ProductDocument `json:"items"`
}
