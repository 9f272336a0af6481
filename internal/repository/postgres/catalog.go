package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Radioacti1ve/MEOWShop/internal/domain"
	"github.com/Radioacti1ve/MEOWShop/internal/repository"
	apperrors "github.com/Radioacti1ve/MEOWShop/pkg/errors"
)

// DB is the subset of pgxpool.Pool used by the repository. pgxmock satisfies
// the same interface, which keeps the repository testable without a server.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CatalogRepository implements repository.CatalogRepository using PostgreSQL.
type CatalogRepository struct {
	db DB
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(db DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// documentQuery is the canonical projection: products joined with sellers and
// users for the seller name, aggregated with comments for the average rating.
// The same SELECT list serves both the full resync and the single-product
// upsert so the two paths cannot diverge.
const documentQuery = `
	SELECT
		p.product_id,
		p.seller_id,
		p.product_name,
		p.description,
		p.category,
		p.price::float8,
		p.in_stock,
		p.status,
		u.username AS seller_name,
		ROUND(AVG(c.rating)::numeric, 2)::float8 AS avg_rating
	FROM products p
	JOIN sellers s ON p.seller_id = s.seller_id
	JOIN users u ON s.user_id = u.user_id
	LEFT JOIN comments c ON p.product_id = c.product_id`

const documentGroupBy = `
	GROUP BY p.product_id, u.username`

// FetchAllDocuments returns the document projection for every product.
func (r *CatalogRepository) FetchAllDocuments(ctx context.Context) ([]domain.ProductDocument, error) {
	rows, err := r.db.Query(ctx, documentQuery+documentGroupBy)
	if err != nil {
		return nil, fmt.Errorf("fetch all documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.ProductDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch all documents: %w", err)
	}

	return docs, nil
}

// FetchDocument returns the document projection for a single product.
func (r *CatalogRepository) FetchDocument(ctx context.Context, productID string) (*domain.ProductDocument, error) {
	id, err := parseProductID(productID)
	if err != nil {
		return nil, apperrors.NotFound("product", productID)
	}

	rows, err := r.db.Query(ctx, documentQuery+`
	WHERE p.product_id = $1`+documentGroupBy, id)
	if err != nil {
		return nil, fmt.Errorf("fetch document %s: %w", productID, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("fetch document %s: %w", productID, err)
		}
		return nil, apperrors.NotFound("product", productID)
	}

	doc, err := scanDocument(rows)
	if err != nil {
		return nil, fmt.Errorf("scan document %s: %w", productID, err)
	}
	return doc, nil
}

// FetchProduct returns a product card without the rating aggregate.
func (r *CatalogRepository) FetchProduct(ctx context.Context, productID string) (*domain.ProductDetail, error) {
	id, err := parseProductID(productID)
	if err != nil {
		return nil, apperrors.NotFound("product", productID)
	}

	query := `
		SELECT
			p.product_id,
			p.seller_id,
			u.username AS seller_name,
			p.product_name,
			p.description,
			p.category,
			p.price::float8,
			p.in_stock,
			p.status
		FROM products p
		JOIN sellers s ON p.seller_id = s.seller_id
		JOIN users u ON s.user_id = u.user_id
		WHERE p.product_id = $1`

	var (
		detail   domain.ProductDetail
		pid, sid int64
	)
	err = r.db.QueryRow(ctx, query, id).Scan(
		&pid,
		&sid,
		&detail.SellerName,
		&detail.ProductName,
		&detail.Description,
		&detail.Category,
		&detail.Price,
		&detail.InStock,
		&detail.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("fetch product %s: %w", productID, err)
	}

	detail.ProductID = strconv.FormatInt(pid, 10)
	detail.SellerID = strconv.FormatInt(sid, 10)
	return &detail, nil
}

// ListProducts returns product cards matching the filter plus the total count.
func (r *CatalogRepository) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.ProductDetail, int, error) {
	query := `
		SELECT
			p.product_id,
			p.seller_id,
			u.username AS seller_name,
			p.product_name,
			p.description,
			p.category,
			p.price::float8,
			p.in_stock,
			p.status,
			count(*) OVER() AS total_count
		FROM products p
		JOIN sellers s ON p.seller_id = s.seller_id
		JOIN users u ON s.user_id = u.user_id`

	var args []any
	if filter.Category != nil {
		query += `
		WHERE p.category = $1`
		args = append(args, *filter.Category)
	}

	limit := filter.PageSize
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	query += fmt.Sprintf(`
		ORDER BY p.product_id
		LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		details []domain.ProductDetail
		total   int
	)
	for rows.Next() {
		var (
			detail   domain.ProductDetail
			pid, sid int64
		)
		if err := rows.Scan(
			&pid,
			&sid,
			&detail.SellerName,
			&detail.ProductName,
			&detail.Description,
			&detail.Category,
			&detail.Price,
			&detail.InStock,
			&detail.Status,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		detail.ProductID = strconv.FormatInt(pid, 10)
		detail.SellerID = strconv.FormatInt(sid, 10)
		details = append(details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return details, total, nil
}

// AverageRating computes the rating aggregate for one product. A product
// with no comments yields nil.
func (r *CatalogRepository) AverageRating(ctx context.Context, productID string) (*float64, error) {
	id, err := parseProductID(productID)
	if err != nil {
		return nil, apperrors.NotFound("product", productID)
	}

	query := `
		SELECT ROUND(AVG(rating)::numeric, 2)::float8
		FROM comments
		WHERE product_id = $1`

	var avg *float64
	if err := r.db.QueryRow(ctx, query, id).Scan(&avg); err != nil {
		return nil, fmt.Errorf("average rating %s: %w", productID, err)
	}

	return avg, nil
}

// scanDocument scans one row of the canonical projection, stringifying the
// identifier columns the way the search index expects.
func scanDocument(row pgx.Row) (*domain.ProductDocument, error) {
	var (
		doc      domain.ProductDocument
		pid, sid int64
	)
	if err := row.Scan(
		&pid,
		&sid,
		&doc.ProductName,
		&doc.Description,
		&doc.Category,
		&doc.Price,
		&doc.InStock,
		&doc.Status,
		&doc.SellerName,
		&doc.AvgRating,
	); err != nil {
		return nil, err
	}

	doc.ProductID = strconv.FormatInt(pid, 10)
	doc.SellerID = strconv.FormatInt(sid, 10)
	return &doc, nil
}

func parseProductID(productID string) (int64, error) {
	return strconv.ParseInt(productID, 10, 64)
}
