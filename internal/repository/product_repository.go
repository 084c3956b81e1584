package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pharmashop/internal/domain"
)

// SortKey enumerates catalog sort orders. The default key sorts by stock
// descending then name ascending; no text relevance scoring is performed.
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortNameAsc   SortKey = "name_asc"
	SortNameDesc  SortKey = "name_desc"
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
)

// ProductFilter is the structured query specification produced by the catalog
// query builder. It is independent of the store's query language so the
// builder can be tested without a database.
type ProductFilter struct {
	Search               string
	Category             string
	MinPrice             float64
	MaxPrice             float64
	InStockOnly          bool
	PrescriptionRequired *bool
	Sort                 SortKey
	Limit                int
	Offset               int
}

// CategoryFacet summarizes one category over active products.
type CategoryFacet struct {
	Category string  `json:"category"`
	Count    int64   `json:"count"`
	AvgPrice float64 `json:"avgPrice"`
	MinPrice float64 `json:"minPrice"`
	MaxPrice float64 `json:"maxPrice"`
}

// BrandFacet summarizes one brand over active products.
type BrandFacet struct {
	Brand string `json:"brand"`
	Count int64  `json:"count"`
}

// ProductStats aggregates store-wide catalog numbers.
type ProductStats struct {
	TotalProducts   int64
	TotalCategories int64
	AverageRating   float64
}

// ProductRepository encapsulates catalog persistence.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Deactivate(ctx context.Context, id string) error
	Search(ctx context.Context, filter ProductFilter) ([]domain.Product, int64, error)
	SuggestNames(ctx context.Context, prefix string, limit int) ([]string, error)
	CategoryFacets(ctx context.Context) ([]CategoryFacet, error)
	BrandFacets(ctx context.Context, limit int) ([]BrandFacet, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Product, error)
	ListLowStock(ctx context.Context, threshold, limit int) ([]domain.Product, error)
	Stats(ctx context.Context) (*ProductStats, error)
	DecrementStock(ctx context.Context, id string, qty int) error
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `id, name, description, brand, category, active_ingredient,
        price, stock, rating, tags, prescription_required, is_active, created_at, updated_at`

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (name, description, brand, category, active_ingredient,
            price, stock, rating, tags, prescription_required, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		product.Name,
		product.Description,
		product.Brand,
		product.Category,
		product.ActiveIngredient,
		product.Price,
		product.Stock,
		product.Rating,
		product.Tags,
		product.PrescriptionRequired,
		product.IsActive,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	const query = `
        UPDATE products SET name=$1, description=$2, brand=$3, category=$4, active_ingredient=$5,
            price=$6, stock=$7, rating=$8, tags=$9, prescription_required=$10, is_active=$11,
            updated_at=NOW()
        WHERE id=$12`
	cmd, err := r.pool.Exec(ctx, query,
		product.Name,
		product.Description,
		product.Brand,
		product.Category,
		product.ActiveIngredient,
		product.Price,
		product.Stock,
		product.Rating,
		product.Tags,
		product.PrescriptionRequired,
		product.IsActive,
		product.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id=$1`
	var product domain.Product
	if err := scanProduct(r.pool.QueryRow(ctx, query, id), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE products SET is_active=false, updated_at=NOW() WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) Search(ctx context.Context, filter ProductFilter) ([]domain.Product, int64, error) {
	clauses := []string{"is_active = true"}
	args := []any{}

	if term := strings.TrimSpace(filter.Search); term != "" {
		args = append(args, "%"+strings.ToLower(term)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			`(LOWER(name) LIKE %[1]s OR LOWER(description) LIKE %[1]s OR LOWER(brand) LIKE %[1]s
              OR LOWER(active_ingredient) LIKE %[1]s
              OR EXISTS (SELECT 1 FROM unnest(tags) tag WHERE LOWER(tag) LIKE %[1]s))`,
			placeholder))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	args = append(args, filter.MinPrice)
	clauses = append(clauses, fmt.Sprintf("price >= $%d", len(args)))
	args = append(args, filter.MaxPrice)
	clauses = append(clauses, fmt.Sprintf("price <= $%d", len(args)))
	if filter.InStockOnly {
		clauses = append(clauses, "stock > 0")
	}
	if filter.PrescriptionRequired != nil {
		args = append(args, *filter.PrescriptionRequired)
		clauses = append(clauses, fmt.Sprintf("prescription_required=$%d", len(args)))
	}

	where := strings.Join(clauses, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products WHERE %s", where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		productColumns, where, orderClause(filter.Sort), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func orderClause(sort SortKey) string {
	switch sort {
	case SortPriceAsc:
		return "price ASC"
	case SortPriceDesc:
		return "price DESC"
	case SortNameAsc:
		return "name ASC"
	case SortNameDesc:
		return "name DESC"
	case SortNewest:
		return "created_at DESC"
	case SortOldest:
		return "created_at ASC"
	default:
		return "stock DESC, name ASC"
	}
}

func (r *productRepository) SuggestNames(ctx context.Context, prefix string, limit int) ([]string, error) {
	const query = `
        SELECT name FROM products
        WHERE is_active = true AND LOWER(name) LIKE $1
        ORDER BY name ASC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, strings.ToLower(prefix)+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *productRepository) CategoryFacets(ctx context.Context) ([]CategoryFacet, error) {
	const query = `
        SELECT category, COUNT(*), ROUND(AVG(price)::numeric, 2), MIN(price), MAX(price)
        FROM products WHERE is_active = true
        GROUP BY category ORDER BY COUNT(*) DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facets []CategoryFacet
	for rows.Next() {
		var facet CategoryFacet
		if err := rows.Scan(&facet.Category, &facet.Count, &facet.AvgPrice, &facet.MinPrice, &facet.MaxPrice); err != nil {
			return nil, err
		}
		facets = append(facets, facet)
	}
	return facets, rows.Err()
}

func (r *productRepository) BrandFacets(ctx context.Context, limit int) ([]BrandFacet, error) {
	const query = `
        SELECT brand, COUNT(*) FROM products WHERE is_active = true
        GROUP BY brand ORDER BY COUNT(*) DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facets []BrandFacet
	for rows.Next() {
		var facet BrandFacet
		if err := rows.Scan(&facet.Brand, &facet.Count); err != nil {
			return nil, err
		}
		facets = append(facets, facet)
	}
	return facets, rows.Err()
}

func (r *productRepository) ListRecent(ctx context.Context, limit int) ([]domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE is_active = true
        ORDER BY created_at DESC LIMIT $1`, productColumns)
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *productRepository) ListLowStock(ctx context.Context, threshold, limit int) ([]domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE is_active = true AND stock <= $1
        ORDER BY stock ASC LIMIT $2`, productColumns)
	rows, err := r.pool.Query(ctx, query, threshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *productRepository) Stats(ctx context.Context) (*ProductStats, error) {
	const query = `
        SELECT COUNT(*), COUNT(DISTINCT category), COALESCE(ROUND(AVG(rating)::numeric, 2), 0)
        FROM products WHERE is_active = true`
	var stats ProductStats
	if err := r.pool.QueryRow(ctx, query).Scan(&stats.TotalProducts, &stats.TotalCategories, &stats.AverageRating); err != nil {
		return nil, err
	}
	return &stats, nil
}

// DecrementStock reduces stock only when enough units remain; the guard in the
// WHERE clause keeps the check-and-decrement atomic.
func (r *productRepository) DecrementStock(ctx context.Context, id string, qty int) error {
	const query = `
        UPDATE products SET stock = stock - $1, updated_at=NOW()
        WHERE id=$2 AND is_active = true AND stock >= $1`
	cmd, err := r.pool.Exec(ctx, query, qty, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	var result []domain.Product
	for rows.Next() {
		var product domain.Product
		if err := scanProduct(rows, &product); err != nil {
			return nil, err
		}
		result = append(result, product)
	}
	return result, rows.Err()
}

func scanProduct(row pgx.Row, product *domain.Product) error {
	return row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Brand,
		&product.Category,
		&product.ActiveIngredient,
		&product.Price,
		&product.Stock,
		&product.Rating,
		&product.Tags,
		&product.PrescriptionRequired,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
}
