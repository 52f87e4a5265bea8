package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/shopassist-ai/shopassist/internal/intent"
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Open opens a Postgres connection pool and verifies it with a ping.
func Open(dsn string, maxOpen, maxIdle int, connMaxLifetime time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

const productColumns = `id, name, description, price, category, brand, image_url,
	stock, rating, specs, embedding, created_at, updated_at`

// ProductRepository provides catalog access.
type ProductRepository struct {
	db DB
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// ListAll returns the full catalog ordered by name.
func (r *ProductRepository) ListAll(ctx context.Context) ([]*Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY name`, productColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetByID retrieves a single product.
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return product, err
}

// ListByCategory returns products in a category, best rated first.
func (r *ProductRepository) ListByCategory(ctx context.Context, category string) ([]*Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE category = $1 ORDER BY rating DESC`, productColumns)

	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows)
}

// FullTextSearch matches the query against the search index spanning name,
// description, brand and category. Ordered ascending by price when a bound is
// present, otherwise by index relevance.
func (r *ProductRepository) FullTextSearch(ctx context.Context, query string, bounds intent.PriceRange, limit int) ([]*Product, error) {
	where, args := priceClauses("search_vector @@ websearch_to_tsquery('english', $1)", []interface{}{query}, bounds)

	order := "ts_rank(search_vector, websearch_to_tsquery('english', $1)) DESC"
	if bounds.Bounded() {
		order = "price ASC"
	}

	args = append(args, limit)
	sqlQuery := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY %s LIMIT $%d`,
		productColumns, where, order, len(args))

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows)
}

// PatternSearch performs case-insensitive substring matching against name,
// description, brand and category. Ordered ascending by price.
func (r *ProductRepository) PatternSearch(ctx context.Context, query string, bounds intent.PriceRange, limit int) ([]*Product, error) {
	pattern := "%" + query + "%"
	where, args := priceClauses(
		"(name ILIKE $1 OR description ILIKE $1 OR brand ILIKE $1 OR category ILIKE $1)",
		[]interface{}{pattern}, bounds)

	args = append(args, limit)
	sqlQuery := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY price ASC LIMIT $%d`,
		productColumns, where, len(args))

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows)
}

// ListByPrice returns products filtered purely by price bounds, cheapest
// first. Used when the cleaned query carries no product words.
func (r *ProductRepository) ListByPrice(ctx context.Context, bounds intent.PriceRange, limit int) ([]*Product, error) {
	where, args := priceClauses("TRUE", nil, bounds)

	args = append(args, limit)
	sqlQuery := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY price ASC LIMIT $%d`,
		productColumns, where, len(args))

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows)
}

// ListWithEmbeddings returns all products that have a stored embedding.
// Candidates for in-process semantic scoring.
func (r *ProductRepository) ListWithEmbeddings(ctx context.Context) ([]*Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE embedding IS NOT NULL ORDER BY name`, productColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows)
}

// UpdateEmbedding overwrites a product's embedding. Idempotent: re-running the
// batch job replaces the vector, it never appends.
func (r *ProductRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	query := `UPDATE products SET embedding = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, floatsToArray(embedding), time.Now(), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// priceClauses appends price bound conditions to a base WHERE clause.
func priceClauses(base string, args []interface{}, bounds intent.PriceRange) (string, []interface{}) {
	where := base
	if bounds.Max != nil {
		args = append(args, *bounds.Max)
		where += fmt.Sprintf(" AND price <= $%d", len(args))
	}
	if bounds.Min != nil {
		args = append(args, *bounds.Min)
		where += fmt.Sprintf(" AND price >= $%d", len(args))
	}
	return where, args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var (
		p         Product
		category  sql.NullString
		brand     sql.NullString
		imageURL  sql.NullString
		embedding pq.Float64Array
	)

	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &category, &brand, &imageURL,
		&p.Stock, &p.Rating, &p.Specs, &embedding, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Category = nullableString(category)
	p.Brand = nullableString(brand)
	p.ImageURL = nullableString(imageURL)
	p.Embedding = arrayToFloats(embedding)

	return &p, nil
}

func scanProducts(rows *sql.Rows) ([]*Product, error) {
	var products []*Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func floatsToArray(v []float32) pq.Float64Array {
	if v == nil {
		return nil
	}
	arr := make(pq.Float64Array, len(v))
	for i, x := range v {
		arr[i] = float64(x)
	}
	return arr
}

func arrayToFloats(arr pq.Float64Array) []float32 {
	if arr == nil {
		return nil
	}
	v := make([]float32, len(arr))
	for i, x := range arr {
		v[i] = float32(x)
	}
	return v
}
