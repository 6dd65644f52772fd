package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/despensa_api/internal/category"
	"github.com/GTDGit/despensa_api/internal/models"
)

const productColumns = `id, name, quantity, category, original_category, step, created_at, updated_at`

// PostgresProductRepository handles data access for products stored in the
// productos table.
type PostgresProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new PostgresProductRepository.
func NewProductRepository(db *sqlx.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

// GetAll returns all products ordered by id.
func (r *PostgresProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM productos ORDER BY id ASC`

	products := []models.Product{}
	if err := r.db.SelectContext(ctx, &products, q); err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID returns a single product by id.
func (r *PostgresProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM productos WHERE id = $1 LIMIT 1`

	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create creates a new product. p is refreshed from the stored row, so it
// carries the column's rounding.
func (r *PostgresProductRepository) Create(ctx context.Context, p *models.Product) error {
	const q = `INSERT INTO productos (name, quantity, category, original_category, step)
              VALUES ($1, $2, $3, $4, $5)
              RETURNING ` + productColumns

	return r.db.QueryRowxContext(ctx, q,
		p.Name,
		p.Quantity,
		p.Category,
		p.OriginalCategory,
		p.Step,
	).StructScan(p)
}

// Update overwrites every editable field of an existing product and
// refreshes p from the stored row.
func (r *PostgresProductRepository) Update(ctx context.Context, p *models.Product) error {
	const q = `UPDATE productos
              SET name = $1, quantity = $2, category = $3, original_category = $4, step = $5,
                  updated_at = NOW()
              WHERE id = $6
              RETURNING ` + productColumns

	return r.db.QueryRowxContext(ctx, q,
		p.Name,
		p.Quantity,
		p.Category,
		p.OriginalCategory,
		p.Step,
		p.ID,
	).StructScan(p)
}

// AdjustQuantity adds delta to the stock of a product, never going below zero.
func (r *PostgresProductRepository) AdjustQuantity(ctx context.Context, id int, delta decimal.Decimal) (*models.Product, error) {
	const q = `UPDATE productos
              SET quantity = GREATEST(quantity + $1::numeric, 0), updated_at = NOW()
              WHERE id = $2
              RETURNING ` + productColumns

	return r.updateReturning(ctx, q, delta, id)
}

// ApplyDelta adjusts the stock and flips the category in one statement.
// SET expressions see the row as it was before the update.
func (r *PostgresProductRepository) ApplyDelta(ctx context.Context, id int, delta decimal.Decimal) (*models.Product, error) {
	const q = `UPDATE productos
              SET quantity = GREATEST(quantity + $1::numeric, 0),
                  category = CASE
                      WHEN $1::numeric < 0 AND quantity + $1::numeric <= 0 THEN $3
                      WHEN $1::numeric > 0 AND quantity + $1::numeric > 0 AND category = $3
                          THEN COALESCE(NULLIF(NULLIF(original_category, ''), $3), $4)
                      ELSE category
                  END,
                  updated_at = NOW()
              WHERE id = $2
              RETURNING ` + productColumns

	return r.updateReturning(ctx, q, delta, id, category.Agotados, category.Otros)
}

// SetCategory replaces the category of a product. A real category also
// becomes the original_category; agotados leaves it untouched.
func (r *PostgresProductRepository) SetCategory(ctx context.Context, id int, cat string) (*models.Product, error) {
	const q = `UPDATE productos
              SET category = $1,
                  original_category = CASE WHEN $1::text = $3::text THEN original_category ELSE $1 END,
                  updated_at = NOW()
              WHERE id = $2
              RETURNING ` + productColumns

	return r.updateReturning(ctx, q, cat, id, category.Agotados)
}

// Delete deletes a product by ID.
func (r *PostgresProductRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM productos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReconcileDepletion moves products without stock to agotados and restocked
// agotados products back to their original category.
func (r *PostgresProductRepository) ReconcileDepletion(ctx context.Context) (int64, error) {
	const q = `UPDATE productos
              SET category = CASE
                      WHEN quantity <= 0 THEN $1
                      ELSE COALESCE(NULLIF(NULLIF(original_category, ''), $1), $2)
                  END,
                  updated_at = NOW()
              WHERE (quantity <= 0 AND category <> $1)
                 OR (quantity > 0 AND category = $1)`

	res, err := r.db.ExecContext(ctx, q, category.Agotados, category.Otros)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Ping checks the database connection.
func (r *PostgresProductRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresProductRepository) updateReturning(ctx context.Context, q string, args ...interface{}) (*models.Product, error) {
	var p models.Product
	if err := r.db.QueryRowxContext(ctx, q, args...).StructScan(&p); err != nil {
		return nil, err
	}
	return &p, nil
}
