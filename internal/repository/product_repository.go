package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/despensa_api/internal/models"
)

// ProductRepository is the persistence contract of the inventory store.
// Implementations return sql.ErrNoRows when an id does not resolve to a
// product and apply every mutation as a single atomic write.
type ProductRepository interface {
	// GetAll returns every product in id order.
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int) (*models.Product, error)
	// Create stores p and fills in its id and timestamps.
	Create(ctx context.Context, p *models.Product) error
	// Update overwrites name, quantity, category, original_category and step.
	Update(ctx context.Context, p *models.Product) error
	// AdjustQuantity adds delta to the stock, clamping at zero. Category is untouched.
	AdjustQuantity(ctx context.Context, id int, delta decimal.Decimal) (*models.Product, error)
	// ApplyDelta adjusts the stock and applies the depletion/restock
	// transition to the category in the same write.
	ApplyDelta(ctx context.Context, id int, delta decimal.Decimal) (*models.Product, error)
	// SetCategory stores category; unless it is agotados it also becomes
	// the original_category.
	SetCategory(ctx context.Context, id int, category string) (*models.Product, error)
	Delete(ctx context.Context, id int) error
	// ReconcileDepletion realigns stored categories with stock levels and
	// returns the number of products changed.
	ReconcileDepletion(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}
