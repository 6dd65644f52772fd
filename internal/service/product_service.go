package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/despensa_api/internal/category"
	"github.com/GTDGit/despensa_api/internal/models"
	"github.com/GTDGit/despensa_api/internal/repository"
	"github.com/GTDGit/despensa_api/internal/sse"
	"github.com/GTDGit/despensa_api/internal/utils"
)

// ProductService provides the inventory store operations on top of a
// ProductRepository.
type ProductService struct {
	repo     repository.ProductRepository
	notifier sse.ProductNotifier
	rules    category.RuleSet
}

// NewProductService constructs a ProductService. A nil notifier disables
// live events.
func NewProductService(repo repository.ProductRepository, notifier sse.ProductNotifier) *ProductService {
	if notifier == nil {
		notifier = &sse.NopNotifier{}
	}
	return &ProductService{
		repo:     repo,
		notifier: notifier,
		rules:    category.DefaultRules,
	}
}

// CreateProductRequest represents the request to create a new product.
type CreateProductRequest struct {
	Name     string           `json:"name"`
	Quantity *decimal.Decimal `json:"quantity"`
	Category string           `json:"category"`
	Step     *decimal.Decimal `json:"step"`
}

// EditProductRequest represents a full edit. Every field is overwritten.
type EditProductRequest struct {
	ID       int              `json:"id"`
	Name     string           `json:"name"`
	Quantity *decimal.Decimal `json:"quantity"`
	Category string           `json:"category"`
	Step     *decimal.Decimal `json:"step"`
}

// List returns the products selected by q.
func (s *ProductService) List(ctx context.Context, q ListQuery) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, storageError("list products", err)
	}
	return q.Apply(products), nil
}

// Get returns a product by id.
func (s *ProductService) Get(ctx context.Context, id int) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("get product", err)
	}
	return p, nil
}

// Create stores a new product. Names are not unique: every call inserts.
func (s *ProductService) Create(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	name, err := validName(req.Name)
	if err != nil {
		return nil, err
	}

	qty := decimal.Zero
	if req.Quantity != nil {
		qty = models.ClampQuantity(*req.Quantity)
	}
	step, err := validStep(req.Step)
	if err != nil {
		return nil, err
	}
	cat := s.rules.Normalize(req.Category)

	p := &models.Product{
		Name:             name,
		Quantity:         qty,
		Category:         cat,
		OriginalCategory: cat,
		Step:             step,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, storageError("create product", err)
	}

	log.Info().Int("product_id", p.ID).Str("category", p.Category).Msg("Product created")
	s.notifier.NotifyProductCreated(p)
	return p, nil
}

// AdjustQuantity adds delta to the stock, clamping at zero. The category is
// not touched; callers follow up with SetCategory or use ApplyDelta instead.
func (s *ProductService) AdjustQuantity(ctx context.Context, id int, delta decimal.Decimal) (*models.Product, error) {
	p, err := s.repo.AdjustQuantity(ctx, id, models.RoundQuantity(delta))
	if err != nil {
		return nil, repoError("adjust quantity", err)
	}
	s.notifier.NotifyProductUpdated(p)
	return p, nil
}

// ApplyDelta adjusts the stock and applies the depletion/restock transition
// in a single atomic write.
func (s *ProductService) ApplyDelta(ctx context.Context, id int, delta decimal.Decimal) (*models.Product, error) {
	p, err := s.repo.ApplyDelta(ctx, id, models.RoundQuantity(delta))
	if err != nil {
		return nil, repoError("apply delta", err)
	}
	s.notifier.NotifyProductUpdated(p)
	return p, nil
}

// SetCategory normalizes raw and stores it as the product's category.
// Setting the same value twice is a no-op in effect.
func (s *ProductService) SetCategory(ctx context.Context, id int, raw string) (*models.Product, error) {
	p, err := s.repo.SetCategory(ctx, id, s.rules.Normalize(raw))
	if err != nil {
		return nil, repoError("set category", err)
	}
	s.notifier.NotifyProductUpdated(p)
	return p, nil
}

// FullEdit overwrites name, quantity, category and step. The submitted
// category also becomes the original category, agotados included.
func (s *ProductService) FullEdit(ctx context.Context, req *EditProductRequest) (*models.Product, error) {
	name, err := validName(req.Name)
	if err != nil {
		return nil, err
	}
	if req.Quantity == nil {
		return nil, fmt.Errorf("%w: quantity is required", utils.ErrInvalidInput)
	}
	step, err := validStep(req.Step)
	if err != nil {
		return nil, err
	}
	cat := s.rules.Normalize(req.Category)

	p := &models.Product{
		ID:               req.ID,
		Name:             name,
		Quantity:         models.ClampQuantity(*req.Quantity),
		Category:         cat,
		OriginalCategory: cat,
		Step:             step,
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, repoError("edit product", err)
	}
	s.notifier.NotifyProductUpdated(p)
	return p, nil
}

// Delete removes a product permanently. Deleting a missing id is NotFound.
func (s *ProductService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoError("delete product", err)
	}
	log.Info().Int("product_id", id).Msg("Product deleted")
	s.notifier.NotifyProductDeleted(id)
	return nil
}

// Consume takes one step out of the stock.
func (s *ProductService) Consume(ctx context.Context, id int) (*models.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.ApplyDelta(ctx, id, models.NormalizeStep(&p.Step).Neg())
}

// Restock adds one step to the stock.
func (s *ProductService) Restock(ctx context.Context, id int) (*models.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.ApplyDelta(ctx, id, models.NormalizeStep(&p.Step))
}

// ReconcileDepletion realigns stored categories with stock levels.
func (s *ProductService) ReconcileDepletion(ctx context.Context) (int64, error) {
	n, err := s.repo.ReconcileDepletion(ctx)
	if err != nil {
		return 0, storageError("reconcile depletion", err)
	}
	return n, nil
}

// Ping reports whether the storage backend is reachable.
func (s *ProductService) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return storageError("ping", err)
	}
	return nil
}

func validName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", utils.ErrInvalidInput)
	}
	return name, nil
}

// validStep rejects a positive step too small to be stored. Absent and
// non-positive steps fall back to the default.
func validStep(step *decimal.Decimal) (decimal.Decimal, error) {
	if step != nil && step.IsPositive() && models.RoundQuantity(*step).IsZero() {
		return decimal.Zero, fmt.Errorf("%w: step %s is below the smallest storable unit", utils.ErrInvalidInput, step)
	}
	return models.NormalizeStep(step), nil
}

// repoError maps a missing row to ErrProductNotFound and anything else to
// ErrStorageFailure.
func repoError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return utils.ErrProductNotFound
	}
	return storageError(op, err)
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", utils.ErrStorageFailure, op, err)
}
