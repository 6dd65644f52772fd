package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/despensa_api/internal/category"
	"github.com/GTDGit/despensa_api/internal/models"
)

// fileSnapshot is the on-disk layout of the JSON data file.
type fileSnapshot struct {
	NextID   int              `json:"next_id"`
	Products []models.Product `json:"products"`
}

// FileProductRepository keeps products in a single JSON document. It is the
// only writer of its file; every mutation holds the lock until the new
// document has replaced the old one.
type FileProductRepository struct {
	path string

	mu       sync.RWMutex
	nextID   int
	products []models.Product
	now      func() time.Time
}

// NewFileProductRepository opens (or creates) the data file at path.
func NewFileProductRepository(path string) (*FileProductRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	r := &FileProductRepository{
		path:   path,
		nextID: 1,
		now:    func() time.Time { return time.Now().UTC() },
	}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return r, nil
	case err != nil:
		return nil, fmt.Errorf("read data file: %w", err)
	case len(raw) == 0:
		return r, nil
	}

	var snap fileSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode data file %s: %w", path, err)
	}
	r.products = snap.Products
	r.nextID = snap.NextID
	for _, p := range r.products {
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
	}
	if r.nextID < 1 {
		r.nextID = 1
	}
	return r, nil
}

// GetAll returns a copy of all products ordered by id.
func (r *FileProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

// GetByID returns a single product by id.
func (r *FileProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, sql.ErrNoRows
	}
	p := r.products[i]
	return &p, nil
}

// Create creates a new product.
func (r *FileProductRepository) Create(ctx context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	stored := *p
	stored.ID = r.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now

	products := append(r.cloneProducts(), stored)
	if err := r.persist(r.nextID+1, products); err != nil {
		return err
	}
	r.products = products
	r.nextID++
	*p = stored
	return nil
}

// Update overwrites every editable field of an existing product.
func (r *FileProductRepository) Update(ctx context.Context, p *models.Product) error {
	updated, err := r.mutate(p.ID, func(cur *models.Product) {
		cur.Name = p.Name
		cur.Quantity = p.Quantity
		cur.Category = p.Category
		cur.OriginalCategory = p.OriginalCategory
		cur.Step = p.Step
	})
	if err != nil {
		return err
	}
	*p = *updated
	return nil
}

// AdjustQuantity adds delta to the stock of a product, never going below zero.
func (r *FileProductRepository) AdjustQuantity(ctx context.Context, id int, delta decimal.Decimal) (*models.Product, error) {
	return r.mutate(id, func(cur *models.Product) {
		cur.Quantity = models.ClampQuantity(cur.Quantity.Add(delta))
	})
}

// ApplyDelta adjusts the stock and applies the category transition under one lock.
func (r *FileProductRepository) ApplyDelta(ctx context.Context, id int, delta decimal.Decimal) (*models.Product, error) {
	return r.mutate(id, func(cur *models.Product) {
		cur.ApplyDelta(delta)
	})
}

// SetCategory replaces the category of a product. A real category also
// becomes the original_category.
func (r *FileProductRepository) SetCategory(ctx context.Context, id int, cat string) (*models.Product, error) {
	return r.mutate(id, func(cur *models.Product) {
		cur.Category = cat
		if cat != category.Agotados {
			cur.OriginalCategory = cat
		}
	})
}

// Delete deletes a product by ID.
func (r *FileProductRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return sql.ErrNoRows
	}
	products := make([]models.Product, 0, len(r.products)-1)
	products = append(products, r.products[:i]...)
	products = append(products, r.products[i+1:]...)
	if err := r.persist(r.nextID, products); err != nil {
		return err
	}
	r.products = products
	return nil
}

// ReconcileDepletion realigns stored categories with stock levels.
func (r *FileProductRepository) ReconcileDepletion(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products := r.cloneProducts()
	now := r.now()
	var changed int64
	for i := range products {
		p := &products[i]
		switch {
		case !p.Quantity.IsPositive() && p.Category != category.Agotados:
			p.Category = category.Agotados
		case p.Quantity.IsPositive() && p.Category == category.Agotados:
			p.Category = p.RestoreCategory()
		default:
			continue
		}
		p.UpdatedAt = now
		changed++
	}
	if changed == 0 {
		return 0, nil
	}
	if err := r.persist(r.nextID, products); err != nil {
		return 0, err
	}
	r.products = products
	return changed, nil
}

// Ping checks that the data directory is still reachable.
func (r *FileProductRepository) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(r.path))
	return err
}

// mutate applies fn to a copy of product id, persists the result and only
// then swaps it into memory, so a failed write leaves state untouched.
func (r *FileProductRepository) mutate(id int, fn func(*models.Product)) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, sql.ErrNoRows
	}
	products := r.cloneProducts()
	fn(&products[i])
	products[i].UpdatedAt = r.now()

	if err := r.persist(r.nextID, products); err != nil {
		return nil, err
	}
	r.products = products
	p := products[i]
	return &p, nil
}

func (r *FileProductRepository) indexOf(id int) int {
	for i := range r.products {
		if r.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *FileProductRepository) cloneProducts() []models.Product {
	out := make([]models.Product, len(r.products), len(r.products)+1)
	copy(out, r.products)
	return out
}

// persist writes the document to a temp file in the same directory and
// renames it over the data file.
func (r *FileProductRepository) persist(nextID int, products []models.Product) error {
	raw, err := json.MarshalIndent(fileSnapshot{NextID: nextID, Products: products}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode data file: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}
