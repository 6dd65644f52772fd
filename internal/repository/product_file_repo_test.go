package repository

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/despensa_api/internal/category"
	"github.com/GTDGit/despensa_api/internal/models"
)

func newFileRepo(t *testing.T) (*FileProductRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "productos.json")
	repo, err := NewFileProductRepository(path)
	require.NoError(t, err)
	return repo, path
}

func seed(t *testing.T, repo *FileProductRepository, name, qty, cat string) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:             name,
		Quantity:         decimal.RequireFromString(qty),
		Category:         cat,
		OriginalCategory: cat,
		Step:             models.DefaultStep,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestFileRepo_CreateAssignsIDsAndPersists(t *testing.T) {
	repo, path := newFileRepo(t)
	a := seed(t, repo, "Leche", "2", category.Lacteos)
	b := seed(t, repo, "Leche", "1", category.Lacteos)

	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, b.ID)
	assert.False(t, a.CreatedAt.IsZero())

	reopened, err := NewFileProductRepository(path)
	require.NoError(t, err)
	all, err := reopened.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Leche", all[1].Name)
	assert.True(t, all[0].Quantity.Equal(decimal.NewFromInt(2)))

	c := seed(t, reopened, "Pan", "1", category.PanaderiaCereales)
	assert.Equal(t, 3, c.ID)
}

func TestFileRepo_NotFound(t *testing.T) {
	repo, _ := newFileRepo(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = repo.ApplyDelta(ctx, 42, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = repo.SetCategory(ctx, 42, category.Otros)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.ErrorIs(t, repo.Update(ctx, &models.Product{ID: 42}), sql.ErrNoRows)
	assert.ErrorIs(t, repo.Delete(ctx, 42), sql.ErrNoRows)
}

func TestFileRepo_ApplyDeltaTransitions(t *testing.T) {
	repo, _ := newFileRepo(t)
	ctx := context.Background()
	p := seed(t, repo, "Leche", "2", category.Lacteos)

	got, err := repo.ApplyDelta(ctx, p.ID, decimal.NewFromInt(-2))
	require.NoError(t, err)
	assert.True(t, got.Quantity.IsZero())
	assert.Equal(t, category.Agotados, got.Category)
	assert.Equal(t, category.Lacteos, got.OriginalCategory)

	got, err = repo.ApplyDelta(ctx, p.ID, decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, category.Lacteos, got.Category)

	got, err = repo.ApplyDelta(ctx, p.ID, decimal.NewFromInt(-1000))
	require.NoError(t, err)
	assert.True(t, got.Quantity.IsZero())
	assert.Equal(t, category.Agotados, got.Category)
}

func TestFileRepo_AdjustQuantityKeepsCategory(t *testing.T) {
	repo, _ := newFileRepo(t)
	p := seed(t, repo, "Arroz", "1", category.Despensa)

	got, err := repo.AdjustQuantity(context.Background(), p.ID, decimal.NewFromInt(-5))
	require.NoError(t, err)
	assert.True(t, got.Quantity.IsZero())
	assert.Equal(t, category.Despensa, got.Category)
}

func TestFileRepo_SetCategory(t *testing.T) {
	repo, _ := newFileRepo(t)
	ctx := context.Background()
	p := seed(t, repo, "Jugo", "1", category.Despensa)

	got, err := repo.SetCategory(ctx, p.ID, category.Agotados)
	require.NoError(t, err)
	assert.Equal(t, category.Agotados, got.Category)
	assert.Equal(t, category.Despensa, got.OriginalCategory)

	got, err = repo.SetCategory(ctx, p.ID, category.Bebidas)
	require.NoError(t, err)
	assert.Equal(t, category.Bebidas, got.Category)
	assert.Equal(t, category.Bebidas, got.OriginalCategory)
}

func TestFileRepo_UpdateAndDelete(t *testing.T) {
	repo, path := newFileRepo(t)
	ctx := context.Background()
	p := seed(t, repo, "Jabon", "3", category.Aseo)

	p.Name = "Jabón líquido"
	p.Quantity = decimal.RequireFromString("1.5")
	p.Step = decimal.RequireFromString("0.5")
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jabón líquido", got.Name)
	assert.Equal(t, "1.50", got.FormatQuantity())

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	reopened, err := NewFileProductRepository(path)
	require.NoError(t, err)
	all, err := reopened.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	next := seed(t, reopened, "Agua", "6", category.Bebidas)
	assert.Equal(t, 2, next.ID, "ids are never reused")
}

func TestFileRepo_ReconcileDepletion(t *testing.T) {
	repo, _ := newFileRepo(t)
	ctx := context.Background()
	empty := seed(t, repo, "Sal", "0", category.Despensa)
	restocked := seed(t, repo, "Yogur", "2", category.Agotados)
	_ = seed(t, repo, "Queso", "1", category.Lacteos)

	n, err := repo.ReconcileDepletion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, _ := repo.GetByID(ctx, empty.ID)
	assert.Equal(t, category.Agotados, got.Category)
	got, _ = repo.GetByID(ctx, restocked.ID)
	assert.Equal(t, category.Otros, got.Category)

	n, err = repo.ReconcileDepletion(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFileRepo_ConcurrentDeltasAreSerialized(t *testing.T) {
	repo, _ := newFileRepo(t)
	p := seed(t, repo, "Huevos", "0", category.Proteina)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ApplyDelta(context.Background(), p.ID, decimal.NewFromInt(1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(20)))
}

func TestFileRepo_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "productos.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileProductRepository(path)
	assert.ErrorContains(t, err, "decode data file")
}
