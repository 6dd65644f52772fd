package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/despensa_api/internal/category"
	"github.com/GTDGit/despensa_api/internal/models"
	"github.com/GTDGit/despensa_api/internal/utils"
)

func sample() []models.Product {
	mk := func(id int, name, qty, cat string) models.Product {
		return models.Product{ID: id, Name: name, Quantity: decimal.RequireFromString(qty), Category: cat, OriginalCategory: cat}
	}
	return []models.Product{
		mk(1, "leche entera", "2", category.Lacteos),
		mk(2, "Arroz", "5", category.Despensa),
		mk(3, "Yogur", "0", category.Lacteos),
		mk(4, "Leche de avena", "1", category.Bebidas),
		mk(5, "Pan", "0", category.Agotados),
	}
}

func ids(products []models.Product) []int {
	out := make([]int, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestListQuery_DefaultKeepsIDOrder(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(ListQuery{}.Apply(sample())))
	assert.Equal(t, []int{5, 4, 3, 2, 1}, ids(ListQuery{Desc: true}.Apply(sample())))
}

func TestListQuery_CategoryUsesEffectiveCategory(t *testing.T) {
	tests := []struct {
		category string
		want     []int
	}{
		{"", []int{1, 2, 3, 4, 5}},
		{"all", []int{1, 2, 3, 4, 5}},
		{"lacteos", []int{1}},
		{"Lácteos", []int{1}},
		{"agotados", []int{3, 5}},
		{"congelados", []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			got := ListQuery{Category: tt.category}.Apply(sample())
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestListQuery_SearchAndSort(t *testing.T) {
	got := ListQuery{Search: "LECHE"}.Apply(sample())
	assert.Equal(t, []int{1, 4}, ids(got))

	got = ListQuery{Sort: SortByName}.Apply(sample())
	assert.Equal(t, []int{2, 4, 1, 5, 3}, ids(got))

	got = ListQuery{Sort: SortByQuantity}.Apply(sample())
	assert.Equal(t, []int{3, 5, 4, 1, 2}, ids(got), "ties keep id order")

	got = ListQuery{Sort: SortByQuantity, Desc: true}.Apply(sample())
	assert.Equal(t, []int{2, 1, 4, 3, 5}, ids(got))
}

func TestNewListQuery(t *testing.T) {
	q, err := NewListQuery(" lacteos ", " pan ", "Quantity", "DESC")
	require.NoError(t, err)
	assert.Equal(t, ListQuery{Category: "lacteos", Search: "pan", Sort: SortByQuantity, Desc: true}, q)

	q, err = NewListQuery("", "", "id", "")
	require.NoError(t, err)
	assert.Equal(t, SortByID, q.Sort)

	_, err = NewListQuery("", "", "price", "")
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
	_, err = NewListQuery("", "", "", "sideways")
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
}
