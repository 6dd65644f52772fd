package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/GTDGit/despensa_api/internal/category"
	"github.com/GTDGit/despensa_api/internal/models"
	"github.com/GTDGit/despensa_api/internal/utils"
)

// SortKey selects the ordering of a product listing.
type SortKey string

const (
	SortByID       SortKey = ""
	SortByName     SortKey = "name"
	SortByQuantity SortKey = "quantity"
)

// categoryAll disables category filtering.
const categoryAll = "all"

// ListQuery is the presentation state of a listing: which category is shown,
// the search text and the sort order. It is passed in per request.
type ListQuery struct {
	Category string
	Search   string
	Sort     SortKey
	Desc     bool
}

// NewListQuery validates raw query parameters.
func NewListQuery(cat, search, sortKey, order string) (ListQuery, error) {
	q := ListQuery{
		Category: strings.TrimSpace(cat),
		Search:   strings.TrimSpace(search),
	}

	switch SortKey(strings.ToLower(strings.TrimSpace(sortKey))) {
	case SortByID, "id":
		q.Sort = SortByID
	case SortByName:
		q.Sort = SortByName
	case SortByQuantity:
		q.Sort = SortByQuantity
	default:
		return ListQuery{}, fmt.Errorf("%w: unknown sort %q", utils.ErrInvalidInput, sortKey)
	}

	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", "asc":
	case "desc":
		q.Desc = true
	default:
		return ListQuery{}, fmt.Errorf("%w: unknown order %q", utils.ErrInvalidInput, order)
	}
	return q, nil
}

// Apply filters and sorts products. The input order (id order) breaks ties.
func (q ListQuery) Apply(products []models.Product) []models.Product {
	want := ""
	if q.Category != "" && !strings.EqualFold(q.Category, categoryAll) {
		want = category.Normalize(q.Category)
	}
	search := strings.ToLower(q.Search)

	out := make([]models.Product, 0, len(products))
	for i := range products {
		p := &products[i]
		if want != "" && p.EffectiveCategory() != want {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, *p)
	}

	var compare func(a, b *models.Product) int
	switch q.Sort {
	case SortByName:
		compare = func(a, b *models.Product) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	case SortByQuantity:
		compare = func(a, b *models.Product) int { return a.Quantity.Cmp(b.Quantity) }
	default:
		if !q.Desc {
			return out
		}
		compare = func(a, b *models.Product) int { return a.ID - b.ID }
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := compare(&out[i], &out[j])
		if q.Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}
