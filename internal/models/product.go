package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/despensa_api/internal/category"
)

func init() {
	// Quantities travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// QuantityScale is the number of decimal places quantities and steps are
// stored with. It matches the NUMERIC(12,3) columns of the productos table.
const QuantityScale = 3

// DefaultStep is the consume/restock unit used when none is given.
var DefaultStep = decimal.NewFromInt(1)

// Product is a household inventory item.
// Fields are tagged for both DB scanning and JSON serialization.
type Product struct {
	ID               int             `db:"id" json:"id"`
	Name             string          `db:"name" json:"name"`
	Quantity         decimal.Decimal `db:"quantity" json:"quantity"`
	Category         string          `db:"category" json:"category"`
	OriginalCategory string          `db:"original_category" json:"original_category"`
	Step             decimal.Decimal `db:"step" json:"step"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// RoundQuantity rounds d half away from zero to QuantityScale places.
func RoundQuantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityScale)
}

// NormalizeStep returns step rounded to QuantityScale, or DefaultStep when
// step is absent or not positive after rounding.
func NormalizeStep(step *decimal.Decimal) decimal.Decimal {
	if step == nil {
		return DefaultStep
	}
	s := RoundQuantity(*step)
	if !s.IsPositive() {
		return DefaultStep
	}
	return s
}

// ClampQuantity returns q rounded to QuantityScale, or zero when q is negative.
func ClampQuantity(q decimal.Decimal) decimal.Decimal {
	q = RoundQuantity(q)
	if q.IsNegative() {
		return decimal.Zero
	}
	return q
}

// Depleted reports whether the product is out of stock, either because the
// stock transition marked it agotados or because its quantity is not positive.
func (p *Product) Depleted() bool {
	return p.Category == category.Agotados || !p.Quantity.IsPositive()
}

// EffectiveCategory is the category the product is listed under: agotados
// while depleted, its stored category otherwise.
func (p *Product) EffectiveCategory() string {
	if p.Depleted() {
		return category.Agotados
	}
	if p.Category == "" {
		return category.Otros
	}
	return p.Category
}

// RestoreCategory is the category a restocked product returns to.
func (p *Product) RestoreCategory() string {
	if p.OriginalCategory == "" || p.OriginalCategory == category.Agotados {
		return category.Otros
	}
	return p.OriginalCategory
}

// TransitionCategory returns the category after a stock change of delta
// landed the product on quantity:
//   - a consumption reaching zero moves it to agotados;
//   - a restock above zero of an agotados product restores its original category;
//   - anything else leaves current untouched.
func (p *Product) TransitionCategory(delta, quantity decimal.Decimal) string {
	switch {
	case delta.IsNegative() && !quantity.IsPositive():
		return category.Agotados
	case delta.IsPositive() && quantity.IsPositive() && p.Category == category.Agotados:
		return p.RestoreCategory()
	default:
		return p.Category
	}
}

// ApplyDelta adds delta to the quantity, clamping at zero, and applies the
// depletion/restock transition to the category in the same step.
func (p *Product) ApplyDelta(delta decimal.Decimal) {
	delta = RoundQuantity(delta)
	q := ClampQuantity(p.Quantity.Add(delta))
	p.Category = p.TransitionCategory(delta, q)
	p.Quantity = q
}

// FormatQuantity renders the quantity the way the list shows it: whole units
// when the step is 1, two decimals otherwise.
func (p *Product) FormatQuantity() string {
	step := p.Step
	if step.IsZero() {
		step = DefaultStep
	}
	if step.Equal(DefaultStep) {
		return p.Quantity.Floor().String()
	}
	return p.Quantity.StringFixed(2)
}

// ProductView is the API representation of a product with its derived fields.
type ProductView struct {
	Product
	Depleted        bool   `json:"depleted"`
	DisplayQuantity string `json:"display_quantity"`
	CategoryLabel   string `json:"category_label"`
}

// View wraps p with its derived presentation fields.
func (p *Product) View() ProductView {
	return ProductView{
		Product:         *p,
		Depleted:        p.Depleted(),
		DisplayQuantity: p.FormatQuantity(),
		CategoryLabel:   category.Label(p.EffectiveCategory()),
	}
}

// Views converts a product slice for JSON output.
func Views(products []Product) []ProductView {
	out := make([]ProductView, len(products))
	for i := range products {
		out[i] = products[i].View()
	}
	return out
}
