// Package category maps free-text shelf categories to the fixed set of
// canonical keys used by products at rest.
package category

import "strings"

// Canonical category keys.
const (
	AlimentosFrescos  = "alimentos_frescos"
	PanaderiaCereales = "panaderia_cereales"
	Despensa          = "despensa"
	Lacteos           = "lacteos"
	Proteina          = "proteina"
	Aseo              = "aseo"
	LimpiezaHogar     = "limpieza_hogar"
	Bebidas           = "bebidas"
	Congelados        = "congelados"
	Otros             = "otros"

	// Agotados marks a product whose stock reached zero. It is written by the
	// stock transition only and is never a real shelf category.
	Agotados = "agotados"
)

// Category is a canonical key with its display label.
type Category struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

var catalogue = []Category{
	{Key: AlimentosFrescos, Label: "Alimentos Frescos"},
	{Key: PanaderiaCereales, Label: "Panadería y Cereales"},
	{Key: Despensa, Label: "Despensa"},
	{Key: Lacteos, Label: "Lácteos"},
	{Key: Proteina, Label: "Proteína"},
	{Key: Aseo, Label: "Aseo"},
	{Key: LimpiezaHogar, Label: "Limpieza Hogar"},
	{Key: Bebidas, Label: "Bebidas"},
	{Key: Congelados, Label: "Congelados"},
	{Key: Otros, Label: "Otros"},
	{Key: Agotados, Label: "Agotados"},
}

// List returns the category catalogue in display order, agotados last.
func List() []Category {
	out := make([]Category, len(catalogue))
	copy(out, catalogue)
	return out
}

// IsCanonical reports whether key is one of the fixed keys, agotados included.
func IsCanonical(key string) bool {
	for _, c := range catalogue {
		if c.Key == key {
			return true
		}
	}
	return false
}

// Label returns the display label for key. Keys outside the catalogue are
// shown with underscores replaced by spaces.
func Label(key string) string {
	for _, c := range catalogue {
		if c.Key == key {
			return c.Label
		}
	}
	if key == "" {
		return "Otros"
	}
	return strings.ReplaceAll(key, "_", " ")
}
