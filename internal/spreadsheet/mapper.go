// Package spreadsheet converts uploaded order sheets into cart line items and
// produces the fill-in template for the current catalog.
package spreadsheet

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xenking/provision-api/internal/domain/ingredient"
	"github.com/xenking/provision-api/internal/domain/item"
)

// Row is one loosely-typed record from an uploaded sheet: header cell →
// value. Field names vary across the tolerated synonym sets below; values
// may be strings or numbers depending on how the sheet was filled in.
type Row map[string]any

// normalized returns the row keyed by lowercased, trimmed headers so synonym
// lookups do not depend on map iteration order.
func (r Row) normalized() map[string]any {
	fields := make(map[string]any, len(r))
	for key, value := range r {
		fields[strings.ToLower(strings.TrimSpace(key))] = value
	}
	return fields
}

// Tolerated header synonyms per logical field, matched case-insensitively.
// The Spanish variants come from the supplier's original template.
var (
	nameFields     = []string{"nombre", "name", "ingrediente", "ingredient", "producto", "product"}
	unitFields     = []string{"unidad", "unit", "uom"}
	quantityFields = []string{"cantidad", "quantity", "qty", "cant"}
)

// Defaults applied when a row is missing or malformed.
const (
	defaultName = "Unknown"
)

var defaultQuantity = decimal.NewFromInt(1)

// Catalog is a case-insensitive name index over the ingredient catalog,
// built once per import from a catalog snapshot.
type Catalog struct {
	byName map[string]ingredient.Ingredient
}

// NewCatalog indexes the given ingredients by lowercased name. The catalog
// keeps names unique case-insensitively, so the index is collision-free.
func NewCatalog(ingredients []ingredient.Ingredient) *Catalog {
	byName := make(map[string]ingredient.Ingredient, len(ingredients))
	for _, ing := range ingredients {
		byName[strings.ToLower(ing.Name)] = ing
	}
	return &Catalog{byName: byName}
}

// Match resolves a row name against the catalog by case-insensitive exact
// match.
func (c *Catalog) Match(name string) (ingredient.Ingredient, bool) {
	ing, ok := c.byName[strings.ToLower(name)]
	return ing, ok
}

// MapRows converts imported rows into cart line items. Per row: the name
// defaults to "Unknown", the unit to the generic piece unit, and the quantity
// to 1 (string or number coerced; non-numeric or non-positive values become
// 1). A catalog match adopts the catalog's unit, price and resolved identity,
// discarding the row's own unit; a miss keeps the row's literal unit with a
// zero price and an unresolved identity. Every item gets a fresh import key,
// so repeated rows stay separate entries; mapping never de-duplicates.
func MapRows(rows []Row, catalog *Catalog) []item.LineItem {
	items := make([]item.LineItem, 0, len(rows))
	for _, row := range rows {
		fields := row.normalized()
		name := stringField(fields, nameFields, defaultName)
		unit := stringField(fields, unitFields, ingredient.DefaultUnit)
		quantity := quantityField(fields, quantityFields)

		li := item.LineItem{
			Key:      item.NewImportKey(),
			Name:     name,
			Quantity: quantity,
		}

		if ing, ok := catalog.Match(name); ok {
			li.Identity = item.Resolved(ing.ID)
			li.Unit = ing.Unit
			li.Price = ing.Price
		} else {
			li.Identity = item.Unresolved(li.Key)
			li.Unit = unit
			li.Price = decimal.Zero
		}

		items = append(items, li)
	}
	return items
}

// stringField walks the synonyms in priority order and returns the first
// non-empty value, or fallback.
func stringField(fields map[string]any, synonyms []string, fallback string) string {
	for _, f := range synonyms {
		if s := coerceString(fields[f]); s != "" {
			return s
		}
	}
	return fallback
}

// quantityField walks the synonyms in priority order and coerces the first
// usable quantity cell to a positive decimal, falling back to 1.
func quantityField(fields map[string]any, synonyms []string) decimal.Decimal {
	for _, f := range synonyms {
		if q, ok := coerceQuantity(fields[f]); ok {
			return q
		}
	}
	return defaultQuantity
}

func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return ""
	}
}

func coerceQuantity(v any) (decimal.Decimal, bool) {
	var q decimal.Decimal
	switch n := v.(type) {
	case float64:
		q = decimal.NewFromFloat(n)
	case int:
		q = decimal.NewFromInt(int64(n))
	case int64:
		q = decimal.NewFromInt(n)
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Decimal{}, false
		}
		q = parsed
	default:
		return decimal.Decimal{}, false
	}

	if !q.IsPositive() {
		return decimal.Decimal{}, false
	}
	return q, true
}
