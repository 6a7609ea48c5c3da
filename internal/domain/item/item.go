package item

import "github.com/shopspring/decimal"

// LineItem is a quantity bound to an ingredient identity within one
// collection (cart, list, or order snapshot). Name, unit and price are copies
// taken when the item entered the collection; order snapshots rely on that to
// stay unaffected by later catalog edits.
type LineItem struct {
	// Key addresses this entry within its collection. Unique per collection,
	// prefixed by provenance (cart-, list-, import-).
	Key      string
	Identity Identity
	Name     string
	Unit     string
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// Cost returns quantity × unit price for this entry.
func (li LineItem) Cost() decimal.Decimal {
	return li.Quantity.Mul(li.Price)
}
