// Package item defines the line-item value types shared by carts, lists and
// order snapshots.
package item

import (
	"fmt"

	"github.com/google/uuid"
)

// identityKind discriminates the two identity variants.
type identityKind uint8

const (
	kindUnresolved identityKind = iota
	kindResolved
)

// Identity is a tagged reference to the ingredient a line item stands for.
// It is either Resolved, carrying the server-assigned ingredient id, or
// Unresolved, carrying a client-generated placeholder token for rows that
// never matched the catalog.
//
// The zero value is an Unresolved identity with an empty token.
type Identity struct {
	kind  identityKind
	id    int64
	token string
}

// Resolved returns an identity bound to a server-assigned ingredient id.
func Resolved(ingredientID int64) Identity {
	return Identity{kind: kindResolved, id: ingredientID}
}

// Unresolved returns an identity carrying a client-only placeholder token.
func Unresolved(token string) Identity {
	return Identity{kind: kindUnresolved, token: token}
}

// IsResolved reports whether the identity carries a server-assigned id.
func (i Identity) IsResolved() bool { return i.kind == kindResolved }

// IngredientID returns the server-assigned ingredient id and whether the
// identity is resolved.
func (i Identity) IngredientID() (int64, bool) {
	return i.id, i.kind == kindResolved
}

// Equal reports whether two identities refer to the same ingredient.
// Equality is total but defined only within a kind: two Resolved identities
// compare by ingredient id, two Unresolved identities compare by token, and a
// Resolved identity never equals an Unresolved one, even when the token was
// minted for the same real ingredient. Resolving the placeholder first is the
// only way to make such a pair merge.
func (i Identity) Equal(other Identity) bool {
	if i.kind != other.kind {
		return false
	}
	if i.kind == kindResolved {
		return i.id == other.id
	}
	return i.token == other.token
}

// String renders the identity for logs.
func (i Identity) String() string {
	if i.kind == kindResolved {
		return fmt.Sprintf("ingredient/%d", i.id)
	}
	return "temp/" + i.token
}

// Key generators for the three provenances a line item can have. Keys address
// an entry within a single collection; they carry no identity semantics.

// NewCartKey returns a fresh entry key for a manual add-to-cart.
func NewCartKey() string {
	return "cart-" + uuid.NewString()
}

// NewListKey returns a fresh entry key for an item appended by list
// application, derived from the list item's resolved ingredient id.
func NewListKey(ingredientID int64) string {
	return fmt.Sprintf("list-%d-%s", ingredientID, uuid.NewString())
}

// NewImportKey returns a fresh entry key for a spreadsheet-imported row.
func NewImportKey() string {
	return "import-" + uuid.NewString()
}
