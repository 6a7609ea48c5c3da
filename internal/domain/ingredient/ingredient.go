// Package ingredient defines the catalog domain model.
package ingredient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for catalog operations.
var (
	ErrNotFound      = errors.New("ingredient not found")
	ErrNameTaken     = errors.New("ingredient name already in use")
	ErrNameRequired  = errors.New("ingredient name required")
	ErrNegativePrice = errors.New("price must not be negative")
)

// Units is the fixed vocabulary of measurement units.
var Units = []string{"kg", "g", "l", "ml", "pz"}

// DefaultUnit is the generic count unit used when an imported row carries no
// usable unit.
const DefaultUnit = "pz"

// ValidUnit reports whether u belongs to the unit vocabulary.
func ValidUnit(u string) bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

// InvalidUnitError indicates a unit outside the vocabulary.
type InvalidUnitError struct {
	Unit string
}

func (e *InvalidUnitError) Error() string {
	return fmt.Sprintf("unit %q is not one of %v", e.Unit, Units)
}

// Ingredient is a catalog item: a name, a unit of measure, and a unit price.
// Names are unique case-insensitively; the bulk loaders rely on that to
// upsert.
type Ingredient struct {
	ID        int64
	Name      string
	Unit      string
	Price     decimal.Decimal
	CreatedAt time.Time
}

// Validate checks the invariants a catalog write must satisfy.
func (ing Ingredient) Validate() error {
	if ing.Name == "" {
		return ErrNameRequired
	}
	if !ValidUnit(ing.Unit) {
		return &InvalidUnitError{Unit: ing.Unit}
	}
	if ing.Price.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// Repository defines persistence operations over the catalog.
type Repository interface {
	List(ctx context.Context) ([]Ingredient, error)
	GetByID(ctx context.Context, id int64) (*Ingredient, error)
	Create(ctx context.Context, ing *Ingredient) error
	Update(ctx context.Context, ing *Ingredient) error
	Delete(ctx context.Context, id int64) error
}
