package item

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Identity
		want bool
	}{
		{"resolved same id", Resolved(7), Resolved(7), true},
		{"resolved different id", Resolved(7), Resolved(8), false},
		{"unresolved same token", Unresolved("tok-a"), Unresolved("tok-a"), true},
		{"unresolved different token", Unresolved("tok-a"), Unresolved("tok-b"), false},
		{"cross kind never equal", Resolved(7), Unresolved("7"), false},
		{"cross kind reversed", Unresolved("7"), Resolved(7), false},
		{"zero values equal", Identity{}, Unresolved(""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestIdentityIngredientID(t *testing.T) {
	id, ok := Resolved(42).IngredientID()
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = Unresolved("tok").IngredientID()
	assert.False(t, ok)
}

func TestKeyPrefixes(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewCartKey(), "cart-"))
	assert.True(t, strings.HasPrefix(NewListKey(9), "list-9-"))
	assert.True(t, strings.HasPrefix(NewImportKey(), "import-"))

	// Keys are fresh on every call.
	assert.NotEqual(t, NewImportKey(), NewImportKey())
	assert.NotEqual(t, NewListKey(9), NewListKey(9))
}
