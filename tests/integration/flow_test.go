//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"regexp"
	"testing"
)

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{6}$`)

func createTestCart(t *testing.T) string {
	t.Helper()

	resp := do(t, http.MethodPost, "/api/carts", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create cart: expected 201, got %d", resp.StatusCode)
	}
	return decodeJSON[cartResponse](t, resp).ID
}

func TestCart_AddAndMerge(t *testing.T) {
	flour := findIngredient(t, "Harina de trigo")
	cartID := createTestCart(t)

	resp := do(t, http.MethodPost, "/api/carts/"+cartID+"/items", map[string]any{
		"ingredientId": flour.ID, "quantity": "2",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add item: expected 200, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, "/api/carts/"+cartID+"/items", map[string]any{
		"ingredientId": flour.ID, "quantity": "3",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add item again: expected 200, got %d", resp.StatusCode)
	}

	cart := decodeJSON[cartResponse](t, resp)
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 merged entry, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != "5" {
		t.Errorf("quantity: got %q, want %q", cart.Items[0].Quantity, "5")
	}
}

func TestList_ApplyToCart(t *testing.T) {
	flour := findIngredient(t, "Harina de trigo")
	eggs := findIngredient(t, "Huevo")

	resp := do(t, http.MethodPost, "/api/lists", map[string]any{
		"name": "Pan de caja",
		"items": []map[string]any{
			{"ingredientId": flour.ID, "quantity": "4"},
			{"ingredientId": eggs.ID, "quantity": "12"},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create list: expected 201, got %d", resp.StatusCode)
	}
	created := decodeJSON[listResponse](t, resp)
	resp.Body.Close()
	if len(created.Items) != 2 {
		t.Fatalf("expected 2 list items, got %d", len(created.Items))
	}

	cartID := createTestCart(t)
	resp = do(t, http.MethodPost, "/api/carts/"+cartID+"/items", map[string]any{
		"ingredientId": flour.ID, "quantity": "1",
	})
	resp.Body.Close()

	resp = do(t, http.MethodPost, "/api/carts/"+cartID+"/apply-list", map[string]any{
		"listId": created.ID,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("apply list: expected 200, got %d", resp.StatusCode)
	}

	cart := decodeJSON[cartResponse](t, resp)
	if len(cart.Items) != 2 {
		t.Fatalf("expected 2 cart entries, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != "5" {
		t.Errorf("merged quantity: got %q, want %q", cart.Items[0].Quantity, "5")
	}
}

// A failed child write must not leave a parent list behind.
func TestList_CreateRollback(t *testing.T) {
	resp := do(t, http.MethodPost, "/api/lists", map[string]any{
		"name": "Fantasma",
		"items": []map[string]any{
			{"ingredientId": 99999999, "quantity": "1"},
		},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, "/api/lists", nil)
	defer resp.Body.Close()
	for _, l := range decodeJSON[[]listResponse](t, resp) {
		if l.Name == "Fantasma" {
			t.Fatalf("orphaned list parent %d survived the rollback", l.ID)
		}
	}
}

func TestOrder_SubmitFlow(t *testing.T) {
	flour := findIngredient(t, "Harina de trigo")
	milk := findIngredient(t, "Leche entera")
	cartID := createTestCart(t)

	resp := do(t, http.MethodPost, "/api/carts/"+cartID+"/items", map[string]any{
		"ingredientId": flour.ID, "quantity": "2",
	})
	resp.Body.Close()
	resp = do(t, http.MethodPost, "/api/carts/"+cartID+"/items", map[string]any{
		"ingredientId": milk.ID, "quantity": "3",
	})
	resp.Body.Close()

	resp = do(t, http.MethodPost, "/api/carts/"+cartID+"/submit", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d", resp.StatusCode)
	}
	order := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	if !orderNumberPattern.MatchString(order.Number) {
		t.Errorf("order number: got %q, want ORD-nnnnnn", order.Number)
	}
	if order.Status != "Pending" {
		t.Errorf("status: got %q, want %q", order.Status, "Pending")
	}
	// 2 x 18.50 + 3 x 26.50 = 116.50
	if order.Total != "116.5" {
		t.Errorf("total: got %q, want %q", order.Total, "116.5")
	}
	if order.ItemCount != "5" {
		t.Errorf("item count: got %q, want %q", order.ItemCount, "5")
	}

	// Submission clears the cart.
	resp = do(t, http.MethodGet, "/api/carts/"+cartID, nil)
	cart := decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if len(cart.Items) != 0 {
		t.Errorf("cart not cleared after submit: %d items", len(cart.Items))
	}

	// The order appears in history with its frozen snapshot.
	resp = do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", order.ID), nil)
	stored := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()
	if len(stored.Items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(stored.Items))
	}

	// Status moves through the vocabulary; anything else is rejected.
	resp = do(t, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", order.ID), map[string]any{
		"status": "En Route",
	})
	moved := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()
	if moved.Status != "En Route" {
		t.Errorf("status: got %q, want %q", moved.Status, "En Route")
	}

	resp = do(t, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", order.ID), map[string]any{
		"status": "Cancelled",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("invalid status: expected 422, got %d", resp.StatusCode)
	}
}

func TestOrder_SubmitEmptyCart(t *testing.T) {
	cartID := createTestCart(t)

	resp := do(t, http.MethodPost, "/api/carts/"+cartID+"/submit", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestOrder_PriceChangeKeepsSnapshot(t *testing.T) {
	resp := do(t, http.MethodPost, "/api/ingredients", map[string]any{
		"name": "Fresa congelada", "unit": "kg", "price": "80",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create ingredient: expected 201, got %d", resp.StatusCode)
	}
	ing := decodeJSON[ingredientResponse](t, resp)
	resp.Body.Close()

	cartID := createTestCart(t)
	resp = do(t, http.MethodPost, "/api/carts/"+cartID+"/items", map[string]any{
		"ingredientId": ing.ID, "quantity": "1",
	})
	resp.Body.Close()
	resp = do(t, http.MethodPost, "/api/carts/"+cartID+"/submit", nil)
	order := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	resp = do(t, http.MethodPut, fmt.Sprintf("/api/ingredients/%d", ing.ID), map[string]any{
		"name": "Fresa congelada", "unit": "kg", "price": "120",
	})
	resp.Body.Close()

	resp = do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", order.ID), nil)
	stored := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()
	if stored.Total != "80" {
		t.Errorf("historical total moved with the catalog: got %q, want %q", stored.Total, "80")
	}
}
