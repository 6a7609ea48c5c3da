package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/provision-api/internal/domain/cart"
	"github.com/xenking/provision-api/internal/domain/item"
	"github.com/xenking/provision-api/internal/spreadsheet"
)

// maxImportSize bounds uploaded workbooks at 8 MiB.
const maxImportSize = 8 << 20

type addItemRequest struct {
	IngredientID int64           `json:"ingredientId" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity" validate:"required"`
}

type quantityRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
}

type applyListRequest struct {
	ListID int64 `json:"listId" validate:"required"`
}

type cartItemResponse struct {
	Key          string          `json:"key"`
	IngredientID *int64          `json:"ingredientId"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	Cost         decimal.Decimal `json:"cost"`
}

type cartResponse struct {
	ID        string             `json:"id"`
	Items     []cartItemResponse `json:"items"`
	ItemCount decimal.Decimal    `json:"itemCount"`
	TotalCost decimal.Decimal    `json:"totalCost"`
}

func toCartResponse(id string, c *cart.Cart) cartResponse {
	items := c.Items()
	out := make([]cartItemResponse, len(items))
	for i, li := range items {
		entry := cartItemResponse{
			Key:      li.Key,
			Name:     li.Name,
			Unit:     li.Unit,
			Price:    li.Price,
			Quantity: li.Quantity,
			Cost:     li.Cost(),
		}
		if ingID, ok := li.Identity.IngredientID(); ok {
			entry.IngredientID = &ingID
		}
		out[i] = entry
	}
	return cartResponse{
		ID:        id,
		Items:     out,
		ItemCount: c.ItemCount(),
		TotalCost: c.TotalCost().Round(2),
	}
}

// withCart runs fn against the session addressed by the {id} route param and
// answers with the resulting cart state.
func (h *Handler) withCart(w http.ResponseWriter, r *http.Request, fn func(*cart.Cart) error) {
	id := chi.URLParam(r, "id")

	var resp cartResponse
	err := h.carts.With(id, func(c *cart.Cart) error {
		if err := fn(c); err != nil {
			return err
		}
		resp = toCartResponse(id, c)
		return nil
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) createCart(w http.ResponseWriter, r *http.Request) {
	id := h.carts.Create()

	// A fresh session is always empty; render it without re-entering the
	// store so the response cannot race session eviction.
	writeJSON(w, http.StatusCreated, toCartResponse(id, cart.New()))
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, r, func(*cart.Cart) error { return nil })
}

func (h *Handler) deleteCart(w http.ResponseWriter, r *http.Request) {
	h.carts.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// addCartItem adds a catalog ingredient to the cart. A second add of the
// same ingredient merges into the existing entry by summing quantities.
func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !h.bind(w, r, &req) {
		return
	}

	ing, err := h.ingredients.GetByID(r.Context(), req.IngredientID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.withCart(w, r, func(c *cart.Cart) error {
		c.Add(item.LineItem{
			Key:      item.NewCartKey(),
			Identity: item.Resolved(ing.ID),
			Name:     ing.Name,
			Unit:     ing.Unit,
			Price:    ing.Price,
			Quantity: req.Quantity,
		})
		return nil
	})
}

func (h *Handler) setCartItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if !h.bind(w, r, &req) {
		return
	}

	key := chi.URLParam(r, "key")
	h.withCart(w, r, func(c *cart.Cart) error {
		c.SetQuantity(key, req.Quantity)
		return nil
	})
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	h.withCart(w, r, func(c *cart.Cart) error {
		c.Remove(key)
		return nil
	})
}

// applyList merges a saved list into the cart: quantities sum where an
// ingredient already sits in the cart, new entries are appended otherwise.
func (h *Handler) applyList(w http.ResponseWriter, r *http.Request) {
	var req applyListRequest
	if !h.bind(w, r, &req) {
		return
	}

	l, err := h.lists.Get(r.Context(), req.ListID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	items := make([]item.LineItem, len(l.Items))
	for i, it := range l.Items {
		items[i] = item.LineItem{
			Identity: item.Resolved(it.IngredientID),
			Name:     it.Name,
			Unit:     it.Unit,
			Price:    it.Price,
			Quantity: it.Quantity,
		}
	}

	h.withCart(w, r, func(c *cart.Cart) error {
		c.ApplyList(items)
		return nil
	})
}

// importSpreadsheet maps an uploaded xlsx workbook into cart entries. Rows
// are appended without merging against existing cart state; rows matching a
// catalog ingredient adopt its unit and price, the rest come in as written
// with a zero price.
func (h *Handler) importSpreadsheet(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "malformed multipart request")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "file field required")
		return
	}
	defer func() { _ = file.Close() }()

	rows, err := spreadsheet.Parse(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "unreadable workbook")
		return
	}

	ingredients, err := h.ingredients.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	items := spreadsheet.MapRows(rows, spreadsheet.NewCatalog(ingredients))
	h.withCart(w, r, func(c *cart.Cart) error {
		c.Append(items...)
		return nil
	})
}

// submitCart freezes the cart into an order and clears the session on
// success.
func (h *Handler) submitCart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var snapshot []item.LineItem
	if err := h.carts.With(id, func(c *cart.Cart) error {
		snapshot = c.Snapshot()
		return nil
	}); err != nil {
		respondError(w, r, err)
		return
	}

	o, err := h.orders.Submit(r.Context(), snapshot)
	if err != nil {
		respondError(w, r, err)
		return
	}

	_ = h.carts.With(id, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
	writeJSON(w, http.StatusCreated, toOrderResponse(*o))
}
