package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/provision-api/internal/domain/item"
	"github.com/xenking/provision-api/internal/domain/order"
)

type orderItemRequest struct {
	IngredientID *int64          `json:"ingredientId"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity" validate:"required"`
}

type orderRequest struct {
	Items []orderItemRequest `json:"items" validate:"dive"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type orderItemResponse struct {
	IngredientID *int64          `json:"ingredientId"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
}

type orderResponse struct {
	ID        int64               `json:"id"`
	Number    string              `json:"number"`
	Status    string              `json:"status"`
	Total     decimal.Decimal     `json:"total"`
	ItemCount decimal.Decimal     `json:"itemCount"`
	PlacedAt  time.Time           `json:"placedAt"`
	Items     []orderItemResponse `json:"items"`
}

func toOrderResponse(o order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			IngredientID: it.IngredientID,
			Name:         it.Name,
			Unit:         it.Unit,
			Price:        it.Price,
			Quantity:     it.Quantity,
		}
	}
	return orderResponse{
		ID:        o.ID,
		Number:    o.Number,
		Status:    string(o.Status),
		Total:     o.Total,
		ItemCount: o.ItemCount,
		PlacedAt:  o.PlacedAt,
		Items:     items,
	}
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*o))
}

// createOrder submits an order directly, without a cart session. Items
// carrying an ingredient reference snapshot their name, unit and price from
// the catalog; the rest are stored as given.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !h.bind(w, r, &req) {
		return
	}

	snapshot := make([]item.LineItem, len(req.Items))
	for i, it := range req.Items {
		li := item.LineItem{
			Key:      item.NewCartKey(),
			Name:     it.Name,
			Unit:     it.Unit,
			Price:    it.Price,
			Quantity: it.Quantity,
		}
		if it.IngredientID != nil {
			ing, err := h.ingredients.GetByID(r.Context(), *it.IngredientID)
			if err != nil {
				respondError(w, r, err)
				return
			}
			li.Identity = item.Resolved(ing.ID)
			li.Name = ing.Name
			li.Unit = ing.Unit
			li.Price = ing.Price
		} else {
			li.Identity = item.Unresolved(li.Key)
		}
		snapshot[i] = li
	}

	o, err := h.orders.Submit(r.Context(), snapshot)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(*o))
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if !h.bind(w, r, &req) {
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), id, order.Status(req.Status))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*o))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.orders.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
