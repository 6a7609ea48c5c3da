package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/provision-api/internal/domain/list"
)

type listItemRequest struct {
	IngredientID int64           `json:"ingredientId" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity" validate:"required"`
}

type listRequest struct {
	Name  string            `json:"name" validate:"required"`
	Items []listItemRequest `json:"items" validate:"dive"`
}

type listItemResponse struct {
	IngredientID int64           `json:"ingredientId"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
}

type listResponse struct {
	ID        int64              `json:"id"`
	Name      string             `json:"name"`
	CreatedAt time.Time          `json:"createdAt"`
	Items     []listItemResponse `json:"items"`
}

func toListResponse(l list.List) listResponse {
	items := make([]listItemResponse, len(l.Items))
	for i, it := range l.Items {
		items[i] = listItemResponse{
			IngredientID: it.IngredientID,
			Name:         it.Name,
			Unit:         it.Unit,
			Price:        it.Price,
			Quantity:     it.Quantity,
		}
	}
	return listResponse{ID: l.ID, Name: l.Name, CreatedAt: l.CreatedAt, Items: items}
}

func toItemInputs(reqs []listItemRequest) []list.ItemInput {
	inputs := make([]list.ItemInput, len(reqs))
	for i, it := range reqs {
		inputs[i] = list.ItemInput{IngredientID: it.IngredientID, Quantity: it.Quantity}
	}
	return inputs
}

func (h *Handler) listLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.lists.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]listResponse, len(lists))
	for i, l := range lists {
		out[i] = toListResponse(l)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	l, err := h.lists.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toListResponse(*l))
}

func (h *Handler) createList(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if !h.bind(w, r, &req) {
		return
	}

	l, err := h.lists.Create(r.Context(), req.Name, toItemInputs(req.Items))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toListResponse(*l))
}

func (h *Handler) updateList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req listRequest
	if !h.bind(w, r, &req) {
		return
	}

	l, err := h.lists.Update(r.Context(), id, req.Name, toItemInputs(req.Items))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toListResponse(*l))
}

func (h *Handler) deleteList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.lists.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
