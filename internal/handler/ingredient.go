package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/provision-api/internal/domain/ingredient"
	"github.com/xenking/provision-api/internal/spreadsheet"
)

type ingredientRequest struct {
	Name  string          `json:"name" validate:"required"`
	Unit  string          `json:"unit" validate:"required"`
	Price decimal.Decimal `json:"price"`
}

type ingredientResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
}

func toIngredientResponse(ing ingredient.Ingredient) ingredientResponse {
	return ingredientResponse{
		ID:        ing.ID,
		Name:      ing.Name,
		Unit:      ing.Unit,
		Price:     ing.Price,
		CreatedAt: ing.CreatedAt,
	}
}

func (h *Handler) listIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.ingredients.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]ingredientResponse, len(ingredients))
	for i, ing := range ingredients {
		out[i] = toIngredientResponse(ing)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ing, err := h.ingredients.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toIngredientResponse(*ing))
}

func (h *Handler) createIngredient(w http.ResponseWriter, r *http.Request) {
	var req ingredientRequest
	if !h.bind(w, r, &req) {
		return
	}

	ing := ingredient.Ingredient{Name: req.Name, Unit: req.Unit, Price: req.Price}
	if err := ing.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.ingredients.Create(r.Context(), &ing); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toIngredientResponse(ing))
}

func (h *Handler) updateIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req ingredientRequest
	if !h.bind(w, r, &req) {
		return
	}

	ing := ingredient.Ingredient{ID: id, Name: req.Name, Unit: req.Unit, Price: req.Price}
	if err := ing.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.ingredients.Update(r.Context(), &ing); err != nil {
		respondError(w, r, err)
		return
	}

	stored, err := h.ingredients.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toIngredientResponse(*stored))
}

func (h *Handler) deleteIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.ingredients.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// exportTemplate answers with an xlsx workbook pre-populated with the
// catalog for the fill-in-and-reimport flow.
func (h *Handler) exportTemplate(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.ingredients.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	buf, err := spreadsheet.ExportTemplate(ingredients)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="order_template.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
