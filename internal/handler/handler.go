// Package handler exposes the HTTP API: catalog CRUD, list CRUD, cart
// sessions, spreadsheet import/export, and order history.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/xenking/provision-api/internal/domain/cart"
	"github.com/xenking/provision-api/internal/domain/ingredient"
	"github.com/xenking/provision-api/internal/domain/list"
	"github.com/xenking/provision-api/internal/domain/order"
)

// Handler carries the domain dependencies behind the API routes.
type Handler struct {
	ingredients ingredient.Repository
	lists       *list.Service
	orders      *order.Service
	carts       *cart.Store
	validate    *validator.Validate
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	ingredients ingredient.Repository,
	lists *list.Service,
	orders *order.Service,
	carts *cart.Store,
) *Handler {
	return &Handler{
		ingredients: ingredients,
		lists:       lists,
		orders:      orders,
		carts:       carts,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes returns the authenticated API route tree.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/ingredients", func(r chi.Router) {
		r.Get("/", h.listIngredients)
		r.Post("/", h.createIngredient)
		r.Get("/template", h.exportTemplate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getIngredient)
			r.Put("/", h.updateIngredient)
			r.Delete("/", h.deleteIngredient)
		})
	})

	r.Route("/lists", func(r chi.Router) {
		r.Get("/", h.listLists)
		r.Post("/", h.createList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getList)
			r.Put("/", h.updateList)
			r.Delete("/", h.deleteList)
		})
	})

	r.Route("/carts", func(r chi.Router) {
		r.Post("/", h.createCart)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Delete("/", h.deleteCart)
			r.Post("/items", h.addCartItem)
			r.Put("/items/{key}", h.setCartItemQuantity)
			r.Delete("/items/{key}", h.removeCartItem)
			r.Post("/apply-list", h.applyList)
			r.Post("/import", h.importSpreadsheet)
			r.Post("/submit", h.submitCart)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.listOrders)
		r.Post("/", h.createOrder)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getOrder)
			r.Put("/status", h.updateOrderStatus)
			r.Delete("/", h.deleteOrder)
		})
	})

	return r
}

// Status returns the unauthenticated status endpoint, reporting whether the
// backend connection is configured.
func Status(configured bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, statusResponse{Configured: configured})
	}
}

// NotConfigured returns the handler mounted on every data route when the
// backend connection parameters are absent: a dedicated 503 instead of a
// generic failure, so clients can render a setup-required state.
func NotConfigured() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusServiceUnavailable, codeConfigurationRequired,
			"backend connection is not configured")
	})
}

type statusResponse struct {
	Configured bool `json:"configured"`
}
