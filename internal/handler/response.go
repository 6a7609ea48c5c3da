package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/provision-api/internal/domain/cart"
	"github.com/xenking/provision-api/internal/domain/ingredient"
	"github.com/xenking/provision-api/internal/domain/list"
	"github.com/xenking/provision-api/internal/domain/order"
	"github.com/xenking/provision-api/internal/persist"
)

// Machine-readable error codes carried alongside the HTTP status.
const (
	codeBadRequest            = "bad_request"
	codeNotFound              = "not_found"
	codeConflict              = "conflict"
	codeUnprocessable         = "unprocessable"
	codeOrphanedParent        = "orphaned_parent"
	codeConfigurationRequired = "configuration_required"
	codeInternal              = "internal"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// respondError maps domain errors to HTTP responses. Unexpected errors are
// logged and answered with a generic 500 so internals never leak.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ingredient.ErrNotFound),
		errors.Is(err, list.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, cart.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
		return
	case errors.Is(err, ingredient.ErrNameTaken):
		writeError(w, http.StatusConflict, codeConflict, err.Error())
		return
	case errors.Is(err, list.ErrEmptyName),
		errors.Is(err, ingredient.ErrNameRequired):
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	case errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, ingredient.ErrNegativePrice):
		writeError(w, http.StatusUnprocessableEntity, codeUnprocessable, err.Error())
		return
	}

	var (
		invalidUnit     *ingredient.InvalidUnitError
		invalidStatus   *order.InvalidStatusError
		invalidQuantity *order.InvalidQuantityError
		invalidItem     *list.InvalidItemError
		orphan          *persist.OrphanedParentError
	)
	switch {
	case errors.As(err, &invalidUnit),
		errors.As(err, &invalidStatus),
		errors.As(err, &invalidQuantity),
		errors.As(err, &invalidItem):
		writeError(w, http.StatusUnprocessableEntity, codeUnprocessable, err.Error())
	case errors.As(err, &orphan):
		// A parent record is stranded in storage; surface it distinctly so
		// operators can clean up instead of the failure being swallowed.
		writeError(w, http.StatusBadGateway, codeOrphanedParent, err.Error())
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

// bind parses the request body into v and validates it, answering 400 on
// failure. It reports whether the request may proceed.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "malformed request body")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return false
	}
	return true
}

// pathID parses the {id} route parameter, answering 400 on failure. It
// reports whether the request may proceed.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid id "+strconv.Quote(raw))
		return 0, false
	}
	return id, true
}
