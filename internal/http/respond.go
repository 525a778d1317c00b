package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cucharaita/storefront/internal/cart"
	"github.com/cucharaita/storefront/internal/catalog"
	"github.com/cucharaita/storefront/internal/checkout"
	"github.com/cucharaita/storefront/internal/opinions"
	"github.com/cucharaita/storefront/internal/productlink"
	"github.com/cucharaita/storefront/internal/selection"
	"github.com/cucharaita/storefront/pkg/circuitbreaker"
	"github.com/cucharaita/storefront/pkg/logger"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.L().Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func respondErrorDetails(w http.ResponseWriter, status int, code, message, details string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// respondNotFoundHome answers a dead product link and sends the browser back
// to the storefront home after a short delay.
func respondNotFoundHome(w http.ResponseWriter) {
	w.Header().Set("Refresh", "3; url=/")
	respondError(w, http.StatusNotFound, "product_not_found", "product not found")
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *selection.ValidationError
		incomplete *cart.IncompleteSelectionError
		field      *checkout.FieldError
	)

	switch {
	case errors.As(err, &validation):
		respondErrorDetails(w, http.StatusUnprocessableEntity, "invalid_selection", validation.Message, validation.Err.Error())
	case errors.As(err, &incomplete):
		respondErrorDetails(w, http.StatusUnprocessableEntity, "incomplete_selection", "selection is incomplete", incomplete.Error())
	case errors.As(err, &field):
		respondErrorDetails(w, http.StatusUnprocessableEntity, "invalid_"+field.Field, field.Message, field.Err.Error())
	case errors.Is(err, catalog.ErrProductNotFound), errors.Is(err, productlink.ErrMalformedCode):
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
	case errors.Is(err, cart.ErrLineNotFound):
		respondError(w, http.StatusNotFound, "line_not_found", "cart line not found")
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
	case errors.Is(err, cart.ErrProductUnavailable):
		respondError(w, http.StatusConflict, "product_unavailable", "product is not available")
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", "cart is empty")
	case errors.Is(err, opinions.ErrReviewNotFound):
		respondError(w, http.StatusNotFound, "review_not_found", "review request not found")
	case errors.Is(err, opinions.ErrAlreadyReviewed):
		respondError(w, http.StatusConflict, "already_reviewed", "review request already completed")
	case errors.Is(err, opinions.ErrMissingRating),
		errors.Is(err, opinions.ErrUnknownProduct),
		errors.Is(err, opinions.ErrScoreOutOfRange):
		respondErrorDetails(w, http.StatusUnprocessableEntity, "invalid_rating", "invalid ratings", err.Error())
	case errors.Is(err, circuitbreaker.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "service temporarily unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		logger.FromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
