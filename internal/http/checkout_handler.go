package http

import (
	"context"
	"net/http"
	"time"

	"github.com/cucharaita/storefront/internal/checkout"
	"github.com/cucharaita/storefront/internal/domain"
)

type Checkout interface {
	Checkout(ctx context.Context, sessionID string, req checkout.Request) (*checkout.Result, error)
	BlockedDays(ctx context.Context) ([]domain.BlockedDay, error)
	EarliestDate() time.Time
}

type CheckoutHandler struct {
	checkout Checkout
	timeout  time.Duration
}

func NewCheckoutHandler(c Checkout, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{checkout: c, timeout: timeout}
}

type BlockedDaysResponseDTO struct {
	Earliest string              `json:"earliest"`
	Blocked  []domain.BlockedDay `json:"blocked"`
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req checkout.Request
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	res, err := h.checkout.Checkout(ctx, sessionID(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

func (h *CheckoutHandler) BlockedDays(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	days, err := h.checkout.BlockedDays(ctx)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if days == nil {
		days = []domain.BlockedDay{}
	}
	respondJSON(w, http.StatusOK, BlockedDaysResponseDTO{
		Earliest: h.checkout.EarliestDate().Format("2006-01-02"),
		Blocked:  days,
	})
}
