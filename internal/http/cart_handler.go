package http

import (
	"context"
	"net/http"
	"time"

	"github.com/cucharaita/storefront/internal/cart"
	"github.com/cucharaita/storefront/internal/coupon"
	"github.com/cucharaita/storefront/internal/domain"
	"github.com/cucharaita/storefront/internal/productlink"
	"github.com/cucharaita/storefront/internal/selection"
	"github.com/go-chi/chi/v5"
)

const maxQuantity = 99

type Carts interface {
	Summary(ctx context.Context, sessionID string) (*cart.Summary, error)
	AddItem(ctx context.Context, sessionID string, req cart.AddRequest) (domain.CartLine, error)
	RemoveLine(ctx context.Context, sessionID, lineID string) error
	DecreaseLine(ctx context.Context, sessionID, lineID string) error
	Clear(ctx context.Context, sessionID string) error
	ApplyCoupon(ctx context.Context, sessionID, code string) (coupon.Result, error)
}

type CartHandler struct {
	carts   Carts
	links   *productlink.Codec
	timeout time.Duration
}

func NewCartHandler(carts Carts, links *productlink.Codec, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		links:   links,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductCode string           `json:"product_code"`
	Picks       []selection.Pick `json:"picks"`
	Quantity    int              `json:"quantity"`
}

type AddItemResponseDTO struct {
	Line    domain.CartLine `json:"line"`
	Summary *cart.Summary   `json:"summary"`
}

type ApplyCouponRequestDTO struct {
	Code string `json:"code"`
}

type ApplyCouponResponseDTO struct {
	Coupon  coupon.Result `json:"coupon"`
	Summary *cart.Summary `json:"summary"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.respondSummary(ctx, w, r, http.StatusOK)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 || req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	productID, err := h.links.Decode(req.ProductCode)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	sid := sessionID(r.Context())
	line, err := h.carts.AddItem(ctx, sid, cart.AddRequest{
		ProductID: productID,
		Picks:     req.Picks,
		Quantity:  req.Quantity,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	summary, err := h.carts.Summary(ctx, sid)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, AddItemResponseDTO{Line: line, Summary: summary})
}

func (h *CartHandler) DecreaseLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.carts.DecreaseLine(ctx, sessionID(r.Context()), chi.URLParam(r, "line_id")); err != nil {
		handleServiceError(w, r, err)
		return
	}
	h.respondSummary(ctx, w, r, http.StatusOK)
}

func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.carts.RemoveLine(ctx, sessionID(r.Context()), chi.URLParam(r, "line_id")); err != nil {
		handleServiceError(w, r, err)
		return
	}
	h.respondSummary(ctx, w, r, http.StatusOK)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.carts.Clear(ctx, sessionID(r.Context())); err != nil {
		handleServiceError(w, r, err)
		return
	}
	h.respondSummary(ctx, w, r, http.StatusOK)
}

// ApplyCoupon always answers 200: a rejected code is a result, not an error.
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ApplyCouponRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sid := sessionID(r.Context())
	res, err := h.carts.ApplyCoupon(ctx, sid, req.Code)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	summary, err := h.carts.Summary(ctx, sid)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ApplyCouponResponseDTO{Coupon: res, Summary: summary})
}

func (h *CartHandler) respondSummary(ctx context.Context, w http.ResponseWriter, r *http.Request, status int) {
	summary, err := h.carts.Summary(ctx, sessionID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, status, summary)
}
