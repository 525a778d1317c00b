package http

import (
	"context"
	"net/http"
	"time"

	"github.com/cucharaita/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type Opinions interface {
	List(ctx context.Context) ([]domain.Review, error)
	Validate(ctx context.Context, code string) (*domain.ReviewRequest, error)
	Submit(ctx context.Context, code string, ratings map[string]int) (*domain.Coupon, error)
}

type OpinionsHandler struct {
	opinions Opinions
	timeout  time.Duration
}

func NewOpinionsHandler(o Opinions, timeout time.Duration) *OpinionsHandler {
	return &OpinionsHandler{opinions: o, timeout: timeout}
}

type SubmitRatingsRequestDTO struct {
	Ratings map[string]int `json:"ratings"`
}

type SubmitRatingsResponseDTO struct {
	Coupon  string `json:"coupon"`
	Message string `json:"message"`
}

func (h *OpinionsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	reviews, err := h.opinions.List(ctx)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}

func (h *OpinionsHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	req, err := h.opinions.Validate(ctx, chi.URLParam(r, "code"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (h *OpinionsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SubmitRatingsRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	reward, err := h.opinions.Submit(ctx, chi.URLParam(r, "code"), req.Ratings)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, SubmitRatingsResponseDTO{
		Coupon:  reward.Code,
		Message: "10% de descuento, válido para compras superiores a 20€",
	})
}
