package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers groups everything the router serves.
type Handlers struct {
	Catalog  *CatalogHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Opinions *OpinionsHandler

	RequestTimeout time.Duration
	SecureCookies  bool
	MaxBodyBytes   int64
}

func NewRouter(h Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	if h.RequestTimeout > 0 {
		r.Use(middleware.Timeout(h.RequestTimeout))
	}
	if h.MaxBodyBytes > 0 {
		r.Use(middleware.RequestSize(h.MaxBodyBytes))
	}
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware(h.SecureCookies))

		r.Get("/categories", h.Catalog.ListCategories)
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Catalog.ListProducts)
			r.Get("/{code}", h.Catalog.GetProduct)
			r.Post("/{code}/quote", h.Catalog.Quote)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)
			r.Post("/items", h.Cart.AddItem)
			r.Post("/items/{line_id}/decrease", h.Cart.DecreaseLine)
			r.Delete("/items/{line_id}", h.Cart.RemoveLine)
			r.Post("/coupon", h.Cart.ApplyCoupon)
		})

		r.Get("/delivery/blocked-days", h.Checkout.BlockedDays)
		r.Post("/checkout", h.Checkout.Checkout)

		r.Route("/opinions", func(r chi.Router) {
			r.Get("/", h.Opinions.List)
			r.Get("/requests/{code}", h.Opinions.GetRequest)
			r.Post("/requests/{code}", h.Opinions.Submit)
		})
	})

	return r
}
