package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cucharaita/storefront/internal/catalog"
	"github.com/cucharaita/storefront/internal/domain"
	"github.com/cucharaita/storefront/internal/pricing"
	"github.com/cucharaita/storefront/internal/productlink"
	"github.com/cucharaita/storefront/internal/selection"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type Catalog interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListProducts(ctx context.Context, categoryID int64) ([]domain.Product, error)
	Detail(ctx context.Context, id int64) (*catalog.Detail, error)
}

type CatalogHandler struct {
	catalog Catalog
	links   *productlink.Codec
	timeout time.Duration
}

func NewCatalogHandler(c Catalog, links *productlink.Codec, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		catalog: c,
		links:   links,
		timeout: timeout,
	}
}

// ProductDTO is a product with its share code and the price a customer pays
// before options.
type ProductDTO struct {
	domain.Product
	Code           string          `json:"code"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
}

type ProductDetailDTO struct {
	Product ProductDTO           `json:"product"`
	Groups  []domain.OptionGroup `json:"groups"`
}

type QuoteRequestDTO struct {
	Picks    []selection.Pick `json:"picks"`
	Quantity int              `json:"quantity"`
}

type QuoteResponseDTO struct {
	UnitPrice    decimal.Decimal         `json:"unit_price"`
	LineTotal    decimal.Decimal         `json:"line_total"`
	Quantity     int                     `json:"quantity"`
	CanAddToCart bool                    `json:"can_add_to_cart"`
	Statuses     []selection.Status      `json:"statuses"`
	Selection    []domain.GroupSelection `json:"selection"`
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var categoryID int64
	if raw := r.URL.Query().Get("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_category", "category must be a positive integer")
			return
		}
		categoryID = id
	}

	products, err := h.catalog.ListProducts(ctx, categoryID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dto, err := h.productDTO(p)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		out = append(out, dto)
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	detail, ok := h.detail(ctx, w, r)
	if !ok {
		return
	}

	dto, err := h.productDTO(detail.Product)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ProductDetailDTO{Product: dto, Groups: detail.Groups})
}

// Quote prices a selection without touching the cart.
func (h *CatalogHandler) Quote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req QuoteRequestDTO
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

	detail, ok := h.detail(ctx, w, r)
	if !ok {
		return
	}

	sel, err := selection.FromRequest(detail.Groups, req.Picks, req.Quantity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	state := sel.State()
	unit := pricing.UnitPrice(detail.Product, state)
	respondJSON(w, http.StatusOK, QuoteResponseDTO{
		UnitPrice:    unit,
		LineTotal:    pricing.LineTotal(unit, sel.Quantity()),
		Quantity:     sel.Quantity(),
		CanAddToCart: detail.Product.Available && sel.CanAddToCart(),
		Statuses:     sel.Statuses(),
		Selection:    state.Snapshot(),
	})
}

// detail resolves the {code} path parameter. Dead links get the delayed
// redirect home.
func (h *CatalogHandler) detail(ctx context.Context, w http.ResponseWriter, r *http.Request) (*catalog.Detail, bool) {
	id, err := h.links.Decode(chi.URLParam(r, "code"))
	if err != nil {
		respondNotFoundHome(w)
		return nil, false
	}

	detail, err := h.catalog.Detail(ctx, id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondNotFoundHome(w)
		return nil, false
	}
	if err != nil {
		handleServiceError(w, r, err)
		return nil, false
	}
	return detail, true
}

func (h *CatalogHandler) productDTO(p domain.Product) (ProductDTO, error) {
	code, err := h.links.Encode(p.ID)
	if err != nil {
		return ProductDTO{}, err
	}
	return ProductDTO{Product: p, Code: code, EffectivePrice: pricing.EffectivePrice(p)}, nil
}
