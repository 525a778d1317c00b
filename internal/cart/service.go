package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cucharaita/storefront/internal/cache"
	"github.com/cucharaita/storefront/internal/coupon"
	"github.com/cucharaita/storefront/internal/domain"
	"github.com/cucharaita/storefront/internal/selection"
	"github.com/cucharaita/storefront/internal/store/cartdb"
	"github.com/cucharaita/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

var (
	ErrLineNotFound       = errors.New("cart line not found")
	ErrProductUnavailable = errors.New("product is not available")
)

// IncompleteSelectionError is returned when the picks do not satisfy every
// option group of the product.
type IncompleteSelectionError struct {
	Statuses []selection.Status
}

func (e *IncompleteSelectionError) Error() string {
	for _, st := range e.Statuses {
		if !st.Satisfied {
			return fmt.Sprintf("incomplete selection: %s", st.Message)
		}
	}
	return "incomplete selection"
}

type ProductSource interface {
	Product(ctx context.Context, id int64) (*domain.Product, error)
	Groups(ctx context.Context, productID int64) ([]domain.OptionGroup, error)
}

type CouponEvaluator interface {
	Evaluate(ctx context.Context, code string, subtotal decimal.Decimal) coupon.Result
}

type AddRequest struct {
	ProductID int64            `json:"product_id"`
	Picks     []selection.Pick `json:"picks"`
	Quantity  int              `json:"quantity"`
}

type Summary struct {
	Cart     *domain.Cart    `json:"cart"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
	Coupon   *coupon.Result  `json:"coupon,omitempty"`
}

type Service struct {
	repo    cartdb.CartRepository
	cache   cache.CartCache
	catalog ProductSource
	coupons CouponEvaluator
	agg     *Aggregator
	locks   *sessionLocks
	sfg     singleflight.Group // Prevents cache stampede
}

func NewService(repo cartdb.CartRepository, c cache.CartCache, catalog ProductSource, coupons CouponEvaluator) *Service {
	return &Service{
		repo:    repo,
		cache:   c,
		catalog: catalog,
		coupons: coupons,
		agg:     NewAggregator(),
		locks:   newSessionLocks(),
	}
}

func emptyCart(sessionID string) *domain.Cart {
	now := time.Now()
	return &domain.Cart{
		SessionID: sessionID,
		Lines:     []domain.CartLine{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetCart returns the session cart, an empty one when none is stored.
func (s *Service) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, sessionID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.FromContext(ctx).Warn().Err(err).Msg("cart cache get failed")
		}

		// read and fill under the session lock so a mutation's invalidate
		// always lands after the fill
		unlock := s.locks.lock(sessionID)
		defer unlock()

		cart, err = s.repo.GetCart(ctx, sessionID)
		if errors.Is(err, cartdb.ErrCartNotFound) {
			return emptyCart(sessionID), nil
		}
		if err != nil {
			return nil, err
		}

		setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := s.cache.Set(setCtx, sessionID, cart); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Msg("cart cache set failed")
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// AddItem validates the picks against the product's option groups and merges
// the result into the cart.
func (s *Service) AddItem(ctx context.Context, sessionID string, req AddRequest) (domain.CartLine, error) {
	if req.Quantity < 1 {
		return domain.CartLine{}, ErrInvalidQuantity
	}

	product, err := s.catalog.Product(ctx, req.ProductID)
	if err != nil {
		return domain.CartLine{}, err
	}
	if !product.Available {
		return domain.CartLine{}, ErrProductUnavailable
	}
	groups, err := s.catalog.Groups(ctx, req.ProductID)
	if err != nil {
		return domain.CartLine{}, err
	}

	sel, err := selection.FromRequest(groups, req.Picks, req.Quantity)
	if err != nil {
		return domain.CartLine{}, err
	}
	if !sel.CanAddToCart() {
		return domain.CartLine{}, &IncompleteSelectionError{Statuses: sel.Statuses()}
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.CartLine{}, err
	}

	line, err := s.agg.Add(cart, *product, sel.State(), sel.Quantity())
	if err != nil {
		return domain.CartLine{}, err
	}
	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("cart upsert failed")
		return domain.CartLine{}, err
	}

	s.invalidate(ctx, sessionID)
	return line, nil
}

func (s *Service) RemoveLine(ctx context.Context, sessionID, lineID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if !Remove(cart, lineID) {
		return ErrLineNotFound
	}

	if err := s.repo.RemoveLine(ctx, sessionID, lineID); err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("line_id", lineID).Msg("cart remove line failed")
		return err
	}

	s.invalidate(ctx, sessionID)
	return nil
}

// DecreaseLine takes one unit off a line and drops the line at zero.
func (s *Service) DecreaseLine(ctx context.Context, sessionID, lineID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if !Decrease(cart, lineID) {
		return ErrLineNotFound
	}

	if i := indexOf(cart, lineID); i >= 0 {
		err = s.repo.SetLineQuantity(ctx, sessionID, lineID, cart.Lines[i].Quantity)
	} else {
		err = s.repo.RemoveLine(ctx, sessionID, lineID)
	}
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("line_id", lineID).Msg("cart decrease line failed")
		return err
	}

	s.invalidate(ctx, sessionID)
	return nil
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	err := s.repo.DeleteCart(ctx, sessionID)
	if err != nil && !errors.Is(err, cartdb.ErrCartNotFound) {
		logger.FromContext(ctx).Error().Err(err).Msg("cart delete failed")
		return err
	}

	s.invalidate(ctx, sessionID)
	return nil
}

// ApplyCoupon evaluates a code against the current subtotal. An accepted code
// is stored on the cart, a rejected one clears whatever code was stored.
func (s *Service) ApplyCoupon(ctx context.Context, sessionID, code string) (coupon.Result, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return coupon.Result{}, err
	}

	res := s.coupons.Evaluate(ctx, code, Subtotal(cart))
	if res.Reason == coupon.ReasonUnavailable {
		return res, nil
	}

	stored := ""
	if res.Accepted {
		stored = res.Code
	}
	if stored == cart.CouponCode {
		return res, nil
	}

	err = s.repo.SetCoupon(ctx, sessionID, stored)
	if errors.Is(err, cartdb.ErrCartNotFound) {
		cart.CouponCode = stored
		err = s.repo.UpsertCart(ctx, cart)
	}
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("cart set coupon failed")
		return coupon.Result{}, err
	}

	s.invalidate(ctx, sessionID)
	return res, nil
}

// Summary totals the cart. A stored coupon is checked again against the
// current subtotal and contributes nothing if it no longer applies.
func (s *Service) Summary(ctx context.Context, sessionID string) (*Summary, error) {
	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, cart), nil
}

// StoredSummary totals the cart as persisted, bypassing the cache.
func (s *Service) StoredSummary(ctx context.Context, sessionID string) (*Summary, error) {
	unlock := s.locks.lock(sessionID)
	cart, err := s.load(ctx, sessionID)
	unlock()
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, cart), nil
}

func (s *Service) summarize(ctx context.Context, cart *domain.Cart) *Summary {
	sum := &Summary{
		Cart:     cart,
		Subtotal: Subtotal(cart),
		Discount: decimal.Zero,
	}
	if cart.CouponCode != "" {
		res := s.coupons.Evaluate(ctx, cart.CouponCode, sum.Subtotal)
		sum.Coupon = &res
		if res.Accepted {
			sum.Discount = res.Discount
		}
	}
	sum.Total = Total(sum.Subtotal, sum.Discount)
	return sum
}

func (s *Service) load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, sessionID)
	if errors.Is(err, cartdb.ErrCartNotFound) {
		return emptyCart(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return cart, nil
}

func (s *Service) invalidate(ctx context.Context, sessionID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("cart cache invalidate failed")
	}
}
