package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cucharaita/storefront/internal/cache"
	"github.com/cucharaita/storefront/internal/domain"
	"github.com/cucharaita/storefront/internal/options"
	"github.com/cucharaita/storefront/pkg/circuitbreaker"
	"github.com/cucharaita/storefront/pkg/logger"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrProductNotFound covers both missing and inactive products.
var ErrProductNotFound = errors.New("product not found")

type Store interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListProducts(ctx context.Context, categoryID int64) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListOptionRecords(ctx context.Context, productID int64) ([]domain.OptionRecord, error)
}

// Detail is a product together with its option groups.
type Detail struct {
	Product domain.Product       `json:"product"`
	Groups  []domain.OptionGroup `json:"groups"`
}

type Service struct {
	store   Store
	cache   cache.ProductCache
	breaker *circuitbreaker.Breaker
	sfg     singleflight.Group
}

func NewService(store Store, c cache.ProductCache, breaker *circuitbreaker.Breaker) *Service {
	if breaker == nil {
		cfg := circuitbreaker.DefaultConfig("catalog-store")
		cfg.Ignore = func(err error) bool { return errors.Is(err, ErrProductNotFound) }
		breaker = circuitbreaker.New(cfg)
	}
	return &Service{
		store:   store,
		cache:   c,
		breaker: breaker,
	}
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return circuitbreaker.Do(s.breaker, func() ([]domain.Category, error) {
		return s.store.ListCategories(ctx)
	})
}

// ListProducts returns the active products of a category, or of every
// category when categoryID is zero. Listings are served from the cache when
// possible.
func (s *Service) ListProducts(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	key := listingKey(categoryID)

	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		if s.cache != nil {
			products, err := s.cache.GetProducts(ctx, key)
			if err == nil {
				return products, nil
			}
			if !errors.Is(err, cache.ErrCacheMiss) {
				logger.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("product cache get failed")
			}
		}

		products, err := circuitbreaker.Do(s.breaker, func() ([]domain.Product, error) {
			return s.store.ListProducts(ctx, categoryID)
		})
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}

		if s.cache != nil {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := s.cache.SetProducts(ctx, key, products); err != nil {
					logger.L().Warn().Err(err).Str("key", key).Msg("product cache set failed")
				}
			}()
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

// Product returns an active product.
func (s *Service) Product(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := circuitbreaker.Do(s.breaker, func() (*domain.Product, error) {
		return s.store.GetProduct(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// Groups loads and groups the options of a product.
func (s *Service) Groups(ctx context.Context, productID int64) ([]domain.OptionGroup, error) {
	records, err := circuitbreaker.Do(s.breaker, func() ([]domain.OptionRecord, error) {
		return s.store.ListOptionRecords(ctx, productID)
	})
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	return options.Group(records), nil
}

// Detail loads the product and its options concurrently. Nothing is returned
// once the context is done, even if both loads finished.
func (s *Service) Detail(ctx context.Context, id int64) (*Detail, error) {
	var (
		product *domain.Product
		groups  []domain.OptionGroup
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.Product(gctx, id)
		product = p
		return err
	})
	g.Go(func() error {
		gs, err := s.Groups(gctx, id)
		groups = gs
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Detail{Product: *product, Groups: groups}, nil
}

// InvalidateListings drops cached product listings.
func (s *Service) InvalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteProducts(ctx); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("product cache invalidate failed")
	}
}

func listingKey(categoryID int64) string {
	if categoryID == 0 {
		return "all"
	}
	return "category:" + strconv.FormatInt(categoryID, 10)
}
