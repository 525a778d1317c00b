package opinions

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/cucharaita/storefront/internal/domain"
	"github.com/cucharaita/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

var (
	ErrReviewNotFound   = errors.New("review request not found")
	ErrAlreadyReviewed  = errors.New("review request already completed")
	ErrDuplicateRequest = errors.New("review request already exists")
	ErrMissingRating    = errors.New("product not rated")
	ErrUnknownProduct   = errors.New("product not in order")
	ErrScoreOutOfRange  = errors.New("score out of range")
)

const (
	MinScore = 0
	MaxScore = 10

	anonymous    = "Anónimo"
	rewardPrefix = "OP-"
)

// Repository persists review requests and opinions. SubmitReview must
// complete the request, store the ratings and create the reward in one
// transaction, returning ErrAlreadyReviewed when the request is closed.
type Repository interface {
	CreateReviewRequest(ctx context.Context, code string, products []string) error
	GetReviewRequest(ctx context.Context, code string) (*domain.ReviewRequest, error)
	SubmitReview(ctx context.Context, code string, ratings []domain.Opinion, reward domain.Coupon) error
	ListOpinions(ctx context.Context) ([]domain.Opinion, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateRequest opens a review request for an order.
func (s *Service) CreateRequest(ctx context.Context, code string, products []string) error {
	code = normalizeCode(code)
	if code == "" {
		return ErrReviewNotFound
	}
	if err := s.repo.CreateReviewRequest(ctx, code, products); err != nil {
		return err
	}
	logger.FromContext(ctx).Info().Str("code", code).Int("products", len(products)).Msg("review request created")
	return nil
}

// Validate returns the open request for a code.
func (s *Service) Validate(ctx context.Context, code string) (*domain.ReviewRequest, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, ErrReviewNotFound
	}
	req, err := s.repo.GetReviewRequest(ctx, code)
	if err != nil {
		return nil, err
	}
	if req.Complete {
		return nil, ErrAlreadyReviewed
	}
	return req, nil
}

// Submit stores one score per product of the request and returns the reward
// coupon created for the customer.
func (s *Service) Submit(ctx context.Context, code string, ratings map[string]int) (*domain.Coupon, error) {
	req, err := s.Validate(ctx, code)
	if err != nil {
		return nil, err
	}

	for name := range ratings {
		if !slices.Contains(req.Products, name) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, name)
		}
	}

	opinions := make([]domain.Opinion, 0, len(req.Products))
	for _, product := range req.Products {
		score, ok := ratings[product]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingRating, product)
		}
		if score < MinScore || score > MaxScore {
			return nil, fmt.Errorf("%w: %s=%d", ErrScoreOutOfRange, product, score)
		}
		opinions = append(opinions, domain.Opinion{Name: req.Code, Product: product, Score: score})
	}

	reward := RewardCoupon(req.Code)
	if err := s.repo.SubmitReview(ctx, req.Code, opinions, reward); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("code", req.Code).
		Str("reward", reward.Code).
		Msg("review submitted")
	return &reward, nil
}

// RewardCoupon is the thank-you coupon granted for a completed review.
func RewardCoupon(code string) domain.Coupon {
	return domain.Coupon{
		Code:      rewardPrefix + code,
		Active:    true,
		Type:      domain.DiscountPercentage,
		Value:     decimal.NewFromInt(10),
		MinAmount: decimal.NewFromInt(20),
	}
}

// List groups opinions per order code, best average first.
func (s *Service) List(ctx context.Context) ([]domain.Review, error) {
	rows, err := s.repo.ListOpinions(ctx)
	if err != nil {
		return nil, err
	}
	return Aggregate(rows), nil
}

// Aggregate groups opinions by the code they were left under. Groups keep
// the order of their first opinion when averages tie.
func Aggregate(rows []domain.Opinion) []domain.Review {
	type group struct {
		review domain.Review
		total  int64
	}

	var order []string
	groups := make(map[string]*group)
	for _, o := range rows {
		key := o.Name
		if key == "" {
			key = anonymous
		}
		g, ok := groups[key]
		if !ok {
			g = &group{review: domain.Review{
				ID:         key,
				ClientName: DisplayName(o.Name),
				Date:       o.CreatedAt,
				Products:   []domain.RatedProduct{},
			}}
			groups[key] = g
			order = append(order, key)
		}
		g.review.Products = append(g.review.Products, domain.RatedProduct{Name: o.Product, Score: o.Score})
		g.total += int64(o.Score)
	}

	reviews := make([]domain.Review, 0, len(order))
	averages := make(map[string]decimal.Decimal, len(order))
	for _, key := range order {
		g := groups[key]
		avg := decimal.NewFromInt(g.total).
			Div(decimal.NewFromInt(int64(len(g.review.Products)))).
			Round(1)
		averages[key] = avg
		g.review.Average = avg.StringFixed(1)
		reviews = append(reviews, g.review)
	}

	slices.SortStableFunc(reviews, func(a, b domain.Review) int {
		return -cmp.Compare(averages[a.ID].InexactFloat64(), averages[b.ID].InexactFloat64())
	})
	return reviews
}

// DisplayName turns an order code such as LIDIA06 or ANA_2 into a first
// name.
func DisplayName(raw string) string {
	if raw == "" {
		return anonymous
	}
	first, _, _ := strings.Cut(raw, "_")
	name := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, first)
	if name == "" {
		return raw
	}
	runes := []rune(name)
	return string(unicode.ToUpper(runes[0])) + strings.ToLower(string(runes[1:]))
}
