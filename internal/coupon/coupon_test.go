package coupon

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cucharaita/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mu      sync.RWMutex
	coupons map[string]domain.Coupon
	err     error
	lookups []string
}

func (m *mockRepository) FindCouponByCode(_ context.Context, code string) (*domain.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups = append(m.lookups, code)
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.coupons[code]
	if !ok {
		return nil, ErrCouponNotFound
	}
	return &c, nil
}

func newRepo(coupons ...domain.Coupon) *mockRepository {
	m := &mockRepository{coupons: map[string]domain.Coupon{}}
	for _, c := range coupons {
		m.coupons[c.Code] = c
	}
	return m
}

func tenPercent() domain.Coupon {
	return domain.Coupon{
		ID: 1, Code: "DULCE10", Active: true, Type: domain.DiscountPercentage,
		Value: decimal.NewFromInt(10), MinAmount: decimal.NewFromInt(20),
	}
}

func TestEvaluate_PercentageAccepted(t *testing.T) {
	repo := newRepo(tenPercent())
	res := NewEvaluator(repo).Evaluate(context.Background(), "  dulce10 ", decimal.NewFromInt(25))

	require.True(t, res.Accepted)
	assert.Equal(t, ReasonAccepted, res.Reason)
	assert.Equal(t, "DULCE10", res.Code)
	assert.True(t, decimal.RequireFromString("2.5").Equal(res.Discount))
	assert.Contains(t, res.Message, "2.50")
	assert.Equal(t, []string{"DULCE10"}, repo.lookups)
}

func TestEvaluate_MinimumNotMet(t *testing.T) {
	res := NewEvaluator(newRepo(tenPercent())).Evaluate(context.Background(), "DULCE10", decimal.NewFromInt(15))

	assert.False(t, res.Accepted)
	assert.Equal(t, ReasonMinimumNotMet, res.Reason)
	assert.Contains(t, res.Message, "20.00")
	assert.True(t, res.Discount.IsZero())
}

func TestEvaluate_FixedAmount(t *testing.T) {
	c := domain.Coupon{Code: "MENOS5", Active: true, Type: domain.DiscountFixed, Value: decimal.NewFromInt(5)}
	res := NewEvaluator(newRepo(c)).Evaluate(context.Background(), "menos5", decimal.NewFromInt(3))

	require.True(t, res.Accepted)
	assert.True(t, decimal.NewFromInt(5).Equal(res.Discount))
}

func TestEvaluate_Rejections(t *testing.T) {
	inactive := tenPercent()
	inactive.Code = "VIEJO"
	inactive.Active = false

	tests := []struct {
		name   string
		repo   *mockRepository
		code   string
		reason Reason
	}{
		{"empty code", newRepo(), "   ", ReasonEnterCode},
		{"unknown code", newRepo(tenPercent()), "NOEXISTE", ReasonInvalid},
		{"inactive", newRepo(inactive), "viejo", ReasonInactive},
		{"lookup failure", &mockRepository{err: errors.New("connection refused")}, "DULCE10", ReasonUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewEvaluator(tt.repo).Evaluate(context.Background(), tt.code, decimal.NewFromInt(100))
			assert.False(t, res.Accepted)
			assert.Equal(t, tt.reason, res.Reason)
			assert.NotEmpty(t, res.Message)
			assert.True(t, res.Discount.IsZero())
		})
	}
}

func TestEvaluate_EmptyCodeSkipsLookup(t *testing.T) {
	repo := newRepo()
	NewEvaluator(repo).Evaluate(context.Background(), "", decimal.NewFromInt(10))
	assert.Empty(t, repo.lookups)
}
