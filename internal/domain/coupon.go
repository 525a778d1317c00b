package domain

import "github.com/shopspring/decimal"

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type Coupon struct {
	ID        int64           `json:"id"`
	Code      string          `json:"code"`
	Active    bool            `json:"active"`
	Type      DiscountType    `json:"type"`
	Value     decimal.Decimal `json:"value"`
	MinAmount decimal.Decimal `json:"min_amount"`
}
