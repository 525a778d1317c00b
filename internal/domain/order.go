package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Delivery struct {
	Name    string    `json:"name"`
	Date    time.Time `json:"date"`
	Address string    `json:"address"`
}

type OrderLine struct {
	ProductID int64            `json:"product_id"`
	Name      string           `json:"name"`
	Quantity  int              `json:"quantity"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	LineTotal decimal.Decimal  `json:"line_total"`
	Selection []GroupSelection `json:"selection,omitempty"`
}

// Order is the summary sent to the bakery once a customer checks out.
type Order struct {
	Code       string          `json:"code"`
	SessionID  string          `json:"session_id"`
	Lines      []OrderLine     `json:"lines"`
	CouponCode string          `json:"coupon_code,omitempty"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
	Deposit    decimal.Decimal `json:"deposit"`
	Remainder  decimal.Decimal `json:"remainder"`
	Delivery   Delivery        `json:"delivery"`
	PlacedAt   time.Time       `json:"placed_at"`
}

// ProductNames lists each distinct product name once, in line order.
func (o Order) ProductNames() []string {
	seen := make(map[string]struct{}, len(o.Lines))
	names := make([]string, 0, len(o.Lines))
	for _, l := range o.Lines {
		if _, ok := seen[l.Name]; ok {
			continue
		}
		seen[l.Name] = struct{}{}
		names = append(names, l.Name)
	}
	return names
}
