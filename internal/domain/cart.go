package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	SessionID  string     `bson:"session_id" json:"session_id"`
	Lines      []CartLine `bson:"lines" json:"lines"`
	CouponCode string     `bson:"coupon_code" json:"coupon_code,omitempty"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updated_at"`
}

// CartLine is one distinct (product, option selection) combination.
type CartLine struct {
	ID        string           `bson:"line_id" json:"id"`
	ProductID int64            `bson:"product_id" json:"product_id"`
	Name      string           `bson:"name" json:"name"`
	Image     string           `bson:"image" json:"image"`
	UnitPrice decimal.Decimal  `bson:"unit_price" json:"unit_price"`
	Quantity  int              `bson:"quantity" json:"quantity"`
	Selection []GroupSelection `bson:"selection" json:"selection"`
	AddedAt   time.Time        `bson:"added_at" json:"added_at"`
}

func (l CartLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
