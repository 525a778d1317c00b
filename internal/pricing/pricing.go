package pricing

import (
	"github.com/cucharaita/storefront/internal/domain"
	"github.com/cucharaita/storefront/internal/selection"
	"github.com/shopspring/decimal"
)

// EffectivePrice is the offer price when there is a positive one, otherwise
// the base price. A zero-valued price counts as 0.
func EffectivePrice(p domain.Product) decimal.Decimal {
	if p.HasOffer() {
		return p.OfferPrice.Decimal
	}
	return p.Price
}

// UnitPrice adds the price of every picked option instance to the effective
// price of the product.
func UnitPrice(p domain.Product, state selection.State) decimal.Decimal {
	price := EffectivePrice(p)
	for _, opt := range state.Flatten() {
		price = price.Add(opt.AddPrice)
	}
	return price
}

func LineTotal(unit decimal.Decimal, quantity int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}
