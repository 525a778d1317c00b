package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Tag is the promotional badge shown on a product card.
type Tag struct {
	Title string `json:"title"`
	Color string `json:"color"`
}

type Product struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	OfferPrice  decimal.NullDecimal `json:"offer_price"`
	Active      bool                `json:"active"`
	Available   bool                `json:"available"`
	Category    Category            `json:"category"`
	Tag         *Tag                `json:"tag,omitempty"`
	Image       string              `json:"image"`
	Ingredients string              `json:"ingredients,omitempty"`
	Allergens   string              `json:"allergens,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// HasOffer reports whether the offer price replaces the base price.
func (p Product) HasOffer() bool {
	return p.OfferPrice.Valid && p.OfferPrice.Decimal.IsPositive()
}
