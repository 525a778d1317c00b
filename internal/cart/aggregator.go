package cart

import (
	"errors"
	"slices"
	"time"

	"github.com/cucharaita/storefront/internal/domain"
	"github.com/cucharaita/storefront/internal/pricing"
	"github.com/cucharaita/storefront/internal/selection"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Aggregator owns the line list of a cart. Lines for the same product with an
// equal selection are merged, everything else gets its own line.
type Aggregator struct {
	newID func() string
	now   func() time.Time
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// Add merges qty units of the product into the cart and returns the line that
// received them.
func (a *Aggregator) Add(c *domain.Cart, p domain.Product, state selection.State, qty int) (domain.CartLine, error) {
	if qty < 1 {
		return domain.CartLine{}, ErrInvalidQuantity
	}

	snapshot := state.Snapshot()
	for i := range c.Lines {
		line := &c.Lines[i]
		if line.ProductID == p.ID && SameSelection(line.Selection, snapshot) {
			line.Quantity += qty
			return *line, nil
		}
	}

	line := domain.CartLine{
		ID:        a.newID(),
		ProductID: p.ID,
		Name:      p.Name,
		Image:     p.Image,
		UnitPrice: pricing.UnitPrice(p, state),
		Quantity:  qty,
		Selection: snapshot,
		AddedAt:   a.now(),
	}
	c.Lines = append(c.Lines, line)
	return line, nil
}

// Remove deletes a line outright. It reports false for an unknown line id.
func Remove(c *domain.Cart, lineID string) bool {
	i := indexOf(c, lineID)
	if i < 0 {
		return false
	}
	c.Lines = slices.Delete(c.Lines, i, i+1)
	return true
}

// Decrease takes one unit off a line, dropping the line when it reaches zero.
func Decrease(c *domain.Cart, lineID string) bool {
	i := indexOf(c, lineID)
	if i < 0 {
		return false
	}
	if c.Lines[i].Quantity <= 1 {
		c.Lines = slices.Delete(c.Lines, i, i+1)
		return true
	}
	c.Lines[i].Quantity--
	return true
}

func Subtotal(c *domain.Cart) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// Total never goes below zero.
func Total(subtotal, discount decimal.Decimal) decimal.Decimal {
	t := subtotal.Sub(discount)
	if t.IsNegative() {
		return decimal.Zero
	}
	return t
}

// SameSelection compares two selection snapshots ignoring group order.
// Multiple groups compare as multisets of option ids, single groups by their
// option id. A group missing on either side, or in a different mode, makes
// the snapshots different.
func SameSelection(a, b []domain.GroupSelection) bool {
	left := nonEmpty(a)
	right := nonEmpty(b)
	if len(left) != len(right) {
		return false
	}

	for id, l := range left {
		r, ok := right[id]
		if !ok || l.Multiple != r.Multiple {
			return false
		}
		if !slices.Equal(sortedIDs(l), sortedIDs(r)) {
			return false
		}
	}
	return true
}

func nonEmpty(groups []domain.GroupSelection) map[int64]domain.GroupSelection {
	m := make(map[int64]domain.GroupSelection, len(groups))
	for _, g := range groups {
		if len(g.Options) > 0 {
			m[g.GroupID] = g
		}
	}
	return m
}

func sortedIDs(g domain.GroupSelection) []int64 {
	ids := make([]int64, 0, len(g.Options))
	for _, o := range g.Options {
		ids = append(ids, o.OptionID)
	}
	slices.Sort(ids)
	return ids
}

func indexOf(c *domain.Cart, lineID string) int {
	return slices.IndexFunc(c.Lines, func(l domain.CartLine) bool { return l.ID == lineID })
}
