package features

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cucharaita/storefront/internal/cart"
	"github.com/cucharaita/storefront/internal/coupon"
	"github.com/cucharaita/storefront/internal/domain"
	"github.com/cucharaita/storefront/internal/selection"
	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
)

type couponTable map[string]domain.Coupon

func (c couponTable) FindCouponByCode(_ context.Context, code string) (*domain.Coupon, error) {
	cp, ok := c[strings.ToUpper(code)]
	if !ok {
		return nil, coupon.ErrCouponNotFound
	}
	return &cp, nil
}

type cartTestContext struct {
	product  domain.Product
	groups   []domain.OptionGroup
	coupons  couponTable
	cart     *domain.Cart
	agg      *cart.Aggregator
	selector *selection.Selector
	err      error
	result   coupon.Result
	subtotal decimal.Decimal
}

func (c *cartTestContext) reset() {
	c.product = domain.Product{}
	c.groups = nil
	c.coupons = couponTable{}
	c.cart = &domain.Cart{SessionID: "feature"}
	c.agg = cart.NewAggregator()
	c.selector = nil
	c.err = nil
	c.result = coupon.Result{}
	c.subtotal = decimal.Zero
}

func (c *cartTestContext) aProductPriced(name, price string) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	c.product = domain.Product{ID: 1, Name: name, Price: p, Active: true, Available: true}
	return nil
}

func (c *cartTestContext) aMultipleGroupWithOptions(name string, limit int, table *godog.Table) error {
	g := domain.OptionGroup{ID: 1, Name: name, Mode: domain.ModeMultiple, Limit: limit, Required: true}
	for i, row := range table.Rows {
		if i == 0 {
			continue // header
		}
		id, err := strconv.ParseInt(row.Cells[0].Value, 10, 64)
		if err != nil {
			return err
		}
		price, err := decimal.NewFromString(row.Cells[2].Value)
		if err != nil {
			return err
		}
		g.Options = append(g.Options, domain.Option{ID: id, GroupID: g.ID, Name: row.Cells[1].Value, AddPrice: price})
	}
	c.groups = append(c.groups, g)
	return nil
}

func (c *cartTestContext) theCoupons(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		value, err := decimal.NewFromString(row.Cells[2].Value)
		if err != nil {
			return err
		}
		minAmount, err := decimal.NewFromString(row.Cells[3].Value)
		if err != nil {
			return err
		}
		code := row.Cells[0].Value
		c.coupons[code] = domain.Coupon{
			Code:      code,
			Type:      domain.DiscountType(row.Cells[1].Value),
			Value:     value,
			MinAmount: minAmount,
			Active:    row.Cells[4].Value == "true",
		}
	}
	return nil
}

func (c *cartTestContext) iPick(ids string) error {
	c.selector = selection.NewSelector(c.groups)
	c.err = nil
	for _, raw := range strings.Split(ids, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return err
		}
		if _, err := c.selector.Add(c.groups[0].ID, id); err != nil {
			c.err = err
		}
	}
	return nil
}

func (c *cartTestContext) iPickAndAdd(ids string, qty int) error {
	if err := c.iPick(ids); err != nil {
		return err
	}
	if c.err != nil {
		return c.err
	}
	if !c.selector.CanAddToCart() {
		return fmt.Errorf("selection %q is incomplete", ids)
	}
	_, err := c.agg.Add(c.cart, c.product, c.selector.State(), qty)
	return err
}

func (c *cartTestContext) iDecreaseLine(n int) error {
	if n < 1 || n > len(c.cart.Lines) {
		return fmt.Errorf("no line %d", n)
	}
	if !cart.Decrease(c.cart, c.cart.Lines[n-1].ID) {
		return errors.New("decrease reported an unknown line")
	}
	return nil
}

func (c *cartTestContext) theCartHasLines(n int) error {
	if len(c.cart.Lines) != n {
		return fmt.Errorf("expected %d lines, got %d", n, len(c.cart.Lines))
	}
	return nil
}

func (c *cartTestContext) lineHasQuantityAndUnitPrice(n, qty int, price string) error {
	if n < 1 || n > len(c.cart.Lines) {
		return fmt.Errorf("no line %d", n)
	}
	line := c.cart.Lines[n-1]
	if line.Quantity != qty {
		return fmt.Errorf("expected quantity %d, got %d", qty, line.Quantity)
	}
	return equalMoney("unit price", price, line.UnitPrice)
}

func (c *cartTestContext) theSubtotalIs(amount string) error {
	return equalMoney("subtotal", amount, cart.Subtotal(c.cart))
}

func (c *cartTestContext) thePickIsRejectedWith(msg string) error {
	var verr *selection.ValidationError
	if !errors.As(c.err, &verr) {
		return fmt.Errorf("expected a validation error, got %v", c.err)
	}
	if !errors.Is(verr, selection.ErrLimitReached) {
		return fmt.Errorf("expected limit reached, got %v", verr.Err)
	}
	if verr.Message != msg {
		return fmt.Errorf("expected message %q, got %q", msg, verr.Message)
	}
	return nil
}

func (c *cartTestContext) theSelectionCanBeAdded() error {
	if !c.selector.CanAddToCart() {
		return errors.New("expected the selection to be complete")
	}
	return nil
}

func (c *cartTestContext) theSelectionCannotBeAdded() error {
	if c.selector.CanAddToCart() {
		return errors.New("expected the selection to be incomplete")
	}
	return nil
}

func (c *cartTestContext) iApplyCouponToSubtotal(code, subtotal string) error {
	s, err := decimal.NewFromString(subtotal)
	if err != nil {
		return err
	}
	c.subtotal = s
	c.result = coupon.NewEvaluator(c.coupons).Evaluate(context.Background(), code, s)
	return nil
}

func (c *cartTestContext) theCouponReasonIs(reason string) error {
	if string(c.result.Reason) != reason {
		return fmt.Errorf("expected reason %q, got %q (%s)", reason, c.result.Reason, c.result.Message)
	}
	return nil
}

func (c *cartTestContext) theTotalToPayIs(amount string) error {
	return equalMoney("total", amount, cart.Total(c.subtotal, c.result.Discount))
}

func equalMoney(what, want string, got decimal.Decimal) error {
	w, err := decimal.NewFromString(want)
	if err != nil {
		return err
	}
	if !w.Equal(got) {
		return fmt.Errorf("expected %s %s, got %s", what, w.StringFixed(2), got.StringFixed(2))
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^a product "([^"]*)" priced (\d+(?:\.\d+)?)$`, tc.aProductPriced)
	ctx.Step(`^the product has a multiple group "([^"]*)" that needs (\d+) picks with options:$`, tc.aMultipleGroupWithOptions)
	ctx.Step(`^the coupons:$`, tc.theCoupons)

	ctx.Step(`^I pick "([^"]*)" and add (\d+) to the cart$`, tc.iPickAndAdd)
	ctx.Step(`^I pick "([^"]*)"$`, tc.iPick)
	ctx.Step(`^I decrease line (\d+)$`, tc.iDecreaseLine)
	ctx.Step(`^I apply coupon "([^"]*)" to a subtotal of (\d+(?:\.\d+)?)$`, tc.iApplyCouponToSubtotal)

	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^line (\d+) has quantity (\d+) and unit price (\d+(?:\.\d+)?)$`, tc.lineHasQuantityAndUnitPrice)
	ctx.Step(`^the subtotal is (\d+(?:\.\d+)?)$`, tc.theSubtotalIs)
	ctx.Step(`^the pick is rejected with "([^"]*)"$`, tc.thePickIsRejectedWith)
	ctx.Step(`^the selection can be added to the cart$`, tc.theSelectionCanBeAdded)
	ctx.Step(`^the selection cannot be added to the cart$`, tc.theSelectionCannotBeAdded)
	ctx.Step(`^the coupon reason is "([^"]*)"$`, tc.theCouponReasonIs)
	ctx.Step(`^the total to pay is (\d+(?:\.\d+)?)$`, tc.theTotalToPayIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
