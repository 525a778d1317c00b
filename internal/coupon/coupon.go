package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cucharaita/storefront/internal/domain"
	"github.com/cucharaita/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

var ErrCouponNotFound = errors.New("coupon not found")

// Repository is the lookup the evaluator depends on. FindCouponByCode returns
// ErrCouponNotFound when no coupon has the code.
type Repository interface {
	FindCouponByCode(ctx context.Context, code string) (*domain.Coupon, error)
}

type Reason string

const (
	ReasonAccepted      Reason = "accepted"
	ReasonEnterCode     Reason = "enter_code"
	ReasonInvalid       Reason = "invalid"
	ReasonInactive      Reason = "inactive"
	ReasonMinimumNotMet Reason = "minimum_not_met"
	ReasonUnavailable   Reason = "unavailable"
)

// Result is the outcome of checking a code against a subtotal. A rejected
// result always carries a zero discount.
type Result struct {
	Code     string          `json:"code"`
	Accepted bool            `json:"accepted"`
	Reason   Reason          `json:"reason"`
	Message  string          `json:"message"`
	Discount decimal.Decimal `json:"discount"`
	Coupon   *domain.Coupon  `json:"-"`
}

type Evaluator struct {
	repo Repository
}

func NewEvaluator(repo Repository) *Evaluator {
	return &Evaluator{repo: repo}
}

// Normalize trims and uppercases a coupon code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Evaluate never fails: lookup errors become an unavailable result.
func (e *Evaluator) Evaluate(ctx context.Context, code string, subtotal decimal.Decimal) Result {
	code = Normalize(code)
	if code == "" {
		return reject(code, ReasonEnterCode, "Introduce un código de cupón.")
	}

	c, err := e.repo.FindCouponByCode(ctx, code)
	if errors.Is(err, ErrCouponNotFound) {
		return reject(code, ReasonInvalid, "Cupón no válido.")
	}
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("code", code).Msg("coupon lookup failed")
		return reject(code, ReasonUnavailable, "Error de conexión al servidor.")
	}

	if !c.Active {
		return reject(code, ReasonInactive, "El cupón no está activo.")
	}
	if subtotal.LessThan(c.MinAmount) {
		return reject(code, ReasonMinimumNotMet,
			fmt.Sprintf("Mínimo de compra de %s € requerido.", c.MinAmount.StringFixed(2)))
	}

	discount := Discount(*c, subtotal)
	return Result{
		Code:     code,
		Accepted: true,
		Reason:   ReasonAccepted,
		Message:  fmt.Sprintf("Cupón aplicado: %s. Descuento de %s €.", code, discount.StringFixed(2)),
		Discount: discount,
		Coupon:   c,
	}
}

// Discount computes the amount a coupon takes off a subtotal. Clamping to the
// subtotal is left to the cart total.
func Discount(c domain.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if c.Type == domain.DiscountPercentage {
		return subtotal.Mul(c.Value).Div(decimal.NewFromInt(100))
	}
	return c.Value
}

func reject(code string, reason Reason, msg string) Result {
	return Result{
		Code:     code,
		Reason:   reason,
		Message:  msg,
		Discount: decimal.Zero,
	}
}
