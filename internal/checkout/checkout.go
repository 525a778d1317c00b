package checkout

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"github.com/cucharaita/storefront/internal/cart"
	"github.com/cucharaita/storefront/internal/coupon"
	"github.com/cucharaita/storefront/internal/domain"
	"github.com/cucharaita/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type Carts interface {
	StoredSummary(ctx context.Context, sessionID string) (*cart.Summary, error)
	Clear(ctx context.Context, sessionID string) error
}

type Calendar interface {
	IsBlockedDay(ctx context.Context, day time.Time) (bool, error)
	ListBlockedDays(ctx context.Context, from time.Time) ([]domain.BlockedDay, error)
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, order domain.Order) error
}

type Config struct {
	Phone          string
	DepositPercent int
	LeadDays       int
	Location       *time.Location
}

type Request struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	DeliveryDate string `json:"delivery_date"`
	Coupon       string `json:"coupon,omitempty"`
}

type Result struct {
	Order   domain.Order `json:"order"`
	Message string       `json:"message"`
	Link    string       `json:"link"`
}

type Service struct {
	carts     Carts
	calendar  Calendar
	coupons   cart.CouponEvaluator
	publisher Publisher
	cfg       Config
	now       func() time.Time
	suffix    func() int
}

func NewService(carts Carts, calendar Calendar, coupons cart.CouponEvaluator, publisher Publisher, cfg Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Service{
		carts:     carts,
		calendar:  calendar,
		coupons:   coupons,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
		suffix:    func() int { return rand.IntN(10000) },
	}
}

// Checkout validates the delivery details, renders the order message and
// link, announces the order and empties the cart.
func (s *Service) Checkout(ctx context.Context, sessionID string, req Request) (*Result, error) {
	name := strings.TrimSpace(req.Name)
	address := strings.TrimSpace(req.Address)
	if name == "" {
		return nil, fieldError("name", ErrNameRequired, "Indica tu nombre.")
	}
	if address == "" {
		return nil, fieldError("address", ErrAddressRequired, "Indica la dirección de entrega.")
	}

	day, err := s.validateDate(ctx, req.DeliveryDate)
	if err != nil {
		return nil, err
	}

	sum, err := s.carts.StoredSummary(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(sum.Cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	couponCode := ""
	discount := sum.Discount
	if sum.Coupon != nil && sum.Coupon.Accepted {
		couponCode = sum.Coupon.Code
	}
	if strings.TrimSpace(req.Coupon) != "" {
		res := s.coupons.Evaluate(ctx, req.Coupon, sum.Subtotal)
		if !res.Accepted {
			return nil, couponError(res)
		}
		couponCode = res.Code
		discount = res.Discount
	}

	order := s.buildOrder(sessionID, sum, couponCode, discount, domain.Delivery{Name: name, Date: day, Address: address})
	text := Message(order, s.cfg.DepositPercent)

	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
			logger.FromContext(ctx).Error().Err(err).Str("order_code", order.Code).Msg("publish order placed failed")
		}
	}
	if err := s.carts.Clear(ctx, sessionID); err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("order_code", order.Code).Msg("clear cart after checkout failed")
	}

	logger.FromContext(ctx).Info().
		Str("order_code", order.Code).
		Str("total", order.Total.StringFixed(2)).
		Int("lines", len(order.Lines)).
		Msg("order placed")

	return &Result{
		Order:   order,
		Message: text,
		Link:    Link(s.cfg.Phone, text),
	}, nil
}

// BlockedDays lists the unavailable delivery days from today on.
func (s *Service) BlockedDays(ctx context.Context) ([]domain.BlockedDay, error) {
	return s.calendar.ListBlockedDays(ctx, s.today())
}

// EarliestDate is the first day a delivery can be booked, ignoring blocked
// days.
func (s *Service) EarliestDate() time.Time {
	return s.today().AddDate(0, 0, s.cfg.LeadDays)
}

func (s *Service) validateDate(ctx context.Context, raw string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), s.cfg.Location)
	if err != nil {
		return time.Time{}, fieldError("delivery_date", ErrInvalidDate, "Indica una fecha de entrega válida.")
	}

	earliest := s.EarliestDate()
	if day.Before(earliest) {
		return time.Time{}, fieldError("delivery_date", ErrDateTooSoon,
			fmt.Sprintf("La primera fecha disponible es el %s.", earliest.Format("02/01/2006")))
	}

	blocked, err := s.calendar.IsBlockedDay(ctx, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("check blocked day: %w", err)
	}
	if blocked {
		return time.Time{}, fieldError("delivery_date", ErrDateBlocked, "No hacemos entregas ese día.")
	}
	return day, nil
}

func (s *Service) today() time.Time {
	now := s.now().In(s.cfg.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.cfg.Location)
}

func (s *Service) buildOrder(sessionID string, sum *cart.Summary, couponCode string, discount decimal.Decimal, d domain.Delivery) domain.Order {
	lines := make([]domain.OrderLine, 0, len(sum.Cart.Lines))
	for _, l := range sum.Cart.Lines {
		lines = append(lines, domain.OrderLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.Total(),
			Selection: l.Selection,
		})
	}

	total := cart.Total(sum.Subtotal, discount)
	deposit := total.Mul(decimal.NewFromInt(int64(s.cfg.DepositPercent))).Div(decimal.NewFromInt(100)).Round(2)

	return domain.Order{
		Code:       OrderCode(d.Name, s.suffix()),
		SessionID:  sessionID,
		Lines:      lines,
		CouponCode: coupon.Normalize(couponCode),
		Subtotal:   sum.Subtotal,
		Discount:   discount,
		Total:      total,
		Deposit:    deposit,
		Remainder:  total.Sub(deposit),
		Delivery:   d,
		PlacedAt:   s.now(),
	}
}

// OrderCode is the customer's first name in capitals followed by four digits.
func OrderCode(name string, suffix int) string {
	first := strings.Fields(name)
	prefix := ""
	if len(first) > 0 {
		prefix = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) {
				return unicode.ToUpper(r)
			}
			return -1
		}, first[0])
	}
	if prefix == "" {
		prefix = "CLIENTE"
	}
	return fmt.Sprintf("%s%04d", prefix, suffix%10000)
}
