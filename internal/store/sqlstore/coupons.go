package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cucharaita/storefront/internal/coupon"
	"github.com/cucharaita/storefront/internal/domain"
)

// stored discount types
const (
	typePercentage = "PERCENTAGE"
	typeImport     = "IMPORT"
)

// FindCouponByCode matches the code case-insensitively. When several rows
// share a code the newest one wins.
func (s *Store) FindCouponByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	query := `
		SELECT id, name, active, type, import, min_amount
		FROM discounts
		WHERE UPPER(name) = UPPER($1)
		ORDER BY id DESC
		LIMIT 1`

	var (
		c    domain.Coupon
		kind string
	)
	err := s.db.QueryRowContext(ctx, query, code).Scan(&c.ID, &c.Code, &c.Active, &kind, &c.Value, &c.MinAmount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, coupon.ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query coupon: %w", err)
	}

	switch kind {
	case typePercentage:
		c.Type = domain.DiscountPercentage
	case typeImport:
		c.Type = domain.DiscountFixed
	default:
		return nil, fmt.Errorf("coupon %d has unknown type %q", c.ID, kind)
	}
	return &c, nil
}

func insertCoupon(ctx context.Context, tx *sql.Tx, c domain.Coupon) error {
	kind := typeImport
	if c.Type == domain.DiscountPercentage {
		kind = typePercentage
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO discounts (name, active, type, import, min_amount) VALUES ($1, $2, $3, $4, $5)`,
		c.Code, c.Active, kind, c.Value, c.MinAmount)
	if err != nil {
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}
