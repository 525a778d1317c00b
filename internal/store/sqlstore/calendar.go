package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/cucharaita/storefront/internal/domain"
)

const dayLayout = "2006-01-02"

// dayValue scans a DATE column, which sqlite may hand back as text.
type dayValue struct {
	t time.Time
}

func (d *dayValue) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.t = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	}
	return fmt.Errorf("unsupported day value %T", src)
}

func (d *dayValue) parse(s string) error {
	if len(s) > len(dayLayout) {
		s = s[:len(dayLayout)]
	}
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return fmt.Errorf("parse day %q: %w", s, err)
	}
	d.t = t
	return nil
}

// ListBlockedDays returns the days from `from` onwards on which no delivery
// is possible.
func (s *Store) ListBlockedDays(ctx context.Context, from time.Time) ([]domain.BlockedDay, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT day, reason FROM blocked_days WHERE day >= $1 ORDER BY day`,
		from.Format(dayLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query blocked days: %w", err)
	}
	defer rows.Close()

	days := make([]domain.BlockedDay, 0)
	for rows.Next() {
		var (
			d  dayValue
			bd domain.BlockedDay
		)
		if err := rows.Scan(&d, &bd.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan blocked day: %w", err)
		}
		bd.Day = d.t
		days = append(days, bd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return days, nil
}

func (s *Store) IsBlockedDay(ctx context.Context, day time.Time) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM blocked_days WHERE day = $1`,
		day.Format(dayLayout)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query blocked day: %w", err)
	}
	return n > 0, nil
}
