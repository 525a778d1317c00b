package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cucharaita/storefront/internal/domain"
	"github.com/cucharaita/storefront/internal/opinions"
)

func (s *Store) CreateReviewRequest(ctx context.Context, code string, products []string) error {
	list, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO review_requests (name_code, list_order, complete) VALUES ($1, $2, FALSE)`,
		code, string(list))
	if err != nil {
		if isUniqueViolation(err) {
			return opinions.ErrDuplicateRequest
		}
		return fmt.Errorf("insert review request: %w", err)
	}
	return nil
}

func (s *Store) GetReviewRequest(ctx context.Context, code string) (*domain.ReviewRequest, error) {
	var (
		req  domain.ReviewRequest
		list string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name_code, list_order, complete, created_at FROM review_requests WHERE name_code = $1`,
		code).Scan(&req.ID, &req.Code, &list, &req.Complete, &req.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, opinions.ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query review request: %w", err)
	}

	if err := json.Unmarshal([]byte(list), &req.Products); err != nil {
		return nil, fmt.Errorf("unmarshal review products: %w", err)
	}
	return &req, nil
}

// SubmitReview stores the ratings, closes the request and creates the reward
// coupon in one transaction. A request that is already complete is left
// untouched.
func (s *Store) SubmitReview(ctx context.Context, code string, ratings []domain.Opinion, reward domain.Coupon) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE review_requests SET complete = TRUE WHERE name_code = $1 AND complete = FALSE`, code)
	if err != nil {
		return fmt.Errorf("complete review request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return opinions.ErrAlreadyReviewed
	}

	for _, o := range ratings {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO opinions (name, product, score) VALUES ($1, $2, $3)`,
			o.Name, o.Product, o.Score)
		if err != nil {
			return fmt.Errorf("insert opinion: %w", err)
		}
	}

	if err := insertCoupon(ctx, tx, reward); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit review: %w", err)
	}
	return nil
}

func (s *Store) ListOpinions(ctx context.Context) ([]domain.Opinion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, product, score, created_at FROM opinions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query opinions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Opinion, 0)
	for rows.Next() {
		var o domain.Opinion
		if err := rows.Scan(&o.Name, &o.Product, &o.Score, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan opinion: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}
