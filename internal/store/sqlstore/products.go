package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cucharaita/storefront/internal/catalog"
	"github.com/cucharaita/storefront/internal/domain"
)

const productColumns = `
	p.id, p.name, p.description, p.price, p.offer_price, p.active, p.available,
	c.id, c.name, p.tag_title, p.tag_color, p.image, p.ingredients, p.allergens, p.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p           domain.Product
		tagTitle    sql.NullString
		tagColor    sql.NullString
		ingredients sql.NullString
		allergens   sql.NullString
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.OfferPrice,
		&p.Active,
		&p.Available,
		&p.Category.ID,
		&p.Category.Name,
		&tagTitle,
		&tagColor,
		&p.Image,
		&ingredients,
		&allergens,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tagTitle.Valid && tagTitle.String != "" {
		p.Tag = &domain.Tag{Title: tagTitle.String, Color: tagColor.String}
	}
	p.Ingredients = ingredients.String
	p.Allergens = allergens.String
	return &p, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return categories, nil
}

// ListProducts returns active products ordered by category and then by name
// descending. A zero categoryID lists every category.
func (s *Store) ListProducts(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	query := `SELECT` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.active = TRUE`
	var args []any
	if categoryID != 0 {
		query += ` AND p.category_id = $1`
		args = append(args, categoryID)
	}
	query += ` ORDER BY p.category_id ASC, p.name DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

// GetProduct returns the product whatever its active flag.
func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product %d: %w", id, err)
	}
	return p, nil
}

// ListOptionRecords returns the option rows of a product joined with their
// group, in option id order.
func (s *Store) ListOptionRecords(ctx context.Context, productID int64) ([]domain.OptionRecord, error) {
	query := `
		SELECT o.id, o.name, o.add_price, g.id, g.name, g.multiple, g.option_select, g.required
		FROM product_options o
		JOIN option_groups g ON g.id = o.group_id
		WHERE o.product_id = $1
		ORDER BY o.id`

	rows, err := s.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	records := make([]domain.OptionRecord, 0)
	for rows.Next() {
		var (
			rec      domain.OptionRecord
			multiple bool
		)
		err := rows.Scan(
			&rec.Option.ID,
			&rec.Option.Name,
			&rec.Option.AddPrice,
			&rec.Group.ID,
			&rec.Group.Name,
			&multiple,
			&rec.Group.Limit,
			&rec.Group.Required,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		rec.Group.Mode = domain.ModeSingle
		if multiple {
			rec.Group.Mode = domain.ModeMultiple
		}
		rec.Option.GroupID = rec.Group.ID
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}
