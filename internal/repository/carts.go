package repository

import (
	"context"
	"database/sql"

	"mercadito/internal/database"
	"mercadito/internal/models"
)

type CartRepository struct {
	db *database.DB
}

func NewCartRepository(db *database.DB) *CartRepository {
	return &CartRepository{db: db}
}

// GetOrCreateActive finds the user's single active cart, creating it lazily.
// The partial unique index on (user_id) WHERE status='active' makes the
// insert race-safe; ON CONFLICT falls through to the existing row.
func (r *CartRepository) GetOrCreateActive(ctx context.Context, userID int64) (*models.Cart, error) {
	cart := &models.Cart{}
	query := `
		SELECT id, user_id, status, created_at
		FROM carts
		WHERE user_id = $1 AND status = 'active'`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&cart.ID, &cart.UserID, &cart.Status, &cart.CreatedAt)
	if err == nil {
		return cart, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	insert := `
		INSERT INTO carts (user_id, status)
		VALUES ($1, 'active')
		ON CONFLICT (user_id) WHERE status = 'active' DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, status, created_at`

	err = r.db.QueryRowContext(ctx, insert, userID).Scan(
		&cart.ID, &cart.UserID, &cart.Status, &cart.CreatedAt)
	return cart, err
}

// UpsertItem adds a product to a cart, incrementing the quantity when the
// line already exists.
func (r *CartRepository) UpsertItem(ctx context.Context, cartID, productID int64, quantity int) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`

	_, err := r.db.ExecContext(ctx, query, cartID, productID, quantity)
	return err
}

func (r *CartRepository) SetItemQuantity(ctx context.Context, cartID, productID int64, quantity int) error {
	query := `UPDATE cart_items SET quantity = $1 WHERE cart_id = $2 AND product_id = $3`
	_, err := r.db.ExecContext(ctx, query, quantity, cartID, productID)
	return err
}

func (r *CartRepository) RemoveItem(ctx context.Context, cartID, productID int64) error {
	query := `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`
	_, err := r.db.ExecContext(ctx, query, cartID, productID)
	return err
}

// Lines returns the cart items joined with their product name and current
// price. Promotion resolution happens in the service, not here.
func (r *CartRepository) Lines(ctx context.Context, cartID int64) ([]models.CartLine, error) {
	query := `
		SELECT ci.product_id, p.name, ci.quantity, p.price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.CartLine
	for rows.Next() {
		var l models.CartLine
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}

	return lines, rows.Err()
}
