package repository

import (
	"context"
	"database/sql"

	"mercadito/internal/database"
	apperrors "mercadito/internal/errors"
	"mercadito/internal/models"
)

type OrderRepository struct {
	db *database.DB
}

func NewOrderRepository(db *database.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateWithItems freezes the checkout snapshot in one transaction: the
// order row, its line items with price-at-purchase, the coupon-usage record
// when a coupon applied, and the cart conversion.
func (r *OrderRepository) CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem, couponUse *models.CouponUse, cartID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (user_id, address_id, shipping_rate_id, subtotal, discount,
		                    shipping_cost, total, coupon_code, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(ctx, query,
		order.UserID,
		order.AddressID,
		order.ShippingRateID,
		order.Subtotal,
		order.Discount,
		order.ShippingCost,
		order.Total,
		order.CouponCode,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return err
	}

	for i := range items {
		items[i].OrderID = order.ID
		err = tx.QueryRowContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, unit_price)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			items[i].OrderID, items[i].ProductID, items[i].Quantity, items[i].UnitPrice,
		).Scan(&items[i].ID)
		if err != nil {
			return err
		}
	}

	if couponUse != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO coupon_uses (coupon_id, user_id) VALUES ($1, $2)`,
			couponUse.CouponID, couponUse.UserID)
		if err != nil {
			// Two concurrent checkouts can both pass the usage pre-check;
			// the unique index settles the race.
			if isUniqueViolation(err) {
				return apperrors.ErrCouponAlreadyUsed
			}
			return err
		}
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE carts SET status = 'converted' WHERE id = $1 AND status = 'active'`, cartID); err != nil {
		return err
	}

	order.Items = items
	return tx.Commit()
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	order := &models.Order{}
	query := `
		SELECT o.id, o.user_id, o.address_id, o.shipping_rate_id, o.subtotal, o.discount,
		       o.shipping_cost, o.total, o.coupon_code, o.status, o.transaction_id,
		       o.created_at, o.updated_at, u.email, u.name
		FROM orders o
		JOIN users u ON u.user_id = o.user_id
		WHERE o.id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.AddressID,
		&order.ShippingRateID,
		&order.Subtotal,
		&order.Discount,
		&order.ShippingCost,
		&order.Total,
		&order.CouponCode,
		&order.Status,
		&order.TransactionID,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.UserEmail,
		&order.UserName,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return order, err
}

func (r *OrderRepository) Items(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

func (r *OrderRepository) ListForUser(ctx context.Context, userID int64) ([]models.Order, error) {
	query := `
		SELECT id, user_id, address_id, shipping_rate_id, subtotal, discount,
		       shipping_cost, total, coupon_code, status, transaction_id, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.AddressID,
			&o.ShippingRateID,
			&o.Subtotal,
			&o.Discount,
			&o.ShippingCost,
			&o.Total,
			&o.CouponCode,
			&o.Status,
			&o.TransactionID,
			&o.CreatedAt,
			&o.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

// MarkPaidIfPending is the atomic check-and-set of the reconciliation state
// machine: only a pending order transitions, and the affected-row count
// tells the caller whether this invocation applied the change or raced a
// duplicate confirmation.
func (r *OrderRepository) MarkPaidIfPending(ctx context.Context, id int64, transactionID string) (bool, error) {
	query := `
		UPDATE orders
		SET status = 'paid', transaction_id = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'pending'`

	res, err := r.db.ExecContext(ctx, query, transactionID, id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (r *OrderRepository) MarkCancelledIfPending(ctx context.Context, id int64, transactionID string) (bool, error) {
	query := `
		UPDATE orders
		SET status = 'cancelled', transaction_id = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'pending'`

	res, err := r.db.ExecContext(ctx, query, transactionID, id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (r *OrderRepository) MarkShipped(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE orders
		SET status = 'shipped', updated_at = NOW()
		WHERE id = $1 AND status = 'paid'`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	return affected > 0, err
}
