package repository

import (
	"context"
	"database/sql"

	"mercadito/internal/database"
	"mercadito/internal/models"
)

type CouponRepository struct {
	db *database.DB
}

func NewCouponRepository(db *database.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

func (r *CouponRepository) Create(ctx context.Context, c *models.Coupon) error {
	query := `
		INSERT INTO coupons (code, description, discount_type, value, starts_at, ends_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		c.Code,
		c.Description,
		c.DiscountType,
		c.Value,
		c.StartsAt,
		c.EndsAt,
		c.Active,
	).Scan(&c.ID)
}

func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	c := &models.Coupon{}
	query := `
		SELECT id, code, description, discount_type, value, starts_at, ends_at, active
		FROM coupons
		WHERE code = $1`

	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&c.ID,
		&c.Code,
		&c.Description,
		&c.DiscountType,
		&c.Value,
		&c.StartsAt,
		&c.EndsAt,
		&c.Active,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return c, err
}

func (r *CouponRepository) HasUse(ctx context.Context, couponID, userID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM coupon_uses WHERE coupon_id = $1 AND user_id = $2)`
	err := r.db.QueryRowContext(ctx, query, couponID, userID).Scan(&exists)
	return exists, err
}

func (r *CouponRepository) List(ctx context.Context) ([]models.Coupon, error) {
	query := `
		SELECT id, code, description, discount_type, value, starts_at, ends_at, active
		FROM coupons
		ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []models.Coupon
	for rows.Next() {
		var c models.Coupon
		err := rows.Scan(
			&c.ID,
			&c.Code,
			&c.Description,
			&c.DiscountType,
			&c.Value,
			&c.StartsAt,
			&c.EndsAt,
			&c.Active,
		)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}

	return coupons, rows.Err()
}

func (r *CouponRepository) Update(ctx context.Context, c *models.Coupon) error {
	query := `
		UPDATE coupons
		SET code = $1, description = $2, discount_type = $3, value = $4,
		    starts_at = $5, ends_at = $6, active = $7
		WHERE id = $8`

	_, err := r.db.ExecContext(ctx, query,
		c.Code,
		c.Description,
		c.DiscountType,
		c.Value,
		c.StartsAt,
		c.EndsAt,
		c.Active,
		c.ID,
	)
	return err
}

func (r *CouponRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	return err
}
