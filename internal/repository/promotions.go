package repository

import (
	"context"
	"time"

	"mercadito/internal/database"
	"mercadito/internal/models"
)

type PromotionRepository struct {
	db *database.DB
}

func NewPromotionRepository(db *database.DB) *PromotionRepository {
	return &PromotionRepository{db: db}
}

func (r *PromotionRepository) Create(ctx context.Context, p *models.Promotion, productIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO promotions (title, description, discount_type, value, starts_at, ends_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, query,
		p.Title,
		p.Description,
		p.DiscountType,
		p.Value,
		p.StartsAt,
		p.EndsAt,
		p.Active,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return err
	}

	for _, productID := range productIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO promotion_products (promotion_id, product_id) VALUES ($1, $2)`,
			p.ID, productID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ActiveForProduct returns the promotions linked to a product that are
// active with now inside their window, newest first. The first row is the
// winner under the documented tie-break.
func (r *PromotionRepository) ActiveForProduct(ctx context.Context, productID int64, now time.Time) ([]models.Promotion, error) {
	query := `
		SELECT p.id, p.title, p.description, p.discount_type, p.value,
		       p.starts_at, p.ends_at, p.active, p.created_at
		FROM promotions p
		JOIN promotion_products pp ON pp.promotion_id = p.id
		WHERE pp.product_id = $1
		  AND p.active = TRUE
		  AND p.starts_at <= $2
		  AND p.ends_at >= $2
		ORDER BY p.created_at DESC, p.id DESC`

	rows, err := r.db.QueryContext(ctx, query, productID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promotions []models.Promotion
	for rows.Next() {
		var p models.Promotion
		err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Description,
			&p.DiscountType,
			&p.Value,
			&p.StartsAt,
			&p.EndsAt,
			&p.Active,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		promotions = append(promotions, p)
	}

	return promotions, rows.Err()
}

func (r *PromotionRepository) List(ctx context.Context) ([]models.Promotion, error) {
	query := `
		SELECT id, title, description, discount_type, value, starts_at, ends_at, active, created_at
		FROM promotions
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promotions []models.Promotion
	for rows.Next() {
		var p models.Promotion
		err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Description,
			&p.DiscountType,
			&p.Value,
			&p.StartsAt,
			&p.EndsAt,
			&p.Active,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		promotions = append(promotions, p)
	}

	return promotions, rows.Err()
}

func (r *PromotionRepository) Update(ctx context.Context, p *models.Promotion, productIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE promotions
		SET title = $1, description = $2, discount_type = $3, value = $4,
		    starts_at = $5, ends_at = $6, active = $7
		WHERE id = $8`

	_, err = tx.ExecContext(ctx, query,
		p.Title,
		p.Description,
		p.DiscountType,
		p.Value,
		p.StartsAt,
		p.EndsAt,
		p.Active,
		p.ID,
	)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM promotion_products WHERE promotion_id = $1`, p.ID); err != nil {
		return err
	}
	for _, productID := range productIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO promotion_products (promotion_id, product_id) VALUES ($1, $2)`,
			p.ID, productID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PromotionRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	return err
}
