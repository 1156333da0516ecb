package repository

import (
	"context"
	"database/sql"

	"mercadito/internal/database"
	"mercadito/internal/models"
)

type ShippingRepository struct {
	db *database.DB
}

func NewShippingRepository(db *database.DB) *ShippingRepository {
	return &ShippingRepository{db: db}
}

func (r *ShippingRepository) Create(ctx context.Context, s *models.ShippingRate) error {
	query := `
		INSERT INTO shipping_rates (region, cost, active)
		VALUES ($1, $2, $3)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query, s.Region, s.Cost, s.Active).Scan(&s.ID)
}

// ActiveRateForRegion returns nil when no active rate covers the region;
// the caller decides what a missing rate means for the total.
func (r *ShippingRepository) ActiveRateForRegion(ctx context.Context, region string) (*models.ShippingRate, error) {
	s := &models.ShippingRate{}
	query := `
		SELECT id, region, cost, active
		FROM shipping_rates
		WHERE region = $1 AND active = TRUE`

	err := r.db.QueryRowContext(ctx, query, region).Scan(&s.ID, &s.Region, &s.Cost, &s.Active)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return s, err
}

func (r *ShippingRepository) List(ctx context.Context) ([]models.ShippingRate, error) {
	query := `
		SELECT id, region, cost, active
		FROM shipping_rates
		ORDER BY region`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []models.ShippingRate
	for rows.Next() {
		var s models.ShippingRate
		if err := rows.Scan(&s.ID, &s.Region, &s.Cost, &s.Active); err != nil {
			return nil, err
		}
		rates = append(rates, s)
	}

	return rates, rows.Err()
}

func (r *ShippingRepository) Update(ctx context.Context, s *models.ShippingRate) (bool, error) {
	query := `
		UPDATE shipping_rates
		SET region = $1, cost = $2, active = $3
		WHERE id = $4`

	res, err := r.db.ExecContext(ctx, query, s.Region, s.Cost, s.Active, s.ID)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (r *ShippingRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM shipping_rates WHERE id = $1`, id)
	return err
}
