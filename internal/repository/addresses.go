package repository

import (
	"context"
	"database/sql"

	"mercadito/internal/database"
	"mercadito/internal/models"
)

type AddressRepository struct {
	db *database.DB
}

func NewAddressRepository(db *database.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

func (r *AddressRepository) Create(ctx context.Context, a *models.Address) error {
	query := `
		INSERT INTO addresses (user_id, line, detail, city, region, postal_code, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		a.UserID, a.Line, a.Detail, a.City, a.Region, a.PostalCode, a.Country,
	).Scan(&a.ID)
}

// GetForUser scopes the lookup to the owner so one user cannot ship to
// another user's address by id guessing.
func (r *AddressRepository) GetForUser(ctx context.Context, id, userID int64) (*models.Address, error) {
	a := &models.Address{}
	query := `
		SELECT id, user_id, line, detail, city, region, postal_code, country
		FROM addresses
		WHERE id = $1 AND user_id = $2`

	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&a.ID, &a.UserID, &a.Line, &a.Detail, &a.City, &a.Region, &a.PostalCode, &a.Country,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return a, err
}

func (r *AddressRepository) ListForUser(ctx context.Context, userID int64) ([]models.Address, error) {
	query := `
		SELECT id, user_id, line, detail, city, region, postal_code, country
		FROM addresses
		WHERE user_id = $1
		ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []models.Address
	for rows.Next() {
		var a models.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Line, &a.Detail, &a.City, &a.Region, &a.PostalCode, &a.Country); err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}

	return addresses, rows.Err()
}

func (r *AddressRepository) Delete(ctx context.Context, id, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}
