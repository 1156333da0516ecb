package repository

import (
	"context"
	"database/sql"

	"mercadito/internal/database"
	"mercadito/internal/models"
)

type CategoryRepository struct {
	db *database.DB
}

func NewCategoryRepository(db *database.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (kind, name, parent_id)
		VALUES ($1, $2, $3)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query, c.Kind, c.Name, c.ParentID).Scan(&c.ID)
}

func (r *CategoryRepository) Get(ctx context.Context, id int64) (*models.Category, error) {
	c := &models.Category{}
	query := `SELECT id, kind, name, parent_id FROM categories WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Kind, &c.Name, &c.ParentID)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return c, err
}

func (r *CategoryRepository) ListByKind(ctx context.Context, kind string) ([]models.Category, error) {
	var categories []models.Category
	query := `SELECT id, kind, name, parent_id FROM categories WHERE kind = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Kind, &c.Name, &c.ParentID); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	query := `UPDATE categories SET name = $1, parent_id = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, c.Name, c.ParentID, c.ID)
	return err
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return err
}

func (r *CategoryRepository) HasChildren(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM categories WHERE parent_id = $1)`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}

// DependentCount counts leaf entities referencing the category: products,
// events or ebooks depending on which tree it belongs to.
func (r *CategoryRepository) DependentCount(ctx context.Context, kind string, id int64) (int64, error) {
	var query string
	switch kind {
	case models.CategoryProduct:
		query = `SELECT COUNT(*) FROM products WHERE category_id = $1`
	case models.CategoryEvent:
		query = `SELECT COUNT(*) FROM events WHERE category_id = $1`
	case models.CategoryEbook:
		query = `SELECT COUNT(*) FROM ebooks WHERE category_id = $1`
	default:
		return 0, nil
	}

	var count int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(&count)
	return count, err
}
