package repository

import (
	"context"
	"database/sql"

	"mercadito/internal/database"
	"mercadito/internal/models"
)

type EbookRepository struct {
	db *database.DB
}

func NewEbookRepository(db *database.DB) *EbookRepository {
	return &EbookRepository{db: db}
}

func (r *EbookRepository) Create(ctx context.Context, e *models.Ebook) error {
	query := `
		INSERT INTO ebooks (title, description, price, file_url, active, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, published_at`

	return r.db.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Price, e.FileURL, e.Active, e.CategoryID,
	).Scan(&e.ID, &e.PublishedAt)
}

func (r *EbookRepository) GetByID(ctx context.Context, id int64) (*models.Ebook, error) {
	e := &models.Ebook{}
	query := `
		SELECT id, title, description, price, file_url, active, category_id, published_at
		FROM ebooks
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Title, &e.Description, &e.Price, &e.FileURL, &e.Active, &e.CategoryID, &e.PublishedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return e, err
}

func (r *EbookRepository) List(ctx context.Context, categoryID *int64, includeInactive bool) ([]models.Ebook, error) {
	query := `
		SELECT id, title, description, price, file_url, active, category_id, published_at
		FROM ebooks
		WHERE ($1::BIGINT IS NULL OR category_id = $1)
		  AND (active OR $2)
		ORDER BY published_at DESC`

	rows, err := r.db.QueryContext(ctx, query, categoryID, includeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ebooks []models.Ebook
	for rows.Next() {
		var e models.Ebook
		err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Price, &e.FileURL, &e.Active, &e.CategoryID, &e.PublishedAt)
		if err != nil {
			return nil, err
		}
		ebooks = append(ebooks, e)
	}

	return ebooks, rows.Err()
}

func (r *EbookRepository) Update(ctx context.Context, e *models.Ebook) (bool, error) {
	query := `
		UPDATE ebooks
		SET title = $1, description = $2, price = $3, file_url = $4, active = $5, category_id = $6
		WHERE id = $7`

	res, err := r.db.ExecContext(ctx, query,
		e.Title, e.Description, e.Price, e.FileURL, e.Active, e.CategoryID, e.ID)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (r *EbookRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ebooks WHERE id = $1`, id)
	return err
}

func (r *EbookRepository) HasPurchases(ctx context.Context, ebookID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM ebook_purchases WHERE ebook_id = $1)`, ebookID).Scan(&exists)
	return exists, err
}

// HasPaidPurchase reports whether the user already owns the ebook; a failed
// or cancelled attempt does not block buying again.
func (r *EbookRepository) HasPaidPurchase(ctx context.Context, userID, ebookID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM ebook_purchases
			WHERE user_id = $1 AND ebook_id = $2 AND status = 'paid'
		)`

	err := r.db.QueryRowContext(ctx, query, userID, ebookID).Scan(&exists)
	return exists, err
}

func (r *EbookRepository) CreatePurchase(ctx context.Context, p *models.EbookPurchase) error {
	query := `
		INSERT INTO ebook_purchases (user_id, ebook_id, price_paid, currency, payment_method, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		p.UserID, p.EbookID, p.PricePaid, p.Currency, p.PaymentMethod, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// SetTransactionID attaches the provider's order id as soon as it is known,
// before any redirect, so the webhook can find the purchase by transaction.
func (r *EbookRepository) SetTransactionID(ctx context.Context, purchaseID int64, transactionID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE ebook_purchases SET transaction_id = $1, updated_at = NOW() WHERE id = $2`,
		transactionID, purchaseID)
	return err
}

const purchaseColumns = `
	p.id, p.user_id, p.ebook_id, p.price_paid, p.currency, p.payment_method,
	p.status, p.transaction_id, p.download_code, p.created_at, p.updated_at,
	e.title, u.email`

func (r *EbookRepository) scanPurchase(row *sql.Row) (*models.EbookPurchase, error) {
	p := &models.EbookPurchase{}
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.EbookID,
		&p.PricePaid,
		&p.Currency,
		&p.PaymentMethod,
		&p.Status,
		&p.TransactionID,
		&p.DownloadCode,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.EbookTitle,
		&p.UserEmail,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return p, err
}

func (r *EbookRepository) GetPurchaseByID(ctx context.Context, id int64) (*models.EbookPurchase, error) {
	query := `
		SELECT ` + purchaseColumns + `
		FROM ebook_purchases p
		JOIN ebooks e ON e.id = p.ebook_id
		JOIN users u ON u.user_id = p.user_id
		WHERE p.id = $1`

	return r.scanPurchase(r.db.QueryRowContext(ctx, query, id))
}

func (r *EbookRepository) GetPurchaseByTransactionID(ctx context.Context, transactionID string) (*models.EbookPurchase, error) {
	query := `
		SELECT ` + purchaseColumns + `
		FROM ebook_purchases p
		JOIN ebooks e ON e.id = p.ebook_id
		JOIN users u ON u.user_id = p.user_id
		WHERE p.transaction_id = $1`

	return r.scanPurchase(r.db.QueryRowContext(ctx, query, transactionID))
}

// GetPurchaseByCode resolves a download code to a paid purchase and the file
// behind it. Unpaid purchases never match: the code column is only set on
// the paid transition.
func (r *EbookRepository) GetPurchaseByCode(ctx context.Context, code string) (*models.EbookPurchase, string, error) {
	p := &models.EbookPurchase{}
	var fileURL string
	query := `
		SELECT p.id, p.user_id, p.ebook_id, p.status, p.download_code, e.title, e.file_url
		FROM ebook_purchases p
		JOIN ebooks e ON e.id = p.ebook_id
		WHERE p.download_code = $1 AND p.status = 'paid'`

	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&p.ID, &p.UserID, &p.EbookID, &p.Status, &p.DownloadCode, &p.EbookTitle, &fileURL,
	)

	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}

	return p, fileURL, nil
}

func (r *EbookRepository) ListPurchasesForUser(ctx context.Context, userID int64) ([]models.EbookPurchase, error) {
	query := `
		SELECT p.id, p.user_id, p.ebook_id, p.price_paid, p.currency, p.payment_method,
		       p.status, p.transaction_id, p.download_code, p.created_at, p.updated_at, e.title
		FROM ebook_purchases p
		JOIN ebooks e ON e.id = p.ebook_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var purchases []models.EbookPurchase
	for rows.Next() {
		var p models.EbookPurchase
		err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.EbookID,
			&p.PricePaid,
			&p.Currency,
			&p.PaymentMethod,
			&p.Status,
			&p.TransactionID,
			&p.DownloadCode,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.EbookTitle,
		)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}

	return purchases, rows.Err()
}

// MarkPaidIfPending issues the download code together with the paid
// transition so a code can never exist on an unpaid purchase.
func (r *EbookRepository) MarkPaidIfPending(ctx context.Context, id int64, transactionID, currency, downloadCode string) (bool, error) {
	query := `
		UPDATE ebook_purchases
		SET status = 'paid', transaction_id = $1, currency = $2, download_code = $3, updated_at = NOW()
		WHERE id = $4 AND status = 'pending'`

	res, err := r.db.ExecContext(ctx, query, transactionID, currency, downloadCode, id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (r *EbookRepository) MarkFailedIfPending(ctx context.Context, id int64, transactionID string) (bool, error) {
	query := `
		UPDATE ebook_purchases
		SET status = 'failed', transaction_id = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'pending'`

	res, err := r.db.ExecContext(ctx, query, transactionID, id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (r *EbookRepository) MarkCancelledByTransaction(ctx context.Context, transactionID string) (bool, error) {
	query := `
		UPDATE ebook_purchases
		SET status = 'cancelled', updated_at = NOW()
		WHERE transaction_id = $1 AND status = 'pending'`

	res, err := r.db.ExecContext(ctx, query, transactionID)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	return affected > 0, err
}
