package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"mercadito/internal/database"
	apperrors "mercadito/internal/errors"
	"mercadito/internal/models"
)

type ReservationRepository struct {
	db *database.DB
}

func NewReservationRepository(db *database.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// ReserveSlot creates a pending reservation after verifying capacity inside
// a transaction that locks the slot row. Two concurrent requests for the
// last seats serialize on the lock, so the second one sees the first one's
// insert and fails the capacity check instead of overbooking.
func (r *ReservationRepository) ReserveSlot(ctx context.Context, res *models.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var capacity int
	err = tx.QueryRowContext(ctx,
		`SELECT capacity FROM time_slots WHERE id = $1 FOR UPDATE`, res.TimeSlotID,
	).Scan(&capacity)
	if err == sql.ErrNoRows {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock time slot: %w", err)
	}

	var taken int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0)
		 FROM reservations
		 WHERE time_slot_id = $1 AND status IN ('pending', 'in_process', 'approved')`,
		res.TimeSlotID,
	).Scan(&taken)
	if err != nil {
		return fmt.Errorf("failed to count reserved seats: %w", err)
	}

	if taken+res.Quantity > capacity {
		return fmt.Errorf("slot %d: %d requested, %d of %d taken: %w",
			res.TimeSlotID, res.Quantity, taken, capacity, apperrors.ErrCapacityExceeded)
	}

	query := `
		INSERT INTO reservations (user_id, time_slot_id, quantity, status,
		                          contact_name, contact_email, contact_phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(ctx, query,
		res.UserID, res.TimeSlotID, res.Quantity, res.Status,
		res.ContactName, res.ContactEmail, res.ContactPhone,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	return tx.Commit()
}

// GetByID loads the reservation with the event title and the expected total
// (event cost times quantity) joined in, so reconciliation can verify the
// paid amount without extra queries.
func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	res := &models.Reservation{}
	query := `
		SELECT res.id, res.user_id, res.time_slot_id, res.quantity, res.status,
		       res.transaction_id, res.amount_paid, res.currency,
		       res.contact_name, res.contact_email, res.contact_phone,
		       res.created_at, res.updated_at,
		       e.title, e.cost * res.quantity AS expected_total
		FROM reservations res
		JOIN time_slots ts ON ts.id = res.time_slot_id
		JOIN event_dates ed ON ed.id = ts.event_date_id
		JOIN events e ON e.id = ed.event_id
		WHERE res.id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&res.ID,
		&res.UserID,
		&res.TimeSlotID,
		&res.Quantity,
		&res.Status,
		&res.TransactionID,
		&res.AmountPaid,
		&res.Currency,
		&res.ContactName,
		&res.ContactEmail,
		&res.ContactPhone,
		&res.CreatedAt,
		&res.UpdatedAt,
		&res.EventTitle,
		&res.ExpectedTotal,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return res, err
}

func (r *ReservationRepository) ListForUser(ctx context.Context, userID int64) ([]models.Reservation, error) {
	query := `
		SELECT res.id, res.user_id, res.time_slot_id, res.quantity, res.status,
		       res.transaction_id, res.amount_paid, res.currency,
		       res.contact_name, res.contact_email, res.contact_phone,
		       res.created_at, res.updated_at, e.title
		FROM reservations res
		JOIN time_slots ts ON ts.id = res.time_slot_id
		JOIN event_dates ed ON ed.id = ts.event_date_id
		JOIN events e ON e.id = ed.event_id
		WHERE res.user_id = $1
		ORDER BY res.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		var res models.Reservation
		err := rows.Scan(
			&res.ID,
			&res.UserID,
			&res.TimeSlotID,
			&res.Quantity,
			&res.Status,
			&res.TransactionID,
			&res.AmountPaid,
			&res.Currency,
			&res.ContactName,
			&res.ContactEmail,
			&res.ContactPhone,
			&res.CreatedAt,
			&res.UpdatedAt,
			&res.EventTitle,
		)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}

	return reservations, rows.Err()
}

// ApproveIfPending transitions pending or in_process to approved in one
// statement; the affected-row count is the idempotency signal for duplicate
// webhook deliveries.
func (r *ReservationRepository) ApproveIfPending(ctx context.Context, id int64, transactionID string, amount decimal.Decimal, currency string) (bool, error) {
	query := `
		UPDATE reservations
		SET status = 'approved', transaction_id = $1, amount_paid = $2, currency = $3, updated_at = NOW()
		WHERE id = $4 AND status IN ('pending', 'in_process')`

	res, err := r.db.ExecContext(ctx, query, transactionID, amount, currency, id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (r *ReservationRepository) RejectIfPending(ctx context.Context, id int64, transactionID string) (bool, error) {
	query := `
		UPDATE reservations
		SET status = 'rejected', transaction_id = $1, updated_at = NOW()
		WHERE id = $2 AND status IN ('pending', 'in_process')`

	res, err := r.db.ExecContext(ctx, query, transactionID, id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	return affected > 0, err
}

// ExpireStalePending releases seats held by reservations that never saw a
// payment notification. Reservations already tied to a transaction are left
// for the webhook to settle.
func (r *ReservationRepository) ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE reservations
		SET status = 'rejected', updated_at = NOW()
		WHERE status = 'pending' AND transaction_id IS NULL AND created_at < $1`

	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (r *ReservationRepository) MarkInProcessIfPending(ctx context.Context, id int64, transactionID string) (bool, error) {
	query := `
		UPDATE reservations
		SET status = 'in_process', transaction_id = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'pending'`

	res, err := r.db.ExecContext(ctx, query, transactionID, id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	return affected > 0, err
}
