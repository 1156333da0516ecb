package repository

import (
	"context"
	"database/sql"
	"time"

	"mercadito/internal/database"
	"mercadito/internal/models"
)

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	query := `
		INSERT INTO events (title, description, category_id, location, address, cost, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		e.Title, e.Description, e.CategoryID, e.Location, e.Address, e.Cost, e.ImageURL,
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	e := &models.Event{}
	query := `
		SELECT id, title, description, category_id, location, address, cost, image_url, created_at
		FROM events
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Title, &e.Description, &e.CategoryID, &e.Location, &e.Address, &e.Cost, &e.ImageURL, &e.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return e, err
}

func (r *EventRepository) List(ctx context.Context, categoryID *int64) ([]models.Event, error) {
	query := `
		SELECT id, title, description, category_id, location, address, cost, image_url, created_at
		FROM events
		WHERE ($1::BIGINT IS NULL OR category_id = $1)
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.CategoryID, &e.Location, &e.Address, &e.Cost, &e.ImageURL, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

func (r *EventRepository) Update(ctx context.Context, e *models.Event) (bool, error) {
	query := `
		UPDATE events
		SET title = $1, description = $2, category_id = $3, location = $4,
		    address = $5, cost = $6, image_url = $7
		WHERE id = $8`

	res, err := r.db.ExecContext(ctx, query,
		e.Title, e.Description, e.CategoryID, e.Location, e.Address, e.Cost, e.ImageURL, e.ID)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}

// HasReservations reports whether any reservation exists anywhere under the
// event. Events with booking history are never hard-deleted.
func (r *EventRepository) HasReservations(ctx context.Context, eventID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM reservations res
			JOIN time_slots ts ON ts.id = res.time_slot_id
			JOIN event_dates ed ON ed.id = ts.event_date_id
			WHERE ed.event_id = $1
		)`

	err := r.db.QueryRowContext(ctx, query, eventID).Scan(&exists)
	return exists, err
}

func (r *EventRepository) AddDate(ctx context.Context, d *models.EventDate) error {
	query := `
		INSERT INTO event_dates (event_id, date)
		VALUES ($1, $2)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query, d.EventID, d.Date).Scan(&d.ID)
}

func (r *EventRepository) Dates(ctx context.Context, eventID int64, from *time.Time) ([]models.EventDate, error) {
	query := `
		SELECT id, event_id, date
		FROM event_dates
		WHERE event_id = $1 AND ($2::DATE IS NULL OR date >= $2)
		ORDER BY date`

	rows, err := r.db.QueryContext(ctx, query, eventID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []models.EventDate
	for rows.Next() {
		var d models.EventDate
		if err := rows.Scan(&d.ID, &d.EventID, &d.Date); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}

	return dates, rows.Err()
}

func (r *EventRepository) DeleteDate(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM event_dates WHERE id = $1`, id)
	return err
}

func (r *EventRepository) DateHasReservations(ctx context.Context, dateID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM reservations res
			JOIN time_slots ts ON ts.id = res.time_slot_id
			WHERE ts.event_date_id = $1
		)`

	err := r.db.QueryRowContext(ctx, query, dateID).Scan(&exists)
	return exists, err
}

func (r *EventRepository) AddSlot(ctx context.Context, s *models.TimeSlot) error {
	query := `
		INSERT INTO time_slots (event_date_id, starts_at, duration_minutes, capacity)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query, s.EventDateID, s.StartsAt, s.DurationMinutes, s.Capacity).Scan(&s.ID)
}

// SlotsWithRemaining lists a date's slots with remaining capacity. Seats are
// held from the moment a reservation is created, not just once approved, so
// the count matches what the reserve transaction will enforce.
func (r *EventRepository) SlotsWithRemaining(ctx context.Context, dateID int64) ([]models.TimeSlotView, error) {
	query := `
		SELECT ts.id, ts.starts_at, ts.duration_minutes, ts.capacity,
		       ts.capacity - COALESCE(SUM(res.quantity) FILTER (WHERE res.status IN ('pending', 'in_process', 'approved')), 0) AS remaining
		FROM time_slots ts
		LEFT JOIN reservations res ON res.time_slot_id = ts.id
		WHERE ts.event_date_id = $1
		GROUP BY ts.id
		ORDER BY ts.starts_at`

	rows, err := r.db.QueryContext(ctx, query, dateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []models.TimeSlotView
	for rows.Next() {
		var v models.TimeSlotView
		if err := rows.Scan(&v.ID, &v.StartsAt, &v.DurationMinutes, &v.Capacity, &v.Remaining); err != nil {
			return nil, err
		}
		slots = append(slots, v)
	}

	return slots, rows.Err()
}

func (r *EventRepository) UpdateSlot(ctx context.Context, s *models.TimeSlot) (bool, error) {
	query := `
		UPDATE time_slots
		SET starts_at = $1, duration_minutes = $2, capacity = $3
		WHERE id = $4`

	res, err := r.db.ExecContext(ctx, query, s.StartsAt, s.DurationMinutes, s.Capacity, s.ID)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (r *EventRepository) DeleteSlot(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM time_slots WHERE id = $1`, id)
	return err
}

func (r *EventRepository) SlotHasReservations(ctx context.Context, slotID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM reservations WHERE time_slot_id = $1)`, slotID).Scan(&exists)
	return exists, err
}
