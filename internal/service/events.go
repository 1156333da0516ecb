package service

import (
	"context"
	"fmt"
	"time"

	apperrors "mercadito/internal/errors"
	"mercadito/internal/models"
	"mercadito/internal/repository"
)

type EventService struct {
	events *repository.EventRepository
}

func NewEventService(events *repository.EventRepository) *EventService {
	return &EventService{events: events}
}

func (s *EventService) List(ctx context.Context, categoryID *int64) ([]models.EventListItem, error) {
	events, err := s.events.List(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	items := make([]models.EventListItem, len(events))
	for i, e := range events {
		items[i] = models.EventListItem{
			ID:       e.ID,
			Title:    e.Title,
			Location: e.Location,
			Cost:     e.Cost,
			ImageURL: e.ImageURL,
		}
	}

	return items, nil
}

// Detail returns the event with its upcoming dates and per-slot remaining
// capacity. Past dates are not offered.
func (s *EventService) Detail(ctx context.Context, id int64) (*models.EventDetailResponse, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, apperrors.ErrNotFound
	}

	today := time.Now().Truncate(24 * time.Hour)
	dates, err := s.events.Dates(ctx, id, &today)
	if err != nil {
		return nil, fmt.Errorf("failed to get event dates: %w", err)
	}

	views := make([]models.EventDateView, len(dates))
	for i, d := range dates {
		slots, err := s.events.SlotsWithRemaining(ctx, d.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get time slots: %w", err)
		}

		views[i] = models.EventDateView{
			ID:    d.ID,
			Date:  d.Date,
			Slots: slots,
		}
	}

	return &models.EventDetailResponse{
		Event: *event,
		Dates: views,
	}, nil
}
