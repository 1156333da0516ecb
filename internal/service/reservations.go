package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "mercadito/internal/errors"
	"mercadito/internal/external"
	"mercadito/internal/metrics"
	"mercadito/internal/models"
)

type reservationStore interface {
	ReserveSlot(ctx context.Context, res *models.Reservation) error
	GetByID(ctx context.Context, id int64) (*models.Reservation, error)
	ListForUser(ctx context.Context, userID int64) ([]models.Reservation, error)
}

// ReservationService books seats on event time slots and opens the payment
// for them. The capacity check lives in the store, inside a locking
// transaction; this layer only shapes the request and response.
type ReservationService struct {
	reservations reservationStore
	mp           preferenceCreator
	baseURL      string
}

func NewReservationService(reservations reservationStore, mp preferenceCreator, baseURL string) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		mp:           mp,
		baseURL:      baseURL,
	}
}

func (s *ReservationService) Reserve(ctx context.Context, userID *int64, req *models.ReserveRequest) (*models.ReserveResponse, error) {
	reservation := &models.Reservation{
		UserID:       userID,
		TimeSlotID:   req.TimeSlotID,
		Quantity:     req.Quantity,
		Status:       models.ReservationPending,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	}

	if err := s.reservations.ReserveSlot(ctx, reservation); err != nil {
		if errors.Is(err, apperrors.ErrCapacityExceeded) {
			metrics.ReservationsRejected.Inc()
		}
		return nil, err
	}

	metrics.ReservationsCreated.Inc()

	// Reload to pick up the joined event title and expected total
	created, err := s.reservations.GetByID(ctx, reservation.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload reservation: %w", err)
	}

	pref, err := s.mp.CreatePreference(ctx, external.PreferenceRequest{
		Items: []external.PreferenceItem{{
			Title:     fmt.Sprintf("%s x%d", created.EventTitle, created.Quantity),
			Quantity:  1,
			UnitPrice: created.ExpectedTotal,
		}},
		ExternalReference: models.ReservationReference(created.ID).String(),
		BackURLs: external.PreferenceBackURLs{
			Success: s.baseURL + "/pago-exitoso",
			Pending: s.baseURL + "/pago-pendiente",
			Failure: s.baseURL + "/pago-error",
		},
		AutoReturn:      "approved",
		NotificationURL: s.baseURL + "/webhooks/mercadopago",
		Payer: &external.PreferencePayer{
			Name:  created.ContactName,
			Email: created.ContactEmail,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment preference: %w", err)
	}

	paymentURL := pref.InitPoint
	if paymentURL == "" {
		paymentURL = pref.SandboxInitPoint
	}

	return &models.ReserveResponse{
		ReservationID: created.ID,
		Total:         created.ExpectedTotal,
		PaymentURL:    paymentURL,
	}, nil
}

func (s *ReservationService) Get(ctx context.Context, userID, id int64) (*models.Reservation, error) {
	reservation, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if reservation == nil {
		return nil, apperrors.ErrNotFound
	}
	if reservation.UserID == nil || *reservation.UserID != userID {
		return nil, apperrors.ErrForbidden
	}

	return reservation, nil
}

func (s *ReservationService) ListForUser(ctx context.Context, userID int64) ([]models.Reservation, error) {
	reservations, err := s.reservations.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}
