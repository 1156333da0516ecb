package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mercadito/internal/errors"
	"mercadito/internal/models"
)

type fakeReserveStore struct {
	capacityLeft int
	created      *models.Reservation
	eventTitle   string
	cost         decimal.Decimal
}

func (f *fakeReserveStore) ReserveSlot(ctx context.Context, res *models.Reservation) error {
	if res.Quantity > f.capacityLeft {
		return fmt.Errorf("slot %d: %w", res.TimeSlotID, apperrors.ErrCapacityExceeded)
	}
	res.ID = 17
	f.created = res
	return nil
}

func (f *fakeReserveStore) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	if f.created == nil || f.created.ID != id {
		return nil, nil
	}
	out := *f.created
	out.EventTitle = f.eventTitle
	out.ExpectedTotal = f.cost.Mul(decimal.NewFromInt(int64(out.Quantity)))
	return &out, nil
}

func (f *fakeReserveStore) ListForUser(ctx context.Context, userID int64) ([]models.Reservation, error) {
	if f.created == nil || f.created.UserID == nil || *f.created.UserID != userID {
		return nil, nil
	}
	return []models.Reservation{*f.created}, nil
}

func newReservationFixture() (*ReservationService, *fakeReserveStore, *fakePreferenceCreator) {
	store := &fakeReserveStore{
		capacityLeft: 4,
		eventTitle:   "Cata de vinos",
		cost:         decimal.RequireFromString("800.00"),
	}
	mp := &fakePreferenceCreator{}
	svc := NewReservationService(store, mp, "https://mercadito.test")
	return svc, store, mp
}

func TestReserveHappyPath(t *testing.T) {
	svc, store, mp := newReservationFixture()

	userID := int64(10)
	resp, err := svc.Reserve(context.Background(), &userID, &models.ReserveRequest{
		TimeSlotID:   3,
		Quantity:     2,
		ContactName:  "Ana",
		ContactEmail: "ana@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(17), resp.ReservationID)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("1600.00")), "total %s", resp.Total)
	assert.Equal(t, "https://mercadopago.test/checkout/pref-1", resp.PaymentURL)

	assert.Equal(t, models.ReservationPending, store.created.Status)

	require.NotNil(t, mp.req)
	assert.Equal(t, "RES17", mp.req.ExternalReference)
	require.NotNil(t, mp.req.Payer)
	assert.Equal(t, "ana@example.com", mp.req.Payer.Email)
}

func TestReserveGuestWithoutAccount(t *testing.T) {
	svc, store, _ := newReservationFixture()

	_, err := svc.Reserve(context.Background(), nil, &models.ReserveRequest{
		TimeSlotID:   3,
		Quantity:     1,
		ContactName:  "Juan",
		ContactEmail: "juan@example.com",
	})
	require.NoError(t, err)
	assert.Nil(t, store.created.UserID)
}

func TestReserveCapacityExceeded(t *testing.T) {
	svc, _, mp := newReservationFixture()

	userID := int64(10)
	_, err := svc.Reserve(context.Background(), &userID, &models.ReserveRequest{
		TimeSlotID:   3,
		Quantity:     5,
		ContactName:  "Ana",
		ContactEmail: "ana@example.com",
	})
	assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)
	assert.Nil(t, mp.req, "no payment preference for a failed reservation")
}

func TestReservationGetOwnership(t *testing.T) {
	svc, _, _ := newReservationFixture()

	owner := int64(10)
	resp, err := svc.Reserve(context.Background(), &owner, &models.ReserveRequest{
		TimeSlotID:   3,
		Quantity:     1,
		ContactName:  "Ana",
		ContactEmail: "ana@example.com",
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), owner, resp.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, resp.ReservationID, got.ID)

	_, err = svc.Get(context.Background(), 11, resp.ReservationID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.Get(context.Background(), owner, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
