package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mercadito/internal/errors"
	"mercadito/internal/external"
	"mercadito/internal/models"
)

// Фейковые хранилища для проверки сверки платежей

type fakeOrderStore struct {
	order     *models.Order
	paid      bool
	cancelled bool
	applied   bool
}

func (f *fakeOrderStore) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	if f.order == nil || f.order.ID != id {
		return nil, nil
	}
	return f.order, nil
}

func (f *fakeOrderStore) MarkPaidIfPending(ctx context.Context, id int64, transactionID string) (bool, error) {
	f.paid = true
	return f.applied, nil
}

func (f *fakeOrderStore) MarkCancelledIfPending(ctx context.Context, id int64, transactionID string) (bool, error) {
	f.cancelled = true
	return f.applied, nil
}

type fakeReservationStore struct {
	reservation *models.Reservation
	approved    bool
	rejected    bool
	inProcess   bool
	applied     bool
}

func (f *fakeReservationStore) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	if f.reservation == nil || f.reservation.ID != id {
		return nil, nil
	}
	return f.reservation, nil
}

func (f *fakeReservationStore) ApproveIfPending(ctx context.Context, id int64, transactionID string, amount decimal.Decimal, currency string) (bool, error) {
	f.approved = true
	return f.applied, nil
}

func (f *fakeReservationStore) RejectIfPending(ctx context.Context, id int64, transactionID string) (bool, error) {
	f.rejected = true
	return f.applied, nil
}

func (f *fakeReservationStore) MarkInProcessIfPending(ctx context.Context, id int64, transactionID string) (bool, error) {
	f.inProcess = true
	return f.applied, nil
}

type fakeEbookStore struct {
	purchase     *models.EbookPurchase
	paid         bool
	failed       bool
	cancelled    bool
	applied      bool
	downloadCode string
}

func (f *fakeEbookStore) GetPurchaseByID(ctx context.Context, id int64) (*models.EbookPurchase, error) {
	if f.purchase == nil || f.purchase.ID != id {
		return nil, nil
	}
	return f.purchase, nil
}

func (f *fakeEbookStore) GetPurchaseByTransactionID(ctx context.Context, transactionID string) (*models.EbookPurchase, error) {
	if f.purchase == nil || f.purchase.TransactionID == nil || *f.purchase.TransactionID != transactionID {
		return nil, nil
	}
	return f.purchase, nil
}

func (f *fakeEbookStore) MarkPaidIfPending(ctx context.Context, id int64, transactionID, currency, downloadCode string) (bool, error) {
	f.paid = true
	f.downloadCode = downloadCode
	return f.applied, nil
}

func (f *fakeEbookStore) MarkFailedIfPending(ctx context.Context, id int64, transactionID string) (bool, error) {
	f.failed = true
	return f.applied, nil
}

func (f *fakeEbookStore) MarkCancelledByTransaction(ctx context.Context, transactionID string) (bool, error) {
	f.cancelled = true
	return f.applied, nil
}

type fakeMPGateway struct {
	payment *external.MPPayment
	err     error
}

func (f *fakeMPGateway) GetPayment(ctx context.Context, paymentID string) (*external.MPPayment, error) {
	return f.payment, f.err
}

func (f *fakeMPGateway) Currency() string { return "UYU" }

type fakePayPalGateway struct {
	order    *external.PayPalOrder
	captured *external.PayPalOrder
	err      error

	captureCalled bool
}

func (f *fakePayPalGateway) GetOrder(ctx context.Context, orderID string) (*external.PayPalOrder, error) {
	return f.order, f.err
}

func (f *fakePayPalGateway) CaptureOrder(ctx context.Context, orderID string) (*external.PayPalOrder, error) {
	f.captureCalled = true
	return f.captured, nil
}

func (f *fakePayPalGateway) Currency() string { return "USD" }

type fakePublisher struct {
	subjects []string
}

func (f *fakePublisher) Publish(subject string, data interface{}) error {
	f.subjects = append(f.subjects, subject)
	return nil
}

func mpPayment(status, reference, amount string) *external.MPPayment {
	return &external.MPPayment{
		ID:                987654,
		Status:            status,
		ExternalReference: reference,
		TransactionAmount: decimal.RequireFromString(amount),
		CurrencyID:        "UYU",
	}
}

func newReconcileFixture() (*ReconcileService, *fakeOrderStore, *fakeReservationStore, *fakeEbookStore, *fakeMPGateway, *fakePayPalGateway, *fakePublisher) {
	orders := &fakeOrderStore{applied: true}
	reservations := &fakeReservationStore{applied: true}
	ebooks := &fakeEbookStore{applied: true}
	mp := &fakeMPGateway{}
	paypal := &fakePayPalGateway{}
	publisher := &fakePublisher{}
	svc := NewReconcileService(orders, reservations, ebooks, mp, paypal, publisher)
	return svc, orders, reservations, ebooks, mp, paypal, publisher
}

func TestMercadoPagoApprovedOrder(t *testing.T) {
	svc, orders, _, _, mp, _, publisher := newReconcileFixture()
	orders.order = &models.Order{ID: 42, Total: decimal.RequireFromString("1500.00"), Status: models.OrderPending}
	mp.payment = mpPayment("approved", "ORD42", "1500.00")

	result, err := svc.ConfirmMercadoPagoReturn(context.Background(), "987654")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, result.Outcome)
	assert.Equal(t, models.OrderReference(42), result.Reference)
	assert.True(t, orders.paid)
	assert.Equal(t, []string{models.EventOrderPaid}, publisher.subjects)
}

func TestMercadoPagoApprovedOrderIdempotent(t *testing.T) {
	svc, orders, _, _, mp, _, publisher := newReconcileFixture()
	orders.order = &models.Order{ID: 42, Total: decimal.RequireFromString("1500.00")}
	orders.applied = false // conditional update lost: someone settled it first
	mp.payment = mpPayment("approved", "ORD42", "1500.00")

	result, err := svc.ConfirmMercadoPagoReturn(context.Background(), "987654")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyProcessed, result.Outcome)
	assert.Empty(t, publisher.subjects, "a lost race must not publish the event again")
}

func TestMercadoPagoAmountMismatchLeavesOrderPending(t *testing.T) {
	svc, orders, _, _, mp, _, publisher := newReconcileFixture()
	orders.order = &models.Order{ID: 42, Total: decimal.RequireFromString("1500.00")}
	mp.payment = mpPayment("approved", "ORD42", "1200.00")

	result, err := svc.ConfirmMercadoPagoReturn(context.Background(), "987654")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAmountMismatch, result.Outcome)
	assert.False(t, orders.paid, "a mismatched payment must not touch the order")
	assert.Empty(t, publisher.subjects)
}

func TestMercadoPagoCurrencyMismatch(t *testing.T) {
	svc, orders, _, _, mp, _, _ := newReconcileFixture()
	orders.order = &models.Order{ID: 42, Total: decimal.RequireFromString("1500.00")}
	mp.payment = mpPayment("approved", "ORD42", "1500.00")
	mp.payment.CurrencyID = "ARS"

	result, err := svc.ConfirmMercadoPagoReturn(context.Background(), "987654")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAmountMismatch, result.Outcome)
	assert.False(t, orders.paid)
}

func TestMercadoPagoUnknownReference(t *testing.T) {
	svc, _, _, _, mp, _, _ := newReconcileFixture()
	mp.payment = mpPayment("approved", "garbage-ref", "100.00")

	result, err := svc.ConfirmMercadoPagoReturn(context.Background(), "987654")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnknownReference, result.Outcome)
}

func TestMercadoPagoReferenceToMissingEntity(t *testing.T) {
	svc, _, _, _, mp, _, _ := newReconcileFixture()
	mp.payment = mpPayment("approved", "ORD9999", "100.00")

	result, err := svc.ConfirmMercadoPagoReturn(context.Background(), "987654")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnknownReference, result.Outcome)
}

func TestMercadoPagoRejectedReservation(t *testing.T) {
	svc, _, reservations, _, mp, _, publisher := newReconcileFixture()
	mp.payment = mpPayment("rejected", "RES17", "800.00")

	result, err := svc.ConfirmMercadoPagoReturn(context.Background(), "987654")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, result.Outcome)
	assert.True(t, reservations.rejected)
	assert.Equal(t, []string{models.EventPaymentRejected}, publisher.subjects)
}

func TestMercadoPagoInProcessReservation(t *testing.T) {
	svc, _, reservations, _, mp, _, publisher := newReconcileFixture()
	mp.payment = mpPayment("in_process", "RES17", "800.00")

	result, err := svc.ConfirmMercadoPagoReturn(context.Background(), "987654")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, result.Outcome)
	assert.True(t, reservations.inProcess)
	assert.Empty(t, publisher.subjects, "in_process is informational, no notification")
}

func TestMercadoPagoInProcessOrderIgnored(t *testing.T) {
	svc, _, _, _, mp, _, _ := newReconcileFixture()
	mp.payment = mpPayment("in_process", "ORD42", "800.00")

	result, err := svc.ConfirmMercadoPagoReturn(context.Background(), "987654")
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, result.Outcome)
}

func TestMercadoPagoGatewayErrorPropagates(t *testing.T) {
	svc, _, _, _, mp, _, _ := newReconcileFixture()
	mp.err = fmt.Errorf("request failed after retries: %w", apperrors.ErrGatewayUnavailable)

	_, err := svc.ConfirmMercadoPagoReturn(context.Background(), "987654")
	assert.ErrorIs(t, err, apperrors.ErrGatewayUnavailable)
}

func TestMercadoPagoNonPaymentNotificationIgnored(t *testing.T) {
	svc, _, _, _, _, _, _ := newReconcileFixture()

	payload := &models.MercadoPagoWebhookPayload{Type: "merchant_order"}
	result, err := svc.HandleMercadoPagoNotification(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, result.Outcome)
}

func paypalOrder(status, reference, amount string) *external.PayPalOrder {
	return &external.PayPalOrder{
		ID:     "PP-ORDER-1",
		Status: status,
		PurchaseUnits: []external.PayPalPurchaseUnitResult{{
			ReferenceID: reference,
			Amount:      external.PayPalAmount{CurrencyCode: "USD", Value: amount},
		}},
	}
}

func TestPayPalApprovedOrderIsCaptured(t *testing.T) {
	svc, _, _, ebooks, _, paypal, publisher := newReconcileFixture()
	tx := "PP-ORDER-1"
	ebooks.purchase = &models.EbookPurchase{
		ID:            9,
		PricePaid:     decimal.RequireFromString("24.99"),
		TransactionID: &tx,
	}
	paypal.order = paypalOrder("APPROVED", "EBOOK9", "24.99")
	paypal.captured = paypalOrder("COMPLETED", "EBOOK9", "24.99")

	payload := &models.PayPalWebhookPayload{EventType: "CHECKOUT.ORDER.APPROVED"}
	payload.Resource.ID = tx

	result, err := svc.HandlePayPalWebhook(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, result.Outcome)
	assert.True(t, paypal.captureCalled)
	assert.True(t, ebooks.paid)
	assert.NotEmpty(t, ebooks.downloadCode)
	assert.Equal(t, []string{models.EventEbookPurchased}, publisher.subjects)
}

func TestPayPalFallsBackToReferenceID(t *testing.T) {
	svc, _, _, ebooks, _, paypal, _ := newReconcileFixture()
	// The purchase never got its transaction id stored, the reference
	// carried in the purchase unit still finds it
	ebooks.purchase = &models.EbookPurchase{
		ID:        9,
		PricePaid: decimal.RequireFromString("24.99"),
	}
	paypal.order = paypalOrder("COMPLETED", "EBOOK9", "24.99")

	result, err := svc.CapturePayPalReturn(context.Background(), "PP-ORDER-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, result.Outcome)
	assert.False(t, paypal.captureCalled, "completed orders are not captured again")
}

func TestPayPalUnknownOrder(t *testing.T) {
	svc, _, _, _, _, paypal, _ := newReconcileFixture()
	paypal.order = paypalOrder("COMPLETED", "EBOOK9999", "24.99")

	result, err := svc.CapturePayPalReturn(context.Background(), "PP-ORDER-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnknownReference, result.Outcome)
}

func TestPayPalAmountMismatch(t *testing.T) {
	svc, _, _, ebooks, _, paypal, _ := newReconcileFixture()
	ebooks.purchase = &models.EbookPurchase{ID: 9, PricePaid: decimal.RequireFromString("24.99")}
	paypal.order = paypalOrder("COMPLETED", "EBOOK9", "19.99")

	result, err := svc.CapturePayPalReturn(context.Background(), "PP-ORDER-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAmountMismatch, result.Outcome)
	assert.False(t, ebooks.paid)
}

func TestPayPalCaptureLevelEventsIgnored(t *testing.T) {
	svc, _, _, _, _, _, _ := newReconcileFixture()

	payload := &models.PayPalWebhookPayload{EventType: "PAYMENT.CAPTURE.COMPLETED"}
	payload.Resource.ID = "capture-id-that-maps-to-nothing"

	result, err := svc.HandlePayPalWebhook(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, result.Outcome)
}

func TestPayPalCancel(t *testing.T) {
	svc, _, _, ebooks, _, _, _ := newReconcileFixture()

	result, err := svc.CancelPayPal(context.Background(), "PP-ORDER-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, result.Outcome)
	assert.True(t, ebooks.cancelled)

	ebooks.applied = false
	result, err = svc.CancelPayPal(context.Background(), "PP-ORDER-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyProcessed, result.Outcome)
}
