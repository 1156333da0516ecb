package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mercadito/internal/errors"
	"mercadito/internal/external"
	"mercadito/internal/models"
	"mercadito/internal/service"
)

type stubOrderStore struct {
	order *models.Order
}

func (s *stubOrderStore) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, nil
	}
	return s.order, nil
}

func (s *stubOrderStore) MarkPaidIfPending(ctx context.Context, id int64, transactionID string) (bool, error) {
	return true, nil
}

func (s *stubOrderStore) MarkCancelledIfPending(ctx context.Context, id int64, transactionID string) (bool, error) {
	return true, nil
}

type stubMPGateway struct {
	payment *external.MPPayment
	err     error
}

func (s *stubMPGateway) GetPayment(ctx context.Context, paymentID string) (*external.MPPayment, error) {
	return s.payment, s.err
}

func (s *stubMPGateway) Currency() string { return "UYU" }

type stubPublisher struct{}

func (s *stubPublisher) Publish(subject string, data interface{}) error { return nil }

func setupPaymentsRouter(mp *stubMPGateway, orders *stubOrderStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	reconcile := service.NewReconcileService(orders, nil, nil, mp, nil, &stubPublisher{})
	h := NewHandlers(&service.Services{Reconcile: reconcile}, nil)

	r := gin.New()
	r.POST("/webhooks/mercadopago", h.OnMercadoPagoWebhook)
	r.GET("/pago-exitoso", h.OnMercadoPagoReturn)
	r.GET("/pago-error", h.OnMercadoPagoReturn)
	return r
}

func postWebhook(r *gin.Engine, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", "/webhooks/mercadopago", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookNonPaymentTypeAcknowledged(t *testing.T) {
	r := setupPaymentsRouter(&stubMPGateway{}, &stubOrderStore{})

	payload := models.MercadoPagoWebhookPayload{Type: "merchant_order"}
	w := postWebhook(r, payload)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")
}

func TestWebhookApprovedOrder(t *testing.T) {
	mp := &stubMPGateway{payment: &external.MPPayment{
		ID:                555,
		Status:            "approved",
		ExternalReference: "ORD42",
		TransactionAmount: decimal.RequireFromString("1500.00"),
		CurrencyID:        "UYU",
	}}
	orders := &stubOrderStore{order: &models.Order{ID: 42, Total: decimal.RequireFromString("1500.00")}}
	r := setupPaymentsRouter(mp, orders)

	payload := models.MercadoPagoWebhookPayload{Type: "payment"}
	payload.Data.ID = "555"
	w := postWebhook(r, payload)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "updated")
}

func TestWebhookUnknownReferenceStillAcknowledged(t *testing.T) {
	mp := &stubMPGateway{payment: &external.MPPayment{
		ID:                555,
		Status:            "approved",
		ExternalReference: "what-is-this",
		TransactionAmount: decimal.RequireFromString("10.00"),
		CurrencyID:        "UYU",
	}}
	r := setupPaymentsRouter(mp, &stubOrderStore{})

	payload := models.MercadoPagoWebhookPayload{Type: "payment"}
	payload.Data.ID = "555"
	w := postWebhook(r, payload)

	// 2xx: redelivery would not change the verdict
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "unknown_reference")
}

func TestWebhookAmountMismatchStillAcknowledged(t *testing.T) {
	mp := &stubMPGateway{payment: &external.MPPayment{
		ID:                555,
		Status:            "approved",
		ExternalReference: "ORD42",
		TransactionAmount: decimal.RequireFromString("999.00"),
		CurrencyID:        "UYU",
	}}
	orders := &stubOrderStore{order: &models.Order{ID: 42, Total: decimal.RequireFromString("1500.00")}}
	r := setupPaymentsRouter(mp, orders)

	payload := models.MercadoPagoWebhookPayload{Type: "payment"}
	payload.Data.ID = "555"
	w := postWebhook(r, payload)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "amount_mismatch")
}

func TestWebhookGatewayUnavailableAnswers502(t *testing.T) {
	mp := &stubMPGateway{err: fmt.Errorf("request failed: %w", apperrors.ErrGatewayUnavailable)}
	r := setupPaymentsRouter(mp, &stubOrderStore{})

	payload := models.MercadoPagoWebhookPayload{Type: "payment"}
	payload.Data.ID = "555"
	w := postWebhook(r, payload)

	// Non-2xx makes the provider retry the notification later
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestWebhookBadJSON(t *testing.T) {
	r := setupPaymentsRouter(&stubMPGateway{}, &stubOrderStore{})

	req, _ := http.NewRequest("POST", "/webhooks/mercadopago", bytes.NewBufferString("{broken"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReturnWithoutPaymentID(t *testing.T) {
	r := setupPaymentsRouter(&stubMPGateway{}, &stubOrderStore{})

	// Тест возврата после неуспешного платежа: query без payment_id
	req, _ := http.NewRequest("GET", "/pago-error?payment_id=null&status=rejected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReturnVerifiesAgainstGateway(t *testing.T) {
	mp := &stubMPGateway{payment: &external.MPPayment{
		ID:                555,
		Status:            "approved",
		ExternalReference: "ORD42",
		TransactionAmount: decimal.RequireFromString("1500.00"),
		CurrencyID:        "UYU",
	}}
	orders := &stubOrderStore{order: &models.Order{ID: 42, Total: decimal.RequireFromString("1500.00")}}
	r := setupPaymentsRouter(mp, orders)

	// The redirect claims nothing but the payment id; state comes from the gateway
	req, _ := http.NewRequest("GET", "/pago-exitoso?payment_id=555&status=approved", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "updated")
}
