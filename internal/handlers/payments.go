package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	apperrors "mercadito/internal/errors"
	"mercadito/internal/models"
	"mercadito/internal/service"

	"github.com/gin-gonic/gin"
)

// Payments handlers.
//
// Webhook endpoints answer 2xx for every notification that was processed,
// including ones we ignore or could not match: the provider must not keep
// retrying those. A gateway or storage failure answers non-2xx so the
// provider retries later.

// OnMercadoPagoWebhook - POST /webhooks/mercadopago
// Принять уведомление от Mercado Pago
func (h *Handlers) OnMercadoPagoWebhook(c *gin.Context) {
	var payload models.MercadoPagoWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.services.Reconcile.HandleMercadoPagoNotification(c.Request.Context(), &payload)
	if err != nil {
		if errors.Is(err, apperrors.ErrGatewayUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "gateway unavailable, retry later"})
			return
		}
		slog.Error("Failed to process Mercado Pago webhook", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"outcome": string(result.Outcome)})
}

// OnPayPalWebhook - POST /webhooks/paypal
// Принять уведомление от PayPal
func (h *Handlers) OnPayPalWebhook(c *gin.Context) {
	var payload models.PayPalWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.services.Reconcile.HandlePayPalWebhook(c.Request.Context(), &payload)
	if err != nil {
		if errors.Is(err, apperrors.ErrGatewayUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "gateway unavailable, retry later"})
			return
		}
		slog.Error("Failed to process PayPal webhook", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"outcome": string(result.Outcome)})
}

// OnMercadoPagoReturn - GET /pago-exitoso, /pago-pendiente, /pago-error
// Обработать возврат покупателя из Mercado Pago.
// Статусу из query-параметров не доверяем: состояние платежа
// перечитывается у шлюза перед любым изменением.
func (h *Handlers) OnMercadoPagoReturn(c *gin.Context) {
	paymentID := c.Query("payment_id")
	if paymentID == "" || paymentID == "null" {
		// Rejected payments can come back without a payment id
		c.JSON(http.StatusOK, gin.H{"status": "sin pago", "message": "El pago no se completó."})
		return
	}

	result, err := h.services.Reconcile.ConfirmMercadoPagoReturn(c.Request.Context(), paymentID)
	if err != nil {
		respondError(c, err, "Failed to confirm payment return")
		return
	}

	c.JSON(http.StatusOK, returnView(result))
}

// OnPayPalReturn - GET /paypal/pago-exitoso
// Покупатель одобрил платеж, захватываем заказ PayPal
func (h *Handlers) OnPayPalReturn(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	result, err := h.services.Reconcile.CapturePayPalReturn(c.Request.Context(), token)
	if err != nil {
		respondError(c, err, "Failed to capture PayPal order")
		return
	}

	c.JSON(http.StatusOK, returnView(result))
}

// OnPayPalCancel - GET /paypal/cancelar
func (h *Handlers) OnPayPalCancel(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	result, err := h.services.Reconcile.CancelPayPal(c.Request.Context(), token)
	if err != nil {
		respondError(c, err, "Failed to cancel PayPal order")
		return
	}

	c.JSON(http.StatusOK, returnView(result))
}

// returnView превращает результат сверки в ответ для покупателя
func returnView(result service.Result) gin.H {
	view := gin.H{"outcome": string(result.Outcome)}
	switch result.Outcome {
	case service.OutcomeUpdated, service.OutcomeAlreadyProcessed:
		view["message"] = "Tu pago fue confirmado."
	case service.OutcomeRejected:
		view["message"] = "El pago fue rechazado."
	case service.OutcomeAmountMismatch:
		view["message"] = "Estamos verificando tu pago. Te contactaremos a la brevedad."
	default:
		view["message"] = "Tu pago está siendo procesado."
	}
	return view
}
