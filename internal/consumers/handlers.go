package consumers

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/stan.go"

	"mercadito/internal/mail"
	"mercadito/internal/metrics"
	"mercadito/internal/models"
)

type mailSender interface {
	Send(to, subject, htmlBody string) error
	AdminEmail() string
}

type ackable interface {
	Ack() error
}

// Handlers turn payment events into notification emails. A failed send
// leaves the message unacked so the streaming server redelivers it after
// the subscription's AckWait (manual ack mode).
type Handlers struct {
	mailer  mailSender
	baseURL string
}

func NewHandlers(mailer *mail.Mailer, baseURL string) *Handlers {
	return &Handlers{
		mailer:  mailer,
		baseURL: baseURL,
	}
}

func (h *Handlers) HandleOrderPaid(m *stan.Msg) {
	var event models.OrderPaidEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal order paid event", "error", err)
		m.Ack()
		return
	}

	body := fmt.Sprintf(
		"<h1>¡Gracias por tu compra, %s!</h1>"+
			"<p>Recibimos el pago de tu pedido <b>#%d</b> por %s %s.</p>"+
			"<p>Te avisaremos cuando el pedido sea despachado.</p>",
		event.UserName, event.OrderID, event.Total.StringFixed(2), event.Currency)

	h.deliver(m, "order_paid", event.UserEmail,
		fmt.Sprintf("Pedido #%d confirmado", event.OrderID), body)
}

func (h *Handlers) HandleReservationConfirmed(m *stan.Msg) {
	var event models.ReservationConfirmedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal reservation confirmed event", "error", err)
		m.Ack()
		return
	}

	body := fmt.Sprintf(
		"<h1>Reserva confirmada</h1>"+
			"<p>Hola %s, tu reserva <b>#%d</b> para <b>%s</b> quedó confirmada.</p>"+
			"<p>Entradas: %d. Total pagado: %s %s.</p>",
		event.ContactName, event.ReservationID, event.EventTitle,
		event.Quantity, event.AmountPaid.StringFixed(2), event.Currency)

	h.deliver(m, "reservation_confirmed", event.ContactEmail,
		fmt.Sprintf("Reserva #%d confirmada: %s", event.ReservationID, event.EventTitle), body)
}

func (h *Handlers) HandleEbookPurchased(m *stan.Msg) {
	var event models.EbookPurchasedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal ebook purchased event", "error", err)
		m.Ack()
		return
	}

	downloadURL := fmt.Sprintf("%s/ebooks/descargar/%s", h.baseURL, event.DownloadCode)
	body := fmt.Sprintf(
		"<h1>Tu ebook está listo</h1>"+
			"<p>Gracias por comprar <b>%s</b> (%s %s).</p>"+
			"<p><a href=\"%s\">Descargar ahora</a></p>"+
			"<p>El enlace es personal, no lo compartas.</p>",
		event.EbookTitle, event.PricePaid.StringFixed(2), event.Currency, downloadURL)

	h.deliver(m, "ebook_purchased", event.UserEmail,
		fmt.Sprintf("Tu ebook: %s", event.EbookTitle), body)
}

// HandlePaymentRejected notifies the store admin, not the buyer
func (h *Handlers) HandlePaymentRejected(m *stan.Msg) {
	var event models.PaymentRejectedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment rejected event", "error", err)
		m.Ack()
		return
	}

	adminEmail := h.mailer.AdminEmail()
	if adminEmail == "" {
		slog.Warn("Admin email not configured, skipping rejected payment notification",
			"reference", event.Reference)
		m.Ack()
		return
	}

	body := fmt.Sprintf(
		"<h1>Pago rechazado</h1>"+
			"<p>Referencia: <b>%s</b></p>"+
			"<p>Transacción: %s</p>"+
			"<p>Motivo: %s</p>",
		event.Reference, event.TransactionID, event.Reason)

	h.deliver(m, "payment_rejected", adminEmail,
		fmt.Sprintf("Pago rechazado: %s", event.Reference), body)
}

func (h *Handlers) deliver(m ackable, kind, to, subject, body string) {
	if err := h.mailer.Send(to, subject, body); err != nil {
		metrics.EmailsSent.WithLabelValues(kind, "error").Inc()
		slog.Error("Failed to send notification email", "kind", kind, "to", to, "error", err)
		// no Ack: let the streaming server redeliver
		return
	}

	metrics.EmailsSent.WithLabelValues(kind, "ok").Inc()
	slog.Info("Notification email sent", "kind", kind, "to", to)
	m.Ack()
}
