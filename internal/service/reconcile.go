package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mercadito/internal/external"
	"mercadito/internal/logger"
	"mercadito/internal/metrics"
	"mercadito/internal/models"
)

// Outcome classifies what a payment confirmation did. Every outcome except a
// gateway error is acknowledged to the provider with a 2xx.
type Outcome string

const (
	OutcomeUpdated          Outcome = "updated"
	OutcomeRejected         Outcome = "rejected"
	OutcomeAlreadyProcessed Outcome = "already_processed"
	OutcomeIgnored          Outcome = "ignored"
	OutcomeUnknownReference Outcome = "unknown_reference"
	OutcomeAmountMismatch   Outcome = "amount_mismatch"
)

// Result carries the outcome and, when resolved, the entity the payment
// referred to.
type Result struct {
	Outcome   Outcome
	Reference models.PaymentReference
}

type reconcileOrderStore interface {
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	MarkPaidIfPending(ctx context.Context, id int64, transactionID string) (bool, error)
	MarkCancelledIfPending(ctx context.Context, id int64, transactionID string) (bool, error)
}

type reconcileReservationStore interface {
	GetByID(ctx context.Context, id int64) (*models.Reservation, error)
	ApproveIfPending(ctx context.Context, id int64, transactionID string, amount decimal.Decimal, currency string) (bool, error)
	RejectIfPending(ctx context.Context, id int64, transactionID string) (bool, error)
	MarkInProcessIfPending(ctx context.Context, id int64, transactionID string) (bool, error)
}

type reconcileEbookStore interface {
	GetPurchaseByID(ctx context.Context, id int64) (*models.EbookPurchase, error)
	GetPurchaseByTransactionID(ctx context.Context, transactionID string) (*models.EbookPurchase, error)
	MarkPaidIfPending(ctx context.Context, id int64, transactionID, currency, downloadCode string) (bool, error)
	MarkFailedIfPending(ctx context.Context, id int64, transactionID string) (bool, error)
	MarkCancelledByTransaction(ctx context.Context, transactionID string) (bool, error)
}

type mercadoPagoGateway interface {
	GetPayment(ctx context.Context, paymentID string) (*external.MPPayment, error)
	Currency() string
}

type payPalGateway interface {
	GetOrder(ctx context.Context, orderID string) (*external.PayPalOrder, error)
	CaptureOrder(ctx context.Context, orderID string) (*external.PayPalOrder, error)
	Currency() string
}

type eventPublisher interface {
	Publish(subject string, data interface{}) error
}

// ReconcileService settles payment provider notifications against local
// state. Both the webhook and the buyer's redirect land here, and both
// re-fetch the payment from the provider: nothing client-supplied beyond the
// payment id is trusted. All state transitions are conditional updates, so a
// webhook and a redirect racing for the same payment apply it exactly once.
type ReconcileService struct {
	orders       reconcileOrderStore
	reservations reconcileReservationStore
	ebooks       reconcileEbookStore
	mp           mercadoPagoGateway
	paypal       payPalGateway
	nats         eventPublisher
}

func NewReconcileService(orders reconcileOrderStore, reservations reconcileReservationStore, ebooks reconcileEbookStore, mp mercadoPagoGateway, paypal payPalGateway, nats eventPublisher) *ReconcileService {
	return &ReconcileService{
		orders:       orders,
		reservations: reservations,
		ebooks:       ebooks,
		mp:           mp,
		paypal:       paypal,
		nats:         nats,
	}
}

// HandleMercadoPagoNotification processes one webhook delivery. Non-payment
// notification types are acknowledged without work.
func (s *ReconcileService) HandleMercadoPagoNotification(ctx context.Context, payload *models.MercadoPagoWebhookPayload) (Result, error) {
	if payload.Type != "payment" || payload.Data.ID == "" {
		return Result{Outcome: OutcomeIgnored}, nil
	}

	result, err := s.reconcileMercadoPago(ctx, payload.Data.ID)
	if err == nil {
		metrics.WebhooksProcessed.WithLabelValues("mercadopago", string(result.Outcome)).Inc()
	}
	return result, err
}

// ConfirmMercadoPagoReturn settles a payment from the buyer's redirect. The
// redirect query is only trusted for the payment id; the state comes from
// the provider.
func (s *ReconcileService) ConfirmMercadoPagoReturn(ctx context.Context, paymentID string) (Result, error) {
	result, err := s.reconcileMercadoPago(ctx, paymentID)
	if err == nil {
		metrics.WebhooksProcessed.WithLabelValues("mercadopago_return", string(result.Outcome)).Inc()
	}
	return result, err
}

func (s *ReconcileService) reconcileMercadoPago(ctx context.Context, paymentID string) (Result, error) {
	payment, err := s.mp.GetPayment(ctx, paymentID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch payment %s: %w", paymentID, err)
	}

	ref, err := models.ParsePaymentReference(payment.ExternalReference)
	if err != nil {
		logger.WithContext(ctx).Warn("Payment carries unknown external reference",
			"payment_id", paymentID, "reference", payment.ExternalReference)
		return Result{Outcome: OutcomeUnknownReference}, nil
	}

	transactionID := strconv.FormatInt(payment.ID, 10)

	switch payment.Status {
	case "approved":
		return s.applyApproved(ctx, ref, transactionID, payment.TransactionAmount, payment.CurrencyID)
	case "rejected", "cancelled":
		return s.applyRejected(ctx, ref, transactionID, payment.StatusDetail)
	case "in_process", "pending":
		return s.applyInProcess(ctx, ref, transactionID)
	default:
		logger.WithContext(ctx).Info("Ignoring payment status",
			"payment_id", paymentID, "status", payment.Status)
		return Result{Outcome: OutcomeIgnored, Reference: ref}, nil
	}
}

func (s *ReconcileService) applyApproved(ctx context.Context, ref models.PaymentReference, transactionID string, amount decimal.Decimal, currency string) (Result, error) {
	switch ref.Kind {
	case models.RefOrder:
		order, err := s.orders.GetByID(ctx, ref.ID)
		if err != nil {
			return Result{}, fmt.Errorf("failed to get order %d: %w", ref.ID, err)
		}
		if order == nil {
			return Result{Outcome: OutcomeUnknownReference, Reference: ref}, nil
		}

		if !amount.Equal(order.Total) || currency != s.mp.Currency() {
			return s.amountMismatch(ctx, "mercadopago", ref, transactionID, order.Total, amount, currency), nil
		}

		applied, err := s.orders.MarkPaidIfPending(ctx, ref.ID, transactionID)
		if err != nil {
			return Result{}, fmt.Errorf("failed to mark order paid: %w", err)
		}
		if !applied {
			return Result{Outcome: OutcomeAlreadyProcessed, Reference: ref}, nil
		}

		s.publish(ctx, models.EventOrderPaid, models.OrderPaidEvent{
			OrderID:   order.ID,
			UserEmail: order.UserEmail,
			UserName:  order.UserName,
			Total:     order.Total,
			Currency:  currency,
			Timestamp: time.Now(),
		})
		return Result{Outcome: OutcomeUpdated, Reference: ref}, nil

	case models.RefReservation:
		reservation, err := s.reservations.GetByID(ctx, ref.ID)
		if err != nil {
			return Result{}, fmt.Errorf("failed to get reservation %d: %w", ref.ID, err)
		}
		if reservation == nil {
			return Result{Outcome: OutcomeUnknownReference, Reference: ref}, nil
		}

		if !amount.Equal(reservation.ExpectedTotal) || currency != s.mp.Currency() {
			return s.amountMismatch(ctx, "mercadopago", ref, transactionID, reservation.ExpectedTotal, amount, currency), nil
		}

		applied, err := s.reservations.ApproveIfPending(ctx, ref.ID, transactionID, amount, currency)
		if err != nil {
			return Result{}, fmt.Errorf("failed to approve reservation: %w", err)
		}
		if !applied {
			return Result{Outcome: OutcomeAlreadyProcessed, Reference: ref}, nil
		}

		s.publish(ctx, models.EventReservationConfirmed, models.ReservationConfirmedEvent{
			ReservationID: reservation.ID,
			EventTitle:    reservation.EventTitle,
			ContactName:   reservation.ContactName,
			ContactEmail:  reservation.ContactEmail,
			Quantity:      reservation.Quantity,
			AmountPaid:    amount,
			Currency:      currency,
			Timestamp:     time.Now(),
		})
		return Result{Outcome: OutcomeUpdated, Reference: ref}, nil

	case models.RefEbook:
		purchase, err := s.ebooks.GetPurchaseByID(ctx, ref.ID)
		if err != nil {
			return Result{}, fmt.Errorf("failed to get purchase %d: %w", ref.ID, err)
		}
		if purchase == nil {
			return Result{Outcome: OutcomeUnknownReference, Reference: ref}, nil
		}

		if !amount.Equal(purchase.PricePaid) {
			return s.amountMismatch(ctx, "mercadopago", ref, transactionID, purchase.PricePaid, amount, currency), nil
		}

		return s.settleEbookPaid(ctx, purchase, ref, transactionID, currency)
	}

	return Result{Outcome: OutcomeUnknownReference, Reference: ref}, nil
}

func (s *ReconcileService) applyRejected(ctx context.Context, ref models.PaymentReference, transactionID, reason string) (Result, error) {
	var applied bool
	var err error

	switch ref.Kind {
	case models.RefOrder:
		applied, err = s.orders.MarkCancelledIfPending(ctx, ref.ID, transactionID)
	case models.RefReservation:
		applied, err = s.reservations.RejectIfPending(ctx, ref.ID, transactionID)
	case models.RefEbook:
		applied, err = s.ebooks.MarkFailedIfPending(ctx, ref.ID, transactionID)
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to mark %s rejected: %w", ref.String(), err)
	}
	if !applied {
		return Result{Outcome: OutcomeAlreadyProcessed, Reference: ref}, nil
	}

	s.publish(ctx, models.EventPaymentRejected, models.PaymentRejectedEvent{
		Reference:     ref.String(),
		TransactionID: transactionID,
		Reason:        reason,
		Timestamp:     time.Now(),
	})
	return Result{Outcome: OutcomeRejected, Reference: ref}, nil
}

// applyInProcess records the informational in_process state. Only
// reservations track it; orders and purchases simply stay pending.
func (s *ReconcileService) applyInProcess(ctx context.Context, ref models.PaymentReference, transactionID string) (Result, error) {
	if ref.Kind != models.RefReservation {
		return Result{Outcome: OutcomeIgnored, Reference: ref}, nil
	}

	applied, err := s.reservations.MarkInProcessIfPending(ctx, ref.ID, transactionID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to mark reservation in process: %w", err)
	}
	if !applied {
		return Result{Outcome: OutcomeIgnored, Reference: ref}, nil
	}

	return Result{Outcome: OutcomeUpdated, Reference: ref}, nil
}

// HandlePayPalWebhook settles order-level PayPal events. Capture-level
// events carry capture ids that do not map back to a purchase, so they are
// acknowledged without work; the order-level event always arrives too.
func (s *ReconcileService) HandlePayPalWebhook(ctx context.Context, payload *models.PayPalWebhookPayload) (Result, error) {
	var result Result
	var err error

	switch payload.EventType {
	case "CHECKOUT.ORDER.APPROVED":
		result, err = s.settlePayPalOrder(ctx, payload.Resource.ID, true)
	case "CHECKOUT.ORDER.COMPLETED":
		result, err = s.settlePayPalOrder(ctx, payload.Resource.ID, false)
	default:
		result = Result{Outcome: OutcomeIgnored}
	}

	if err == nil {
		metrics.WebhooksProcessed.WithLabelValues("paypal", string(result.Outcome)).Inc()
	}
	return result, err
}

// CapturePayPalReturn settles a purchase when the buyer returns from the
// approval page. The token query parameter is the PayPal order id.
func (s *ReconcileService) CapturePayPalReturn(ctx context.Context, orderID string) (Result, error) {
	result, err := s.settlePayPalOrder(ctx, orderID, true)
	if err == nil {
		metrics.WebhooksProcessed.WithLabelValues("paypal_return", string(result.Outcome)).Inc()
	}
	return result, err
}

// CancelPayPal voids a pending purchase when the buyer abandons the
// approval page.
func (s *ReconcileService) CancelPayPal(ctx context.Context, orderID string) (Result, error) {
	applied, err := s.ebooks.MarkCancelledByTransaction(ctx, orderID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to cancel purchase: %w", err)
	}
	if !applied {
		return Result{Outcome: OutcomeAlreadyProcessed}, nil
	}
	return Result{Outcome: OutcomeUpdated}, nil
}

func (s *ReconcileService) settlePayPalOrder(ctx context.Context, orderID string, capture bool) (Result, error) {
	order, err := s.paypal.GetOrder(ctx, orderID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch paypal order %s: %w", orderID, err)
	}

	purchase, err := s.ebooks.GetPurchaseByTransactionID(ctx, orderID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to look up purchase: %w", err)
	}
	if purchase == nil {
		// Fall back to the reference carried in the purchase unit
		if ref, refErr := models.ParsePaymentReference(order.ReferenceID()); refErr == nil && ref.Kind == models.RefEbook {
			purchase, err = s.ebooks.GetPurchaseByID(ctx, ref.ID)
			if err != nil {
				return Result{}, fmt.Errorf("failed to get purchase %d: %w", ref.ID, err)
			}
		}
	}
	if purchase == nil {
		logger.WithContext(ctx).Warn("PayPal order matches no purchase", "order_id", orderID)
		return Result{Outcome: OutcomeUnknownReference}, nil
	}

	ref := models.EbookReference(purchase.ID)

	if order.Status == "APPROVED" && capture {
		order, err = s.paypal.CaptureOrder(ctx, orderID)
		if err != nil {
			return Result{}, fmt.Errorf("failed to capture paypal order %s: %w", orderID, err)
		}
	}

	if order.Status != "COMPLETED" {
		logger.WithContext(ctx).Info("PayPal order not completed yet",
			"order_id", orderID, "status", order.Status)
		return Result{Outcome: OutcomeIgnored, Reference: ref}, nil
	}

	amount, currency, err := order.CapturedAmount()
	if err != nil {
		return Result{}, err
	}

	if !amount.Equal(purchase.PricePaid) || currency != s.paypal.Currency() {
		return s.amountMismatch(ctx, "paypal", ref, orderID, purchase.PricePaid, amount, currency), nil
	}

	return s.settleEbookPaid(ctx, purchase, ref, orderID, currency)
}

// settleEbookPaid applies the paid transition and issues the download code.
// The code is generated before the conditional update; on a lost race the
// generated code is simply discarded.
func (s *ReconcileService) settleEbookPaid(ctx context.Context, purchase *models.EbookPurchase, ref models.PaymentReference, transactionID, currency string) (Result, error) {
	downloadCode := uuid.New().String()

	applied, err := s.ebooks.MarkPaidIfPending(ctx, purchase.ID, transactionID, currency, downloadCode)
	if err != nil {
		return Result{}, fmt.Errorf("failed to mark purchase paid: %w", err)
	}
	if !applied {
		return Result{Outcome: OutcomeAlreadyProcessed, Reference: ref}, nil
	}

	s.publish(ctx, models.EventEbookPurchased, models.EbookPurchasedEvent{
		PurchaseID:   purchase.ID,
		EbookTitle:   purchase.EbookTitle,
		UserEmail:    purchase.UserEmail,
		PricePaid:    purchase.PricePaid,
		Currency:     currency,
		DownloadCode: downloadCode,
		Timestamp:    time.Now(),
	})
	return Result{Outcome: OutcomeUpdated, Reference: ref}, nil
}

// amountMismatch logs loudly and leaves the entity pending for manual
// review. The provider still gets a 2xx: redelivery would not change the
// verdict.
func (s *ReconcileService) amountMismatch(ctx context.Context, provider string, ref models.PaymentReference, transactionID string, expected, got decimal.Decimal, currency string) Result {
	metrics.AmountMismatches.WithLabelValues(provider).Inc()
	logger.WithContext(ctx).Error("Confirmed amount does not match expected total",
		"provider", provider,
		"reference", ref.String(),
		"transaction_id", transactionID,
		"expected", expected.String(),
		"got", got.String(),
		"currency", currency)
	return Result{Outcome: OutcomeAmountMismatch, Reference: ref}
}

func (s *ReconcileService) publish(ctx context.Context, subject string, data interface{}) {
	if err := s.nats.Publish(subject, data); err != nil {
		// The business transition already committed; a lost notification is
		// logged, not rolled back
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err, "subject", subject)
	}
}
