package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NATS Event Types
const (
	EventOrderPaid            = "order.paid"
	EventReservationConfirmed = "reservation.confirmed"
	EventEbookPurchased       = "ebook.purchased"
	EventPaymentRejected      = "payment.rejected"
)

// OrderPaidEvent fires after an order transitions to paid. It carries
// everything the notification worker needs so the worker does not go back
// to the database.
type OrderPaidEvent struct {
	OrderID   int64           `json:"order_id"`
	UserEmail string          `json:"user_email"`
	UserName  string          `json:"user_name"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	Timestamp time.Time       `json:"timestamp"`
}

// ReservationConfirmedEvent fires after a reservation is approved
type ReservationConfirmedEvent struct {
	ReservationID int64           `json:"reservation_id"`
	EventTitle    string          `json:"event_title"`
	ContactName   string          `json:"contact_name"`
	ContactEmail  string          `json:"contact_email"`
	Quantity      int             `json:"quantity"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Currency      string          `json:"currency"`
	Timestamp     time.Time       `json:"timestamp"`
}

// EbookPurchasedEvent fires after an ebook purchase is paid; the download
// code is already issued at that point
type EbookPurchasedEvent struct {
	PurchaseID   int64           `json:"purchase_id"`
	EbookTitle   string          `json:"ebook_title"`
	UserEmail    string          `json:"user_email"`
	PricePaid    decimal.Decimal `json:"price_paid"`
	Currency     string          `json:"currency"`
	DownloadCode string          `json:"download_code"`
	Timestamp    time.Time       `json:"timestamp"`
}

// PaymentRejectedEvent fires when a provider confirms a rejected payment
type PaymentRejectedEvent struct {
	Reference     string    `json:"reference"`
	TransactionID string    `json:"transaction_id"`
	Reason        string    `json:"reason"`
	Timestamp     time.Time `json:"timestamp"`
}
