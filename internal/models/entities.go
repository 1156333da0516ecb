package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Discount types shared by promotions and coupons
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Order lifecycle
const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderShipped   = "shipped"
	OrderCancelled = "cancelled"
)

// Reservation lifecycle
const (
	ReservationPending   = "pending"
	ReservationInProcess = "in_process"
	ReservationApproved  = "approved"
	ReservationRejected  = "rejected"
)

// Ebook purchase lifecycle
const (
	PurchasePending   = "pending"
	PurchasePaid      = "paid"
	PurchaseFailed    = "failed"
	PurchaseCancelled = "cancelled"
)

// Cart lifecycle
const (
	CartActive    = "active"
	CartAbandoned = "abandoned"
	CartConverted = "converted"
)

// Category tree kinds. The three trees share one table, discriminated by
// kind; a parent must always belong to the same tree as its child.
const (
	CategoryProduct = "product"
	CategoryEvent   = "event"
	CategoryEbook   = "ebook"
)

// User represents a user in the system
type User struct {
	UserID       int64     `json:"user_id" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Phone        *string   `json:"phone" db:"phone"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
}

// Category is a node in one of the three trees
type Category struct {
	ID       int64  `json:"id" db:"id"`
	Kind     string `json:"kind" db:"kind"`
	Name     string `json:"name" db:"name"`
	ParentID *int64 `json:"parent_id" db:"parent_id"`
}

// Product represents a catalog product
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	CategoryID  int64           `json:"category_id" db:"category_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ProductImage is hosted image metadata attached to a product
type ProductImage struct {
	ID        int64  `json:"id" db:"id"`
	ProductID int64  `json:"product_id" db:"product_id"`
	URL       string `json:"url" db:"url"`
	Position  int    `json:"position" db:"position"`
}

// Promotion is a time-windowed discount linked to products
type Promotion struct {
	ID           int64           `json:"id" db:"id"`
	Title        string          `json:"title" db:"title"`
	Description  *string         `json:"description" db:"description"`
	DiscountType string          `json:"discount_type" db:"discount_type"`
	Value        decimal.Decimal `json:"value" db:"value"`
	StartsAt     time.Time       `json:"starts_at" db:"starts_at"`
	EndsAt       time.Time       `json:"ends_at" db:"ends_at"`
	Active       bool            `json:"active" db:"active"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// Coupon is a user-redeemable discount code, one use per user ever
type Coupon struct {
	ID           int64           `json:"id" db:"id"`
	Code         string          `json:"code" db:"code"`
	Description  *string         `json:"description" db:"description"`
	DiscountType string          `json:"discount_type" db:"discount_type"`
	Value        decimal.Decimal `json:"value" db:"value"`
	StartsAt     time.Time       `json:"starts_at" db:"starts_at"`
	EndsAt       time.Time       `json:"ends_at" db:"ends_at"`
	Active       bool            `json:"active" db:"active"`
}

// CouponUse records a redemption; (coupon_id, user_id) is unique
type CouponUse struct {
	ID       int64     `json:"id" db:"id"`
	CouponID int64     `json:"coupon_id" db:"coupon_id"`
	UserID   int64     `json:"user_id" db:"user_id"`
	UsedAt   time.Time `json:"used_at" db:"used_at"`
}

// Address belongs to a user; Region drives the shipping-rate lookup
type Address struct {
	ID         int64   `json:"id" db:"id"`
	UserID     int64   `json:"user_id" db:"user_id"`
	Line       string  `json:"line" db:"line"`
	Detail     *string `json:"detail" db:"detail"`
	City       string  `json:"city" db:"city"`
	Region     string  `json:"region" db:"region"`
	PostalCode *string `json:"postal_code" db:"postal_code"`
	Country    string  `json:"country" db:"country"`
}

// ShippingRate is the cost of shipping to a region
type ShippingRate struct {
	ID     int64           `json:"id" db:"id"`
	Region string          `json:"region" db:"region"`
	Cost   decimal.Decimal `json:"cost" db:"cost"`
	Active bool            `json:"active" db:"active"`
}

// Cart holds a user's pending line items; one active cart per user
type Cart struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CartItem is a (cart, product) line
type CartItem struct {
	ID        int64 `json:"id" db:"id"`
	CartID    int64 `json:"cart_id" db:"cart_id"`
	ProductID int64 `json:"product_id" db:"product_id"`
	Quantity  int   `json:"quantity" db:"quantity"`
}

// CartLine is a cart item joined with its product for display and checkout
type CartLine struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Order is the immutable snapshot produced at checkout. Line items freeze
// the unit price; totals are never recomputed from current product prices.
type Order struct {
	ID            int64           `json:"id" db:"id"`
	UserID        int64           `json:"user_id" db:"user_id"`
	AddressID     *int64          `json:"address_id" db:"address_id"`
	ShippingRateID *int64         `json:"shipping_rate_id" db:"shipping_rate_id"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
	Discount      decimal.Decimal `json:"discount" db:"discount"`
	ShippingCost  decimal.Decimal `json:"shipping_cost" db:"shipping_cost"`
	Total         decimal.Decimal `json:"total" db:"total"`
	CouponCode    *string         `json:"coupon_code" db:"coupon_code"`
	Status        string          `json:"status" db:"status"`
	TransactionID *string         `json:"transaction_id" db:"transaction_id"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
	Items         []OrderItem     `json:"items,omitempty"` // filled separately

	// Joined fields for reconciliation and notifications
	UserEmail string `json:"user_email,omitempty"`
	UserName  string `json:"user_name,omitempty"`
}

// OrderItem freezes (product, quantity, unit price at purchase)
type OrderItem struct {
	ID        int64           `json:"id" db:"id"`
	OrderID   int64           `json:"order_id" db:"order_id"`
	ProductID int64           `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
}

// Event is a bookable event; reservations attach to its time slots, never
// to the event itself
type Event struct {
	ID          int64           `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Description *string         `json:"description" db:"description"`
	CategoryID  *int64          `json:"category_id" db:"category_id"`
	Location    *string         `json:"location" db:"location"`
	Address     *string         `json:"address" db:"address"`
	Cost        decimal.Decimal `json:"cost" db:"cost"`
	ImageURL    *string         `json:"image_url" db:"image_url"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// EventDate is a calendar date an event runs on
type EventDate struct {
	ID      int64     `json:"id" db:"id"`
	EventID int64     `json:"event_id" db:"event_id"`
	Date    time.Time `json:"date" db:"date"`
}

// TimeSlot is a capacity-bounded slot within an event date
type TimeSlot struct {
	ID              int64     `json:"id" db:"id"`
	EventDateID     int64     `json:"event_date_id" db:"event_date_id"`
	StartsAt        string    `json:"starts_at" db:"starts_at"` // HH:MM
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	Capacity        int       `json:"capacity" db:"capacity"`
}

// Reservation books quantity seats on a time slot. The invariant: the sum of
// quantities of approved reservations on a slot never exceeds its capacity.
type Reservation struct {
	ID            int64            `json:"id" db:"id"`
	UserID        *int64           `json:"user_id" db:"user_id"`
	TimeSlotID    int64            `json:"time_slot_id" db:"time_slot_id"`
	Quantity      int              `json:"quantity" db:"quantity"`
	Status        string           `json:"status" db:"status"`
	TransactionID *string          `json:"transaction_id" db:"transaction_id"`
	AmountPaid    *decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	Currency      *string          `json:"currency" db:"currency"`
	ContactName   string           `json:"contact_name" db:"contact_name"`
	ContactEmail  string           `json:"contact_email" db:"contact_email"`
	ContactPhone  *string          `json:"contact_phone" db:"contact_phone"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`

	// Joined fields for reconciliation and notifications
	EventTitle    string          `json:"event_title,omitempty"`
	ExpectedTotal decimal.Decimal `json:"expected_total,omitempty"`
}

// Ebook is a purchasable digital book
type Ebook struct {
	ID          int64           `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Description *string         `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	FileURL     string          `json:"file_url" db:"file_url"`
	Active      bool            `json:"active" db:"active"`
	CategoryID  *int64          `json:"category_id" db:"category_id"`
	PublishedAt time.Time       `json:"published_at" db:"published_at"`
}

// EbookPurchase records a user's purchase of an ebook; the download code is
// issued when the payment is confirmed
type EbookPurchase struct {
	ID            int64           `json:"id" db:"id"`
	UserID        int64           `json:"user_id" db:"user_id"`
	EbookID       int64           `json:"ebook_id" db:"ebook_id"`
	PricePaid     decimal.Decimal `json:"price_paid" db:"price_paid"`
	Currency      *string         `json:"currency" db:"currency"`
	PaymentMethod string          `json:"payment_method" db:"payment_method"`
	Status        string          `json:"status" db:"status"`
	TransactionID *string         `json:"transaction_id" db:"transaction_id"`
	DownloadCode  *string         `json:"download_code" db:"download_code"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`

	// Joined fields for reconciliation and notifications
	EbookTitle string `json:"ebook_title,omitempty"`
	UserEmail  string `json:"user_email,omitempty"`
}
