package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterRequest - модель для регистрации пользователя
type RegisterRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Phone    *string `json:"phone"`
	Password string  `json:"password" binding:"required,min=8"`
}

// RegisterResponse - модель ответа при регистрации
type RegisterResponse struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// ProductListItem carries a catalog product with its promotion-resolved price
type ProductListItem struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	FinalPrice decimal.Decimal `json:"final_price"`
	OnSale     bool            `json:"on_sale"`
	Stock      int             `json:"stock"`
	CategoryID int64           `json:"category_id"`
}

// ProductListResponse - страница каталога
type ProductListResponse struct {
	Products   []ProductListItem `json:"products"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	Total      int64             `json:"total"`
}

// ProductDetailResponse adds images and the active promotion, if any
type ProductDetailResponse struct {
	Product    Product         `json:"product"`
	Images     []ProductImage  `json:"images"`
	FinalPrice decimal.Decimal `json:"final_price"`
	Promotion  *Promotion      `json:"promotion,omitempty"`
}

// AddCartItemRequest - модель для добавления товара в корзину
type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// CartResponse - корзина с позициями
type CartResponse struct {
	CartID   int64           `json:"cart_id"`
	Lines    []CartLine      `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// SaveAddressRequest - модель для создания адреса доставки
type SaveAddressRequest struct {
	Line       string  `json:"line" binding:"required"`
	Detail     *string `json:"detail"`
	City       string  `json:"city" binding:"required"`
	Region     string  `json:"region" binding:"required"`
	PostalCode *string `json:"postal_code"`
	Country    string  `json:"country" binding:"required"`
}

// CheckoutRequest - модель для оформления заказа
type CheckoutRequest struct {
	AddressID  int64  `json:"address_id" binding:"required"`
	CouponCode string `json:"coupon_code"`
}

// CheckoutResponse returns the frozen order and the gateway redirect URL
type CheckoutResponse struct {
	OrderID    int64           `json:"order_id"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Shipping   decimal.Decimal `json:"shipping"`
	Total      decimal.Decimal `json:"total"`
	PaymentURL string          `json:"payment_url"`
}

// EventListItem - элемент списка событий
type EventListItem struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Location *string         `json:"location"`
	Cost     decimal.Decimal `json:"cost"`
	ImageURL *string         `json:"image_url"`
}

// TimeSlotView is a slot with its remaining capacity resolved
type TimeSlotView struct {
	ID              int64  `json:"id"`
	StartsAt        string `json:"starts_at"`
	DurationMinutes int    `json:"duration_minutes"`
	Capacity        int    `json:"capacity"`
	Remaining       int    `json:"remaining"`
}

// EventDateView groups the slots of one calendar date
type EventDateView struct {
	ID    int64          `json:"id"`
	Date  time.Time      `json:"date"`
	Slots []TimeSlotView `json:"slots"`
}

// EventDetailResponse - событие с датами и слотами
type EventDetailResponse struct {
	Event Event           `json:"event"`
	Dates []EventDateView `json:"dates"`
}

// ReserveRequest - модель для создания резервации
type ReserveRequest struct {
	TimeSlotID   int64   `json:"time_slot_id" binding:"required"`
	Quantity     int     `json:"quantity" binding:"required,min=1"`
	ContactName  string  `json:"contact_name" binding:"required"`
	ContactEmail string  `json:"contact_email" binding:"required,email"`
	ContactPhone *string `json:"contact_phone"`
}

// ReserveResponse returns the pending reservation and the gateway redirect
type ReserveResponse struct {
	ReservationID int64           `json:"reservation_id"`
	Total         decimal.Decimal `json:"total"`
	PaymentURL    string          `json:"payment_url"`
}

// EbookListResponse - страница магазина ebooks
type EbookListResponse struct {
	Ebooks     []Ebook `json:"ebooks"`
	Page       int     `json:"page"`
	TotalPages int     `json:"total_pages"`
	Total      int64   `json:"total"`
}

// PurchaseEbookResponse returns the pending purchase and the PayPal approve URL
type PurchaseEbookResponse struct {
	PurchaseID int64  `json:"purchase_id"`
	OrderID    string `json:"order_id"`
	ApproveURL string `json:"approve_url"`
}

// MercadoPagoWebhookPayload - тело webhook уведомления от Mercado Pago
type MercadoPagoWebhookPayload struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// PayPalWebhookPayload - тело webhook уведомления от PayPal
type PayPalWebhookPayload struct {
	EventType string `json:"event_type"`
	Resource  struct {
		ID string `json:"id"`
	} `json:"resource"`
}

// CategoryNode is one node of a category tree
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children,omitempty"`
}

// Admin CRUD payloads

// SaveProductRequest - модель для создания/обновления товара
type SaveProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock"`
	CategoryID  int64           `json:"category_id" binding:"required"`
}

// SaveCategoryRequest - модель для создания/обновления категории
type SaveCategoryRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID *int64 `json:"parent_id"`
}

// SavePromotionRequest - модель для создания/обновления промоакции
type SavePromotionRequest struct {
	Title        string          `json:"title" binding:"required"`
	Description  *string         `json:"description"`
	DiscountType string          `json:"discount_type" binding:"required,oneof=percentage fixed"`
	Value        decimal.Decimal `json:"value" binding:"required"`
	StartsAt     time.Time       `json:"starts_at" binding:"required"`
	EndsAt       time.Time       `json:"ends_at" binding:"required"`
	Active       bool            `json:"active"`
	ProductIDs   []int64         `json:"product_ids"`
}

// SaveCouponRequest - модель для создания/обновления купона
type SaveCouponRequest struct {
	Code         string          `json:"code" binding:"required"`
	Description  *string         `json:"description"`
	DiscountType string          `json:"discount_type" binding:"required,oneof=percentage fixed"`
	Value        decimal.Decimal `json:"value" binding:"required"`
	StartsAt     time.Time       `json:"starts_at" binding:"required"`
	EndsAt       time.Time       `json:"ends_at" binding:"required"`
	Active       bool            `json:"active"`
}

// SaveShippingRateRequest - модель для тарифа доставки
type SaveShippingRateRequest struct {
	Region string          `json:"region" binding:"required"`
	Cost   decimal.Decimal `json:"cost"`
	Active bool            `json:"active"`
}

// SaveEventRequest - модель для создания/обновления события
type SaveEventRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description *string         `json:"description"`
	CategoryID  *int64          `json:"category_id"`
	Location    *string         `json:"location"`
	Address     *string         `json:"address"`
	Cost        decimal.Decimal `json:"cost"`
	ImageURL    *string         `json:"image_url"`
}

// SaveEventDateRequest - дата события
type SaveEventDateRequest struct {
	Date time.Time `json:"date" binding:"required"`
}

// SaveTimeSlotRequest - слот в рамках даты
type SaveTimeSlotRequest struct {
	StartsAt        string `json:"starts_at" binding:"required"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1"`
	Capacity        int    `json:"capacity" binding:"required,min=1"`
}

// SaveEbookRequest - модель для создания/обновления ebook
type SaveEbookRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	FileURL     string          `json:"file_url" binding:"required"`
	Active      bool            `json:"active"`
	CategoryID  *int64          `json:"category_id"`
}

// IDResponse - общий ответ с идентификатором созданной сущности
type IDResponse struct {
	ID int64 `json:"id"`
}
