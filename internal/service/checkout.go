package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	apperrors "mercadito/internal/errors"
	"mercadito/internal/external"
	"mercadito/internal/logger"
	"mercadito/internal/metrics"
	"mercadito/internal/models"
	"mercadito/internal/pricing"
)

type checkoutCartStore interface {
	GetOrCreateActive(ctx context.Context, userID int64) (*models.Cart, error)
	Lines(ctx context.Context, cartID int64) ([]models.CartLine, error)
}

type promotionStore interface {
	ActiveForProduct(ctx context.Context, productID int64, now time.Time) ([]models.Promotion, error)
}

type couponStore interface {
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	HasUse(ctx context.Context, couponID, userID int64) (bool, error)
}

type addressStore interface {
	GetForUser(ctx context.Context, id, userID int64) (*models.Address, error)
}

type shippingStore interface {
	ActiveRateForRegion(ctx context.Context, region string) (*models.ShippingRate, error)
}

type orderStore interface {
	CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem, couponUse *models.CouponUse, cartID int64) error
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	Items(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	ListForUser(ctx context.Context, userID int64) ([]models.Order, error)
}

type preferenceCreator interface {
	CreatePreference(ctx context.Context, req external.PreferenceRequest) (*external.PreferenceResponse, error)
	Currency() string
}

// CheckoutService converts the active cart into a pending order and opens a
// Mercado Pago preference for it. Promotion prices are resolved and frozen
// here; later catalog edits never change an existing order.
type CheckoutService struct {
	carts      checkoutCartStore
	promotions promotionStore
	coupons    couponStore
	addresses  addressStore
	shipping   shippingStore
	orders     orderStore
	mp         preferenceCreator
	baseURL    string
}

func NewCheckoutService(carts checkoutCartStore, promotions promotionStore, coupons couponStore, addresses addressStore, shipping shippingStore, orders orderStore, mp preferenceCreator, baseURL string) *CheckoutService {
	return &CheckoutService{
		carts:      carts,
		promotions: promotions,
		coupons:    coupons,
		addresses:  addresses,
		shipping:   shipping,
		orders:     orders,
		mp:         mp,
		baseURL:    baseURL,
	}
}

func (s *CheckoutService) Checkout(ctx context.Context, userID int64, req *models.CheckoutRequest) (*models.CheckoutResponse, error) {
	cart, err := s.carts.GetOrCreateActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	lines, err := s.carts.Lines(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart lines: %w", err)
	}
	if len(lines) == 0 {
		return nil, apperrors.ErrCartEmpty
	}

	now := time.Now()
	subtotal := decimal.Zero
	items := make([]models.OrderItem, len(lines))
	prefItems := make([]external.PreferenceItem, 0, len(lines)+1)

	for i, line := range lines {
		promos, err := s.promotions.ActiveForProduct(ctx, line.ProductID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to get promotions: %w", err)
		}

		unit := pricing.PromotionPrice(line.UnitPrice, pricing.ActivePromotion(promos, now))
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(line.Quantity))))

		items[i] = models.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: unit,
		}

		prefItems = append(prefItems, external.PreferenceItem{
			Title:     line.ProductName,
			Quantity:  line.Quantity,
			UnitPrice: unit,
		})
	}

	discount := decimal.Zero
	var couponUse *models.CouponUse
	var couponCode *string
	if req.CouponCode != "" {
		coupon, err := s.coupons.GetByCode(ctx, req.CouponCode)
		if err != nil {
			return nil, fmt.Errorf("failed to get coupon: %w", err)
		}
		if coupon == nil {
			return nil, apperrors.ErrCouponNotFound
		}
		if !pricing.CouponUsable(coupon, now) {
			return nil, apperrors.ErrCouponInvalid
		}

		used, err := s.coupons.HasUse(ctx, coupon.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check coupon use: %w", err)
		}
		if used {
			return nil, apperrors.ErrCouponAlreadyUsed
		}

		discount = pricing.CouponDiscount(subtotal, coupon)
		couponUse = &models.CouponUse{CouponID: coupon.ID, UserID: userID}
		couponCode = &coupon.Code
	}

	address, err := s.addresses.GetForUser(ctx, req.AddressID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	if address == nil {
		return nil, apperrors.ErrNotFound
	}

	shippingCost := decimal.Zero
	var rateID *int64
	rate, err := s.shipping.ActiveRateForRegion(ctx, address.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to get shipping rate: %w", err)
	}
	if rate != nil {
		shippingCost = rate.Cost
		rateID = &rate.ID
	} else {
		logger.WithContext(ctx).Warn("No shipping rate for region, charging zero",
			"region", address.Region, "user_id", userID)
	}

	total := subtotal.Sub(discount).Add(shippingCost)

	order := &models.Order{
		UserID:         userID,
		AddressID:      &address.ID,
		ShippingRateID: rateID,
		Subtotal:       subtotal,
		Discount:       discount,
		ShippingCost:   shippingCost,
		Total:          total,
		CouponCode:     couponCode,
		Status:         models.OrderPending,
	}

	if err := s.orders.CreateWithItems(ctx, order, items, couponUse, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	metrics.OrdersCheckedOut.Inc()

	if shippingCost.IsPositive() {
		prefItems = append(prefItems, external.PreferenceItem{
			Title:     "Envío",
			Quantity:  1,
			UnitPrice: shippingCost,
		})
	}
	if discount.IsPositive() {
		prefItems = append(prefItems, external.PreferenceItem{
			Title:     "Descuento",
			Quantity:  1,
			UnitPrice: discount.Neg(),
		})
	}

	pref, err := s.mp.CreatePreference(ctx, external.PreferenceRequest{
		Items:             prefItems,
		ExternalReference: models.OrderReference(order.ID).String(),
		BackURLs: external.PreferenceBackURLs{
			Success: s.baseURL + "/pago-exitoso",
			Pending: s.baseURL + "/pago-pendiente",
			Failure: s.baseURL + "/pago-error",
		},
		AutoReturn:      "approved",
		NotificationURL: s.baseURL + "/webhooks/mercadopago",
	})
	if err != nil {
		// Order stays pending; the client can retry payment from order history
		return nil, fmt.Errorf("failed to create payment preference: %w", err)
	}

	paymentURL := pref.InitPoint
	if paymentURL == "" {
		paymentURL = pref.SandboxInitPoint
	}

	return &models.CheckoutResponse{
		OrderID:    order.ID,
		Subtotal:   subtotal,
		Discount:   discount,
		Shipping:   shippingCost,
		Total:      total,
		PaymentURL: paymentURL,
	}, nil
}

func (s *CheckoutService) Order(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, apperrors.ErrNotFound
	}
	if order.UserID != userID {
		return nil, apperrors.ErrForbidden
	}

	items, err := s.orders.Items(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	order.Items = items

	return order, nil
}

func (s *CheckoutService) Orders(ctx context.Context, userID int64) ([]models.Order, error) {
	orders, err := s.orders.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}
