package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mercadito/internal/errors"
	"mercadito/internal/external"
	"mercadito/internal/models"
)

type fakeCartStore struct {
	lines []models.CartLine
}

func (f *fakeCartStore) GetOrCreateActive(ctx context.Context, userID int64) (*models.Cart, error) {
	return &models.Cart{ID: 1, UserID: userID, Status: models.CartActive}, nil
}

func (f *fakeCartStore) Lines(ctx context.Context, cartID int64) ([]models.CartLine, error) {
	return f.lines, nil
}

type fakePromotionStore struct {
	byProduct map[int64][]models.Promotion
}

func (f *fakePromotionStore) ActiveForProduct(ctx context.Context, productID int64, now time.Time) ([]models.Promotion, error) {
	return f.byProduct[productID], nil
}

type fakeCouponStore struct {
	coupon *models.Coupon
	used   bool
}

func (f *fakeCouponStore) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	if f.coupon == nil || f.coupon.Code != code {
		return nil, nil
	}
	return f.coupon, nil
}

func (f *fakeCouponStore) HasUse(ctx context.Context, couponID, userID int64) (bool, error) {
	return f.used, nil
}

type fakeAddressStore struct {
	address *models.Address
}

func (f *fakeAddressStore) GetForUser(ctx context.Context, id, userID int64) (*models.Address, error) {
	if f.address == nil || f.address.ID != id || f.address.UserID != userID {
		return nil, nil
	}
	return f.address, nil
}

type fakeShippingStore struct {
	rate *models.ShippingRate
}

func (f *fakeShippingStore) ActiveRateForRegion(ctx context.Context, region string) (*models.ShippingRate, error) {
	if f.rate == nil || f.rate.Region != region {
		return nil, nil
	}
	return f.rate, nil
}

type fakeCheckoutOrderStore struct {
	created    *models.Order
	items      []models.OrderItem
	couponUse  *models.CouponUse
	cartID     int64
	listOrders []models.Order
	createErr  error
}

func (f *fakeCheckoutOrderStore) CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem, couponUse *models.CouponUse, cartID int64) error {
	if f.createErr != nil {
		return f.createErr
	}
	order.ID = 42
	f.created = order
	f.items = items
	f.couponUse = couponUse
	f.cartID = cartID
	return nil
}

func (f *fakeCheckoutOrderStore) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	if f.created == nil || f.created.ID != id {
		return nil, nil
	}
	return f.created, nil
}

func (f *fakeCheckoutOrderStore) Items(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	return f.items, nil
}

func (f *fakeCheckoutOrderStore) ListForUser(ctx context.Context, userID int64) ([]models.Order, error) {
	return f.listOrders, nil
}

type fakePreferenceCreator struct {
	req *external.PreferenceRequest
	err error
}

func (f *fakePreferenceCreator) CreatePreference(ctx context.Context, req external.PreferenceRequest) (*external.PreferenceResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.req = &req
	return &external.PreferenceResponse{
		ID:        "pref-1",
		InitPoint: "https://mercadopago.test/checkout/pref-1",
	}, nil
}

func (f *fakePreferenceCreator) Currency() string { return "UYU" }

type checkoutFixture struct {
	svc      *CheckoutService
	carts    *fakeCartStore
	promos   *fakePromotionStore
	coupons  *fakeCouponStore
	address  *fakeAddressStore
	shipping *fakeShippingStore
	orders   *fakeCheckoutOrderStore
	mp       *fakePreferenceCreator
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		carts: &fakeCartStore{lines: []models.CartLine{
			{ProductID: 1, ProductName: "Mate imperial", Quantity: 2, UnitPrice: decimal.RequireFromString("500.00")},
			{ProductID: 2, ProductName: "Bombilla", Quantity: 1, UnitPrice: decimal.RequireFromString("200.00")},
		}},
		promos:  &fakePromotionStore{byProduct: map[int64][]models.Promotion{}},
		coupons: &fakeCouponStore{},
		address: &fakeAddressStore{address: &models.Address{
			ID: 7, UserID: 10, Region: "Montevideo",
		}},
		shipping: &fakeShippingStore{rate: &models.ShippingRate{
			ID: 3, Region: "Montevideo", Cost: decimal.RequireFromString("150.00"), Active: true,
		}},
		orders: &fakeCheckoutOrderStore{},
		mp:     &fakePreferenceCreator{},
	}
	f.svc = NewCheckoutService(f.carts, f.promos, f.coupons, f.address, f.shipping, f.orders, f.mp, "https://mercadito.test")
	return f
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newCheckoutFixture()
	f.carts.lines = nil

	_, err := f.svc.Checkout(context.Background(), 10, &models.CheckoutRequest{AddressID: 7})
	assert.ErrorIs(t, err, apperrors.ErrCartEmpty)
}

func TestCheckoutTotals(t *testing.T) {
	f := newCheckoutFixture()

	resp, err := f.svc.Checkout(context.Background(), 10, &models.CheckoutRequest{AddressID: 7})
	require.NoError(t, err)

	// 2*500 + 1*200 = 1200, no discount, 150 shipping
	assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("1200.00")), "subtotal %s", resp.Subtotal)
	assert.True(t, resp.Shipping.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("1350.00")), "total %s", resp.Total)
	assert.Equal(t, int64(42), resp.OrderID)
	assert.Equal(t, "https://mercadopago.test/checkout/pref-1", resp.PaymentURL)

	require.NotNil(t, f.mp.req)
	assert.Equal(t, "ORD42", f.mp.req.ExternalReference)
	assert.Equal(t, "https://mercadito.test/webhooks/mercadopago", f.mp.req.NotificationURL)
	assert.Equal(t, int64(1), f.orders.cartID)
}

func TestCheckoutFreezesPromotionPrice(t *testing.T) {
	f := newCheckoutFixture()
	now := time.Now()
	f.promos.byProduct[1] = []models.Promotion{{
		ID:           1,
		DiscountType: models.DiscountPercentage,
		Value:        decimal.RequireFromString("20"),
		StartsAt:     now.Add(-time.Hour),
		EndsAt:       now.Add(time.Hour),
		Active:       true,
		CreatedAt:    now,
	}}

	resp, err := f.svc.Checkout(context.Background(), 10, &models.CheckoutRequest{AddressID: 7})
	require.NoError(t, err)

	// Product 1 drops from 500 to 400: 2*400 + 200 = 1000
	assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("1000.00")), "subtotal %s", resp.Subtotal)

	require.Len(t, f.orders.items, 2)
	assert.True(t, f.orders.items[0].UnitPrice.Equal(decimal.RequireFromString("400.00")),
		"promotion price must be frozen into the order item")
}

func TestCheckoutCouponApplied(t *testing.T) {
	f := newCheckoutFixture()
	now := time.Now()
	f.coupons.coupon = &models.Coupon{
		ID:           5,
		Code:         "HOLA10",
		DiscountType: models.DiscountPercentage,
		Value:        decimal.RequireFromString("10"),
		StartsAt:     now.Add(-time.Hour),
		EndsAt:       now.Add(time.Hour),
		Active:       true,
	}

	resp, err := f.svc.Checkout(context.Background(), 10, &models.CheckoutRequest{AddressID: 7, CouponCode: "HOLA10"})
	require.NoError(t, err)

	// 1200 - 120 + 150
	assert.True(t, resp.Discount.Equal(decimal.RequireFromString("120.00")), "discount %s", resp.Discount)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("1230.00")), "total %s", resp.Total)

	require.NotNil(t, f.orders.couponUse)
	assert.Equal(t, int64(5), f.orders.couponUse.CouponID)
	assert.Equal(t, int64(10), f.orders.couponUse.UserID)
}

func TestCheckoutCouponNotFound(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.svc.Checkout(context.Background(), 10, &models.CheckoutRequest{AddressID: 7, CouponCode: "NOPE"})
	assert.ErrorIs(t, err, apperrors.ErrCouponNotFound)
}

func TestCheckoutCouponExpired(t *testing.T) {
	f := newCheckoutFixture()
	now := time.Now()
	f.coupons.coupon = &models.Coupon{
		ID: 5, Code: "VIEJO", Active: true,
		DiscountType: models.DiscountFixed, Value: decimal.RequireFromString("50"),
		StartsAt: now.Add(-48 * time.Hour),
		EndsAt:   now.Add(-24 * time.Hour),
	}

	_, err := f.svc.Checkout(context.Background(), 10, &models.CheckoutRequest{AddressID: 7, CouponCode: "VIEJO"})
	assert.ErrorIs(t, err, apperrors.ErrCouponInvalid)
}

func TestCheckoutCouponAlreadyUsed(t *testing.T) {
	f := newCheckoutFixture()
	now := time.Now()
	f.coupons.coupon = &models.Coupon{
		ID: 5, Code: "UNAVEZ", Active: true,
		DiscountType: models.DiscountFixed, Value: decimal.RequireFromString("50"),
		StartsAt: now.Add(-time.Hour),
		EndsAt:   now.Add(time.Hour),
	}
	f.coupons.used = true

	_, err := f.svc.Checkout(context.Background(), 10, &models.CheckoutRequest{AddressID: 7, CouponCode: "UNAVEZ"})
	assert.ErrorIs(t, err, apperrors.ErrCouponAlreadyUsed)
}

// Two checkouts can both pass the usage pre-check; the losing insert on
// coupon_uses must still come back as the coupon error, not a plain failure.
func TestCheckoutCouponRaceSurfacesAlreadyUsed(t *testing.T) {
	f := newCheckoutFixture()
	now := time.Now()
	f.coupons.coupon = &models.Coupon{
		ID: 5, Code: "UNAVEZ", Active: true,
		DiscountType: models.DiscountFixed, Value: decimal.RequireFromString("50"),
		StartsAt: now.Add(-time.Hour),
		EndsAt:   now.Add(time.Hour),
	}
	f.orders.createErr = apperrors.ErrCouponAlreadyUsed

	_, err := f.svc.Checkout(context.Background(), 10, &models.CheckoutRequest{AddressID: 7, CouponCode: "UNAVEZ"})
	assert.ErrorIs(t, err, apperrors.ErrCouponAlreadyUsed)
}

func TestCheckoutUnknownAddress(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.svc.Checkout(context.Background(), 10, &models.CheckoutRequest{AddressID: 999})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCheckoutAddressOfAnotherUser(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.svc.Checkout(context.Background(), 11, &models.CheckoutRequest{AddressID: 7})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCheckoutNoShippingRateChargesZero(t *testing.T) {
	f := newCheckoutFixture()
	f.address.address.Region = "Rivera"

	resp, err := f.svc.Checkout(context.Background(), 10, &models.CheckoutRequest{AddressID: 7})
	require.NoError(t, err)

	assert.True(t, resp.Shipping.Equal(decimal.Zero))
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("1200.00")), "total %s", resp.Total)
	assert.Nil(t, f.orders.created.ShippingRateID)
}

func TestOrderOwnership(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.svc.Checkout(context.Background(), 10, &models.CheckoutRequest{AddressID: 7})
	require.NoError(t, err)

	order, err := f.svc.Order(context.Background(), 10, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), order.ID)
	assert.Len(t, order.Items, 2)

	_, err = f.svc.Order(context.Background(), 11, 42)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.Order(context.Background(), 10, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
