package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"mercadito/internal/models"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestDiscountPercentage(t *testing.T) {
	got := Discount(d("200"), models.DiscountPercentage, d("25"))
	assert.True(t, got.Equal(d("150")), "got %s", got)
}

func TestDiscountFixed(t *testing.T) {
	got := Discount(d("200"), models.DiscountFixed, d("50"))
	assert.True(t, got.Equal(d("150")), "got %s", got)
}

func TestDiscountClampsAtZero(t *testing.T) {
	got := Discount(d("30"), models.DiscountFixed, d("50"))
	assert.True(t, got.Equal(decimal.Zero), "got %s", got)
}

func TestDiscountUnknownType(t *testing.T) {
	got := Discount(d("99"), "loyalty_points", d("10"))
	assert.True(t, got.Equal(d("99")), "got %s", got)
}

func promo(id int64, active bool, createdAt time.Time) models.Promotion {
	return models.Promotion{
		ID:           id,
		DiscountType: models.DiscountPercentage,
		Value:        d("10"),
		StartsAt:     time.Now().Add(-time.Hour),
		EndsAt:       time.Now().Add(time.Hour),
		Active:       active,
		CreatedAt:    createdAt,
	}
}

func TestActivePromotionSkipsInactiveAndExpired(t *testing.T) {
	now := time.Now()

	expired := promo(1, true, now)
	expired.EndsAt = now.Add(-time.Minute)

	future := promo(2, true, now)
	future.StartsAt = now.Add(time.Minute)

	inactive := promo(3, false, now)

	got := ActivePromotion([]models.Promotion{expired, future, inactive}, now)
	assert.Nil(t, got)
}

func TestActivePromotionMostRecentWins(t *testing.T) {
	now := time.Now()

	older := promo(1, true, now.Add(-2*time.Hour))
	newer := promo(2, true, now.Add(-time.Hour))

	got := ActivePromotion([]models.Promotion{older, newer}, now)
	assert.NotNil(t, got)
	assert.Equal(t, int64(2), got.ID)

	// Same created_at: the higher id wins
	tied := promo(3, true, newer.CreatedAt)
	got = ActivePromotion([]models.Promotion{newer, tied}, now)
	assert.NotNil(t, got)
	assert.Equal(t, int64(3), got.ID)
}

func TestPromotionPrice(t *testing.T) {
	p := promo(1, true, time.Now())
	p.DiscountType = models.DiscountFixed
	p.Value = d("15")

	got := PromotionPrice(d("100"), &p)
	assert.True(t, got.Equal(d("85")), "got %s", got)

	got = PromotionPrice(d("100"), nil)
	assert.True(t, got.Equal(d("100")), "got %s", got)
}

func TestCouponDiscount(t *testing.T) {
	c := &models.Coupon{DiscountType: models.DiscountPercentage, Value: d("10")}
	got := CouponDiscount(d("500"), c)
	assert.True(t, got.Equal(d("50")), "got %s", got)

	// Fixed coupon bigger than the subtotal is capped
	c = &models.Coupon{DiscountType: models.DiscountFixed, Value: d("800")}
	got = CouponDiscount(d("500"), c)
	assert.True(t, got.Equal(d("500")), "got %s", got)
}

func TestCouponUsable(t *testing.T) {
	now := time.Now()
	c := &models.Coupon{
		Active:   true,
		StartsAt: now.Add(-time.Hour),
		EndsAt:   now.Add(time.Hour),
	}
	assert.True(t, CouponUsable(c, now))

	c.Active = false
	assert.False(t, CouponUsable(c, now))

	c.Active = true
	assert.False(t, CouponUsable(c, c.EndsAt.Add(time.Minute)))
	assert.False(t, CouponUsable(c, c.StartsAt.Add(-time.Minute)))
}
