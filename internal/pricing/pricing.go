// Package pricing holds the discount math shared by the catalog and the
// checkout aggregator. Everything here is pure: callers fetch the records,
// this package only computes.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"mercadito/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Discount applies a percentage or fixed discount to price. The result is
// clamped at zero, never negative.
func Discount(price decimal.Decimal, discountType string, value decimal.Decimal) decimal.Decimal {
	var discounted decimal.Decimal
	switch discountType {
	case models.DiscountPercentage:
		discounted = price.Sub(price.Mul(value).Div(hundred))
	case models.DiscountFixed:
		discounted = price.Sub(value)
	default:
		return price
	}

	if discounted.IsNegative() {
		return decimal.Zero
	}
	return discounted
}

// ActivePromotion picks the single applicable promotion out of the ones
// linked to a product: active, with now inside [starts_at, ends_at]. When
// several qualify the most recently created wins; ties on created_at fall
// back to the highest id.
func ActivePromotion(promos []models.Promotion, now time.Time) *models.Promotion {
	var best *models.Promotion
	for i := range promos {
		p := &promos[i]
		if !p.Active || now.Before(p.StartsAt) || now.After(p.EndsAt) {
			continue
		}
		if best == nil || p.CreatedAt.After(best.CreatedAt) ||
			(p.CreatedAt.Equal(best.CreatedAt) && p.ID > best.ID) {
			best = p
		}
	}
	return best
}

// PromotionPrice resolves the final unit price of a product under an
// optional promotion.
func PromotionPrice(price decimal.Decimal, promo *models.Promotion) decimal.Decimal {
	if promo == nil {
		return price
	}
	return Discount(price, promo.DiscountType, promo.Value)
}

// CouponDiscount computes the amount a coupon takes off a subtotal, capped
// so the total never goes negative.
func CouponDiscount(subtotal decimal.Decimal, c *models.Coupon) decimal.Decimal {
	discounted := Discount(subtotal, c.DiscountType, c.Value)
	return subtotal.Sub(discounted)
}

// CouponUsable reports whether a coupon is active and now falls inside its
// validity window.
func CouponUsable(c *models.Coupon, now time.Time) bool {
	return c.Active && !now.Before(c.StartsAt) && !now.After(c.EndsAt)
}
