package repository

import (
	"errors"

	"github.com/lib/pq"

	"mercadito/internal/database"
)

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

type Repositories struct {
	Users        *UserRepository
	Categories   *CategoryRepository
	Products     *ProductRepository
	Promotions   *PromotionRepository
	Coupons      *CouponRepository
	Addresses    *AddressRepository
	Shipping     *ShippingRepository
	Carts        *CartRepository
	Orders       *OrderRepository
	Events       *EventRepository
	Reservations *ReservationRepository
	Ebooks       *EbookRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(db),
		Categories:   NewCategoryRepository(db),
		Products:     NewProductRepository(db),
		Promotions:   NewPromotionRepository(db),
		Coupons:      NewCouponRepository(db),
		Addresses:    NewAddressRepository(db),
		Shipping:     NewShippingRepository(db),
		Carts:        NewCartRepository(db),
		Orders:       NewOrderRepository(db),
		Events:       NewEventRepository(db),
		Reservations: NewReservationRepository(db),
		Ebooks:       NewEbookRepository(db),
	}
}
