package service

import (
	"mercadito/internal/cache"
	"mercadito/internal/external"
	"mercadito/internal/messaging"
	"mercadito/internal/repository"
	"mercadito/internal/search"
)

type Services struct {
	Users        *UserService
	Addresses    *AddressService
	Categories   *CategoryService
	Catalog      *CatalogService
	Cart         *CartService
	Checkout     *CheckoutService
	Events       *EventService
	Reservations *ReservationService
	Ebooks       *EbookService
	Reconcile    *ReconcileService
	Admin        *AdminService
}

func NewServices(repos *repository.Repositories, natsClient *messaging.NATSClient, mpClient *external.MercadoPagoClient, paypalClient *external.PayPalClient, esClient *search.ElasticsearchClient, valkeyClient *cache.ValkeyClient, baseURL string) *Services {
	categoryService := NewCategoryService(repos.Categories)
	catalogService := NewCatalogService(repos.Products, repos.Promotions, categoryService, esClient)
	cartService := NewCartService(repos.Carts, repos.Products)
	checkoutService := NewCheckoutService(repos.Carts, repos.Promotions, repos.Coupons, repos.Addresses, repos.Shipping, repos.Orders, mpClient, baseURL)
	eventService := NewEventService(repos.Events)
	reservationService := NewReservationService(repos.Reservations, mpClient, baseURL)
	ebookService := NewEbookService(repos.Ebooks, paypalClient, baseURL)
	reconcileService := NewReconcileService(repos.Orders, repos.Reservations, repos.Ebooks, mpClient, paypalClient, natsClient)

	return &Services{
		Users:        NewUserService(repos.Users, valkeyClient),
		Addresses:    NewAddressService(repos.Addresses),
		Categories:   categoryService,
		Catalog:      catalogService,
		Cart:         cartService,
		Checkout:     checkoutService,
		Events:       eventService,
		Reservations: reservationService,
		Ebooks:       ebookService,
		Reconcile:    reconcileService,
		Admin:        NewAdminService(repos, esClient, valkeyClient),
	}
}
