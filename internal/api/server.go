package api

import (
	"fmt"
	"log"

	"mercadito/internal/cache"
	"mercadito/internal/config"
	"mercadito/internal/database"
	"mercadito/internal/external"
	"mercadito/internal/handlers"
	"mercadito/internal/messaging"
	"mercadito/internal/metrics"
	"mercadito/internal/middleware"
	"mercadito/internal/repository"
	"mercadito/internal/search"
	"mercadito/internal/service"

	"github.com/gin-gonic/gin"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
	repos    *repository.Repositories
}

// NewServer создает новый экземпляр сервера
func NewServer(cfg *config.Config) *Server {
	// Устанавливаем режим Gin
	gin.SetMode(cfg.GinMode)

	// Подключаемся к базе данных
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Запускаем миграции
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Подключаемся к NATS
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}

	// Valkey и Elasticsearch опциональны: без них сервис работает,
	// но без кэша каталога и полнотекстового поиска
	var valkeyClient *cache.ValkeyClient
	if cfg.Valkey.Addr != "" {
		valkeyClient, err = cache.NewValkeyClient(cfg.Valkey)
		if err != nil {
			log.Printf("Valkey unavailable, continuing without cache: %v", err)
			valkeyClient = nil
		}
	}

	var esClient *search.ElasticsearchClient
	if cfg.Elasticsearch.URL != "" {
		esClient, err = search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			log.Printf("Elasticsearch unavailable, continuing without search: %v", err)
			esClient = nil
		}
	}

	// Создаем клиенты платежных шлюзов
	mpClient := external.NewMercadoPagoClient(cfg.MercadoPago)
	paypalClient := external.NewPayPalClient(cfg.PayPal)

	// Создаем репозитории
	repos := repository.NewRepositories(db)

	// Создаем сервисы
	services := service.NewServices(repos, natsClient, mpClient, paypalClient, esClient, valkeyClient, cfg.BaseURL)

	// Создаем роутер
	router := gin.New()

	// Применяем middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())
	router.Use(metrics.Middleware())

	// Создаем сервер
	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
		repos:    repos,
	}

	// Настраиваем роуты
	server.setupRoutes()

	return server
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.valkey)

	// Публичные роуты: каталог, события, магазин ebooks, регистрация
	s.router.GET("/health", h.HealthCheck)
	s.router.GET("/metrics", metrics.Handler())

	s.router.POST("/api/registro", h.Register)

	s.router.GET("/api/tienda", h.ListProducts)
	s.router.GET("/api/tienda/:id", h.GetProduct)
	s.router.GET("/api/categorias", h.ListCategories)

	s.router.GET("/api/eventos", h.ListEvents)
	s.router.GET("/api/eventos/:id", h.GetEvent)
	s.router.POST("/api/reservas", middleware.OptionalBasicAuth(s.repos.Users, s.valkey), h.Reserve)

	s.router.GET("/api/ebooks", h.ListEbooks)
	s.router.GET("/api/ebooks/:id", h.GetEbook)
	s.router.GET("/ebooks/descargar/:code", h.DownloadEbook)

	// Возвраты покупателя и webhooks платежных шлюзов
	s.router.POST("/webhooks/mercadopago", h.OnMercadoPagoWebhook)
	s.router.POST("/webhooks/paypal", h.OnPayPalWebhook)
	s.router.GET("/pago-exitoso", h.OnMercadoPagoReturn)
	s.router.GET("/pago-pendiente", h.OnMercadoPagoReturn)
	s.router.GET("/pago-error", h.OnMercadoPagoReturn)
	s.router.GET("/paypal/pago-exitoso", h.OnPayPalReturn)
	s.router.GET("/paypal/cancelar", h.OnPayPalCancel)

	// Роуты, требующие Basic Auth
	authed := s.router.Group("/api")
	authed.Use(middleware.BasicAuth(s.repos.Users, s.valkey))
	{
		authed.GET("/perfil", h.GetProfile)

		authed.GET("/direcciones", h.ListAddresses)
		authed.POST("/direcciones", h.CreateAddress)
		authed.DELETE("/direcciones/:id", h.DeleteAddress)

		authed.GET("/carrito", h.GetCart)
		authed.POST("/carrito", h.AddCartItem)
		authed.PUT("/carrito/:productId", h.UpdateCartItem)
		authed.DELETE("/carrito/:productId", h.RemoveCartItem)

		authed.POST("/checkout", h.Checkout)
		authed.GET("/pedidos", h.ListOrders)
		authed.GET("/pedidos/:id", h.GetOrder)

		authed.GET("/reservas", h.ListReservations)
		authed.GET("/reservas/:id", h.GetReservation)

		authed.POST("/ebooks/:id/comprar", h.PurchaseEbook)
		authed.GET("/mis-ebooks", h.ListEbookPurchases)
	}

	// Админские роуты
	admin := s.router.Group("/api/admin")
	admin.Use(middleware.BasicAuth(s.repos.Users, s.valkey))
	admin.Use(middleware.RequireAdmin(s.repos.Users))
	{
		admin.POST("/productos", h.AdminCreateProduct)
		admin.PUT("/productos/:id", h.AdminUpdateProduct)
		admin.DELETE("/productos/:id", h.AdminDeleteProduct)
		admin.POST("/productos/:id/imagenes", h.AdminAddProductImage)
		admin.DELETE("/imagenes/:id", h.AdminDeleteProductImage)

		admin.POST("/categorias", h.AdminCreateCategory)
		admin.PUT("/categorias/:id", h.AdminUpdateCategory)
		admin.DELETE("/categorias/:id", h.AdminDeleteCategory)

		admin.GET("/promociones", h.AdminListPromotions)
		admin.POST("/promociones", h.AdminCreatePromotion)
		admin.PUT("/promociones/:id", h.AdminUpdatePromotion)
		admin.DELETE("/promociones/:id", h.AdminDeletePromotion)

		admin.GET("/cupones", h.AdminListCoupons)
		admin.POST("/cupones", h.AdminCreateCoupon)
		admin.PUT("/cupones/:id", h.AdminUpdateCoupon)
		admin.DELETE("/cupones/:id", h.AdminDeleteCoupon)

		admin.GET("/envios", h.AdminListShippingRates)
		admin.POST("/envios", h.AdminCreateShippingRate)
		admin.PUT("/envios/:id", h.AdminUpdateShippingRate)
		admin.DELETE("/envios/:id", h.AdminDeleteShippingRate)

		admin.POST("/pedidos/:id/enviar", h.AdminMarkOrderShipped)

		admin.POST("/eventos", h.AdminCreateEvent)
		admin.PUT("/eventos/:id", h.AdminUpdateEvent)
		admin.DELETE("/eventos/:id", h.AdminDeleteEvent)
		admin.POST("/eventos/:id/fechas", h.AdminAddEventDate)
		admin.DELETE("/fechas/:id", h.AdminDeleteEventDate)
		admin.POST("/fechas/:id/turnos", h.AdminAddTimeSlot)
		admin.PUT("/turnos/:id", h.AdminUpdateTimeSlot)
		admin.DELETE("/turnos/:id", h.AdminDeleteTimeSlot)

		admin.GET("/ebooks", h.AdminListEbooks)
		admin.POST("/ebooks", h.AdminCreateEbook)
		admin.PUT("/ebooks/:id", h.AdminUpdateEbook)
		admin.DELETE("/ebooks/:id", h.AdminDeleteEbook)
	}
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Printf("Error closing NATS connection: %v", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			log.Printf("Error closing Valkey connection: %v", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
			return err
		}
	}

	return nil
}
