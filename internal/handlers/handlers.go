package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"mercadito/internal/cache"
	apperrors "mercadito/internal/errors"
	"mercadito/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services     *service.Services
	valkeyClient *cache.ValkeyClient
}

func NewHandlers(services *service.Services, valkeyClient *cache.ValkeyClient) *Handlers {
	return &Handlers{
		services:     services,
		valkeyClient: valkeyClient,
	}
}

// userID reads the authenticated user from the gin context.
// BasicAuth middleware guarantees it is present on protected routes.
func userID(c *gin.Context) int64 {
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

// respondError maps known domain errors to HTTP statuses.
// Everything unexpected is logged and returned as a 500 with a generic message.
func respondError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, apperrors.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email is already registered"})
	case errors.Is(err, apperrors.ErrCapacityExceeded):
		c.JSON(http.StatusConflict, gin.H{"error": "not enough seats remaining"})
	case errors.Is(err, apperrors.ErrOutOfStock):
		c.JSON(http.StatusConflict, gin.H{"error": "not enough stock"})
	case errors.Is(err, apperrors.ErrAlreadyOwned):
		c.JSON(http.StatusConflict, gin.H{"error": "ebook already purchased"})
	case errors.Is(err, apperrors.ErrCouponNotFound):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "coupon code does not exist"})
	case errors.Is(err, apperrors.ErrCouponInvalid):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "coupon is not valid"})
	case errors.Is(err, apperrors.ErrCouponAlreadyUsed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "coupon was already used"})
	case errors.Is(err, apperrors.ErrCartEmpty):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cart is empty"})
	case errors.Is(err, apperrors.ErrCycle):
		c.JSON(http.StatusConflict, gin.H{"error": "category reparenting would create a cycle"})
	case errors.Is(err, apperrors.ErrHasChildren):
		c.JSON(http.StatusConflict, gin.H{"error": "category still has subcategories"})
	case errors.Is(err, apperrors.ErrHasDependents):
		c.JSON(http.StatusConflict, gin.H{"error": "entity is still referenced"})
	case errors.Is(err, apperrors.ErrGatewayUnavailable):
		slog.Error(msg, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable"})
	default:
		slog.Error(msg, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// HealthCheck - GET /health
// Проверка состояния сервиса
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
