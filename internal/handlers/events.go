package handlers

import (
	"net/http"
	"strconv"

	"mercadito/internal/models"

	"github.com/gin-gonic/gin"
)

// Events and reservations handlers

// ListEvents - GET /api/eventos
// Получить список событий
func (h *Handlers) ListEvents(c *gin.Context) {
	var categoryID *int64
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category_id must be a positive integer"})
			return
		}
		categoryID = &id
	}

	events, err := h.services.Events.List(c.Request.Context(), categoryID)
	if err != nil {
		respondError(c, err, "Failed to list events")
		return
	}

	c.JSON(http.StatusOK, events)
}

// GetEvent - GET /api/eventos/:id
// Получить событие с датами, слотами и остатком мест
func (h *Handlers) GetEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	response, err := h.services.Events.Detail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load event")
		return
	}

	c.JSON(http.StatusOK, response)
}

// Reserve - POST /api/reservas
// Создать резервацию и получить ссылку на оплату.
// Доступно и гостям: контактные данные обязательны, аккаунт нет.
func (h *Handlers) Reserve(c *gin.Context) {
	var req models.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var reservedBy *int64
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(int64); ok {
			reservedBy = &id
		}
	}

	response, err := h.services.Reservations.Reserve(c.Request.Context(), reservedBy, &req)
	if err != nil {
		respondError(c, err, "Failed to create reservation")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListReservations - GET /api/reservas
// Получить резервации текущего пользователя
func (h *Handlers) ListReservations(c *gin.Context) {
	reservations, err := h.services.Reservations.ListForUser(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to list reservations")
		return
	}

	c.JSON(http.StatusOK, reservations)
}

// GetReservation - GET /api/reservas/:id
func (h *Handlers) GetReservation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	reservation, err := h.services.Reservations.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		respondError(c, err, "Failed to load reservation")
		return
	}

	c.JSON(http.StatusOK, reservation)
}
