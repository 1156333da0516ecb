package handlers

import (
	"net/http"

	"mercadito/internal/models"

	"github.com/gin-gonic/gin"
)

// Users handlers

// Register - POST /api/registro
// Зарегистрировать пользователя
func (h *Handlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Users.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to register user")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetProfile - GET /api/perfil
// Получить профиль текущего пользователя
func (h *Handlers) GetProfile(c *gin.Context) {
	user, err := h.services.Users.Get(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to load profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    user.UserID,
		"name":  user.Name,
		"email": user.Email,
		"phone": user.Phone,
	})
}

// Addresses handlers

// ListAddresses - GET /api/direcciones
func (h *Handlers) ListAddresses(c *gin.Context) {
	addresses, err := h.services.Addresses.ListForUser(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to list addresses")
		return
	}

	c.JSON(http.StatusOK, addresses)
}

// CreateAddress - POST /api/direcciones
func (h *Handlers) CreateAddress(c *gin.Context) {
	var req models.SaveAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	address, err := h.services.Addresses.Create(c.Request.Context(), userID(c), &req)
	if err != nil {
		respondError(c, err, "Failed to create address")
		return
	}

	c.JSON(http.StatusCreated, address)
}

// DeleteAddress - DELETE /api/direcciones/:id
func (h *Handlers) DeleteAddress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Addresses.Delete(c.Request.Context(), userID(c), id); err != nil {
		respondError(c, err, "Failed to delete address")
		return
	}

	c.Status(http.StatusNoContent)
}
