package handlers

import (
	"net/http"

	"mercadito/internal/models"

	"github.com/gin-gonic/gin"
)

// Cart and checkout handlers

// GetCart - GET /api/carrito
// Получить корзину текущего пользователя
func (h *Handlers) GetCart(c *gin.Context) {
	response, err := h.services.Cart.Get(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to load cart")
		return
	}

	c.JSON(http.StatusOK, response)
}

// AddCartItem - POST /api/carrito
// Добавить товар в корзину
func (h *Handlers) AddCartItem(c *gin.Context) {
	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Cart.AddItem(c.Request.Context(), userID(c), &req)
	if err != nil {
		respondError(c, err, "Failed to add cart item")
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateCartItem - PUT /api/carrito/:productId
// Изменить количество позиции. Нулевое количество удаляет позицию
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Cart.SetQuantity(c.Request.Context(), userID(c), productID, req.Quantity)
	if err != nil {
		respondError(c, err, "Failed to update cart item")
		return
	}

	c.JSON(http.StatusOK, response)
}

// RemoveCartItem - DELETE /api/carrito/:productId
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}

	response, err := h.services.Cart.RemoveItem(c.Request.Context(), userID(c), productID)
	if err != nil {
		respondError(c, err, "Failed to remove cart item")
		return
	}

	c.JSON(http.StatusOK, response)
}

// Checkout - POST /api/checkout
// Оформить заказ и получить ссылку на оплату
func (h *Handlers) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Checkout.Checkout(c.Request.Context(), userID(c), &req)
	if err != nil {
		respondError(c, err, "Failed to checkout")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListOrders - GET /api/pedidos
// Получить заказы текущего пользователя
func (h *Handlers) ListOrders(c *gin.Context) {
	orders, err := h.services.Checkout.Orders(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to list orders")
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrder - GET /api/pedidos/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.services.Checkout.Order(c.Request.Context(), userID(c), id)
	if err != nil {
		respondError(c, err, "Failed to load order")
		return
	}

	c.JSON(http.StatusOK, order)
}
