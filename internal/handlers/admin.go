package handlers

import (
	"net/http"

	"mercadito/internal/models"

	"github.com/gin-gonic/gin"
)

// Admin handlers. All routes below require the admin role.

// Products

// AdminCreateProduct - POST /api/admin/productos
func (h *Handlers) AdminCreateProduct(c *gin.Context) {
	var req models.SaveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.services.Admin.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// AdminUpdateProduct - PUT /api/admin/productos/:id
func (h *Handlers) AdminUpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.SaveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.services.Admin.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// AdminDeleteProduct - DELETE /api/admin/productos/:id
func (h *Handlers) AdminDeleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Admin.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete product")
		return
	}

	c.Status(http.StatusNoContent)
}

// AdminAddProductImage - POST /api/admin/productos/:id/imagenes
func (h *Handlers) AdminAddProductImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		URL      string `json:"url" binding:"required"`
		Position int    `json:"position"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	image, err := h.services.Admin.AddProductImage(c.Request.Context(), id, req.URL, req.Position)
	if err != nil {
		respondError(c, err, "Failed to add product image")
		return
	}

	c.JSON(http.StatusCreated, image)
}

// AdminDeleteProductImage - DELETE /api/admin/imagenes/:id
func (h *Handlers) AdminDeleteProductImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Admin.DeleteProductImage(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete product image")
		return
	}

	c.Status(http.StatusNoContent)
}

// Categories

func categoryKind(c *gin.Context) (string, bool) {
	kind := c.DefaultQuery("kind", "product")
	if kind != "product" && kind != "event" && kind != "ebook" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be one of product, event, ebook"})
		return "", false
	}
	return kind, true
}

// AdminCreateCategory - POST /api/admin/categorias?kind=product
func (h *Handlers) AdminCreateCategory(c *gin.Context) {
	kind, ok := categoryKind(c)
	if !ok {
		return
	}

	var req models.SaveCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.services.Categories.Create(c.Request.Context(), kind, &req)
	if err != nil {
		respondError(c, err, "Failed to create category")
		return
	}

	c.JSON(http.StatusCreated, category)
}

// AdminUpdateCategory - PUT /api/admin/categorias/:id?kind=product
func (h *Handlers) AdminUpdateCategory(c *gin.Context) {
	kind, ok := categoryKind(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.SaveCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.services.Categories.Update(c.Request.Context(), kind, id, &req)
	if err != nil {
		respondError(c, err, "Failed to update category")
		return
	}

	c.JSON(http.StatusOK, category)
}

// AdminDeleteCategory - DELETE /api/admin/categorias/:id?kind=product
func (h *Handlers) AdminDeleteCategory(c *gin.Context) {
	kind, ok := categoryKind(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Categories.Delete(c.Request.Context(), kind, id); err != nil {
		respondError(c, err, "Failed to delete category")
		return
	}

	c.Status(http.StatusNoContent)
}

// Promotions

// AdminListPromotions - GET /api/admin/promociones
func (h *Handlers) AdminListPromotions(c *gin.Context) {
	promotions, err := h.services.Admin.ListPromotions(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list promotions")
		return
	}

	c.JSON(http.StatusOK, promotions)
}

// AdminCreatePromotion - POST /api/admin/promociones
func (h *Handlers) AdminCreatePromotion(c *gin.Context) {
	var req models.SavePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	promotion, err := h.services.Admin.CreatePromotion(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create promotion")
		return
	}

	c.JSON(http.StatusCreated, promotion)
}

// AdminUpdatePromotion - PUT /api/admin/promociones/:id
func (h *Handlers) AdminUpdatePromotion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.SavePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	promotion, err := h.services.Admin.UpdatePromotion(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update promotion")
		return
	}

	c.JSON(http.StatusOK, promotion)
}

// AdminDeletePromotion - DELETE /api/admin/promociones/:id
func (h *Handlers) AdminDeletePromotion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Admin.DeletePromotion(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete promotion")
		return
	}

	c.Status(http.StatusNoContent)
}

// Coupons

// AdminListCoupons - GET /api/admin/cupones
func (h *Handlers) AdminListCoupons(c *gin.Context) {
	coupons, err := h.services.Admin.ListCoupons(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list coupons")
		return
	}

	c.JSON(http.StatusOK, coupons)
}

// AdminCreateCoupon - POST /api/admin/cupones
func (h *Handlers) AdminCreateCoupon(c *gin.Context) {
	var req models.SaveCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coupon, err := h.services.Admin.CreateCoupon(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create coupon")
		return
	}

	c.JSON(http.StatusCreated, coupon)
}

// AdminUpdateCoupon - PUT /api/admin/cupones/:id
func (h *Handlers) AdminUpdateCoupon(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.SaveCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coupon, err := h.services.Admin.UpdateCoupon(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update coupon")
		return
	}

	c.JSON(http.StatusOK, coupon)
}

// AdminDeleteCoupon - DELETE /api/admin/cupones/:id
func (h *Handlers) AdminDeleteCoupon(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Admin.DeleteCoupon(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete coupon")
		return
	}

	c.Status(http.StatusNoContent)
}

// Shipping rates

// AdminListShippingRates - GET /api/admin/envios
func (h *Handlers) AdminListShippingRates(c *gin.Context) {
	rates, err := h.services.Admin.ListShippingRates(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list shipping rates")
		return
	}

	c.JSON(http.StatusOK, rates)
}

// AdminCreateShippingRate - POST /api/admin/envios
func (h *Handlers) AdminCreateShippingRate(c *gin.Context) {
	var req models.SaveShippingRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rate, err := h.services.Admin.CreateShippingRate(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create shipping rate")
		return
	}

	c.JSON(http.StatusCreated, rate)
}

// AdminUpdateShippingRate - PUT /api/admin/envios/:id
func (h *Handlers) AdminUpdateShippingRate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.SaveShippingRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rate, err := h.services.Admin.UpdateShippingRate(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update shipping rate")
		return
	}

	c.JSON(http.StatusOK, rate)
}

// AdminDeleteShippingRate - DELETE /api/admin/envios/:id
func (h *Handlers) AdminDeleteShippingRate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Admin.DeleteShippingRate(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete shipping rate")
		return
	}

	c.Status(http.StatusNoContent)
}

// Orders

// AdminMarkOrderShipped - POST /api/admin/pedidos/:id/enviar
// Отметить оплаченный заказ как отправленный
func (h *Handlers) AdminMarkOrderShipped(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Admin.MarkOrderShipped(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to mark order shipped")
		return
	}

	c.Status(http.StatusOK)
}

// Events

// AdminCreateEvent - POST /api/admin/eventos
func (h *Handlers) AdminCreateEvent(c *gin.Context) {
	var req models.SaveEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.services.Admin.CreateEvent(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create event")
		return
	}

	c.JSON(http.StatusCreated, event)
}

// AdminUpdateEvent - PUT /api/admin/eventos/:id
func (h *Handlers) AdminUpdateEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.SaveEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.services.Admin.UpdateEvent(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update event")
		return
	}

	c.JSON(http.StatusOK, event)
}

// AdminDeleteEvent - DELETE /api/admin/eventos/:id
func (h *Handlers) AdminDeleteEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Admin.DeleteEvent(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete event")
		return
	}

	c.Status(http.StatusNoContent)
}

// AdminAddEventDate - POST /api/admin/eventos/:id/fechas
func (h *Handlers) AdminAddEventDate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.SaveEventDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := h.services.Admin.AddEventDate(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to add event date")
		return
	}

	c.JSON(http.StatusCreated, date)
}

// AdminDeleteEventDate - DELETE /api/admin/fechas/:id
func (h *Handlers) AdminDeleteEventDate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Admin.DeleteEventDate(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete event date")
		return
	}

	c.Status(http.StatusNoContent)
}

// AdminAddTimeSlot - POST /api/admin/fechas/:id/turnos
func (h *Handlers) AdminAddTimeSlot(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.SaveTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := h.services.Admin.AddTimeSlot(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to add time slot")
		return
	}

	c.JSON(http.StatusCreated, slot)
}

// AdminUpdateTimeSlot - PUT /api/admin/turnos/:id
func (h *Handlers) AdminUpdateTimeSlot(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.SaveTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := h.services.Admin.UpdateTimeSlot(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update time slot")
		return
	}

	c.JSON(http.StatusOK, slot)
}

// AdminDeleteTimeSlot - DELETE /api/admin/turnos/:id
func (h *Handlers) AdminDeleteTimeSlot(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Admin.DeleteTimeSlot(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete time slot")
		return
	}

	c.Status(http.StatusNoContent)
}

// Ebooks

// AdminListEbooks - GET /api/admin/ebooks
// Список включает неактивные книги
func (h *Handlers) AdminListEbooks(c *gin.Context) {
	ebooks, err := h.services.Admin.ListEbooks(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list ebooks")
		return
	}

	c.JSON(http.StatusOK, ebooks)
}

// AdminCreateEbook - POST /api/admin/ebooks
func (h *Handlers) AdminCreateEbook(c *gin.Context) {
	var req models.SaveEbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ebook, err := h.services.Admin.CreateEbook(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create ebook")
		return
	}

	c.JSON(http.StatusCreated, ebook)
}

// AdminUpdateEbook - PUT /api/admin/ebooks/:id
func (h *Handlers) AdminUpdateEbook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.SaveEbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ebook, err := h.services.Admin.UpdateEbook(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update ebook")
		return
	}

	c.JSON(http.StatusOK, ebook)
}

// AdminDeleteEbook - DELETE /api/admin/ebooks/:id
func (h *Handlers) AdminDeleteEbook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Admin.DeleteEbook(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete ebook")
		return
	}

	c.Status(http.StatusNoContent)
}
