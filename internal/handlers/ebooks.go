package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Ebook handlers

// ListEbooks - GET /api/ebooks
// Получить страницу магазина электронных книг
func (h *Handlers) ListEbooks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1"})
		return
	}

	var categoryID *int64
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category_id must be a positive integer"})
			return
		}
		categoryID = &id
	}

	response, err := h.services.Ebooks.List(c.Request.Context(), categoryID, page)
	if err != nil {
		respondError(c, err, "Failed to list ebooks")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetEbook - GET /api/ebooks/:id
func (h *Handlers) GetEbook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ebook, err := h.services.Ebooks.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load ebook")
		return
	}

	c.JSON(http.StatusOK, ebook)
}

// PurchaseEbook - POST /api/ebooks/:id/comprar
// Начать покупку книги и получить ссылку на одобрение PayPal
func (h *Handlers) PurchaseEbook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	response, err := h.services.Ebooks.Purchase(c.Request.Context(), userID(c), id)
	if err != nil {
		respondError(c, err, "Failed to start ebook purchase")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// DownloadEbook - GET /ebooks/descargar/:code
// Скачать книгу по одноразовому коду. Код выдаётся только после оплаты
func (h *Handlers) DownloadEbook(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	_, fileURL, err := h.services.Ebooks.Download(c.Request.Context(), code)
	if err != nil {
		respondError(c, err, "Failed to resolve download")
		return
	}

	c.Redirect(http.StatusFound, fileURL)
}

// ListEbookPurchases - GET /api/mis-ebooks
// Получить покупки текущего пользователя
func (h *Handlers) ListEbookPurchases(c *gin.Context) {
	purchases, err := h.services.Ebooks.Purchases(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to list ebook purchases")
		return
	}

	c.JSON(http.StatusOK, purchases)
}
