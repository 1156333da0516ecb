package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Catalog handlers

// ListProducts - GET /api/tienda
// Получить страницу каталога товаров
func (h *Handlers) ListProducts(c *gin.Context) {
	query := c.Query("query")

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

	// Search results are not cached, only plain catalog pages
	shouldCache := query == "" && h.valkeyClient != nil
	cacheKey := ""
	if shouldCache {
		cacheKey = fmt.Sprintf("page:%d", page)
		if categoryID != nil {
			cacheKey = fmt.Sprintf("cat:%d:page:%d", *categoryID, page)
		}
		if rawJSON, ok := h.valkeyClient.GetCatalogPage(c.Request.Context(), cacheKey); ok {
			c.Data(http.StatusOK, "application/json", rawJSON)
			return
		}
	}

	response, err := h.services.Catalog.List(c.Request.Context(), query, categoryID, page)
	if err != nil {
		respondError(c, err, "Failed to list products")
		return
	}

	if shouldCache {
		if payload, err := json.Marshal(response); err == nil {
			if err := h.valkeyClient.StoreCatalogPage(c.Request.Context(), cacheKey, payload); err != nil {
				slog.Warn("Failed to cache catalog page", "key", cacheKey, "error", err)
			}
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetProduct - GET /api/tienda/:id
// Получить карточку товара
func (h *Handlers) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	response, err := h.services.Catalog.Detail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load product")
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListCategories - GET /api/categorias?kind=product
// Получить дерево категорий
func (h *Handlers) ListCategories(c *gin.Context) {
	kind := c.DefaultQuery("kind", "product")
	if kind != "product" && kind != "event" && kind != "ebook" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be one of product, event, ebook"})
		return
	}

	tree, err := h.services.Categories.Tree(c.Request.Context(), kind)
	if err != nil {
		respondError(c, err, "Failed to list categories")
		return
	}

	c.JSON(http.StatusOK, tree)
}
