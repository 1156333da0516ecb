package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	apperrors "mercadito/internal/errors"
	"mercadito/internal/logger"
	"mercadito/internal/models"
	"mercadito/internal/pricing"
	"mercadito/internal/repository"
	"mercadito/internal/search"
)

const catalogPageSize = 20

// CatalogService serves the public storefront. Text search goes through
// Elasticsearch when it is configured; category filters expand to the full
// subtree so a parent category lists everything beneath it.
type CatalogService struct {
	products   *repository.ProductRepository
	promotions *repository.PromotionRepository
	categories *CategoryService
	es         *search.ElasticsearchClient
}

func NewCatalogService(products *repository.ProductRepository, promotions *repository.PromotionRepository, categories *CategoryService, es *search.ElasticsearchClient) *CatalogService {
	return &CatalogService{
		products:   products,
		promotions: promotions,
		categories: categories,
		es:         es,
	}
}

func (s *CatalogService) List(ctx context.Context, query string, categoryID *int64, page int) (*models.ProductListResponse, error) {
	if page < 1 {
		page = 1
	}

	var categoryIDs []int64
	if categoryID != nil {
		ids, err := s.categories.SubtreeIDs(ctx, models.CategoryProduct, *categoryID)
		if err != nil {
			return nil, err
		}
		categoryIDs = ids
	}

	if s.es != nil && query != "" {
		resp, err := s.listFromSearch(ctx, query, categoryID, page)
		if err == nil {
			return resp, nil
		}
		// Search being down should not take the catalog down with it
		logger.WithContext(ctx).Warn("Elasticsearch query failed, falling back to database", "error", err)
	}

	products, total, err := s.products.List(ctx, query, categoryIDs, page, catalogPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	items := make([]models.ProductListItem, len(products))
	for i, p := range products {
		final, onSale, err := s.finalPrice(ctx, p.ID, p.Price)
		if err != nil {
			return nil, err
		}

		items[i] = models.ProductListItem{
			ID:         p.ID,
			Name:       p.Name,
			Price:      p.Price,
			FinalPrice: final,
			OnSale:     onSale,
			Stock:      p.Stock,
			CategoryID: p.CategoryID,
		}
	}

	return &models.ProductListResponse{
		Products:   items,
		Page:       page,
		TotalPages: totalPages(total, catalogPageSize),
		Total:      total,
	}, nil
}

func (s *CatalogService) listFromSearch(ctx context.Context, query string, categoryID *int64, page int) (*models.ProductListResponse, error) {
	docs, total, err := s.es.Search(ctx, query, categoryID, page, catalogPageSize)
	if err != nil {
		return nil, err
	}

	items := make([]models.ProductListItem, 0, len(docs))
	for _, doc := range docs {
		final, onSale, err := s.finalPrice(ctx, doc.ID, doc.Price)
		if err != nil {
			return nil, err
		}

		var catID int64
		if doc.CategoryID != nil {
			catID = *doc.CategoryID
		}

		items = append(items, models.ProductListItem{
			ID:         doc.ID,
			Name:       doc.Name,
			Price:      doc.Price,
			FinalPrice: final,
			OnSale:     onSale,
			CategoryID: catID,
		})
	}

	return &models.ProductListResponse{
		Products:   items,
		Page:       page,
		TotalPages: totalPages(total, catalogPageSize),
		Total:      total,
	}, nil
}

func (s *CatalogService) finalPrice(ctx context.Context, productID int64, price decimal.Decimal) (decimal.Decimal, bool, error) {
	promos, err := s.promotions.ActiveForProduct(ctx, productID, time.Now())
	if err != nil {
		return price, false, fmt.Errorf("failed to get promotions: %w", err)
	}

	promo := pricing.ActivePromotion(promos, time.Now())
	if promo == nil {
		return price, false, nil
	}

	return pricing.PromotionPrice(price, promo), true, nil
}

func (s *CatalogService) Detail(ctx context.Context, id int64) (*models.ProductDetailResponse, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, apperrors.ErrNotFound
	}

	images, err := s.products.Images(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get images: %w", err)
	}

	promos, err := s.promotions.ActiveForProduct(ctx, id, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to get promotions: %w", err)
	}

	promo := pricing.ActivePromotion(promos, time.Now())
	final := pricing.PromotionPrice(product.Price, promo)

	return &models.ProductDetailResponse{
		Product:    *product,
		Images:     images,
		FinalPrice: final,
		Promotion:  promo,
	}, nil
}

func totalPages(total int64, pageSize int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
