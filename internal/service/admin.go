package service

import (
	"context"
	"fmt"

	"mercadito/internal/cache"
	apperrors "mercadito/internal/errors"
	"mercadito/internal/logger"
	"mercadito/internal/models"
	"mercadito/internal/repository"
	"mercadito/internal/search"
)

type adminProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id int64) error
	HasOrderReferences(ctx context.Context, id int64) (bool, error)
	ImageCount(ctx context.Context, productID int64) (int64, error)
	InActiveCarts(ctx context.Context, id int64) (bool, error)
	AddImage(ctx context.Context, img *models.ProductImage) error
	DeleteImage(ctx context.Context, id int64) error
}

// AdminService owns the back-office CRUD. Catalog writes keep the search
// index and the page cache in step with the database; both are best-effort,
// the database row is the source of truth.
type AdminService struct {
	products   adminProductStore
	promotions *repository.PromotionRepository
	coupons    *repository.CouponRepository
	shipping   *repository.ShippingRepository
	orders     *repository.OrderRepository
	events     *repository.EventRepository
	ebooks     *repository.EbookRepository
	es         *search.ElasticsearchClient
	valkey     *cache.ValkeyClient
}

func NewAdminService(repos *repository.Repositories, es *search.ElasticsearchClient, valkey *cache.ValkeyClient) *AdminService {
	return &AdminService{
		products:   repos.Products,
		promotions: repos.Promotions,
		coupons:    repos.Coupons,
		shipping:   repos.Shipping,
		orders:     repos.Orders,
		events:     repos.Events,
		ebooks:     repos.Ebooks,
		es:         es,
		valkey:     valkey,
	}
}

// --- Products ---

func (s *AdminService) CreateProduct(ctx context.Context, req *models.SaveProductRequest) (*models.Product, error) {
	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.syncProduct(ctx, product)
	return product, nil
}

func (s *AdminService) UpdateProduct(ctx context.Context, id int64, req *models.SaveProductRequest) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, apperrors.ErrNotFound
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.Stock = req.Stock
	product.CategoryID = req.CategoryID

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.syncProduct(ctx, product)
	return product, nil
}

func (s *AdminService) DeleteProduct(ctx context.Context, id int64) error {
	referenced, err := s.products.HasOrderReferences(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check order references: %w", err)
	}
	if referenced {
		return apperrors.ErrHasDependents
	}

	images, err := s.products.ImageCount(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count product images: %w", err)
	}
	if images > 0 {
		return apperrors.ErrHasDependents
	}

	inCarts, err := s.products.InActiveCarts(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check cart references: %w", err)
	}
	if inCarts {
		return apperrors.ErrHasDependents
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if s.es != nil {
		if err := s.es.DeleteProduct(ctx, id); err != nil {
			logger.WithContext(ctx).Warn("Failed to remove product from index", "error", err, "product_id", id)
		}
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *AdminService) AddProductImage(ctx context.Context, productID int64, url string, position int) (*models.ProductImage, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, apperrors.ErrNotFound
	}

	img := &models.ProductImage{
		ProductID: productID,
		URL:       url,
		Position:  position,
	}

	if err := s.products.AddImage(ctx, img); err != nil {
		return nil, fmt.Errorf("failed to add image: %w", err)
	}

	return img, nil
}

func (s *AdminService) DeleteProductImage(ctx context.Context, imageID int64) error {
	return s.products.DeleteImage(ctx, imageID)
}

// syncProduct mirrors a catalog write into Elasticsearch and drops cached
// pages.
func (s *AdminService) syncProduct(ctx context.Context, product *models.Product) {
	if s.es != nil {
		doc := &search.ProductDoc{
			ID:         product.ID,
			Name:       product.Name,
			Price:      product.Price,
			CategoryID: &product.CategoryID,
			CreatedAt:  product.CreatedAt,
		}
		if product.Description != nil {
			doc.Description = *product.Description
		}

		if err := s.es.IndexProduct(ctx, doc); err != nil {
			logger.WithContext(ctx).Warn("Failed to index product", "error", err, "product_id", product.ID)
		}
	}

	s.invalidateCatalog(ctx)
}

func (s *AdminService) invalidateCatalog(ctx context.Context) {
	if s.valkey == nil {
		return
	}
	if err := s.valkey.InvalidateCatalog(ctx); err != nil {
		logger.WithContext(ctx).Warn("Failed to invalidate catalog cache", "error", err)
	}
}

// --- Promotions ---

func (s *AdminService) CreatePromotion(ctx context.Context, req *models.SavePromotionRequest) (*models.Promotion, error) {
	promo := &models.Promotion{
		Title:        req.Title,
		Description:  req.Description,
		DiscountType: req.DiscountType,
		Value:        req.Value,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		Active:       req.Active,
	}

	if err := s.promotions.Create(ctx, promo, req.ProductIDs); err != nil {
		return nil, fmt.Errorf("failed to create promotion: %w", err)
	}

	s.invalidateCatalog(ctx)
	return promo, nil
}

func (s *AdminService) ListPromotions(ctx context.Context) ([]models.Promotion, error) {
	return s.promotions.List(ctx)
}

func (s *AdminService) UpdatePromotion(ctx context.Context, id int64, req *models.SavePromotionRequest) (*models.Promotion, error) {
	promo := &models.Promotion{
		ID:           id,
		Title:        req.Title,
		Description:  req.Description,
		DiscountType: req.DiscountType,
		Value:        req.Value,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		Active:       req.Active,
	}

	if err := s.promotions.Update(ctx, promo, req.ProductIDs); err != nil {
		return nil, fmt.Errorf("failed to update promotion: %w", err)
	}

	s.invalidateCatalog(ctx)
	return promo, nil
}

func (s *AdminService) DeletePromotion(ctx context.Context, id int64) error {
	if err := s.promotions.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete promotion: %w", err)
	}
	s.invalidateCatalog(ctx)
	return nil
}

// --- Coupons ---

func (s *AdminService) CreateCoupon(ctx context.Context, req *models.SaveCouponRequest) (*models.Coupon, error) {
	coupon := &models.Coupon{
		Code:         req.Code,
		Description:  req.Description,
		DiscountType: req.DiscountType,
		Value:        req.Value,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		Active:       req.Active,
	}

	if err := s.coupons.Create(ctx, coupon); err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	return coupon, nil
}

func (s *AdminService) ListCoupons(ctx context.Context) ([]models.Coupon, error) {
	return s.coupons.List(ctx)
}

func (s *AdminService) UpdateCoupon(ctx context.Context, id int64, req *models.SaveCouponRequest) (*models.Coupon, error) {
	coupon := &models.Coupon{
		ID:           id,
		Code:         req.Code,
		Description:  req.Description,
		DiscountType: req.DiscountType,
		Value:        req.Value,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		Active:       req.Active,
	}

	if err := s.coupons.Update(ctx, coupon); err != nil {
		return nil, fmt.Errorf("failed to update coupon: %w", err)
	}

	return coupon, nil
}

func (s *AdminService) DeleteCoupon(ctx context.Context, id int64) error {
	return s.coupons.Delete(ctx, id)
}

// --- Shipping rates ---

func (s *AdminService) CreateShippingRate(ctx context.Context, req *models.SaveShippingRateRequest) (*models.ShippingRate, error) {
	rate := &models.ShippingRate{
		Region: req.Region,
		Cost:   req.Cost,
		Active: req.Active,
	}

	if err := s.shipping.Create(ctx, rate); err != nil {
		return nil, fmt.Errorf("failed to create shipping rate: %w", err)
	}

	return rate, nil
}

func (s *AdminService) ListShippingRates(ctx context.Context) ([]models.ShippingRate, error) {
	return s.shipping.List(ctx)
}

func (s *AdminService) UpdateShippingRate(ctx context.Context, id int64, req *models.SaveShippingRateRequest) (*models.ShippingRate, error) {
	rate := &models.ShippingRate{
		ID:     id,
		Region: req.Region,
		Cost:   req.Cost,
		Active: req.Active,
	}

	found, err := s.shipping.Update(ctx, rate)
	if err != nil {
		return nil, fmt.Errorf("failed to update shipping rate: %w", err)
	}
	if !found {
		return nil, apperrors.ErrNotFound
	}

	return rate, nil
}

func (s *AdminService) DeleteShippingRate(ctx context.Context, id int64) error {
	return s.shipping.Delete(ctx, id)
}

// --- Orders ---

func (s *AdminService) MarkOrderShipped(ctx context.Context, id int64) error {
	shipped, err := s.orders.MarkShipped(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to mark order shipped: %w", err)
	}
	if !shipped {
		return apperrors.ErrNotFound
	}
	return nil
}

// --- Events ---

func (s *AdminService) CreateEvent(ctx context.Context, req *models.SaveEventRequest) (*models.Event, error) {
	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Location:    req.Location,
		Address:     req.Address,
		Cost:        req.Cost,
		ImageURL:    req.ImageURL,
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return event, nil
}

func (s *AdminService) UpdateEvent(ctx context.Context, id int64, req *models.SaveEventRequest) (*models.Event, error) {
	event := &models.Event{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Location:    req.Location,
		Address:     req.Address,
		Cost:        req.Cost,
		ImageURL:    req.ImageURL,
	}

	found, err := s.events.Update(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	if !found {
		return nil, apperrors.ErrNotFound
	}

	return event, nil
}

func (s *AdminService) DeleteEvent(ctx context.Context, id int64) error {
	booked, err := s.events.HasReservations(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check reservations: %w", err)
	}
	if booked {
		return apperrors.ErrHasDependents
	}

	return s.events.Delete(ctx, id)
}

func (s *AdminService) AddEventDate(ctx context.Context, eventID int64, req *models.SaveEventDateRequest) (*models.EventDate, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, apperrors.ErrNotFound
	}

	date := &models.EventDate{EventID: eventID, Date: req.Date}
	if err := s.events.AddDate(ctx, date); err != nil {
		return nil, fmt.Errorf("failed to add event date: %w", err)
	}

	return date, nil
}

func (s *AdminService) DeleteEventDate(ctx context.Context, dateID int64) error {
	booked, err := s.events.DateHasReservations(ctx, dateID)
	if err != nil {
		return fmt.Errorf("failed to check reservations: %w", err)
	}
	if booked {
		return apperrors.ErrHasDependents
	}

	return s.events.DeleteDate(ctx, dateID)
}

func (s *AdminService) AddTimeSlot(ctx context.Context, dateID int64, req *models.SaveTimeSlotRequest) (*models.TimeSlot, error) {
	slot := &models.TimeSlot{
		EventDateID:     dateID,
		StartsAt:        req.StartsAt,
		DurationMinutes: req.DurationMinutes,
		Capacity:        req.Capacity,
	}

	if err := s.events.AddSlot(ctx, slot); err != nil {
		return nil, fmt.Errorf("failed to add time slot: %w", err)
	}

	return slot, nil
}

func (s *AdminService) UpdateTimeSlot(ctx context.Context, slotID int64, req *models.SaveTimeSlotRequest) (*models.TimeSlot, error) {
	slot := &models.TimeSlot{
		ID:              slotID,
		StartsAt:        req.StartsAt,
		DurationMinutes: req.DurationMinutes,
		Capacity:        req.Capacity,
	}

	found, err := s.events.UpdateSlot(ctx, slot)
	if err != nil {
		return nil, fmt.Errorf("failed to update time slot: %w", err)
	}
	if !found {
		return nil, apperrors.ErrNotFound
	}

	return slot, nil
}

func (s *AdminService) DeleteTimeSlot(ctx context.Context, slotID int64) error {
	booked, err := s.events.SlotHasReservations(ctx, slotID)
	if err != nil {
		return fmt.Errorf("failed to check reservations: %w", err)
	}
	if booked {
		return apperrors.ErrHasDependents
	}

	return s.events.DeleteSlot(ctx, slotID)
}

// --- Ebooks ---

func (s *AdminService) CreateEbook(ctx context.Context, req *models.SaveEbookRequest) (*models.Ebook, error) {
	ebook := &models.Ebook{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		FileURL:     req.FileURL,
		Active:      req.Active,
		CategoryID:  req.CategoryID,
	}

	if err := s.ebooks.Create(ctx, ebook); err != nil {
		return nil, fmt.Errorf("failed to create ebook: %w", err)
	}

	return ebook, nil
}

func (s *AdminService) ListEbooks(ctx context.Context) ([]models.Ebook, error) {
	return s.ebooks.List(ctx, nil, true)
}

func (s *AdminService) UpdateEbook(ctx context.Context, id int64, req *models.SaveEbookRequest) (*models.Ebook, error) {
	ebook := &models.Ebook{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		FileURL:     req.FileURL,
		Active:      req.Active,
		CategoryID:  req.CategoryID,
	}

	found, err := s.ebooks.Update(ctx, ebook)
	if err != nil {
		return nil, fmt.Errorf("failed to update ebook: %w", err)
	}
	if !found {
		return nil, apperrors.ErrNotFound
	}

	return ebook, nil
}

// DeleteEbook refuses when purchases reference the ebook; deactivate it
// instead to pull it from the store.
func (s *AdminService) DeleteEbook(ctx context.Context, id int64) error {
	purchased, err := s.ebooks.HasPurchases(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check purchases: %w", err)
	}
	if purchased {
		return apperrors.ErrHasDependents
	}

	return s.ebooks.Delete(ctx, id)
}
