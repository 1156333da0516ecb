package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "mercadito/internal/errors"
	"mercadito/internal/models"
	"mercadito/internal/repository"
)

type CartService struct {
	carts    *repository.CartRepository
	products *repository.ProductRepository
}

func NewCartService(carts *repository.CartRepository, products *repository.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

func (s *CartService) Get(ctx context.Context, userID int64) (*models.CartResponse, error) {
	cart, err := s.carts.GetOrCreateActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return s.respond(ctx, cart.ID)
}

func (s *CartService) AddItem(ctx context.Context, userID int64, req *models.AddCartItemRequest) (*models.CartResponse, error) {
	product, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, apperrors.ErrNotFound
	}
	if product.Stock < req.Quantity {
		return nil, apperrors.ErrOutOfStock
	}

	cart, err := s.carts.GetOrCreateActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if err := s.carts.UpsertItem(ctx, cart.ID, req.ProductID, req.Quantity); err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	return s.respond(ctx, cart.ID)
}

// SetQuantity updates one line; quantity zero removes it.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID int64, quantity int) (*models.CartResponse, error) {
	cart, err := s.carts.GetOrCreateActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if quantity <= 0 {
		err = s.carts.RemoveItem(ctx, cart.ID, productID)
	} else {
		err = s.carts.SetItemQuantity(ctx, cart.ID, productID, quantity)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.respond(ctx, cart.ID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID int64) (*models.CartResponse, error) {
	return s.SetQuantity(ctx, userID, productID, 0)
}

func (s *CartService) respond(ctx context.Context, cartID int64) (*models.CartResponse, error) {
	lines, err := s.carts.Lines(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart lines: %w", err)
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	return &models.CartResponse{
		CartID:   cartID,
		Lines:    lines,
		Subtotal: subtotal,
	}, nil
}
