package service

import (
	"context"
	"fmt"

	apperrors "mercadito/internal/errors"
	"mercadito/internal/external"
	"mercadito/internal/logger"
	"mercadito/internal/models"
	"mercadito/internal/repository"
)

const ebookPageSize = 20

// EbookService sells digital books through PayPal. A purchase starts pending
// and only the reconciliation path flips it to paid and issues the download
// code.
type EbookService struct {
	ebooks  *repository.EbookRepository
	paypal  *external.PayPalClient
	baseURL string
}

func NewEbookService(ebooks *repository.EbookRepository, paypal *external.PayPalClient, baseURL string) *EbookService {
	return &EbookService{
		ebooks:  ebooks,
		paypal:  paypal,
		baseURL: baseURL,
	}
}

func (s *EbookService) List(ctx context.Context, categoryID *int64, page int) (*models.EbookListResponse, error) {
	if page < 1 {
		page = 1
	}

	ebooks, err := s.ebooks.List(ctx, categoryID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list ebooks: %w", err)
	}

	total := int64(len(ebooks))
	start := (page - 1) * ebookPageSize
	if start > len(ebooks) {
		start = len(ebooks)
	}
	end := start + ebookPageSize
	if end > len(ebooks) {
		end = len(ebooks)
	}

	return &models.EbookListResponse{
		Ebooks:     ebooks[start:end],
		Page:       page,
		TotalPages: totalPages(total, ebookPageSize),
		Total:      total,
	}, nil
}

func (s *EbookService) Get(ctx context.Context, id int64) (*models.Ebook, error) {
	ebook, err := s.ebooks.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ebook: %w", err)
	}
	if ebook == nil || !ebook.Active {
		return nil, apperrors.ErrNotFound
	}
	return ebook, nil
}

func (s *EbookService) Purchase(ctx context.Context, userID, ebookID int64) (*models.PurchaseEbookResponse, error) {
	ebook, err := s.Get(ctx, ebookID)
	if err != nil {
		return nil, err
	}

	owned, err := s.ebooks.HasPaidPurchase(ctx, userID, ebookID)
	if err != nil {
		return nil, fmt.Errorf("failed to check prior purchase: %w", err)
	}
	if owned {
		return nil, apperrors.ErrAlreadyOwned
	}

	purchase := &models.EbookPurchase{
		UserID:        userID,
		EbookID:       ebookID,
		PricePaid:     ebook.Price,
		PaymentMethod: "paypal",
		Status:        models.PurchasePending,
	}

	if err := s.ebooks.CreatePurchase(ctx, purchase); err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	order, err := s.paypal.CreateOrder(ctx,
		models.EbookReference(purchase.ID).String(),
		ebook.Title,
		ebook.Price,
		s.baseURL+"/paypal/pago-exitoso",
		s.baseURL+"/paypal/cancelar",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create paypal order: %w", err)
	}

	// Store the order id before redirecting so the webhook can find the
	// purchase even if the buyer never comes back
	if err := s.ebooks.SetTransactionID(ctx, purchase.ID, order.ID); err != nil {
		return nil, fmt.Errorf("failed to store transaction id: %w", err)
	}

	logger.WithContext(ctx).Info("PayPal order created",
		"purchase_id", purchase.ID, "order_id", order.ID)

	return &models.PurchaseEbookResponse{
		PurchaseID: purchase.ID,
		OrderID:    order.ID,
		ApproveURL: order.ApproveURL(),
	}, nil
}

// Download resolves a download code. Codes only exist on paid purchases.
func (s *EbookService) Download(ctx context.Context, code string) (*models.EbookPurchase, string, error) {
	purchase, fileURL, err := s.ebooks.GetPurchaseByCode(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up download code: %w", err)
	}
	if purchase == nil {
		return nil, "", apperrors.ErrNotFound
	}

	return purchase, fileURL, nil
}

func (s *EbookService) Purchases(ctx context.Context, userID int64) ([]models.EbookPurchase, error) {
	purchases, err := s.ebooks.ListPurchasesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return purchases, nil
}
