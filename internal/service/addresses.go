package service

import (
	"context"

	"mercadito/internal/models"
	"mercadito/internal/repository"
)

type AddressService struct {
	addresses *repository.AddressRepository
}

func NewAddressService(addresses *repository.AddressRepository) *AddressService {
	return &AddressService{addresses: addresses}
}

func (s *AddressService) Create(ctx context.Context, userID int64, req *models.SaveAddressRequest) (*models.Address, error) {
	address := &models.Address{
		UserID:     userID,
		Line:       req.Line,
		Detail:     req.Detail,
		City:       req.City,
		Region:     req.Region,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	}
	if err := s.addresses.Create(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

func (s *AddressService) ListForUser(ctx context.Context, userID int64) ([]models.Address, error) {
	return s.addresses.ListForUser(ctx, userID)
}

func (s *AddressService) Delete(ctx context.Context, userID, id int64) error {
	return s.addresses.Delete(ctx, id, userID)
}
