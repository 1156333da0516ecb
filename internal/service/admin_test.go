package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mercadito/internal/errors"
	"mercadito/internal/models"
)

type fakeAdminProductStore struct {
	ordered bool
	images  int64
	inCarts bool
	deleted []int64
}

func (f *fakeAdminProductStore) Create(ctx context.Context, p *models.Product) error { return nil }

func (f *fakeAdminProductStore) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	return nil, nil
}

func (f *fakeAdminProductStore) Update(ctx context.Context, p *models.Product) error { return nil }

func (f *fakeAdminProductStore) Delete(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAdminProductStore) HasOrderReferences(ctx context.Context, id int64) (bool, error) {
	return f.ordered, nil
}

func (f *fakeAdminProductStore) ImageCount(ctx context.Context, productID int64) (int64, error) {
	return f.images, nil
}

func (f *fakeAdminProductStore) InActiveCarts(ctx context.Context, id int64) (bool, error) {
	return f.inCarts, nil
}

func (f *fakeAdminProductStore) AddImage(ctx context.Context, img *models.ProductImage) error {
	return nil
}

func (f *fakeAdminProductStore) DeleteImage(ctx context.Context, id int64) error { return nil }

func TestDeleteProductBlockedByOrderHistory(t *testing.T) {
	store := &fakeAdminProductStore{ordered: true}
	svc := &AdminService{products: store}

	err := svc.DeleteProduct(context.Background(), 5)

	assert.ErrorIs(t, err, apperrors.ErrHasDependents)
	assert.Empty(t, store.deleted)
}

func TestDeleteProductBlockedByImages(t *testing.T) {
	store := &fakeAdminProductStore{images: 2}
	svc := &AdminService{products: store}

	err := svc.DeleteProduct(context.Background(), 5)

	assert.ErrorIs(t, err, apperrors.ErrHasDependents)
	assert.Empty(t, store.deleted)
}

func TestDeleteProductBlockedByActiveCarts(t *testing.T) {
	store := &fakeAdminProductStore{inCarts: true}
	svc := &AdminService{products: store}

	err := svc.DeleteProduct(context.Background(), 5)

	assert.ErrorIs(t, err, apperrors.ErrHasDependents)
	assert.Empty(t, store.deleted)
}

func TestDeleteProductWithoutDependents(t *testing.T) {
	store := &fakeAdminProductStore{}
	svc := &AdminService{products: store}

	err := svc.DeleteProduct(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, []int64{5}, store.deleted)
}
