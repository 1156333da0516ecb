package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mercadito/internal/errors"
	"mercadito/internal/models"
)

// fakeCategoryStore keeps the tree in memory; ids are assigned sequentially
type fakeCategoryStore struct {
	nextID     int64
	categories map[int64]*models.Category
	dependents map[int64]int64
}

func newFakeCategoryStore() *fakeCategoryStore {
	return &fakeCategoryStore{
		nextID:     1,
		categories: map[int64]*models.Category{},
		dependents: map[int64]int64{},
	}
}

func (f *fakeCategoryStore) add(kind, name string, parentID *int64) *models.Category {
	c := &models.Category{ID: f.nextID, Kind: kind, Name: name, ParentID: parentID}
	f.categories[c.ID] = c
	f.nextID++
	return c
}

func (f *fakeCategoryStore) Create(ctx context.Context, c *models.Category) error {
	c.ID = f.nextID
	f.nextID++
	stored := *c
	f.categories[c.ID] = &stored
	return nil
}

func (f *fakeCategoryStore) Get(ctx context.Context, id int64) (*models.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCategoryStore) ListByKind(ctx context.Context, kind string) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.categories {
		if c.Kind == kind {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCategoryStore) Update(ctx context.Context, c *models.Category) error {
	if stored, ok := f.categories[c.ID]; ok {
		*stored = *c
	}
	return nil
}

func (f *fakeCategoryStore) Delete(ctx context.Context, id int64) error {
	delete(f.categories, id)
	return nil
}

func (f *fakeCategoryStore) HasChildren(ctx context.Context, id int64) (bool, error) {
	for _, c := range f.categories {
		if c.ParentID != nil && *c.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCategoryStore) DependentCount(ctx context.Context, kind string, id int64) (int64, error) {
	return f.dependents[id], nil
}

func TestCategoryCreateUnknownParent(t *testing.T) {
	store := newFakeCategoryStore()
	svc := NewCategoryService(store)

	missing := int64(999)
	_, err := svc.Create(context.Background(), models.CategoryProduct, &models.SaveCategoryRequest{
		Name:     "Yerbas",
		ParentID: &missing,
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCategoryCreateParentKindMismatch(t *testing.T) {
	store := newFakeCategoryStore()
	parent := store.add(models.CategoryEvent, "Talleres", nil)
	svc := NewCategoryService(store)

	_, err := svc.Create(context.Background(), models.CategoryProduct, &models.SaveCategoryRequest{
		Name:     "Yerbas",
		ParentID: &parent.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCategoryUpdateSelfParent(t *testing.T) {
	store := newFakeCategoryStore()
	c := store.add(models.CategoryProduct, "Yerbas", nil)
	svc := NewCategoryService(store)

	_, err := svc.Update(context.Background(), models.CategoryProduct, c.ID, &models.SaveCategoryRequest{
		Name:     "Yerbas",
		ParentID: &c.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrCycle)
}

func TestCategoryUpdateDeepCycle(t *testing.T) {
	store := newFakeCategoryStore()
	a := store.add(models.CategoryProduct, "A", nil)
	b := store.add(models.CategoryProduct, "B", &a.ID)
	c := store.add(models.CategoryProduct, "C", &b.ID)
	svc := NewCategoryService(store)

	// Reparenting A under its grandchild C closes the loop
	_, err := svc.Update(context.Background(), models.CategoryProduct, a.ID, &models.SaveCategoryRequest{
		Name:     "A",
		ParentID: &c.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrCycle)
}

func TestCategoryUpdateValidReparent(t *testing.T) {
	store := newFakeCategoryStore()
	a := store.add(models.CategoryProduct, "A", nil)
	b := store.add(models.CategoryProduct, "B", nil)
	svc := NewCategoryService(store)

	updated, err := svc.Update(context.Background(), models.CategoryProduct, b.ID, &models.SaveCategoryRequest{
		Name:     "B",
		ParentID: &a.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ParentID)
	assert.Equal(t, a.ID, *updated.ParentID)
}

func TestCategoryDeleteGuards(t *testing.T) {
	store := newFakeCategoryStore()
	parent := store.add(models.CategoryProduct, "Bebidas", nil)
	child := store.add(models.CategoryProduct, "Yerbas", &parent.ID)
	store.dependents[child.ID] = 3
	svc := NewCategoryService(store)

	err := svc.Delete(context.Background(), models.CategoryProduct, parent.ID)
	assert.ErrorIs(t, err, apperrors.ErrHasChildren)

	err = svc.Delete(context.Background(), models.CategoryProduct, child.ID)
	assert.ErrorIs(t, err, apperrors.ErrHasDependents)

	store.dependents[child.ID] = 0
	err = svc.Delete(context.Background(), models.CategoryProduct, child.ID)
	assert.NoError(t, err)
}

func TestCategoryTree(t *testing.T) {
	store := newFakeCategoryStore()
	root := store.add(models.CategoryProduct, "Bebidas", nil)
	child := store.add(models.CategoryProduct, "Yerbas", &root.ID)
	store.add(models.CategoryProduct, "Mates", &root.ID)
	store.add(models.CategoryEvent, "Talleres", nil) // other tree, must not leak
	svc := NewCategoryService(store)

	tree, err := svc.Tree(context.Background(), models.CategoryProduct)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, root.ID, tree[0].ID)
	assert.Len(t, tree[0].Children, 2)

	ids, err := svc.SubtreeIDs(context.Background(), models.CategoryProduct, root.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
	assert.Contains(t, ids, child.ID)
}
