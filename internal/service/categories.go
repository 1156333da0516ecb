package service

import (
	"context"
	"fmt"

	apperrors "mercadito/internal/errors"
	"mercadito/internal/models"
)

type categoryStore interface {
	Create(ctx context.Context, c *models.Category) error
	Get(ctx context.Context, id int64) (*models.Category, error)
	ListByKind(ctx context.Context, kind string) ([]models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id int64) error
	HasChildren(ctx context.Context, id int64) (bool, error)
	DependentCount(ctx context.Context, kind string, id int64) (int64, error)
}

type CategoryService struct {
	store categoryStore
}

func NewCategoryService(store categoryStore) *CategoryService {
	return &CategoryService{store: store}
}

func (s *CategoryService) Create(ctx context.Context, kind string, req *models.SaveCategoryRequest) (*models.Category, error) {
	if req.ParentID != nil {
		parent, err := s.store.Get(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get parent category: %w", err)
		}
		if parent == nil || parent.Kind != kind {
			return nil, apperrors.ErrNotFound
		}
	}

	category := &models.Category{
		Name:     req.Name,
		Kind:     kind,
		ParentID: req.ParentID,
	}

	if err := s.store.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

// Update reparents and renames a category. Reparenting walks the ancestor
// chain of the new parent; finding the category itself on that chain means
// the move would close a cycle.
func (s *CategoryService) Update(ctx context.Context, kind string, id int64, req *models.SaveCategoryRequest) (*models.Category, error) {
	category, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil || category.Kind != kind {
		return nil, apperrors.ErrNotFound
	}

	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, apperrors.ErrCycle
		}

		parent, err := s.store.Get(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get parent category: %w", err)
		}
		if parent == nil || parent.Kind != kind {
			return nil, apperrors.ErrNotFound
		}

		if err := s.checkAncestors(ctx, parent, id); err != nil {
			return nil, err
		}
	}

	category.Name = req.Name
	category.ParentID = req.ParentID

	if err := s.store.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

func (s *CategoryService) checkAncestors(ctx context.Context, parent *models.Category, id int64) error {
	// Bounded walk so a corrupted chain cannot loop forever
	for depth := 0; parent.ParentID != nil && depth < 100; depth++ {
		if *parent.ParentID == id {
			return apperrors.ErrCycle
		}

		next, err := s.store.Get(ctx, *parent.ParentID)
		if err != nil {
			return fmt.Errorf("failed to walk category ancestors: %w", err)
		}
		if next == nil {
			return nil
		}
		parent = next
	}

	return nil
}

// Delete refuses when subcategories or dependent entities still point at the
// category.
func (s *CategoryService) Delete(ctx context.Context, kind string, id int64) error {
	category, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil || category.Kind != kind {
		return apperrors.ErrNotFound
	}

	hasChildren, err := s.store.HasChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check subcategories: %w", err)
	}
	if hasChildren {
		return apperrors.ErrHasChildren
	}

	dependents, err := s.store.DependentCount(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("failed to count dependents: %w", err)
	}
	if dependents > 0 {
		return apperrors.ErrHasDependents
	}

	return s.store.Delete(ctx, id)
}

// Tree returns the full category tree of one kind, roots first.
func (s *CategoryService) Tree(ctx context.Context, kind string) ([]*models.CategoryNode, error) {
	categories, err := s.store.ListByKind(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	nodes := make(map[int64]*models.CategoryNode, len(categories))
	for _, c := range categories {
		nodes[c.ID] = &models.CategoryNode{Category: c}
	}

	var roots []*models.CategoryNode
	for _, c := range categories {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots, nil
}

// SubtreeIDs returns the category and every descendant, for catalog filters.
func (s *CategoryService) SubtreeIDs(ctx context.Context, kind string, id int64) ([]int64, error) {
	categories, err := s.store.ListByKind(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	children := make(map[int64][]int64, len(categories))
	for _, c := range categories {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	var ids []int64
	queue := []int64{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		ids = append(ids, cur)
		queue = append(queue, children[cur]...)
	}

	return ids, nil
}
