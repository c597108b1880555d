package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	errs "shopfront/internal/errors"
	"shopfront/internal/model"
	"shopfront/internal/repository"
)

// CategoryService exposes category operations. Categories never
// cascade-delete their products; a delete while products remain is a
// conflict the caller must resolve first.
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id uint) (*model.Category, error)
	Create(ctx context.Context, name string) (*model.Category, error)
	Update(ctx context.Context, id uint, name string) (*model.Category, error)
	Delete(ctx context.Context, id uint) error
}

type categoryService struct {
	repo        repository.CategoryRepository
	productRepo repository.ProductRepository
}

// NewCategoryService builds a CategoryService.
func NewCategoryService(repo repository.CategoryRepository, productRepo repository.ProductRepository) CategoryService {
	return &categoryService{repo: repo, productRepo: productRepo}
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.repo.List(ctx)
}

func (s *categoryService) Get(ctx context.Context, id uint) (*model.Category, error) {
	category, err := s.repo.FindByIDWithProducts(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Create(ctx context.Context, name string) (*model.Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	category := &model.Category{CategoryName: name}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id uint, name string) (*model.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrCategoryNotFound
		}
		return nil, err
	}

	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	category.CategoryName = name
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrCategoryNotFound
		}
		return err
	}

	count, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return errs.ErrCategoryInUse
	}

	return s.repo.Delete(ctx, id)
}

func validateCategoryName(name string) error {
	ve := errs.NewValidationError()
	if name == "" {
		ve.Add("category_name", "The category_name field is required.")
	} else if len(name) > 255 {
		ve.Add("category_name", "The category_name may not be greater than 255 characters.")
	}
	return ve.Err()
}
