package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	errs "shopfront/internal/errors"
	"shopfront/internal/model"
	"shopfront/internal/repository"
)

const productCacheTTL = 5 * time.Minute

// Cache is the byte cache product reads go through. A nil Cache
// disables caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ProductInput carries the validated-at-the-boundary fields of a
// product create or update request. The image file travels separately.
type ProductInput struct {
	ProductName string
	Description string
	Price       decimal.Decimal
	InStock     int
	CategoryID  uint
}

// ProductService exposes catalog operations. Create, Update and Delete
// keep the database row and the stored image file consistent: the file
// is written first and compensated away if the row write fails, and a
// replaced or deleted local file is reclaimed.
type ProductService interface {
	List(ctx context.Context) ([]model.Product, error)
	Get(ctx context.Context, id uint) (*model.Product, error)
	Create(ctx context.Context, in *ProductInput, image *ImageUpload) (*model.Product, error)
	Update(ctx context.Context, id uint, in *ProductInput, image *ImageUpload) (*model.Product, error)
	Delete(ctx context.Context, id uint) error
}

type productService struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	images       *ImageManager
	cache        Cache
}

// NewProductService builds a ProductService.
func NewProductService(repo repository.ProductRepository, categoryRepo repository.CategoryRepository, images *ImageManager, cache Cache) ProductService {
	return &productService{
		repo:         repo,
		categoryRepo: categoryRepo,
		images:       images,
		cache:        cache,
	}
}

func (s *productService) cacheKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

func (s *productService) invalidate(ctx context.Context, id uint) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, s.cacheKey(id))
	}
}

func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		s.images.Resolve(&products[i])
	}
	return products, nil
}

func (s *productService) Get(ctx context.Context, id uint) (*model.Product, error) {
	if s.cache != nil {
		if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
			var cached model.Product
			if err := json.Unmarshal(data, &cached); err == nil {
				s.images.Resolve(&cached)
				return &cached, nil
			}
		}
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrProductNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(product); err == nil {
			_ = s.cache.Set(ctx, s.cacheKey(id), payload, productCacheTTL)
		}
	}
	s.images.Resolve(product)
	return product, nil
}

func (s *productService) Create(ctx context.Context, in *ProductInput, image *ImageUpload) (*model.Product, error) {
	// Field and foreign-key validation happens before any file is
	// written, so a rejected request never leaves an orphan upload.
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	var imagePath string
	if image != nil {
		key, err := s.images.Save(ctx, image)
		if err != nil {
			return nil, err
		}
		imagePath = key
	}

	product := &model.Product{
		ProductName: in.ProductName,
		Description: in.Description,
		Price:       in.Price,
		InStock:     in.InStock,
		ImagePath:   imagePath,
		CategoryID:  in.CategoryID,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		// Compensate: the file was written for a row that never landed.
		_ = s.images.Remove(ctx, model.ParseImageRef(imagePath))
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.images.Resolve(product)
	return product, nil
}

func (s *productService) Update(ctx context.Context, id uint, in *ProductInput, image *ImageUpload) (*model.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrProductNotFound
		}
		return nil, err
	}

	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	prior := product.Image()

	if image != nil {
		key, err := s.images.Save(ctx, image)
		if err != nil {
			return nil, err
		}
		product.ImagePath = key
	}

	product.ProductName = in.ProductName
	product.Description = in.Description
	product.Price = in.Price
	product.InStock = in.InStock
	product.CategoryID = in.CategoryID
	product.Category = nil

	if err := s.repo.Update(ctx, product); err != nil {
		if image != nil {
			// Compensate the fresh upload; the prior file stays referenced.
			_ = s.images.Remove(ctx, product.Image())
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	if image != nil {
		// The row now references the new key; reclaim the replaced file.
		// Only a LOCAL prior state owns one, and the delete is idempotent.
		_ = s.images.Remove(ctx, prior)
	}

	s.invalidate(ctx, id)

	// Reload so the response carries the embedded category, the same
	// shape Get and List return.
	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload product: %w", err)
	}
	s.images.Resolve(updated)
	return updated, nil
}

func (s *productService) Delete(ctx context.Context, id uint) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrProductNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	// The row is gone, so the cached copy must go before anything
	// else; a failed file reclaim below must not leave a deleted
	// product fetchable.
	s.invalidate(ctx, id)

	// Reclaim any locally owned file. No-op for EXTERNAL and EMPTY,
	// and idempotent when the file is already absent.
	return s.images.Remove(ctx, product.Image())
}

func (s *productService) validate(ctx context.Context, in *ProductInput) error {
	ve := errs.NewValidationError()

	if in.ProductName == "" {
		ve.Add("product_name", "The product_name field is required.")
	} else if len(in.ProductName) > 255 {
		ve.Add("product_name", "The product_name may not be greater than 255 characters.")
	}
	if in.Price.IsNegative() {
		ve.Add("price", "The price must be at least 0.")
	}
	if in.InStock < 0 {
		ve.Add("in_stock", "The in_stock must be at least 0.")
	}

	if in.CategoryID == 0 {
		ve.Add("category_id", "The category_id field is required.")
	} else if _, err := s.categoryRepo.FindByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ve.Add("category_id", "The selected category_id is invalid.")
		} else {
			return fmt.Errorf("check category: %w", err)
		}
	}

	return ve.Err()
}
