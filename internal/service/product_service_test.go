package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	errs "shopfront/internal/errors"
	"shopfront/internal/model"
)

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCategoryRepository is a mock implementation of CategoryRepository.
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *model.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *model.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uint) (*model.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindByIDWithProducts(ctx context.Context, id uint) (*model.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

// fakeStore is an in-memory storage.Store recording delete calls.
type fakeStore struct {
	objects   map[string][]byte
	deletes   []string
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Put(ctx context.Context, key string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStore) PublicURL(key string) string {
	return "http://localhost:8080/storage/" + key
}

// recordingCache is an in-memory Cache tracking deleted keys.
type recordingCache struct {
	entries map[string][]byte
	deletes []string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: make(map[string][]byte)}
}

func (c *recordingCache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.entries[key], nil
}

func (c *recordingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.entries[key] = value
	return nil
}

func (c *recordingCache) Delete(ctx context.Context, key string) error {
	c.deletes = append(c.deletes, key)
	delete(c.entries, key)
	return nil
}

// pngUpload builds a valid PNG upload of the given payload size.
func pngUpload(size int) *ImageUpload {
	data := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, size)...)
	return &ImageUpload{
		Filename: "photo.png",
		Size:     int64(len(data)),
		Body:     bytes.NewReader(data),
	}
}

func validInput() *ProductInput {
	return &ProductInput{
		ProductName: "Test Widget",
		Description: "A widget for testing",
		Price:       decimal.RequireFromString("9.99"),
		InStock:     5,
		CategoryID:  1,
	}
}

func TestProductService_CreateWithImage(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	store := newFakeStore()

	mockCategories.On("FindByID", mock.Anything, uint(1)).Return(&model.Category{ID: 1, CategoryName: "Beauty"}, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Product")).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Product).ID = 1
	}).Return(nil)

	svc := NewProductService(mockRepo, mockCategories, NewImageManager(store), nil)
	product, err := svc.Create(context.Background(), validInput(), pngUpload(500*1024))

	require.NoError(t, err)
	assert.Equal(t, model.ImageLocal, product.Image().State)
	assert.True(t, strings.HasPrefix(product.ImagePath, "products/"))
	assert.Equal(t, "http://localhost:8080/storage/"+product.ImagePath, product.ImageURL)

	exists, err := store.Exists(context.Background(), product.Image().Key)
	require.NoError(t, err)
	assert.True(t, exists, "uploaded file must exist in storage")

	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateWithoutImage(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	store := newFakeStore()

	mockCategories.On("FindByID", mock.Anything, uint(1)).Return(&model.Category{ID: 1}, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Product")).Return(nil)

	svc := NewProductService(mockRepo, mockCategories, NewImageManager(store), nil)
	product, err := svc.Create(context.Background(), validInput(), nil)

	require.NoError(t, err)
	assert.Equal(t, model.ImageEmpty, product.Image().State)
	assert.Empty(t, product.ImageURL)
	assert.Empty(t, store.objects)
}

func TestProductService_CreateUnknownCategoryLeavesNoOrphanFile(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	store := newFakeStore()

	mockCategories.On("FindByID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewProductService(mockRepo, mockCategories, NewImageManager(store), nil)
	product, err := svc.Create(context.Background(), validInput(), pngUpload(1024))

	require.Error(t, err)
	assert.Nil(t, product)

	var ve *errs.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "category_id")

	assert.Empty(t, store.objects, "no file may be written for a rejected request")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_CreateRowFailureCompensatesFile(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	store := newFakeStore()

	mockCategories.On("FindByID", mock.Anything, uint(1)).Return(&model.Category{ID: 1}, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Product")).Return(errors.New("db down"))

	svc := NewProductService(mockRepo, mockCategories, NewImageManager(store), nil)
	_, err := svc.Create(context.Background(), validInput(), pngUpload(1024))

	require.Error(t, err)
	assert.Empty(t, store.objects, "orphan file must be compensated away")
	assert.Len(t, store.deletes, 1)
}

func TestProductService_CreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProductInput)
		field  string
	}{
		{"missing name", func(in *ProductInput) { in.ProductName = "" }, "product_name"},
		{"name too long", func(in *ProductInput) { in.ProductName = strings.Repeat("a", 256) }, "product_name"},
		{"negative price", func(in *ProductInput) { in.Price = decimal.NewFromInt(-1) }, "price"},
		{"negative stock", func(in *ProductInput) { in.InStock = -3 }, "in_stock"},
		{"missing category", func(in *ProductInput) { in.CategoryID = 0 }, "category_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			mockCategories := new(MockCategoryRepository)
			mockCategories.On("FindByID", mock.Anything, mock.Anything).Return(&model.Category{ID: 1}, nil).Maybe()

			in := validInput()
			tt.mutate(in)

			svc := NewProductService(mockRepo, mockCategories, NewImageManager(newFakeStore()), nil)
			_, err := svc.Create(context.Background(), in, nil)

			var ve *errs.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestProductService_UpdateReplacesLocalImage(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	store := newFakeStore()
	store.objects["products/old.png"] = []byte("old")

	existing := &model.Product{
		ID:          1,
		ProductName: "Test Widget",
		Price:       decimal.RequireFromString("9.99"),
		InStock:     5,
		ImagePath:   "products/old.png",
		CategoryID:  1,
	}
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(existing, nil)
	mockCategories.On("FindByID", mock.Anything, uint(1)).Return(&model.Category{ID: 1}, nil)
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.Product")).Return(nil)

	svc := NewProductService(mockRepo, mockCategories, NewImageManager(store), nil)
	product, err := svc.Update(context.Background(), 1, validInput(), pngUpload(1024))

	require.NoError(t, err)
	assert.NotEqual(t, "products/old.png", product.ImagePath)

	_, oldExists := store.objects["products/old.png"]
	assert.False(t, oldExists, "replaced file must be reclaimed")
	assert.Len(t, store.objects, 1, "exactly the new file remains")
	assert.Contains(t, store.deletes, "products/old.png")
}

func TestProductService_UpdateExternalImageDeletesNothing(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	store := newFakeStore()

	existing := &model.Product{
		ID:          1,
		ProductName: "Seeded",
		Price:       decimal.RequireFromString("9.99"),
		InStock:     5,
		ImagePath:   "https://cdn.example.com/x.webp",
		CategoryID:  1,
	}
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(existing, nil)
	mockCategories.On("FindByID", mock.Anything, uint(1)).Return(&model.Category{ID: 1}, nil)
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.Product")).Return(nil)

	svc := NewProductService(mockRepo, mockCategories, NewImageManager(store), nil)
	product, err := svc.Update(context.Background(), 1, validInput(), pngUpload(1024))

	require.NoError(t, err)
	assert.Equal(t, model.ImageLocal, product.Image().State)
	assert.Empty(t, store.deletes, "an external URL is never a storage delete target")
}

func TestProductService_UpdateWithoutImageKeepsPath(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	store := newFakeStore()
	store.objects["products/keep.png"] = []byte("keep")

	existing := &model.Product{
		ID:          1,
		ProductName: "Test Widget",
		Price:       decimal.RequireFromString("9.99"),
		InStock:     5,
		ImagePath:   "products/keep.png",
		CategoryID:  1,
	}
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(existing, nil)
	mockCategories.On("FindByID", mock.Anything, uint(1)).Return(&model.Category{ID: 1}, nil)
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.Product")).Return(nil)

	svc := NewProductService(mockRepo, mockCategories, NewImageManager(store), nil)
	product, err := svc.Update(context.Background(), 1, validInput(), nil)

	require.NoError(t, err)
	assert.Equal(t, "products/keep.png", product.ImagePath)
	assert.Empty(t, store.deletes)
}

func TestProductService_DeleteRemovesOwnedFileOnly(t *testing.T) {
	tests := []struct {
		name        string
		imagePath   string
		seedFile    bool
		wantDeletes int
	}{
		{"local image", "products/gone.png", true, 1},
		{"local image already absent", "products/gone.png", false, 1},
		{"external image", "https://cdn.example.com/x.webp", false, 0},
		{"no image", "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			mockCategories := new(MockCategoryRepository)
			store := newFakeStore()
			if tt.seedFile {
				store.objects[tt.imagePath] = []byte("bytes")
			}

			mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.Product{ID: 1, ImagePath: tt.imagePath}, nil)
			mockRepo.On("Delete", mock.Anything, uint(1)).Return(nil)

			svc := NewProductService(mockRepo, mockCategories, NewImageManager(store), nil)
			require.NoError(t, svc.Delete(context.Background(), 1))

			assert.Len(t, store.deletes, tt.wantDeletes)
			assert.Empty(t, store.objects)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProductService_DeleteStorageFailureStillInvalidatesCache(t *testing.T) {
	mockRepo := new(MockProductRepository)
	store := newFakeStore()
	store.objects["products/doomed.png"] = []byte("bytes")
	store.deleteErr = errors.New("disk failure")

	cached := newRecordingCache()
	cached.entries["product:1"] = []byte(`{"id":1,"product_name":"Gone"}`)

	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.Product{ID: 1, ImagePath: "products/doomed.png"}, nil)
	mockRepo.On("Delete", mock.Anything, uint(1)).Return(nil)

	svc := NewProductService(mockRepo, new(MockCategoryRepository), NewImageManager(store), cached)
	err := svc.Delete(context.Background(), 1)

	require.Error(t, err, "the failed file reclaim still surfaces")
	assert.NotContains(t, cached.entries, "product:1", "a deleted row must never be served from cache")
	assert.Contains(t, cached.deletes, "product:1")
}

func TestProductService_GetAfterDeleteIsNotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	cached := newRecordingCache()

	product := &model.Product{ID: 1, ProductName: "Short Lived", CategoryID: 1}
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(product, nil).Once()

	svc := NewProductService(mockRepo, new(MockCategoryRepository), NewImageManager(newFakeStore()), cached)

	// A read populates the cache.
	_, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, cached.entries, "product:1")

	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(product, nil).Once()
	mockRepo.On("Delete", mock.Anything, uint(1)).Return(nil)
	require.NoError(t, svc.Delete(context.Background(), 1))

	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound).Once()
	_, err = svc.Get(context.Background(), 1)
	assert.ErrorIs(t, err, errs.ErrProductNotFound)
}

func TestProductService_UpdateResponseIncludesCategory(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)

	existing := &model.Product{
		ID:          1,
		ProductName: "Old Name",
		Price:       decimal.RequireFromString("1.00"),
		InStock:     1,
		CategoryID:  1,
		Category:    &model.Category{ID: 1, CategoryName: "Beauty"},
	}
	reloaded := &model.Product{
		ID:          1,
		ProductName: "Test Widget",
		Price:       decimal.RequireFromString("9.99"),
		InStock:     5,
		CategoryID:  1,
		Category:    &model.Category{ID: 1, CategoryName: "Beauty"},
	}

	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(existing, nil).Once()
	mockCategories.On("FindByID", mock.Anything, uint(1)).Return(&model.Category{ID: 1}, nil)
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.Product")).Return(nil)
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(reloaded, nil).Once()

	svc := NewProductService(mockRepo, mockCategories, NewImageManager(newFakeStore()), nil)
	product, err := svc.Update(context.Background(), 1, validInput(), nil)

	require.NoError(t, err)
	require.NotNil(t, product.Category, "the update response carries the embedded category like Get and List")
	assert.Equal(t, "Beauty", product.Category.CategoryName)
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteNotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockRepo.On("FindByID", mock.Anything, uint(42)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewProductService(mockRepo, new(MockCategoryRepository), NewImageManager(newFakeStore()), nil)
	err := svc.Delete(context.Background(), 42)

	assert.ErrorIs(t, err, errs.ErrProductNotFound)
}

func TestProductService_GetResolvesExternalURLVerbatim(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.Product{
		ID:        1,
		ImagePath: "https://cdn.example.com/x.webp",
	}, nil)

	svc := NewProductService(mockRepo, new(MockCategoryRepository), NewImageManager(newFakeStore()), nil)
	product, err := svc.Get(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/x.webp", product.ImageURL)
}

func TestImageManager_SaveKeyUsesSniffedExtension(t *testing.T) {
	store := newFakeStore()

	// A PNG masquerading under an .svg name must not be stored (and
	// later served) as SVG.
	up := pngUpload(256)
	up.Filename = "sneaky.svg"

	key, err := NewImageManager(store).Save(context.Background(), up)

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".png"), "key %q must carry the sniffed extension", key)
	assert.Contains(t, store.objects, key)
}

func TestImageManager_SaveRejectsBadUploads(t *testing.T) {
	tests := []struct {
		name string
		up   *ImageUpload
	}{
		{
			name: "not an image",
			up: &ImageUpload{
				Filename: "notes.txt",
				Size:     10,
				Body:     strings.NewReader("plain text"),
			},
		},
		{
			name: "oversized",
			up:   pngUpload(3 << 20),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			_, err := NewImageManager(store).Save(context.Background(), tt.up)

			var ve *errs.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, "image")
			assert.Empty(t, store.objects)
		})
	}
}
