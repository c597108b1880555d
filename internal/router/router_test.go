package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/auth"
	"shopfront/internal/config"
	"shopfront/internal/handler"
	"shopfront/internal/model"
	"shopfront/internal/service"
)

// stubProductService satisfies service.ProductService for route tests;
// the gate under test runs before any of it is reached.
type stubProductService struct{}

func (stubProductService) List(ctx context.Context) ([]model.Product, error) {
	return []model.Product{}, nil
}

func (stubProductService) Get(ctx context.Context, id uint) (*model.Product, error) {
	return &model.Product{ID: id, ProductName: "Widget"}, nil
}

func (stubProductService) Create(ctx context.Context, in *service.ProductInput, image *service.ImageUpload) (*model.Product, error) {
	return &model.Product{ID: 1}, nil
}

func (stubProductService) Update(ctx context.Context, id uint, in *service.ProductInput, image *service.ImageUpload) (*model.Product, error) {
	return &model.Product{ID: id}, nil
}

func (stubProductService) Delete(ctx context.Context, id uint) error {
	return nil
}

type stubCategoryService struct{}

func (stubCategoryService) List(ctx context.Context) ([]model.Category, error) {
	return []model.Category{}, nil
}

func (stubCategoryService) Get(ctx context.Context, id uint) (*model.Category, error) {
	return &model.Category{ID: id}, nil
}

func (stubCategoryService) Create(ctx context.Context, name string) (*model.Category, error) {
	return &model.Category{ID: 1, CategoryName: name}, nil
}

func (stubCategoryService) Update(ctx context.Context, id uint, name string) (*model.Category, error) {
	return &model.Category{ID: id, CategoryName: name}, nil
}

func (stubCategoryService) Delete(ctx context.Context, id uint) error {
	return nil
}

func newTestServer(t *testing.T) (*echo.Echo, *auth.JWTService) {
	t.Helper()

	cfg := &config.Config{
		StorageDir: t.TempDir(),
		JWTSecret:  "test-secret",
	}
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	e := echo.New()
	Register(
		e,
		cfg,
		jwtService,
		handler.NewAuthHandler(nil),
		handler.NewMeHandler(nil),
		handler.NewUserHandler(nil),
		handler.NewCategoryHandler(stubCategoryService{}),
		handler.NewProductHandler(stubProductService{}),
	)
	return e, jwtService
}

func do(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestProductListIsPublic(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodGet, "/api/products", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	e, _ := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/me"},
		{http.MethodGet, "/api/products/1"},
		{http.MethodGet, "/api/users"},
		{http.MethodPost, "/api/categories"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec := do(e, p.method, p.path, "", "")

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "UNAUTHENTICATED")
		})
	}
}

func TestInvalidTokenIsUnauthorized(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodGet, "/api/products/1", "not-a-jwt", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHENTICATED")
}

func TestUserRoleOnAdminRouteIsForbidden(t *testing.T) {
	e, jwtService := newTestServer(t)

	token, err := jwtService.GenerateAccessToken(2, "user@example.com", model.RoleUser)
	require.NoError(t, err)

	// A valid identity with an insufficient role is 403, never 401.
	for _, p := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/users"},
		{http.MethodPost, "/api/categories"},
		{http.MethodDelete, "/api/products/1"},
	} {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec := do(e, p.method, p.path, token, "")

			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Contains(t, rec.Body.String(), "FORBIDDEN")
		})
	}

	// The same token still covers authenticated reads.
	rec := do(e, http.MethodGet, "/api/products/1", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRolePassesGate(t *testing.T) {
	e, jwtService := newTestServer(t)

	token, err := jwtService.GenerateAccessToken(1, "admin@example.com", model.RoleAdmin)
	require.NoError(t, err)

	rec := do(e, http.MethodPost, "/api/categories", token, `{"category_name":"Beauty"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Category created successfully")
}
