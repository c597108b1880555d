package router

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"shopfront/internal/auth"
	"shopfront/internal/authz"
	"shopfront/internal/config"
	errs "shopfront/internal/errors"
	"shopfront/internal/handler"
)

// Register wires routes and middleware. Route protection follows the
// policy table in internal/authz: product listing is public, reads
// need any authenticated identity, every mutation and all user
// management needs the admin role.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	authHandler *handler.AuthHandler,
	meHandler *handler.MeHandler,
	userHandler *handler.UserHandler,
	categoryHandler *handler.CategoryHandler,
	productHandler *handler.ProductHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Locally stored product images are served by the same process.
	e.Static("/storage", cfg.StorageDir)

	api := e.Group("/api")

	// Public routes
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/refresh", authHandler.Refresh)
	api.POST("/logout", authHandler.Logout)
	api.GET("/products", productHandler.List)

	// Authenticated routes. A missing or invalid token is always 401;
	// 403 is reserved for a valid identity with an insufficient role.
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, errs.ErrorResponse{
				Error: "authentication required",
				Code:  "UNAUTHENTICATED",
			})
		},
	}))

	secured.GET("/me", meHandler.Me)
	secured.GET("/products/:id", productHandler.Get)
	secured.GET("/categories", categoryHandler.List)
	secured.GET("/categories/:id", categoryHandler.Get)

	// Admin routes
	users := secured.Group("/users", requirePermission(authz.ManageUsers))
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	manageCategories := requirePermission(authz.ManageCategories)
	secured.POST("/categories", categoryHandler.Create, manageCategories)
	secured.PUT("/categories/:id", categoryHandler.Update, manageCategories)
	secured.DELETE("/categories/:id", categoryHandler.Delete, manageCategories)

	manageProducts := requirePermission(authz.ManageProducts)
	secured.POST("/products", productHandler.Create, manageProducts)
	secured.PUT("/products/:id", productHandler.Update, manageProducts)
	secured.DELETE("/products/:id", productHandler.Delete, manageProducts)
}

// requirePermission denies with 403 when the authenticated role lacks
// the permission. It never falls back to 401: by the time it runs the
// JWT middleware has already established a valid identity.
func requirePermission(p authz.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := auth.ClaimsFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errs.ErrorResponse{
					Error: "authentication required",
					Code:  "UNAUTHENTICATED",
				})
			}
			if !authz.Can(claims.Role, p) {
				return c.JSON(http.StatusForbidden, errs.ErrorResponse{
					Error: "insufficient permissions",
					Code:  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}

// CustomValidator wraps validator for Echo, reporting fields by their
// JSON names so error maps line up with request payloads.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds the echo validator.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
