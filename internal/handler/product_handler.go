package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	errs "shopfront/internal/errors"
	"shopfront/internal/service"
)

// ProductHandler bundles product endpoints. Create and Update accept
// multipart form data so the optional image file can travel with the
// fields; everything else is JSON.
type ProductHandler struct {
	svc service.ProductService
}

// NewProductHandler creates a handler layer.
func NewProductHandler(svc service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// List godoc
// @Summary List products with their categories
// @Tags products
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.svc.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": products})
}

// Get godoc
// @Summary Get product by id
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} model.Product
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errs.ErrorResponse{Error: "invalid id", Code: "BAD_REQUEST"})
	}
	product, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// Create godoc
// @Summary Create product
// @Tags products
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param product_name formData string true "Product name"
// @Param description formData string false "Description"
// @Param price formData number true "Price"
// @Param in_stock formData int true "Stock count"
// @Param category_id formData int true "Category ID"
// @Param image formData file false "Product image (jpeg/png/gif/webp, max 2 MiB)"
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	in, upload, cleanup, err := h.parseForm(c)
	if err != nil {
		return fail(c, err)
	}
	defer cleanup()

	product, err := h.svc.Create(c.Request().Context(), in, upload)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Product created successfully",
		"product": product,
	})
}

// Update godoc
// @Summary Update product
// @Tags products
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param product_name formData string true "Product name"
// @Param description formData string false "Description"
// @Param price formData number true "Price"
// @Param in_stock formData int true "Stock count"
// @Param category_id formData int true "Category ID"
// @Param image formData file false "Replacement image"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errs.ErrorResponse{Error: "invalid id", Code: "BAD_REQUEST"})
	}

	in, upload, cleanup, err := h.parseForm(c)
	if err != nil {
		return fail(c, err)
	}
	defer cleanup()

	product, err := h.svc.Update(c.Request().Context(), id, in, upload)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Product updated successfully",
		"product": product,
	})
}

// Delete godoc
// @Summary Delete product
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errs.ErrorResponse{Error: "invalid id", Code: "BAD_REQUEST"})
	}

	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Product deleted successfully",
	})
}

// parseForm decodes the multipart product form. Numeric parse failures
// are reported through the same per-field map as semantic validation;
// the service re-checks ranges and the category reference.
func (h *ProductHandler) parseForm(c echo.Context) (*service.ProductInput, *service.ImageUpload, func(), error) {
	cleanup := func() {}
	ve := errs.NewValidationError()

	in := &service.ProductInput{
		ProductName: c.FormValue("product_name"),
		Description: c.FormValue("description"),
	}

	if raw := c.FormValue("price"); raw == "" {
		ve.Add("price", "The price field is required.")
	} else if price, err := decimal.NewFromString(raw); err != nil {
		ve.Add("price", "The price must be a number.")
	} else {
		in.Price = price
	}

	if raw := c.FormValue("in_stock"); raw == "" {
		ve.Add("in_stock", "The in_stock field is required.")
	} else if n, err := strconv.Atoi(raw); err != nil {
		ve.Add("in_stock", "The in_stock must be an integer.")
	} else {
		in.InStock = n
	}

	if raw := c.FormValue("category_id"); raw != "" {
		if n, err := strconv.ParseUint(raw, 10, 32); err != nil {
			ve.Add("category_id", "The category_id must be an integer.")
		} else {
			in.CategoryID = uint(n)
		}
	}

	if !ve.Empty() {
		return nil, nil, cleanup, ve
	}

	var upload *service.ImageUpload
	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		src, err := fh.Open()
		if err != nil {
			return nil, nil, cleanup, err
		}
		cleanup = func() { src.Close() }
		upload = &service.ImageUpload{
			Filename: fh.Filename,
			Size:     fh.Size,
			Body:     src,
		}
	}

	return in, upload, cleanup, nil
}
