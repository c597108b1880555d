package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	errs "shopfront/internal/errors"
)

// fail maps a domain error onto the structured JSON error envelope.
func fail(c echo.Context, err error) error {
	he := errs.MapErrorToHTTP(err)
	return c.JSON(he.StatusCode, he.ToErrorResponse())
}

// failValidation converts validator.ValidationErrors from a bound
// request struct into the same per-field map the services produce.
func failValidation(c echo.Context, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return c.JSON(http.StatusBadRequest, errs.ErrorResponse{Error: err.Error(), Code: "BAD_REQUEST"})
	}

	ve := errs.NewValidationError()
	for _, fe := range verrs {
		ve.Add(fe.Field(), fieldMessage(fe))
	}
	return fail(c, ve)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", fe.Field())
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("The %s field is invalid.", fe.Field())
	}
}
