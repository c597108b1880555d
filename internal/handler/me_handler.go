package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"shopfront/internal/auth"
	"shopfront/internal/authz"
	errs "shopfront/internal/errors"
	"shopfront/internal/service"
)

// MeHandler serves the authenticated identity together with its
// permission grants. Clients drive their UI off the grants; the
// server-side gate stays the authority, so a stale or tampered client
// can at worst hide things, never grant access.
type MeHandler struct {
	users service.UserService
}

// NewMeHandler creates a handler layer.
func NewMeHandler(users service.UserService) *MeHandler {
	return &MeHandler{users: users}
}

// Me godoc
// @Summary Current user and permission grants
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /me [get]
func (h *MeHandler) Me(c echo.Context) error {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errs.ErrorResponse{Error: "authentication required", Code: "UNAUTHENTICATED"})
	}

	user, err := h.users.Get(c.Request().Context(), claims.UserID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"user":        user,
		"permissions": authz.Grants(user.Role),
	})
}
