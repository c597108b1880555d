package auth

import "github.com/labstack/echo/v4"

// ClaimsFrom extracts the validated claims the JWT middleware placed
// on the request context. ok is false on unauthenticated requests.
func ClaimsFrom(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get("user").(*Claims)
	return claims, ok
}
