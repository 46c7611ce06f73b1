package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
)

// CurrentUser extracts the identity injected by the Auth or OptionalAuth
// middleware. A nil return means the request belongs to a guest.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get("user").(*domain.User)
	return user
}
