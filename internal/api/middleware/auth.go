package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
	"github.com/jerseyhub/gallery-system/internal/core/ports"
)

// userContextKey is where the resolved identity is stored on the request
// context. Handlers read it through handler.CurrentUser.
const userContextKey = "user"

// Auth validates the JWT and resolves the subject against the user store on
// every request, so a ban applied after token issuance takes effect
// immediately. The resolved *domain.User is injected into context.
func Auth(jwtSecret string, auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := resolveBearer(c, jwtSecret, auth)
			if err != nil {
				return err
			}
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// OptionalAuth resolves an identity when a bearer token is present and lets
// the request through as a guest when it is not. Routes behind it decide per
// role what a guest may do.
func OptionalAuth(jwtSecret string, auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := resolveBearer(c, jwtSecret, auth)
			if err != nil {
				return err
			}
			if user != nil {
				c.Set(userContextKey, user)
			}
			return next(c)
		}
	}
}

// RequireAdmin rejects requests whose resolved identity is not the admin.
// Must run after Auth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, _ := c.Get(userContextKey).(*domain.User)
			if !user.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "admin access required")
			}
			return next(c)
		}
	}
}

// resolveBearer returns (nil, nil) when no Authorization header is present.
func resolveBearer(c echo.Context, jwtSecret string, auth ports.AuthService) (*domain.User, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "token missing subject")
	}

	user, err := auth.Resolve(c.Request().Context(), sub)
	if err != nil {
		return nil, err
	}
	return user, nil
}
