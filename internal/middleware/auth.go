package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Vasyl-Hlushchenko/contacts-api/internal/auth"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/model"
)

// RequireAccount returns an Echo middleware that validates the Bearer
// access token and resolves the full account row through the gate. The
// account is placed in the request context so handlers never touch tokens
// themselves. Any failure, missing header included, yields 401 with a
// single message that does not say which check failed.
func RequireAccount(gate *auth.Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": auth.ErrUnauthorized.Error()})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			acc, err := gate.CurrentAccount(c.Request().Context(), raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": auth.ErrUnauthorized.Error()})
			}

			c.Set(auth.AccountContextKey, acc)
			return next(c)
		}
	}
}

// currentAccountID reports the authenticated account's email for rate limit
// keying, or "anon" on unauthenticated routes.
func currentAccountID(c echo.Context) string {
	if acc, ok := c.Get(auth.AccountContextKey).(*model.Account); ok && acc != nil {
		return acc.Email
	}
	return "anon"
}
