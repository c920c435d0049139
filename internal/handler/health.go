package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// dbPinger is the slice of *sql.DB the health check needs.
type dbPinger interface {
	PingContext(ctx context.Context) error
}

// Health returns the health-check endpoint used by load balancers and
// monitoring systems. A request is only "ok" when MySQL answers a ping;
// a service that accepts signups it cannot persist should not report
// healthy.
func Health(db dbPinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if db == nil || db.PingContext(ctx) != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "database unavailable"})
		}
		return c.String(http.StatusOK, "ok")
	}
}
