package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Vasyl-Hlushchenko/contacts-api/internal/auth"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/config"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/handler"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.  This
// endpoint can be used by load balancers or monitoring systems to verify
// that the service and its database are up.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc) {
	e.GET("/healthz", health)
}

// RegisterAuth registers the account lifecycle routes under /api/auth.
// None of them require an existing session; refresh and confirmation carry
// their credential in the request itself.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/api/auth")
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	// Refresh reads the refresh token from the Authorization header and
	// rotates it, so it is a GET with no body.
	g.GET("/refresh_token", a.Refresh)
	g.GET("/confirmed_email/:token", a.ConfirmEmail)
	g.POST("/request_email", a.RequestEmail)
}

// RegisterProtected registers everything behind the access token gate: the
// profile endpoints and the contact CRUD.  Contact routes additionally get
// the Redis token bucket and, for reads, the response cache.  When rdb is
// nil both middlewares turn into no-ops and the API still works.
func RegisterProtected(e *echo.Echo, gate *auth.Gate, p *handler.ProfileHandler, ch *handler.ContactHandler, rdb *redis.Client) {
	api := e.Group("/api")
	api.Use(middleware.RequireAccount(gate))

	profile := api.Group("/profile")
	profile.GET("/me", p.Me)
	profile.PATCH("/avatar", p.Avatar)

	contacts := api.Group("/contacts")
	contacts.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	contacts.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	contacts.GET("", ch.List)
	contacts.POST("", ch.Create)
	contacts.GET("/find/:query", ch.Find)
	contacts.GET("/birthdays/:days", ch.Birthdays)
	contacts.GET("/:id", ch.Get)
	contacts.PUT("/:id", ch.Update)
	contacts.DELETE("/:id", ch.Remove)
}
