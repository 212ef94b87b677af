// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-seat-reservation/internal/config"
	"github.com/iliyamo/event-seat-reservation/internal/handler"
	"github.com/iliyamo/event-seat-reservation/internal/middleware"
)

// Handlers collects every handler the route table needs.
type Handlers struct {
	Auth   *handler.AuthHandler
	Events *handler.EventHandler
	Users  *handler.UserHandler
	Admin  *handler.AdminHandler
}

// Register builds the full route table.
//
//	/healthz               liveness, no auth
//	/v1/auth/*             register, login, refresh, logout
//	/v1/events*            public browse (cached), reserve and cancel behind JWT
//	/v1/users/:id          own detail page behind JWT
//	/v1/admin/*            back office, ADMIN role only
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	limiter := middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb)

	// Anonymous browsing. The detail endpoint takes an optional token
	// so a logged-in viewer sees their own seats flagged; it is left
	// uncached for the same reason.
	e.GET("/v1/events", h.Events.List, cache)
	e.GET("/v1/events/:id", h.Events.Get, middleware.OptionalJWT(cfg.JWTSecret))

	user := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole("USER", "ADMIN"))
	user.GET("/me", h.Auth.Me)
	user.GET("/users/:id", h.Users.Get)
	user.POST("/events/:id/actions/reserve", h.Events.Reserve, limiter)
	user.DELETE("/events/:id/sheets/:rank/:num/reservation", h.Events.Cancel, limiter)

	admin := e.Group("/v1/admin", middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole("ADMIN"))
	admin.GET("/events", h.Admin.ListEvents)
	admin.POST("/events", h.Admin.CreateEvent)
	admin.GET("/events/:id", h.Admin.GetEvent)
	admin.POST("/events/:id/actions/edit", h.Admin.EditEvent)
	admin.GET("/reports/events/:id/sales", h.Admin.EventSalesReport)
	admin.GET("/reports/sales", h.Admin.SalesReport)
}
