// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-tracker/internal/auth"
	"github.com/iliyamo/task-tracker/internal/handler"
	"github.com/iliyamo/task-tracker/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication. Currently
// only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints. Register, login, and refresh
// live under /v1/auth and need no session; /v1/me sits behind the bearer
// gate.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, resolver *auth.Resolver, users auth.UserLookup) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	protected := e.Group("/v1")
	protected.Use(middleware.JWTAuth(resolver, users))
	protected.GET("/me", a.Me)
}

// RegisterTasks registers the protected task endpoints under /v1/tasks.
// Every route runs the bearer gate; extra per-group middleware (response
// cache) is appended by the caller.
func RegisterTasks(e *echo.Echo, t *handler.TaskHandler, resolver *auth.Resolver, users auth.UserLookup, extra ...echo.MiddlewareFunc) {
	g := e.Group("/v1/tasks")
	g.Use(middleware.JWTAuth(resolver, users))
	for _, mw := range extra {
		g.Use(mw)
	}

	g.POST("", t.Create)
	g.GET("", t.List)
	// Fixed segments must be registered before the :id parameter route.
	g.GET("/completed", t.Completed)
	g.GET("/incomplete", t.Incomplete)
	g.GET("/search", t.Search)
	g.GET("/paginated", t.Paginated)
	g.GET("/stats", t.Stats)
	g.GET("/:id", t.Get)
	g.PUT("/:id", t.Update)
	g.PATCH("/:id/toggle-complete", t.ToggleComplete)
	g.DELETE("/:id", t.Delete)
}
