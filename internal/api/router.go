package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deskhaven/authcore/internal/app"
	"github.com/deskhaven/authcore/internal/core"
	"github.com/deskhaven/authcore/internal/handlers"
	"github.com/deskhaven/authcore/internal/middleware"
)

// NewRouter builds the Gin engine, wires middleware, and registers the
// authorization core's routes. Login is the only route reachable without a
// bearer token; every other operation presents its token to the core, which
// enforces validity and entitlement itself.
func NewRouter(authCore *core.Core, cfg *app.Config) (*gin.Engine, error) {
	if authCore == nil {
		return nil, fmt.Errorf("authorization core must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	// Public endpoints
	r.GET("/health", handlers.Health())
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(authCore)
	r.POST("/api/auth/login", authHandler.Login)

	requireToken := middleware.BearerToken()

	api := r.Group("/api")
	api.Use(requireToken)

	// Session operations
	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/auth/check", authHandler.CheckAccess)
	api.GET("/auth/me", authHandler.Me)

	// Permissions
	permissionHandler := handlers.NewPermissionHandler(authCore)
	permissions := api.Group("/permissions")
	{
		permissions.POST("", permissionHandler.Create)
		permissions.GET("", permissionHandler.List)
		permissions.GET("/:id", permissionHandler.Get)
		permissions.PATCH("/:id/description", permissionHandler.UpdateDescription)
		permissions.DELETE("/:id", permissionHandler.Remove)
	}

	// Roles
	roleHandler := handlers.NewRoleHandler(authCore)
	roles := api.Group("/roles")
	{
		roles.POST("", roleHandler.Create)
		roles.GET("", roleHandler.List)
		roles.GET("/:id", roleHandler.Get)
		roles.PATCH("/:id/description", roleHandler.UpdateDescription)
		roles.DELETE("/:id", roleHandler.Remove)
		roles.POST("/:id/permissions", roleHandler.AddPermission)
		roles.DELETE("/:id/permissions/:permissionID", roleHandler.RemovePermission)
		roles.POST("/:id/subroles", roleHandler.AddSubrole)
		roles.DELETE("/:id/subroles/:subroleID", roleHandler.RemoveSubrole)
		roles.POST("/:id/entitlements", roleHandler.AddEntitlement)
	}

	// Users
	userHandler := handlers.NewUserHandler(authCore)
	users := api.Group("/users")
	{
		users.POST("", userHandler.Create)
		users.GET("", userHandler.List)
		users.PUT("/password", userHandler.UpdatePassword)
		users.GET("/:id", userHandler.Get)
		users.PATCH("/:id/name", userHandler.UpdateName)
		users.DELETE("/:id", userHandler.Remove)
		users.POST("/:id/credentials", userHandler.AddCredential)
		users.POST("/:id/permissions", userHandler.AddPermission)
		users.DELETE("/:id/permissions/:permissionID", userHandler.RemovePermission)
		users.POST("/:id/roles", userHandler.AddRole)
		users.DELETE("/:id/roles/:roleID", userHandler.RemoveRole)
	}

	// Services
	serviceHandler := handlers.NewServiceHandler(authCore)
	services := api.Group("/services")
	{
		services.POST("", serviceHandler.Create)
		services.GET("", serviceHandler.List)
		services.GET("/:id", serviceHandler.Get)
		services.PATCH("/:id/description", serviceHandler.UpdateDescription)
		services.DELETE("/:id", serviceHandler.Remove)
		services.POST("/:id/permissions", serviceHandler.AddPermission)
		services.DELETE("/:id/permissions/:permissionID", serviceHandler.RemovePermission)
	}

	return r, nil
}
