package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/preciosya/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *slog.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		v1.GET("/retailers", handler.ListRetailers)
		v1.POST("/search/item", handler.SearchItem)

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handler.CreateSession)
			sessions.GET("/:id", handler.GetSession)
			sessions.DELETE("/:id", handler.DeleteSession)
			sessions.PUT("/:id/retailers", handler.SetRetailers)
			sessions.POST("/:id/retailers/:retailer/toggle", handler.ToggleRetailer)
			sessions.POST("/:id/retailers/:retailer/cart", handler.ToggleRetailerCart)
			sessions.POST("/:id/search", handler.SearchList)

			sessions.POST("/:id/options", handler.OpenOptions)
			sessions.GET("/:id/options", handler.GetOptions)
			sessions.DELETE("/:id/options", handler.CloseOptions)
			sessions.PUT("/:id/options/highlight", handler.HighlightOption)
			sessions.POST("/:id/options/apply", handler.ApplyOption)
		}

		cart := v1.Group("/cart")
		{
			cart.GET("", handler.GetCart)
			cart.DELETE("", handler.ClearCart)
			cart.POST("/items", handler.AddCartItem)
			cart.PUT("/items/:id", handler.UpdateCartItem)
			cart.DELETE("/items/:id", handler.RemoveCartItem)
			cart.POST("/items/:id/decrement", handler.DecrementCartItem)
		}
	}

	return router
}
