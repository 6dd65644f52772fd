package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/despensa_api/internal/middleware"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Health  *HealthHandler
	Product *ProductHandler
	Share   *ShareHandler
	SSE     *SSEHandler
}

// SetupRoutes registers the API routes. shareLimiter guards share creation.
func SetupRoutes(router *gin.Engine, handlers *Handlers, shareLimiter *middleware.RateLimiter) {
	router.GET("/health", handlers.Health.GetHealth)

	api := router.Group("/api")
	{
		api.GET("/categories", ListCategories)

		api.GET("/products", handlers.Product.ListProducts)
		api.POST("/products", handlers.Product.CreateProduct)
		api.GET("/products/:id", handlers.Product.GetProduct)
		api.DELETE("/products/:id", handlers.Product.DeleteProduct)
		api.PUT("/products/update", handlers.Product.ApplyDelta)
		api.PUT("/products/adjust", handlers.Product.AdjustQuantity)
		api.PUT("/products/update-category", handlers.Product.SetCategory)
		api.PUT("/products/update-edit", handlers.Product.EditProduct)
		api.POST("/products/:id/consume", handlers.Product.Consume)
		api.POST("/products/:id/restock", handlers.Product.Restock)

		api.POST("/products/depleted/share", shareLimiter.Middleware(), handlers.Share.ShareDepleted)
		api.GET("/share/:token", handlers.Share.GetShared)

		api.GET("/events", handlers.SSE.Stream)
	}
}
