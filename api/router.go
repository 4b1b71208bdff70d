package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers every endpoint under /api/v1.
func SetupRoutes(r *gin.Engine, s *Server) {
	r.Use(CORSMiddleware())
	r.GET("/", s.root)
	r.NoRoute(NotFoundHandler)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", s.healthCheck)

		shodan := v1.Group("/shodan")
		{
			shodan.GET("/search", s.searchHosts)
			shodan.GET("/host/:ip", s.getHostInfo)
		}

		cache := v1.Group("/cache")
		{
			cache.GET("/stats", s.cacheStats)
			cache.POST("/clean", s.cleanCache)
			cache.DELETE("/clear", s.clearCache)
		}

		favorites := v1.Group("/favorites")
		{
			favorites.GET("", s.listFavorites)
			favorites.POST("", s.createFavorite)
			favorites.GET("/:id", s.getFavorite)
			favorites.PUT("/:id", s.updateFavorite)
			favorites.PATCH("/:id", s.patchFavorite)
			favorites.DELETE("/:id", s.deleteFavorite)
		}
	}
}
