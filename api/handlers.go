package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/echord/echord-backend/config"
	"github.com/echord/echord-backend/services"
)

// Server groups the handlers' collaborators. Everything is injected so
// handler tests can run against an in-memory store and a stub gateway.
type Server struct {
	cfg          config.Config
	orchestrator *services.Orchestrator
	cache        *services.Store
	favorites    *services.FavoritesService
}

func NewServer(cfg config.Config, orchestrator *services.Orchestrator, cache *services.Store, favorites *services.FavoritesService) *Server {
	return &Server{
		cfg:          cfg,
		orchestrator: orchestrator,
		cache:        cache,
		favorites:    favorites,
	}
}

// GET /api/v1/shodan/search?q=<query>&page=1&size=10
func (s *Server) searchHosts(c *gin.Context) {
	query := c.Query("q")
	if !IsNotEmpty(query) {
		s.respondError(c, services.NewValidationError("the q (query) parameter is required and cannot be empty"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	result, err := s.orchestrator.Search(c.Request.Context(), query, page, size)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/v1/shodan/host/:ip — accepts an IP address or a hostname.
func (s *Server) getHostInfo(c *gin.Context) {
	target := c.Param("ip")
	if !IsValidIPOrHostname(target) {
		s.respondError(c, services.NewValidationError("the provided IP address or hostname is not valid"))
		return
	}

	record, err := s.orchestrator.HostInfo(c.Request.Context(), target)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

// GET /api/v1/cache/stats
func (s *Server) cacheStats(c *gin.Context) {
	stats, err := s.cache.Stats()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   stats,
		"cache_config": gin.H{
			"search_expiry_hours": s.cfg.SearchTTLHours,
			"host_expiry_hours":   s.cfg.HostTTLHours,
			"dns_expiry_hours":    s.cfg.DNSTTLHours,
		},
	})
}

// POST /api/v1/cache/clean — deletes expired entries across all kinds.
func (s *Server) cleanCache(c *gin.Context) {
	deleted, err := s.cache.Sweep()
	if err != nil {
		s.respondError(c, err)
		return
	}

	stats, err := s.cache.Stats()
	if err != nil {
		log.Printf("[CACHE] stats after clean failed: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "expired cache entries removed",
		"deleted": deleted,
		"data":    stats,
	})
}

// DELETE /api/v1/cache/clear — truncates every cache kind. Meant for
// development, not production traffic.
func (s *Server) clearCache(c *gin.Context) {
	deleted, err := s.cache.ClearAll()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "all cache entries removed",
		"data":    deleted,
	})
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"message": "Echord backend is running",
	})
}

// GET / — service descriptor, mirrors the health and endpoint map the
// frontend expects at the root.
func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "Echord Backend",
		"version":     "1.0.0",
		"description": "Shodan search proxy with TTL caching and favorites",
		"endpoints": gin.H{
			"health": "/api/v1/health",
			"shodan": gin.H{
				"search": "/api/v1/shodan/search?q=<query>&page=1&size=10",
				"host":   "/api/v1/shodan/host/:ip",
			},
			"cache": gin.H{
				"stats": "/api/v1/cache/stats",
				"clean": "POST /api/v1/cache/clean",
				"clear": "DELETE /api/v1/cache/clear",
			},
			"favorites": gin.H{
				"list":   "/api/v1/favorites?search=&page=1&size=20",
				"create": "POST /api/v1/favorites",
				"get":    "/api/v1/favorites/:id",
				"update": "PUT /api/v1/favorites/:id",
				"patch":  "PATCH /api/v1/favorites/:id",
				"delete": "DELETE /api/v1/favorites/:id",
			},
		},
	})
}
