package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/echord/echord-backend/models"
	"github.com/echord/echord-backend/services"
)

// GET /api/v1/favorites?search=&page=1&size=20
func (s *Server) listFavorites(c *gin.Context) {
	search := c.Query("search")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	page = models.ClampPage(page)
	size = models.ClampSize(size, 20)

	favorites, total, err := s.favorites.List(search, page, size)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewPaginatedResponse(favorites, int(total), page, size))
}

// POST /api/v1/favorites
func (s *Server) createFavorite(c *gin.Context) {
	var req models.CreateFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, services.NewValidationError("the ip and alias fields are required"))
		return
	}
	if !IsValidIP(req.IP) {
		s.respondError(c, services.NewValidationError("the ip field must be a valid IP address"))
		return
	}

	fav, err := s.favorites.Create(req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "favorite created",
		"data":    fav,
	})
}

// GET /api/v1/favorites/:id
func (s *Server) getFavorite(c *gin.Context) {
	id, ok := s.favoriteID(c)
	if !ok {
		return
	}

	fav, err := s.favorites.GetByID(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": fav})
}

// PUT /api/v1/favorites/:id — full replacement, every field required.
func (s *Server) updateFavorite(c *gin.Context) {
	id, ok := s.favoriteID(c)
	if !ok {
		return
	}

	var req models.CreateFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, services.NewValidationError("the ip and alias fields are required"))
		return
	}
	if !IsValidIP(req.IP) {
		s.respondError(c, services.NewValidationError("the ip field must be a valid IP address"))
		return
	}

	fav, err := s.favorites.Update(id, req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "favorite updated",
		"data":    fav,
	})
}

// PATCH /api/v1/favorites/:id — partial update, at least one field.
func (s *Server) patchFavorite(c *gin.Context) {
	id, ok := s.favoriteID(c)
	if !ok {
		return
	}

	var req models.UpdateFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, services.NewValidationError("invalid request body"))
		return
	}
	if req.IP == nil && req.Alias == nil && req.Notes == nil && req.Tags == nil {
		s.respondError(c, services.NewValidationError("at least one field must be provided"))
		return
	}
	if req.IP != nil && !IsValidIP(*req.IP) {
		s.respondError(c, services.NewValidationError("the ip field must be a valid IP address"))
		return
	}
	if req.Alias != nil && !IsNotEmpty(*req.Alias) {
		s.respondError(c, services.NewValidationError("the alias field cannot be empty"))
		return
	}

	fav, err := s.favorites.Patch(id, req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "favorite updated",
		"data":    fav,
	})
}

// DELETE /api/v1/favorites/:id
func (s *Server) deleteFavorite(c *gin.Context) {
	id, ok := s.favoriteID(c)
	if !ok {
		return
	}

	if err := s.favorites.Delete(id); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "favorite deleted"})
}

func (s *Server) favoriteID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		s.respondError(c, services.NewValidationError("the id parameter must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}
