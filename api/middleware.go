package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows any origin; the API is read-mostly and keyless
// toward clients.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// NotFoundHandler returns the JSON 404 body for unknown routes.
func NotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":     "Route not found",
		"message":   "the route " + c.Request.Method + " " + c.Request.URL.Path + " does not exist",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
