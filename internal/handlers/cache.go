package handlers

import (
	"net/http"

	"task-tracker/backend/internal/cache"

	"github.com/gin-gonic/gin"
)

type CacheHandler struct {
	cache cache.Cache
}

func NewCacheHandler(cacheInstance cache.Cache) *CacheHandler {
	return &CacheHandler{cache: cacheInstance}
}

// GetCacheStats reports hit/miss counters and backend state. Admin only.
func (h *CacheHandler) GetCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.cache.Stats())
}

func (h *CacheHandler) GetCacheHealth(c *gin.Context) {
	if err := h.cache.Health(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
