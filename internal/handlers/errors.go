package handlers

import (
	"errors"
	"net/http"

	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
)

// respondServiceError translates the service error taxonomy into the HTTP
// contract: 400 for validation/conflict/self-delete, 401 bad credentials,
// 403 insufficient permissions, 404 missing resource, 500 for anything the
// store threw that we did not expect.
func respondServiceError(c *gin.Context, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": notFoundMessage})
	case errors.Is(err, services.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
	case errors.Is(err, services.ErrInvalidPriority):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid priority"})
	case errors.Is(err, services.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid role"})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
	case errors.Is(err, services.ErrSelfDelete):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cannot delete yourself"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Insufficient permissions"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
	}
}
