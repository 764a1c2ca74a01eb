package middleware

import (
	"errors"
	"net/http"
	"strings"

	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const userContextKey = "user"

// Auth verifies the bearer token on every request and attaches the resolved
// user to the context. There is no server-side session state: the token is
// trusted purely on its signature and expiry.
func Auth(db *gorm.DB, authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := resolveUser(c, db, authService)
		if !ok {
			return
		}
		c.Set(userContextKey, user)
		c.Set("user_id", user.ID.String())
		c.Next()
	}
}

// AdminAuth composes Auth with a role check.
func AdminAuth(db *gorm.DB, authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := resolveUser(c, db, authService)
		if !ok {
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Admin access required",
			})
			return
		}
		c.Set(userContextKey, user)
		c.Set("user_id", user.ID.String())
		c.Next()
	}
}

func resolveUser(c *gin.Context, db *gorm.DB, authService services.AuthService) (*models.User, bool) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"message": "Authentication required",
		})
		return nil, false
	}

	tokenString := strings.TrimPrefix(header, "Bearer ")

	userID, err := authService.ParseToken(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"message": "Invalid or expired token",
		})
		return nil, false
	}

	// The token outlives account deletion, so the subject must still exist.
	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
			})
			return nil, false
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message": "Server error",
			"error":   err.Error(),
		})
		return nil, false
	}

	return &user, true
}

// CurrentUser returns the user attached by Auth. The second return is false
// on routes that skipped the auth middleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
