package handlers

import (
	"net/http"

	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db          *gorm.DB
	authService services.AuthService
	userService services.UserService
}

func NewAuthHandler(db *gorm.DB, authService services.AuthService, userService services.UserService) *AuthHandler {
	return &AuthHandler{db: db, authService: authService, userService: userService}
}

// Register creates a regular user account. Signup never grants admin; admin
// accounts are created through POST /users by an existing admin.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}

	user, err := h.userService.CreateUser(h.db, req.Name, req.Email, req.Password, models.RoleUser)
	if err != nil {
		respondServiceError(c, err, "Unable to register user")
		return
	}

	token, expiresIn, err := h.authService.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":      token,
		"expires_in": expiresIn,
		"user":       user,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}

	user, err := h.authService.Authenticate(h.db, req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, "User not found")
		return
	}

	token, expiresIn, err := h.authService.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": expiresIn,
		"user":       user,
	})
}
