package services

import (
	"errors"
	"fmt"
	"time"

	"task-tracker/backend/internal/models"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "task-tracker-backend"
	tokenAudience = "task-tracker-users"
)

type AuthService interface {
	Authenticate(db *gorm.DB, email, password string) (*models.User, error)
	GenerateToken(user *models.User) (string, int64, error)
	ParseToken(tokenString string) (uuid.UUID, error)
}

type AuthServiceImpl struct {
	secret   string
	tokenTTL time.Duration
}

func NewAuthService(secret string, tokenTTL time.Duration) *AuthServiceImpl {
	return &AuthServiceImpl{secret: secret, tokenTTL: tokenTTL}
}

func HashPassword(plainPassword string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func (s *AuthServiceImpl) Authenticate(db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !VerifyPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GenerateToken issues a self-contained signed access token. There is no
// server-side token state: the token is valid until it expires.
func (s *AuthServiceImpl) GenerateToken(user *models.User) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"email":   user.Email,
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
		"iss":     tokenIssuer,
		"aud":     tokenAudience,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign access token: %w", err)
	}

	return signed, int64(s.tokenTTL.Seconds()), nil
}

// ParseToken verifies the signature and expiry and returns the subject's id.
func (s *AuthServiceImpl) ParseToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token claims")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing user_id in token")
	}

	userID, err := uuid.FromString(userIDStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user_id format: %w", err)
	}

	return userID, nil
}
