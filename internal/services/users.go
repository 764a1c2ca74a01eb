package services

import (
	"errors"
	"time"

	"task-tracker/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type UserService interface {
	ListUsers(db *gorm.DB) ([]models.User, error)
	GetUserByID(db *gorm.DB, id uuid.UUID) (*models.User, error)
	CreateUser(db *gorm.DB, name, email, password, role string) (*models.User, error)
	DeleteUser(db *gorm.DB, id, actingUserID uuid.UUID) error
}

type UserServiceImpl struct{}

func NewUserService() *UserServiceImpl {
	return &UserServiceImpl{}
}

func (s *UserServiceImpl) ListUsers(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	result := db.Order("created_at asc").Find(&users)
	return users, result.Error
}

func (s *UserServiceImpl) GetUserByID(db *gorm.DB, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser hashes the password and persists the account. The email must be
// unique; the role defaults to "user" when empty.
func (s *UserServiceImpl) CreateUser(db *gorm.DB, name, email, password, role string) (*models.User, error) {
	if role == "" {
		role = models.RoleUser
	}
	if !models.IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := models.User{
		ID:        uuid.Must(uuid.NewV4()),
		Name:      name,
		Email:     email,
		Password:  hashedPassword,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// DeleteUser removes an account. Deleting your own account is forbidden so an
// admin cannot lock everyone out.
func (s *UserServiceImpl) DeleteUser(db *gorm.DB, id, actingUserID uuid.UUID) error {
	var user models.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if user.ID == actingUserID {
		return ErrSelfDelete
	}

	return db.Delete(&models.User{}, "id = ?", id).Error
}
