package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 6
	maxSearchResults  = 20
)

// ErrInvalidCredentials is returned by Authenticate for an unknown email or a wrong password
var ErrInvalidCredentials = errors.New("invalid_credentials")

type UserService interface {
	Register(ctx context.Context, email, username, password, name string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)

	Follow(ctx context.Context, followerID, followedID uint) error
	Unfollow(ctx context.Context, followerID, followedID uint) error
	ListFollowing(ctx context.Context, userID uint) ([]models.User, error)
	ListFollowers(ctx context.Context, userID uint) ([]models.User, error)
	// SearchUsers matches username or name, case-insensitively, leaving out the caller
	SearchUsers(ctx context.Context, userID uint, query string) ([]models.User, error)
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func (s *userService) Register(ctx context.Context, email, username, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	if email == "" || username == "" {
		return nil, validationError("email and username are required")
	}
	if len(password) < minPasswordLength {
		return nil, validationError("password must be at least %d characters", minPasswordLength)
	}

	user := &models.User{
		Email:    email,
		Username: username,
		Name:     strings.TrimSpace(name),
		Password: password,
		Role:     models.RoleUser,
	}
	if err := user.HashPassword(); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("user_already_exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.WithFields(log.Fields{"user_id": user.ID, "username": user.Username}).Info("User registered")
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// CreateUser stores a user whose password is already hashed
func (s *userService) CreateUser(user *models.User) error {
	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return conflict("user_already_exists")
		}
		return err
	}
	return nil
}

func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user %s not found", email)
		}
		return nil, err
	}
	return &user, nil
}

func (s *userService) GetUserByID(id uint) (*models.User, error) {
	return loadActor(s.db, id)
}

func (s *userService) Follow(ctx context.Context, followerID, followedID uint) error {
	if followerID == followedID {
		return validationError("users cannot follow themselves")
	}

	db := s.db.WithContext(ctx)
	if _, err := loadActor(db, followedID); err != nil {
		return err
	}
	follow := models.Follow{FollowerID: followerID, FollowedID: followedID}
	if err := db.Create(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return conflict("already following user %d", followedID)
		}
		return fmt.Errorf("failed to follow user: %w", err)
	}
	return nil
}

func (s *userService) Unfollow(ctx context.Context, followerID, followedID uint) error {
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return fmt.Errorf("failed to unfollow user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("not following user %d", followedID)
	}
	return nil
}

func (s *userService) ListFollowing(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("id IN (?)", s.db.Model(&models.Follow{}).Select("followed_id").Where("follower_id = ?", userID)).
		Order("username").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list followed users: %w", err)
	}
	return users, nil
}

func (s *userService) ListFollowers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("id IN (?)", s.db.Model(&models.Follow{}).Select("follower_id").Where("followed_id = ?", userID)).
		Order("username").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	return users, nil
}

func (s *userService) SearchUsers(ctx context.Context, userID uint, query string) ([]models.User, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, validationError("search query is required")
	}

	pattern := "%" + query + "%"
	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("id <> ?", userID).
		Where("LOWER(username) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern).
		Order("username").
		Limit(maxSearchResults).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}
