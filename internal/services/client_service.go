package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ClientCredentials is returned once when a client is created. The plain
// secret is never stored.
type ClientCredentials struct {
	Client       *models.OAuthClient `json:"client"`
	ClientSecret string              `json:"client_secret"`
}

type ClientService interface {
	// RegisterClient creates a client_credentials client owned by userID
	RegisterClient(ctx context.Context, userID uint, name, scopes string) (*ClientCredentials, error)
	CreateClient(client *models.OAuthClient) error
	GetClientsByUserID(userID uint) ([]models.OAuthClient, error)
	GetClientByID(id string) (*models.OAuthClient, error)
	DeleteClient(clientID string, userID uint) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func (s *clientService) RegisterClient(ctx context.Context, userID uint, name, scopes string) (*ClientCredentials, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("name is required")
	}
	if scopes = strings.TrimSpace(scopes); scopes == "" {
		scopes = "read write"
	}

	secret := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash client secret: %w", err)
	}

	client := &models.OAuthClient{
		ID:         uuid.NewString(),
		Secret:     string(hash),
		Name:       name,
		UserID:     userID,
		Scopes:     scopes,
		GrantTypes: "client_credentials",
	}
	if err := s.db.WithContext(ctx).Create(client).Error; err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	log.WithFields(log.Fields{"client_id": client.ID, "user_id": userID}).Info("OAuth client registered")
	return &ClientCredentials{Client: client, ClientSecret: secret}, nil
}

func (s *clientService) CreateClient(client *models.OAuthClient) error {
	return s.db.Create(client).Error
}

func (s *clientService) GetClientsByUserID(userID uint) ([]models.OAuthClient, error) {
	var clients []models.OAuthClient
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *clientService) GetClientByID(id string) (*models.OAuthClient, error) {
	var client models.OAuthClient
	if err := s.db.Where("id = ?", id).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("client %s not found", id)
		}
		return nil, err
	}
	return &client, nil
}

func (s *clientService) DeleteClient(clientID string, userID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", clientID, userID).Delete(&models.OAuthClient{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("client %s not found", clientID)
	}
	return nil
}
