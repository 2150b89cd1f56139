package repositories

import (
	"errors"
	"time"

	"policytracker/internal/models"

	"gorm.io/gorm"
)

var ErrClientNotFound = errors.New("client not found")

type ClientRepository interface {
	Create(db *gorm.DB, client *models.Client) error
	FindByID(db *gorm.DB, userID, id string) (*models.Client, error)
	FindByUser(db *gorm.DB, userID string) ([]models.Client, error)
	FindFollowUpsDue(db *gorm.DB, userID string, until time.Time) ([]models.Client, error)
	Update(db *gorm.DB, client *models.Client) error
	Delete(db *gorm.DB, userID, id string) error
}

type clientRepository struct{}

func NewClientRepository() ClientRepository {
	return &clientRepository{}
}

func (r *clientRepository) Create(db *gorm.DB, client *models.Client) error {
	return db.Create(client).Error
}

func (r *clientRepository) FindByID(db *gorm.DB, userID, id string) (*models.Client, error) {
	var client models.Client
	err := db.First(&client, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClientNotFound
	}
	return &client, err
}

func (r *clientRepository) FindByUser(db *gorm.DB, userID string) ([]models.Client, error) {
	var clients []models.Client
	err := db.Where("user_id = ?", userID).Order("full_name asc").Find(&clients).Error
	return clients, err
}

func (r *clientRepository) FindFollowUpsDue(db *gorm.DB, userID string, until time.Time) ([]models.Client, error) {
	var clients []models.Client
	err := db.
		Where("user_id = ? AND next_follow_up IS NOT NULL AND next_follow_up <= ?", userID, until).
		Order("next_follow_up asc").
		Find(&clients).Error
	return clients, err
}

func (r *clientRepository) Update(db *gorm.DB, client *models.Client) error {
	return db.Save(client).Error
}

func (r *clientRepository) Delete(db *gorm.DB, userID, id string) error {
	res := db.Delete(&models.Client{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrClientNotFound
	}
	return nil
}
