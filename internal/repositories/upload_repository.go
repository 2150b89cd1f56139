package repositories

import (
	"errors"

	"policytracker/internal/models"

	"gorm.io/gorm"
)

var ErrUploadNotFound = errors.New("upload not found")

type UploadRepository interface {
	Create(db *gorm.DB, upload *models.Upload) error
	FindByID(db *gorm.DB, userID, id string) (*models.Upload, error)
	FindByPolicy(db *gorm.DB, userID, policyID string) ([]models.Upload, error)
	Delete(db *gorm.DB, userID, id string) error
}

type uploadRepository struct{}

func NewUploadRepository() UploadRepository {
	return &uploadRepository{}
}

func (r *uploadRepository) Create(db *gorm.DB, upload *models.Upload) error {
	return db.Create(upload).Error
}

func (r *uploadRepository) FindByID(db *gorm.DB, userID, id string) (*models.Upload, error) {
	var upload models.Upload
	err := db.First(&upload, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUploadNotFound
	}
	return &upload, err
}

func (r *uploadRepository) FindByPolicy(db *gorm.DB, userID, policyID string) ([]models.Upload, error) {
	var uploads []models.Upload
	err := db.Where("user_id = ? AND policy_id = ?", userID, policyID).
		Order("created_at desc").
		Find(&uploads).Error
	return uploads, err
}

func (r *uploadRepository) Delete(db *gorm.DB, userID, id string) error {
	res := db.Delete(&models.Upload{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUploadNotFound
	}
	return nil
}
