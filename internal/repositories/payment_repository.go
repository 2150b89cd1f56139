package repositories

import (
	"errors"
	"time"

	"policytracker/internal/models"

	"gorm.io/gorm"
)

var ErrPaymentNotFound = errors.New("payment request not found")

type PaymentRepository interface {
	Create(db *gorm.DB, payment *models.PaymentRequest) error
	FindByOrderID(db *gorm.DB, orderID string) (*models.PaymentRequest, error)
	FindByUser(db *gorm.DB, userID string) ([]models.PaymentRequest, error)
	UpdateStatus(db *gorm.DB, orderID string, status models.PaymentStatus, completedAt *time.Time) error
}

type paymentRepository struct{}

func NewPaymentRepository() PaymentRepository {
	return &paymentRepository{}
}

func (r *paymentRepository) Create(db *gorm.DB, payment *models.PaymentRequest) error {
	return db.Create(payment).Error
}

func (r *paymentRepository) FindByOrderID(db *gorm.DB, orderID string) (*models.PaymentRequest, error) {
	var payment models.PaymentRequest
	err := db.First(&payment, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	return &payment, err
}

func (r *paymentRepository) FindByUser(db *gorm.DB, userID string) ([]models.PaymentRequest, error) {
	var payments []models.PaymentRequest
	err := db.Where("user_id = ?", userID).Order("created_at desc").Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) UpdateStatus(db *gorm.DB, orderID string, status models.PaymentStatus, completedAt *time.Time) error {
	res := db.Model(&models.PaymentRequest{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": completedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}
