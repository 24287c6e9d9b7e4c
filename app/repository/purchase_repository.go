package repository

import (
	"errors"

	"github.com/CourseForgeHQ/CourseForge/app/models"
	"gorm.io/gorm"
)

// purchaseRepository implements the PurchaseRepository interface
type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase ledger repository instance
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

// Create appends a purchase record. The composite unique index on
// (user_id, product_id, idempotency_key) makes a duplicate insert fail
// instead of silently double-recording a payment.
func (r *purchaseRepository) Create(record *models.PurchaseRecord) error {
	return r.db.Create(record).Error
}

// GetByIdempotencyKey fetches the ledger row for a specific payment attempt
func (r *purchaseRepository) GetByIdempotencyKey(userID uint, productID, key string) (*models.PurchaseRecord, error) {
	var record models.PurchaseRecord
	err := r.db.
		Where("user_id = ? AND product_id = ? AND idempotency_key = ?", userID, productID, key).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ExistsByIdempotencyKey reports whether a payment attempt is already recorded
func (r *purchaseRepository) ExistsByIdempotencyKey(userID uint, productID, key string) (bool, error) {
	_, err := r.GetByIdempotencyKey(userID, productID, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListByUserID returns all purchases for a user, newest first
func (r *purchaseRepository) ListByUserID(userID uint) ([]models.PurchaseRecord, error) {
	var records []models.PurchaseRecord
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&records).Error
	return records, err
}
