package repository

import (
	"github.com/CourseForgeHQ/CourseForge/app/models"
	"gorm.io/gorm"
)

// emailLogRepository implements the EmailLogRepository interface
type emailLogRepository struct {
	db *gorm.DB
}

// NewEmailLogRepository creates a new email log repository instance
func NewEmailLogRepository(db *gorm.DB) EmailLogRepository {
	return &emailLogRepository{db: db}
}

// Create records an email send attempt
func (r *emailLogRepository) Create(entry *models.EmailLog) error {
	return r.db.Create(entry).Error
}

// ListByUserID returns email log entries for a user, newest first
func (r *emailLogRepository) ListByUserID(userID uint) ([]models.EmailLog, error) {
	var entries []models.EmailLog
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&entries).Error
	return entries, err
}

// ListByRecipient returns email log entries for a recipient address
func (r *emailLogRepository) ListByRecipient(email string) ([]models.EmailLog, error) {
	var entries []models.EmailLog
	err := r.db.Where("recipient_email = ?", models.NormalizeEmail(email)).
		Order("created_at DESC").Find(&entries).Error
	return entries, err
}
