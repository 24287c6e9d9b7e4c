package repository

import (
	"github.com/CourseForgeHQ/CourseForge/app/models"
	"gorm.io/gorm"
)

// leadRepository implements the LeadRepository interface
type leadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new lead repository instance
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

// Create creates a new lead in the database
func (r *leadRepository) Create(lead *models.Lead) error {
	lead.Email = models.NormalizeEmail(lead.Email)
	return r.db.Create(lead).Error
}

// GetByID retrieves a lead by its ID
func (r *leadRepository) GetByID(id uint) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.First(&lead, id).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// GetByEmail retrieves a lead by email address
func (r *leadRepository) GetByEmail(email string) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.Where("email = ?", models.NormalizeEmail(email)).First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// Update updates an existing lead in the database
func (r *leadRepository) Update(lead *models.Lead) error {
	return r.db.Save(lead).Error
}

// List retrieves a paginated list of leads
func (r *leadRepository) List(offset, limit int) ([]models.Lead, error) {
	var leads []models.Lead
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&leads).Error
	return leads, err
}

// CountByStatus returns the number of leads with the given status
func (r *leadRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Lead{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
