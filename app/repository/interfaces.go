package repository

import (
	"time"

	"github.com/CourseForgeHQ/CourseForge/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByResetToken(token string) (*models.User, error)
	// GetOrCreateByEmail inserts the given user unless a row with the same
	// email already exists, and returns the stored row either way. The bool
	// reports whether a new row was created.
	GetOrCreateByEmail(user *models.User) (*models.User, bool, error)
	Update(user *models.User) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// LeadRepository defines the interface for lead-capture records
type LeadRepository interface {
	Create(lead *models.Lead) error
	GetByID(id uint) (*models.Lead, error)
	GetByEmail(email string) (*models.Lead, error)
	Update(lead *models.Lead) error
	List(offset, limit int) ([]models.Lead, error)
	CountByStatus(status string) (int64, error)
}

// PurchaseRepository defines the interface for the append-only purchase ledger
type PurchaseRepository interface {
	Create(record *models.PurchaseRecord) error
	GetByIdempotencyKey(userID uint, productID, key string) (*models.PurchaseRecord, error)
	ExistsByIdempotencyKey(userID uint, productID, key string) (bool, error)
	ListByUserID(userID uint) ([]models.PurchaseRecord, error)
}

// EmailLogRepository defines the interface for email send audit rows
type EmailLogRepository interface {
	Create(entry *models.EmailLog) error
	ListByUserID(userID uint) ([]models.EmailLog, error)
	ListByRecipient(email string) ([]models.EmailLog, error)
}

// WebhookEventRepository defines the interface for received-event audit rows
type WebhookEventRepository interface {
	// CreateIfNotExists stores the event unless one with the same provider
	// event id is already recorded. The bool reports whether a row was
	// created by this call.
	CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
	ListRecent(limit int) ([]models.WebhookEvent, error)
	PurgeOlderThan(cutoff time.Time) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Lead         LeadRepository
	Purchase     PurchaseRepository
	EmailLog     EmailLogRepository
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Lead:         NewLeadRepository(db),
		Purchase:     NewPurchaseRepository(db),
		EmailLog:     NewEmailLogRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}
