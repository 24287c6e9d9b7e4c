package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusConverted = "converted"
	LeadStatusLost      = "lost"
)

// Lead is a prospective customer captured before payment, later linked to a
// User by email on conversion.
type Lead struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Email       string         `gorm:"uniqueIndex;type:varchar(200);not null" json:"email" validate:"required,email"`
	Name        string         `gorm:"type:varchar(150)" json:"name"`
	Source      string         `gorm:"type:varchar(100);index" json:"source"`
	Status      string         `gorm:"type:varchar(20);default:'new';index" json:"status" validate:"oneof=new contacted converted lost"`
	ConvertedAt *time.Time     `gorm:"type:timestamp;default:null" json:"converted_at,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// MarkConverted sets the one-way converted status. Calling it on an already
// converted lead is a no-op so replayed webhooks stay idempotent.
func (l *Lead) MarkConverted() bool {
	if l.Status == LeadStatusConverted {
		return false
	}
	now := time.Now()
	l.Status = LeadStatusConverted
	l.ConvertedAt = &now
	return true
}

// IsConverted reports whether the lead has already been converted.
func (l *Lead) IsConverted() bool {
	return l.Status == LeadStatusConverted
}
