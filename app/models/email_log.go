package models

import "time"

const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

const (
	EmailTypePurchaseConfirmation = "purchase_confirmation"
	EmailTypeWelcome              = "welcome"
	EmailTypePasswordReset        = "password_reset"
)

// EmailLog records every confirmation email send attempt for audit and
// support lookups, whether or not the provider accepted it.
type EmailLog struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            *uint     `gorm:"index" json:"user_id,omitempty"`
	EmailType         string    `gorm:"type:varchar(50);not null;index" json:"email_type"`
	RecipientEmail    string    `gorm:"type:varchar(200);not null;index" json:"recipient_email"`
	ProviderMessageID string    `gorm:"type:varchar(191)" json:"provider_message_id"`
	Status            string    `gorm:"type:varchar(20);not null" json:"status"`
	ErrorMessage      string    `gorm:"type:text" json:"error_message"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
