package models

import "time"

const (
	PurchaseStatusCompleted = "completed"
	PurchaseStatusRefunded  = "refunded"
)

// Product identifiers as they appear in Stripe product metadata
// (metadata.product_slug).
const (
	ProductAIPremium = "ai_premium"
	ProductTextbook  = "textbook"
	ProductToolkit   = "architecture-mastery-toolkit"
)

// PurchaseRecord is an append-only ledger row for a fulfilled purchase. The
// composite unique index on (user_id, product_id, idempotency_key) is what
// makes retried webhook deliveries safe: a replay hits the existing row and
// the handler short-circuits.
type PurchaseRecord struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index:ux_purchase_records_dedupe,unique,priority:1;index" json:"user_id"`
	ProductID      string    `gorm:"type:varchar(100);not null;index:ux_purchase_records_dedupe,unique,priority:2" json:"product_id"`
	IdempotencyKey string    `gorm:"type:varchar(191);not null;index:ux_purchase_records_dedupe,unique,priority:3" json:"idempotency_key"`
	AmountCents    int64     `gorm:"default:0" json:"amount_cents"`
	Currency       string    `gorm:"type:varchar(10);default:'usd'" json:"currency"`
	CreditsGranted int       `gorm:"default:0" json:"credits_granted"`
	Status         string    `gorm:"type:varchar(20);default:'completed'" json:"status"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
