package models

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_USER  = "user"
	ROLE_ADMIN = "admin"
)

const (
	TierBasic   = "basic"
	TierPremium = "premium"
	TierVIP     = "vip"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
	PaymentStatusTrial   = "trial"
)

type User struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	FullName           string         `gorm:"type:varchar(150)" json:"full_name" validate:"max=150"`
	Email              string         `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Password           string         `gorm:"type:text" json:"-" validate:"required,min=6"`
	Role               string         `gorm:"type:varchar(50);default:'user'" json:"role" validate:"oneof=user admin"`
	Tier               string         `gorm:"type:varchar(20);default:'basic';index" json:"tier" validate:"oneof=basic premium vip"`
	PaymentStatus      string         `gorm:"type:varchar(20);default:'pending';index" json:"payment_status" validate:"oneof=pending paid failed trial"`
	EmailVerified      bool           `gorm:"default:false" json:"email_verified"`
	AICredits          int            `gorm:"default:0" json:"ai_credits"`
	BonusPoints        int            `gorm:"default:0" json:"bonus_points"`
	ToolkitPurchases   int            `gorm:"default:0" json:"toolkit_purchases"`
	LifetimeSpendCents int64          `gorm:"default:0" json:"lifetime_spend_cents"`
	ResetToken         string         `gorm:"type:varchar(100);index" json:"-"`
	ResetSentAt        *time.Time     `gorm:"type:timestamp;default:null" json:"-"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// CreateUser builds an unsaved user with a hashed password. Emails are
// stored lowercased so lookups stay case-insensitive.
func CreateUser(fullName string, email string, password string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		FullName:      fullName,
		Email:         NormalizeEmail(email),
		Password:      pw,
		Role:          ROLE_USER,
		Tier:          TierBasic,
		PaymentStatus: PaymentStatusPending,
	}

	err = u.Validate()
	if err != nil {
		return nil, err
	}

	return u, nil
}

// NormalizeEmail canonicalizes an address for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}

// GenerateResetToken creates a random password-reset token and sets ResetSentAt
func (u *User) GenerateResetToken() error {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return err
	}
	u.ResetToken = hex.EncodeToString(b)
	now := time.Now()
	u.ResetSentAt = &now
	return nil
}

// IsResetTokenValid checks that the reset token matches and is not expired (24 hours)
func (u *User) IsResetTokenValid(token string) bool {
	if u.ResetToken == "" || u.ResetSentAt == nil {
		return false
	}
	if u.ResetToken != token {
		return false
	}
	return time.Since(*u.ResetSentAt) < 24*time.Hour
}

// TierRank maps a tier to its ordinal position in the upgrade lattice.
// Unknown tiers rank as basic.
func TierRank(tier string) int {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case TierVIP:
		return 3
	case TierPremium:
		return 2
	default:
		return 1
	}
}

// IsUpgrade reports whether moving to the candidate tier is a strict upgrade.
// Webhook-driven tier changes never downgrade.
func (u *User) IsUpgrade(candidate string) bool {
	return TierRank(candidate) > TierRank(u.Tier)
}
