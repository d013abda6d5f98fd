package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/algobros/terminal-backend/pkg/enums"
)

// Profile is the canonical trader record. Access is derived from Plan,
// IsPaid and ExpiresAt at read time, never stored.
type Profile struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email            string     `gorm:"type:text;not null;uniqueIndex:idx_profiles_email"`
	PasswordHash     string     `gorm:"column:password_hash;not null"`
	FirstName        string     `gorm:"column:first_name;not null"`
	LastName         string     `gorm:"column:last_name;not null;default:''"`
	Plan             enums.Plan `gorm:"column:plan;type:text;not null;default:'GUEST'"`
	IsPaid           bool       `gorm:"column:is_paid;not null;default:false"`
	ExpiresAt        time.Time  `gorm:"column:expires_at;not null"`
	WelcomeEmailSent bool       `gorm:"column:welcome_email_sent;not null;default:false"`
	PaymentTxID      *string    `gorm:"column:payment_tx_id"`
	LastLoginAt      *time.Time `gorm:"column:last_login_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
