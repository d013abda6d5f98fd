package profile

import (
	"time"

	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
)

// CreateProfileDTO carries the fields needed to insert a profile.
type CreateProfileDTO struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Plan         enums.Plan
	IsPaid       bool
	ExpiresAt    time.Time
}

// ToModel maps the DTO onto a persistence model.
func (d CreateProfileDTO) ToModel() *models.Profile {
	return &models.Profile{
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Plan:         d.Plan,
		IsPaid:       d.IsPaid,
		ExpiresAt:    d.ExpiresAt,
	}
}

// ProfileDTO is the transport shape that omits credentials.
type ProfileDTO struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Plan             enums.Plan `json:"plan"`
	IsPaid           bool       `json:"is_paid"`
	IsAdmin          bool       `json:"is_admin"`
	ExpiresAt        time.Time  `json:"expires_at"`
	WelcomeEmailSent bool       `json:"welcome_email_sent"`
	CreatedAt        time.Time  `json:"created_at"`
}

// FromCanonical maps a canonical profile onto its transport shape.
func FromCanonical(c *Canonical) *ProfileDTO {
	if c == nil {
		return nil
	}
	return &ProfileDTO{
		ID:               c.ID.String(),
		Email:            c.Email,
		FirstName:        c.FirstName,
		LastName:         c.LastName,
		Plan:             c.Plan,
		IsPaid:           c.IsPaid,
		IsAdmin:          c.IsAdmin,
		ExpiresAt:        c.ExpiresAt,
		WelcomeEmailSent: c.WelcomeEmailSent,
		CreatedAt:        c.CreatedAt,
	}
}

// ActivationDTO is the profile mutation applied when a payment verifies.
type ActivationDTO struct {
	Plan        enums.Plan
	ExpiresAt   time.Time
	PaymentTxID string
}

// PlanStat is one row of the admin sales report.
type PlanStat struct {
	Plan  enums.Plan `gorm:"column:plan"`
	Count int64      `gorm:"column:count"`
}
