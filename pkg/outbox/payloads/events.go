package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/algobros/terminal-backend/pkg/enums"
)

// PaymentActivatedEvent is emitted when a payment or code verifies and the
// profile mutation commits. WelcomeEmailSent carries the flag as it stood
// before the activation so the worker can decide on the welcome mail.
type PaymentActivatedEvent struct {
	ProfileID        uuid.UUID  `json:"profile_id"`
	Email            string     `json:"email"`
	FirstName        string     `json:"first_name"`
	Plan             enums.Plan `json:"plan"`
	ExpiresAt        time.Time  `json:"expires_at"`
	TransactionID    string     `json:"transaction_id,omitempty"`
	Amount           string     `json:"amount,omitempty"`
	WelcomeEmailSent bool       `json:"welcome_email_sent"`
	IsOperator       bool       `json:"is_operator"`
}

// ProfileRegisteredEvent signals a fresh signup.
type ProfileRegisteredEvent struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
}

// KnowledgeSubmittedEvent tells the worker to extract content for an item.
type KnowledgeSubmittedEvent struct {
	KnowledgeID uuid.UUID           `json:"knowledge_id"`
	ProfileID   uuid.UUID           `json:"profile_id"`
	Type        enums.KnowledgeType `json:"type"`
	Title       string              `json:"title"`
}
