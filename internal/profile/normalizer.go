package profile

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
)

const (
	defaultFirstName = "Trader"

	// Records with no recorded expiry predate the payment system. The epoch
	// default keeps them unambiguously expired instead of nullable.
	defaultExpiry = "2000-01-01"
)

// Canonical is the normalized profile shape every access decision reads.
// Every field is concrete; normalization fills defaults so downstream code
// never branches on missing values.
type Canonical struct {
	ID               uuid.UUID
	Email            string
	FirstName        string
	LastName         string
	Plan             enums.Plan
	IsPaid           bool
	ExpiresAt        time.Time
	IsAdmin          bool
	WelcomeEmailSent bool
	CreatedAt        time.Time
}

// Normalizer maps raw legacy records and typed rows into Canonical profiles.
type Normalizer struct {
	// operatorEmail grants admin standing. Matched case-insensitively:
	// registration lowercases stored emails while the configured address is
	// mixed-case, so an exact comparison would never fire on live rows.
	operatorEmail string
}

// NewNormalizer builds a normalizer with the operator override email.
func NewNormalizer(operatorEmail string) *Normalizer {
	return &Normalizer{operatorEmail: operatorEmail}
}

// Normalize converts a raw legacy record into a Canonical profile. Keys are
// resolved snake_case first, then camelCase. Booleans count as set only when
// the value is literally true. Nil input returns nil.
func (n *Normalizer) Normalize(raw map[string]any) *Canonical {
	if raw == nil {
		return nil
	}

	c := &Canonical{
		Email:     stringField(raw, "email", ""),
		FirstName: stringField(raw, "first_name", "firstName"),
		LastName:  stringField(raw, "last_name", "lastName"),
		IsPaid:    boolField(raw, "is_paid", "isPaid"),
		Plan:      planField(raw),
		ExpiresAt: expiryField(raw),
	}
	if c.FirstName == "" {
		c.FirstName = defaultFirstName
	}
	c.WelcomeEmailSent = boolField(raw, "welcome_email_sent", "welcomeEmailSent")

	if id := stringField(raw, "id", ""); id != "" {
		if parsed, err := uuid.Parse(id); err == nil {
			c.ID = parsed
		}
	}
	if created := timeField(raw, "created_at", "createdAt"); !created.IsZero() {
		c.CreatedAt = created
	}

	c.IsAdmin = boolField(raw, "is_admin", "isAdmin") || n.isAdmin(c.Email, c.Plan)
	return c
}

// FromModel applies the same invariants to a typed row.
func (n *Normalizer) FromModel(p *models.Profile) *Canonical {
	if p == nil {
		return nil
	}

	c := &Canonical{
		ID:               p.ID,
		Email:            p.Email,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Plan:             p.Plan,
		IsPaid:           p.IsPaid,
		ExpiresAt:        p.ExpiresAt.UTC(),
		WelcomeEmailSent: p.WelcomeEmailSent,
		CreatedAt:        p.CreatedAt.UTC(),
	}
	if c.FirstName == "" {
		c.FirstName = defaultFirstName
	}
	if !c.Plan.IsValid() {
		c.Plan = enums.PlanGuest
	}
	if c.ExpiresAt.IsZero() {
		c.ExpiresAt = mustParseDate(defaultExpiry)
	}
	c.IsAdmin = n.isAdmin(c.Email, c.Plan)
	return c
}

func (n *Normalizer) isAdmin(email string, plan enums.Plan) bool {
	if plan == enums.PlanAdmin {
		return true
	}
	return n.operatorEmail != "" && strings.EqualFold(email, n.operatorEmail)
}

func stringField(raw map[string]any, snake, camel string) string {
	for _, key := range []string{snake, camel} {
		if key == "" {
			continue
		}
		if v, ok := raw[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func boolField(raw map[string]any, snake, camel string) bool {
	for _, key := range []string{snake, camel} {
		if v, ok := raw[key].(bool); ok && v {
			return true
		}
	}
	return false
}

func planField(raw map[string]any) enums.Plan {
	if v := stringField(raw, "plan", "subscription_type"); v != "" {
		if plan, err := enums.ParsePlan(v); err == nil {
			return plan
		}
	}
	return enums.PlanGuest
}

func expiryField(raw map[string]any) time.Time {
	if t := timeField(raw, "expiry_date", "expiryDate"); !t.IsZero() {
		return t
	}
	if t := timeField(raw, "expires_at", "expiresAt"); !t.IsZero() {
		return t
	}
	return mustParseDate(defaultExpiry)
}

func timeField(raw map[string]any, snake, camel string) time.Time {
	v := stringField(raw, snake, camel)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func mustParseDate(value string) time.Time {
	t, _ := time.Parse("2006-01-02", value)
	return t.UTC()
}
