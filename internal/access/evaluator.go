package access

import (
	"time"

	"github.com/algobros/terminal-backend/internal/profile"
	"github.com/algobros/terminal-backend/pkg/enums"
)

// DefaultGrace absorbs clock and replication skew between a payment
// confirmation and the profile refresh that follows it.
const DefaultGrace = 10 * time.Second

// Evaluate derives the access standing of a canonical profile at the given
// instant. Admin standing wins regardless of expiry. A paid profile holds
// access while expiry+grace is strictly after now; at the exact boundary
// access is already gone.
func Evaluate(p *profile.Canonical, now time.Time, grace time.Duration) enums.AccessState {
	if p == nil {
		return enums.AccessNone
	}
	if p.IsAdmin {
		return enums.AccessAdminGranted
	}
	if p.IsPaid && p.ExpiresAt.Add(grace).After(now) {
		return enums.AccessGranted
	}
	return enums.AccessPendingPayment
}
