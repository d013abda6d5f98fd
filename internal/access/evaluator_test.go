package access

import (
	"testing"
	"time"

	"github.com/algobros/terminal-backend/internal/profile"
	"github.com/algobros/terminal-backend/pkg/enums"
)

func TestEvaluateNilProfile(t *testing.T) {
	if got := Evaluate(nil, time.Now(), DefaultGrace); got != enums.AccessNone {
		t.Fatalf("expected NONE for nil profile, got %s", got)
	}
}

func TestEvaluateAdminOverridesExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &profile.Canonical{
		IsAdmin:   true,
		IsPaid:    false,
		ExpiresAt: now.AddDate(-1, 0, 0),
	}
	if got := Evaluate(p, now, DefaultGrace); got != enums.AccessAdminGranted {
		t.Fatalf("expected ADMIN_GRANTED, got %s", got)
	}
}

func TestEvaluateGraceBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name      string
		expiresAt time.Time
		want      enums.AccessState
	}{
		{"well inside expiry", now.Add(time.Hour), enums.AccessGranted},
		{"inside grace window", now.Add(-9 * time.Second), enums.AccessGranted},
		{"one ms before boundary", now.Add(-10*time.Second + time.Millisecond), enums.AccessGranted},
		{"exactly at boundary", now.Add(-10 * time.Second), enums.AccessPendingPayment},
		{"past grace window", now.Add(-11 * time.Second), enums.AccessPendingPayment},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &profile.Canonical{IsPaid: true, ExpiresAt: tc.expiresAt}
			if got := Evaluate(p, now, DefaultGrace); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestEvaluateUnpaidIsPendingPayment(t *testing.T) {
	now := time.Now()
	p := &profile.Canonical{
		IsPaid:    false,
		ExpiresAt: now.Add(time.Hour),
	}
	if got := Evaluate(p, now, DefaultGrace); got != enums.AccessPendingPayment {
		t.Fatalf("expected PENDING_PAYMENT, got %s", got)
	}
}
