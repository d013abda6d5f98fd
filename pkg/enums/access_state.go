package enums

import "fmt"

// AccessState is the evaluated standing of a profile at a point in time.
// It is derived, never stored.
type AccessState string

const (
	AccessNone           AccessState = "NONE"
	AccessAdminGranted   AccessState = "ADMIN_GRANTED"
	AccessGranted        AccessState = "GRANTED"
	AccessPendingPayment AccessState = "PENDING_PAYMENT"
)

var validAccessStates = []AccessState{
	AccessNone,
	AccessAdminGranted,
	AccessGranted,
	AccessPendingPayment,
}

// String implements fmt.Stringer.
func (s AccessState) String() string {
	return string(s)
}

// HasAccess reports whether the state unlocks the gated surface.
func (s AccessState) HasAccess() bool {
	return s == AccessGranted || s == AccessAdminGranted
}

// IsValid reports whether the value is known.
func (s AccessState) IsValid() bool {
	for _, candidate := range validAccessStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAccessState converts raw input into an AccessState.
func ParseAccessState(value string) (AccessState, error) {
	for _, candidate := range validAccessStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid access state %q", value)
}
