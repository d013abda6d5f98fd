package enums

import "fmt"

// Plan is the subscription tier recorded on a profile. GIFT plans come from
// operator-issued activation codes; ADMIN_GRANT is a manual access toggle.
type Plan string

const (
	PlanGuest      Plan = "GUEST"
	PlanMonthly    Plan = "MONTHLY"
	PlanYearly     Plan = "YEARLY"
	PlanGift       Plan = "GIFT"
	PlanGift24h    Plan = "GIFT_24H"
	PlanAdmin      Plan = "ADMIN"
	PlanAdminGrant Plan = "ADMIN_GRANT"
)

var validPlans = []Plan{
	PlanGuest,
	PlanMonthly,
	PlanYearly,
	PlanGift,
	PlanGift24h,
	PlanAdmin,
	PlanAdminGrant,
}

// String implements fmt.Stringer.
func (p Plan) String() string {
	return string(p)
}

// IsValid reports whether the value is known.
func (p Plan) IsValid() bool {
	for _, candidate := range validPlans {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlan converts raw input into a Plan.
func ParsePlan(value string) (Plan, error) {
	for _, candidate := range validPlans {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan %q", value)
}
