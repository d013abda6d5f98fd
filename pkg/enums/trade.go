package enums

import "fmt"

// TradeStatus tracks a journal entry through its lifecycle. PENDING entries
// resolve exactly once into WIN, LOSS or BE.
type TradeStatus string

const (
	TradePending   TradeStatus = "PENDING"
	TradeWin       TradeStatus = "WIN"
	TradeLoss      TradeStatus = "LOSS"
	TradeBreakEven TradeStatus = "BE"
)

var validTradeStatuses = []TradeStatus{
	TradePending,
	TradeWin,
	TradeLoss,
	TradeBreakEven,
}

// String implements fmt.Stringer.
func (s TradeStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s TradeStatus) IsValid() bool {
	for _, candidate := range validTradeStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsOutcome reports whether the value closes a pending trade.
func (s TradeStatus) IsOutcome() bool {
	return s == TradeWin || s == TradeLoss || s == TradeBreakEven
}

// ParseTradeStatus converts raw input into a TradeStatus.
func ParseTradeStatus(value string) (TradeStatus, error) {
	for _, candidate := range validTradeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid trade status %q", value)
}

// TradeDirection is the side of a journal entry.
type TradeDirection string

const (
	DirectionLong  TradeDirection = "LONG"
	DirectionShort TradeDirection = "SHORT"
)

var validTradeDirections = []TradeDirection{
	DirectionLong,
	DirectionShort,
}

// String implements fmt.Stringer.
func (d TradeDirection) String() string {
	return string(d)
}

// IsValid reports whether the value is known.
func (d TradeDirection) IsValid() bool {
	for _, candidate := range validTradeDirections {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseTradeDirection converts raw input into a TradeDirection.
func ParseTradeDirection(value string) (TradeDirection, error) {
	for _, candidate := range validTradeDirections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid trade direction %q", value)
}
