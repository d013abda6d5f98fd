package enums

import "fmt"

// Bias is the directional read returned by chart analysis.
type Bias string

const (
	BiasBullish Bias = "BULLISH"
	BiasBearish Bias = "BEARISH"
	BiasNeutral Bias = "NEUTRAL"
)

var validBiases = []Bias{
	BiasBullish,
	BiasBearish,
	BiasNeutral,
}

// String implements fmt.Stringer.
func (b Bias) String() string {
	return string(b)
}

// IsValid reports whether the value is known.
func (b Bias) IsValid() bool {
	for _, candidate := range validBiases {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBias converts raw input into a Bias.
func ParseBias(value string) (Bias, error) {
	for _, candidate := range validBiases {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bias %q", value)
}
