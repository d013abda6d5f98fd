package enums

import "fmt"

// Timeframe is a chart interval accepted by the analysis pipeline,
// ordered from highest to lowest.
type Timeframe string

const (
	TimeframeMonthly Timeframe = "1M"
	TimeframeWeekly  Timeframe = "1W"
	TimeframeDaily   Timeframe = "1D"
	Timeframe4H      Timeframe = "4H"
	Timeframe1H      Timeframe = "1H"
	Timeframe15Min   Timeframe = "15min"
	Timeframe5Min    Timeframe = "5min"
	Timeframe1Min    Timeframe = "1min"
)

// Timeframes lists the accepted intervals, highest first. Analysis prompts
// present charts in this order regardless of submission order.
var Timeframes = []Timeframe{
	TimeframeMonthly,
	TimeframeWeekly,
	TimeframeDaily,
	Timeframe4H,
	Timeframe1H,
	Timeframe15Min,
	Timeframe5Min,
	Timeframe1Min,
}

// String implements fmt.Stringer.
func (t Timeframe) String() string {
	return string(t)
}

// IsValid reports whether the value is known.
func (t Timeframe) IsValid() bool {
	for _, candidate := range Timeframes {
		if candidate == t {
			return true
		}
	}
	return false
}

// Rank returns the position of the timeframe in the canonical high-to-low
// ordering. Unknown values sort last.
func (t Timeframe) Rank() int {
	for i, candidate := range Timeframes {
		if candidate == t {
			return i
		}
	}
	return len(Timeframes)
}

// ParseTimeframe converts raw input into a Timeframe.
func ParseTimeframe(value string) (Timeframe, error) {
	for _, candidate := range Timeframes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid timeframe %q", value)
}
