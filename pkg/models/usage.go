package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Reading represents a single row of a utility usage export
type Reading struct {
	Startdate string          `json:"startdate"`  // Raw timestamp as exported
	Flow      string          `json:"power_flow"` // e.g. "Delivered" or "Received"
	Usage     decimal.Decimal `json:"usage"`      // kWh
}

// Granularity selects the calendar bucket used when aggregating readings
type Granularity int

const (
	Day Granularity = iota
	Month
	Year
)

// String returns the display name, also used as the chart x-axis label
func (g Granularity) String() string {
	switch g {
	case Month:
		return "Month"
	case Year:
		return "Year"
	default:
		return "Day"
	}
}

// Code returns the single letter configuration code for the granularity
func (g Granularity) Code() string {
	switch g {
	case Month:
		return "M"
	case Year:
		return "Y"
	default:
		return "D"
	}
}

// ParseGranularity maps a configuration code (D, M, Y) to a Granularity.
// Unknown codes fall back to Day.
func ParseGranularity(code string) Granularity {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "M":
		return Month
	case "Y":
		return Year
	default:
		return Day
	}
}
