package utils

import (
	"math"
	"strings"
	"time"

	"frontdesk-rental-backend/internal/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultLateFeeIncrementMinutes = 30
	DefaultLateFeePerIncrement     = 500
	DefaultHotelLuggageUnitPrice   = 500
)

// DefaultBikePlanHours maps rental plan keys to their duration in hours.
var DefaultBikePlanHours = map[string]float64{
	"1h":       1,
	"2h":       2,
	"3h":       3,
	"4h":       4,
	"half_day": 4,
	"full_day": 8,
}

// Pricing holds the tariff applied at return and registration time
type Pricing struct {
	LateFeeIncrementMinutes int
	LateFeePerIncrement     int
	HotelLuggageUnitPrice   int
	BikePlanHours           map[string]float64
}

// Lateness describes how far a return is past its expected time
type Lateness struct {
	IsLate      bool
	MinutesLate int
}

// Billing provides the amount due at return when a late fee applies
type Billing struct {
	OriginalPrice float64 `json:"originalPrice"`
	LateFee       int     `json:"lateFee"`
	TotalDue      float64 `json:"totalDue"`
}

// DefaultPricing returns the front desk tariff: ¥500 per started 30 minutes late.
func DefaultPricing() Pricing {
	return Pricing{
		LateFeeIncrementMinutes: DefaultLateFeeIncrementMinutes,
		LateFeePerIncrement:     DefaultLateFeePerIncrement,
		HotelLuggageUnitPrice:   DefaultHotelLuggageUnitPrice,
		BikePlanHours:           DefaultBikePlanHours,
	}
}

// CalculateLateness compares now against the stored expected return time.
// A blank or unparseable expected return is never late.
func CalculateLateness(expectedReturn string, now time.Time) Lateness {
	expected, ok := domain.ParseTime(expectedReturn)
	if !ok || !now.After(expected) {
		return Lateness{}
	}
	minutes := int(math.Ceil(now.Sub(expected).Minutes()))
	return Lateness{IsLate: true, MinutesLate: minutes}
}

// LateFee charges one increment for every started increment of lateness.
// Only bikes carry a late fee.
func (p Pricing) LateFee(service domain.ServiceType, l Lateness) int {
	if service != domain.ServiceBike || !l.IsLate || l.MinutesLate <= 0 {
		return 0
	}
	increment := p.LateFeeIncrementMinutes
	if increment <= 0 {
		increment = DefaultLateFeeIncrementMinutes
	}
	increments := (l.MinutesLate + increment - 1) / increment
	return increments * p.LateFeePerIncrement
}

// CalculateBilling returns nil when there is no late fee to collect.
func (p Pricing) CalculateBilling(service domain.ServiceType, originalPrice float64, l Lateness) *Billing {
	fee := p.LateFee(service, l)
	if fee <= 0 {
		return nil
	}
	return &Billing{
		OriginalPrice: originalPrice,
		LateFee:       fee,
		TotalDue:      originalPrice + float64(fee),
	}
}

// PlanDuration resolves a bike rental plan to its length. Plan keys are matched
// case-insensitively; unknown plans report ok=false.
func (p Pricing) PlanDuration(plan string) (time.Duration, bool) {
	key := strings.ToLower(strings.TrimSpace(plan))
	if key == "" {
		return 0, false
	}
	hours, ok := p.BikePlanHours[key]
	if !ok || hours <= 0 {
		return 0, false
	}
	return time.Duration(hours * float64(time.Hour)), true
}

// ExpectedReturn is checkedInAt plus the plan length when the plan is known.
func (p Pricing) ExpectedReturn(plan string, checkedInAt time.Time) (time.Time, bool) {
	d, ok := p.PlanDuration(plan)
	if !ok {
		return time.Time{}, false
	}
	return checkedInAt.Add(d), true
}

// HotelLuggagePrice is the partner-hotel price for a luggage registration.
func (p Pricing) HotelLuggagePrice(count int) int {
	if count <= 0 {
		return 0
	}
	return count * p.HotelLuggageUnitPrice
}

var yenPrinter = message.NewPrinter(language.Japanese)

// FormatYen renders an amount with a yen sign and thousands separators,
// e.g. ¥1,500. Fractions are rounded to whole yen.
func FormatYen(amount float64) string {
	n := int64(math.Round(amount))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	return sign + "¥" + yenPrinter.Sprintf("%d", n)
}
