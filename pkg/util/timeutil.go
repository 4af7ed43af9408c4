package util

import (
	"math"
	"time"
)

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// maxAdvanceDays caps a single AddWeeks step at roughly ten thousand years.
const maxAdvanceDays = 3_650_000

// AddWeeks advances t by a fractional number of weeks. Whole days go through
// AddDate so long spans never overflow a Duration; non-positive spans leave t as is.
func AddWeeks(t time.Time, weeks float64) time.Time {
	if !(weeks > 0) {
		return t
	}
	days := weeks * 7
	if days >= maxAdvanceDays {
		return t.AddDate(0, 0, maxAdvanceDays)
	}
	whole := math.Floor(days)
	rest := time.Duration((days - whole) * 24 * float64(time.Hour))
	return t.AddDate(0, 0, int(whole)).Add(rest)
}
