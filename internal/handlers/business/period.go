package business

import (
	"fmt"
	"time"
)

const periodLayout = "2006-01"

// PeriodOf returns the calendar period ("YYYY-MM") a timestamp falls in.
// The period is derived once per request and passed into every core
// operation; the core never reads the clock for bucketing.
func PeriodOf(t time.Time) string {
	return t.Format(periodLayout)
}

// PeriodStart returns the first instant of a (validated) period. Used as
// the re-pin stamp so the comparison stays on the caller's period, not on
// whatever month the process happens to run in.
func PeriodStart(period string) time.Time {
	t, _ := time.Parse(periodLayout, period)
	return t
}

// ValidatePeriod checks the "YYYY-MM" format.
func ValidatePeriod(period string) error {
	if _, err := time.Parse(periodLayout, period); err != nil {
		return fmt.Errorf("%w: bad period %q, want YYYY-MM", ErrInvalidAmount, period)
	}
	return nil
}
