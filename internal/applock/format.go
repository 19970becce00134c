package applock

import (
	"fmt"
	"time"
)

// FormatLockoutRemaining renders d in the coarsest unit that fits, rounded
// up so a running lockout never reads as zero: "1 second", "30 seconds",
// "1 minute", "5 minutes", "1 hour". The unit is picked after rounding, so
// 59.5s reads as "1 minute".
func FormatLockoutRemaining(d time.Duration) string {
	if d <= 0 {
		return plural(0, "second")
	}
	secs := ceilDiv(d, time.Second)
	if secs < 60 {
		return plural(secs, "second")
	}
	mins := (secs + 59) / 60
	if mins < 60 {
		return plural(mins, "minute")
	}
	return plural((mins+59)/60, "hour")
}

func ceilDiv(d, unit time.Duration) int64 {
	return int64((d + unit - 1) / unit)
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
