package util

import "time"

// NowUTC is the default clock for services that accept an injectable clock.
func NowUTC() time.Time {
	return time.Now().UTC()
}
