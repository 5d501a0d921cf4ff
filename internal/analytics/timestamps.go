package analytics

import "time"

// UnknownDate buckets orders without a usable timestamp.
const UnknownDate = "Unknown"

// DateKey returns the UTC calendar day of ts as YYYY-MM-DD.
func DateKey(ts time.Time) string {
	if ts.IsZero() {
		return UnknownDate
	}
	return ts.UTC().Format(time.DateOnly)
}
