package printer

import (
	"fmt"
	"time"
)

// TimeAgo returns a relative time string in UTC, e.g. "2 minutes ago (UTC)".
func TimeAgo(t time.Time) string {
	diff := time.Now().UTC().Sub(t.UTC())
	if diff < 0 {
		return "in the future (UTC)"
	}

	value, unit := 0, ""
	switch {
	case diff < time.Minute:
		value, unit = int(diff.Seconds()), "second"
	case diff < time.Hour:
		value, unit = int(diff.Minutes()), "minute"
	case diff < 24*time.Hour:
		value, unit = int(diff.Hours()), "hour"
	default:
		value, unit = int(diff.Hours()/24), "day"
	}

	if value == 1 {
		return fmt.Sprintf("1 %s ago (UTC)", unit)
	}
	return fmt.Sprintf("%d %ss ago (UTC)", value, unit)
}

// FormatTimestamp returns an absolute timestamp string in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
