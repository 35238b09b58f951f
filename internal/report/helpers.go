package report

import "time"

// TimestampLayout formats generation and modification times.
const TimestampLayout = "2006-01-02 15:04:05"

// Truncate shortens s to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Local().Format(TimestampLayout)
}
