package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatRoundedUnit formats seconds as a single rounded-down unit, e.g. "5m".
func FormatRoundedUnit(seconds int64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds > 3600 {
		return fmt.Sprintf("%dh", int64(seconds/3600))
	}
	return fmt.Sprintf("%dm", int64(seconds/60))
}

// FormatDuration formats d as space separated components from the largest
// to the smallest non-zero unit, e.g. "1h 0m 5.25s". Durations under a
// second are shown in milliseconds.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "-" + FormatDuration(-d)
	}
	if d == 0 {
		return "0s"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	ms := d.Milliseconds()
	parts := []struct {
		value int64
		unit  string
	}{
		{ms / 86_400_000, "d"},
		{ms / 3_600_000 % 24, "h"},
		{ms / 60_000 % 60, "m"},
		{ms % 60_000, "s"},
	}

	first, last := -1, -1
	for i, p := range parts {
		if p.value != 0 {
			if first < 0 {
				first = i
			}
			last = i
		}
	}

	var b strings.Builder
	for i := first; i <= last; i++ {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		if parts[i].unit == "s" {
			b.WriteString(formatSeconds(parts[i].value))
			continue
		}
		b.WriteString(strconv.FormatInt(parts[i].value, 10))
		b.WriteString(parts[i].unit)
	}
	return b.String()
}

func formatSeconds(ms int64) string {
	s := strconv.FormatFloat(float64(ms)/1000.0, 'f', 3, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s + "s"
}
