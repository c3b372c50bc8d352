// Package timeutil holds duration helpers shared by config and tools.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// ParseDurationOrDefault parses value and returns def when it is empty or invalid.
func ParseDurationOrDefault(value string, def time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

// FormatElapsed renders d in seconds with two decimals, e.g. "1.25s".
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
