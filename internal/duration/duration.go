// Package duration converts between minute counts and the textual duration
// forms used by requests ("HH:MM") and provider pages ("2 hr 5 min").
package duration

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidFormat = errors.New("invalid duration format, expected HH:MM")
	ErrInvalidHuman  = errors.New("invalid duration phrase")
)

var (
	clockPattern = regexp.MustCompile(`^(\d{1,3}):([0-5]\d)$`)
	humanPattern = regexp.MustCompile(`(?i)^(?:(\d+)\s*(?:hours|hour|hrs|hr|h))?\s*(?:(\d+)\s*(?:minutes|minute|mins|min|m))?$`)
)

// Parse reads an "HH:MM" duration and returns it in minutes.
func Parse(s string) (int, error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	hours, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	return hours*60 + mins, nil
}

// Format renders minutes as "HH:MM". Negative values render as "00:00".
func Format(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseHuman reads phrases such as "2 hr 5 min", "2h 5min" or "45 min".
func ParseHuman(s string) (int, error) {
	s = strings.TrimSpace(s)
	m := humanPattern.FindStringSubmatch(s)
	if s == "" || m == nil || (m[1] == "" && m[2] == "") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHuman, s)
	}
	total := 0
	if m[1] != "" {
		h, _ := strconv.Atoi(m[1])
		total += h * 60
	}
	if m[2] != "" {
		mins, _ := strconv.Atoi(m[2])
		total += mins
	}
	return total, nil
}

// FormatHuman renders minutes as "Xh Ymin".
func FormatHuman(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dmin", minutes/60, minutes%60)
}
