package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ClockTime is a time of day in minutes after midnight.
type ClockTime int

// ParseClock parses "H:MM" or "HH:MM" (seconds suffix tolerated).
func ParseClock(value string) (ClockTime, bool) {
	value = strings.TrimSpace(value)
	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	if len(parts[1]) != 2 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return ClockTime(h*60 + m), true
}

// String formats as zero-padded HH:MM.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}
