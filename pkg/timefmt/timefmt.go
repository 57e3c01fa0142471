package timefmt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the storage and display form of a calendar date.
const DateLayout = "2006-01-02"

// ClockLayout is the wall-clock form used for check-in, check-out and pause times.
const ClockLayout = "15:04:05"

// TimeStringToSeconds parses "H:M" or "H:M:S" into seconds since midnight.
// Missing seconds default to 0 and an empty string yields 0.
func TimeStringToSeconds(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q: expected H:M or H:M:S", s)
	}

	values := make([]int, 3)
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		values[i] = v
	}
	if values[1] > 59 || values[2] > 59 {
		return 0, fmt.Errorf("invalid time %q: minutes and seconds must be below 60", s)
	}

	return values[0]*3600 + values[1]*60 + values[2], nil
}

// SecondsToHuman formats a duration as "<H>h <MM>m". Negative input is shown as 0h 00m
// and the seconds component is dropped.
func SecondsToHuman(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dh %02dm", seconds/3600, (seconds%3600)/60)
}

// HumanToSeconds parses the "<H>h <MM>m" form produced by SecondsToHuman.
func HumanToSeconds(s string) (int64, error) {
	var h, m int64
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%dh %dm", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return h*3600 + m*60, nil
}

// SignedHuman is SecondsToHuman with a leading sign, for surplus/deficit figures.
func SignedHuman(seconds int64) string {
	if seconds < 0 {
		return "-" + SecondsToHuman(-seconds)
	}
	return "+" + SecondsToHuman(seconds)
}

// AtClock places an "H:M[:S]" wall-clock time on the calendar date of day in loc.
func AtClock(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	secs, err := TimeStringToSeconds(clock)
	if err != nil {
		return time.Time{}, err
	}
	if secs >= 24*3600 {
		return time.Time{}, fmt.Errorf("invalid time %q: past midnight", clock)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, secs/3600, (secs%3600)/60, secs%60, 0, loc), nil
}

// Clock renders t as HH:MM:SS in loc, or "" for a nil time.
func Clock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format(ClockLayout)
}
