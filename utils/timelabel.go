package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimeStyle records how a label was written so it can be formatted back the same way.
type TimeStyle int

const (
	Style24h TimeStyle = iota
	Style12h
)

const DateLayout = "2006-01-02"

var (
	ErrInvalidTimeLabel = errors.New("invalid time label")
	ErrInvalidDate      = errors.New("invalid date")

	timeLabelRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?:\s*([AaPp][Mm]))?$`)
)

// ParseTimeLabel converts "HH:MM" or "HH:MM AM/PM" into minutes after midnight.
func ParseTimeLabel(label string) (int, TimeStyle, error) {
	m := timeLabelRe.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeLabel, label)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeLabel, label)
	}

	if m[3] == "" {
		if hour > 23 {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeLabel, label)
		}
		return hour*60 + minute, Style24h, nil
	}

	if hour < 1 || hour > 12 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeLabel, label)
	}
	hour %= 12
	if strings.EqualFold(m[3], "pm") {
		hour += 12
	}
	return hour*60 + minute, Style12h, nil
}

// FormatTimeLabel renders minutes after midnight in the given style.
func FormatTimeLabel(minuteOfDay int, style TimeStyle) string {
	hour, minute := minuteOfDay/60, minuteOfDay%60
	if style == Style24h {
		return fmt.Sprintf("%02d:%02d", hour, minute)
	}
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h12 := hour % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%02d:%02d %s", h12, minute, suffix)
}

// CanonicalTimeLabel normalizes a label to its canonical rendering in its own style.
func CanonicalTimeLabel(label string) (string, int, error) {
	minutes, style, err := ParseTimeLabel(label)
	if err != nil {
		return "", 0, err
	}
	return FormatTimeLabel(minutes, style), minutes, nil
}

// ParseDate validates a "YYYY-MM-DD" date.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}

// SessionTimestamp combines a date and a time label into an instant in loc.
func SessionTimestamp(date, label string, loc *time.Location) (time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	minutes, _, err := ParseTimeLabel(label)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, loc), nil
}

// LoadLocation resolves an IANA zone, falling back when name is empty or unknown.
func LoadLocation(name, fallback string) *time.Location {
	for _, candidate := range []string{name, fallback} {
		if candidate == "" {
			continue
		}
		if loc, err := time.LoadLocation(candidate); err == nil {
			return loc
		}
	}
	return time.UTC
}

// TodayIn returns the calendar date of now in loc.
func TodayIn(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(DateLayout)
}
