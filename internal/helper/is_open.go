package helper

import (
	"fmt"
	"strings"
	"time"
)

// OpeningHours is a daily open/close window in a fixed location.
type OpeningHours struct {
	open  time.Duration
	close time.Duration
	loc   *time.Location
}

// ParseOpeningHours accepts HH:MM or HH:MM:SS. A close time before the open
// time means the shop closes after midnight.
func ParseOpeningHours(open, close, timezone string) (*OpeningHours, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	o, err := parseClock(open)
	if err != nil {
		return nil, fmt.Errorf("open time: %w", err)
	}
	c, err := parseClock(close)
	if err != nil {
		return nil, fmt.Errorf("close time: %w", err)
	}

	return &OpeningHours{open: o, close: c, loc: loc}, nil
}

func parseClock(value string) (time.Duration, error) {
	// normalize HH:MM to HH:MM:SS
	if strings.Count(value, ":") == 1 {
		value += ":00"
	}
	t, err := time.Parse("15:04:05", value)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

// IsOpen reports whether now falls inside the window.
func (h *OpeningHours) IsOpen(now time.Time) bool {
	now = now.In(h.loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc)

	openTime := midnight.Add(h.open)
	closeTime := midnight.Add(h.close)

	if closeTime.Before(openTime) {
		closeTime = closeTime.Add(24 * time.Hour)

		// still inside yesterday's window
		if now.Before(openTime) {
			openTime = openTime.Add(-24 * time.Hour)
			closeTime = closeTime.Add(-24 * time.Hour)
		}
	}

	return !now.Before(openTime) && now.Before(closeTime)
}
