package schedule

import (
	"fmt"
	"strings"
	"time"
)

// SlotGranularity is the spacing between generated slots, in minutes.
const SlotGranularity = 30

// DayHours is the opening window of a single weekday, in whole hours.
type DayHours struct {
	Open   int  `toml:"open" json:"open"`
	Close  int  `toml:"close" json:"close"`
	Closed bool `toml:"closed" json:"closed"`
}

// BusinessHours holds the opening window for every weekday, indexed by time.Weekday.
type BusinessHours struct {
	Days [7]DayHours
}

// DefaultHours opens 08:00-22:00 on weekdays, 08:00-16:00 on Saturday and stays closed on Sunday.
func DefaultHours() BusinessHours {
	var h BusinessHours
	for d := time.Monday; d <= time.Friday; d++ {
		h.Days[d] = DayHours{Open: 8, Close: 22}
	}
	h.Days[time.Saturday] = DayHours{Open: 8, Close: 16}
	h.Days[time.Sunday] = DayHours{Closed: true}
	return h
}

// For returns the hours of the given weekday and whether the shop opens at all.
func (h BusinessHours) For(day time.Weekday) (DayHours, bool) {
	d := h.Days[day]
	return d, !d.Closed
}

// Override replaces the hours of the weekdays named in days ("monday", "sat", ...).
// The closing hour is itself a slot, so it must start before midnight.
func (h BusinessHours) Override(days map[string]DayHours) (BusinessHours, error) {
	for name, dh := range days {
		wd, err := parseWeekday(name)
		if err != nil {
			return h, err
		}
		if !dh.Closed {
			if dh.Open < 0 || dh.Close > 23 {
				return h, fmt.Errorf("hours for %s out of range: %d-%d", name, dh.Open, dh.Close)
			}
			if dh.Open > dh.Close {
				return h, fmt.Errorf("hours for %s open after close: %d-%d", name, dh.Open, dh.Close)
			}
		}
		h.Days[wd] = dh
	}
	return h, nil
}

func parseWeekday(name string) (time.Weekday, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if n == full || n == full[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}
