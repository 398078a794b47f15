package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for appointment dates.
const DateLayout = "2006-01-02"

var ErrInvalidClock = errors.New("invalid time of day")

// Clock is a wall-clock time of day expressed in minutes since midnight.
// Values past 24:00 are allowed so that end times keep their hour carry.
type Clock int

// EndOfDay is midnight closing the day, the latest an appointment may end.
const EndOfDay Clock = 24 * 60

// NewClock builds a Clock from an hour and minute.
func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ParseClock accepts "HH:MM" and the "HH:MM:SS" form Postgres returns for time columns.
// Hours past 23 are read as written, so "24:00:00" is midnight at the end of the day.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	hour, okH := clockField(parts[0], 1, 99)
	minute, okM := clockField(parts[1], 2, 59)
	if !okH || !okM {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	if len(parts) == 3 {
		if _, ok := clockField(parts[2], 2, 59); !ok {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
	}
	return NewClock(hour, minute), nil
}

// clockField parses a field of minDigits or two digits no greater than max.
func clockField(s string, minDigits, max int) (int, bool) {
	if len(s) < minDigits || len(s) > 2 {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n > max {
		return 0, false
	}
	return n, true
}

// MustParseClock is ParseClock for literals known to be valid.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

// Add returns the clock shifted by the given number of minutes.
func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

// String formats the clock as zero-padded HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// On anchors the clock to the given calendar day in that day's location.
func (c Clock) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, day.Location()).Add(time.Duration(c) * time.Minute)
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseDate parses a YYYY-MM-DD date in the given location.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout, s, loc)
}

// FormatDate renders a day as YYYY-MM-DD.
func FormatDate(day time.Time) string {
	return day.Format(DateLayout)
}
