package schedule

import (
	"log/slog"
	"time"
)

// BookingWindowDays is how many days ahead, today included, customers may book.
const BookingWindowDays = 30

// Generator builds the theoretical slot grid for a day from the business hours.
type Generator struct {
	hours    BusinessHours
	location *time.Location
	logger   *slog.Logger
}

func NewGenerator(hours BusinessHours, location *time.Location, logger *slog.Logger) *Generator {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		hours:    hours,
		location: location,
		logger:   logger,
	}
}

// Location is the shop's local timezone.
func (g *Generator) Location() *time.Location {
	return g.location
}

// Generate returns the candidate start times for a YYYY-MM-DD date and a service duration.
// A missing date, missing duration or unparsable date yields no slots.
func (g *Generator) Generate(date string, duration int) []Clock {
	if date == "" || duration <= 0 {
		return nil
	}

	day, err := ParseDate(date, g.location)
	if err != nil {
		g.logger.Warn("slot generation skipped: invalid date", "date", date, "err", err)
		return nil
	}

	return g.SlotsFor(day)
}

// SlotsFor enumerates on-the-hour and half-hour marks from opening up to and including
// the closing hour. The half-hour mark is dropped from the last hour before closing,
// so the final slot is the closing hour itself.
func (g *Generator) SlotsFor(day time.Time) []Clock {
	dh, open := g.hours.For(day.Weekday())
	if !open || dh.Open > dh.Close {
		return nil
	}

	slots := make([]Clock, 0, (dh.Close-dh.Open+1)*(60/SlotGranularity))
	for hour := dh.Open; hour <= dh.Close; hour++ {
		slots = append(slots, NewClock(hour, 0))
		if hour < dh.Close-1 {
			slots = append(slots, NewClock(hour, SlotGranularity))
		}
	}
	return slots
}

// IsDateEligible reports whether the shop opens on that day's weekday.
func (g *Generator) IsDateEligible(day time.Time) bool {
	_, open := g.hours.For(day.Weekday())
	return open
}

// InWindow reports whether day falls within the booking window starting at today.
func (g *Generator) InWindow(day, today time.Time) bool {
	start := truncateDay(today, g.location)
	d := truncateDay(day, g.location)
	return !d.Before(start) && d.Before(start.AddDate(0, 0, BookingWindowDays))
}

// AvailableDates lists the eligible days among from and the following days-1 days.
func (g *Generator) AvailableDates(from time.Time, days int) []time.Time {
	start := truncateDay(from, g.location)
	dates := make([]time.Time, 0, days)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		if g.IsDateEligible(d) {
			dates = append(dates, d)
		}
	}
	return dates
}

func truncateDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
