package schedule

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator() *Generator {
	return NewGenerator(DefaultHours(), time.UTC, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func clocks(t *testing.T, ss ...string) []Clock {
	t.Helper()
	out := make([]Clock, len(ss))
	for i, s := range ss {
		c, err := ParseClock(s)
		require.NoError(t, err)
		out[i] = c
	}
	return out
}

func TestGenerate_WeekdaysCloseAtTwentyTwo(t *testing.T) {
	g := newTestGenerator()

	// 2026-02-02 is a Monday.
	for i := 0; i < 5; i++ {
		date := time.Date(2026, 2, 2+i, 0, 0, 0, 0, time.UTC)
		t.Run(date.Weekday().String(), func(t *testing.T) {
			slots := g.Generate(FormatDate(date), 30)
			require.Len(t, slots, 28)

			assert.Equal(t, "08:00", slots[0].String())
			assert.Equal(t, "22:00", slots[len(slots)-1].String())
			assert.NotContains(t, slots, MustParseClock("22:30"))
			assert.NotContains(t, slots, MustParseClock("21:30"))
			assert.Equal(t, clocks(t, "20:30", "21:00", "22:00"), slots[len(slots)-3:])
		})
	}
}

func TestGenerate_SaturdayClosesAtSixteen(t *testing.T) {
	g := newTestGenerator()

	slots := g.Generate("2026-02-07", 45)
	require.Len(t, slots, 16)
	assert.Equal(t, "16:00", slots[len(slots)-1].String())
	assert.NotContains(t, slots, MustParseClock("16:30"))
	assert.Equal(t, clocks(t, "14:30", "15:00", "16:00"), slots[len(slots)-3:])
}

func TestGenerate_Empty(t *testing.T) {
	g := newTestGenerator()

	tests := []struct {
		name     string
		date     string
		duration int
	}{
		{name: "no date", date: "", duration: 30},
		{name: "no service", date: "2026-02-02", duration: 0},
		{name: "unparsable date", date: "02/02/2026", duration: 30},
		{name: "sunday", date: "2026-02-08", duration: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, g.Generate(tt.date, tt.duration))
		})
	}
}

func TestSlotsFor_OpenAfterCloseIsEmpty(t *testing.T) {
	hours := DefaultHours()
	hours.Days[time.Monday] = DayHours{Open: 18, Close: 10}
	g := NewGenerator(hours, time.UTC, nil)

	assert.Empty(t, g.SlotsFor(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)))
}

func TestGenerate_IndependentOfDuration(t *testing.T) {
	g := newTestGenerator()
	assert.Equal(t, g.Generate("2026-02-03", 30), g.Generate("2026-02-03", 90))
}

func TestIsDateEligible(t *testing.T) {
	g := newTestGenerator()

	for i := 0; i < 7; i++ {
		day := time.Date(2026, 2, 2+i, 0, 0, 0, 0, time.UTC)
		want := day.Weekday() != time.Sunday
		assert.Equal(t, want, g.IsDateEligible(day), day.Weekday().String())
	}
}

func TestAvailableDates_SkipsSundays(t *testing.T) {
	g := newTestGenerator()
	from := time.Date(2026, 2, 2, 15, 30, 0, 0, time.UTC)

	dates := g.AvailableDates(from, BookingWindowDays)

	require.Len(t, dates, 26)
	assert.Equal(t, "2026-02-02", FormatDate(dates[0]))
	assert.Equal(t, "2026-03-03", FormatDate(dates[len(dates)-1]))
	for _, d := range dates {
		assert.NotEqual(t, time.Sunday, d.Weekday())
	}
	// Saturdays stay bookable.
	assert.Contains(t, dates, time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC))
}

func TestInWindow(t *testing.T) {
	g := newTestGenerator()
	today := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)

	assert.True(t, g.InWindow(today, today))
	assert.True(t, g.InWindow(today.AddDate(0, 0, 29), today))
	assert.False(t, g.InWindow(today.AddDate(0, 0, 30), today))
	assert.False(t, g.InWindow(today.AddDate(0, 0, -1), today))
}

func TestOverride(t *testing.T) {
	hours, err := DefaultHours().Override(map[string]DayHours{
		"Sun": {Open: 10, Close: 14},
		"sat": {Closed: true},
	})
	require.NoError(t, err)

	sun, open := hours.For(time.Sunday)
	assert.True(t, open)
	assert.Equal(t, 14, sun.Close)

	_, open = hours.For(time.Saturday)
	assert.False(t, open)

	rejected := []struct {
		name string
		days map[string]DayHours
	}{
		{name: "unknown weekday", days: map[string]DayHours{"funday": {Open: 8, Close: 9}}},
		{name: "midnight slot", days: map[string]DayHours{"friday": {Open: 8, Close: 24}}},
		{name: "negative open", days: map[string]DayHours{"friday": {Open: -1, Close: 12}}},
		{name: "open after close", days: map[string]DayHours{"friday": {Open: 18, Close: 10}}},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultHours().Override(tt.days)
			assert.Error(t, err)
		})
	}

	// A closed day may carry any numbers.
	_, err = DefaultHours().Override(map[string]DayHours{"sun": {Open: 30, Close: 2, Closed: true}})
	assert.NoError(t, err)

	late, err := DefaultHours().Override(map[string]DayHours{"fri": {Open: 8, Close: 23}})
	require.NoError(t, err)
	fri, _ := late.For(time.Friday)
	assert.Equal(t, 23, fri.Close)
}
