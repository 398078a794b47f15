package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/schedule"
)

// hoursFile is the TOML layout of BUSINESS_HOURS_FILE:
//
//	[days.saturday]
//	open = 9
//	close = 14
//
//	[days.sunday]
//	closed = true
//
// Days left out keep the default hours.
type hoursFile struct {
	Days map[string]schedule.DayHours `toml:"days"`
}

// LoadHours returns the default business hours overridden by the file at path.
// An empty path keeps the defaults.
func LoadHours(path string) (schedule.BusinessHours, error) {
	hours := schedule.DefaultHours()
	if path == "" {
		return hours, nil
	}

	var f hoursFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return hours, fmt.Errorf("read business hours %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return hours, fmt.Errorf("business hours %s: unknown keys %v", path, undecoded)
	}

	return hours.Override(f.Days)
}
