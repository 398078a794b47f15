package schedule

// Interval is an existing appointment's occupied span on a barber's day.
type Interval struct {
	ID    string `json:"id"`
	Start Clock  `json:"start"`
	End   Clock  `json:"end"`
}

// Slot is a generated start time together with its availability.
type Slot struct {
	Time      Clock `json:"time"`
	Available bool  `json:"available"`
}

// Blocks reports whether a slot starting at start and lasting duration minutes
// overlaps the interval. Touching at a boundary is not an overlap.
func (iv Interval) Blocks(start Clock, duration int) bool {
	end := start.Add(duration)
	return (start >= iv.Start && start < iv.End) ||
		(end > iv.Start && end <= iv.End) ||
		(start <= iv.Start && end >= iv.End)
}

// IsAvailable checks one slot against the existing intervals, ignoring excludeID.
func IsAvailable(start Clock, duration int, existing []Interval, excludeID string) bool {
	for _, iv := range existing {
		if excludeID != "" && iv.ID == excludeID {
			continue
		}
		if iv.Blocks(start, duration) {
			return false
		}
	}
	return true
}

// Filter marks every slot available or blocked against the existing intervals.
// The interval whose ID equals excludeID is the appointment being edited and is skipped.
func Filter(slots []Clock, duration int, existing []Interval, excludeID string) []Slot {
	out := make([]Slot, len(slots))
	for i, s := range slots {
		out[i] = Slot{
			Time:      s,
			Available: IsAvailable(s, duration, existing, excludeID),
		}
	}
	return out
}

// Find returns the slot at the given time, if it was generated.
func Find(slots []Slot, at Clock) (Slot, bool) {
	for _, s := range slots {
		if s.Time == at {
			return s, true
		}
	}
	return Slot{}, false
}
