package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func interval(id, start, end string) Interval {
	return Interval{ID: id, Start: MustParseClock(start), End: MustParseClock(end)}
}

func TestIsAvailable(t *testing.T) {
	tests := []struct {
		name     string
		slot     string
		duration int
		existing []Interval
		want     bool
	}{
		{
			name:     "same start is blocked",
			slot:     "09:00",
			duration: 30,
			existing: []Interval{interval("a", "09:00", "09:30")},
			want:     false,
		},
		{
			name:     "ends where existing starts",
			slot:     "08:30",
			duration: 30,
			existing: []Interval{interval("a", "09:00", "09:30")},
			want:     true,
		},
		{
			name:     "starts where existing ends",
			slot:     "09:30",
			duration: 30,
			existing: []Interval{interval("a", "09:00", "09:30")},
			want:     true,
		},
		{
			name:     "start inside existing",
			slot:     "10:30",
			duration: 60,
			existing: []Interval{interval("a", "10:00", "11:00")},
			want:     false,
		},
		{
			name:     "end inside existing",
			slot:     "09:30",
			duration: 60,
			existing: []Interval{interval("a", "10:00", "11:00")},
			want:     false,
		},
		{
			name:     "after existing",
			slot:     "11:00",
			duration: 60,
			existing: []Interval{interval("a", "10:00", "11:00")},
			want:     true,
		},
		{
			name:     "slot encloses existing",
			slot:     "09:30",
			duration: 120,
			existing: []Interval{interval("a", "10:00", "11:00")},
			want:     false,
		},
		{
			name:     "second existing blocks",
			slot:     "14:00",
			duration: 30,
			existing: []Interval{interval("a", "10:00", "11:00"), interval("b", "13:30", "14:30")},
			want:     false,
		},
		{
			name:     "no existing appointments",
			slot:     "14:00",
			duration: 30,
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsAvailable(MustParseClock(tt.slot), tt.duration, tt.existing, "")
			assert.Equal(t, tt.want, got)
		})
	}
}

// Exhaustive check that the three-rule predicate equals half-open interval overlap.
func TestBlocks_MatchesHalfOpenOverlap(t *testing.T) {
	for exStart := 0; exStart <= 180; exStart += 15 {
		for exLen := 15; exLen <= 120; exLen += 15 {
			iv := Interval{Start: Clock(exStart), End: Clock(exStart + exLen)}
			for start := 0; start <= 240; start += 15 {
				for dur := 15; dur <= 120; dur += 15 {
					overlap := start < int(iv.End) && start+dur > int(iv.Start)
					assert.Equal(t, overlap, iv.Blocks(Clock(start), dur),
						"slot %d+%d vs [%d,%d)", start, dur, iv.Start, iv.End)
				}
			}
		}
	}
}

func TestFilter_ExcludesEditedAppointment(t *testing.T) {
	own := interval("own", "10:00", "11:00")
	other := interval("other", "12:00", "12:30")
	slots := []Clock{MustParseClock("10:00"), MustParseClock("10:30"), MustParseClock("12:00")}

	withSelf := Filter(slots, 60, []Interval{own, other}, "")
	assert.False(t, withSelf[0].Available)

	excluded := Filter(slots, 60, []Interval{own, other}, "own")
	assert.True(t, excluded[0].Available, "own start time must not self-block")
	assert.True(t, excluded[1].Available)
	assert.False(t, excluded[2].Available)
}

func TestFilter_Idempotent(t *testing.T) {
	g := newTestGenerator()
	slots := g.Generate("2026-02-04", 45)
	existing := []Interval{interval("a", "09:00", "09:45"), interval("b", "17:30", "18:30")}

	first := Filter(slots, 45, existing, "")
	second := Filter(slots, 45, existing, "")
	assert.Equal(t, first, second)
	assert.Len(t, first, len(slots))
}

func TestFind(t *testing.T) {
	slots := Filter([]Clock{MustParseClock("08:00")}, 30, nil, "")

	s, ok := Find(slots, MustParseClock("08:00"))
	assert.True(t, ok)
	assert.True(t, s.Available)

	_, ok = Find(slots, MustParseClock("08:15"))
	assert.False(t, ok)
}
