package sensor

import (
	"log/slog"
	"time"

	"github.com/nathan-osman/go-sunrise"
	u "lautenbacher.net/ledtree/util"
)

// NightOnly wraps an Input and suppresses it between sunrise and sunset
// at the given location, so the tree only reacts in the dark.
type NightOnly struct {
	input     Input
	clock     u.Clock
	latitude  float64
	longitude float64
	night     *bool
}

func NewNightOnly(input Input, clock u.Clock, latitude, longitude float64) *NightOnly {
	return &NightOnly{
		input:     input,
		clock:     clock,
		latitude:  latitude,
		longitude: longitude,
	}
}

func (s *NightOnly) Active() bool {
	night := s.IsNight(s.clock.Now())
	if s.night == nil || *s.night != night {
		if night {
			slog.Info("Sun has set, motion sensor enabled")
		} else {
			slog.Info("Sun is up, motion sensor disabled")
		}
		s.night = &night
	}
	if !night {
		return false
	}
	return s.input.Active()
}

// IsNight reports whether t lies outside every sunrise to sunset span at
// the location. Days without sunrise or sunset (polar night or midnight
// sun) count as night.
func (s *NightOnly) IsNight(t time.Time) bool {
	t = t.UTC()
	// Local days do not line up with UTC days away from Greenwich, so
	// the neighbouring days are checked as well.
	for _, offset := range []int{-1, 0, 1} {
		day := t.AddDate(0, 0, offset)
		rise, set := sunrise.SunriseSunset(s.latitude, s.longitude, day.Year(), day.Month(), day.Day())
		if rise.IsZero() || set.IsZero() {
			continue
		}
		if !t.Before(rise) && t.Before(set) {
			return false
		}
	}
	return true
}
