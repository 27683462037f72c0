package orbit

import (
	"time"

	"github.com/pnt/pntgo/internal/coords"
	"github.com/pnt/pntgo/internal/rinex"
)

// State is one propagated result: a GPS timestamp in seconds paired with an
// ECEF position in meters.
type State struct {
	Time     float64
	Position coords.ECEF
}

// Satellite is a space vehicle with its propagation history. The state
// sequence is replaced, not appended to, on every propagation call.
type Satellite struct {
	ID     int
	Name   string
	States []State
}

// NewSatellite creates a satellite with an empty state history.
func NewSatellite(id int, name string) *Satellite {
	return &Satellite{ID: id, Name: name}
}

// Propagate computes the satellite's ECEF states over [start, start+duration)
// at the given step and stores them as the new state history, returning the
// number of states produced. The records should already be filtered to this
// satellite.
func (s *Satellite) Propagate(p *Propagator, start time.Time, duration, step time.Duration, recs rinex.EphemerisSet) (int, error) {
	states, err := p.Propagate(start, duration, step, recs)
	if err != nil {
		return 0, err
	}
	s.States = states
	return len(states), nil
}

// Config holds propagation settings.
type Config struct {
	Workers int // epoch fan-out width; <= 1 runs sequentially
}
