// Package orbit propagates GPS broadcast ephemerides to ECEF positions using
// the standard Keplerian broadcast orbit model: iterative eccentric-anomaly
// solution, second-harmonic perturbation corrections, and Earth-rotation
// correction of the ascending node.
//
// Reference: IS-GPS-200, section 20.3.3.4.3 (user algorithm for ephemeris
// determination).
package orbit

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/pnt/pntgo/internal/coords"
	"github.com/pnt/pntgo/internal/gnsstime"
	"github.com/pnt/pntgo/internal/metrics"
	"github.com/pnt/pntgo/internal/rinex"
)

const (
	keplerMaxIter = 30
	keplerTol     = 1e-8
)

// Propagator computes satellite states on a time grid. Each epoch is
// independent of the others, so the grid is mapped across a configurable
// number of goroutines.
type Propagator struct {
	cfg    Config
	logger *slog.Logger
}

// NewPropagator creates a propagator with the given settings.
func NewPropagator(cfg Config, logger *slog.Logger) *Propagator {
	return &Propagator{cfg: cfg, logger: logger}
}

// Propagate computes one State per epoch of the grid start, start+step, ...
// covering floor(duration/step) epochs, in epoch order. Per epoch it selects
// the record whose reference time is nearest the epoch, so recs should
// already be filtered to one satellite. An empty record set or a
// non-positive step is an error.
func (p *Propagator) Propagate(start time.Time, duration, step time.Duration, recs rinex.EphemerisSet) ([]State, error) {
	if len(recs) == 0 {
		return nil, errors.New("empty ephemeris set")
	}
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %s", step)
	}
	if duration < 0 {
		return nil, fmt.Errorf("duration must not be negative, got %s", duration)
	}

	n := int(duration / step)
	times := make([]float64, n)
	for i := range times {
		times[i] = gnsstime.GPSSeconds(start.Add(time.Duration(i) * step))
	}

	begin := time.Now()
	states := p.mapEpochs(times, recs)
	elapsed := time.Since(begin)

	metrics.RecordPropagation(elapsed, n)
	p.logger.Debug("propagation complete",
		"epochs", n,
		"records", len(recs),
		"workers", p.workers(len(times)),
		"duration_ms", elapsed.Milliseconds(),
	)
	return states, nil
}

// positionAt runs the full broadcast orbit model for a single epoch t
// (GPS seconds) against the nearest ephemeris record.
func positionAt(t float64, recs rinex.EphemerisSet) State {
	rec := nearestRecord(recs, t)

	a := rec.SqrtA * rec.SqrtA
	tk := weekRollover(t - rec.Toe)

	// Corrected mean motion and mean anomaly.
	n0 := math.Sqrt(gnsstime.MuEarth / (a * a * a))
	m := rec.M0 + (n0+rec.DeltaN)*tk

	ecc := rec.Eccentricity
	ea := solveKepler(m, ecc)
	sinE, cosE := math.Sin(ea), math.Cos(ea)

	// True anomaly and argument of latitude.
	nu := math.Atan2(math.Sqrt(1-ecc*ecc)*sinE, cosE-ecc)
	phi := nu + rec.Omega

	// Second-harmonic perturbation corrections.
	sin2phi, cos2phi := math.Sin(2*phi), math.Cos(2*phi)
	du := rec.Cus*sin2phi + rec.Cuc*cos2phi
	dr := rec.Crs*sin2phi + rec.Crc*cos2phi
	di := rec.Cis*sin2phi + rec.Cic*cos2phi

	u := phi + du
	r := a*(1-ecc*cosE) + dr
	incl := rec.I0 + di + rec.IDOT*tk

	// In-plane position.
	xp := r * math.Cos(u)
	yp := r * math.Sin(u)

	// Longitude of ascending node, corrected for Earth rotation.
	node := rec.Omega0 + (rec.OmegaDot-gnsstime.OmegaEDot)*tk - gnsstime.OmegaEDot*rec.Toe
	sinNode, cosNode := math.Sin(node), math.Cos(node)
	sinI, cosI := math.Sin(incl), math.Cos(incl)

	return State{
		Time: t,
		Position: coords.ECEF{
			X: xp*cosNode - yp*cosI*sinNode,
			Y: xp*sinNode + yp*cosI*cosNode,
			Z: yp * sinI,
		},
	}
}

// nearestRecord returns the record whose reference time is closest to t,
// comparing in seconds. Ties resolve to the first record in input order.
func nearestRecord(recs rinex.EphemerisSet, t float64) *rinex.EphemerisRecord {
	best := 0
	bestDiff := math.Abs(recs[0].GPSMillis/1000.0 - t)
	for i := 1; i < len(recs); i++ {
		if diff := math.Abs(recs[i].GPSMillis/1000.0 - t); diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return &recs[best]
}

// weekRollover forces an elapsed time into [-302400, 302400) seconds,
// correcting for crossing a GPS week boundary.
func weekRollover(tk float64) float64 {
	tk = math.Mod(tk+gnsstime.HalfWeek, gnsstime.Week)
	if tk < 0 {
		tk += gnsstime.Week
	}
	return tk - gnsstime.HalfWeek
}

// solveKepler solves E = M + e*sin(E) by fixed-point iteration starting from
// E = M. If the tolerance is not met within the iteration budget the last
// iterate is returned as the best available estimate.
func solveKepler(m, ecc float64) float64 {
	ea := m
	for i := 0; i < keplerMaxIter; i++ {
		next := m + ecc*math.Sin(ea)
		if math.Abs(next-ea) < keplerTol {
			return next
		}
		ea = next
	}
	metrics.RecordKeplerNonConverged()
	return ea
}
