// Package gnsstime converts civil UTC timestamps to GPS time and holds the
// physical constants shared by the broadcast orbit model.
//
// GPS time is a continuous scale referenced to 1980-01-06T00:00:00Z. UTC has
// accumulated leap seconds since then; GPS time has not, so converting from a
// civil timestamp means adding the current leap-second offset.
package gnsstime

import "time"

// LeapSeconds is the fixed GPS-UTC offset applied to every conversion.
// Valid for epochs from 2017 through at least 2024; there is no dynamic
// leap-second table.
const LeapSeconds = 18.0

// WGS-84 / broadcast model constants.
const (
	MuEarth   = 398600.5e9       // Earth gravitational constant, m^3/s^2
	OmegaEDot = 7.2921151467e-5  // Earth rotation rate, rad/s
	CLight    = 299792458.0      // speed of light, m/s
	Week      = 604800.0         // GPS week, seconds
	HalfWeek  = 302400.0         // half a GPS week, seconds
)

// GPSEpoch is the origin of the GPS time scale.
var GPSEpoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)

// GPSMillis returns elapsed GPS time at t in milliseconds: microsecond-precision
// seconds since the GPS epoch plus the fixed leap-second offset, scaled by 1000.
func GPSMillis(t time.Time) float64 {
	micros := t.Sub(GPSEpoch).Microseconds()
	return (float64(micros)/1e6 + LeapSeconds) * 1000.0
}

// GPSSeconds returns elapsed GPS time at t in seconds. This is the working
// unit of the orbit propagator.
func GPSSeconds(t time.Time) float64 {
	return GPSMillis(t) / 1000.0
}
