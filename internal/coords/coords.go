// Package coords holds the coordinate value types exchanged between the orbit
// propagator and downstream consumers.
package coords

// ECEF is a position in the Earth-Centered Earth-Fixed frame, meters.
type ECEF struct {
	X, Y, Z float64
}

// Geodetic is a latitude/longitude/altitude position (degrees, degrees, meters).
type Geodetic struct {
	Lat, Lon, Alt float64
}

// ToGeodetic converts an ECEF position to geodetic coordinates.
//
// Not implemented: returns the zero value. A proper implementation needs an
// iterative or closed-form WGS-84 ellipsoid solution (e.g. Bowring).
func (p ECEF) ToGeodetic() Geodetic {
	return Geodetic{}
}

// ToECEF converts a geodetic position to ECEF.
//
// Not implemented: returns the zero value.
func (g Geodetic) ToECEF() ECEF {
	return ECEF{}
}
