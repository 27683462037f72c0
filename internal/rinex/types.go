package rinex

// Epoch is the civil reference timestamp of a navigation record.
type Epoch struct {
	Year, Month, Day, Hour, Min, Sec int
}

// EphemerisRecord is one broadcast navigation message for one satellite at one
// reference epoch. All orbital and clock fields are meaningful only together
// with Toe, the reference time of applicability. Records are immutable once
// parsed.
type EphemerisRecord struct {
	SatID     int
	Epoch     Epoch
	GPSMillis float64 // reference epoch on the GPS time scale, milliseconds

	// SV clock correction polynomial.
	ClockBias      float64 // seconds
	ClockDrift     float64 // s/s
	ClockDriftRate float64 // s/s^2

	// Broadcast orbit, in RINEX line order.
	IODE   float64
	Crs    float64 // radius correction, sine term, m
	DeltaN float64 // mean motion correction, rad/s
	M0     float64 // mean anomaly at reference time, rad

	Cuc          float64 // latitude correction, cosine term, rad
	Eccentricity float64
	Cus          float64 // latitude correction, sine term, rad
	SqrtA        float64 // sqrt of semi-major axis, m^0.5

	Toe    float64 // time of ephemeris, GPS seconds of week
	Cic    float64 // inclination correction, cosine term, rad
	Omega0 float64 // longitude of ascending node at weekly epoch, rad
	Cis    float64 // inclination correction, sine term, rad

	I0       float64 // inclination at reference time, rad
	Crc      float64 // radius correction, cosine term, m
	Omega    float64 // argument of perigee, rad
	OmegaDot float64 // rate of right ascension, rad/s

	IDOT      float64 // rate of inclination, rad/s
	CodesOnL2 float64
	GPSWeek   float64
	L2PFlag   float64

	SVAccuracy float64 // m
	SVHealth   float64
	TGD        float64 // group delay, s
	IODC       float64

	TransmissionTime float64 // GPS seconds of week
	FitInterval      float64 // hours
}

// EphemerisSet is an ordered sequence of records in file order. It is not
// time-sorted or grouped by satellite.
type EphemerisSet []EphemerisRecord

// Filter returns the records broadcast by the given satellite, preserving
// file order.
func (s EphemerisSet) Filter(satID int) EphemerisSet {
	var out EphemerisSet
	for _, rec := range s {
		if rec.SatID == satID {
			out = append(out, rec)
		}
	}
	return out
}
