package pace

import "math"

const (
	earthRadiusMeters = 6371000.0

	// GPS jitter below this delta is treated as no movement.
	noiseFloorMeters = 0.5
)

// DistanceAccumulator integrates consecutive position fixes into
// cumulative ground distance with noise filtering.
type DistanceAccumulator struct {
	hasLast bool
	lastLat float64
	lastLon float64
	total   float64
}

func NewDistanceAccumulator() *DistanceAccumulator {
	return &DistanceAccumulator{}
}

// AddFix folds one position fix into the running total and returns it.
// The first fix only establishes the reference point.
func (d *DistanceAccumulator) AddFix(lat, lon float64) float64 {
	if !d.hasLast {
		d.lastLat, d.lastLon = lat, lon
		d.hasLast = true
		return d.total
	}

	delta := Haversine(d.lastLat, d.lastLon, lat, lon)
	d.lastLat, d.lastLon = lat, lon

	if delta < noiseFloorMeters {
		return d.total
	}

	d.total += delta
	return d.total
}

// SetDistance overwrites the running total with an authoritative value
// from the fused source, bypassing fix-to-fix computation.
func (d *DistanceAccumulator) SetDistance(meters float64) {
	d.total = meters
}

func (d *DistanceAccumulator) Total() float64 {
	return d.total
}

func (d *DistanceAccumulator) Reset() {
	d.hasLast = false
	d.lastLat = 0
	d.lastLon = 0
	d.total = 0
}

// Haversine returns the great-circle distance in meters between two
// coordinates on a spherical earth.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
