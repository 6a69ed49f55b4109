package pace

// SpeedEstimator turns consecutive position fixes into a
// noise-smoothed instantaneous speed (m/s).
type SpeedEstimator struct {
	hasLast bool
	lastLat float64
	lastLon float64
	lastTs  int64 // milliseconds

	window *sampleWindow
}

func NewSpeedEstimator() *SpeedEstimator {
	return &SpeedEstimator{window: newSampleWindow(5)}
}

// AddFix computes instantaneous speed from the previous fix and returns
// the window-averaged value. The first fix only sets the baseline and
// returns 0. A non-positive time delta returns the previous smoothed
// value unchanged.
func (s *SpeedEstimator) AddFix(lat, lon float64, timestampMs int64) float64 {
	if !s.hasLast {
		s.lastLat, s.lastLon, s.lastTs = lat, lon, timestampMs
		s.hasLast = true
		return 0
	}

	dtSec := float64(timestampMs-s.lastTs) / 1000.0
	if dtSec <= 0 {
		return s.window.average()
	}

	dist := Haversine(s.lastLat, s.lastLon, lat, lon)
	s.lastLat, s.lastLon, s.lastTs = lat, lon, timestampMs

	s.window.push(dist / dtSec)
	return s.window.average()
}

// Current returns the smoothed speed without adding a fix.
func (s *SpeedEstimator) Current() float64 {
	return s.window.average()
}

func (s *SpeedEstimator) Reset() {
	s.hasLast = false
	s.window.reset()
}
