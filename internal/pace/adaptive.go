package pace

import "time"

// Position-derived pace stays authoritative for this long after the
// last position update; once stale, cadence-derived pace takes over.
const positionTrustWindow = 5000 * time.Millisecond

// AdaptiveCalculator arbitrates between position-derived and
// cadence-derived pace. Position data is strictly preferred while
// fresh because it reflects ground truth; cadence-derived pace is the
// graceful degradation for tunnels, indoor tracks, and signal loss,
// reclaimed the instant position data resumes.
type AdaptiveCalculator struct {
	now func() time.Time

	smoother *Smoother
	stride   *StrideLearner
	stop     *StopDetector

	positionTrusted bool
	lastPositionAt  time.Time
}

func NewAdaptiveCalculator(stride *StrideLearner) *AdaptiveCalculator {
	return newAdaptiveCalculator(stride, time.Now)
}

func newAdaptiveCalculator(stride *StrideLearner, now func() time.Time) *AdaptiveCalculator {
	return &AdaptiveCalculator{
		now:      now,
		smoother: NewSmoother(),
		stride:   stride,
		stop:     newStopDetector(now),
	}
}

// UpdateWithPosition feeds one position-derived distance delta and
// returns the smoothed pace. Returns 0 while stopped. Non-positive
// distance or time leaves the smoother untouched.
func (c *AdaptiveCalculator) UpdateWithPosition(distanceMeters, deltaSeconds float64) int {
	c.positionTrusted = true
	c.lastPositionAt = c.now()
	c.stop.OnDistanceChange()

	if c.stop.IsStopped() {
		return 0
	}
	if deltaSeconds <= 0 || distanceMeters <= 0 {
		return c.smoother.Peek()
	}

	speed := distanceMeters / deltaSeconds
	return c.smoother.AddSample(paceFromSpeed(speed))
}

// UpdateWithCadence feeds one cadence reading and returns the smoothed
// pace. While position data is still trusted the cadence reading only
// updates the stop detector; it is not used for pace computation.
func (c *AdaptiveCalculator) UpdateWithCadence(cadence int) int {
	c.stop.OnCadence(cadence)

	if c.stop.IsStopped() {
		return 0
	}
	if c.IsPositionMode() {
		return c.smoother.Peek()
	}

	c.positionTrusted = false
	if cadence <= 0 {
		return c.smoother.Peek()
	}

	speed := float64(cadence) * c.stride.StrideFor(cadence) / 60.0
	return c.smoother.AddSample(paceFromSpeed(speed))
}

// IsPositionMode reports whether position-derived pace is currently
// authoritative.
func (c *AdaptiveCalculator) IsPositionMode() bool {
	return c.positionTrusted && c.now().Sub(c.lastPositionAt) < positionTrustWindow
}

// Current returns the smoothed pace without feeding a sample.
func (c *AdaptiveCalculator) Current() int {
	return c.smoother.Peek()
}

// Stopped reports the stop detector's current verdict.
func (c *AdaptiveCalculator) Stopped() bool {
	return c.stop.IsStopped()
}

func (c *AdaptiveCalculator) Reset() {
	c.positionTrusted = false
	c.lastPositionAt = time.Time{}
	c.smoother.Reset()
	c.stop.Reset()
}

// paceFromSpeed converts m/s into whole seconds per kilometer.
// Zero speed yields 0 (unknown).
func paceFromSpeed(speed float64) int {
	if speed <= 0 {
		return 0
	}
	return int(1000.0 / speed)
}
