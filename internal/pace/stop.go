package pace

import "time"

const (
	// Below this cadence the runner is walking or standing.
	stopCadenceThreshold = 60 // steps/min

	// No distance change for this long also counts as stopped; this
	// catches cases where cadence reporting lags actual motion.
	distanceStaleAfter = 2000 * time.Millisecond
)

// StopDetector declares "stopped" from low step cadence or stale
// distance updates, whichever fires first.
type StopDetector struct {
	now func() time.Time

	cadence    int
	hasCadence bool

	lastDistanceChange time.Time
}

func NewStopDetector() *StopDetector {
	return newStopDetector(time.Now)
}

func newStopDetector(now func() time.Time) *StopDetector {
	return &StopDetector{now: now, lastDistanceChange: now()}
}

// OnCadence records the latest cadence reading.
func (d *StopDetector) OnCadence(cadence int) {
	d.cadence = cadence
	d.hasCadence = true
}

// OnDistanceChange stamps the current time.
func (d *StopDetector) OnDistanceChange() {
	d.lastDistanceChange = d.now()
}

// IsStopped reports whether the runner is stopped. Before the first
// cadence reading this is always false: stillness cannot be asserted
// with no data.
func (d *StopDetector) IsStopped() bool {
	if !d.hasCadence {
		return false
	}
	if d.cadence < stopCadenceThreshold {
		return true
	}
	return d.now().Sub(d.lastDistanceChange) > distanceStaleAfter
}

// Reset clears the cadence state and re-stamps the distance-change
// time to now.
func (d *StopDetector) Reset() {
	d.cadence = 0
	d.hasCadence = false
	d.lastDistanceChange = d.now()
}
