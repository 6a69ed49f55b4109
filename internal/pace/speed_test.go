package pace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpeedEstimatorFirstFix(t *testing.T) {
	e := NewSpeedEstimator()
	assert.Equal(t, 0.0, e.AddFix(46.0, 7.0, 1000))
}

func TestSpeedEstimatorComputesSpeed(t *testing.T) {
	e := NewSpeedEstimator()
	e.AddFix(46.0, 7.0, 0)

	// ~11.1 m in 4 s is ~2.8 m/s.
	got := e.AddFix(46.0001, 7.0, 4000)
	assert.InDelta(t, 2.8, got, 0.1)
}

func TestSpeedEstimatorNonPositiveTimeDelta(t *testing.T) {
	e := NewSpeedEstimator()
	e.AddFix(46.0, 7.0, 0)
	prev := e.AddFix(46.0001, 7.0, 4000)

	// Same or out-of-order timestamp never divides; previous smoothed
	// value is returned unchanged.
	assert.Equal(t, prev, e.AddFix(46.0002, 7.0, 4000))
	assert.Equal(t, prev, e.AddFix(46.0002, 7.0, 3000))
}

func TestSpeedEstimatorSmoothing(t *testing.T) {
	e := NewSpeedEstimator()
	e.AddFix(46.0, 7.0, 0)

	var last float64
	for i := 1; i <= 6; i++ {
		last = e.AddFix(46.0+float64(i)*0.0001, 7.0, int64(i)*4000)
	}
	// All instantaneous speeds are equal, so the average matches.
	assert.InDelta(t, 2.8, last, 0.1)
	assert.Equal(t, last, e.Current())
}

func TestSpeedEstimatorReset(t *testing.T) {
	e := NewSpeedEstimator()
	e.AddFix(46.0, 7.0, 0)
	e.AddFix(46.0001, 7.0, 4000)

	e.Reset()
	assert.Equal(t, 0.0, e.Current())
	assert.Equal(t, 0.0, e.AddFix(46.0, 7.0, 8000))
}
