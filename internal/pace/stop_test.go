package pace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock drives time-dependent components deterministically.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func TestStopDetectorFreshIsNotStopped(t *testing.T) {
	clock := newFakeClock()
	d := newStopDetector(clock.now)

	// No cadence data yet: stillness cannot be asserted.
	assert.False(t, d.IsStopped())

	clock.advance(10 * time.Second)
	assert.False(t, d.IsStopped())
}

func TestStopDetectorLowCadence(t *testing.T) {
	d := newStopDetector(newFakeClock().now)
	d.OnCadence(50)
	assert.True(t, d.IsStopped())
}

func TestStopDetectorRunningCadence(t *testing.T) {
	clock := newFakeClock()
	d := newStopDetector(clock.now)

	d.OnCadence(170)
	d.OnDistanceChange()
	assert.False(t, d.IsStopped())
}

func TestStopDetectorStaleDistance(t *testing.T) {
	clock := newFakeClock()
	d := newStopDetector(clock.now)

	d.OnCadence(170)
	d.OnDistanceChange()

	clock.advance(2500 * time.Millisecond)
	assert.True(t, d.IsStopped())

	// A fresh distance change clears the staleness.
	d.OnDistanceChange()
	assert.False(t, d.IsStopped())
}

func TestStopDetectorReset(t *testing.T) {
	clock := newFakeClock()
	d := newStopDetector(clock.now)

	d.OnCadence(30)
	assert.True(t, d.IsStopped())

	d.Reset()
	assert.False(t, d.IsStopped())
}
