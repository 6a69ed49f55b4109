package pace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineKnownDistance(t *testing.T) {
	// One degree of latitude is about 111.19 km on the spherical model.
	d := Haversine(46.0, 7.0, 47.0, 7.0)
	assert.InDelta(t, 111195, d, 50)

	assert.Equal(t, 0.0, Haversine(46.0, 7.0, 46.0, 7.0))
}

func TestAccumulatorFirstFixIsBaseline(t *testing.T) {
	acc := NewDistanceAccumulator()
	assert.Equal(t, 0.0, acc.AddFix(46.0, 7.0))
}

func TestAccumulatorIgnoresNoise(t *testing.T) {
	acc := NewDistanceAccumulator()
	acc.AddFix(46.0, 7.0)

	// ~0.1 m shift stays below the 0.5 m noise floor.
	total := acc.AddFix(46.000001, 7.0)
	assert.Equal(t, 0.0, total)

	// ~11 m shift accumulates exactly.
	total = acc.AddFix(46.0001, 7.0)
	require.Greater(t, total, 0.0)
	assert.InDelta(t, 11.1, total, 0.5)
}

func TestAccumulatorAccumulates(t *testing.T) {
	acc := NewDistanceAccumulator()
	acc.AddFix(46.0, 7.0)
	acc.AddFix(46.0001, 7.0)
	total := acc.AddFix(46.0002, 7.0)
	assert.InDelta(t, 22.2, total, 1.0)
	assert.Equal(t, total, acc.Total())
}

func TestAccumulatorSetDistanceOverrides(t *testing.T) {
	acc := NewDistanceAccumulator()
	acc.AddFix(46.0, 7.0)
	acc.AddFix(46.0001, 7.0)

	acc.SetDistance(500.0)
	assert.Equal(t, 500.0, acc.Total())
}

func TestAccumulatorReset(t *testing.T) {
	acc := NewDistanceAccumulator()
	acc.AddFix(46.0, 7.0)
	acc.AddFix(46.0001, 7.0)
	acc.Reset()

	assert.Equal(t, 0.0, acc.Total())
	// First fix after reset is a baseline again.
	assert.Equal(t, 0.0, acc.AddFix(46.5, 7.5))
}
