package pace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmootherEmptyWindow(t *testing.T) {
	s := NewSmoother()
	assert.Equal(t, 0, s.Peek())
	assert.Equal(t, 300, s.AddSample(300))
}

func TestSmootherIgnoresNonPositive(t *testing.T) {
	s := NewSmoother()
	s.AddSample(300)
	assert.Equal(t, 300, s.AddSample(0))
	assert.Equal(t, 300, s.AddSample(-10))
	assert.Equal(t, 300, s.Peek())
}

func TestSmootherOutlierBandInclusive(t *testing.T) {
	s := NewSmoother()
	s.AddSample(300)

	// Exactly 150% of the average is accepted.
	assert.Equal(t, 375, s.AddSample(450))

	s.Reset()
	s.AddSample(300)
	// Exactly 50% of the average is accepted.
	assert.Equal(t, 225, s.AddSample(150))
}

func TestSmootherRejectsOutliers(t *testing.T) {
	s := NewSmoother()
	s.AddSample(300)

	assert.Equal(t, 300, s.AddSample(451)) // just over 1.5x
	assert.Equal(t, 300, s.AddSample(149)) // just under 0.5x
	assert.Equal(t, 300, s.Peek())
}

func TestSmootherBoundedWindow(t *testing.T) {
	s := NewSmoother()
	for _, v := range []int{300, 310, 320, 330, 340} {
		s.AddSample(v)
	}
	// Window full at 5; this evicts 300.
	got := s.AddSample(350)
	assert.Equal(t, (310+320+330+340+350)/5, got)
}

func TestSmootherOutputStaysInBand(t *testing.T) {
	s := NewSmoother()
	inputs := []int{300, 280, 500, 320, 100, 900, 310, 290}

	for _, in := range inputs {
		before := s.Peek()
		after := s.AddSample(in)
		if before == 0 {
			continue
		}
		assert.GreaterOrEqual(t, float64(after), 0.5*float64(before))
		assert.LessOrEqual(t, float64(after), 1.5*float64(before))
	}
}

func TestSmootherReset(t *testing.T) {
	s := NewSmoother()
	s.AddSample(300)
	s.Reset()
	assert.Equal(t, 0, s.Peek())
}
