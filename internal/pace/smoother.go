package pace

import "math"

// Outlier band relative to the current window average.
// Boundaries are inclusive: exactly 150% of average is accepted.
const (
	outlierLowFactor  = 0.5
	outlierHighFactor = 1.5
)

// Smoother maintains a bounded moving window over raw pace samples
// with outlier rejection against the window's own average.
type Smoother struct {
	window *sampleWindow
}

func NewSmoother() *Smoother {
	return &Smoother{window: newSampleWindow(5)}
}

// AddSample pushes a raw pace (seconds per km) through the outlier
// filter and returns the new smoothed value. Non-positive input and
// rejected outliers leave the window untouched and return the current
// smoothed value.
func (s *Smoother) AddSample(rawPace int) int {
	if rawPace <= 0 {
		return s.Peek()
	}

	if s.window.len() > 0 {
		avg := s.window.average()
		v := float64(rawPace)
		if v < avg*outlierLowFactor || v > avg*outlierHighFactor {
			return s.Peek()
		}
	}

	s.window.push(float64(rawPace))
	return s.Peek()
}

// Peek returns the current smoothed pace without mutating the window.
// Returns 0 while the window is empty.
func (s *Smoother) Peek() int {
	if s.window.len() == 0 {
		return 0
	}
	return int(math.Floor(s.window.average()))
}

func (s *Smoother) Reset() {
	s.window.reset()
}
