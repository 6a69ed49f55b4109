package pace

// sampleWindow is a bounded moving window over float samples.
// Oldest samples are evicted once capacity is exceeded.
type sampleWindow struct {
	capacity int
	samples  []float64
}

func newSampleWindow(capacity int) *sampleWindow {
	if capacity <= 0 {
		capacity = 5
	}
	return &sampleWindow{capacity: capacity}
}

func (w *sampleWindow) push(v float64) {
	w.samples = append(w.samples, v)
	if len(w.samples) > w.capacity {
		w.samples = w.samples[1:]
	}
}

func (w *sampleWindow) average() float64 {
	if len(w.samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range w.samples {
		sum += v
	}
	return sum / float64(len(w.samples))
}

func (w *sampleWindow) len() int {
	return len(w.samples)
}

func (w *sampleWindow) reset() {
	w.samples = w.samples[:0]
}
