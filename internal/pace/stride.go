package pace

import (
	"log/slog"

	"github.com/gopeace88/RunVision-Wear/internal/domain"
)

// Stride learning thresholds. Once both are crossed, the learned
// stride supersedes the cadence formula for the rest of the session
// (and, persisted, for future sessions).
const (
	learnDistanceThreshold = 500.0 // meters
	learnStepsThreshold    = 600   // steps

	strideMin = 0.55 // meters
	strideMax = 1.00 // meters
)

// StrideLearner learns a personal stride length (meters/step) from
// paired ground-truth distance and step counts. Until enough data has
// accumulated it falls back to a cadence-derived formula: cadence and
// stride correlate roughly linearly for a given runner in the
// 120-210 spm range.
type StrideLearner struct {
	store domain.StrideStore // nil means memory-only

	accDistance float64
	accSteps    int

	learned    float64
	hasLearned bool
}

// NewStrideLearner builds a learner backed by the given store.
// A previously persisted stride is loaded immediately; store may be
// nil for a memory-only learner.
func NewStrideLearner(store domain.StrideStore) *StrideLearner {
	l := &StrideLearner{store: store}
	if store != nil {
		if v, ok, err := store.LoadStride(); err != nil {
			slog.Warn("stride load failed", "error", err)
		} else if ok {
			l.learned = clampStride(v)
			l.hasLearned = true
		}
	}
	return l
}

// Observe accumulates one paired distance/step delta. Non-positive
// deltas are ignored. Once both thresholds are crossed the stride is
// recomputed from the whole-session accumulators on every observation;
// the accumulators are never reset.
func (l *StrideLearner) Observe(distanceDelta float64, stepsDelta int) {
	if distanceDelta <= 0 || stepsDelta <= 0 {
		return
	}

	l.accDistance += distanceDelta
	l.accSteps += stepsDelta

	if l.accDistance < learnDistanceThreshold || l.accSteps < learnStepsThreshold {
		return
	}

	stride := clampStride(l.accDistance / float64(l.accSteps))
	changed := !l.hasLearned || stride != l.learned
	l.learned = stride
	l.hasLearned = true

	if changed && l.store != nil {
		// Fire-and-forget: persistence must never block the tick loop.
		go func(v float64) {
			if err := l.store.SaveStride(v); err != nil {
				slog.Warn("stride save failed", "error", err)
			}
		}(stride)
	}
}

// StrideFor returns the stride length in meters for the given cadence:
// the learned value if present, otherwise the formula estimate.
func (l *StrideLearner) StrideFor(cadence int) float64 {
	if l.hasLearned {
		return l.learned
	}
	return clampStride(0.70 + float64(cadence-150)*0.005)
}

func (l *StrideLearner) HasLearned() bool {
	return l.hasLearned
}

// Reset clears the in-memory learned value and accumulators.
// Persisted storage is untouched.
func (l *StrideLearner) Reset() {
	l.accDistance = 0
	l.accSteps = 0
	l.learned = 0
	l.hasLearned = false
}

func clampStride(v float64) float64 {
	if v < strideMin {
		return strideMin
	}
	if v > strideMax {
		return strideMax
	}
	return v
}
