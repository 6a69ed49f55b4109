// RunVision Wear - Running companion engine for wearable devices.
// Copyright (C) 2026  gopeace88
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package engine

import (
	"sync"
	"time"

	"github.com/gopeace88/RunVision-Wear/internal/domain"
	"github.com/gopeace88/RunVision-Wear/internal/pace"
)

const (
	// Distance deltas over shorter intervals produce unstable
	// divisions and are deferred to the next update.
	minDistanceInterval = 100 * time.Millisecond

	// Plausibility band for a displayed pace: elite marathon pace to
	// slow jog. Values outside it count as invalid.
	paceBandMin = 180 // s/km
	paceBandMax = 600 // s/km

	// How long the last in-band pace keeps being displayed after a
	// zero/invalid reading, to suppress flicker before a stop is
	// genuinely confirmed.
	paceHold = 3000 * time.Millisecond

	// A cadence gap longer than this is not integrated into the step
	// counter; the sensor stream was interrupted, not slow.
	maxCadenceGap = 5 * time.Second
)

// Engine is the metrics aggregator: it owns the session lifecycle,
// receives sensor events, drives the estimation components, and emits
// a unified snapshot each second. All mutation is serialized behind a
// single mutex; sensor callbacks and the 1 Hz tick never race.
type Engine struct {
	mu  sync.Mutex
	now func() time.Time

	active         bool
	elapsedSeconds int

	heartRate int
	cadence   int
	latitude  float64
	longitude float64

	dist     *pace.DistanceAccumulator
	speed    *pace.SpeedEstimator
	stride   *pace.StrideLearner
	adaptive *pace.AdaptiveCalculator

	// Cumulative-distance readings from the fused source take priority
	// over raw fixes for distance and pace once seen.
	fused        bool
	fusedBase    bool
	lastFusedVal float64
	lastFusedAt  time.Time

	// Raw-fix fallback bookkeeping.
	fixBase   bool
	lastFixAt time.Time

	// Step counter for stride learning, integrated from cadence.
	stepAccum     float64
	lastCadenceAt time.Time
	cadenceBase   bool

	pace            int
	lastValidPace   int
	lastValidPaceAt time.Time
}

// New builds an engine whose stride learner is backed by the given
// store. The store may be nil for a memory-only learner.
func New(store domain.StrideStore) *Engine {
	return newEngine(store, time.Now)
}

func newEngine(store domain.StrideStore, now func() time.Time) *Engine {
	stride := pace.NewStrideLearner(store)
	return &Engine{
		now:      now,
		dist:     pace.NewDistanceAccumulator(),
		speed:    pace.NewSpeedEstimator(),
		stride:   stride,
		adaptive: pace.NewAdaptiveCalculator(stride),
	}
}

// =========
// LIFECYCLE
// =========

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = true
}

func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = false
}

func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = true
}

func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = false
}

func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Tick advances the elapsed-second counter. Called once per second by
// the session loop; counts only while active.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active {
		e.elapsedSeconds++
	}
}

// Reset zeroes every counter and resets every owned component.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.active = false
	e.elapsedSeconds = 0
	e.heartRate = 0
	e.cadence = 0
	e.latitude = 0
	e.longitude = 0

	e.dist.Reset()
	e.speed.Reset()
	e.stride.Reset()
	e.adaptive.Reset()

	e.fused = false
	e.fusedBase = false
	e.lastFusedVal = 0
	e.fixBase = false
	e.stepAccum = 0
	e.cadenceBase = false

	e.pace = 0
	e.lastValidPace = 0
	e.lastValidPaceAt = time.Time{}
}

// =============
// SENSOR EVENTS
// =============

func (e *Engine) OnHeartRate(bpm int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if bpm > 0 {
		e.heartRate = bpm
	}
}

// OnCadence records a step-cadence reading, integrates it into the
// step counter for stride learning, and lets the adaptive calculator
// derive a cadence pace if position data has gone stale.
func (e *Engine) OnCadence(spm int) {
	// A negative reading is sensor garbage, not a slow runner.
	if spm < 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.cadence = spm

	if e.cadenceBase {
		if gap := now.Sub(e.lastCadenceAt); gap > 0 && gap <= maxCadenceGap {
			e.stepAccum += float64(spm) * gap.Minutes()
		}
	}
	e.cadenceBase = true
	e.lastCadenceAt = now

	e.pace = e.adaptive.UpdateWithCadence(spm)
}

// OnPosition records a raw position fix. The smoothed speed drives
// pace and distance only as a fallback while no fused cumulative
// distance has been seen.
func (e *Engine) OnPosition(lat, lon float64, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.latitude = lat
	e.longitude = lon

	smoothed := e.speed.AddFix(lat, lon, at.UnixMilli())
	if e.fused {
		return
	}

	e.dist.AddFix(lat, lon)

	now := e.now()
	if !e.fixBase {
		e.fixBase = true
		e.lastFixAt = now
		return
	}

	elapsed := now.Sub(e.lastFixAt)
	if elapsed < minDistanceInterval {
		return
	}
	e.lastFixAt = now

	dt := elapsed.Seconds()
	e.pace = e.adaptive.UpdateWithPosition(smoothed*dt, dt)
}

// OnDistance records a cumulative-distance reading from the fused
// source. The delta since the previous reading feeds the adaptive
// calculator and, paired with the step counter, the stride learner.
func (e *Engine) OnDistance(meters float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.fused = true
	e.dist.SetDistance(meters)

	if !e.fusedBase {
		e.fusedBase = true
		e.lastFusedVal = meters
		e.lastFusedAt = now
		return
	}

	elapsed := now.Sub(e.lastFusedAt)
	if elapsed < minDistanceInterval {
		return
	}

	delta := meters - e.lastFusedVal
	e.lastFusedVal = meters
	e.lastFusedAt = now

	e.pace = e.adaptive.UpdateWithPosition(delta, elapsed.Seconds())

	if delta > 0 {
		if steps := int(e.stepAccum); steps > 0 {
			e.stride.Observe(delta, steps)
			e.stepAccum -= float64(steps)
		}
	}
}

// ========
// SNAPSHOT
// ========

// Snapshot returns the current validated metrics value.
func (e *Engine) Snapshot() domain.RunningMetrics {
	e.mu.Lock()
	defer e.mu.Unlock()

	return domain.RunningMetrics{
		ElapsedSeconds: e.elapsedSeconds,
		Distance:       e.dist.Total(),
		Pace:           e.displayPace(),
		HeartRate:      e.heartRate,
		Cadence:        e.cadence,
		Latitude:       e.latitude,
		Longitude:      e.longitude,
	}
}

// displayPace applies the flicker-suppression rule: the last pace that
// fell inside the plausibility band is kept on screen for up to
// paceHold after being superseded by a zero or out-of-band value.
func (e *Engine) displayPace() int {
	now := e.now()

	if e.pace >= paceBandMin && e.pace <= paceBandMax {
		e.lastValidPace = e.pace
		e.lastValidPaceAt = now
		return e.pace
	}

	if e.lastValidPace > 0 && now.Sub(e.lastValidPaceAt) <= paceHold {
		return e.lastValidPace
	}
	return 0
}
