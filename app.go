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

package runvision

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gopeace88/RunVision-Wear/internal/domain"
	"github.com/gopeace88/RunVision-Wear/internal/engine"
	"github.com/gopeace88/RunVision-Wear/internal/service/ble"
	"github.com/gopeace88/RunVision-Wear/internal/service/fit"
	"github.com/gopeace88/RunVision-Wear/internal/service/gpx"
	"github.com/gopeace88/RunVision-Wear/internal/service/storage"
)

// App is the session orchestrator. It wires the sensor source into the
// metrics engine, drives the 1 Hz tick, and fans each snapshot out to
// the display, the sample log, and the HUD link.
type App struct {
	engine     *engine.Engine
	store      *storage.Service
	fitService *fit.Service
	gpxService *gpx.Service
	sensors    domain.SensorSource
	link       *ble.Link
	hudQueue   *ble.WriteQueue
	display    domain.DisplaySink

	exportDir string

	mu           sync.Mutex
	isRecording  bool
	isPaused     bool
	sessionID    string
	sessionStart time.Time
	cancelLoop   context.CancelFunc
	loopDone     chan struct{}
}

// NewApp initializes all core services and dependencies. display may
// be nil when running headless.
func NewApp(store *storage.Service, sensors domain.SensorSource, display domain.DisplaySink) *App {
	link := ble.NewLink()

	a := &App{
		engine:     engine.New(store),
		store:      store,
		fitService: fit.NewService(),
		gpxService: gpx.NewService(),
		sensors:    sensors,
		link:       link,
		hudQueue:   ble.NewWriteQueue(link),
		display:    display,
		exportDir:  "workouts",
	}

	// Connecting the accessory auto-starts a session if none is
	// running.
	link.OnConnected = func() {
		a.mu.Lock()
		recording := a.isRecording
		a.mu.Unlock()
		if !recording {
			a.StartSession()
		}
	}

	return a
}

// Link exposes the HUD connection state machine.
func (a *App) Link() *ble.Link {
	return a.link
}

// Snapshot returns the engine's current metrics value.
func (a *App) Snapshot() domain.RunningMetrics {
	return a.engine.Snapshot()
}

// =================
// SESSION LIFECYCLE
// =================

// ToggleSession starts, pauses, or resumes a session.
func (a *App) ToggleSession() string {
	a.mu.Lock()
	recording, paused := a.isRecording, a.isPaused
	a.mu.Unlock()

	if recording {
		if paused {
			return a.ResumeSession()
		}
		return a.PauseSession()
	}
	return a.StartSession()
}

// StartSession begins a new run.
func (a *App) StartSession() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.isRecording {
		return "Already recording"
	}

	a.sessionID = uuid.NewString()
	a.sessionStart = time.Now()
	a.isRecording = true
	a.isPaused = false

	a.engine.Reset()
	a.engine.Start()
	a.fitService.StartSession(a.sessionStart)

	if err := a.store.StartSession(a.sessionID, a.sessionStart); err != nil {
		slog.Warn("session row create failed", "error", err)
	}

	events := make(chan domain.SensorEvent, 16)
	if err := a.sensors.Subscribe(events); err != nil {
		a.isRecording = false
		return fmt.Sprintf("Sensor error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancelLoop = cancel
	a.loopDone = make(chan struct{})
	go a.runLoop(ctx, events, a.loopDone)

	slog.Info("session started", "id", a.sessionID)
	return "Started"
}

func (a *App) PauseSession() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.isPaused = true
	a.engine.Pause()
	return "Paused"
}

func (a *App) ResumeSession() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.isPaused = false
	a.engine.Resume()
	return "Recording"
}

// FinishSession stops the run, computes statistics, and exports the
// activity as FIT and GPX files.
func (a *App) FinishSession() string {
	a.mu.Lock()
	if !a.isRecording {
		a.mu.Unlock()
		return "Not recording"
	}
	if a.cancelLoop != nil {
		a.cancelLoop()
	}
	a.isRecording = false
	a.isPaused = false
	sessionID := a.sessionID
	done := a.loopDone
	a.mu.Unlock()

	// The loop must be fully drained before the exporters touch the
	// accumulated records.
	if done != nil {
		<-done
	}

	a.sensors.Close()
	a.engine.Stop()

	session, err := a.store.FinishSession(sessionID, time.Now())
	if err != nil {
		slog.Warn("session finalize failed", "error", err)
	}

	if err := os.MkdirAll(a.exportDir, 0755); err != nil {
		slog.Warn("export dir create failed", "error", err)
		a.exportDir = "."
	}

	stamp := time.Now().Format("2006-01-02_15-04-05")

	fitPath := filepath.Join(a.exportDir, fmt.Sprintf("run_%s.fit", stamp))
	if err := a.fitService.Save(fitPath); err != nil {
		slog.Warn("fit export failed", "error", err)
	}

	if samples, err := a.store.Samples(sessionID); err == nil {
		gpxPath := filepath.Join(a.exportDir, fmt.Sprintf("run_%s.gpx", stamp))
		if err := a.gpxService.Export("Run "+stamp, samples, gpxPath); err != nil {
			slog.Warn("gpx export failed", "error", err)
		}
	}

	slog.Info("session finished",
		"id", sessionID,
		"distance_m", session.TotalDistance,
		"duration_s", session.Duration,
		"avg_pace", session.AvgPace)
	return "Finished"
}

// DiscardSession cancels the current run without computing statistics.
// The session row and its samples are removed.
func (a *App) DiscardSession() string {
	a.mu.Lock()
	if !a.isRecording {
		a.mu.Unlock()
		return "Discarded"
	}
	if a.cancelLoop != nil {
		a.cancelLoop()
	}
	a.isRecording = false
	a.isPaused = false
	sessionID := a.sessionID
	done := a.loopDone
	a.mu.Unlock()

	if done != nil {
		<-done
	}

	a.sensors.Close()
	a.engine.Stop()

	if err := a.store.DeleteSession(sessionID); err != nil {
		slog.Warn("discarded session cleanup failed", "error", err)
	}
	return "Discarded"
}

// ===========
// HUD CONTROL
// ===========

// ConnectHUD starts accessory discovery.
func (a *App) ConnectHUD() error {
	return a.link.StartScanning()
}

// DisconnectHUD tears the accessory link down and disables automatic
// reconnection.
func (a *App) DisconnectHUD() {
	a.link.Disconnect()
}

// ========
// RUN LOOP
// ========

// runLoop is the single execution context all engine mutation funnels
// through: sensor events mutate state on receipt, the 1 Hz tick emits
// the snapshot and fans it out.
func (a *App) runLoop(ctx context.Context, events <-chan domain.SensorEvent, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev := <-events:
			a.mu.Lock()
			paused := a.isPaused
			a.mu.Unlock()
			if paused {
				continue
			}
			a.dispatch(ev)

		case <-ticker.C:
			a.engine.Tick()
			snap := a.engine.Snapshot()

			if a.display != nil {
				a.display.Show(snap)
			}

			if a.link.State() == ble.StateConnected {
				a.hudQueue.Send(snap)
			}

			a.mu.Lock()
			active, sessionID := a.isRecording && !a.isPaused, a.sessionID
			a.mu.Unlock()
			if active {
				a.fitService.AddRecord(snap, time.Now())
				go a.appendSample(sessionID, snap)
			}
		}
	}
}

func (a *App) dispatch(ev domain.SensorEvent) {
	switch ev.Kind {
	case domain.EventHeartRate:
		a.engine.OnHeartRate(ev.HeartRate)
	case domain.EventCadence:
		a.engine.OnCadence(ev.Cadence)
	case domain.EventPosition:
		a.engine.OnPosition(ev.Latitude, ev.Longitude, ev.Timestamp)
	case domain.EventDistance:
		a.engine.OnDistance(ev.Distance)
	}
}

// appendSample writes one event-log row. Fire-and-forget: a logging
// failure never interrupts the tick loop.
func (a *App) appendSample(sessionID string, m domain.RunningMetrics) {
	err := a.store.AppendSample(sessionID, domain.Sample{
		Timestamp: time.Now(),
		HeartRate: m.HeartRate,
		Pace:      m.Pace,
		Cadence:   m.Cadence,
		Distance:  m.Distance,
		Latitude:  m.Latitude,
		Longitude: m.Longitude,
	})
	if err != nil {
		slog.Warn("sample log failed", "error", err)
	}
}
