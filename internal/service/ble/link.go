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

package ble

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/gopeace88/RunVision-Wear/internal/service/ble/hud"
)

// State is the link connection state.
type State int

const (
	StateDisconnected State = iota
	StateScanning
	StateNotFound
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateScanning:
		return "SCANNING"
	case StateNotFound:
		return "NOT_FOUND"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	}
	return "UNKNOWN"
}

const (
	scanTimeout = 10 * time.Second

	// Two-tier reconnection backoff.
	reconnectShort         = 5 * time.Second
	reconnectLong          = 60 * time.Second
	reconnectShortAttempts = 5
)

// Advertised name prefixes of supported HUD accessories, matched
// case-insensitively against the local name and the raw advertisement.
var hudNamePrefixes = []string{"runvision", "rv-hud"}

// Link manages discovery, connection, service discovery, and
// reconnection for the HUD accessory. It implements domain.FrameWriter
// once connected.
type Link struct {
	adapter *bluetooth.Adapter

	mu        sync.Mutex
	state     State
	enabled   bool
	device    *bluetooth.Device
	writeChar *bluetooth.DeviceCharacteristic

	lastAddr bluetooth.Address
	hasAddr  bool

	attempts       int
	reconnectTimer *time.Timer
	autoReconnect  bool

	// OnConnected fires after service discovery succeeds; the session
	// orchestrator uses it to auto-start an exercise session.
	OnConnected func()
	// OnStateChange fires on every state transition.
	OnStateChange func(State)
}

func NewLink() *Link {
	return &Link{adapter: bluetooth.DefaultAdapter}
}

func (l *Link) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// setState transitions the state machine. Caller holds l.mu.
func (l *Link) setState(s State) {
	if l.state == s {
		return
	}
	l.state = s
	slog.Info("hud link state", "state", s.String())
	if l.OnStateChange != nil {
		go l.OnStateChange(s)
	}
}

// StartScanning enters Scanning and starts device discovery with a
// 10-second timeout. On timeout with no device found the link
// transitions to NotFound and discovery halts.
func (l *Link) StartScanning() error {
	l.mu.Lock()
	if l.state == StateScanning || l.state == StateConnecting || l.state == StateConnected {
		l.mu.Unlock()
		return nil
	}
	if !l.enabled {
		if err := l.adapter.Enable(); err != nil {
			l.mu.Unlock()
			return fmt.Errorf("bluetooth error: %w", err)
		}
		l.enabled = true
		l.adapter.SetConnectHandler(l.onConnectEvent)
	}
	l.autoReconnect = true
	l.setState(StateScanning)
	l.mu.Unlock()

	found := make(chan bluetooth.ScanResult, 1)

	go func() {
		err := l.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			if !matchesHUD(result.LocalName(), result.Bytes()) {
				return
			}
			slog.Info("hud found", "name", result.LocalName(), "addr", result.Address.String())
			adapter.StopScan()
			select {
			case found <- result:
			default:
			}
		})
		if err != nil {
			slog.Warn("scan error", "error", err)
		}
	}()

	go func() {
		select {
		case result := <-found:
			if !l.claimScanResult(result.Address) {
				return
			}
			l.connect(result.Address)

		case <-time.After(scanTimeout):
			l.adapter.StopScan()
			l.mu.Lock()
			if l.state == StateScanning {
				l.setState(StateNotFound)
			}
			l.mu.Unlock()
		}
	}()

	return nil
}

// claimScanResult records a discovered peer and moves to Connecting.
// Disconnect may have raced the discovery; a result arriving after the
// link was torn down is dropped.
func (l *Link) claimScanResult(addr bluetooth.Address) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.autoReconnect || l.state != StateScanning {
		return false
	}
	l.lastAddr = addr
	l.hasAddr = true
	l.setState(StateConnecting)
	return true
}

// Connect dials the last known peer directly, skipping discovery.
func (l *Link) Connect() error {
	l.mu.Lock()
	if !l.hasAddr {
		l.mu.Unlock()
		return fmt.Errorf("no known hud address, scan first")
	}
	addr := l.lastAddr
	l.autoReconnect = true
	l.setState(StateConnecting)
	l.mu.Unlock()

	l.connect(addr)
	return nil
}

func (l *Link) connect(addr bluetooth.Address) {
	device, err := l.adapter.Connect(addr, bluetooth.ConnectionParams{})
	if err != nil {
		slog.Warn("hud connect failed", "error", err)
		l.mu.Lock()
		l.setState(StateDisconnected)
		l.scheduleReconnect()
		l.mu.Unlock()
		return
	}

	ptr := new(bluetooth.Device)
	*ptr = device

	if err := l.discoverWriteChar(ptr); err != nil {
		slog.Warn("hud service discovery failed", "error", err)
		device.Disconnect()
		l.mu.Lock()
		l.device = nil
		l.setState(StateDisconnected)
		l.scheduleReconnect()
		l.mu.Unlock()
		return
	}

	l.mu.Lock()
	l.device = ptr
	l.attempts = 0
	l.setState(StateConnected)
	cb := l.OnConnected
	l.mu.Unlock()

	if cb != nil {
		go cb()
	}
}

// discoverWriteChar resolves the HUD's writable characteristic.
func (l *Link) discoverWriteChar(device *bluetooth.Device) error {
	svcUUID, _ := bluetooth.ParseUUID(hud.ServiceUUID)
	charUUID, _ := bluetooth.ParseUUID(hud.CharWriteUUID)

	services, err := device.DiscoverServices([]bluetooth.UUID{svcUUID})
	if err != nil {
		return fmt.Errorf("service discovery: %w", err)
	}
	for _, svc := range services {
		chars, err := svc.DiscoverCharacteristics([]bluetooth.UUID{charUUID})
		if err != nil {
			continue
		}
		for _, char := range chars {
			c := char
			l.mu.Lock()
			l.writeChar = &c
			l.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("hud write characteristic not found")
}

// onConnectEvent is the adapter-level connect/disconnect callback.
func (l *Link) onConnectEvent(_ bluetooth.Device, connected bool) {
	if connected {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateConnected && l.state != StateConnecting {
		return
	}

	slog.Info("hud link lost")
	l.writeChar = nil
	l.device = nil
	l.setState(StateDisconnected)
	l.scheduleReconnect()
}

// scheduleReconnect arms the backoff timer. Caller holds l.mu.
func (l *Link) scheduleReconnect() {
	if !l.autoReconnect || !l.hasAddr {
		return
	}

	l.attempts++
	delay := reconnectDelay(l.attempts)
	slog.Info("hud reconnect scheduled", "attempt", l.attempts, "delay", delay)

	if l.reconnectTimer != nil {
		l.reconnectTimer.Stop()
	}
	l.reconnectTimer = time.AfterFunc(delay, func() {
		l.mu.Lock()
		if l.state != StateDisconnected {
			l.mu.Unlock()
			return
		}
		addr := l.lastAddr
		l.setState(StateReconnecting)
		l.setState(StateConnecting)
		l.mu.Unlock()
		l.connect(addr)
	})
}

// reconnectDelay returns the backoff delay for the given attempt
// number: a short interval for the first attempts, then a flat long
// interval.
func reconnectDelay(attempt int) time.Duration {
	if attempt <= reconnectShortAttempts {
		return reconnectShort
	}
	return reconnectLong
}

// Disconnect closes the transport and cancels all pending timers.
// No automatic reconnection occurs until Connect or StartScanning is
// called again.
func (l *Link) Disconnect() {
	l.mu.Lock()
	l.autoReconnect = false
	if l.reconnectTimer != nil {
		l.reconnectTimer.Stop()
		l.reconnectTimer = nil
	}
	scanning := l.enabled && l.state == StateScanning
	device := l.device
	l.device = nil
	l.writeChar = nil
	l.setState(StateDisconnected)
	l.mu.Unlock()

	if scanning {
		l.adapter.StopScan()
	}
	if device != nil {
		device.Disconnect()
	}
}

// Write implements domain.FrameWriter over the discovered
// characteristic. The done callback carries the platform write result.
func (l *Link) Write(frame []byte, done func(error)) error {
	l.mu.Lock()
	char := l.writeChar
	l.mu.Unlock()

	if char == nil {
		return fmt.Errorf("hud not connected")
	}

	go func() {
		_, err := char.WriteWithoutResponse(frame)
		done(err)
	}()
	return nil
}

// matchesHUD checks a discovery result against the known accessory
// name prefixes. Some firmware revisions omit the local name from the
// scan response, so the raw advertisement bytes are checked too.
func matchesHUD(name string, raw []byte) bool {
	lowerName := strings.ToLower(name)
	lowerRaw := strings.ToLower(string(raw))
	for _, prefix := range hudNamePrefixes {
		if strings.Contains(lowerName, prefix) {
			return true
		}
		if len(raw) > 0 && strings.Contains(lowerRaw, prefix) {
			return true
		}
	}
	return false
}
