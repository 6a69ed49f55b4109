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

package domain

// SensorSource defines how the engine receives fused sensor data.
// Decoupled: it does not matter whether readings come from real
// hardware or a simulator.
type SensorSource interface {
	// Subscribe starts delivering sensor events on the given channel.
	Subscribe(ch chan<- SensorEvent) error

	// Close stops the event stream.
	Close()
}

// StrideStore persists the learned stride length across restarts.
// An absent value means "not yet learned".
type StrideStore interface {
	LoadStride() (meters float64, ok bool, err error)
	SaveStride(meters float64) error
	ClearStride() error
}

// DisplaySink consumes the per-tick snapshot for rendering.
type DisplaySink interface {
	Show(m RunningMetrics)
}

// SampleLog is the append-only per-second event log.
// Failures are logged and swallowed at the call site, never
// propagated into the tick loop.
type SampleLog interface {
	AppendSample(sessionID string, s Sample) error
}

// FrameWriter is the transport port the write queue drains into.
// Write must not block; done is invoked exactly once with the
// outcome of the platform write.
type FrameWriter interface {
	Write(frame []byte, done func(error)) error
}
