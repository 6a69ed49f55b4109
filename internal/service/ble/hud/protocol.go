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

package hud

import (
	"encoding/binary"
	"math"
)

// UUIDs - Nordic UART Service used by the HUD accessory
const (
	ServiceUUID   = "6e400001-b5a3-f393-e0a9-e50e24dcca9e"
	CharWriteUUID = "6e400002-b5a3-f393-e0a9-e50e24dcca9e" // RX (Write)
	CharReadUUID  = "6e400003-b5a3-f393-e0a9-e50e24dcca9e" // TX (Notify)
)

// Metric identifiers
const (
	MetricSportTime byte = 0x03 // Elapsed active seconds
	MetricDistance  byte = 0x06 // Meters
	MetricPace      byte = 0x07 // Seconds per kilometer
	MetricHeartRate byte = 0x0B // BPM
	MetricCadence   byte = 0x0E // Steps per minute
)

// FrameSize is the fixed size of every outgoing frame:
// 1-byte metric ID followed by a little-endian uint32 value.
const FrameSize = 5

// Encode builds one 5-byte frame. The value is clamped to
// [0, math.MaxInt32]; the HUD firmware treats the payload as signed.
func Encode(metricID byte, value int64) []byte {
	if value < 0 {
		value = 0
	}
	if value > math.MaxInt32 {
		value = math.MaxInt32
	}

	frame := make([]byte, FrameSize)
	frame[0] = metricID
	binary.LittleEndian.PutUint32(frame[1:], uint32(value))
	return frame
}

// EncodeSportTime encodes elapsed active time in seconds.
func EncodeSportTime(seconds int) []byte {
	return Encode(MetricSportTime, int64(seconds))
}

// EncodeDistance encodes cumulative distance, truncated to whole meters.
func EncodeDistance(meters float64) []byte {
	return Encode(MetricDistance, int64(meters))
}

// EncodePace encodes pace in seconds per kilometer.
func EncodePace(secondsPerKm int) []byte {
	return Encode(MetricPace, int64(secondsPerKm))
}

// EncodeHeartRate encodes heart rate in BPM.
func EncodeHeartRate(bpm int) []byte {
	return Encode(MetricHeartRate, int64(bpm))
}

// EncodeCadence encodes cadence in steps per minute.
func EncodeCadence(spm int) []byte {
	return Encode(MetricCadence, int64(spm))
}
