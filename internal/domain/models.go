package domain

import "time"

// RunningMetrics is the unified snapshot the engine emits once per tick.
// Each snapshot is a fresh value; consumers never share mutable state.
type RunningMetrics struct {
	ElapsedSeconds int     `json:"elapsed_seconds"` // Active time since session start
	Distance       float64 `json:"distance"`        // Cumulative distance (meters)
	Pace           int     `json:"pace"`            // Seconds per kilometer, 0 = unknown/stopped
	HeartRate      int     `json:"heart_rate"`      // BPM
	Cadence        int     `json:"cadence"`         // Steps per minute
	Latitude       float64 `json:"lat"`             // Last known position
	Longitude      float64 `json:"lon"`
}

// SensorEventKind discriminates the four sensor callback channels.
type SensorEventKind int

const (
	EventHeartRate SensorEventKind = iota
	EventPosition
	EventCadence
	EventDistance
)

// SensorEvent is one reading from the fused sensor source, delivered
// through a single-consumer channel into the engine's run loop.
type SensorEvent struct {
	Kind      SensorEventKind
	Timestamp time.Time

	HeartRate int     // EventHeartRate (bpm)
	Latitude  float64 // EventPosition
	Longitude float64 // EventPosition
	Cadence   int     // EventCadence (steps/min)
	Distance  float64 // EventDistance (cumulative meters, non-decreasing)
}

// ===============
// DATABASE MODELS
// ===============

// Session represents a completed run.
type Session struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	StartedAt     time.Time `json:"started_at"`
	EndedAt       time.Time `json:"ended_at"`
	TotalDistance float64   `json:"total_distance"` // Meters
	Duration      int64     `json:"duration"`       // Seconds
	AvgPace       int       `json:"avg_pace"`       // Seconds per km
	AvgHeartRate  int       `json:"avg_heart_rate"` // BPM
	AvgCadence    int       `json:"avg_cadence"`    // Steps per minute
	CreatedAt     time.Time `json:"created_at"`
}

// Sample is one per-second row of the session event log.
type Sample struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SessionID string    `json:"session_id" gorm:"index"`
	Timestamp time.Time `json:"timestamp"`
	HeartRate int       `json:"heart_rate"`
	Pace      int       `json:"pace"`
	Cadence   int       `json:"cadence"`
	Distance  float64   `json:"distance"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
}

// Setting is a single scalar persisted under a fixed key,
// currently only the learned stride length.
type Setting struct {
	Key   string  `json:"key" gorm:"primaryKey"`
	Value float64 `json:"value"`
}
