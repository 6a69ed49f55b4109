package sim

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopeace88/RunVision-Wear/internal/domain"
)

// Meters per degree of latitude on a spherical earth.
const metersPerDegreeLat = 111194.9

// Runner simulates the fused sensor source: a steady run with mild
// jitter on every channel. It implements domain.SensorSource and is
// used by demo mode and end-to-end tests.
type Runner struct {
	stopChan chan struct{}

	TargetPace    int // seconds per km
	TargetCadence int // steps per minute
	TargetHR      int // bpm

	StartLat float64
	StartLon float64

	// Interval between emissions; each emission still represents one
	// second of simulated running, so tests can compress time.
	Interval time.Duration
}

func NewRunner() *Runner {
	return &Runner{
		stopChan:      make(chan struct{}),
		TargetPace:    330, // 5:30/km
		TargetCadence: 172,
		TargetHR:      152,
		StartLat:      37.5326,
		StartLon:      127.0246,
		Interval:      1 * time.Second,
	}
}

// Subscribe starts emitting one reading per channel per interval.
func (r *Runner) Subscribe(ch chan<- domain.SensorEvent) error {
	r.stopChan = make(chan struct{})

	go func() {
		ticker := time.NewTicker(r.Interval)
		defer ticker.Stop()

		lat := r.StartLat
		lon := r.StartLon
		distance := 0.0
		hr := float64(r.TargetHR) - 20 // HR ramps up from a resting-ish start

		// A send must never outlive Close: with no consumer left the
		// channel fills and an unguarded send would block forever.
		emit := func(ev domain.SensorEvent) bool {
			select {
			case <-r.stopChan:
				return false
			case ch <- ev:
				return true
			}
		}

		for {
			select {
			case <-r.stopChan:
				return
			case now := <-ticker.C:
				cadence := r.TargetCadence + rand.Intn(7) - 3
				hr += (float64(r.TargetHR) - hr) * 0.1
				speed := 1000.0 / float64(r.TargetPace) // m/s
				step := speed * (0.95 + rand.Float64()*0.1)

				distance += step
				lat += step / metersPerDegreeLat
				lon += step / (metersPerDegreeLat * math.Cos(lat*math.Pi/180)) * 0.1

				if !emit(domain.SensorEvent{Kind: domain.EventHeartRate, Timestamp: now, HeartRate: int(hr)}) {
					return
				}
				if !emit(domain.SensorEvent{Kind: domain.EventCadence, Timestamp: now, Cadence: cadence}) {
					return
				}
				if !emit(domain.SensorEvent{Kind: domain.EventPosition, Timestamp: now, Latitude: lat, Longitude: lon}) {
					return
				}
				if !emit(domain.SensorEvent{Kind: domain.EventDistance, Timestamp: now, Distance: distance}) {
					return
				}
			}
		}
	}()
	return nil
}

// Close stops the event stream. Safe to call twice.
func (r *Runner) Close() {
	select {
	case <-r.stopChan:
	default:
		close(r.stopChan)
	}
}
