package fit

import (
	"os"
	"sync"
	"time"

	"github.com/muktihari/fit/encoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/proto"

	"github.com/gopeace88/RunVision-Wear/internal/domain"
)

// Constant for converting Degrees to Semicircles (FIT Standard)
const degreesToSemicircles = 2147483648.0 / 180.0

// Service accumulates per-second records and writes a FIT running
// activity on save. Safe for concurrent use: the tick loop appends
// records while the finish path may already be encoding.
type Service struct {
	mu        sync.Mutex
	records   []*mesgdef.Record
	startTime time.Time
}

func NewService() *Service {
	return &Service{
		records: []*mesgdef.Record{},
	}
}

// StartSession marks the beginning of the run and clears previous
// records.
func (s *Service) StartSession(startTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startTime = startTime
	s.records = []*mesgdef.Record{}
}

// AddRecord converts one metrics snapshot to FIT binary format.
func (s *Service) AddRecord(m domain.RunningMetrics, at time.Time) {
	// Lat/Lon: Degrees -> Semicircles
	lat := int32(m.Latitude * degreesToSemicircles)
	lon := int32(m.Longitude * degreesToSemicircles)

	// Speed from pace: s/km -> m/s -> mm/s
	var scaledSpeed uint32
	if m.Pace > 0 {
		scaledSpeed = uint32(1000.0 / float64(m.Pace) * 1000.0)
	}

	// Distance: Meters -> cm
	scaledDist := uint32(m.Distance * 100)

	// Running cadence in FIT counts full gait cycles (strides/min),
	// half the step cadence the sensors report.
	record := &mesgdef.Record{
		Timestamp:     at,
		PositionLat:   lat,
		PositionLong:  lon,
		Distance:      scaledDist,
		EnhancedSpeed: scaledSpeed,
		HeartRate:     uint8(m.HeartRate),
		Cadence:       uint8(m.Cadence / 2),
	}

	s.mu.Lock()
	s.records = append(s.records, record)
	s.mu.Unlock()
}

// Save finalizes the file, calculates session totals, and writes to
// disk.
func (s *Service) Save(filepath string) error {
	s.mu.Lock()
	records := make([]*mesgdef.Record, len(s.records))
	copy(records, s.records)
	startTime := s.startTime
	s.mu.Unlock()

	f, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := encoder.New(f)
	fit := proto.FIT{}

	fileIdMesg := mesgdef.FileId{
		Type:         typedef.FileActivity,
		Manufacturer: typedef.ManufacturerDevelopment,
		Product:      0,
		SerialNumber: 12345,
		TimeCreated:  startTime,
	}
	fit.Messages = append(fit.Messages, fileIdMesg.ToMesg(nil))

	for _, rec := range records {
		fit.Messages = append(fit.Messages, rec.ToMesg(nil))
	}

	totalTime := time.Since(startTime).Seconds()
	avgHR := calculateAvgHeartRate(records)
	lastDist := getLastDistance(records)

	eventMesg := mesgdef.Event{
		Timestamp: time.Now(),
		Event:     typedef.EventTimer,
		EventType: typedef.EventTypeStopAll,
	}
	fit.Messages = append(fit.Messages, eventMesg.ToMesg(nil))

	lapMesg := mesgdef.Lap{
		Timestamp:        time.Now(),
		StartTime:        startTime,
		TotalElapsedTime: uint32(totalTime * 1000), // ms
		TotalTimerTime:   uint32(totalTime * 1000), // ms
		TotalDistance:    lastDist,
		AvgHeartRate:     avgHR,
		Event:            typedef.EventLap,
		EventType:        typedef.EventTypeStop,
	}
	fit.Messages = append(fit.Messages, lapMesg.ToMesg(nil))

	sessionMesg := mesgdef.Session{
		Timestamp:        time.Now(),
		StartTime:        startTime,
		TotalElapsedTime: uint32(totalTime * 1000), // ms
		TotalTimerTime:   uint32(totalTime * 1000), // ms
		TotalDistance:    lastDist,
		AvgHeartRate:     avgHR,
		Sport:            typedef.SportRunning,
		SubSport:         typedef.SubSportGeneric,
		Event:            typedef.EventSession,
		EventType:        typedef.EventTypeStop,
		Trigger:          typedef.SessionTriggerActivityEnd,
	}
	fit.Messages = append(fit.Messages, sessionMesg.ToMesg(nil))

	if err := enc.Encode(&fit); err != nil {
		return err
	}

	return nil
}

// Helpers

func calculateAvgHeartRate(records []*mesgdef.Record) uint8 {
	if len(records) == 0 {
		return 0
	}
	var sum uint64
	var count uint64
	for _, r := range records {
		if r.HeartRate > 0 {
			sum += uint64(r.HeartRate)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return uint8(sum / count)
}

func getLastDistance(records []*mesgdef.Record) uint32 {
	if len(records) == 0 {
		return 0
	}
	return records[len(records)-1].Distance
}
