package fit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/muktihari/fit/decoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopeace88/RunVision-Wear/internal/domain"
)

func TestSaveProducesDecodableActivity(t *testing.T) {
	svc := NewService()
	start := time.Now().Add(-time.Minute)
	svc.StartSession(start)

	for i := 0; i < 60; i++ {
		svc.AddRecord(domain.RunningMetrics{
			ElapsedSeconds: i,
			Distance:       float64(i) * 3.3,
			Pace:           300,
			HeartRate:      150,
			Cadence:        176,
			Latitude:       37.5326,
			Longitude:      127.0246,
		}, start.Add(time.Duration(i)*time.Second))
	}

	path := filepath.Join(t.TempDir(), "run.fit")
	require.NoError(t, svc.Save(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	fit, err := decoder.New(f).Decode()
	require.NoError(t, err)

	// FileId + 60 records + event + lap + session.
	assert.Len(t, fit.Messages, 64)
}

func TestAddRecordConcurrentWithSave(t *testing.T) {
	svc := NewService()
	start := time.Now().Add(-time.Minute)
	svc.StartSession(start)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
				svc.AddRecord(domain.RunningMetrics{
					ElapsedSeconds: i,
					Distance:       float64(i),
					Pace:           300,
					HeartRate:      150,
				}, start.Add(time.Duration(i)*time.Second))
			}
		}
	}()

	dir := t.TempDir()
	for i := 0; i < 20; i++ {
		require.NoError(t, svc.Save(filepath.Join(dir, "run.fit")))
	}

	close(stop)
	<-done
}

func TestStartSessionClearsRecords(t *testing.T) {
	svc := NewService()
	svc.StartSession(time.Now())
	svc.AddRecord(domain.RunningMetrics{Pace: 300}, time.Now())

	svc.StartSession(time.Now())
	assert.Empty(t, svc.records)
}
