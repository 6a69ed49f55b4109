package gpx

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gpxgo "github.com/tkrajina/gpxgo/gpx"

	"github.com/gopeace88/RunVision-Wear/internal/domain"
)

func TestExportRoundTrip(t *testing.T) {
	svc := NewService()

	start := time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC)
	var samples []domain.Sample
	for i := 0; i < 30; i++ {
		samples = append(samples, domain.Sample{
			Timestamp: start.Add(time.Duration(i) * time.Second),
			Latitude:  37.5326 + float64(i)*0.0001,
			Longitude: 127.0246,
			Distance:  float64(i) * 3.3,
		})
	}
	// A sample without a fix must be skipped, not exported as (0,0).
	samples = append(samples, domain.Sample{Timestamp: start.Add(31 * time.Second)})

	path := filepath.Join(t.TempDir(), "run.gpx")
	require.NoError(t, svc.Export("Morning Run", samples, path))

	parsed, err := gpxgo.ParseFile(path)
	require.NoError(t, err)
	require.Len(t, parsed.Tracks, 1)
	require.Len(t, parsed.Tracks[0].Segments, 1)

	points := parsed.Tracks[0].Segments[0].Points
	assert.Len(t, points, 30)
	assert.InDelta(t, 37.5326, points[0].Latitude, 0.0001)
	assert.Equal(t, "Morning Run", parsed.Tracks[0].Name)
}

func TestExportRejectsEmptyTrack(t *testing.T) {
	svc := NewService()
	path := filepath.Join(t.TempDir(), "empty.gpx")

	err := svc.Export("Empty", []domain.Sample{{}}, path)
	assert.Error(t, err)
}
