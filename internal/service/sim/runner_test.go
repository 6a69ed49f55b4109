package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopeace88/RunVision-Wear/internal/domain"
)

func TestRunnerEmitsAllChannels(t *testing.T) {
	r := NewRunner()
	r.Interval = 5 * time.Millisecond

	ch := make(chan domain.SensorEvent, 64)
	require.NoError(t, r.Subscribe(ch))
	defer r.Close()

	seen := make(map[domain.SensorEventKind]int)
	lastDistance := -1.0

	deadline := time.After(2 * time.Second)
	for len(seen) < 4 || seen[domain.EventDistance] < 3 {
		select {
		case ev := <-ch:
			seen[ev.Kind]++
			if ev.Kind == domain.EventDistance {
				assert.Greater(t, ev.Distance, lastDistance, "distance must be strictly increasing")
				lastDistance = ev.Distance
			}
		case <-deadline:
			t.Fatalf("timed out waiting for events, saw %v", seen)
		}
	}

	assert.Positive(t, seen[domain.EventHeartRate])
	assert.Positive(t, seen[domain.EventCadence])
	assert.Positive(t, seen[domain.EventPosition])
}

func TestRunnerCloseUnblocksFullChannel(t *testing.T) {
	r := NewRunner()
	r.Interval = time.Millisecond

	// No consumer: the buffer fills and the emitter blocks on a send.
	ch := make(chan domain.SensorEvent, 1)
	require.NoError(t, r.Subscribe(ch))
	time.Sleep(20 * time.Millisecond)

	r.Close()

	// Drain whatever was already in flight, then the stream must be
	// dead: a closed runner emits nothing more.
	time.Sleep(10 * time.Millisecond)
	for len(ch) > 0 {
		<-ch
	}
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, ch)
}

func TestRunnerCloseIsIdempotent(t *testing.T) {
	r := NewRunner()
	r.Interval = 5 * time.Millisecond

	ch := make(chan domain.SensorEvent, 64)
	require.NoError(t, r.Subscribe(ch))

	r.Close()
	assert.NotPanics(t, func() { r.Close() })
}
