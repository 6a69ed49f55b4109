package hud

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name  string
		id    byte
		value int64
		want  []byte
	}{
		{"heart rate", 0x0B, 156, []byte{0x0B, 156, 0, 0, 0}},
		{"distance", 0x06, 100000, []byte{0x06, 0xA0, 0x86, 0x01, 0x00}},
		{"negative clamps to zero", 0x06, -100, []byte{0x06, 0, 0, 0, 0}},
		{"zero", 0x03, 0, []byte{0x03, 0, 0, 0, 0}},
		{"max int32", 0x07, 2147483647, []byte{0x07, 0xFF, 0xFF, 0xFF, 0x7F}},
		{"overflow clamps to max int32", 0x07, 1 << 40, []byte{0x07, 0xFF, 0xFF, 0xFF, 0x7F}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.id, tt.value))
		})
	}
}

func TestNamedEncoders(t *testing.T) {
	assert.Equal(t, []byte{MetricSportTime, 60, 0, 0, 0}, EncodeSportTime(60))
	assert.Equal(t, []byte{MetricPace, 0x2C, 0x01, 0, 0}, EncodePace(300))
	assert.Equal(t, []byte{MetricHeartRate, 150, 0, 0, 0}, EncodeHeartRate(150))
	assert.Equal(t, []byte{MetricCadence, 180, 0, 0, 0}, EncodeCadence(180))

	// Distance truncates to whole meters.
	assert.Equal(t, []byte{MetricDistance, 123, 0, 0, 0}, EncodeDistance(123.9))
}
