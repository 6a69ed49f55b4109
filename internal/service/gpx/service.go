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

package gpx

import (
	"fmt"
	"os"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/gopeace88/RunVision-Wear/internal/domain"
)

// Service serializes a recorded session to a GPX 1.1 track.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Export writes the session's positioned samples as one track segment.
// Samples without a fix (0,0) are skipped.
func (s *Service) Export(name string, samples []domain.Sample, filepath string) error {
	var points []gpx.GPXPoint
	for _, sample := range samples {
		if sample.Latitude == 0 && sample.Longitude == 0 {
			continue
		}
		point := gpx.GPXPoint{Timestamp: sample.Timestamp}
		point.Latitude = sample.Latitude
		point.Longitude = sample.Longitude
		points = append(points, point)
	}

	if len(points) == 0 {
		return fmt.Errorf("session has no positioned samples")
	}

	doc := gpx.GPX{
		Version: "1.1",
		Creator: "RunVision Wear",
		Tracks: []gpx.GPXTrack{{
			Name:     name,
			Segments: []gpx.GPXTrackSegment{{Points: points}},
		}},
	}

	data, err := doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return fmt.Errorf("serialize gpx: %w", err)
	}

	return os.WriteFile(filepath, data, 0644)
}
