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

package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gopeace88/RunVision-Wear/internal/domain"
)

// Learned stride length lives under this fixed key.
const strideKey = "stride_length_m"

// Sessions beyond the most recent keepSessions are purged along with
// their sample rows.
const keepSessions = 50

// Service encapsulates all database operations: the stride setting,
// session records, and the per-second sample log.
type Service struct {
	db *gorm.DB
}

// NewService opens (or creates) the database and runs migrations.
func NewService(dbPath string) (*Service, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Setting{}, &domain.Session{}, &domain.Sample{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &Service{db: db}, nil
}

// ==============
// STRIDE SETTING
// ==============

// LoadStride returns the persisted stride length. ok is false when no
// value has been learned yet.
func (s *Service) LoadStride() (float64, bool, error) {
	var setting domain.Setting
	err := s.db.First(&setting, "key = ?", strideKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return setting.Value, true, nil
}

func (s *Service) SaveStride(meters float64) error {
	return s.db.Save(&domain.Setting{Key: strideKey, Value: meters}).Error
}

func (s *Service) ClearStride() error {
	return s.db.Delete(&domain.Setting{}, "key = ?", strideKey).Error
}

// ========
// SESSIONS
// ========

// StartSession creates the session row at run start.
func (s *Service) StartSession(id string, startedAt time.Time) error {
	return s.db.Create(&domain.Session{
		ID:        id,
		StartedAt: startedAt,
		CreatedAt: time.Now(),
	}).Error
}

// AppendSample adds one per-second row to the session's event log.
func (s *Service) AppendSample(sessionID string, sample domain.Sample) error {
	sample.SessionID = sessionID
	return s.db.Create(&sample).Error
}

// FinishSession stamps the end time, computes post-hoc averages over
// the session's sample rows, and purges sessions beyond the retention
// limit. Averages ignore zero readings so a GPS dropout does not drag
// the session pace down.
func (s *Service) FinishSession(id string, endedAt time.Time) (domain.Session, error) {
	var session domain.Session
	if err := s.db.First(&session, "id = ?", id).Error; err != nil {
		return domain.Session{}, err
	}

	type averages struct {
		AvgPace      float64
		AvgHeartRate float64
		AvgCadence   float64
		MaxDistance  float64
	}
	var avg averages
	err := s.db.Model(&domain.Sample{}).
		Select(
			"avg(case when pace > 0 then pace end) as avg_pace, "+
				"avg(case when heart_rate > 0 then heart_rate end) as avg_heart_rate, "+
				"avg(case when cadence > 0 then cadence end) as avg_cadence, "+
				"max(distance) as max_distance").
		Where("session_id = ?", id).
		Scan(&avg).Error
	if err != nil {
		return domain.Session{}, err
	}

	session.EndedAt = endedAt
	session.Duration = int64(endedAt.Sub(session.StartedAt).Seconds())
	session.TotalDistance = avg.MaxDistance
	session.AvgPace = int(avg.AvgPace)
	session.AvgHeartRate = int(avg.AvgHeartRate)
	session.AvgCadence = int(avg.AvgCadence)

	if err := s.db.Save(&session).Error; err != nil {
		return domain.Session{}, err
	}

	if err := s.purgeOldSessions(); err != nil {
		return session, err
	}
	return session, nil
}

// DeleteSession removes one session and its sample rows, used when a
// run is discarded rather than finished.
func (s *Service) DeleteSession(id string) error {
	if err := s.db.Delete(&domain.Sample{}, "session_id = ?", id).Error; err != nil {
		return err
	}
	return s.db.Delete(&domain.Session{}, "id = ?", id).Error
}

// Samples returns the session's rows in chronological order.
func (s *Service) Samples(sessionID string) ([]domain.Sample, error) {
	var samples []domain.Sample
	err := s.db.Where("session_id = ?", sessionID).Order("timestamp asc").Find(&samples).Error
	return samples, err
}

// RecentSessions returns the most recent sessions, newest first.
// A non-positive limit means no limit.
func (s *Service) RecentSessions(limit int) ([]domain.Session, error) {
	var sessions []domain.Session
	q := s.db.Order("started_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&sessions).Error
	return sessions, err
}

// TotalDistance returns the distance accumulated across all recorded
// sessions.
func (s *Service) TotalDistance() float64 {
	// A pointer handles the NULL an empty table aggregates to.
	var total *float64
	if err := s.db.Model(&domain.Session{}).Select("sum(total_distance)").Scan(&total).Error; err != nil {
		return 0
	}
	if total == nil {
		return 0
	}
	return *total
}

// TotalDuration returns the active seconds accumulated across all
// recorded sessions.
func (s *Service) TotalDuration() int64 {
	var total *int64
	s.db.Model(&domain.Session{}).Select("sum(duration)").Scan(&total)
	if total == nil {
		return 0
	}
	return *total
}

// purgeOldSessions keeps only the newest keepSessions sessions and
// deletes older ones together with their sample rows.
func (s *Service) purgeOldSessions() error {
	var keep []string
	err := s.db.Model(&domain.Session{}).
		Order("started_at desc").
		Limit(keepSessions).
		Pluck("id", &keep).Error
	if err != nil {
		return err
	}

	if err := s.db.Delete(&domain.Sample{}, "session_id NOT IN ?", keep).Error; err != nil {
		return err
	}
	return s.db.Delete(&domain.Session{}, "id NOT IN ?", keep).Error
}
