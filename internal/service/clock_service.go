package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const referenceLayout = "2006-01-02 15:04"

// ErrTimezoneNotConfigured is returned when the user has no settings row;
// callers prompt the user to configure a timezone instead of guessing one.
var ErrTimezoneNotConfigured = errors.New("timezone is not configured")

// LocalTime is the user's current wall clock, shifted by their UTC offset.
type LocalTime struct {
	Now time.Time
}

// Reference formats the local date/time for interpreter prompts.
func (lt LocalTime) Reference() string {
	return lt.Now.Format(referenceLayout)
}

// Day truncates the local time to its date.
func (lt LocalTime) Day() time.Time {
	y, m, d := lt.Now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ClockService resolves a user's local time from their stored UTC offset.
type ClockService struct {
	settings SettingsStore
	now      func() time.Time
}

func NewClockService(settings SettingsStore) *ClockService {
	return &ClockService{settings: settings, now: time.Now}
}

// Resolve returns the user's local time, or ErrTimezoneNotConfigured when
// the user never set an offset.
func (s *ClockService) Resolve(ctx context.Context, userID int64) (LocalTime, error) {
	settings, err := s.settings.Get(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LocalTime{}, ErrTimezoneNotConfigured
	}
	if err != nil {
		return LocalTime{}, fmt.Errorf("load settings: %w", err)
	}
	return LocalTime{Now: shiftClock(s.now(), settings.UTCOffset)}, nil
}

// ResolveOrUTC is Resolve with a UTC fallback, for read-only views where an
// unconfigured user should still see something.
func (s *ClockService) ResolveOrUTC(ctx context.Context, userID int64) LocalTime {
	lt, err := s.Resolve(ctx, userID)
	if err != nil {
		return LocalTime{Now: s.now().UTC()}
	}
	return lt
}

func shiftClock(now time.Time, offsetHours int) time.Time {
	return now.UTC().Add(time.Duration(offsetHours) * time.Hour)
}
