package model

import "time"

// UserSettings keeps one row per user: the UTC offset used to resolve
// relative dates and the wall-clock time of the daily digest.
type UserSettings struct {
	UserID       int64 `gorm:"primaryKey"`
	UTCOffset    int   // whole hours, e.g. +3
	NotifyHour   int
	NotifyMinute int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NotifyTime renders the digest time as HH:MM.
func (s UserSettings) NotifyTime() string {
	return time.Date(0, 1, 1, s.NotifyHour, s.NotifyMinute, 0, 0, time.UTC).Format("15:04")
}
