package model

import "time"

// Task represents a single to-do item extracted from free-form text.
// Deadline and reminder fields are nullable: the interpreter may omit any
// of them, and an unparseable value is stored as NULL rather than rejected.
type Task struct {
	ID           uint  `gorm:"primaryKey"`
	UserID       int64 `gorm:"index"`
	Description  string
	Category     Category
	IsCompleted  bool `gorm:"default:false"`
	CreatedAt    time.Time
	DeadlineDay  *time.Time
	DeadlineTime *time.Time
	RemindDate   *time.Time
	RemindTime   *time.Time
	// MessageID points at the confirmation message the bot sent for this
	// task; replying to that message routes the reply into the edit pipeline.
	MessageID *int `gorm:"index"`
	// Reminded is flipped once the per-task reminder has fired, so a tick
	// repeating within the same minute cannot fire it twice.
	Reminded bool `gorm:"default:false"`
}

// HasReminder reports whether the task can ever fire in the reminder loop.
func (t Task) HasReminder() bool {
	return t.RemindDate != nil
}
