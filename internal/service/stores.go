package service

import (
	"context"
	"time"

	"taskmind/internal/model"
)

// TaskStore is the storage surface the task pipeline depends on.
// *repository.TaskRepository satisfies it.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	ListByCategory(ctx context.Context, userID int64, category model.Category) ([]model.Task, error)
	ListByDay(ctx context.Context, userID int64, day time.Time) ([]model.Task, error)
	ListByRange(ctx context.Context, userID int64, start, end time.Time) ([]model.Task, error)
	ListAll(ctx context.Context, userID int64) ([]model.Task, error)
	ListWithReminder(ctx context.Context, userID int64) ([]model.Task, error)
	MarkCompleted(ctx context.Context, taskID uint, userID int64) (bool, error)
	Delete(ctx context.Context, taskID uint, userID int64) (bool, error)
	FindByMessageID(ctx context.Context, messageID int, userID int64) (*model.Task, error)
	SetMessageID(ctx context.Context, taskID uint, userID int64, messageID int) error
	ClaimReminder(ctx context.Context, taskID uint) (bool, error)
	Replace(ctx context.Context, userID int64, oldID uint, tasks []*model.Task) error
}

// SettingsStore is the storage surface for per-user settings.
// *repository.SettingsRepository satisfies it.
type SettingsStore interface {
	Upsert(ctx context.Context, userID int64, utcOffset, notifyHour, notifyMinute int) error
	Get(ctx context.Context, userID int64) (*model.UserSettings, error)
	ListAll(ctx context.Context) ([]model.UserSettings, error)
}

// Notifier delivers an outbound message to a user. The bot implements it.
type Notifier interface {
	Notify(userID int64, text string) error
}
