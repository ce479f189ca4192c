package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"taskmind/internal/interpreter"
	"taskmind/internal/model"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// TaskService materializes interpreter items into persisted tasks and wraps
// task-related reads for the bot.
type TaskService struct {
	store  TaskStore
	logger *zap.Logger
}

func NewTaskService(store TaskStore, logger *zap.Logger) *TaskService {
	return &TaskService{store: store, logger: logger}
}

// Materialize turns interpreter items into persisted tasks, one row per
// item, preserving item order. Malformed fields are nulled or defaulted,
// never fatal: one garbage item must not sink the rest of the batch. Each
// task is written as it is built, so a storage failure mid-list leaves the
// already-saved prefix in place and returns it alongside the error.
func (s *TaskService) Materialize(ctx context.Context, userID int64, rawText string, items []interpreter.Item) ([]model.Task, error) {
	tasks := make([]model.Task, 0, len(items))
	for _, item := range items {
		task := buildTask(userID, rawText, item)
		if err := s.store.Create(ctx, &task); err != nil {
			s.logger.Error("persist task",
				zap.Int64("user_id", userID),
				zap.Error(err))
			return tasks, fmt.Errorf("save task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// buildTask applies the defensive field rules: unknown category falls back
// to the default bucket, unparseable dates and times become NULL, and an
// omitted description falls back to the user's original text.
func buildTask(userID int64, rawText string, item interpreter.Item) model.Task {
	description := strings.TrimSpace(item.Task)
	if description == "" {
		description = rawText
	}
	return model.Task{
		UserID:       userID,
		Description:  description,
		Category:     model.ParseCategory(item.Category),
		DeadlineDay:  parseDateOrNil(item.Date),
		DeadlineTime: parseClockOrNil(item.Time),
		RemindDate:   parseDateOrNil(item.RemindDate),
		RemindTime:   parseClockOrNil(item.RemindTime),
	}
}

func parseDateOrNil(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseClockOrNil(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse(clockLayout, raw)
	if err != nil {
		return nil
	}
	return &parsed
}

func (s *TaskService) ListToday(ctx context.Context, userID int64, day time.Time) ([]model.Task, error) {
	return s.store.ListByDay(ctx, userID, day)
}

// ListWeek returns tasks due within seven days of the given date.
func (s *TaskService) ListWeek(ctx context.Context, userID int64, start time.Time) ([]model.Task, error) {
	return s.store.ListByRange(ctx, userID, start, start.AddDate(0, 0, 7))
}

func (s *TaskService) ListAll(ctx context.Context, userID int64) ([]model.Task, error) {
	return s.store.ListAll(ctx, userID)
}

func (s *TaskService) ListByCategory(ctx context.Context, userID int64, category model.Category) ([]model.Task, error) {
	return s.store.ListByCategory(ctx, userID, category)
}

// Complete marks a task done; reports whether the task existed.
func (s *TaskService) Complete(ctx context.Context, taskID uint, userID int64) (bool, error) {
	return s.store.MarkCompleted(ctx, taskID, userID)
}

// Delete removes a task; reports whether the task existed.
func (s *TaskService) Delete(ctx context.Context, taskID uint, userID int64) (bool, error) {
	return s.store.Delete(ctx, taskID, userID)
}

// RememberMessage links a task to the confirmation message the bot sent for
// it, enabling edit-by-reply.
func (s *TaskService) RememberMessage(ctx context.Context, taskID uint, userID int64, messageID int) error {
	return s.store.SetMessageID(ctx, taskID, userID, messageID)
}
