package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"taskmind/internal/model"
)

// ReminderService runs the minute-granularity notification loop: a daily
// digest of today's tasks plus per-task one-off reminders.
type ReminderService struct {
	tasks    TaskStore
	settings SettingsStore
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewReminderService(tasks TaskStore, settings SettingsStore, notifier Notifier, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		tasks:    tasks,
		settings: settings,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Tick runs one pass over all configured users. A failure for one user is
// logged and the loop continues; the tick itself never returns an error.
func (s *ReminderService) Tick(ctx context.Context) {
	users, err := s.settings.ListAll(ctx)
	if err != nil {
		s.logger.Error("load user settings", zap.Error(err))
		return
	}

	nowUTC := s.now().UTC()
	for _, user := range users {
		select {
		case <-ctx.Done():
			return
		default:
		}
		local := shiftClock(nowUTC, user.UTCOffset)
		s.sendDigest(ctx, user, local)
		s.sendTaskReminders(ctx, user, local)
	}
}

// sendDigest sends one aggregated message when the user's local wall clock
// hits their configured notify time and they have tasks due today.
func (s *ReminderService) sendDigest(ctx context.Context, user model.UserSettings, local time.Time) {
	if local.Hour() != user.NotifyHour || local.Minute() != user.NotifyMinute {
		return
	}

	tasks, err := s.tasks.ListByDay(ctx, user.UserID, truncateDay(local))
	if err != nil {
		s.logger.Error("load today's tasks",
			zap.Int64("user_id", user.UserID),
			zap.Error(err))
		return
	}
	if len(tasks) == 0 {
		return
	}

	var b strings.Builder
	b.WriteString("🔔 Задачи на сегодня:")
	for _, task := range tasks {
		b.WriteString("\n- " + task.Description)
	}
	if err := s.notifier.Notify(user.UserID, b.String()); err != nil {
		s.logger.Error("send digest",
			zap.Int64("user_id", user.UserID),
			zap.Error(err))
	}
}

// sendTaskReminders fires one message per due task reminder. The Reminded
// flag is claimed before sending, so a tick repeating within the same
// minute cannot fire the same reminder twice.
func (s *ReminderService) sendTaskReminders(ctx context.Context, user model.UserSettings, local time.Time) {
	tasks, err := s.tasks.ListWithReminder(ctx, user.UserID)
	if err != nil {
		s.logger.Error("load reminder tasks",
			zap.Int64("user_id", user.UserID),
			zap.Error(err))
		return
	}

	for _, task := range tasks {
		if !reminderDue(task, user, local) {
			continue
		}

		claimed, err := s.tasks.ClaimReminder(ctx, task.ID)
		if err != nil {
			s.logger.Error("claim reminder",
				zap.Uint("task_id", task.ID),
				zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}

		if err := s.notifier.Notify(user.UserID, "🚨 Напоминание: "+task.Description); err != nil {
			s.logger.Error("send reminder",
				zap.Int64("user_id", user.UserID),
				zap.Uint("task_id", task.ID),
				zap.Error(err))
		}
	}
}

// reminderDue matches a task's reminder against the local minute. A task
// without a reminder time inherits the user's digest time.
func reminderDue(task model.Task, user model.UserSettings, local time.Time) bool {
	if !task.HasReminder() {
		return false
	}
	if !sameDay(*task.RemindDate, local) {
		return false
	}

	hour, minute := user.NotifyHour, user.NotifyMinute
	if task.RemindTime != nil {
		hour, minute = task.RemindTime.Hour(), task.RemindTime.Minute()
	}
	return local.Hour() == hour && local.Minute() == minute
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
