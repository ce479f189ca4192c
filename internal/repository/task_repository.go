package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskmind/internal/model"
)

// TaskRepository handles CRUD and time-windowed queries for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// ListByCategory returns incomplete tasks of one duration bucket.
func (r *TaskRepository) ListByCategory(ctx context.Context, userID int64, category model.Category) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND category = ? AND is_completed = ?", userID, category, false).
		Order("deadline_day, deadline_time").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByDay returns incomplete tasks due on the given date, earliest first.
func (r *TaskRepository) ListByDay(ctx context.Context, userID int64, day time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND deadline_day = ? AND is_completed = ?", userID, day, false).
		Order("deadline_time").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByRange returns incomplete tasks with a deadline inside [start, end].
func (r *TaskRepository) ListByRange(ctx context.Context, userID int64, start, end time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND deadline_day >= ? AND deadline_day <= ? AND is_completed = ?", userID, start, end, false).
		Order("deadline_day, deadline_time").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListAll returns every incomplete task of the user.
func (r *TaskRepository) ListAll(ctx context.Context, userID int64) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_completed = ?", userID, false).
		Order("created_at").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListWithReminder returns incomplete tasks that still carry an unfired reminder.
func (r *TaskRepository) ListWithReminder(ctx context.Context, userID int64) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_completed = ? AND reminded = ? AND remind_date IS NOT NULL", userID, false, false).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// MarkCompleted flags a task done; reports whether the task existed.
func (r *TaskRepository) MarkCompleted(ctx context.Context, taskID uint, userID int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Update("is_completed", true)
	if res.Error != nil {
		return false, fmt.Errorf("complete task: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete removes a task; reports whether the task existed.
func (r *TaskRepository) Delete(ctx context.Context, taskID uint, userID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		Delete(&model.Task{})
	if res.Error != nil {
		return false, fmt.Errorf("delete task: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// FindByMessageID resolves a bot confirmation message back to its task.
func (r *TaskRepository) FindByMessageID(ctx context.Context, messageID int, userID int64) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// SetMessageID records the outbound confirmation message for a task.
func (r *TaskRepository) SetMessageID(ctx context.Context, taskID uint, userID int64, messageID int) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Update("message_id", messageID).Error; err != nil {
		return fmt.Errorf("set message id: %w", err)
	}
	return nil
}

// ClaimReminder atomically marks a reminder as fired. It returns false when
// another tick already claimed it, which is how double-firing is prevented.
func (r *TaskRepository) ClaimReminder(ctx context.Context, taskID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND reminded = ?", taskID, false).
		Update("reminded", true)
	if res.Error != nil {
		return false, fmt.Errorf("claim reminder: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Replace deletes the old task and creates its replacements in one
// transaction, so an edit never leaves an observable window with no task.
func (r *TaskRepository) Replace(ctx context.Context, userID int64, oldID uint, tasks []*model.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", oldID, userID).Delete(&model.Task{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		for _, task := range tasks {
			if err := tx.Create(task).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace task: %w", err)
	}
	return nil
}
