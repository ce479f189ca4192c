package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskmind/internal/interpreter"
	"taskmind/internal/model"
)

// ErrTaskNotFound is returned when a reply target does not resolve to any
// stored task; no interpreter call is made in that case.
var ErrTaskNotFound = errors.New("task not found")

// EditResult reports what an edit produced: either a conversational answer
// (no mutation happened) or the replacement tasks.
type EditResult struct {
	ChatMessage string
	Tasks       []model.Task
}

// EditService resolves a reply-to message back to its task, re-runs the
// interpreter with the prior state, and swaps the task for the result.
type EditService struct {
	store  TaskStore
	interp interpreter.Interpreter
	logger *zap.Logger
}

func NewEditService(store TaskStore, interp interpreter.Interpreter, logger *zap.Logger) *EditService {
	return &EditService{store: store, interp: interp, logger: logger}
}

// Edit replaces the task behind replyMessageID according to the new
// instruction. The replace is transactional: the old id is invalidated and
// the new ids issued with no observable window of zero tasks.
func (s *EditService) Edit(ctx context.Context, userID int64, replyMessageID int, instruction, reference string) (EditResult, error) {
	task, err := s.store.FindByMessageID(ctx, replyMessageID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return EditResult{}, ErrTaskNotFound
	}
	if err != nil {
		return EditResult{}, fmt.Errorf("resolve reply target: %w", err)
	}

	result, err := s.interp.Interpret(ctx, interpreter.Request{
		Instruction: instruction,
		Reference:   reference,
		Mode:        interpreter.ModeEdit,
		Prior:       snapshotOf(task),
	})
	if err != nil {
		return EditResult{}, err
	}

	if result.Kind == interpreter.KindChat {
		return EditResult{ChatMessage: result.Message}, nil
	}

	replacements := make([]*model.Task, 0, len(result.Items))
	for _, item := range result.Items {
		t := buildTask(userID, instruction, item)
		replacements = append(replacements, &t)
	}
	if err := s.store.Replace(ctx, userID, task.ID, replacements); err != nil {
		return EditResult{}, err
	}

	s.logger.Info("task replaced",
		zap.Int64("user_id", userID),
		zap.Uint("old_task_id", task.ID),
		zap.Int("replacements", len(replacements)))

	out := make([]model.Task, len(replacements))
	for i, t := range replacements {
		out[i] = *t
	}
	return EditResult{Tasks: out}, nil
}

func snapshotOf(task *model.Task) *interpreter.Snapshot {
	snap := &interpreter.Snapshot{
		Description: task.Description,
		Category:    string(task.Category),
	}
	if task.DeadlineDay != nil {
		snap.Date = task.DeadlineDay.Format(dateLayout)
	}
	if task.DeadlineTime != nil {
		snap.Time = task.DeadlineTime.Format(clockLayout)
	}
	if task.RemindDate != nil {
		snap.RemindDate = task.RemindDate.Format(dateLayout)
	}
	if task.RemindTime != nil {
		snap.RemindTime = task.RemindTime.Format(clockLayout)
	}
	return snap
}
