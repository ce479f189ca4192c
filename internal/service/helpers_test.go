package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"taskmind/internal/interpreter"
	"taskmind/internal/model"
)

// fakeTaskStore is an in-memory TaskStore for service tests.
type fakeTaskStore struct {
	tasks     []model.Task
	nextID    uint
	failAfter int // Create fails once this many tasks are stored; 0 = never
	replaced  bool
}

func (f *fakeTaskStore) Create(_ context.Context, task *model.Task) error {
	if f.failAfter > 0 && len(f.tasks) >= f.failAfter {
		return errors.New("storage down")
	}
	f.nextID++
	task.ID = f.nextID
	task.CreatedAt = time.Now().UTC()
	f.tasks = append(f.tasks, *task)
	return nil
}

func (f *fakeTaskStore) ListByCategory(_ context.Context, userID int64, category model.Category) ([]model.Task, error) {
	var out []model.Task
	for _, t := range f.tasks {
		if t.UserID == userID && t.Category == category && !t.IsCompleted {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) ListByDay(_ context.Context, userID int64, day time.Time) ([]model.Task, error) {
	var out []model.Task
	for _, t := range f.tasks {
		if t.UserID == userID && !t.IsCompleted && t.DeadlineDay != nil && t.DeadlineDay.Equal(day) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DeadlineTime, out[j].DeadlineTime
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})
	return out, nil
}

func (f *fakeTaskStore) ListByRange(_ context.Context, userID int64, start, end time.Time) ([]model.Task, error) {
	var out []model.Task
	for _, t := range f.tasks {
		if t.UserID == userID && !t.IsCompleted && t.DeadlineDay != nil &&
			!t.DeadlineDay.Before(start) && !t.DeadlineDay.After(end) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) ListAll(_ context.Context, userID int64) ([]model.Task, error) {
	var out []model.Task
	for _, t := range f.tasks {
		if t.UserID == userID && !t.IsCompleted {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) ListWithReminder(_ context.Context, userID int64) ([]model.Task, error) {
	var out []model.Task
	for _, t := range f.tasks {
		if t.UserID == userID && !t.IsCompleted && !t.Reminded && t.RemindDate != nil {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) MarkCompleted(_ context.Context, taskID uint, userID int64) (bool, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == taskID && f.tasks[i].UserID == userID {
			f.tasks[i].IsCompleted = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTaskStore) Delete(_ context.Context, taskID uint, userID int64) (bool, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == taskID && f.tasks[i].UserID == userID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTaskStore) FindByMessageID(_ context.Context, messageID int, userID int64) (*model.Task, error) {
	for i := range f.tasks {
		if f.tasks[i].UserID == userID && f.tasks[i].MessageID != nil && *f.tasks[i].MessageID == messageID {
			task := f.tasks[i]
			return &task, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTaskStore) SetMessageID(_ context.Context, taskID uint, userID int64, messageID int) error {
	for i := range f.tasks {
		if f.tasks[i].ID == taskID && f.tasks[i].UserID == userID {
			id := messageID
			f.tasks[i].MessageID = &id
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeTaskStore) ClaimReminder(_ context.Context, taskID uint) (bool, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == taskID {
			if f.tasks[i].Reminded {
				return false, nil
			}
			f.tasks[i].Reminded = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTaskStore) Replace(ctx context.Context, userID int64, oldID uint, tasks []*model.Task) error {
	deleted, err := f.Delete(ctx, oldID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return gorm.ErrRecordNotFound
	}
	for _, task := range tasks {
		if err := f.Create(ctx, task); err != nil {
			return err
		}
	}
	f.replaced = true
	return nil
}

func (f *fakeTaskStore) find(taskID uint) *model.Task {
	for i := range f.tasks {
		if f.tasks[i].ID == taskID {
			return &f.tasks[i]
		}
	}
	return nil
}

// fakeSettingsStore is an in-memory SettingsStore.
type fakeSettingsStore struct {
	rows map[int64]model.UserSettings
}

func newFakeSettingsStore() *fakeSettingsStore {
	return &fakeSettingsStore{rows: make(map[int64]model.UserSettings)}
}

func (f *fakeSettingsStore) Upsert(_ context.Context, userID int64, utcOffset, notifyHour, notifyMinute int) error {
	f.rows[userID] = model.UserSettings{
		UserID:       userID,
		UTCOffset:    utcOffset,
		NotifyHour:   notifyHour,
		NotifyMinute: notifyMinute,
	}
	return nil
}

func (f *fakeSettingsStore) Get(_ context.Context, userID int64) (*model.UserSettings, error) {
	settings, ok := f.rows[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &settings, nil
}

func (f *fakeSettingsStore) ListAll(_ context.Context) ([]model.UserSettings, error) {
	out := make([]model.UserSettings, 0, len(f.rows))
	for _, settings := range f.rows {
		out = append(out, settings)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

type sentMessage struct {
	userID int64
	text   string
}

// fakeNotifier records outbound messages.
type fakeNotifier struct {
	sent []sentMessage
	err  error
}

func (f *fakeNotifier) Notify(userID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{userID: userID, text: text})
	return nil
}

// fakeInterpreter returns a canned result and records calls.
type fakeInterpreter struct {
	result  interpreter.Result
	err     error
	calls   int
	lastReq interpreter.Request
}

func (f *fakeInterpreter) Interpret(_ context.Context, req interpreter.Request) (interpreter.Result, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return interpreter.Result{}, f.err
	}
	return f.result, nil
}

func dateOf(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func clockOf(hour, minute int) *time.Time {
	c := time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC)
	return &c
}
