package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"taskmind/internal/interpreter"
	"taskmind/internal/model"
)

func newTaskService(store TaskStore) *TaskService {
	return NewTaskService(store, zap.NewNop())
}

func TestMaterializeMissingFieldsBecomeNull(t *testing.T) {
	store := &fakeTaskStore{}
	svc := newTaskService(store)

	tasks, err := svc.Materialize(context.Background(), 1, "сделать отчёт", []interpreter.Item{
		{Task: "сделать отчёт", Category: "short_120"},
	})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}

	task := tasks[0]
	if task.DeadlineDay != nil || task.DeadlineTime != nil || task.RemindDate != nil || task.RemindTime != nil {
		t.Errorf("missing fields must stay null, got %+v", task)
	}
	if task.Category != model.CategoryShort120 {
		t.Errorf("category = %q, want short_120", task.Category)
	}
}

func TestMaterializeInvalidDateNulledOtherFieldsSurvive(t *testing.T) {
	store := &fakeTaskStore{}
	svc := newTaskService(store)

	tasks, err := svc.Materialize(context.Background(), 1, "raw", []interpreter.Item{
		{Task: "позвонить врачу", Date: "2025-13-99", Time: "14:30", Category: "short_5"},
	})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	task := tasks[0]
	if task.DeadlineDay != nil {
		t.Errorf("invalid date must be nulled, got %v", task.DeadlineDay)
	}
	if task.DeadlineTime == nil || task.DeadlineTime.Format("15:04") != "14:30" {
		t.Errorf("valid time must survive, got %v", task.DeadlineTime)
	}
	if task.Description != "позвонить врачу" {
		t.Errorf("description = %q", task.Description)
	}
}

func TestMaterializeUnknownCategoryDefaults(t *testing.T) {
	store := &fakeTaskStore{}
	svc := newTaskService(store)

	for _, raw := range []string{"", "urgent", "short_45", "LONG"} {
		tasks, err := svc.Materialize(context.Background(), 1, "raw", []interpreter.Item{
			{Task: "задача", Category: raw},
		})
		if err != nil {
			t.Fatalf("Materialize(%q): %v", raw, err)
		}
		if got := tasks[0].Category; got != model.DefaultCategory {
			t.Errorf("category %q materialized as %q, want %q", raw, got, model.DefaultCategory)
		}
	}
}

func TestMaterializeDescriptionFallsBackToRawText(t *testing.T) {
	store := &fakeTaskStore{}
	svc := newTaskService(store)

	tasks, err := svc.Materialize(context.Background(), 1, "купить молоко завтра", []interpreter.Item{
		{Category: "short_5"},
	})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if tasks[0].Description != "купить молоко завтра" {
		t.Errorf("description = %q, want raw text fallback", tasks[0].Description)
	}
}

func TestMaterializePreservesItemOrder(t *testing.T) {
	store := &fakeTaskStore{}
	svc := newTaskService(store)

	tasks, err := svc.Materialize(context.Background(), 1, "raw", []interpreter.Item{
		{Task: "первая"},
		{Task: "вторая"},
		{Task: "третья"},
	})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	want := []string{"первая", "вторая", "третья"}
	for i, w := range want {
		if tasks[i].Description != w {
			t.Errorf("tasks[%d] = %q, want %q", i, tasks[i].Description, w)
		}
	}
}

func TestMaterializeScenarioBuyBread(t *testing.T) {
	store := &fakeTaskStore{}
	svc := newTaskService(store)

	tasks, err := svc.Materialize(context.Background(), 7, "купить хлеб в 18:00", []interpreter.Item{
		{Category: "short_5", Date: "2025-06-01", Time: "18:00", Task: "купить хлеб"},
	})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	task := tasks[0]
	if task.Category != model.CategoryShort5 {
		t.Errorf("category = %q, want short_5", task.Category)
	}
	if task.DeadlineDay == nil || task.DeadlineDay.Format("2006-01-02") != "2025-06-01" {
		t.Errorf("deadline day = %v, want 2025-06-01", task.DeadlineDay)
	}
	if task.DeadlineTime == nil || task.DeadlineTime.Format("15:04") != "18:00" {
		t.Errorf("deadline time = %v, want 18:00", task.DeadlineTime)
	}
	if task.Description != "купить хлеб" {
		t.Errorf("description = %q", task.Description)
	}
}

func TestMaterializeRoundTripThroughStore(t *testing.T) {
	store := &fakeTaskStore{}
	svc := newTaskService(store)

	tasks, err := svc.Materialize(context.Background(), 3, "raw", []interpreter.Item{
		{Category: "long", Date: "2025-07-15", Time: "09:45", Task: "подготовить доклад"},
	})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	stored := store.find(tasks[0].ID)
	if stored == nil {
		t.Fatal("task not persisted")
	}
	if stored.Category != model.CategoryLong {
		t.Errorf("stored category = %q, want long", stored.Category)
	}
	if stored.DeadlineDay == nil || stored.DeadlineDay.Format("2006-01-02") != "2025-07-15" {
		t.Errorf("stored deadline day = %v", stored.DeadlineDay)
	}
	if stored.DeadlineTime == nil || stored.DeadlineTime.Format("15:04") != "09:45" {
		t.Errorf("stored deadline time = %v", stored.DeadlineTime)
	}
}

func TestMaterializePartialFailureKeepsPrefix(t *testing.T) {
	store := &fakeTaskStore{failAfter: 1}
	svc := newTaskService(store)

	tasks, err := svc.Materialize(context.Background(), 1, "raw", []interpreter.Item{
		{Task: "первая"},
		{Task: "вторая"},
	})
	if err == nil {
		t.Fatal("expected error from second create")
	}
	if len(tasks) != 1 || tasks[0].Description != "первая" {
		t.Errorf("expected one-task prefix, got %+v", tasks)
	}
	if len(store.tasks) != 1 {
		t.Errorf("store holds %d tasks, want 1", len(store.tasks))
	}
}

func TestListTodayIsIdempotent(t *testing.T) {
	store := &fakeTaskStore{}
	svc := newTaskService(store)
	ctx := context.Background()

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Materialize(ctx, 1, "raw", []interpreter.Item{
		{Task: "утро", Date: "2025-06-01", Time: "09:00"},
		{Task: "вечер", Date: "2025-06-01", Time: "19:00"},
	}); err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	first, err := svc.ListToday(ctx, 1, day)
	if err != nil {
		t.Fatalf("ListToday: %v", err)
	}
	second, err := svc.ListToday(ctx, 1, day)
	if err != nil {
		t.Fatalf("ListToday: %v", err)
	}

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("got %d and %d tasks, want 2 and 2", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("ordering changed between identical reads: %v vs %v", first, second)
		}
	}
}

func TestParseDateOrNil(t *testing.T) {
	tests := []struct {
		raw  string
		want string // empty means nil
	}{
		{"2025-06-01", "2025-06-01"},
		{" 2025-06-01 ", "2025-06-01"},
		{"", ""},
		{"01-06-2025", ""},
		{"2025-13-40", ""},
		{"tomorrow", ""},
	}
	for _, tt := range tests {
		got := parseDateOrNil(tt.raw)
		switch {
		case tt.want == "" && got != nil:
			t.Errorf("parseDateOrNil(%q) = %v, want nil", tt.raw, got)
		case tt.want != "" && (got == nil || got.Format("2006-01-02") != tt.want):
			t.Errorf("parseDateOrNil(%q) = %v, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestParseClockOrNil(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"18:00", "18:00"},
		{"00:00", "00:00"},
		{"", ""},
		{"25:00", ""},
		{"18-00", ""},
		{"после обеда", ""},
	}
	for _, tt := range tests {
		got := parseClockOrNil(tt.raw)
		switch {
		case tt.want == "" && got != nil:
			t.Errorf("parseClockOrNil(%q) = %v, want nil", tt.raw, got)
		case tt.want != "" && (got == nil || got.Format("15:04") != tt.want):
			t.Errorf("parseClockOrNil(%q) = %v, want %s", tt.raw, got, tt.want)
		}
	}
}
