package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"taskmind/internal/model"
)

const displayDateLayout = "02-01-2006"

func formatTaskID(taskID uint) string {
	return strconv.FormatUint(uint64(taskID), 10)
}

// formatTaskCard renders the full confirmation card sent after a task is
// created or updated.
func formatTaskCard(task *model.Task, header string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s\n\n", header))
	b.WriteString(fmt.Sprintf("📝 <b>Что:</b> %s\n", escape(task.Description)))
	b.WriteString(fmt.Sprintf("📁 <b>Категория:</b> %s\n", task.Category.Label()))
	if task.DeadlineDay != nil {
		b.WriteString(fmt.Sprintf("📅 <b>Дата:</b> %s\n", task.DeadlineDay.Format(displayDateLayout)))
	}
	if task.DeadlineTime != nil {
		b.WriteString(fmt.Sprintf("⏰ <b>Время:</b> %s\n", task.DeadlineTime.Format("15:04")))
	}
	if task.RemindDate != nil {
		b.WriteString(fmt.Sprintf("🚨 <b>Напоминание дата:</b> %s\n", task.RemindDate.Format(displayDateLayout)))
	}
	if task.RemindTime != nil {
		b.WriteString(fmt.Sprintf("⏱️ <b>Напоминание время:</b> %s\n", task.RemindTime.Format("15:04")))
	}
	b.WriteString(fmt.Sprintf("🆔 ID задачи: %d", task.ID))
	return strings.TrimSpace(b.String())
}

// formatTaskLine renders the short one-task view used by list commands.
func formatTaskLine(task *model.Task, withDate bool) string {
	var parts []string
	if task.IsCompleted {
		parts = append(parts, "✅")
	}
	if withDate && task.DeadlineDay != nil {
		parts = append(parts, task.DeadlineDay.Format(displayDateLayout))
	}
	if task.DeadlineTime != nil {
		parts = append(parts, task.DeadlineTime.Format("15:04"))
	}
	parts = append(parts, escape(task.Description))
	return fmt.Sprintf("%s\nID задачи: %d", strings.Join(parts, " "), task.ID)
}

func escape(s string) string {
	return html.EscapeString(s)
}
