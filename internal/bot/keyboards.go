package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskmind/internal/model"
)

const (
	btnToday      = "📅 Сегодня"
	btnWeek       = "📆 Неделя"
	btnAll        = "📋 Все задачи"
	btnByDuration = "⏱ По длительности"
	btnSettings   = "⚙️ Настройки"
	btnBack       = "⬅️ Назад"
)

const (
	cbDonePrefix   = "done:"
	cbDeletePrefix = "delete:"
)

// categoryButtons maps the duration submenu labels to category codes.
var categoryButtons = map[string]model.Category{
	"≤ 5 минут":      model.CategoryShort5,
	"≤ 30 минут":     model.CategoryShort30,
	"≤ 2 часов":      model.CategoryShort120,
	"Сложные задачи": model.CategoryLong,
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnToday),
			tgbotapi.NewKeyboardButton(btnWeek),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAll),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnByDuration),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSettings),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func categoryKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("≤ 5 минут"),
			tgbotapi.NewKeyboardButton("≤ 30 минут"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("≤ 2 часов"),
			tgbotapi.NewKeyboardButton("Сложные задачи"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBack),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// taskInlineKeyboard attaches done/delete actions keyed by task id.
func taskInlineKeyboard(taskID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Выполнено", cbDonePrefix+formatTaskID(taskID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", cbDeletePrefix+formatTaskID(taskID)),
		),
	)
}
