package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"taskmind/internal/interpreter"
	"taskmind/internal/model"
	"taskmind/internal/service"
)

var settingsPattern = regexp.MustCompile(`^[+-]?\d+\s\d{2}:\d{2}$`)

// Bot wires the Telegram front end to the task pipeline.
type Bot struct {
	api      *tgbotapi.BotAPI
	clock    *service.ClockService
	tasks    *service.TaskService
	edits    *service.EditService
	interp   interpreter.Interpreter
	settings service.SettingsStore
	logger   *zap.Logger
}

func New(token string, clock *service.ClockService, tasks *service.TaskService, edits *service.EditService, interp interpreter.Interpreter, settings service.SettingsStore, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	logger.Info("bot authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:      api,
		clock:    clock,
		tasks:    tasks,
		edits:    edits,
		interp:   interp,
		settings: settings,
		logger:   logger,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.logger.Error("handle callback", zap.Error(err))
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.logger.Error("handle message", zap.Error(err))
			}
		}
	}

	return nil
}

// Notify implements service.Notifier for the reminder loop.
func (b *Bot) Notify(userID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(userID, text))
	return err
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			return b.handleStart(msg)
		default:
			return b.sendText(msg.Chat.ID, "Команда не поддерживается. Просто напиши задачу текстом.")
		}
	}

	text := strings.TrimSpace(msg.Text)

	switch text {
	case btnToday:
		return b.handleToday(ctx, msg)
	case btnWeek:
		return b.handleWeek(ctx, msg)
	case btnAll:
		return b.handleAll(ctx, msg)
	case btnByDuration:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Выбери категорию:", categoryKeyboard())
	case btnBack:
		return b.sendText(msg.Chat.ID, "Главное меню")
	case btnSettings:
		return b.sendText(msg.Chat.ID, "Отправь настройки в формате:\nUTC_OFFSET HH:MM\n\nПример:\n+3 09:00")
	}

	if category, ok := categoryButtons[text]; ok {
		return b.handleByCategory(ctx, msg, category)
	}

	if settingsPattern.MatchString(text) {
		return b.handleSaveSettings(ctx, msg, text)
	}

	if msg.ReplyToMessage != nil {
		return b.handleEdit(ctx, msg)
	}

	return b.handleNewTask(ctx, msg)
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	text := "Привет! 👋 Я твой умный менеджер задач.\n\n" +
		"<b>Что я умею:</b>\n\n" +
		"🤖 <b>Понимаю свободный текст</b> — просто напиши «Купить хлеб в 18:00», и я сам создам задачу с датой.\n\n" +
		"🔔 <b>Напоминаю о делах</b> — пришлю список задач на день и напомню о любой задаче в удобное время.\n\n" +
		"⏳ <b>Сортирую по времени</b> — помогу найти быстрые пятиминутки или сложные дела.\n\n" +
		"📅 <b>Планирую</b> — покажу задачи на сегодня, неделю или всё сразу.\n\n" +
		"✏️ <b>Редактирую ответом</b> — чтобы изменить задачу, ответь на её сообщение и напиши, что поправить.\n\n" +
		"Настрой свой часовой пояс в ⚙️ Настройки, чтобы уведомления приходили вовремя!"
	return b.sendText(msg.Chat.ID, text)
}

// handleNewTask runs the create pipeline: resolve the user's local time,
// interpret the free text, materialize the items, confirm each task.
func (b *Bot) handleNewTask(ctx context.Context, msg *tgbotapi.Message) error {
	local, err := b.clock.Resolve(ctx, msg.From.ID)
	if errors.Is(err, service.ErrTimezoneNotConfigured) {
		return b.sendText(msg.Chat.ID, "Часовой пояс не найден, добавь его через ⚙️ Настройки.")
	}
	if err != nil {
		b.logger.Error("resolve local time", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		return b.sendText(msg.Chat.ID, "Что-то пошло не так, попробуй ещё раз.")
	}

	result, err := b.interp.Interpret(ctx, interpreter.Request{
		Instruction: msg.Text,
		Reference:   local.Reference(),
		Mode:        interpreter.ModeCreate,
	})
	if errors.Is(err, interpreter.ErrInstructionTooLong) {
		return b.sendText(msg.Chat.ID, "Слишком длинный текст, сократи до 500 символов.")
	}
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не получилось разобрать задачу: %s", escape(err.Error())))
	}

	if result.Kind == interpreter.KindChat {
		return b.sendText(msg.Chat.ID, result.Message)
	}

	tasks, err := b.tasks.Materialize(ctx, msg.From.ID, msg.Text, result.Items)
	for i := range tasks {
		b.sendTaskCard(ctx, msg.Chat.ID, &tasks[i], "✅ <b>Задача добавлена!</b>")
	}
	if err != nil {
		return b.sendText(msg.Chat.ID, "Не удалось сохранить задачу, попробуй ещё раз.")
	}
	return nil
}

// handleEdit routes a reply-to-bot-message into the edit pipeline.
func (b *Bot) handleEdit(ctx context.Context, msg *tgbotapi.Message) error {
	local, err := b.clock.Resolve(ctx, msg.From.ID)
	if errors.Is(err, service.ErrTimezoneNotConfigured) {
		return b.sendText(msg.Chat.ID, "Часовой пояс не найден, добавь его через ⚙️ Настройки.")
	}
	if err != nil {
		b.logger.Error("resolve local time", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		return b.sendText(msg.Chat.ID, "Что-то пошло не так, попробуй ещё раз.")
	}

	result, err := b.edits.Edit(ctx, msg.From.ID, msg.ReplyToMessage.MessageID, msg.Text, local.Reference())
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return b.sendText(msg.Chat.ID, "Не удалось найти задачу для редактирования.")
	case errors.Is(err, interpreter.ErrInstructionTooLong):
		return b.sendText(msg.Chat.ID, "Слишком длинный текст, сократи до 500 символов.")
	case err != nil:
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не получилось обновить задачу: %s", escape(err.Error())))
	}

	if result.ChatMessage != "" {
		return b.sendText(msg.Chat.ID, result.ChatMessage)
	}

	for i := range result.Tasks {
		b.sendTaskCard(ctx, msg.Chat.ID, &result.Tasks[i], "✅ <b>Задача обновлена!</b>")
	}
	return nil
}

func (b *Bot) handleToday(ctx context.Context, msg *tgbotapi.Message) error {
	local := b.clock.ResolveOrUTC(ctx, msg.From.ID)
	tasks, err := b.tasks.ListToday(ctx, msg.From.ID, local.Day())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Не удалось получить задачи, попробуй позже.")
	}
	if len(tasks) == 0 {
		return b.sendText(msg.Chat.ID, "Сегодня задач нет 🎉")
	}
	return b.sendTaskLines(msg.Chat.ID, tasks, false)
}

func (b *Bot) handleWeek(ctx context.Context, msg *tgbotapi.Message) error {
	local := b.clock.ResolveOrUTC(ctx, msg.From.ID)
	tasks, err := b.tasks.ListWeek(ctx, msg.From.ID, local.Day())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Не удалось получить задачи, попробуй позже.")
	}
	if len(tasks) == 0 {
		return b.sendText(msg.Chat.ID, "На неделю задач нет 🎉")
	}
	return b.sendTaskLines(msg.Chat.ID, tasks, true)
}

func (b *Bot) handleAll(ctx context.Context, msg *tgbotapi.Message) error {
	tasks, err := b.tasks.ListAll(ctx, msg.From.ID)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Не удалось получить задачи, попробуй позже.")
	}
	if len(tasks) == 0 {
		return b.sendText(msg.Chat.ID, "Задач нет")
	}
	return b.sendTaskLines(msg.Chat.ID, tasks, true)
}

func (b *Bot) handleByCategory(ctx context.Context, msg *tgbotapi.Message, category model.Category) error {
	tasks, err := b.tasks.ListByCategory(ctx, msg.From.ID, category)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Не удалось получить задачи, попробуй позже.")
	}
	if len(tasks) == 0 {
		return b.sendText(msg.Chat.ID, "Задач нет")
	}
	return b.sendTaskLines(msg.Chat.ID, tasks, true)
}

func (b *Bot) handleSaveSettings(ctx context.Context, msg *tgbotapi.Message, text string) error {
	offset, hour, minute, err := parseSettingsInput(text)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Не понял настройки. Формат: +3 09:00")
	}
	if err := b.settings.Upsert(ctx, msg.From.ID, offset, hour, minute); err != nil {
		b.logger.Error("save settings", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		return b.sendText(msg.Chat.ID, "Не удалось сохранить настройки, попробуй ещё раз.")
	}
	b.logger.Info("settings saved",
		zap.Int64("user_id", msg.From.ID),
		zap.Int("utc_offset", offset))
	return b.sendText(msg.Chat.ID, "Настройки сохранены ✅")
}

// parseSettingsInput parses "±N HH:MM" into offset hours and digest time.
func parseSettingsInput(text string) (offset, hour, minute int, err error) {
	parts := strings.Fields(text)
	if len(parts) != 2 {
		return 0, 0, 0, fmt.Errorf("expected two fields in %q", text)
	}

	offset, err = strconv.Atoi(strings.TrimPrefix(parts[0], "+"))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid offset in %q", text)
	}
	if offset < -12 || offset > 14 {
		return 0, 0, 0, fmt.Errorf("offset %d out of range", offset)
	}

	parsed, err := time.Parse("15:04", parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid time in %q", text)
	}
	return offset, parsed.Hour(), parsed.Minute(), nil
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Error("callback ack", zap.Error(err))
	}

	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbDonePrefix):
		taskID, err := parseTaskID(data, cbDonePrefix)
		if err != nil {
			return nil
		}
		done, err := b.tasks.Complete(ctx, taskID, cb.From.ID)
		if err != nil {
			b.logger.Error("complete task", zap.Uint("task_id", taskID), zap.Error(err))
			return nil
		}
		if done {
			edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, "✅ Выполнено")
			if _, err := b.api.Send(edit); err != nil {
				return err
			}
		}
		return nil
	case strings.HasPrefix(data, cbDeletePrefix):
		taskID, err := parseTaskID(data, cbDeletePrefix)
		if err != nil {
			return nil
		}
		deleted, err := b.tasks.Delete(ctx, taskID, cb.From.ID)
		if err != nil {
			b.logger.Error("delete task", zap.Uint("task_id", taskID), zap.Error(err))
			return nil
		}
		if deleted {
			del := tgbotapi.NewDeleteMessage(cb.Message.Chat.ID, cb.Message.MessageID)
			if _, err := b.api.Request(del); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

func parseTaskID(data, prefix string) (uint, error) {
	raw := strings.TrimPrefix(data, prefix)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

// sendTaskCard sends the confirmation card and remembers its message id so
// a later reply to that message resolves back to the task.
func (b *Bot) sendTaskCard(ctx context.Context, chatID int64, task *model.Task, header string) {
	msg := tgbotapi.NewMessage(chatID, formatTaskCard(task, header))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = taskInlineKeyboard(task.ID)
	sent, err := b.api.Send(msg)
	if err != nil {
		b.logger.Error("send task card",
			zap.Int64("chat_id", chatID),
			zap.Uint("task_id", task.ID),
			zap.Error(err))
		return
	}
	if err := b.tasks.RememberMessage(ctx, task.ID, task.UserID, sent.MessageID); err != nil {
		b.logger.Error("remember message id",
			zap.Uint("task_id", task.ID),
			zap.Error(err))
	}
}

// sendTaskLines sends one short message per task with its inline actions.
func (b *Bot) sendTaskLines(chatID int64, tasks []model.Task, withDate bool) error {
	for i := range tasks {
		msg := tgbotapi.NewMessage(chatID, formatTaskLine(&tasks[i], withDate))
		msg.ReplyMarkup = taskInlineKeyboard(tasks[i].ID)
		if _, err := b.api.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}
