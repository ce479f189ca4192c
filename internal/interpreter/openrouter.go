package interpreter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemPrompt = `Ты помощник, который превращает свободный текст пользователя в задачи.
Всегда отвечай ТОЛЬКО JSON-объектом без пояснений.
Если текст не похож на задачу или требует уточнения, отвечай: {"type": "chat", "message": "твой ответ"}.
Иначе отвечай: {"type": "tasks", "items": [{"category": "...", "date": "ГГГГ-ММ-ДД", "time": "ЧЧ:ММ", "remind_date": "ГГГГ-ММ-ДД", "remind_time": "ЧЧ:ММ", "task": "краткое описание"}]}.
Поля date, time, remind_date и remind_time опциональны: опускай их, если в тексте нет даты или времени.
Относительные даты («завтра», «в понедельник», «после обеда») вычисляй от даты и времени в сообщении пользователя.
Если в тексте несколько задач, верни несколько элементов items в исходном порядке.
Допустимые значения category: "short_5", "short_30", "short_120", "long".
- short_5: очень простые задачи на несколько минут.
- short_30: задачи примерно до 30 минут.
- short_120: задачи от 30 минут до 2 часов.
- long: сложные или долгие задачи больше 2 часов.`

// Config holds the OpenRouter connection settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Client talks to an OpenAI-compatible endpoint (OpenRouter by default).
type Client struct {
	client *openai.Client
	cfg    Config
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		logger: logger,
	}
}

// Interpret sends one chat completion and decodes the structured reply.
func (c *Client) Interpret(ctx context.Context, req Request) (Result, error) {
	if utf8.RuneCountInString(req.Instruction) > MaxInstructionLen {
		return Result{}, ErrInstructionTooLong
	}

	requestID := uuid.NewString()
	c.logger.Info("interpreter call",
		zap.String("request_id", requestID),
		zap.String("reference", req.Reference),
		zap.Bool("edit", req.Mode == ModeEdit))

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.cfg.Model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(req)},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			MaxTokens:   c.cfg.MaxTokens,
			Temperature: float32(c.cfg.Temperature),
		},
	)
	if err != nil {
		c.logger.Error("interpreter call failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		return Result{}, fmt.Errorf("interpreter call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("interpreter returned no choices")
	}

	result, err := decodeResponse(resp.Choices[0].Message.Content)
	if err != nil {
		c.logger.Error("interpreter response rejected",
			zap.String("request_id", requestID),
			zap.String("response", resp.Choices[0].Message.Content),
			zap.Error(err))
		return Result{}, err
	}
	return result, nil
}

func buildUserPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "сегодня %s, %s", req.Reference, req.Instruction)

	if req.Mode == ModeEdit && req.Prior != nil {
		b.WriteString("\n\nПользователь редактирует существующую задачу. Её текущее состояние:")
		fmt.Fprintf(&b, "\ntask: %q", req.Prior.Description)
		fmt.Fprintf(&b, "\ncategory: %s", req.Prior.Category)
		if req.Prior.Date != "" {
			fmt.Fprintf(&b, "\ndate: %s", req.Prior.Date)
		}
		if req.Prior.Time != "" {
			fmt.Fprintf(&b, "\ntime: %s", req.Prior.Time)
		}
		if req.Prior.RemindDate != "" {
			fmt.Fprintf(&b, "\nremind_date: %s", req.Prior.RemindDate)
		}
		if req.Prior.RemindTime != "" {
			fmt.Fprintf(&b, "\nremind_time: %s", req.Prior.RemindTime)
		}
		b.WriteString("\nИзмени только то, о чём просит пользователь, остальные поля сохрани как есть.")
	}

	return b.String()
}

// decodeResponse parses the model output into one of the two result kinds.
// Anything else is a malformed response and comes back as an error.
func decodeResponse(raw string) (Result, error) {
	var payload struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		Items   []Item `json:"items"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err != nil {
		return Result{}, fmt.Errorf("malformed interpreter response: %w", err)
	}

	switch {
	case payload.Type == "chat":
		return Result{Kind: KindChat, Message: payload.Message}, nil
	case len(payload.Items) > 0:
		return Result{Kind: KindTasks, Items: payload.Items}, nil
	default:
		return Result{}, fmt.Errorf("interpreter response carries neither a chat message nor task items")
	}
}
