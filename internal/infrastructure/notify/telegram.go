package notify

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type TelegramConfig struct {
	BotToken string
	ChatID   string // numeric chat id, or @channel username
}

// Telegram delivers alerts through a Telegram bot. A notifier built without
// credentials is disabled and drops every message with a warning.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID string
	logger *zap.Logger
}

func NewTelegram(cfg TelegramConfig, logger *zap.Logger) *Telegram {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Telegram{chatID: cfg.ChatID, logger: logger}
	if cfg.BotToken == "" || cfg.ChatID == "" {
		logger.Warn("Missing Telegram credentials, notifications will be disabled")
		return t
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Error("Failed to initialize Telegram bot", zap.Error(err))
		return t
	}
	logger.Info("Telegram bot initialized", zap.String("username", bot.Self.UserName))
	t.bot = bot
	return t
}

func (t *Telegram) Enabled() bool { return t.bot != nil }

func (t *Telegram) Send(ctx context.Context, message string) error {
	if t.bot == nil {
		t.logger.Warn("Telegram notifications are disabled")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := t.bot.Send(buildMessage(t.chatID, message)); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	t.logger.Debug("Telegram message sent", zap.String("chat", t.chatID))
	return nil
}

// buildMessage addresses numeric ids as chats and anything else as a
// channel username.
func buildMessage(chatID, text string) tgbotapi.MessageConfig {
	var msg tgbotapi.MessageConfig
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		msg = tgbotapi.NewMessage(id, text)
	} else {
		msg = tgbotapi.NewMessageToChannel(chatID, text)
	}
	msg.ParseMode = tgbotapi.ModeHTML
	return msg
}
