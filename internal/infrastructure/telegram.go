package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"leadflow/internal/interfaces"
)

// TelegramClient sends outreach messages to leads over Telegram and pushes
// operator notifications to a fixed chat. One bot serves both roles.
type TelegramClient struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger
}

var (
	_ interfaces.Messenger = (*TelegramClient)(nil)
	_ interfaces.Notifier  = (*TelegramClient)(nil)
)

// NewTelegramClient authenticates the bot against the Telegram API. chatID
// is the operator chat for Notify; zero disables notifications.
func NewTelegramClient(token string, chatID int64, log *slog.Logger) (*TelegramClient, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	log.Info("telegram bot connected", "username", bot.Self.UserName)
	return &TelegramClient{
		bot:    bot,
		chatID: chatID,
		log:    log.With("component", "telegram"),
	}, nil
}

// SendText delivers content to a lead. to is a numeric chat ID or an
// @channel username; tgbotapi carries no context so ctx is only checked
// up front.
func (t *TelegramClient) SendText(ctx context.Context, to, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var msg tgbotapi.MessageConfig
	if chatID, err := strconv.ParseInt(to, 10, 64); err == nil {
		msg = tgbotapi.NewMessage(chatID, content)
	} else {
		msg = tgbotapi.NewMessageToChannel(to, content)
	}
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send to %s: %w", to, err)
	}
	return nil
}

// Notify posts text to the configured operator chat.
func (t *TelegramClient) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.chatID == 0 {
		return errors.New("telegram: notification chat not configured")
	}
	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		return fmt.Errorf("telegram notify: %w", err)
	}
	return nil
}
