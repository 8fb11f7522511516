package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samgozman/morning-thread/pkg/errlvl"
)

// sender is the part of tgbotapi.BotAPI used to deliver messages.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramPublisher delivers reports and replies to Telegram chats.
type TelegramPublisher struct {
	BotAPI *tgbotapi.BotAPI // nil when the publisher was built around a custom sender
	api    sender
	logger *slog.Logger
}

// NewTelegramPublisher connects to the Bot API, retrying with exponential backoff.
// An unauthorized token stops the retries immediately.
func NewTelegramPublisher(token string) (*TelegramPublisher, error) {
	bf := backoff.NewExponentialBackOff()
	bf.InitialInterval = 2 * time.Second
	bf.MaxInterval = 15 * time.Second
	bf.MaxElapsedTime = 60 * time.Second

	bot, err := backoff.RetryWithData[*tgbotapi.BotAPI](func() (*tgbotapi.BotAPI, error) {
		b, err := tgbotapi.NewBotAPI(token)
		if err != nil {
			var tgErr *tgbotapi.Error
			if errors.As(err, &tgErr) && (tgErr.Code == http.StatusUnauthorized || tgErr.Code == http.StatusNotFound) {
				return nil, backoff.Permanent(err)
			}
			slog.Default().Warn("[publisher.NewTelegramPublisher] Telegram Bot API is not reachable yet", "error", err)
			return nil, err
		}
		return b, nil
	}, bf)
	if err != nil {
		return nil, newError(errlvl.FATAL, errConnect, err)
	}

	p := NewPublisher(bot)
	p.BotAPI = bot
	return p, nil
}

// NewPublisher creates a publisher around any message sender.
func NewPublisher(api sender) *TelegramPublisher {
	return &TelegramPublisher{
		api:    api,
		logger: slog.Default(),
	}
}

// Publish sends the text to the chat, split into as many messages as needed.
// It returns the ids of the delivered messages.
func (t *TelegramPublisher) Publish(ctx context.Context, chatID int64, text string) ([]int, error) {
	parts := SplitMessage(text)
	if len(parts) == 0 {
		return nil, newError(errlvl.ERROR, errSendMessage, errEmptyText)
	}

	ids := make([]int, 0, len(parts))
	for i, part := range parts {
		if err := ctx.Err(); err != nil {
			return ids, newError(errlvl.WARN, errSendMessage, err)
		}

		msg, err := t.api.Send(tgbotapi.NewMessage(chatID, part))
		if err != nil {
			return ids, newError(errlvl.ERROR, errSendMessage, fmt.Errorf("chat %d part %d/%d: %w", chatID, i+1, len(parts), err))
		}
		ids = append(ids, msg.MessageID)
	}

	t.logger.Debug("[TelegramPublisher.Publish]", "chat_id", chatID, "messages", len(ids))
	return ids, nil
}

// Reply sends a single message with an optional reply markup (keyboard).
func (t *TelegramPublisher) Reply(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := t.api.Send(msg); err != nil {
		return newError(errlvl.ERROR, errSendMessage, fmt.Errorf("chat %d: %w", chatID, err))
	}
	return nil
}
