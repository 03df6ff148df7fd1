package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// TelegramNotifier shows notifications by sending messages to a fixed chat.
// A non-empty title is rendered as a bold markdown heading; an empty title
// requests the minimal plain-text display used by the fallback path.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *logrus.Logger
}

// NewTelegramNotifier creates a notifier that posts to the given chat.
func NewTelegramNotifier(api *tgbotapi.BotAPI, chatID int64, logger *logrus.Logger) *TelegramNotifier {
	return &TelegramNotifier{api: api, chatID: chatID, logger: logger}
}

// Show sends one notification message. The id identifies the display attempt
// in logs; Telegram itself has no notion of notification identity.
func (n *TelegramNotifier) Show(ctx context.Context, id, title, body string) error {
	var msg tgbotapi.MessageConfig
	if title != "" {
		msg = tgbotapi.NewMessage(n.chatID, fmt.Sprintf("*%s*\n%s", title, body))
		msg.ParseMode = tgbotapi.ModeMarkdown
	} else {
		msg = tgbotapi.NewMessage(n.chatID, body)
	}

	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send notification %s: %w", id, err)
	}

	n.logger.WithField("notification_id", id).Debug("Notification sent")
	return nil
}
