package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// StartHandler handles the /start command
type StartHandler struct {
	logger *logrus.Logger
}

func NewStartHandler(logger *logrus.Logger) *StartHandler {
	return &StartHandler{logger: logger}
}

func (h *StartHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	text := "👋 Hi! I'm NotifyBuddy.\n\n" +
		"Tell me what to remind you about and when, and I'll ping you at the right moment.\n\n" +
		"Quick start:\n" +
		"/remind 10m Check the oven\n" +
		"/reminders — see what's scheduled\n" +
		"/help — all commands"

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	bot.Send(msg)
	return nil
}
