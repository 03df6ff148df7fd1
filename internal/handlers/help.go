package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// HelpHandler handles the /help command
type HelpHandler struct {
	logger *logrus.Logger
}

func NewHelpHandler(logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{logger: logger}
}

func (h *HelpHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	text := "*NotifyBuddy commands*\n\n" +
		"/remind <time> <text> — schedule a reminder\n" +
		"   Time formats: 10m, 2h, 1d, 15:30, 2025-01-15 15:30\n" +
		"/reminders — list active reminders\n" +
		"/reminders all — list everything, including done and dismissed\n" +
		"/dismiss <id> — dismiss a reminder (undoable for 5 seconds)\n" +
		"/undo — restore the last dismissed reminder\n" +
		"/delremind <id> — delete a reminder for good\n\n" +
		"Ids can be abbreviated to any unique prefix."

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)
	return nil
}
