package telegram

import (
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/AhmadChX/notifybuddy/internal/models"
)

// Router handles message routing and command parsing
type Router struct {
	logger   *logrus.Logger
	handlers map[string]CommandHandler
}

// CommandHandler defines the interface for command handlers
type CommandHandler interface {
	Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error
}

// NewRouter creates a new message router
func NewRouter(logger *logrus.Logger) *Router {
	return &Router{
		logger:   logger,
		handlers: make(map[string]CommandHandler),
	}
}

// RegisterCommand registers a command handler
func (r *Router) RegisterCommand(command string, handler CommandHandler) {
	r.handlers[command] = handler
	r.logger.Debugf("Registered command: %s", command)
}

// HandleMessage handles incoming messages
func (r *Router) HandleMessage(bot *tgbotapi.BotAPI, message *tgbotapi.Message) {
	r.logger.WithFields(logrus.Fields{
		"chat_id":    message.Chat.ID,
		"user_id":    message.From.ID,
		"message_id": message.MessageID,
		"text":       message.Text,
	}).Info("Received message")

	if message.Text == "" || !message.IsCommand() {
		return
	}

	command := message.Command()
	args := strings.Fields(message.CommandArguments())

	handler, exists := r.handlers[command]
	if !exists {
		unknownMsg := tgbotapi.NewMessage(message.Chat.ID, "❓ Unknown command. Use /help to see available commands.")
		bot.Send(unknownMsg)
		return
	}

	if err := handler.Handle(bot, message, args); err != nil {
		r.logger.WithFields(logrus.Fields{
			"command": command,
			"chat_id": message.Chat.ID,
			"error":   err,
		}).Error("Command handler failed")

		bot.Send(tgbotapi.NewMessage(message.Chat.ID, userMessage(err)))
	}
}

// userMessage maps lifecycle errors to a short user-facing text. Unexpected
// errors get a generic message so internals do not leak into the chat.
func userMessage(err error) string {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		return "❌ " + validationErr.Reason
	}
	var schedulingErr *models.SchedulingError
	if errors.As(err, &schedulingErr) {
		return "❌ " + schedulingErr.Reason
	}
	if errors.Is(err, models.ErrNotFound) {
		return "❌ Reminder not found"
	}
	if errors.Is(err, models.ErrNothingToUndo) {
		return "❌ Nothing to undo"
	}
	return "❌ An error occurred while processing your command. Please try again."
}
