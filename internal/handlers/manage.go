package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/AhmadChX/notifybuddy/internal/models"
	"github.com/AhmadChX/notifybuddy/internal/service"
	"github.com/AhmadChX/notifybuddy/internal/timeutil"
)

// resolveID expands an id prefix typed in chat to the full reminder id.
func resolveID(ctx context.Context, svc *service.Service, prefix string) (string, error) {
	reminders, err := svc.List(ctx, service.ListOptions{})
	if err != nil {
		return "", fmt.Errorf("resolve id: %w", err)
	}

	var match string
	for _, r := range reminders {
		if !strings.HasPrefix(r.ID, prefix) {
			continue
		}
		if match != "" {
			return "", &models.ValidationError{Field: "id", Reason: fmt.Sprintf("id %q is ambiguous, give more characters", prefix)}
		}
		match = r.ID
	}
	if match == "" {
		return "", models.ErrNotFound
	}
	return match, nil
}

// DismissHandler handles the /dismiss command
type DismissHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

func NewDismissHandler(svc *service.Service, logger *logrus.Logger) *DismissHandler {
	return &DismissHandler{svc: svc, logger: logger}
}

func (h *DismissHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		msg := tgbotapi.NewMessage(message.Chat.ID, "Usage: /dismiss <id>")
		bot.Send(msg)
		return nil
	}

	ctx := context.Background()
	id, err := resolveID(ctx, h.svc, args[0])
	if err != nil {
		return err
	}

	if err := h.svc.Dismiss(ctx, id); err != nil {
		return fmt.Errorf("dismiss reminder: %w", err)
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("🔕 Reminder %s dismissed. /undo within 5 seconds to restore it.", shortID(id)))
	bot.Send(msg)
	return nil
}

// UndoHandler handles the /undo command
type UndoHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

func NewUndoHandler(svc *service.Service, logger *logrus.Logger) *UndoHandler {
	return &UndoHandler{svc: svc, logger: logger}
}

func (h *UndoHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	restored, err := h.svc.Undo(context.Background())
	if err != nil {
		return fmt.Errorf("undo dismiss: %w", err)
	}

	text := fmt.Sprintf("↩️ Reminder %s restored", shortID(restored.ID))
	if timeutil.IsFuture(restored.ScheduledTime) {
		text += fmt.Sprintf(", will fire at %s", timeutil.FormatMillis(restored.ScheduledTime))
	} else {
		text += " (its time has already passed)"
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	bot.Send(msg)
	return nil
}

// DeleteHandler handles the /delremind command
type DeleteHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

func NewDeleteHandler(svc *service.Service, logger *logrus.Logger) *DeleteHandler {
	return &DeleteHandler{svc: svc, logger: logger}
}

func (h *DeleteHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		msg := tgbotapi.NewMessage(message.Chat.ID, "Usage: /delremind <id>")
		bot.Send(msg)
		return nil
	}

	ctx := context.Background()
	id, err := resolveID(ctx, h.svc, args[0])
	if err != nil {
		return err
	}

	if err := h.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("🗑 Reminder %s deleted", shortID(id)))
	bot.Send(msg)
	return nil
}
