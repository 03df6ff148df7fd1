package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/AhmadChX/notifybuddy/internal/models"
	"github.com/AhmadChX/notifybuddy/internal/service"
	"github.com/AhmadChX/notifybuddy/internal/timeutil"
)

// RemindHandler handles the /remind command
type RemindHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

func NewRemindHandler(svc *service.Service, logger *logrus.Logger) *RemindHandler {
	return &RemindHandler{svc: svc, logger: logger}
}

func (h *RemindHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) < 2 {
		msg := tgbotapi.NewMessage(message.Chat.ID, "Usage: /remind <time> <text>\nTime formats: 10m, 2h, 1d, 15:30, 2025-01-15 15:30")
		bot.Send(msg)
		return nil
	}

	remindAt, textStart, err := parseRemindTime(args)
	if err != nil {
		msg := tgbotapi.NewMessage(message.Chat.ID, "❌ Could not parse time. Formats: 10m, 2h, 1d, 15:30, 2025-01-15 15:30")
		bot.Send(msg)
		return nil
	}

	reminderText := strings.Join(args[textStart:], " ")
	if reminderText == "" {
		msg := tgbotapi.NewMessage(message.Chat.ID, "❌ Please provide reminder text")
		bot.Send(msg)
		return nil
	}

	reminder, err := h.svc.Create(context.Background(), reminderText, timeutil.Millis(remindAt))
	if err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}

	text := fmt.Sprintf("⏰ Reminder `%s` set for *%s*\n📝 %s",
		shortID(reminder.ID), timeutil.FormatMillis(reminder.ScheduledTime), reminder.Text)
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)
	return nil
}

func parseRemindTime(args []string) (time.Time, int, error) {
	now := time.Now()

	// Try relative time: 10m, 2h, 1d
	if len(args[0]) >= 2 {
		numStr := args[0][:len(args[0])-1]
		unit := args[0][len(args[0])-1:]
		if num, err := strconv.Atoi(numStr); err == nil {
			switch unit {
			case "m":
				return now.Add(time.Duration(num) * time.Minute), 1, nil
			case "h":
				return now.Add(time.Duration(num) * time.Hour), 1, nil
			case "d":
				return now.AddDate(0, 0, num), 1, nil
			}
		}
	}

	// Try absolute date+time: 2025-01-15 15:30
	if len(args) >= 2 {
		if t, err := time.ParseInLocation("2006-01-02 15:04", args[0]+" "+args[1], time.Local); err == nil {
			return t, 2, nil
		}
	}

	// Try time only: 15:30 (today or tomorrow)
	if t, err := time.Parse("15:04", args[0]); err == nil {
		remindAt := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, time.Local)
		if remindAt.Before(now) {
			remindAt = remindAt.AddDate(0, 0, 1)
		}
		return remindAt, 1, nil
	}

	return time.Time{}, 0, fmt.Errorf("could not parse time")
}

// RemindersListHandler handles the /reminders command
type RemindersListHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

func NewRemindersListHandler(svc *service.Service, logger *logrus.Logger) *RemindersListHandler {
	return &RemindersListHandler{svc: svc, logger: logger}
}

func (h *RemindersListHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	opts := service.ListOptions{Status: models.StatusActive, SortBy: "time"}
	if len(args) > 0 && args[0] == "all" {
		opts.Status = ""
	}

	reminders, err := h.svc.List(context.Background(), opts)
	if err != nil {
		return fmt.Errorf("list reminders: %w", err)
	}

	if len(reminders) == 0 {
		msg := tgbotapi.NewMessage(message.Chat.ID, "⏰ No reminders here. Set one with /remind")
		bot.Send(msg)
		return nil
	}

	var sb strings.Builder
	sb.WriteString("⏰ *Your Reminders:*\n\n")
	for _, r := range reminders {
		marker := ""
		switch {
		case r.Status == models.StatusCompleted:
			marker = " ✅"
		case r.Status == models.StatusDismissed:
			marker = " 🔕"
		case r.IsOverdue():
			marker = " ⚠️ overdue"
		}
		sb.WriteString(fmt.Sprintf("`%s`: %s\n   📆 %s%s\n",
			shortID(r.ID), r.Text, timeutil.FormatMillis(r.ScheduledTime), marker))
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, sb.String())
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)
	return nil
}

// shortID abbreviates a reminder id for chat display. Any unique prefix is
// accepted back by the management commands.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
