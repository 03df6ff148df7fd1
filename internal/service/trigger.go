package service

import (
	"context"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/AhmadChX/notifybuddy/internal/models"
	"github.com/AhmadChX/notifybuddy/internal/scheduler"
	"github.com/AhmadChX/notifybuddy/internal/timeutil"
)

// proximityWindowMillis is how far a record's scheduled time may sit from
// the time encoded in a fired key and still be treated as the same reminder.
// It tolerates clock rounding between registering a wakeup and its firing.
const proximityWindowMillis = 1000

// HandleTrigger processes one fired wakeup. It finds the owning record,
// shows the notification, and completes the reminder. Fires for foreign,
// stale, or already-handled reminders are dropped without side effects so
// duplicate and late wakeups stay idempotent.
func (s *Service) HandleTrigger(ctx context.Context, key string) {
	// Wakeups not named by us are someone else's business.
	if !strings.HasPrefix(key, scheduler.KeyPrefix) {
		return
	}

	id, firedAt, ok := scheduler.ParseTriggerKey(key)
	if !ok {
		s.logger.WithField("key", key).Error("Fired trigger key does not parse, ignoring")
		return
	}

	reminders, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load reminders for fired trigger")
		return
	}
	if len(reminders) == 0 {
		return
	}

	reminder := matchReminder(reminders, id, firedAt)
	if reminder == nil {
		s.logger.WithFields(logrus.Fields{
			"key": key,
			"id":  id,
		}).Warn("Fired trigger matches no stored reminder")
		return
	}
	if !reminder.IsActive() {
		// Late or duplicate fire for a reminder already handled.
		s.logger.WithFields(logrus.Fields{
			"id":     reminder.ID,
			"status": reminder.Status,
		}).Debug("Fired trigger for a non-active reminder, ignoring")
		return
	}

	s.display(ctx, reminder)

	if err := s.repo.SetStatus(ctx, reminder.ID, models.StatusCompleted); err != nil {
		s.logger.WithError(err).Errorf("Failed to complete reminder %s", reminder.ID)
		return
	}

	s.metrics.Fired.Inc()
	s.logger.Infof("Reminder %s fired and completed", reminder.ID)
}

// matchReminder looks the record up by exact id first. Failing that it falls
// back to scheduled-time proximity against the time encoded in the key.
// If two records sit within the window of the same fired time, the first in
// collection order wins; that ambiguity is inherited from the key format and
// deliberately not resolved here.
func matchReminder(reminders []*models.Reminder, id string, firedAt int64) *models.Reminder {
	for _, rec := range reminders {
		if rec.ID == id {
			return rec
		}
	}
	for _, rec := range reminders {
		delta := rec.ScheduledTime - firedAt
		if delta < 0 {
			delta = -delta
		}
		if delta < proximityWindowMillis {
			return rec
		}
	}
	return nil
}

// display shows the notification for a fired reminder. It tries a rich
// display first and falls back to a minimal one under a distinct id. Both
// failing is recorded but never propagated: completing the lifecycle only
// requires that a display was attempted.
func (s *Service) display(ctx context.Context, reminder *models.Reminder) {
	body := reminder.Text + "\n" + timeutil.FormatMillis(reminder.ScheduledTime)

	richErr := s.notifier.Show(ctx, reminder.ID, "⏰ Reminder", body)
	if richErr == nil {
		return
	}

	s.metrics.NotifyFallbacks.Inc()
	s.logger.WithError(richErr).Warnf("Rich notification failed for reminder %s, trying fallback", reminder.ID)

	fallbackErr := s.notifier.Show(ctx, "fallback-"+reminder.ID, "", reminder.Text)
	if fallbackErr == nil {
		return
	}

	s.metrics.NotifyFailures.Inc()
	displayErr := &models.DisplayError{
		Attempts: 2,
		Err:      multierror.Append(richErr, fallbackErr),
	}
	s.logger.WithError(displayErr).Errorf("All display attempts failed for reminder %s", reminder.ID)
}
