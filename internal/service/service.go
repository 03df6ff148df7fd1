package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AhmadChX/notifybuddy/internal/metrics"
	"github.com/AhmadChX/notifybuddy/internal/models"
	"github.com/AhmadChX/notifybuddy/internal/repository"
	"github.com/AhmadChX/notifybuddy/internal/timeutil"
)

// defaultUndoWindow bounds how long a dismissed reminder can be restored.
const defaultUndoWindow = 5 * time.Second

// TriggerScheduler is the one-shot timed-wakeup service the coordinator
// schedules reminders on.
type TriggerScheduler interface {
	Schedule(reminder *models.Reminder) error
	Cancel(id string, scheduledTime int64)
}

// Notifier is the notification display service. An empty title requests the
// minimal fallback rendering.
type Notifier interface {
	Show(ctx context.Context, id, title, body string) error
}

// Service is the lifecycle coordinator. It owns the transition rules of the
// reminder state machine and keeps the persisted collection and the trigger
// registrations consistent with each other.
type Service struct {
	repo      repository.ReminderRepository
	scheduler TriggerScheduler
	notifier  Notifier
	metrics   *metrics.Metrics
	logger    *logrus.Logger

	undoWindow time.Duration

	mu          sync.Mutex
	pendingUndo *models.Reminder
	undoTimer   *time.Timer
}

// New creates a new Service with all required dependencies.
func New(repo repository.ReminderRepository, scheduler TriggerScheduler, notifier Notifier, m *metrics.Metrics, logger *logrus.Logger) *Service {
	return &Service{
		repo:       repo,
		scheduler:  scheduler,
		notifier:   notifier,
		metrics:    m,
		logger:     logger,
		undoWindow: defaultUndoWindow,
	}
}

// SetUndoWindow overrides the undo window. Intended for tests.
func (s *Service) SetUndoWindow(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undoWindow = d
}

// Create persists a new active reminder and registers its trigger.
func (s *Service) Create(ctx context.Context, text string, scheduledTime int64) (*models.Reminder, error) {
	reminder := models.NewReminder(text, scheduledTime)

	if err := s.repo.Save(ctx, reminder); err != nil {
		return nil, err
	}
	if err := s.scheduler.Schedule(reminder); err != nil {
		// Keep the store and the trigger registry consistent: a reminder
		// that cannot get a trigger is not created.
		if rmErr := s.repo.Remove(ctx, reminder.ID); rmErr != nil {
			s.logger.WithError(rmErr).Errorf("Failed to roll back reminder %s after scheduling error", reminder.ID)
		}
		return nil, err
	}

	s.metrics.Created.Inc()
	s.logger.Infof("Created reminder %s scheduled for %s", reminder.ID, timeutil.FormatMillis(reminder.ScheduledTime))
	return reminder, nil
}

// Edit updates the text and scheduled time of an active reminder, replacing
// its trigger with one for the new time.
func (s *Service) Edit(ctx context.Context, id, text string, scheduledTime int64) (*models.Reminder, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, models.ErrNotFound
	}
	if !current.IsActive() {
		return nil, &models.ValidationError{Field: "status", Reason: "only active reminders can be edited"}
	}

	updated := current.Clone()
	updated.Text = text
	updated.ScheduledTime = scheduledTime
	updated.Normalize()
	// Validate before touching the old trigger so a rejected edit leaves
	// the reminder exactly as it was.
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	s.scheduler.Cancel(current.ID, current.ScheduledTime)

	if err := s.repo.Save(ctx, updated); err != nil {
		return nil, err
	}
	if err := s.scheduler.Schedule(updated); err != nil {
		return nil, err
	}

	s.metrics.Edited.Inc()
	s.logger.Infof("Edited reminder %s, now scheduled for %s", updated.ID, timeutil.FormatMillis(updated.ScheduledTime))
	return updated, nil
}

// Dismiss cancels an active reminder's trigger, marks it dismissed, and
// remembers it for undo within the undo window.
func (s *Service) Dismiss(ctx context.Context, id string) error {
	reminder, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if reminder == nil {
		return models.ErrNotFound
	}
	if !reminder.IsActive() {
		return &models.ValidationError{Field: "status", Reason: "only active reminders can be dismissed"}
	}

	s.scheduler.Cancel(reminder.ID, reminder.ScheduledTime)
	if err := s.repo.SetStatus(ctx, id, models.StatusDismissed); err != nil {
		return err
	}

	s.rememberForUndo(reminder)

	s.metrics.Dismissed.Inc()
	s.logger.Infof("Dismissed reminder %s", id)
	return nil
}

// Undo restores the most recently dismissed reminder to active. The trigger
// is re-registered only when the original scheduled time is still future.
func (s *Service) Undo(ctx context.Context) (*models.Reminder, error) {
	s.mu.Lock()
	reminder := s.pendingUndo
	s.pendingUndo = nil
	if s.undoTimer != nil {
		s.undoTimer.Stop()
		s.undoTimer = nil
	}
	s.mu.Unlock()

	if reminder == nil {
		return nil, models.ErrNothingToUndo
	}

	if err := s.repo.SetStatus(ctx, reminder.ID, models.StatusActive); err != nil {
		return nil, err
	}
	restored := reminder.Clone()
	restored.Status = models.StatusActive

	if timeutil.IsFuture(restored.ScheduledTime) {
		if err := s.scheduler.Schedule(restored); err != nil {
			return nil, err
		}
	} else {
		s.logger.Infof("Reminder %s restored past its scheduled time, no trigger registered", restored.ID)
	}

	s.metrics.Undone.Inc()
	s.logger.Infof("Undo restored reminder %s", restored.ID)
	return restored, nil
}

// Delete removes a reminder in any state and cancels its trigger.
func (s *Service) Delete(ctx context.Context, id string) error {
	reminder, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if reminder == nil {
		return models.ErrNotFound
	}

	s.scheduler.Cancel(reminder.ID, reminder.ScheduledTime)
	if err := s.repo.Remove(ctx, id); err != nil {
		return err
	}

	// A deleted reminder must not come back through undo.
	s.mu.Lock()
	if s.pendingUndo != nil && s.pendingUndo.ID == id {
		s.pendingUndo = nil
		if s.undoTimer != nil {
			s.undoTimer.Stop()
			s.undoTimer = nil
		}
	}
	s.mu.Unlock()

	s.metrics.Deleted.Inc()
	s.logger.Infof("Deleted reminder %s", id)
	return nil
}

// Get returns one reminder, or models.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*models.Reminder, error) {
	reminder, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reminder == nil {
		return nil, models.ErrNotFound
	}
	return reminder, nil
}

// ListOptions filters and orders a listing of the collection.
type ListOptions struct {
	// Status keeps only records in the given state when non-empty.
	Status models.ReminderStatus
	// Query keeps only records whose text contains it, case-insensitively.
	Query string
	// SortBy is one of "time" (default), "created", "text".
	SortBy string
	// Desc reverses the sort order.
	Desc bool
}

// List returns the collection filtered and sorted per opts.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]*models.Reminder, error) {
	reminders, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}

	filtered := make([]*models.Reminder, 0, len(reminders))
	query := strings.ToLower(strings.TrimSpace(opts.Query))
	for _, rec := range reminders {
		if opts.Status != "" && rec.Status != opts.Status {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(rec.Text), query) {
			continue
		}
		filtered = append(filtered, rec)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		var less bool
		switch opts.SortBy {
		case "created":
			less = filtered[i].CreatedAt < filtered[j].CreatedAt
		case "text":
			less = strings.ToLower(filtered[i].Text) < strings.ToLower(filtered[j].Text)
		default:
			less = filtered[i].ScheduledTime < filtered[j].ScheduledTime
		}
		if opts.Desc {
			return !less
		}
		return less
	})

	return filtered, nil
}

// RestoreTriggers re-registers triggers for active future reminders. It runs
// at startup so the trigger registry matches the persisted collection.
// Active reminders whose time passed while the process was down are left
// without a trigger; they show up as overdue in listings.
func (s *Service) RestoreTriggers(ctx context.Context) error {
	reminders, err := s.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore triggers: %w", err)
	}

	restored := 0
	for _, rec := range reminders {
		if !rec.IsActive() {
			continue
		}
		if !timeutil.IsFuture(rec.ScheduledTime) {
			s.logger.Warnf("Reminder %s was due at %s while not running, leaving it overdue",
				rec.ID, timeutil.FormatMillis(rec.ScheduledTime))
			continue
		}
		if err := s.scheduler.Schedule(rec); err != nil {
			s.logger.WithError(err).Errorf("Failed to restore trigger for reminder %s", rec.ID)
			continue
		}
		restored++
	}

	s.logger.Infof("Restored %d trigger(s) for active reminders", restored)
	return nil
}

// rememberForUndo replaces any pending undo candidate with the given record
// and arms the window timer. Only the most recent dismissal is restorable.
func (s *Service) rememberForUndo(reminder *models.Reminder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.undoTimer != nil {
		s.undoTimer.Stop()
	}

	remembered := reminder.Clone()
	remembered.Status = models.StatusDismissed
	s.pendingUndo = remembered

	s.undoTimer = time.AfterFunc(s.undoWindow, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.pendingUndo != nil && s.pendingUndo.ID == remembered.ID {
			s.pendingUndo = nil
			s.undoTimer = nil
		}
	})
}
