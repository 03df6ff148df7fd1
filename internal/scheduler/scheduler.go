package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/AhmadChX/notifybuddy/internal/models"
	"github.com/AhmadChX/notifybuddy/internal/timeutil"
)

// KeyPrefix marks trigger keys owned by this application. Wakeups whose key
// does not carry the prefix belong to someone else and must be ignored.
const KeyPrefix = "reminder-"

// TriggerKey derives the trigger identifier for a reminder. The id and the
// scheduled time are both recoverable from the key via ParseTriggerKey.
func TriggerKey(id string, scheduledTime int64) string {
	return fmt.Sprintf("%s%s-%d", KeyPrefix, id, scheduledTime)
}

// ParseTriggerKey splits a trigger key back into reminder id and scheduled
// time. The id itself may contain hyphens, so the time suffix is isolated by
// the last hyphen, not the first. Malformed keys return ok == false.
func ParseTriggerKey(key string) (id string, scheduledTime int64, ok bool) {
	if !strings.HasPrefix(key, KeyPrefix) {
		return "", 0, false
	}
	rest := key[len(KeyPrefix):]

	cut := strings.LastIndex(rest, "-")
	if cut < 0 {
		return "", 0, false
	}

	ts, err := strconv.ParseInt(rest[cut+1:], 10, 64)
	if err != nil || ts <= 0 {
		return "", 0, false
	}

	id = strings.TrimSpace(rest[:cut])
	if id == "" {
		return "", 0, false
	}
	return id, ts, true
}

// FiredFunc receives the trigger key of a wakeup that has fired.
type FiredFunc func(key string)

// Scheduler maps each reminder to one named one-shot timed wakeup.
// Registering a key that already exists replaces the pending wakeup.
type Scheduler struct {
	logger *logrus.Logger
	closed *atomic.Bool

	mu      sync.Mutex
	timers  map[string]*time.Timer
	onFired FiredFunc
}

// New creates a Scheduler. The fired handler is set separately with OnFired
// so the scheduler can be constructed before its consumer.
func New(logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		logger: logger,
		closed: atomic.NewBool(false),
		timers: make(map[string]*time.Timer),
	}
}

// OnFired sets the handler invoked when a wakeup fires. It must be set
// before the first Schedule call.
func (s *Scheduler) OnFired(fn FiredFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFired = fn
}

// Schedule registers a one-shot wakeup for the reminder's scheduled time.
// The reminder must have an id and a strictly future scheduled time.
func (s *Scheduler) Schedule(reminder *models.Reminder) error {
	if reminder == nil || reminder.ID == "" || reminder.ScheduledTime == 0 {
		return &models.SchedulingError{Reason: "reminder must have an id and a scheduled time"}
	}
	if !timeutil.IsFuture(reminder.ScheduledTime) {
		return &models.SchedulingError{Reason: "scheduled time is in the past"}
	}

	key := TriggerKey(reminder.ID, reminder.ScheduledTime)
	delay := timeutil.Until(reminder.ScheduledTime)

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, exists := s.timers[key]; exists {
		old.Stop()
	}
	s.timers[key] = time.AfterFunc(delay, func() {
		s.fire(key)
	})

	s.logger.WithFields(logrus.Fields{
		"key":   key,
		"delay": delay.String(),
	}).Debug("Trigger registered")
	return nil
}

// Cancel deregisters the wakeup derived from id and scheduledTime. It is a
// no-op when either argument is missing or the wakeup does not exist.
func (s *Scheduler) Cancel(id string, scheduledTime int64) {
	if id == "" || scheduledTime == 0 {
		return
	}
	key := TriggerKey(id, scheduledTime)

	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, exists := s.timers[key]; exists {
		timer.Stop()
		delete(s.timers, key)
		s.logger.WithField("key", key).Debug("Trigger cancelled")
	}
}

// Pending returns the keys of all registered wakeups.
func (s *Scheduler) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.timers))
	for key := range s.timers {
		keys = append(keys, key)
	}
	return keys
}

// Close stops all pending wakeups. Wakeups racing with Close are suppressed.
func (s *Scheduler) Close() {
	s.closed.Store(true)

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
}

func (s *Scheduler) fire(key string) {
	if s.closed.Load() {
		return
	}

	s.mu.Lock()
	delete(s.timers, key)
	fn := s.onFired
	s.mu.Unlock()

	if fn == nil {
		s.logger.WithField("key", key).Warn("Trigger fired with no handler registered")
		return
	}
	fn(key)
}
