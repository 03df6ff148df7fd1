package scheduler

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AhmadChX/notifybuddy/internal/models"
	"github.com/AhmadChX/notifybuddy/internal/timeutil"
)

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func activeReminder(id string, offset time.Duration) *models.Reminder {
	return &models.Reminder{
		ID:            id,
		Text:          "test",
		ScheduledTime: timeutil.NowMillis() + offset.Milliseconds(),
		CreatedAt:     timeutil.NowMillis(),
		Status:        models.StatusActive,
	}
}

func TestTriggerKeyRoundTrip(t *testing.T) {
	tests := []struct {
		id string
		ts int64
	}{
		{"simple", 1700000000000},
		{"a1b2c3d4-e5f6-7890-abcd-ef1234567890", 1700000000123}, // uuid: id contains hyphens
		{"-leading", 42},
		{"trailing-", 42},
	}

	for _, tc := range tests {
		key := TriggerKey(tc.id, tc.ts)
		id, ts, ok := ParseTriggerKey(key)
		if !ok {
			t.Errorf("ParseTriggerKey(%q) not ok", key)
			continue
		}
		if id != tc.id || ts != tc.ts {
			t.Errorf("ParseTriggerKey(%q) = (%q, %d), want (%q, %d)", key, id, ts, tc.id, tc.ts)
		}
	}
}

func TestParseTriggerKeyInvalid(t *testing.T) {
	tests := []string{
		"",
		"alarm-abc-123",        // wrong prefix
		"reminder-",            // nothing after prefix
		"reminder-abc",         // no time segment
		"reminder-abc-",        // empty time segment
		"reminder-abc-notanum", // time not numeric
		"reminder-abc-0",       // zero time
		"reminder--123",        // empty id
		"reminder-   -123",     // id trims to empty
		"reminder-abc-12.5",    // fractional time
	}

	for _, key := range tests {
		if id, ts, ok := ParseTriggerKey(key); ok {
			t.Errorf("ParseTriggerKey(%q) = (%q, %d, true), want invalid", key, id, ts)
		}
	}
}

func TestScheduleRejectsInvalidReminder(t *testing.T) {
	s := New(newTestLogger())
	defer s.Close()

	for _, rec := range []*models.Reminder{
		nil,
		{ID: "", ScheduledTime: timeutil.NowMillis() + 60_000},
		{ID: "abc", ScheduledTime: 0},
	} {
		err := s.Schedule(rec)
		if err == nil {
			t.Errorf("Schedule(%+v) should fail", rec)
			continue
		}
		if _, isScheduling := err.(*models.SchedulingError); !isScheduling {
			t.Errorf("error type = %T, want *models.SchedulingError", err)
		}
	}
}

func TestScheduleRejectsPastTime(t *testing.T) {
	s := New(newTestLogger())
	defer s.Close()

	rec := activeReminder("abc", -time.Minute)
	if err := s.Schedule(rec); err == nil {
		t.Fatal("Schedule should reject a past time")
	}
	if len(s.Pending()) != 0 {
		t.Error("rejected schedule must not register a wakeup")
	}
}

func TestScheduleReplacesDuplicateKey(t *testing.T) {
	s := New(newTestLogger())
	defer s.Close()

	rec := activeReminder("abc", time.Hour)
	if err := s.Schedule(rec); err != nil {
		t.Fatalf("first schedule: %v", err)
	}
	if err := s.Schedule(rec); err != nil {
		t.Fatalf("second schedule: %v", err)
	}

	if got := len(s.Pending()); got != 1 {
		t.Errorf("pending wakeups = %d, want 1 (replace, not stack)", got)
	}
}

func TestCancel(t *testing.T) {
	s := New(newTestLogger())
	defer s.Close()

	rec := activeReminder("abc", time.Hour)
	if err := s.Schedule(rec); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	s.Cancel(rec.ID, rec.ScheduledTime)
	if got := len(s.Pending()); got != 0 {
		t.Errorf("pending wakeups after cancel = %d, want 0", got)
	}

	// No-ops: absent key and missing arguments.
	s.Cancel(rec.ID, rec.ScheduledTime)
	s.Cancel("", rec.ScheduledTime)
	s.Cancel(rec.ID, 0)
}

func TestCancelDoesNotAffectOtherTriggerForSameID(t *testing.T) {
	s := New(newTestLogger())
	defer s.Close()

	old := activeReminder("abc", time.Hour)
	if err := s.Schedule(old); err != nil {
		t.Fatalf("schedule old: %v", err)
	}
	updated := activeReminder("abc", 2*time.Hour)
	if err := s.Schedule(updated); err != nil {
		t.Fatalf("schedule updated: %v", err)
	}

	s.Cancel(old.ID, old.ScheduledTime)

	pending := s.Pending()
	if len(pending) != 1 {
		t.Fatalf("pending = %v, want only the updated trigger", pending)
	}
	id, ts, ok := ParseTriggerKey(pending[0])
	if !ok || id != "abc" || ts != updated.ScheduledTime {
		t.Errorf("remaining trigger = %q, want the updated one", pending[0])
	}
}

func TestFireInvokesHandlerWithKey(t *testing.T) {
	s := New(newTestLogger())
	defer s.Close()

	var mu sync.Mutex
	var fired []string
	done := make(chan struct{})
	s.OnFired(func(key string) {
		mu.Lock()
		fired = append(fired, key)
		mu.Unlock()
		close(done)
	})

	rec := activeReminder("abc-def", 30*time.Millisecond)
	if err := s.Schedule(rec); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("trigger did not fire")
	}

	mu.Lock()
	defer mu.Unlock()
	want := TriggerKey(rec.ID, rec.ScheduledTime)
	if len(fired) != 1 || fired[0] != want {
		t.Errorf("fired = %v, want [%s]", fired, want)
	}
	if got := len(s.Pending()); got != 0 {
		t.Errorf("pending after fire = %d, want 0", got)
	}
}

func TestCloseSuppressesPendingFires(t *testing.T) {
	s := New(newTestLogger())

	firedCh := make(chan string, 1)
	s.OnFired(func(key string) { firedCh <- key })

	rec := activeReminder("abc", 30*time.Millisecond)
	if err := s.Schedule(rec); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	s.Close()

	select {
	case key := <-firedCh:
		t.Errorf("trigger %q fired after Close", key)
	case <-time.After(100 * time.Millisecond):
	}
}
