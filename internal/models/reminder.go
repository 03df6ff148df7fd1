package models

import (
	"strings"

	"github.com/google/uuid"

	"github.com/AhmadChX/notifybuddy/internal/timeutil"
)

// ReminderStatus represents the lifecycle state of a reminder
type ReminderStatus string

const (
	StatusActive    ReminderStatus = "active"
	StatusCompleted ReminderStatus = "completed"
	StatusDismissed ReminderStatus = "dismissed"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s ReminderStatus) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusDismissed:
		return true
	}
	return false
}

// Reminder represents a scheduled reminder. Times are epoch milliseconds
// because the trigger key encodes the scheduled time in that unit.
type Reminder struct {
	ID            string         `json:"id"`
	Text          string         `json:"text"`
	ScheduledTime int64          `json:"scheduledTime"`
	CreatedAt     int64          `json:"createdAt"`
	Status        ReminderStatus `json:"status"`
}

// NewReminder creates an active reminder with a fresh id and CreatedAt set to now.
func NewReminder(text string, scheduledTime int64) *Reminder {
	return &Reminder{
		ID:            uuid.NewString(),
		Text:          strings.TrimSpace(text),
		ScheduledTime: scheduledTime,
		CreatedAt:     timeutil.NowMillis(),
		Status:        StatusActive,
	}
}

// IsActive returns true if the reminder is in the active state
func (r *Reminder) IsActive() bool {
	return r.Status == StatusActive
}

// IsOverdue returns true if the scheduled time has passed and the reminder
// is still active.
func (r *Reminder) IsOverdue() bool {
	return r.IsActive() && !timeutil.IsFuture(r.ScheduledTime)
}

// Clone returns a copy of the reminder.
func (r *Reminder) Clone() *Reminder {
	c := *r
	return &c
}

// Normalize trims the text and defaults a missing status to active. It is
// applied before validation on every save.
func (r *Reminder) Normalize() {
	r.Text = strings.TrimSpace(r.Text)
	if r.Status == "" {
		r.Status = StatusActive
	}
}

// Validate checks the record against the store's write policy. The returned
// error is always a *ValidationError.
func (r *Reminder) Validate() error {
	if r == nil {
		return &ValidationError{Field: "record", Reason: "record is missing"}
	}
	if strings.TrimSpace(r.ID) == "" {
		return &ValidationError{Field: "id", Reason: "id must be a non-empty string"}
	}
	if strings.TrimSpace(r.Text) == "" {
		return &ValidationError{Field: "text", Reason: "text must not be empty"}
	}
	if r.ScheduledTime <= 0 {
		return &ValidationError{Field: "scheduledTime", Reason: "scheduled time must be a positive timestamp"}
	}
	if !timeutil.IsFuture(r.ScheduledTime) {
		return &ValidationError{Field: "scheduledTime", Reason: "scheduled time must be in the future"}
	}
	if r.Status != "" && !r.Status.Valid() {
		return &ValidationError{Field: "status", Reason: "unknown status " + string(r.Status)}
	}
	return nil
}
