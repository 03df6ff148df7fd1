package repository

import (
	"context"

	"github.com/AhmadChX/notifybuddy/internal/models"
)

// ReminderRepository defines the interface for the reminder collection.
// The canonical state is a single sequence of records held under one
// storage key; every mutation rewrites the whole collection.
type ReminderRepository interface {
	// GetAll returns the stored collection. An absent or corrupt blob
	// decodes to an empty collection, never an error.
	GetAll(ctx context.Context) ([]*models.Reminder, error)

	// GetByID returns the record with the given id, or nil if absent.
	GetByID(ctx context.Context, id string) (*models.Reminder, error)

	// Save validates and normalizes the record, then upserts it by id.
	// A validation failure aborts the write and returns a
	// *models.ValidationError.
	Save(ctx context.Context, reminder *models.Reminder) error

	// Remove deletes the record with the given id. Returns
	// models.ErrNotFound when the id is absent.
	Remove(ctx context.Context, id string) error

	// SetStatus updates the status of one record. Silently no-ops when
	// the id is absent.
	SetStatus(ctx context.Context, id string, status models.ReminderStatus) error

	// Subscribe registers fn to run after every successful write, so
	// other parts of the process can react to changes.
	Subscribe(fn func())
}
