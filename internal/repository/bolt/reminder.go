package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"

	"github.com/AhmadChX/notifybuddy/internal/models"
	"github.com/AhmadChX/notifybuddy/internal/repository"
)

// Bucket is the bbolt bucket holding the reminder collection.
var Bucket = []byte("notifybuddy")

// collectionKey is the single key under which the whole collection lives,
// serialized as one JSON array.
var collectionKey = []byte("reminders")

type reminderRepository struct {
	db     *bbolt.DB
	logger *logrus.Logger

	mu          sync.Mutex
	subscribers []func()
}

// NewReminderRepository creates a reminder repository backed by the given
// bbolt database, creating the bucket if needed.
func NewReminderRepository(db *bbolt.DB, logger *logrus.Logger) (repository.ReminderRepository, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(Bucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}
	return &reminderRepository{db: db, logger: logger}, nil
}

// decode turns the stored blob into a collection. Absent, corrupt, or
// non-array data repairs to an empty collection rather than failing upward.
func (r *reminderRepository) decode(data []byte) []*models.Reminder {
	if len(data) == 0 {
		return nil
	}
	var reminders []*models.Reminder
	if err := json.Unmarshal(data, &reminders); err != nil {
		r.logger.WithError(err).Warn("Stored reminder collection is corrupt, treating as empty")
		return nil
	}
	out := reminders[:0]
	for _, rec := range reminders {
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out
}

func (r *reminderRepository) GetAll(ctx context.Context) ([]*models.Reminder, error) {
	var reminders []*models.Reminder
	err := r.db.View(func(tx *bbolt.Tx) error {
		reminders = r.decode(tx.Bucket(Bucket).Get(collectionKey))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read reminders: %w", err)
	}
	if reminders == nil {
		reminders = []*models.Reminder{}
	}
	return reminders, nil
}

func (r *reminderRepository) GetByID(ctx context.Context, id string) (*models.Reminder, error) {
	reminders, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range reminders {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *reminderRepository) Save(ctx context.Context, reminder *models.Reminder) error {
	if reminder == nil {
		return &models.ValidationError{Field: "record", Reason: "record is missing"}
	}
	reminder.Normalize()
	if err := reminder.Validate(); err != nil {
		return err
	}

	err := r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(Bucket)
		reminders := r.decode(bucket.Get(collectionKey))

		replaced := false
		for i, rec := range reminders {
			if rec.ID == reminder.ID {
				reminders[i] = reminder.Clone()
				replaced = true
				break
			}
		}
		if !replaced {
			reminders = append(reminders, reminder.Clone())
		}

		data, err := json.Marshal(reminders)
		if err != nil {
			return fmt.Errorf("failed to encode reminders: %w", err)
		}
		return bucket.Put(collectionKey, data)
	})
	if err != nil {
		return fmt.Errorf("failed to save reminder %s: %w", reminder.ID, err)
	}

	r.notify()
	return nil
}

func (r *reminderRepository) Remove(ctx context.Context, id string) error {
	found := false
	err := r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(Bucket)
		reminders := r.decode(bucket.Get(collectionKey))

		kept := reminders[:0]
		for _, rec := range reminders {
			if rec.ID == id {
				found = true
				continue
			}
			kept = append(kept, rec)
		}
		if !found {
			return nil
		}

		data, err := json.Marshal(kept)
		if err != nil {
			return fmt.Errorf("failed to encode reminders: %w", err)
		}
		return bucket.Put(collectionKey, data)
	})
	if err != nil {
		return fmt.Errorf("failed to remove reminder %s: %w", id, err)
	}
	if !found {
		return models.ErrNotFound
	}

	r.notify()
	return nil
}

func (r *reminderRepository) SetStatus(ctx context.Context, id string, status models.ReminderStatus) error {
	if !status.Valid() {
		return &models.ValidationError{Field: "status", Reason: "unknown status " + string(status)}
	}

	changed := false
	err := r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(Bucket)
		reminders := r.decode(bucket.Get(collectionKey))

		for _, rec := range reminders {
			if rec.ID == id {
				rec.Status = status
				changed = true
				break
			}
		}
		if !changed {
			// Absent id is a silent no-op.
			return nil
		}

		data, err := json.Marshal(reminders)
		if err != nil {
			return fmt.Errorf("failed to encode reminders: %w", err)
		}
		return bucket.Put(collectionKey, data)
	})
	if err != nil {
		return fmt.Errorf("failed to set status of reminder %s: %w", id, err)
	}

	if changed {
		r.notify()
	}
	return nil
}

func (r *reminderRepository) Subscribe(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

func (r *reminderRepository) notify() {
	r.mu.Lock()
	subscribers := make([]func(), len(r.subscribers))
	copy(subscribers, r.subscribers)
	r.mu.Unlock()

	for _, fn := range subscribers {
		fn()
	}
}
