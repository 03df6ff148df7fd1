package config

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"
)

// Database holds the local key-value store backing the reminder collection.
type Database struct {
	*bbolt.DB
	logger *logrus.Logger
}

// NewDatabase opens (or creates) the bbolt file at the given path.
func NewDatabase(path string, logger *logrus.Logger) (*Database, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	logger.Infof("Database opened at %s", path)

	return &Database{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database file.
func (d *Database) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
