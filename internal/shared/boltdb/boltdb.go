// Package boltdb открывает встраиваемую базу bbolt для режима без Postgres.
package boltdb

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shifttrack/internal/shared/logger"

	bolt "go.etcd.io/bbolt"
)

// Имена бакетов
var (
	BucketShifts     = []byte("shifts")
	BucketOpenShifts = []byte("open_shifts") // userID -> shiftID
	BucketPerimeter  = []byte("perimeter")
	BucketUsers      = []byte("users")
	BucketUsernames  = []byte("usernames") // username -> userID
)

// Open открывает файл базы и создает бакеты
func Open(path string, log *logger.Logger) (*bolt.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{BucketShifts, BucketOpenShifts, BucketPerimeter, BucketUsers, BucketUsernames} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info(logger.Entry{
		Action:  "bolt_opened",
		Message: "embedded database ready",
		Additional: map[string]any{
			"path": path,
		},
	})
	return db, nil
}

// Close закрывает базу с логированием
func Close(db *bolt.DB, log *logger.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.Error(logger.Entry{
			Action:  "bolt_close_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return
	}
	log.Info(logger.Entry{Action: "bolt_closed", Message: "embedded database closed"})
}
