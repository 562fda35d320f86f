package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

const txAttempts = 3

// runInTransaction commits fn atomically, retrying a bounded number of times
// when the storage layer reports a lock or serialization failure. Exhausted
// retries surface as ErrConflict; every other error passes through unchanged
// after the rollback.
func runInTransaction(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= txAttempts; attempt++ {
		err = db.Transaction(fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		time.Sleep(time.Duration(attempt) * 10 * time.Millisecond)
	}
	return fmt.Errorf("%w: %v", ErrConflict, err)
}

func isRetryable(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}
