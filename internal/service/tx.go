package service

import (
	"context"

	"gorm.io/gorm"
)

// runTx wraps fn in a database transaction. A nil db means we are running
// against in-memory stubs in unit tests; fn is invoked directly with a nil tx
// and the stubs ignore it.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
