// Package db holds small helpers shared by the sqlite-backed stores.
package db

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
)

// WithTx executes fn within a transaction.
// It handles Begin, Rollback on error, and Commit on success.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

// NullBoolValue returns the bool value or def if not valid.
func NullBoolValue(n sql.NullBool, def bool) bool {
	if !n.Valid {
		return def
	}
	return n.Bool
}

// BoolToInt converts a bool to the 0/1 integer sqlite stores.
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
