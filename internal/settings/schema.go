package settings

import (
	"database/sql"

	"github.com/cockroachdb/errors"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS display_settings (
			storage_key TEXT PRIMARY KEY,
			timeline_visible INTEGER,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return errors.Wrap(err, "create tables")
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, currentSchemaVersion)
	if err != nil {
		return errors.Wrap(err, "set schema version")
	}
	return nil
}
