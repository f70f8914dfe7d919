package settings

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver

	dbutil "github.com/llehouerou/graphtime/internal/db"
)

const (
	appName    = "graphtime"
	dbFileName = "settings.db"
)

// Store persists display settings in sqlite.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// DefaultPath returns the database location under the XDG data directory.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

// Open opens (creating if needed) the settings database at path.
// Use ":memory:" for a throwaway database.
func Open(path string, log zerolog.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrapf(err, "create settings dir for %s", path)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open settings database")
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, log: log}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the settings for key, or DefaultDisplay.
func (s *Store) Get(key string) Display {
	d, _, err := s.Lookup(key)
	if err != nil {
		s.log.Warn().Err(err).Str("storage_key", key).Msg("read display settings")
		return DefaultDisplay
	}
	return d
}

// Lookup returns the settings for key and whether a row exists.
func (s *Store) Lookup(key string) (Display, bool, error) {
	return lookup(s.db, key)
}

// Set saves the settings for key.
func (s *Store) Set(key string, d Display) error {
	err := dbutil.WithTx(context.Background(), s.db, func(tx *sql.Tx) error {
		return save(tx, key, d)
	})
	if err != nil {
		return errors.Wrapf(err, "save display settings %q", key)
	}
	return nil
}

// Toggle flips TimelineVisible for key and returns the new settings.
func (s *Store) Toggle(key string) (Display, error) {
	var out Display
	err := dbutil.WithTx(context.Background(), s.db, func(tx *sql.Tx) error {
		d, _, err := lookup(tx, key)
		if err != nil {
			return err
		}
		d.TimelineVisible = !d.TimelineVisible
		out = d
		return save(tx, key, d)
	})
	if err != nil {
		return Display{}, errors.Wrapf(err, "toggle display settings %q", key)
	}
	return out, nil
}

type queryer interface {
	QueryRow(query string, args ...any) *sql.Row
}

func lookup(q queryer, key string) (Display, bool, error) {
	var visible sql.NullBool
	err := q.QueryRow(`
		SELECT timeline_visible FROM display_settings WHERE storage_key = ?
	`, key).Scan(&visible)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultDisplay, false, nil
	}
	if err != nil {
		return DefaultDisplay, false, errors.Wrap(err, "query display settings")
	}
	return Display{
		TimelineVisible: dbutil.NullBoolValue(visible, DefaultDisplay.TimelineVisible),
	}, true, nil
}

func save(tx *sql.Tx, key string, d Display) error {
	_, err := tx.Exec(`
		INSERT INTO display_settings (storage_key, timeline_visible, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(storage_key) DO UPDATE SET
			timeline_visible = excluded.timeline_visible,
			updated_at = excluded.updated_at
	`, key, dbutil.BoolToInt(d.TimelineVisible), time.Now().Unix())
	return err
}
