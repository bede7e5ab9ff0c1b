package pebble

import (
	"fmt"

	"github.com/LeJamon/gocmt/internal/storage/database"
	"github.com/cockroachdb/pebble"
)

// BackendName is the name this backend registers under.
const BackendName = "pebble"

func init() {
	database.RegisterBackend(BackendName, func(path string) (database.DB, error) {
		return Open(path)
	})
}

// Open opens or creates a pebble database in directory path.
func Open(path string) (*DB, error) {
	opts := &pebble.Options{
		// Entry values are small and already compressed by the caller.
		Levels: []pebble.LevelOptions{{Compression: pebble.NoCompression}},
	}

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble database %s: %w", path, err)
	}
	return NewDB(db), nil
}
