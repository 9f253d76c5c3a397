// Package localstore persists small client-local markers in a PebbleDB
// key-value store. Nothing here is ever synchronized across devices.
package localstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/pebble"
)

// MarkerStore keeps per-room-per-user markers, currently only the id of
// the last message the explosion overlay was shown for.
type MarkerStore struct {
	db *pebble.DB
}

// Open opens (or creates) the marker store at dir.
func Open(dir string) (*MarkerStore, error) {
	if dir == "" {
		return nil, errors.New("localstore: empty dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &MarkerStore{db: db}, nil
}

func explodedKey(roomID, userID string) []byte {
	return []byte(fmt.Sprintf("lastExploded_%s_%s", roomID, userID))
}

// LastExploded returns the marker for room+viewer, 0 when unset.
func (s *MarkerStore) LastExploded(roomID, userID string) (int64, error) {
	val, closer, err := s.db.Get(explodedKey(roomID, userID))
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer func() { _ = closer.Close() }()

	id, err := strconv.ParseInt(string(val), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("localstore: corrupt marker: %w", err)
	}
	return id, nil
}

// SetLastExploded advances the marker for room+viewer.
func (s *MarkerStore) SetLastExploded(roomID, userID string, messageID int64) error {
	return s.db.Set(explodedKey(roomID, userID), []byte(strconv.FormatInt(messageID, 10)), pebble.Sync)
}

// Close closes the underlying database.
func (s *MarkerStore) Close() error {
	return s.db.Close()
}
