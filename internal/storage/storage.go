package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const keyGamePrefix = "game:"

var ErrGameNotFound = errors.New("game record not found")

// GameRecord is everything needed to rebuild a game: the start position and
// the moves played from it, in coordinate notation.
type GameRecord struct {
	ID        string    `json:"id"`
	StartFEN  string    `json:"start_fen"`
	Moves     []string  `json:"moves"`
	White     string    `json:"white"`
	Black     string    `json:"black"`
	Result    string    `json:"result,omitempty"`
	Winner    string    `json:"winner,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Open opens the database in dir. An empty dir keeps everything in memory.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func gameKey(id string) []byte {
	return []byte(keyGamePrefix + id)
}

// SaveGame writes the record, replacing any earlier version. UpdatedAt is
// stamped here; an empty CreatedAt keeps the stored one, or is set on first
// save.
func (s *Storage) SaveGame(record GameRecord) error {
	now := time.Now()
	record.UpdatedAt = now

	return s.db.Update(func(txn *badger.Txn) error {
		if record.CreatedAt.IsZero() {
			record.CreatedAt = now
			item, err := txn.Get(gameKey(record.ID))
			switch {
			case err == nil:
				var stored GameRecord
				if err := item.Value(func(val []byte) error {
					return json.Unmarshal(val, &stored)
				}); err != nil {
					return err
				}
				if !stored.CreatedAt.IsZero() {
					record.CreatedAt = stored.CreatedAt
				}
			case !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}
		}

		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return txn.Set(gameKey(record.ID), data)
	})
}

func (s *Storage) LoadGame(id string) (GameRecord, error) {
	var record GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrGameNotFound, id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	return record, err
}

// ListGames returns every stored record in key order.
func (s *Storage) ListGames() ([]GameRecord, error) {
	var records []GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(keyGamePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record GameRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			records = append(records, record)
		}
		return nil
	})
	return records, err
}

func (s *Storage) DeleteGame(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(gameKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrGameNotFound, id)
			}
			return err
		}
		return txn.Delete(gameKey(id))
	})
}
