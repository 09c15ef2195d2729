// Package badger provides a durable session.Store backed by BadgerDB, an
// embedded key/value store. Histories survive process restarts without an
// external database.
package badger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"

	"github.com/hupe1980/askdocs/message"
)

const keyPrefix = "session:"

// Store persists conversation histories in a BadgerDB directory.
type Store struct {
	db *badger.DB
}

// NewStore opens (or creates) the BadgerDB at dataPath.
func NewStore(dataPath string) (*Store, error) {
	dataPath = filepath.Clean(dataPath)

	opts := badger.DefaultOptions(dataPath)
	opts.Logger = nil // badger's default logger is too chatty for a library

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dataPath, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close badger: %w", err)
	}
	return nil
}

// Load returns the stored history for the session, or nil if none exists.
func (s *Store) Load(_ context.Context, sessionID string) ([]message.Message, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(sessionID))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	history, err := message.DecodeHistory(data)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return history, nil
}

// Save replaces the stored history for the session.
func (s *Store) Save(_ context.Context, sessionID string, history []message.Message) error {
	data, err := message.EncodeHistory(history)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sessionKey(sessionID), data)
	})
	if err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

func sessionKey(sessionID string) []byte {
	return []byte(keyPrefix + sessionID)
}
