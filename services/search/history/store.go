// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package history archives completed search runs in BadgerDB.
//
// Only outcomes are stored: the action sequence, cost and counters of a
// finished run. Frontier and ledger contents are never persisted, and a
// stored run cannot be resumed.
//
// Key layout:
//
//	run/<unix nanos, 20 digits>/<uuid>  -> Record (JSON)
//	id/<uuid>                           -> run key
//
// Zero-padded timestamps make lexicographic key order chronological, so
// List walks the run/ prefix in reverse to return newest first.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by Get for an unknown run ID.
	ErrNotFound = errors.New("run not found")

	// ErrPathRequired is returned by Open for a persistent store without a path.
	ErrPathRequired = errors.New("path is required for persistent history store")

	// ErrInvalidRecord is returned by Put for records missing required fields.
	ErrInvalidRecord = errors.New("invalid run record")
)

const (
	runPrefix = "run/"
	idPrefix  = "id/"
)

// Record is one archived search run.
type Record struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Problem   string        `json:"problem"`
	Source    string        `json:"source,omitempty"`
	Strategy  string        `json:"strategy"`
	Status    string        `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	Actions   []string      `json:"actions"`
	Cost      float64       `json:"cost"`
	Expanded  int           `json:"expanded"`
	Generated int           `json:"generated"`
	Duration  time.Duration `json:"duration"`
	ErrorText string        `json:"error,omitempty"`
}

// Config holds configuration for a history store.
type Config struct {
	// Path is the directory for database files. Ignored when InMemory is true.
	Path string

	// InMemory keeps the archive in RAM only.
	InMemory bool

	// SyncWrites fsyncs every Put.
	SyncWrites bool

	// Logger receives store logs and BadgerDB's internal logs.
	// Nil disables BadgerDB logging and uses slog.Default() for the store.
	Logger *slog.Logger
}

// DefaultConfig returns a persistent configuration rooted at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		SyncWrites: true,
	}
}

// InMemoryConfig returns a configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// DefaultPath returns ~/.aleutian/search/history, falling back to a
// relative directory when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".aleutian-search-history"
	}
	return filepath.Join(home, ".aleutian", "search", "history")
}

// badgerLogger routes BadgerDB's printf-style logs to slog.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Store is a BadgerDB-backed run archive.
//
// Thread Safety: Safe for concurrent use.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open opens or creates a history store.
//
// Inputs:
//   - cfg: Store configuration. Path is required unless InMemory is set.
//
// Outputs:
//   - *Store: The open store. Caller must Close it.
//   - error: ErrPathRequired, or a wrapped BadgerDB open error.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, ErrPathRequired
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create history directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	logger := cfg.Logger
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger.With(slog.String("component", "badger"))})
	} else {
		opts = opts.WithLogger(nil)
		logger = slog.Default()
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.With(slog.String("component", "search_history")),
		now:    time.Now,
	}, nil
}

// Put archives a record.
//
// Description:
//
//	Assigns a new UUID and CreatedAt when they are empty. The caller's
//	record is updated in place with the assigned values.
//
// Inputs:
//   - ctx: Checked before the write.
//   - rec: The record. Problem and Strategy are required.
//
// Outputs:
//   - error: ErrInvalidRecord, ctx.Err(), or a wrapped write error.
func (s *Store) Put(ctx context.Context, rec *Record) error {
	if rec == nil || rec.Problem == "" || rec.Strategy == "" {
		return fmt.Errorf("%w: problem and strategy are required", ErrInvalidRecord)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}

	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", rec.ID, err)
	}
	key := runKey(rec.CreatedAt, rec.ID)

	idKey := []byte(idPrefix + rec.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		// A reused ID with a new timestamp replaces the earlier run entry.
		item, err := txn.Get(idKey)
		switch {
		case err == nil:
			previous, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if !bytes.Equal(previous, key) {
				if err := txn.Delete(previous); err != nil {
					return err
				}
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		if err := txn.Set(key, value); err != nil {
			return err
		}
		return txn.Set(idKey, key)
	})
	if err != nil {
		return fmt.Errorf("store run %s: %w", rec.ID, err)
	}

	s.logger.Debug("run archived",
		slog.String("id", rec.ID),
		slog.String("problem", rec.Problem),
		slog.String("strategy", rec.Strategy),
	)
	return nil
}

// Get returns the record with the given ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		ref, err := txn.Get([]byte(idPrefix + id))
		if err != nil {
			return err
		}
		key, err := ref.ValueCopy(nil)
		if err != nil {
			return err
		}
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", id, err)
	}
	return &rec, nil
}

// List returns up to limit records, newest first. limit <= 0 returns all.
// Records that fail to decode are skipped with a warning.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	var records []Record
	prefix := []byte(runPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append([]byte(runPrefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if limit > 0 && len(records) >= limit {
				return nil
			}

			item := it.Item()
			var rec Record
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				s.logger.Warn("skipping undecodable run",
					slog.String("key", string(item.Key())),
					slog.String("error", err.Error()),
				)
				continue
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return records, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func runKey(at time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%s%020d/%s", runPrefix, at.UnixNano(), id))
}
