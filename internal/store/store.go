// Package store persists the team's objective collection as a single JSON
// file with timestamped backups. Records are append-only: once an objective
// is written it is never mutated or removed by the bot itself.
//
// The store is safe for concurrent use within one process. It takes no
// file lock, so run a single bot process per store file.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPageSize is the page size used by the chat-facing list command.
const DefaultPageSize = 3

// Objective is a single recorded team goal.
type Objective struct {
	ID            int       `json:"id"`
	Author        string    `json:"author"`
	RawText       string    `json:"raw_text"`
	FormattedText string    `json:"formatted_text"`
	CreatedAt     time.Time `json:"created_at"`
}

// collection is the on-disk shape of the store file.
type collection struct {
	Objectives []Objective `json:"objectives"`
}

// Store owns the objective file. Appends are serialized behind a mutex so
// concurrent commands cannot interleave the read-modify-write sequence or
// hand out duplicate ids.
type Store struct {
	mu         sync.RWMutex
	path       string
	objectives []Objective
	log        *zap.Logger
}

// Open loads the collection at path. A missing or empty file yields an
// empty store; an unparsable file yields a *CorruptError and the file is
// left untouched for the operator to inspect.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{path: path, log: log}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the store file.
func (s *Store) Path() string { return s.path }

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.objectives = []Objective{}
			return nil
		}
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		s.objectives = []Objective{}
		return nil
	}
	var c collection
	if err := json.Unmarshal(data, &c); err != nil {
		return &CorruptError{Path: s.path, Err: err}
	}
	s.objectives = c.Objectives
	return nil
}

// Append validates, assigns the next id, and durably writes the grown
// collection. The previous file contents are copied to a timestamped
// backup first; a backup failure is logged but never blocks the append.
// Callers must finish any slow work (like the AI call) before calling
// Append — the write lock is held for the whole disk sequence.
func (s *Store) Append(author, rawText, formattedText string) (Objective, error) {
	if strings.TrimSpace(rawText) == "" {
		return Objective{}, &ValidationError{Field: "raw_text", Reason: "must not be empty"}
	}
	if formattedText == "" {
		formattedText = rawText
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	obj := Objective{
		ID:            s.nextID(),
		Author:        author,
		RawText:       rawText,
		FormattedText: formattedText,
		CreatedAt:     time.Now().UTC(),
	}

	updated := make([]Objective, 0, len(s.objectives)+1)
	updated = append(updated, s.objectives...)
	updated = append(updated, obj)

	s.backup()
	if err := s.write(updated); err != nil {
		return Objective{}, err
	}
	s.objectives = updated
	return obj, nil
}

func (s *Store) nextID() int {
	if len(s.objectives) == 0 {
		return 1
	}
	max := 0
	for _, o := range s.objectives {
		if o.ID > max {
			max = o.ID
		}
	}
	return max + 1
}

// backup copies the current file aside as <path>.backup-YYYYMMDD-HHMMSS.
// Best effort: a missing file means there is nothing to back up yet.
func (s *Store) backup() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("objective backup skipped", zap.String("path", s.path), zap.Error(err))
		}
		return
	}
	name := fmt.Sprintf("%s.backup-%s", s.path, time.Now().Format("20060102-150405"))
	if err := os.WriteFile(name, data, 0644); err != nil {
		s.log.Warn("objective backup failed", zap.String("backup", name), zap.Error(err))
	}
}

// write replaces the store file atomically: marshal to a temp file in the
// same directory, then rename over the target. A crash mid-write leaves
// the old file intact.
func (s *Store) write(objs []Objective) error {
	data, err := json.MarshalIndent(collection{Objectives: objs}, "", "  ")
	if err != nil {
		return &WriteError{Path: s.path, Err: err}
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".objectives-*.tmp")
	if err != nil {
		return &WriteError{Path: s.path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &WriteError{Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: s.path, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: s.path, Err: err}
	}
	return nil
}

// List returns one page of the collection in insertion order. Pages are
// 1-indexed; a page past the end returns an empty slice.
func (s *Store) List(page, pageSize int) []Objective {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	start := (page - 1) * pageSize
	if start >= len(s.objectives) {
		return []Objective{}
	}
	end := start + pageSize
	if end > len(s.objectives) {
		end = len(s.objectives)
	}
	out := make([]Objective, end-start)
	copy(out, s.objectives[start:end])
	return out
}

// Count returns the total number of recorded objectives.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objectives)
}
