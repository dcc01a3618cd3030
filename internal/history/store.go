// Package history keeps a small on-disk log of past sweeps.
package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spiffcs/lockstale/internal/constants"
	"github.com/spiffcs/lockstale/internal/log"
	"github.com/spiffcs/lockstale/internal/service"
)

// Record summarises one sweep.
type Record struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"ts"`
	Repository    string    `json:"repo"`
	State         string    `json:"state"`
	DryRun        bool      `json:"dryRun,omitempty"`
	Fetched       int       `json:"fetched"`
	LockedIssues  int       `json:"lockedIssues"`
	LockedPRs     int       `json:"lockedPRs"`
	Failed        int       `json:"failed"`
	CoreRemaining int       `json:"coreRemaining"`
	DurationMs    int64     `json:"durationMs"`
	Error         string    `json:"error,omitempty"`
}

// FromResult builds a Record from a finished sweep. runErr is the error
// Service.Run returned, if any.
func FromResult(res *service.Result, runErr error) Record {
	rec := Record{
		ID:            uuid.NewString(),
		Timestamp:     res.StartedAt.UTC(),
		Repository:    res.Repository.FullName(),
		State:         string(res.State),
		DryRun:        res.DryRun,
		Fetched:       res.Fetched,
		LockedIssues:  len(res.Issues.Locked),
		LockedPRs:     len(res.PullRequests.Locked),
		Failed:        res.TotalFailed(),
		CoreRemaining: res.QuotaBefore.Remaining,
		DurationMs:    res.Duration.Milliseconds(),
	}
	if res.QuotaAfter != nil {
		rec.CoreRemaining = res.QuotaAfter.Remaining
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	return rec
}

// maxRecordSize is the longest line readAll accepts.
const maxRecordSize = 1024 * 1024

// Store manages persistence of run records as JSON Lines.
type Store struct {
	path string
	max  int
	mu   sync.Mutex
}

// NewStore creates a store at $XDG_CACHE_HOME/lockstale/history.jsonl.
func NewStore() (*Store, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(cacheDir, "lockstale")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return NewStoreWithPath(filepath.Join(dir, "history.jsonl")), nil
}

// NewStoreWithPath creates a store at the given path (for testing).
func NewStoreWithPath(path string) *Store {
	return &Store{path: path, max: constants.MaxHistoryRecords}
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Append adds a record and prunes to the most recent entries.
func (s *Store) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// An unreadable file is left alone rather than replaced by one record.
	records, err := s.readAll()
	if err != nil {
		return fmt.Errorf("failed to read history %s: %w", s.path, err)
	}

	records = append(records, rec)
	if len(records) > s.max {
		records = records[len(records)-s.max:]
	}

	return s.writeAll(records)
}

// Recent returns the last n records, oldest first.
func (s *Store) Recent(n int) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		log.Debug("could not read history", "error", err)
		return nil
	}

	if n <= 0 || len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}

// readAll reads all records from disk.
func (s *Store) readAll() ([]Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue // skip malformed lines
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

// writeAll replaces the file through a temporary sibling and a rename.
func (s *Store) writeAll(records []Record) error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, s.path)
}

// Clear removes the history file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
