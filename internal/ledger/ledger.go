// Package ledger keeps per-user point balances in memory and snapshots them
// to a JSON file. Memory is authoritative; the file is a best-effort copy.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Record is one user's balance as stored on disk.
type Record struct {
	UserID  int64 `json:"chat_id"`
	Balance int64 `json:"balance"`
}

// Snapshot is a point-in-time copy of the ledger, sorted by user id.
type Snapshot struct {
	Version uint64
	Records []Record
}

// Ledger holds balances for every user that has drawn.
type Ledger struct {
	path string
	log  *zap.Logger

	mu       sync.Mutex
	balances map[int64]int64
	version  uint64

	// persistMu serializes disk writes; it is never held with mu.
	persistMu sync.Mutex
	written   uint64
}

// Load reads the ledger file at path. A missing or corrupt file gives an
// empty ledger.
func Load(path string, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Ledger{
		path:     path,
		log:      log,
		balances: make(map[int64]int64),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("failed to read balances, starting empty", zap.String("path", path), zap.Error(err))
		}
		return l
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		log.Warn("failed to parse balances, starting empty", zap.String("path", path), zap.Error(err))
		return l
	}
	for _, r := range records {
		l.balances[r.UserID] = r.Balance
	}

	log.Info("balances loaded", zap.String("path", path), zap.Int("users", len(l.balances)))
	return l
}

// Path returns the canonical ledger file.
func (l *Ledger) Path() string {
	return l.path
}

// Get returns the user's balance, 0 if unknown.
func (l *Ledger) Get(userID int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID]
}

// Credit adds amount to the user's balance and returns the new balance
// together with a snapshot taken under the same lock.
func (l *Ledger) Credit(userID, amount int64) (int64, Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[userID] += amount
	l.version++
	return l.balances[userID], l.snapshotLocked()
}

// Snapshot returns a copy of the current balances.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Len returns the number of users with a balance record.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.balances)
}

// Top returns up to n records with the highest balances.
// Ties are ordered by user id.
func (l *Ledger) Top(n int) []Record {
	records := l.Snapshot().Records
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Balance > records[j].Balance
	})
	if n >= 0 && len(records) > n {
		records = records[:n]
	}
	return records
}

func (l *Ledger) snapshotLocked() Snapshot {
	records := make([]Record, 0, len(l.balances))
	for id, balance := range l.balances {
		records = append(records, Record{UserID: id, Balance: balance})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].UserID < records[j].UserID
	})
	return Snapshot{Version: l.version, Records: records}
}

// Persist writes the snapshot to the ledger file through a temporary file
// and a rename. Snapshots older than the last one written are skipped.
// Errors are logged and returned; in-memory balances are never touched.
func (l *Ledger) Persist(s Snapshot) error {
	l.persistMu.Lock()
	defer l.persistMu.Unlock()

	if s.Version < l.written {
		l.log.Debug("skipping stale snapshot", zap.Uint64("version", s.Version), zap.Uint64("written", l.written))
		return nil
	}

	if err := l.write(s); err != nil {
		l.log.Error("failed to save balances", zap.String("path", l.path), zap.Error(err))
		return err
	}
	l.written = s.Version
	return nil
}

func (l *Ledger) write(s Snapshot) error {
	records := s.Records
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode balances: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmp, l.path); err != nil {
		// destination may be held or not replaceable; clear it and retry once
		_ = os.Remove(l.path)
		if err := os.Rename(tmp, l.path); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("failed to rename temp file: %w", err)
		}
	}
	return nil
}
