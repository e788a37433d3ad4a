package service

import (
	"context"
	"fmt"
	"time"

	"yurcoinbot/internal/logger"
	"yurcoinbot/internal/storage"
)

// DefaultPruneInterval is how often the journal worker looks for old draws
const DefaultPruneInterval = 1 * time.Hour

// StorageJournal records draws in the sqlite journal
type StorageJournal struct{}

// Record implements Journal
func (StorageJournal) Record(ctx context.Context, userID int64, asset string, value, balance int64, at time.Time) error {
	_, err := storage.RecordDraw(ctx, userID, asset, value, balance, at)
	return err
}

// JournalWorker prunes journal rows older than the retention period
type JournalWorker struct {
	ctx       context.Context
	cancel    context.CancelFunc
	ticker    *time.Ticker
	retention time.Duration
	now       func() time.Time
}

// NewJournalWorker creates a new journal worker
func NewJournalWorker(retention, interval time.Duration) *JournalWorker {
	ctx, cancel := context.WithCancel(context.Background())

	if interval <= 0 {
		interval = DefaultPruneInterval
	}

	return &JournalWorker{
		ctx:       ctx,
		cancel:    cancel,
		ticker:    time.NewTicker(interval),
		retention: retention,
		now:       time.Now,
	}
}

// Start begins the background worker
func (w *JournalWorker) Start() {
	logger.Debug(0, "journal_worker_started", fmt.Sprintf("retention=%v", w.retention))

	// Run immediately on start
	w.pruneOldDraws()

	go func() {
		for {
			select {
			case <-w.ticker.C:
				w.pruneOldDraws()
			case <-w.ctx.Done():
				logger.Debug(0, "journal_worker_stopped", "")
				return
			}
		}
	}()
}

// Stop stops the background worker
func (w *JournalWorker) Stop() {
	w.ticker.Stop()
	w.cancel()
}

// pruneOldDraws deletes draws that fell out of the retention period
func (w *JournalWorker) pruneOldDraws() int64 {
	if w.retention <= 0 {
		return 0
	}
	if storage.DB() == nil {
		logger.Debug(0, "journal_worker_no_db", "")
		return 0
	}

	cutoff := w.now().Add(-w.retention)
	removed, err := storage.PruneDraws(w.ctx, cutoff)
	if err != nil {
		logger.Debug(0, "journal_worker_prune_failed", fmt.Sprintf("error=%s", err.Error()))
		return 0
	}

	if removed > 0 {
		logger.Debug(0, "journal_worker_pruned", fmt.Sprintf("count=%d cutoff=%s", removed, cutoff.Format(time.RFC3339)))
	}
	return removed
}
