package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"yurcoinbot/internal/catalog"
	"yurcoinbot/internal/cooldown"
	"yurcoinbot/internal/ledger"
	"yurcoinbot/internal/logger"
	"yurcoinbot/internal/metrics"

	"go.uber.org/zap"
)

// OutcomeKind is the result class of a draw attempt.
type OutcomeKind int

const (
	OutcomeThrottled OutcomeKind = iota + 1
	OutcomeNoAssets
	OutcomeWon
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeThrottled:
		return "throttled"
	case OutcomeNoAssets:
		return "no_assets"
	case OutcomeWon:
		return "won"
	default:
		return "unknown"
	}
}

// Outcome describes what a draw attempt produced.
// WaitSeconds is set for OutcomeThrottled; Asset, Value and Balance for OutcomeWon.
type Outcome struct {
	Kind        OutcomeKind
	WaitSeconds int64
	Asset       catalog.Entry
	Value       int64
	Balance     int64
}

// Journal records accepted draws outside the ledger.
type Journal interface {
	Record(ctx context.Context, userID int64, asset string, value, balance int64, at time.Time) error
}

// DrawService sequences cooldown, selection, crediting and persistence.
type DrawService struct {
	guard    *cooldown.Guard
	selector *Selector
	ledger   *ledger.Ledger
	log      *zap.Logger

	journal Journal
	metrics *metrics.Metrics
}

// NewDrawService creates a new draw service
func NewDrawService(guard *cooldown.Guard, selector *Selector, l *ledger.Ledger, log *zap.Logger) *DrawService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DrawService{
		guard:    guard,
		selector: selector,
		ledger:   l,
		log:      log,
	}
}

// SetJournal sets where accepted draws are journaled
func (s *DrawService) SetJournal(j Journal) {
	s.journal = j
}

// SetMetrics sets the metrics sink
func (s *DrawService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// AttemptDraw runs one draw for the user at the given time.
// A draw rejected for an empty catalog still consumes the cooldown window.
func (s *DrawService) AttemptDraw(ctx context.Context, userID int64, now time.Time) Outcome {
	decision := s.guard.CheckAndMark(userID, now)
	if !decision.Accepted {
		out := Outcome{Kind: OutcomeThrottled, WaitSeconds: decision.WaitSeconds()}
		s.observe(userID, out)
		return out
	}

	asset, ok := s.selector.Pick()
	if !ok {
		out := Outcome{Kind: OutcomeNoAssets}
		s.observe(userID, out)
		return out
	}

	value := asset.Value
	balance, snapshot := s.ledger.Credit(userID, value)

	start := time.Now()
	err := s.ledger.Persist(snapshot)
	s.metrics.ObservePersist(time.Since(start), err)
	if err != nil {
		logger.Debug(userID, "persist_failed", fmt.Sprintf("version=%d error=%s", snapshot.Version, err.Error()))
	}

	if s.journal != nil {
		if err := s.journal.Record(ctx, userID, filepath.Base(asset.Path), value, balance, now); err != nil {
			s.metrics.ObserveJournalFailure()
			s.log.Warn("failed to journal draw", zap.Int64("user_id", userID), zap.Error(err))
		}
	}

	out := Outcome{Kind: OutcomeWon, Asset: asset, Value: value, Balance: balance}
	s.observe(userID, out)
	return out
}

// Balance returns the user's current balance.
func (s *DrawService) Balance(userID int64) int64 {
	return s.ledger.Get(userID)
}

// Leaderboard returns up to n users with the highest balances.
func (s *DrawService) Leaderboard(n int) []ledger.Record {
	return s.ledger.Top(n)
}

func (s *DrawService) observe(userID int64, out Outcome) {
	s.metrics.ObserveDraw(out.Kind.String(), out.Value)
	switch out.Kind {
	case OutcomeThrottled:
		logger.Debug(userID, "draw_throttled", fmt.Sprintf("wait=%ds", out.WaitSeconds))
	case OutcomeNoAssets:
		logger.Debug(userID, "draw_no_assets", "")
	case OutcomeWon:
		logger.Debug(userID, "draw_won", fmt.Sprintf("asset=%s value=%d balance=%d", filepath.Base(out.Asset.Path), out.Value, out.Balance))
	}
}
