package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var db *sql.DB

// InitDB initializes the SQLite journal connection with WAL mode
func InitDB(dbPath string) error {
	var err error

	path := dbPath
	if path != ":memory:" {
		path, err = filepath.Abs(dbPath)
		if err != nil {
			return err
		}
	}

	db, err = sql.Open("sqlite", path)
	if err != nil {
		return err
	}

	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		return err
	}

	if err := runMigrations(); err != nil {
		return err
	}

	return nil
}

// DB returns the database connection
func DB() *sql.DB {
	return db
}

// runMigrations creates the necessary tables
func runMigrations() error {
	drawsTable := `
		CREATE TABLE IF NOT EXISTS draws (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			draw_id TEXT UNIQUE NOT NULL,
			telegram_id INTEGER NOT NULL,
			asset TEXT NOT NULL,
			value INTEGER NOT NULL,
			balance_after INTEGER NOT NULL,
			drawn_at DATETIME NOT NULL
		)
	`

	createIndexes := `
		CREATE INDEX IF NOT EXISTS idx_draws_telegram_id ON draws(telegram_id);
		CREATE INDEX IF NOT EXISTS idx_draws_drawn_at ON draws(drawn_at);
	`

	_, err := db.Exec(drawsTable)
	if err != nil {
		return err
	}

	_, err = db.Exec(createIndexes)
	if err != nil {
		return err
	}

	return nil
}

// CloseDB closes the database connection
func CloseDB() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// RecordDraw appends an accepted draw to the journal and returns it with its ids set
func RecordDraw(ctx context.Context, telegramID int64, asset string, value, balanceAfter int64, drawnAt time.Time) (*Draw, error) {
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	draw := &Draw{
		DrawID:       uuid.NewString(),
		TelegramID:   telegramID,
		Asset:        asset,
		Value:        value,
		BalanceAfter: balanceAfter,
		DrawnAt:      drawnAt.UTC(),
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO draws (draw_id, telegram_id, asset, value, balance_after, drawn_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, draw.DrawID, draw.TelegramID, draw.Asset, draw.Value, draw.BalanceAfter, draw.DrawnAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert draw: %w", err)
	}

	draw.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return draw, nil
}

// GetUserDraws returns the most recent draws of a user, newest first
func GetUserDraws(telegramID int64, limit int) ([]Draw, error) {
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	rows, err := db.Query(`
		SELECT id, draw_id, telegram_id, asset, value, balance_after, drawn_at
		FROM draws
		WHERE telegram_id = ?
		ORDER BY drawn_at DESC, id DESC
		LIMIT ?
	`, telegramID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query draws: %w", err)
	}
	defer rows.Close()

	var draws []Draw
	for rows.Next() {
		var d Draw
		if err := rows.Scan(&d.ID, &d.DrawID, &d.TelegramID, &d.Asset, &d.Value, &d.BalanceAfter, &d.DrawnAt); err != nil {
			return nil, fmt.Errorf("failed to scan draw: %w", err)
		}
		draws = append(draws, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return draws, nil
}

// GetUserDrawStats aggregates the journaled draws of a user
func GetUserDrawStats(telegramID int64) (*UserDrawStats, error) {
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	var stats UserDrawStats
	err := db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(value), 0), COALESCE(MAX(value), 0)
		FROM draws
		WHERE telegram_id = ?
	`, telegramID).Scan(&stats.TotalDraws, &stats.TotalPoints, &stats.BestValue)
	if err != nil {
		return nil, fmt.Errorf("failed to get draw stats: %w", err)
	}

	return &stats, nil
}

// PruneDraws deletes journal rows drawn before the cutoff and returns how many were removed
func PruneDraws(ctx context.Context, before time.Time) (int64, error) {
	if db == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	result, err := db.ExecContext(ctx, `
		DELETE FROM draws
		WHERE drawn_at < ?
	`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune draws: %w", err)
	}

	return result.RowsAffected()
}
