package storage

import (
	"time"
)

// Draw is one accepted draw recorded in the journal
type Draw struct {
	ID           int64     `json:"id" db:"id"`
	DrawID       string    `json:"draw_id" db:"draw_id"`
	TelegramID   int64     `json:"telegram_id" db:"telegram_id"`
	Asset        string    `json:"asset" db:"asset"`
	Value        int64     `json:"value" db:"value"`
	BalanceAfter int64     `json:"balance_after" db:"balance_after"`
	DrawnAt      time.Time `json:"drawn_at" db:"drawn_at"`
}

// UserDrawStats summarizes a user's journaled draws
type UserDrawStats struct {
	TotalDraws  int   `json:"total_draws"`
	TotalPoints int64 `json:"total_points"`
	BestValue   int64 `json:"best_value"`
}
