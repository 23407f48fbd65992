package storage

import "time"

// Game represents a tracked Terra Mystica game
type Game struct {
	GameID       string    `json:"game_id"`
	WebhookURL   string    `json:"webhook_url"`
	CreatedAt    time.Time `json:"created_at"`
	LastPolledAt time.Time `json:"last_polled_at"`
	LedgerLength int       `json:"ledger_length"`
}

// Polled reports whether the game has ever completed a poll cycle
func (g *Game) Polled() bool {
	return !g.LastPolledAt.IsZero()
}
