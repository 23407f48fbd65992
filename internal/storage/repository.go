package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrGameNotFound is returned when no game exists for the requested id.
var ErrGameNotFound = errors.New("game not found")

// Repository handles all database operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new repository with SQLite
func NewRepository(dbPath string) (*Repository, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the database schema
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS games (
			game_id VARCHAR(100) PRIMARY KEY,
			webhook_url TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_polled_at TIMESTAMP,
			ledger_length INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_games_created ON games(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// CreateGame inserts a new tracked game
func (r *Repository) CreateGame(g *Game) error {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(
		`INSERT INTO games (game_id, webhook_url, created_at, last_polled_at, ledger_length) VALUES (?, ?, ?, ?, ?)`,
		g.GameID, g.WebhookURL, g.CreatedAt, nullableTime(g.LastPolledAt), g.LedgerLength,
	)
	return err
}

// GetGame finds a tracked game by id
func (r *Repository) GetGame(gameID string) (*Game, error) {
	g := &Game{}
	var lastPolled sql.NullTime
	err := r.db.QueryRow(
		`SELECT game_id, webhook_url, created_at, last_polled_at, ledger_length FROM games WHERE game_id = ?`,
		gameID,
	).Scan(&g.GameID, &g.WebhookURL, &g.CreatedAt, &lastPolled, &g.LedgerLength)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastPolled.Valid {
		g.LastPolledAt = lastPolled.Time
	}
	return g, nil
}

// GetAllGames returns all tracked games, newest first
func (r *Repository) GetAllGames() ([]*Game, error) {
	rows, err := r.db.Query(
		`SELECT game_id, webhook_url, created_at, last_polled_at, ledger_length FROM games ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []*Game
	for rows.Next() {
		g := &Game{}
		var lastPolled sql.NullTime
		if err := rows.Scan(&g.GameID, &g.WebhookURL, &g.CreatedAt, &lastPolled, &g.LedgerLength); err != nil {
			return nil, err
		}
		if lastPolled.Valid {
			g.LastPolledAt = lastPolled.Time
		}
		games = append(games, g)
	}

	return games, rows.Err()
}

// UpdateMarker advances the stored change-detection marker for a game.
// last_polled_at never moves backwards; a stale timestamp leaves the row alone.
func (r *Repository) UpdateMarker(gameID string, polledAt time.Time, ledgerLength int) error {
	_, err := r.db.Exec(
		`UPDATE games SET last_polled_at = ?, ledger_length = ?
		 WHERE game_id = ? AND (last_polled_at IS NULL OR last_polled_at <= ?)`,
		polledAt, ledgerLength, gameID, polledAt,
	)
	return err
}

// DeleteGame removes a tracked game
func (r *Repository) DeleteGame(gameID string) error {
	result, err := r.db.Exec(`DELETE FROM games WHERE game_id = ?`, gameID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrGameNotFound
	}
	return nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
