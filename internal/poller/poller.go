package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rbasoalto/terrabot/internal/notify"
	"github.com/rbasoalto/terrabot/internal/storage"
	"github.com/rbasoalto/terrabot/internal/terra"
)

// Store is the persistence surface the poller needs
type Store interface {
	GetAllGames() ([]*storage.Game, error)
	GetGame(gameID string) (*storage.Game, error)
	UpdateMarker(gameID string, polledAt time.Time, ledgerLength int) error
}

// Fetcher retrieves remote game state
type Fetcher interface {
	FetchGameState(ctx context.Context, gameID string) (*terra.GameState, error)
	ViewGameURL(gameID string) string
}

// Sender delivers composed messages to webhook targets
type Sender interface {
	Send(ctx context.Context, webhookURL string, msg *notify.Message) error
}

// Outcome is the terminal state of one game's pipeline within a cycle
type Outcome string

const (
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeFailed    Outcome = "failed"
)

// CycleResult aggregates one poll cycle
type CycleResult struct {
	// GamesNotified counts games for which a notification was actually delivered
	GamesNotified int
	Outcomes      map[string]Outcome
}

// Options tune poller behavior
type Options struct {
	// Workers bounds concurrent per-game pipelines. Zero means 4.
	Workers int
	// UpdateUnchanged controls whether an unchanged poll still advances
	// last_polled_at
	UpdateUnchanged bool
	// Interval enables the background poll loop when positive
	Interval time.Duration
}

// Poller runs the fetch, detect, compose, deliver, persist pipeline across
// all tracked games
type Poller struct {
	store    Store
	fetcher  Fetcher
	sender   Sender
	strategy Strategy
	opts     Options

	// Serializes poll cycles so two cycles never race on the same marker
	cycleMu sync.Mutex

	now func() time.Time

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a Poller
func New(store Store, fetcher Fetcher, sender Sender, strategy Strategy, opts Options) *Poller {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Poller{
		store:    store,
		fetcher:  fetcher,
		sender:   sender,
		strategy: strategy,
		opts:     opts,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

// Start begins the background polling loop. It blocks until the context is
// cancelled or Stop is called; callers run it in a goroutine. With no
// configured interval it returns immediately and polling is trigger-driven.
func (p *Poller) Start(ctx context.Context) {
	if p.opts.Interval <= 0 {
		slog.Info("Background polling disabled", "interval", p.opts.Interval)
		return
	}
	slog.Info("Starting poller", "interval", p.opts.Interval, "strategy", p.strategy.Name())

	p.wg.Add(1)
	defer p.wg.Done()

	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	// Initial poll
	p.PollAll(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Poller stopped (context cancelled)")
			return
		case <-p.stopChan:
			slog.Info("Poller stopped")
			return
		case <-ticker.C:
			p.PollAll(ctx)
		}
	}
}

// Stop signals the background loop to stop and waits for it
func (p *Poller) Stop() {
	close(p.stopChan)
	p.wg.Wait()
}

// PollAll runs one poll cycle over every tracked game. Individual game
// failures are recorded per game and never abort the cycle.
func (p *Poller) PollAll(ctx context.Context) *CycleResult {
	p.cycleMu.Lock()
	defer p.cycleMu.Unlock()

	cycleID := uuid.NewString()
	start := p.now()
	result := &CycleResult{Outcomes: make(map[string]Outcome)}

	games, err := p.store.GetAllGames()
	if err != nil {
		slog.Error("Failed to list games", "cycle", cycleID, "error", err)
		return result
	}
	if len(games) == 0 {
		slog.Debug("No games to poll", "cycle", cycleID)
		return result
	}

	slog.Debug("Polling games", "cycle", cycleID, "count", len(games))

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, p.opts.Workers)
	)

	for _, game := range games {
		// Cancellation stops issuing new tasks; in-flight tasks run to completion
		select {
		case <-ctx.Done():
		case sem <- struct{}{}:
		}
		if ctx.Err() != nil {
			slog.Warn("Poll cycle cancelled", "cycle", cycleID)
			wg.Wait()
			return result
		}

		wg.Add(1)
		go func(g *storage.Game) {
			defer wg.Done()
			defer func() { <-sem }()

			delivered, err := p.pollGame(ctx, g, false)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.Outcomes[g.GameID] = OutcomeFailed
				slog.Error("Failed to poll game", "cycle", cycleID, "game", g.GameID, "error", err)
			case delivered:
				result.Outcomes[g.GameID] = OutcomeUpdated
			default:
				result.Outcomes[g.GameID] = OutcomeUnchanged
			}
			// Counts actual deliveries, including the delivered-but-not-persisted case
			if delivered {
				result.GamesNotified++
			}
		}(game)
	}

	wg.Wait()

	slog.Info("Poll cycle completed",
		"cycle", cycleID,
		"duration", time.Since(start),
		"games", len(games),
		"notified", result.GamesNotified,
	)
	return result
}

// PollGame polls a single game by id, surfacing its specific error to the
// caller. force bypasses change detection and always delivers.
func (p *Poller) PollGame(ctx context.Context, gameID string, force bool) (int, error) {
	p.cycleMu.Lock()
	defer p.cycleMu.Unlock()

	game, err := p.store.GetGame(gameID)
	if err != nil {
		return 0, err
	}

	delivered, err := p.pollGame(ctx, game, force)
	n := 0
	if delivered {
		n = 1
	}
	return n, err
}

// pollGame runs one game's pipeline: fetch, detect, compose, then deliver
// and persist concurrently. The stored marker is only advanced by this cycle
// when the pipeline reached the delivery stage. Because delivery and the
// marker write race, a failed delivery whose persist won means that
// notification is never redelivered; the converse race is a possible
// duplicate on the next cycle. Both mismatches are logged below.
func (p *Poller) pollGame(ctx context.Context, game *storage.Game, force bool) (bool, error) {
	state, err := p.fetcher.FetchGameState(ctx, game.GameID)
	if err != nil {
		return false, err
	}

	now := p.now()

	changed := force
	if !changed {
		changed, err = p.strategy.HasChanged(game, state, now)
		if err != nil {
			return false, err
		}
	}

	if !changed {
		slog.Debug("No state change", "game", game.GameID)
		if p.opts.UpdateUnchanged {
			if err := p.store.UpdateMarker(game.GameID, now, len(state.Ledger)); err != nil {
				return false, err
			}
		}
		return false, nil
	}

	msg, err := notify.Compose(game.GameID, state, p.fetcher.ViewGameURL(game.GameID))
	if errors.Is(err, notify.ErrEmptySnapshot) {
		// Not initialized on the server yet: nothing worth announcing unless
		// the caller insisted
		if !force {
			slog.Info("Game not initialized yet, skipping", "game", game.GameID)
			return false, nil
		}
		msg = notify.ComposePlaceholder(game.GameID, p.fetcher.ViewGameURL(game.GameID))
	} else if err != nil {
		return false, err
	}

	slog.Info("State change detected", "game", game.GameID, "round", state.Round, "turn", state.Turn, "forced", force)

	var (
		wg         sync.WaitGroup
		sendErr    error
		persistErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		sendErr = p.sender.Send(ctx, game.WebhookURL, msg)
	}()
	go func() {
		defer wg.Done()
		persistErr = p.store.UpdateMarker(game.GameID, now, len(state.Ledger))
	}()
	wg.Wait()

	if sendErr == nil && persistErr != nil {
		// The one tolerated inconsistency: the notification went out but the
		// marker did not advance, so the next cycle may deliver a duplicate.
		slog.Error("Notification delivered but marker not persisted, duplicate possible",
			"game", game.GameID, "error", persistErr)
	}
	if sendErr != nil && persistErr == nil {
		slog.Error("Marker persisted but delivery failed",
			"game", game.GameID, "error", sendErr)
	}
	if sendErr != nil || persistErr != nil {
		return sendErr == nil, errors.Join(sendErr, persistErr)
	}

	return true, nil
}
